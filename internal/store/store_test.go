package store

import (
	"testing"
)

// Compile-time checks that the interfaces are importable and usable.
func TestStoreInterfacesExist(t *testing.T) {
	_ = ErrDuplicateTransaction
	_ = ErrConcurrentModification
	_ = ErrInsufficientFunds
	_ = CreateUserParams{}

	var _ Ledger
	var _ Directory
}

func TestUserKey(t *testing.T) {
	if got := UserKey("recipients", "u-1"); got != "recipients_u-1" {
		t.Errorf("Expected recipients_u-1, got %s", got)
	}
}
