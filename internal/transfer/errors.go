package transfer

import "errors"

// Validation errors. No transaction is created when one of these is returned.
var (
	ErrInvalidAmount        = errors.New("amount must be a positive number with at most two decimal places")
	ErrBelowMinimum         = errors.New("amount is below the minimum for this currency")
	ErrNoteTooLong          = errors.New("note is too long")
	ErrInvalidCategory      = errors.New("unknown transaction category")
	ErrInvalidRecipient     = errors.New("recipient is not valid for this transfer")
	ErrInvalidDepositMethod = errors.New("unknown deposit method")
)

var (
	// ErrTransferInFlight is returned when the user already has a pending transfer.
	ErrTransferInFlight = errors.New("a transfer is already in progress")
	// ErrSettlementCancelled resolves transfers that were pending at shutdown.
	ErrSettlementCancelled = errors.New("settlement cancelled")
	ErrClosed              = errors.New("orchestrator is closed")
)

// IsValidation reports whether err is a user input error.
func IsValidation(err error) bool {
	for _, target := range []error{
		ErrInvalidAmount, ErrBelowMinimum, ErrNoteTooLong,
		ErrInvalidCategory, ErrInvalidRecipient, ErrInvalidDepositMethod,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
