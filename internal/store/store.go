package store

import (
	"context"
	"errors"

	"remit-wallet-go/internal/models"

	"github.com/shopspring/decimal"
)

// Sentinel errors shared across all backend implementations.
var (
	ErrDuplicateTransaction   = errors.New("duplicate transaction")
	ErrConcurrentModification = errors.New("concurrent modification detected")
	ErrUserNotFound           = errors.New("user not found")
	ErrUserExists             = errors.New("user already exists")
	ErrRecipientNotFound      = errors.New("recipient not found")
	ErrDuplicateRecipient     = errors.New("recipient already exists")
	ErrTransactionNotFound    = errors.New("transaction not found")
	ErrInsufficientFunds      = errors.New("insufficient funds")
	ErrNotTerminal            = errors.New("transaction is not in a terminal state")
	ErrBalanceMismatch        = errors.New("balance mismatch")
)

// CreateUserParams contains the parameters for creating a user.
type CreateUserParams struct {
	Id                string
	Name              string
	Email             string
	Phone             string
	VerificationLevel string
}

// Ledger owns balances and transaction history. Balance and history are
// always written together so they can never diverge.
type Ledger interface {
	GetBalance(ctx context.Context, userId string) (decimal.Decimal, error)
	GetAllBalances(ctx context.Context, userId string) ([]models.AccountBalance, error)

	// RecordDeposit credits a completed deposit.
	RecordDeposit(ctx context.Context, tx *models.Transaction) (*models.LedgerEntry, error)
	// RecordTransfer stores a terminal send/withdrawal, debiting TotalPaid
	// when it completed and leaving the balance untouched when it failed.
	RecordTransfer(ctx context.Context, tx *models.Transaction) (*models.LedgerEntry, error)

	GetTransaction(ctx context.Context, userId, transactionId string) (*models.Transaction, error)
	GetTransactionHistory(ctx context.Context, userId string, limit, offset int) ([]models.Transaction, error)
	ReconcileBalance(ctx context.Context, userId string) error

	Close()
}

// Directory owns users, saved recipients and per-user key-value documents.
type Directory interface {
	// --- Users ---
	GetUsers(ctx context.Context) ([]models.User, error)
	GetUserById(ctx context.Context, userId string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	CreateUser(ctx context.Context, params CreateUserParams) (*models.User, error)

	// --- Recipients ---
	InsertRecipient(ctx context.Context, recipient *models.Recipient) error
	GetRecipients(ctx context.Context, userId string) ([]models.Recipient, error)
	GetRecipient(ctx context.Context, userId, recipientId string) (*models.Recipient, error)
	DeleteRecipient(ctx context.Context, userId, recipientId string) error

	// --- Key-value documents (resource-kind_userid) ---
	GetValue(ctx context.Context, key string) ([]byte, bool, error)
	SetValue(ctx context.Context, key string, value []byte) error

	Close()
}

// UserKey builds the per-user storage key for a resource kind.
func UserKey(kind, userId string) string {
	return kind + "_" + userId
}
