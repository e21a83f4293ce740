package models

import (
	"strings"
	"time"
	"unicode"

	"github.com/shopspring/decimal"
)

// PeggedCurrency is the in-app stable unit, pegged 1:1 to USD.
const PeggedCurrency = "CBUSD"

// Verification levels are informational only.
const (
	VerificationBasic    = "basic"
	VerificationVerified = "verified"
	VerificationPremium  = "premium"
)

// Recipient payout types
const (
	RecipientTypeBank = "bank"
	RecipientTypePeer = "peer"
)

// Transaction types
const (
	TransactionTypeSend       = "send"
	TransactionTypeWithdrawal = "withdrawal"
	TransactionTypeDeposit    = "deposit"
)

// Transaction statuses. pending -> completed | failed is the only state machine.
const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// TransactionCategories lists the accepted optional categories.
var TransactionCategories = []string{"family", "bills", "education", "business", "gift", "other"}

// User represents a user in the system
type User struct {
	Id                string    `db:"id" json:"id"`
	Name              string    `db:"name" json:"name"`
	Email             string    `db:"email" json:"email"`
	Phone             string    `db:"phone" json:"phone,omitempty"`
	VerificationLevel string    `db:"verification_level" json:"verification_level"`
	CreatedAt         time.Time `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time `db:"updated_at" json:"updated_at"`
}

// Recipient represents a saved payout target
type Recipient struct {
	Id            string    `db:"id" json:"id"`
	UserId        string    `db:"user_id" json:"user_id"`
	Type          string    `db:"type" json:"type"`
	Name          string    `db:"name" json:"name"`
	Avatar        string    `db:"avatar" json:"avatar,omitempty"`
	Country       string    `db:"country" json:"country,omitempty"`
	Currency      string    `db:"currency" json:"currency"`
	BankCode      string    `db:"bank_code" json:"bank_code,omitempty"`
	AccountNumber string    `db:"account_number" json:"account_number,omitempty"`
	BankName      string    `db:"bank_name" json:"bank_name,omitempty"`
	Phone         string    `db:"phone" json:"phone,omitempty"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

// IsPeer reports whether payouts to r stay inside the app.
func (r *Recipient) IsPeer() bool {
	return r.Type == RecipientTypePeer
}

// NaturalKey is the canonical identity of a recipient: the payout
// destination, independent of the display name.
func (r *Recipient) NaturalKey() string {
	if r.Type == RecipientTypePeer {
		return "peer:" + DigitsOnly(r.Phone)
	}
	return "bank:" + strings.ToUpper(strings.TrimSpace(r.BankCode)) + ":" + NormalizeAccountNumber(r.AccountNumber)
}

// NormalizeAccountNumber drops whitespace and dashes and upper-cases the
// rest. Letters are kept: IBANs and similar formats depend on them.
func NormalizeAccountNumber(s string) string {
	return strings.ToUpper(strings.Map(func(c rune) rune {
		if unicode.IsSpace(c) || c == '-' {
			return -1
		}
		return c
	}, s))
}

// DigitsOnly strips everything but decimal digits.
func DigitsOnly(s string) string {
	var b strings.Builder
	for _, c := range s {
		if unicode.IsDigit(c) {
			b.WriteRune(c)
		}
	}
	return b.String()
}

// Transaction is a send, withdrawal or deposit in the user's history
type Transaction struct {
	Id                string          `db:"id" json:"id"`
	ReferenceNumber   string          `db:"reference_number" json:"reference_number"`
	UserId            string          `db:"user_id" json:"user_id"`
	Type              string          `db:"type" json:"type"`
	RecipientId       string          `db:"recipient_id" json:"recipient_id,omitempty"`
	RecipientName     string          `db:"recipient_name" json:"recipient_name,omitempty"`
	Amount            decimal.Decimal `db:"amount" json:"amount"`
	Currency          string          `db:"currency" json:"currency"`
	ConvertedAmount   decimal.Decimal `db:"converted_amount" json:"converted_amount"`
	RecipientCurrency string          `db:"recipient_currency" json:"recipient_currency"`
	ExchangeRate      decimal.Decimal `db:"exchange_rate" json:"exchange_rate"`
	Fee               decimal.Decimal `db:"fee" json:"fee"`
	TotalPaid         decimal.Decimal `db:"total_paid" json:"total_paid"`
	Category          string          `db:"category" json:"category,omitempty"`
	Note              string          `db:"note" json:"note,omitempty"`
	Status            string          `db:"status" json:"status"`
	CreatedAt         time.Time       `db:"created_at" json:"created_at"`
	SettledAt         time.Time       `db:"settled_at" json:"settled_at,omitempty"`
}

// IsTerminal reports whether the status can no longer change.
func (t *Transaction) IsTerminal() bool {
	return t.Status == StatusCompleted || t.Status == StatusFailed
}

// BalanceImpact is the signed change this transaction applies to the
// owner's balance once terminal.
func (t *Transaction) BalanceImpact() decimal.Decimal {
	if t.Status != StatusCompleted {
		return decimal.Zero
	}
	if t.Type == TransactionTypeDeposit {
		return t.Amount
	}
	return t.TotalPaid.Neg()
}

// AccountBalance represents current balance state (hot data)
type AccountBalance struct {
	Id                string          `db:"id"`
	UserId            string          `db:"user_id"`
	Asset             string          `db:"asset"`
	Balance           decimal.Decimal `db:"balance"`
	LastTransactionId string          `db:"last_transaction_id"`
	Version           int64           `db:"version"`
	UpdatedAt         time.Time       `db:"updated_at"`
}

// LedgerEntry is a transaction row together with the balance it moved
type LedgerEntry struct {
	Transaction   Transaction
	LedgerAmount  decimal.Decimal
	BalanceBefore decimal.Decimal
	BalanceAfter  decimal.Decimal
}
