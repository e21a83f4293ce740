package registry

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"remit-wallet-go/internal/models"
	"remit-wallet-go/internal/rates"
	"remit-wallet-go/internal/store"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrDuplicateRecipient is returned when the payout destination is already saved.
var ErrDuplicateRecipient = store.ErrDuplicateRecipient

var (
	ErrMissingField        = errors.New("missing required field")
	ErrInvalidType         = errors.New("recipient type must be bank or peer")
	ErrUnsupportedCurrency = errors.New("unsupported payout currency")
)

// RecipientInput is the add-recipient form.
type RecipientInput struct {
	Type          string `json:"type"`
	Name          string `json:"name"`
	Avatar        string `json:"avatar,omitempty"`
	Country       string `json:"country,omitempty"`
	Currency      string `json:"currency,omitempty"`
	BankCode      string `json:"bank_code,omitempty"`
	AccountNumber string `json:"account_number,omitempty"`
	BankName      string `json:"bank_name,omitempty"`
	Phone         string `json:"phone,omitempty"`
}

// Registry manages each user's saved recipients. A recipient's identity is
// its natural key, so two entries can never point at the same destination.
type Registry struct {
	dir        store.Directory
	currencies rates.Provider
	now        func() time.Time

	mu        sync.Mutex // guards migrated and userLocks
	migrated  map[string]bool
	userLocks map[string]*sync.Mutex
	legacyMu  sync.Mutex
}

func New(dir store.Directory, currencies rates.Provider) *Registry {
	return &Registry{
		dir:        dir,
		currencies: currencies,
		now:        time.Now,
		migrated:   make(map[string]bool),
		userLocks:  make(map[string]*sync.Mutex),
	}
}

// Add validates and stores a new recipient.
func (r *Registry) Add(ctx context.Context, userId string, input RecipientInput) (*models.Recipient, error) {
	recipient, err := r.Prepare(userId, input)
	if err != nil {
		return nil, err
	}
	if err := r.Save(ctx, recipient); err != nil {
		return nil, err
	}
	return recipient, nil
}

// Prepare validates input and returns the recipient it describes, with a
// fresh id, without storing it.
func (r *Registry) Prepare(userId string, input RecipientInput) (*models.Recipient, error) {
	return r.build(userId, input)
}

// Save stores a recipient returned by Prepare.
func (r *Registry) Save(ctx context.Context, recipient *models.Recipient) error {
	if err := r.ensureMigrated(ctx, recipient.UserId); err != nil {
		return err
	}

	if err := r.dir.InsertRecipient(ctx, recipient); err != nil {
		if errors.Is(err, store.ErrDuplicateRecipient) {
			zap.L().Info("Rejected duplicate recipient",
				zap.String("user_id", recipient.UserId),
				zap.String("natural_key", recipient.NaturalKey()))
		}
		return err
	}
	return nil
}

// Remove deletes a recipient permanently.
func (r *Registry) Remove(ctx context.Context, userId, recipientId string) error {
	if err := r.ensureMigrated(ctx, userId); err != nil {
		return err
	}
	return r.dir.DeleteRecipient(ctx, userId, recipientId)
}

func (r *Registry) List(ctx context.Context, userId string) ([]models.Recipient, error) {
	if err := r.ensureMigrated(ctx, userId); err != nil {
		return nil, err
	}
	return r.dir.GetRecipients(ctx, userId)
}

func (r *Registry) Get(ctx context.Context, userId, recipientId string) (*models.Recipient, error) {
	if err := r.ensureMigrated(ctx, userId); err != nil {
		return nil, err
	}
	return r.dir.GetRecipient(ctx, userId, recipientId)
}

// Lookup finds the saved recipient with the same payout destination as input.
func (r *Registry) Lookup(ctx context.Context, userId string, input RecipientInput) (*models.Recipient, error) {
	candidate := models.Recipient{
		Type:          strings.ToLower(strings.TrimSpace(input.Type)),
		BankCode:      input.BankCode,
		AccountNumber: input.AccountNumber,
		Phone:         input.Phone,
	}
	key := candidate.NaturalKey()

	recipients, err := r.List(ctx, userId)
	if err != nil {
		return nil, err
	}
	for i := range recipients {
		if recipients[i].NaturalKey() == key {
			return &recipients[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", store.ErrRecipientNotFound, key)
}

func (r *Registry) build(userId string, input RecipientInput) (*models.Recipient, error) {
	recipient := &models.Recipient{
		Id:        uuid.New().String(),
		UserId:    userId,
		Type:      strings.ToLower(strings.TrimSpace(input.Type)),
		Name:      strings.TrimSpace(input.Name),
		Avatar:    input.Avatar,
		Country:   strings.TrimSpace(input.Country),
		Currency:  strings.ToUpper(strings.TrimSpace(input.Currency)),
		CreatedAt: r.now().UTC(),
	}
	if recipient.Name == "" {
		return nil, fmt.Errorf("%w: name", ErrMissingField)
	}

	switch recipient.Type {
	case models.RecipientTypePeer:
		recipient.Phone = strings.TrimSpace(input.Phone)
		if models.DigitsOnly(recipient.Phone) == "" {
			return nil, fmt.Errorf("%w: phone", ErrMissingField)
		}
		recipient.Currency = models.PeggedCurrency
	case models.RecipientTypeBank:
		recipient.BankCode = strings.TrimSpace(input.BankCode)
		recipient.AccountNumber = strings.TrimSpace(input.AccountNumber)
		recipient.BankName = strings.TrimSpace(input.BankName)
		if models.NormalizeAccountNumber(recipient.AccountNumber) == "" {
			return nil, fmt.Errorf("%w: account number", ErrMissingField)
		}
		if recipient.BankCode == "" {
			return nil, fmt.Errorf("%w: bank code", ErrMissingField)
		}
		if recipient.Currency == "" || recipient.Currency == models.PeggedCurrency {
			return nil, fmt.Errorf("%w: bank payouts need a local currency", ErrUnsupportedCurrency)
		}
		if _, ok := r.currencies.Currency(recipient.Currency); !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnsupportedCurrency, recipient.Currency)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidType, input.Type)
	}

	return recipient, nil
}

// IsValidation reports whether err is a user input error.
func IsValidation(err error) bool {
	return errors.Is(err, ErrMissingField) || errors.Is(err, ErrInvalidType) || errors.Is(err, ErrUnsupportedCurrency)
}
