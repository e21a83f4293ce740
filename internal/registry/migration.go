package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"remit-wallet-go/internal/models"
	"remit-wallet-go/internal/store"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// LegacyRecipientsKey holds the pre-account recipient list shared by the device.
	LegacyRecipientsKey = "savedRecipients"
	recipientsKind      = "recipients"

	unknownBankName = "Unknown Bank"
	unknownBankCode = "UNKNOWN"
)

type legacyRecipient struct {
	Id            string `json:"id"`
	Type          string `json:"type"`
	Name          string `json:"name"`
	Avatar        string `json:"avatar"`
	Country       string `json:"country"`
	Currency      string `json:"currency"`
	BankCode      string `json:"bankCode"`
	AccountNumber string `json:"accountNumber"`
	BankName      string `json:"bankName"`
	Phone         string `json:"phone"`
	PhoneNumber   string `json:"phoneNumber"`
}

type migrationMarker struct {
	MigratedAt string `json:"migrated_at"`
	Imported   int    `json:"imported"`
	Skipped    int    `json:"skipped"`
}

// ensureMigrated imports the legacy recipient list once per user. The
// user-scoped marker key records that the import happened; the legacy list
// is consumed by the first user to migrate.
func (r *Registry) ensureMigrated(ctx context.Context, userId string) error {
	if r.isMigrated(userId) {
		return nil
	}

	lock := r.userLock(userId)
	lock.Lock()
	defer lock.Unlock()
	if r.isMigrated(userId) {
		return nil
	}

	markerKey := store.UserKey(recipientsKind, userId)
	_, found, err := r.dir.GetValue(ctx, markerKey)
	if err != nil {
		return fmt.Errorf("unable to read migration marker: %w", err)
	}
	if found {
		r.setMigrated(userId)
		return nil
	}

	// The legacy list is shared, so only one user imports at a time.
	r.legacyMu.Lock()
	marker, err := r.importLegacy(ctx, userId)
	r.legacyMu.Unlock()
	if err != nil {
		return err
	}

	body, err := json.Marshal(marker)
	if err != nil {
		return fmt.Errorf("unable to encode migration marker: %w", err)
	}
	if err := r.dir.SetValue(ctx, markerKey, body); err != nil {
		return fmt.Errorf("unable to write migration marker: %w", err)
	}

	r.setMigrated(userId)
	return nil
}

func (r *Registry) isMigrated(userId string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.migrated[userId]
}

func (r *Registry) setMigrated(userId string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.migrated[userId] = true
}

func (r *Registry) userLock(userId string) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()

	lock, ok := r.userLocks[userId]
	if !ok {
		lock = &sync.Mutex{}
		r.userLocks[userId] = lock
	}
	return lock
}

func (r *Registry) importLegacy(ctx context.Context, userId string) (migrationMarker, error) {
	marker := migrationMarker{MigratedAt: r.now().UTC().Format(time.RFC3339)}

	raw, found, err := r.dir.GetValue(ctx, LegacyRecipientsKey)
	if err != nil {
		return marker, fmt.Errorf("unable to read legacy recipients: %w", err)
	}
	if !found || len(raw) == 0 {
		return marker, nil
	}

	var legacy []legacyRecipient
	if err := json.Unmarshal(raw, &legacy); err != nil {
		zap.L().Warn("Ignoring unreadable legacy recipient list", zap.Error(err))
		return marker, nil
	}

	for _, record := range legacy {
		recipient, ok := fromLegacy(userId, record)
		if !ok {
			marker.Skipped++
			continue
		}
		recipient.Id = uuid.New().String()
		recipient.CreatedAt = r.now().UTC()

		err := r.dir.InsertRecipient(ctx, recipient)
		if errors.Is(err, store.ErrDuplicateRecipient) {
			marker.Skipped++
			continue
		}
		if err != nil {
			return marker, fmt.Errorf("unable to import legacy recipient %q: %w", record.Name, err)
		}
		marker.Imported++
	}

	if err := r.dir.SetValue(ctx, LegacyRecipientsKey, []byte("[]")); err != nil {
		return marker, fmt.Errorf("unable to clear legacy recipients: %w", err)
	}

	zap.L().Info("Migrated legacy recipients",
		zap.String("user_id", userId),
		zap.Int("imported", marker.Imported),
		zap.Int("skipped", marker.Skipped))
	return marker, nil
}

// fromLegacy repairs a legacy record instead of rejecting it. Records
// without a name or a payout destination are dropped.
func fromLegacy(userId string, record legacyRecipient) (*models.Recipient, bool) {
	name := strings.TrimSpace(record.Name)
	if name == "" {
		return nil, false
	}

	phone := strings.TrimSpace(record.Phone)
	if phone == "" {
		phone = strings.TrimSpace(record.PhoneNumber)
	}
	currency := strings.ToUpper(strings.TrimSpace(record.Currency))

	recipient := &models.Recipient{
		UserId:  userId,
		Name:    name,
		Avatar:  record.Avatar,
		Country: record.Country,
	}

	isPeer := record.Type == models.RecipientTypePeer || phone != "" || currency == models.PeggedCurrency
	if isPeer {
		recipient.Type = models.RecipientTypePeer
		recipient.Currency = models.PeggedCurrency
		recipient.Phone = phone
		return recipient, models.DigitsOnly(phone) != ""
	}

	recipient.Type = models.RecipientTypeBank
	recipient.Currency = currency
	if recipient.Currency == "" {
		recipient.Currency = "USD"
	}
	recipient.AccountNumber = strings.TrimSpace(record.AccountNumber)
	if models.NormalizeAccountNumber(recipient.AccountNumber) == "" {
		return nil, false
	}
	recipient.BankCode = strings.TrimSpace(record.BankCode)
	if recipient.BankCode == "" {
		recipient.BankCode = unknownBankCode
	}
	recipient.BankName = strings.TrimSpace(record.BankName)
	if recipient.BankName == "" {
		recipient.BankName = unknownBankName
	}
	return recipient, true
}
