package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"remit-wallet-go/internal/models"
	"remit-wallet-go/internal/store"

	"github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

// InsertRecipient stores a recipient. A second recipient with the same
// natural key for the same user is rejected with store.ErrDuplicateRecipient.
func (s *Service) InsertRecipient(ctx context.Context, recipient *models.Recipient) error {
	naturalKey := recipient.NaturalKey()
	zap.L().Info("Storing recipient",
		zap.String("user_id", recipient.UserId),
		zap.String("recipient_id", recipient.Id),
		zap.String("type", recipient.Type),
		zap.String("natural_key", naturalKey))

	_, err := s.db.ExecContext(ctx, queryInsertRecipient,
		recipient.Id, recipient.UserId, recipient.Type, recipient.Name, recipient.Avatar,
		recipient.Country, recipient.Currency, recipient.BankCode, recipient.AccountNumber,
		recipient.BankName, recipient.Phone, naturalKey, recipient.CreatedAt)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return fmt.Errorf("%w: %s", store.ErrDuplicateRecipient, naturalKey)
		}
		zap.L().Error("Failed to insert recipient",
			zap.String("user_id", recipient.UserId),
			zap.Error(err))
		return fmt.Errorf("unable to insert recipient: %w", err)
	}

	zap.L().Info("Recipient stored successfully", zap.String("id", recipient.Id))
	return nil
}

func (s *Service) GetRecipients(ctx context.Context, userId string) ([]models.Recipient, error) {
	zap.L().Debug("Querying recipients", zap.String("user_id", userId))

	rows, err := s.db.QueryContext(ctx, queryGetUserRecipients, userId)
	if err != nil {
		zap.L().Error("Failed to query recipients", zap.String("user_id", userId), zap.Error(err))
		return nil, fmt.Errorf("unable to query recipients: %w", err)
	}
	defer func(rows *sql.Rows) {
		if err := rows.Close(); err != nil {
			zap.L().Warn("Failed to close rows", zap.Error(err))
		}
	}(rows)

	var recipients []models.Recipient
	for rows.Next() {
		recipient, err := scanRecipient(rows)
		if err != nil {
			zap.L().Error("Failed to scan recipient row", zap.Error(err))
			return nil, err
		}
		recipients = append(recipients, *recipient)
	}

	if err := rows.Err(); err != nil {
		zap.L().Error("Error during recipient row iteration", zap.Error(err))
		return nil, fmt.Errorf("error iterating recipient rows: %w", err)
	}

	zap.L().Debug("Retrieved recipients", zap.String("user_id", userId), zap.Int("count", len(recipients)))
	return recipients, nil
}

func (s *Service) GetRecipient(ctx context.Context, userId, recipientId string) (*models.Recipient, error) {
	recipient, err := scanRecipient(s.db.QueryRowContext(ctx, queryGetRecipient, userId, recipientId))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", store.ErrRecipientNotFound, recipientId)
	}
	if err != nil {
		return nil, err
	}
	return recipient, nil
}

// DeleteRecipient removes the recipient permanently
func (s *Service) DeleteRecipient(ctx context.Context, userId, recipientId string) error {
	result, err := s.db.ExecContext(ctx, queryDeleteRecipient, userId, recipientId)
	if err != nil {
		return fmt.Errorf("unable to delete recipient: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("unable to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%w: %s", store.ErrRecipientNotFound, recipientId)
	}

	zap.L().Info("Recipient deleted", zap.String("user_id", userId), zap.String("recipient_id", recipientId))
	return nil
}

func scanRecipient(row rowScanner) (*models.Recipient, error) {
	var r models.Recipient
	err := row.Scan(&r.Id, &r.UserId, &r.Type, &r.Name, &r.Avatar, &r.Country, &r.Currency,
		&r.BankCode, &r.AccountNumber, &r.BankName, &r.Phone, &r.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("unable to scan recipient row: %w", err)
	}
	return &r, nil
}
