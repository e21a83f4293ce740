package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// GetValue returns the stored document and whether the key exists.
func (s *Service) GetValue(ctx context.Context, key string) ([]byte, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, queryGetValue, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		zap.L().Error("Failed to read value", zap.String("key", key), zap.Error(err))
		return nil, false, fmt.Errorf("unable to read value %s: %w", key, err)
	}
	return []byte(value), true, nil
}

func (s *Service) SetValue(ctx context.Context, key string, value []byte) error {
	if _, err := s.db.ExecContext(ctx, queryUpsertValue, key, string(value)); err != nil {
		zap.L().Error("Failed to write value", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("unable to write value %s: %w", key, err)
	}
	zap.L().Debug("Stored value", zap.String("key", key), zap.Int("bytes", len(value)))
	return nil
}
