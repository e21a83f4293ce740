package api

import (
	"context"

	"remit-wallet-go/internal/models"
	"remit-wallet-go/internal/registry"

	"go.uber.org/zap"
)

func (s *WalletService) AddRecipient(ctx context.Context, userId string, input registry.RecipientInput) (*models.Recipient, error) {
	if _, err := s.GetUser(ctx, userId); err != nil {
		return nil, err
	}

	recipient, err := s.recipients.Add(ctx, userId, input)
	if err != nil {
		return nil, err
	}

	zap.L().Info("Recipient added",
		zap.String("user_id", userId),
		zap.String("recipient_id", recipient.Id),
		zap.String("type", recipient.Type),
		zap.String("currency", recipient.Currency))
	return recipient, nil
}

func (s *WalletService) ListRecipients(ctx context.Context, userId string) ([]models.Recipient, error) {
	if _, err := s.GetUser(ctx, userId); err != nil {
		return nil, err
	}

	recipients, err := s.recipients.List(ctx, userId)
	if err != nil {
		return nil, err
	}
	if recipients == nil {
		recipients = []models.Recipient{}
	}
	return recipients, nil
}

func (s *WalletService) RemoveRecipient(ctx context.Context, userId, recipientId string) error {
	if _, err := s.GetUser(ctx, userId); err != nil {
		return err
	}

	if err := s.recipients.Remove(ctx, userId, recipientId); err != nil {
		return err
	}

	zap.L().Info("Recipient removed", zap.String("user_id", userId), zap.String("recipient_id", recipientId))
	return nil
}
