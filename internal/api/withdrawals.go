package api

import (
	"context"
	"fmt"

	"remit-wallet-go/internal/models"
	"remit-wallet-go/internal/transfer"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ProcessWithdrawal moves funds out to one of the user's saved bank accounts.
func (s *WalletService) ProcessWithdrawal(ctx context.Context, userId, recipientId string, amount decimal.Decimal, note string) (*models.TransferResult, *transfer.Handle, error) {
	if recipientId == "" {
		return nil, nil, fmt.Errorf("%w: recipient_id is required", ErrInvalidRequest)
	}

	zap.L().Info("Processing withdrawal",
		zap.String("user_id", userId),
		zap.String("recipient_id", recipientId),
		zap.String("amount", amount.String()))

	if _, err := s.GetUser(ctx, userId); err != nil {
		return nil, nil, err
	}
	recipient, err := s.recipients.Get(ctx, userId, recipientId)
	if err != nil {
		return nil, nil, err
	}

	handle, err := s.orchestrator.Withdraw(ctx, transfer.SubmitRequest{
		UserId:    userId,
		Recipient: *recipient,
		Amount:    amount,
		Note:      note,
	})
	if err != nil {
		zap.L().Warn("Withdrawal rejected",
			zap.String("user_id", userId),
			zap.String("amount", amount.String()),
			zap.Error(err))
		return nil, nil, err
	}

	return s.transferResult(handle), handle, nil
}
