package api

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"remit-wallet-go/internal/models"
	"remit-wallet-go/internal/registry"
	"remit-wallet-go/internal/store"
	"remit-wallet-go/internal/transfer"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// SendRequest is a send to a saved recipient, or to new details which are
// matched against saved recipients and saved when unknown.
type SendRequest struct {
	RecipientId string                   `json:"recipient_id,omitempty"`
	Recipient   *registry.RecipientInput `json:"recipient,omitempty"`
	Amount      decimal.Decimal          `json:"amount"`
	Category    string                   `json:"category,omitempty"`
	Note        string                   `json:"note,omitempty"`
}

// SendMoney submits a transfer. The returned handle resolves on settlement.
func (s *WalletService) SendMoney(ctx context.Context, userId string, req SendRequest) (*models.TransferResult, *transfer.Handle, error) {
	if _, err := s.GetUser(ctx, userId); err != nil {
		return nil, nil, err
	}

	recipient, isNew, err := s.resolveRecipient(ctx, userId, req)
	if err != nil {
		return nil, nil, err
	}

	handle, err := s.orchestrator.Submit(ctx, transfer.SubmitRequest{
		UserId:    userId,
		Type:      models.TransactionTypeSend,
		Recipient: *recipient,
		Amount:    req.Amount,
		Category:  req.Category,
		Note:      req.Note,
	})
	if err != nil {
		zap.L().Warn("Transfer rejected",
			zap.String("user_id", userId),
			zap.String("recipient_id", recipient.Id),
			zap.String("amount", req.Amount.String()),
			zap.Error(err))
		return nil, nil, err
	}

	// New details are saved only once the transfer is accepted
	if isNew {
		if err := s.recipients.Save(ctx, recipient); err != nil {
			zap.L().Warn("Transfer accepted but recipient not saved",
				zap.String("user_id", userId),
				zap.String("recipient_id", recipient.Id),
				zap.Error(err))
		}
	}

	return s.transferResult(handle), handle, nil
}

// Quote prices a transfer without submitting it
func (s *WalletService) Quote(amount decimal.Decimal, currency string) (transfer.Breakdown, error) {
	if !amount.IsPositive() {
		return transfer.Breakdown{}, fmt.Errorf("%w: amount must be positive", ErrInvalidRequest)
	}
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if _, ok := s.feed.Currency(currency); !ok {
		return transfer.Breakdown{}, fmt.Errorf("%w: %s", ErrUnknownCurrency, currency)
	}
	return s.orchestrator.Quote(amount, currency), nil
}

// resolveRecipient returns the saved recipient for req, or a validated but
// unsaved one (isNew) for details that match nothing saved.
func (s *WalletService) resolveRecipient(ctx context.Context, userId string, req SendRequest) (recipient *models.Recipient, isNew bool, err error) {
	if req.RecipientId != "" {
		recipient, err = s.recipients.Get(ctx, userId, req.RecipientId)
		return recipient, false, err
	}
	if req.Recipient == nil {
		return nil, false, fmt.Errorf("%w: recipient_id or recipient is required", ErrInvalidRequest)
	}

	recipient, err = s.recipients.Lookup(ctx, userId, *req.Recipient)
	if err == nil {
		return recipient, false, nil
	}
	if !errors.Is(err, store.ErrRecipientNotFound) {
		return nil, false, err
	}
	recipient, err = s.recipients.Prepare(userId, *req.Recipient)
	return recipient, err == nil, err
}

func (s *WalletService) transferResult(handle *transfer.Handle) *models.TransferResult {
	pending := handle.Pending()
	return &models.TransferResult{
		Transaction: pending,
		SettlesAt:   pending.CreatedAt.Add(s.orchestrator.SettlementDelay()),
	}
}
