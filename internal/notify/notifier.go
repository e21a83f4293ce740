package notify

import (
	"context"

	"remit-wallet-go/internal/models"

	"go.uber.org/zap"
)

// Notifier receives an event once a transaction settles. Delivery is best
// effort; callers log failures and never wait on the outcome.
type Notifier interface {
	Notify(ctx context.Context, event models.SettlementEvent) error
	Close()
}

// NewEvent builds the settlement event for a terminal transaction.
func NewEvent(tx models.Transaction) models.SettlementEvent {
	return models.SettlementEvent{
		TransactionId:     tx.Id,
		ReferenceNumber:   tx.ReferenceNumber,
		UserId:            tx.UserId,
		Type:              tx.Type,
		RecipientName:     tx.RecipientName,
		Amount:            tx.Amount,
		Currency:          tx.Currency,
		ConvertedAmount:   tx.ConvertedAmount,
		RecipientCurrency: tx.RecipientCurrency,
		Status:            tx.Status,
		SettledAt:         tx.SettledAt,
	}
}

// LogNotifier writes settlement events to the structured log.
type LogNotifier struct{}

func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

func (n *LogNotifier) Notify(ctx context.Context, event models.SettlementEvent) error {
	zap.L().Info("Transaction settled",
		zap.String("transaction_id", event.TransactionId),
		zap.String("reference", event.ReferenceNumber),
		zap.String("user_id", event.UserId),
		zap.String("type", event.Type),
		zap.String("recipient", event.RecipientName),
		zap.String("amount", event.Amount.String()),
		zap.String("currency", event.Currency),
		zap.String("status", event.Status))
	return nil
}

func (n *LogNotifier) Close() {}
