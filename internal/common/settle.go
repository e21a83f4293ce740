package common

import (
	"context"
	"fmt"
	"time"

	"remit-wallet-go/internal/models"
	"remit-wallet-go/internal/transfer"

	"go.uber.org/zap"
)

// AwaitSettlement blocks until a submitted transfer settles, giving it the
// configured settlement delay plus grace before giving up.
func AwaitSettlement(ctx context.Context, handle *transfer.Handle, delay, grace time.Duration) (models.Transaction, error) {
	pending := handle.Pending()
	zap.L().Info("Waiting for settlement",
		zap.String("reference", pending.ReferenceNumber),
		zap.Duration("delay", delay))

	waitCtx, cancel := context.WithTimeout(ctx, delay+grace)
	defer cancel()

	result, err := handle.Wait(waitCtx)
	if err != nil {
		return pending, fmt.Errorf("transfer %s did not settle in time: %w", pending.ReferenceNumber, err)
	}
	if result.Err != nil {
		return result.Transaction, fmt.Errorf("transfer %s settled but was not saved: %w", pending.ReferenceNumber, result.Err)
	}
	return result.Transaction, nil
}
