package jobs

import (
	"context"
	"errors"
	"time"

	"remit-wallet-go/internal/store"

	"go.uber.org/zap"
)

// ReconcileReport summarises one reconciliation run.
type ReconcileReport struct {
	Checked    int
	Mismatched []string
	Failed     []string
	Duration   time.Duration
}

// Reconciler checks every user's stored balance against their history.
type Reconciler struct {
	directory store.Directory
	ledger    store.Ledger
}

func NewReconciler(directory store.Directory, ledger store.Ledger) *Reconciler {
	return &Reconciler{directory: directory, ledger: ledger}
}

func (r *Reconciler) ReconcileAll(ctx context.Context) (ReconcileReport, error) {
	start := time.Now()
	var report ReconcileReport

	users, err := r.directory.GetUsers(ctx)
	if err != nil {
		return report, err
	}

	for _, user := range users {
		if ctx.Err() != nil {
			return report, ctx.Err()
		}

		report.Checked++
		err := r.ledger.ReconcileBalance(ctx, user.Id)
		switch {
		case err == nil:
		case errors.Is(err, store.ErrBalanceMismatch):
			report.Mismatched = append(report.Mismatched, user.Id)
		default:
			zap.L().Warn("Reconciliation failed", zap.String("user_id", user.Id), zap.Error(err))
			report.Failed = append(report.Failed, user.Id)
		}
	}

	report.Duration = time.Since(start)
	return report, nil
}
