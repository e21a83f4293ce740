package jobs

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"remit-wallet-go/internal/database"
	"remit-wallet-go/internal/models"
	"remit-wallet-go/internal/store"

	"github.com/shopspring/decimal"
)

// driftingLedger reports a mismatch for one user and an outage for another.
type driftingLedger struct {
	store.Ledger
	mismatched string
	broken     string
}

func (l *driftingLedger) ReconcileBalance(ctx context.Context, userId string) error {
	switch userId {
	case l.mismatched:
		return store.ErrBalanceMismatch
	case l.broken:
		return errors.New("database is locked")
	}
	return l.Ledger.ReconcileBalance(ctx, userId)
}

func openDatabase(t *testing.T) *database.Service {
	t.Helper()
	db, err := database.NewService(context.Background(), models.DatabaseConfig{
		Path:             filepath.Join(t.TempDir(), "wallet.db"),
		MaxOpenConns:     2,
		MaxIdleConns:     1,
		PingTimeout:      5 * time.Second,
		CreateDummyUsers: true,
	})
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(db.Close)
	return db
}

func TestReconcileAll(t *testing.T) {
	db := openDatabase(t)
	ctx := context.Background()

	users, err := db.GetUsers(ctx)
	if err != nil || len(users) != 3 {
		t.Fatalf("Expected 3 seeded users, got %d (%v)", len(users), err)
	}

	now := time.Now().UTC()
	_, err = db.RecordDeposit(ctx, &models.Transaction{
		Id: "dep-1", ReferenceNumber: "CBAAAAAAAAAA", UserId: users[0].Id, Type: models.TransactionTypeDeposit,
		Amount: decimal.NewFromInt(25), Currency: models.PeggedCurrency, ConvertedAmount: decimal.NewFromInt(25),
		RecipientCurrency: models.PeggedCurrency, ExchangeRate: decimal.NewFromInt(1), Fee: decimal.Zero,
		TotalPaid: decimal.NewFromInt(25), Status: models.StatusCompleted, CreatedAt: now, SettledAt: now,
	})
	if err != nil {
		t.Fatalf("RecordDeposit failed: %v", err)
	}

	report, err := NewReconciler(db, db).ReconcileAll(ctx)
	if err != nil {
		t.Fatalf("ReconcileAll failed: %v", err)
	}
	if report.Checked != 3 {
		t.Errorf("Expected 3 users checked, got %d", report.Checked)
	}
	if len(report.Mismatched) != 0 || len(report.Failed) != 0 {
		t.Errorf("Expected clean report, got %+v", report)
	}

	ledger := &driftingLedger{Ledger: db, mismatched: users[1].Id, broken: users[2].Id}
	report, err = NewReconciler(db, ledger).ReconcileAll(ctx)
	if err != nil {
		t.Fatalf("ReconcileAll failed: %v", err)
	}
	if len(report.Mismatched) != 1 || report.Mismatched[0] != users[1].Id {
		t.Errorf("Expected mismatch for %s, got %v", users[1].Id, report.Mismatched)
	}
	if len(report.Failed) != 1 || report.Failed[0] != users[2].Id {
		t.Errorf("Expected failure for %s, got %v", users[2].Id, report.Failed)
	}
}

func TestReconcileAll_Cancelled(t *testing.T) {
	db := openDatabase(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewReconciler(db, db).ReconcileAll(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func TestScheduler_InvalidSchedule(t *testing.T) {
	db := openDatabase(t)
	s := NewScheduler(NewReconciler(db, db), models.JobsConfig{ReconcileSchedule: "not a schedule"})
	if err := s.Start(); err == nil {
		s.Stop()
		t.Fatal("Expected error for invalid schedule, got nil")
	}
}

func TestScheduler_StartStop(t *testing.T) {
	db := openDatabase(t)
	s := NewScheduler(NewReconciler(db, db), models.JobsConfig{ReconcileSchedule: "@every 1h"})
	if err := s.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	select {
	case <-s.Stop().Done():
	case <-time.After(5 * time.Second):
		t.Fatal("Expected scheduler to stop")
	}
}
