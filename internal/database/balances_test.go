package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"remit-wallet-go/internal/models"
	"remit-wallet-go/internal/store"

	"github.com/shopspring/decimal"
)

func TestGetBalance_NoBalance(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	balance, err := service.GetBalance(context.Background(), "user1")
	if err != nil {
		t.Fatalf("GetBalance failed: %v", err)
	}

	if !balance.Equal(decimal.Zero) {
		t.Errorf("Expected balance 0, got %s", balance.String())
	}
}

func TestGetAllBalances(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	ctx := context.Background()
	if _, err := service.RecordDeposit(ctx, testDeposit("tx1", "12.34", testTime)); err != nil {
		t.Fatalf("RecordDeposit failed: %v", err)
	}

	balances, err := service.GetAllBalances(ctx, "user1")
	if err != nil {
		t.Fatalf("GetAllBalances failed: %v", err)
	}

	if len(balances) != 1 {
		t.Fatalf("Expected 1 balance, got %d", len(balances))
	}
	if balances[0].Asset != models.PeggedCurrency {
		t.Errorf("Expected asset %s, got %s", models.PeggedCurrency, balances[0].Asset)
	}
	if balances[0].LastTransactionId != "tx1" {
		t.Errorf("Expected last transaction tx1, got %s", balances[0].LastTransactionId)
	}
	if balances[0].Version != 2 {
		t.Errorf("Expected version 2, got %d", balances[0].Version)
	}
}

// Balance must always equal the fold of the history, including failed transfers.
func TestReconcileBalance_MatchesHistory(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	ctx := context.Background()
	steps := []*models.Transaction{
		testDeposit("tx1", "1000.10", testTime),
		testSend("tx2", models.StatusCompleted, testTime.Add(time.Minute)),
		testSend("tx3", models.StatusFailed, testTime.Add(2*time.Minute)),
		testDeposit("tx4", "0.05", testTime.Add(3*time.Minute)),
	}
	for _, tx := range steps {
		var err error
		if tx.Type == models.TransactionTypeDeposit {
			_, err = service.RecordDeposit(ctx, tx)
		} else {
			_, err = service.RecordTransfer(ctx, tx)
		}
		if err != nil {
			t.Fatalf("Recording %s failed: %v", tx.Id, err)
		}
	}

	if err := service.ReconcileBalance(ctx, "user1"); err != nil {
		t.Fatalf("ReconcileBalance failed: %v", err)
	}

	history, err := service.GetTransactionHistory(ctx, "user1", 100, 0)
	if err != nil {
		t.Fatalf("GetTransactionHistory failed: %v", err)
	}
	folded := decimal.Zero
	for _, tx := range history {
		folded = folded.Add(tx.BalanceImpact())
	}
	balance, err := service.GetBalance(ctx, "user1")
	if err != nil {
		t.Fatalf("GetBalance failed: %v", err)
	}
	if !balance.Equal(folded) {
		t.Errorf("Expected balance %s to equal folded history %s", balance, folded)
	}
	expected := decimal.RequireFromString("898.65")
	if !balance.Equal(expected) {
		t.Errorf("Expected balance %s, got %s", expected, balance)
	}
}

func TestReconcileBalance_DetectsDrift(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	ctx := context.Background()
	if _, err := service.RecordDeposit(ctx, testDeposit("tx1", "10", testTime)); err != nil {
		t.Fatalf("RecordDeposit failed: %v", err)
	}
	if _, err := service.db.Exec("UPDATE account_balances SET balance = '11' WHERE user_id = 'user1'"); err != nil {
		t.Fatalf("Failed to tamper with balance: %v", err)
	}

	err := service.ReconcileBalance(ctx, "user1")
	if err == nil {
		t.Fatal("Expected balance mismatch error, got nil")
	}
	if !errors.Is(err, store.ErrBalanceMismatch) {
		t.Errorf("Expected balance mismatch error, got %v", err)
	}
}
