package database

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"remit-wallet-go/internal/models"
	"remit-wallet-go/internal/store"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
)

func setupTestDb(t *testing.T) (*Service, func()) {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	// every connection to :memory: is a fresh database
	db.SetMaxOpenConns(1)

	service, err := newServiceFromDB(db)
	if err != nil {
		t.Fatalf("Failed to create test schema: %v", err)
	}

	cleanup := func() {
		db.Close()
	}

	return service, cleanup
}

var testTime = time.Date(2025, 3, 14, 10, 30, 0, 0, time.UTC)

func testDeposit(id string, amount string, at time.Time) *models.Transaction {
	value := decimal.RequireFromString(amount)
	return &models.Transaction{
		Id:                id,
		ReferenceNumber:   "CBDEP" + id,
		UserId:            "user1",
		Type:              models.TransactionTypeDeposit,
		RecipientName:     "Bank transfer",
		Amount:            value,
		Currency:          models.PeggedCurrency,
		ConvertedAmount:   value,
		RecipientCurrency: models.PeggedCurrency,
		ExchangeRate:      decimal.NewFromInt(1),
		Fee:               decimal.Zero,
		TotalPaid:         value,
		Status:            models.StatusCompleted,
		CreatedAt:         at,
		SettledAt:         at,
	}
}

func testSend(id, status string, at time.Time) *models.Transaction {
	return &models.Transaction{
		Id:                id,
		ReferenceNumber:   "CBSND" + id,
		UserId:            "user1",
		Type:              models.TransactionTypeSend,
		RecipientId:       "rcp-1",
		RecipientName:     "Ada Okafor",
		Amount:            decimal.RequireFromString("100"),
		Currency:          models.PeggedCurrency,
		ConvertedAmount:   decimal.RequireFromString("153250"),
		RecipientCurrency: "NGN",
		ExchangeRate:      decimal.RequireFromString("1532.5"),
		Fee:               decimal.RequireFromString("1.5"),
		TotalPaid:         decimal.RequireFromString("101.5"),
		Category:          "family",
		Note:              "school fees",
		Status:            status,
		CreatedAt:         at,
		SettledAt:         at.Add(2 * time.Second),
	}
}

func TestRecordDeposit(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	ctx := context.Background()
	entry, err := service.RecordDeposit(ctx, testDeposit("tx1", "250.75", testTime))
	if err != nil {
		t.Fatalf("RecordDeposit failed: %v", err)
	}

	expected := decimal.RequireFromString("250.75")
	if !entry.LedgerAmount.Equal(expected) {
		t.Errorf("Expected ledger amount %s, got %s", expected, entry.LedgerAmount)
	}
	if !entry.BalanceBefore.IsZero() {
		t.Errorf("Expected balance before 0, got %s", entry.BalanceBefore)
	}
	if !entry.BalanceAfter.Equal(expected) {
		t.Errorf("Expected balance after %s, got %s", expected, entry.BalanceAfter)
	}
}

func TestRecordTransfer_CompletedDebitsTotalPaid(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	ctx := context.Background()
	if _, err := service.RecordDeposit(ctx, testDeposit("tx1", "500", testTime)); err != nil {
		t.Fatalf("Initial deposit failed: %v", err)
	}

	entry, err := service.RecordTransfer(ctx, testSend("tx2", models.StatusCompleted, testTime.Add(time.Minute)))
	if err != nil {
		t.Fatalf("RecordTransfer failed: %v", err)
	}

	expected := decimal.RequireFromString("398.5")
	if !entry.BalanceAfter.Equal(expected) {
		t.Errorf("Expected balance %s, got %s", expected, entry.BalanceAfter)
	}

	balance, err := service.GetBalance(ctx, "user1")
	if err != nil {
		t.Fatalf("GetBalance failed: %v", err)
	}
	if !balance.Equal(expected) {
		t.Errorf("Expected stored balance %s, got %s", expected, balance)
	}
}

func TestRecordTransfer_FailedLeavesBalance(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	ctx := context.Background()
	if _, err := service.RecordDeposit(ctx, testDeposit("tx1", "500", testTime)); err != nil {
		t.Fatalf("Initial deposit failed: %v", err)
	}

	entry, err := service.RecordTransfer(ctx, testSend("tx2", models.StatusFailed, testTime.Add(time.Minute)))
	if err != nil {
		t.Fatalf("RecordTransfer failed: %v", err)
	}
	if !entry.LedgerAmount.IsZero() {
		t.Errorf("Expected zero ledger amount for failed transfer, got %s", entry.LedgerAmount)
	}

	balance, err := service.GetBalance(ctx, "user1")
	if err != nil {
		t.Fatalf("GetBalance failed: %v", err)
	}
	if !balance.Equal(decimal.NewFromInt(500)) {
		t.Errorf("Expected balance 500, got %s", balance)
	}

	history, err := service.GetTransactionHistory(ctx, "user1", 10, 0)
	if err != nil {
		t.Fatalf("GetTransactionHistory failed: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("Expected 2 transactions in history, got %d", len(history))
	}
	if history[0].Status != models.StatusFailed {
		t.Errorf("Expected newest transaction to be failed, got %s", history[0].Status)
	}
}

func TestRecordTransfer_RejectsPending(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	_, err := service.RecordTransfer(context.Background(), testSend("tx1", models.StatusPending, testTime))
	if !errors.Is(err, store.ErrNotTerminal) {
		t.Errorf("Expected ErrNotTerminal, got %v", err)
	}
}

func TestRecordTransfer_InsufficientFunds(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	ctx := context.Background()
	if _, err := service.RecordDeposit(ctx, testDeposit("tx1", "50", testTime)); err != nil {
		t.Fatalf("Initial deposit failed: %v", err)
	}

	_, err := service.RecordTransfer(ctx, testSend("tx2", models.StatusCompleted, testTime.Add(time.Minute)))
	if !errors.Is(err, store.ErrInsufficientFunds) {
		t.Fatalf("Expected ErrInsufficientFunds, got %v", err)
	}

	// Nothing from the rejected transfer may be visible
	history, err := service.GetTransactionHistory(ctx, "user1", 10, 0)
	if err != nil {
		t.Fatalf("GetTransactionHistory failed: %v", err)
	}
	if len(history) != 1 {
		t.Errorf("Expected 1 transaction in history, got %d", len(history))
	}
}

func TestRecordTransaction_DuplicateHandling(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	ctx := context.Background()
	if _, err := service.RecordDeposit(ctx, testDeposit("duplicate-tx", "10", testTime)); err != nil {
		t.Fatalf("First RecordDeposit failed: %v", err)
	}

	_, err := service.RecordDeposit(ctx, testDeposit("duplicate-tx", "10", testTime))
	if err == nil {
		t.Fatalf("Expected duplicate transaction error, got nil")
	}
	if !errors.Is(err, ErrDuplicateTransaction) {
		t.Errorf("Expected duplicate transaction error, got: %v", err)
	}

	balance, err := service.GetBalance(ctx, "user1")
	if err != nil {
		t.Fatalf("GetBalance failed: %v", err)
	}
	if !balance.Equal(decimal.NewFromInt(10)) {
		t.Errorf("Expected balance 10, got %s", balance)
	}
}

func TestGetTransaction_RoundTrip(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	ctx := context.Background()
	if _, err := service.RecordDeposit(ctx, testDeposit("tx1", "500", testTime)); err != nil {
		t.Fatalf("Initial deposit failed: %v", err)
	}
	original := testSend("tx2", models.StatusCompleted, testTime.Add(time.Minute))
	if _, err := service.RecordTransfer(ctx, original); err != nil {
		t.Fatalf("RecordTransfer failed: %v", err)
	}

	got, err := service.GetTransaction(ctx, "user1", "tx2")
	if err != nil {
		t.Fatalf("GetTransaction failed: %v", err)
	}

	textFields := []struct{ name, want, got string }{
		{"Id", original.Id, got.Id},
		{"ReferenceNumber", original.ReferenceNumber, got.ReferenceNumber},
		{"UserId", original.UserId, got.UserId},
		{"Type", original.Type, got.Type},
		{"RecipientId", original.RecipientId, got.RecipientId},
		{"RecipientName", original.RecipientName, got.RecipientName},
		{"Currency", original.Currency, got.Currency},
		{"RecipientCurrency", original.RecipientCurrency, got.RecipientCurrency},
		{"Category", original.Category, got.Category},
		{"Note", original.Note, got.Note},
		{"Status", original.Status, got.Status},
	}
	for _, s := range textFields {
		if s.want != s.got {
			t.Errorf("Expected %s %q, got %q", s.name, s.want, s.got)
		}
	}

	decimals := []struct {
		name      string
		want, got decimal.Decimal
	}{
		{"Amount", original.Amount, got.Amount},
		{"ConvertedAmount", original.ConvertedAmount, got.ConvertedAmount},
		{"ExchangeRate", original.ExchangeRate, got.ExchangeRate},
		{"Fee", original.Fee, got.Fee},
		{"TotalPaid", original.TotalPaid, got.TotalPaid},
	}
	for _, d := range decimals {
		if !d.want.Equal(d.got) {
			t.Errorf("Expected %s %s, got %s", d.name, d.want, d.got)
		}
	}

	if !got.CreatedAt.Equal(original.CreatedAt) {
		t.Errorf("Expected CreatedAt %v, got %v", original.CreatedAt, got.CreatedAt)
	}
	if !got.SettledAt.Equal(original.SettledAt) {
		t.Errorf("Expected SettledAt %v, got %v", original.SettledAt, got.SettledAt)
	}
}

func TestGetTransaction_NotFound(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	ctx := context.Background()
	if _, err := service.RecordDeposit(ctx, testDeposit("tx1", "5", testTime)); err != nil {
		t.Fatalf("Initial deposit failed: %v", err)
	}

	// Owned by user1, so another user must not see it
	_, err := service.GetTransaction(ctx, "user2", "tx1")
	if !errors.Is(err, store.ErrTransactionNotFound) {
		t.Errorf("Expected ErrTransactionNotFound, got %v", err)
	}
}

func TestGetTransactionHistory_Pagination(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	ctx := context.Background()
	ids := []string{"tx1", "tx2", "tx3", "tx4"}
	for i, id := range ids {
		if _, err := service.RecordDeposit(ctx, testDeposit(id, "1", testTime.Add(time.Duration(i)*time.Hour))); err != nil {
			t.Fatalf("RecordDeposit %s failed: %v", id, err)
		}
	}

	page, err := service.GetTransactionHistory(ctx, "user1", 2, 1)
	if err != nil {
		t.Fatalf("GetTransactionHistory failed: %v", err)
	}
	if len(page) != 2 {
		t.Fatalf("Expected 2 transactions, got %d", len(page))
	}
	if page[0].Id != "tx3" || page[1].Id != "tx2" {
		t.Errorf("Expected [tx3 tx2], got [%s %s]", page[0].Id, page[1].Id)
	}
}
