package analytics

import (
	"testing"
	"time"

	"remit-wallet-go/internal/models"

	"github.com/shopspring/decimal"
)

func tx(typ, status, category, currency, amount, fee string, at time.Time) models.Transaction {
	a := decimal.RequireFromString(amount)
	f := decimal.RequireFromString(fee)
	return models.Transaction{
		Type: typ, Status: status, Category: category,
		Amount: a, Fee: f, TotalPaid: a.Add(f),
		Currency: models.PeggedCurrency, RecipientCurrency: currency,
		ConvertedAmount: a, CreatedAt: at,
	}
}

func TestSummarize(t *testing.T) {
	day1 := time.Date(2025, 4, 1, 10, 0, 0, 0, time.UTC)
	day2 := day1.Add(24 * time.Hour)

	history := []models.Transaction{
		tx(models.TransactionTypeDeposit, models.StatusCompleted, "", models.PeggedCurrency, "500", "0", day1),
		tx(models.TransactionTypeSend, models.StatusCompleted, "family", "NGN", "100", "1.5", day1),
		tx(models.TransactionTypeSend, models.StatusCompleted, "bills", models.PeggedCurrency, "40", "0.2", day2),
		tx(models.TransactionTypeWithdrawal, models.StatusCompleted, "", "KES", "60", "0.9", day2),
		tx(models.TransactionTypeSend, models.StatusFailed, "family", "NGN", "200", "3", day2),
	}

	s := Summarize(history, time.Time{}, time.Time{})

	if s.TransactionCount != 5 {
		t.Errorf("Expected 5 transactions, got %d", s.TransactionCount)
	}
	if !s.TotalSent.Equal(decimal.NewFromInt(200)) {
		t.Errorf("Expected total sent 200, got %s", s.TotalSent)
	}
	if !s.TotalFees.Equal(decimal.RequireFromString("2.6")) {
		t.Errorf("Expected total fees 2.6, got %s", s.TotalFees)
	}
	if !s.TotalReceived.Equal(decimal.NewFromInt(500)) {
		t.Errorf("Expected total received 500, got %s", s.TotalReceived)
	}
	if s.StatusCounts[models.StatusFailed] != 1 || s.StatusCounts[models.StatusCompleted] != 4 {
		t.Errorf("Unexpected status counts: %v", s.StatusCounts)
	}

	if len(s.ByCategory) != 3 {
		t.Fatalf("Expected 3 categories, got %d", len(s.ByCategory))
	}
	if s.ByCategory[0].Category != "family" || !s.ByCategory[0].Amount.Equal(decimal.NewFromInt(100)) {
		t.Errorf("Expected family 100 first, got %s %s", s.ByCategory[0].Category, s.ByCategory[0].Amount)
	}
	if s.ByCategory[1].Category != uncategorized {
		t.Errorf("Expected %s second, got %s", uncategorized, s.ByCategory[1].Category)
	}

	if len(s.ByCurrency) != 3 || s.ByCurrency[0].Currency != "NGN" {
		t.Errorf("Expected NGN to lead 3 currencies, got %+v", s.ByCurrency)
	}

	if len(s.DailyTrend) != 2 {
		t.Fatalf("Expected 2 days, got %d", len(s.DailyTrend))
	}
	if s.DailyTrend[0].Date != "2025-04-01" || !s.DailyTrend[0].Amount.Equal(decimal.RequireFromString("101.5")) {
		t.Errorf("Expected 2025-04-01 101.5, got %s %s", s.DailyTrend[0].Date, s.DailyTrend[0].Amount)
	}
	if !s.DailyTrend[1].Amount.Equal(decimal.RequireFromString("101.1")) {
		t.Errorf("Expected 101.1 on day two, got %s", s.DailyTrend[1].Amount)
	}
}

func TestSummarize_Period(t *testing.T) {
	start := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	history := []models.Transaction{
		tx(models.TransactionTypeSend, models.StatusCompleted, "gift", "NGN", "10", "0.15", start.Add(-time.Minute)),
		tx(models.TransactionTypeSend, models.StatusCompleted, "gift", "NGN", "20", "0.3", start),
		tx(models.TransactionTypeSend, models.StatusCompleted, "gift", "NGN", "30", "0.45", start.Add(24*time.Hour)),
	}

	s := Summarize(history, start, start.Add(24*time.Hour))
	if s.TransactionCount != 1 {
		t.Errorf("Expected 1 transaction in period, got %d", s.TransactionCount)
	}
	if !s.TotalSent.Equal(decimal.NewFromInt(20)) {
		t.Errorf("Expected total sent 20, got %s", s.TotalSent)
	}
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(nil, time.Time{}, time.Time{})
	if s.TransactionCount != 0 || !s.TotalSent.IsZero() {
		t.Errorf("Expected empty summary, got %+v", s)
	}
	if s.ByCategory == nil || s.DailyTrend == nil {
		t.Error("Expected empty slices, got nil")
	}
}

func TestPercentage(t *testing.T) {
	if got := Percentage(decimal.NewFromInt(1), decimal.NewFromInt(3)); !got.Equal(decimal.RequireFromString("33.33")) {
		t.Errorf("Expected 33.33, got %s", got)
	}
	if got := Percentage(decimal.NewFromInt(1), decimal.Zero); !got.IsZero() {
		t.Errorf("Expected 0, got %s", got)
	}
}
