package transfer

import (
	"testing"

	"remit-wallet-go/internal/models"

	"github.com/shopspring/decimal"
)

var testRates = map[string]float64{
	models.PeggedCurrency: 1,
	"NGN":                 1532.50,
	"KES":                 129.5,
	"EUR":                 0.92,
}

func TestComputeBreakdown_BankPayout(t *testing.T) {
	b := ComputeBreakdown(decimal.NewFromInt(100), "NGN", testRates)

	if !b.Fee.Equal(decimal.RequireFromString("1.50")) {
		t.Errorf("Expected fee 1.50, got %s", b.Fee)
	}
	if !b.ConvertedAmount.Equal(decimal.RequireFromString("153250.00")) {
		t.Errorf("Expected converted amount 153250.00, got %s", b.ConvertedAmount)
	}
	if !b.TotalPaid.Equal(decimal.RequireFromString("101.50")) {
		t.Errorf("Expected total paid 101.50, got %s", b.TotalPaid)
	}
	if !b.ExchangeRate.Equal(decimal.RequireFromString("1532.5")) {
		t.Errorf("Expected exchange rate 1532.5, got %s", b.ExchangeRate)
	}
}

func TestComputeBreakdown_PeerPayout(t *testing.T) {
	b := ComputeBreakdown(decimal.NewFromInt(50), models.PeggedCurrency, testRates)

	if !b.Fee.Equal(decimal.RequireFromString("0.25")) {
		t.Errorf("Expected fee 0.25, got %s", b.Fee)
	}
	if !b.ConvertedAmount.Equal(decimal.RequireFromString("50.00")) {
		t.Errorf("Expected converted amount 50.00, got %s", b.ConvertedAmount)
	}
	if !b.TotalPaid.Equal(decimal.RequireFromString("50.25")) {
		t.Errorf("Expected total paid 50.25, got %s", b.TotalPaid)
	}
}

func TestComputeBreakdown_Properties(t *testing.T) {
	amounts := []string{"0.01", "1", "19.99", "250.75", "1000", "98765.43"}
	currencies := []string{models.PeggedCurrency, "NGN", "KES", "EUR", "UNLISTED"}

	for _, a := range amounts {
		amount := decimal.RequireFromString(a)
		for _, c := range currencies {
			b := ComputeBreakdown(amount, c, testRates)

			if !b.TotalPaid.Equal(b.Amount.Add(b.Fee)) {
				t.Errorf("%s %s: expected total %s to equal amount + fee", a, c, b.TotalPaid)
			}

			if c == models.PeggedCurrency {
				if !b.Fee.Equal(amount.Mul(decimal.RequireFromString("0.005"))) {
					t.Errorf("%s %s: expected 0.5%% fee, got %s", a, c, b.Fee)
				}
				if !b.ConvertedAmount.Equal(amount) {
					t.Errorf("%s %s: expected no conversion, got %s", a, c, b.ConvertedAmount)
				}
				continue
			}

			if !b.Fee.Equal(amount.Mul(decimal.RequireFromString("0.015"))) {
				t.Errorf("%s %s: expected 1.5%% fee, got %s", a, c, b.Fee)
			}
			if !b.ConvertedAmount.Equal(amount.Mul(b.ExchangeRate)) {
				t.Errorf("%s %s: expected converted %s, got %s", a, c, amount.Mul(b.ExchangeRate), b.ConvertedAmount)
			}
		}
	}
}

func TestComputeBreakdown_UnknownCurrencyUsesRateOne(t *testing.T) {
	b := ComputeBreakdown(decimal.NewFromInt(10), "UNLISTED", testRates)
	if !b.ExchangeRate.Equal(decimal.NewFromInt(1)) {
		t.Errorf("Expected exchange rate 1, got %s", b.ExchangeRate)
	}
	if !b.ConvertedAmount.Equal(decimal.NewFromInt(10)) {
		t.Errorf("Expected converted amount 10, got %s", b.ConvertedAmount)
	}
}

func TestNewReferenceNumber(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		ref, err := NewReferenceNumber()
		if err != nil {
			t.Fatalf("NewReferenceNumber failed: %v", err)
		}
		if len(ref) != 12 || ref[:2] != "CB" {
			t.Fatalf("Expected CB + 10 characters, got %q", ref)
		}
		for _, c := range ref[2:] {
			if !(c >= 'A' && c <= 'Z') && !(c >= '0' && c <= '9') {
				t.Fatalf("Unexpected character %q in %q", c, ref)
			}
		}
		seen[ref] = true
	}
	if len(seen) < 99 {
		t.Errorf("Expected unique references, got %d distinct of 100", len(seen))
	}
}
