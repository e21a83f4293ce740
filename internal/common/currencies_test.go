package common

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"remit-wallet-go/internal/models"

	"github.com/shopspring/decimal"
)

func TestDefaultCurrencies(t *testing.T) {
	currencies := DefaultCurrencies()
	if len(currencies) != 13 {
		t.Fatalf("Expected 13 currencies, got %d", len(currencies))
	}
	if currencies[0].Code != models.PeggedCurrency || currencies[0].BaseRate != 1 || currencies[0].Volatility != 0 {
		t.Errorf("Expected pegged CBUSD first, got %+v", currencies[0])
	}
	for _, c := range currencies {
		if c.Code == "NGN" && c.BaseRate != 1532.50 {
			t.Errorf("Expected NGN base rate 1532.50, got %v", c.BaseRate)
		}
	}
}

func TestLoadCurrencies_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "currencies.yaml")
	data := `currencies:
  - code: cbusd
    name: Coinbase USD
    base_rate: 1
    min_amount: "1"
  - code: NGN
    name: Nigerian Naira
    base_rate: 1532.50
    volatility: 2
    min_amount: "2.50"
`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}

	currencies, err := LoadCurrencies(path)
	if err != nil {
		t.Fatalf("LoadCurrencies failed: %v", err)
	}
	if len(currencies) != 2 {
		t.Fatalf("Expected 2 currencies, got %d", len(currencies))
	}
	if currencies[0].Code != models.PeggedCurrency {
		t.Errorf("Expected upper-cased code CBUSD, got %s", currencies[0].Code)
	}
	if !currencies[1].MinAmount.Equal(decimal.RequireFromString("2.5")) {
		t.Errorf("Expected min amount 2.5, got %s", currencies[1].MinAmount)
	}
}

func TestLoadCurrencies_Empty(t *testing.T) {
	currencies, err := LoadCurrencies("")
	if err != nil {
		t.Fatalf("LoadCurrencies failed: %v", err)
	}
	if len(currencies) != len(DefaultCurrencies()) {
		t.Errorf("Expected defaults, got %d currencies", len(currencies))
	}
}

func TestParseCurrencies_Invalid(t *testing.T) {
	cases := map[string]string{
		"missing code":      "currencies:\n  - base_rate: 1\n",
		"duplicate":         "currencies:\n  - {code: CBUSD, base_rate: 1}\n  - {code: CBUSD, base_rate: 1}\n",
		"zero rate":         "currencies:\n  - {code: CBUSD, base_rate: 0}\n",
		"bad minimum":       "currencies:\n  - {code: CBUSD, base_rate: 1, min_amount: abc}\n",
		"no pegged":         "currencies:\n  - {code: NGN, base_rate: 1532.5}\n",
		"negative volatile": "currencies:\n  - {code: CBUSD, base_rate: 1, volatility: -1}\n",
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := ParseCurrencies([]byte(data)); err == nil {
				t.Error("Expected error, got nil")
			}
		})
	}

	if _, err := LoadCurrencies("does-not-exist.yaml"); err == nil || !strings.Contains(err.Error(), "unable to read") {
		t.Errorf("Expected read error, got %v", err)
	}
}
