package common

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"remit-wallet-go/internal/models"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v2"
)

type CurrencyConfig struct {
	Code       string  `yaml:"code"`
	Name       string  `yaml:"name"`
	Country    string  `yaml:"country"`
	BaseRate   float64 `yaml:"base_rate"`
	Volatility float64 `yaml:"volatility"`
	MinAmount  string  `yaml:"min_amount"`
}

type CurrenciesConfig struct {
	Currencies []CurrencyConfig `yaml:"currencies"`
}

// DefaultCurrencies is used when no currencies file is configured.
func DefaultCurrencies() []models.CurrencyInfo {
	entries := []CurrencyConfig{
		{Code: models.PeggedCurrency, Name: "Coinbase USD", Country: "United States", BaseRate: 1, Volatility: 0, MinAmount: "1"},
		{Code: "NGN", Name: "Nigerian Naira", Country: "Nigeria", BaseRate: 1532.50, Volatility: 2.0, MinAmount: "1"},
		{Code: "KES", Name: "Kenyan Shilling", Country: "Kenya", BaseRate: 129.5, Volatility: 1.5, MinAmount: "1"},
		{Code: "GHS", Name: "Ghanaian Cedi", Country: "Ghana", BaseRate: 15.2, Volatility: 1.8, MinAmount: "1"},
		{Code: "ZAR", Name: "South African Rand", Country: "South Africa", BaseRate: 18.6, Volatility: 1.5, MinAmount: "2"},
		{Code: "EUR", Name: "Euro", Country: "Eurozone", BaseRate: 0.92, Volatility: 0.5, MinAmount: "5"},
		{Code: "GBP", Name: "British Pound", Country: "United Kingdom", BaseRate: 0.79, Volatility: 0.6, MinAmount: "5"},
		{Code: "INR", Name: "Indian Rupee", Country: "India", BaseRate: 83.2, Volatility: 0.8, MinAmount: "2"},
		{Code: "PHP", Name: "Philippine Peso", Country: "Philippines", BaseRate: 56.1, Volatility: 0.8, MinAmount: "2"},
		{Code: "MXN", Name: "Mexican Peso", Country: "Mexico", BaseRate: 17.1, Volatility: 0.8, MinAmount: "2"},
		{Code: "UGX", Name: "Ugandan Shilling", Country: "Uganda", BaseRate: 3780, Volatility: 1.6, MinAmount: "1"},
		{Code: "TZS", Name: "Tanzanian Shilling", Country: "Tanzania", BaseRate: 2510, Volatility: 1.6, MinAmount: "1"},
		{Code: "XOF", Name: "West African CFA Franc", Country: "Senegal", BaseRate: 605, Volatility: 0.7, MinAmount: "1"},
	}

	currencies, err := toCurrencyInfo(entries)
	if err != nil {
		panic(err)
	}
	return currencies
}

// LoadCurrencies reads currency reference data from a YAML file, or returns
// the defaults when currenciesFile is empty.
func LoadCurrencies(currenciesFile string) ([]models.CurrencyInfo, error) {
	if currenciesFile == "" {
		return DefaultCurrencies(), nil
	}

	var currenciesPath string
	if filepath.IsAbs(currenciesFile) {
		currenciesPath = currenciesFile
	} else {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		currenciesPath = filepath.Join(wd, currenciesFile)
	}

	data, err := os.ReadFile(currenciesPath)
	if err != nil {
		return nil, fmt.Errorf("unable to read %s: %w", currenciesFile, err)
	}
	return ParseCurrencies(data)
}

func ParseCurrencies(data []byte) ([]models.CurrencyInfo, error) {
	var config CurrenciesConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("unable to parse currencies: %w", err)
	}
	return toCurrencyInfo(config.Currencies)
}

func toCurrencyInfo(entries []CurrencyConfig) ([]models.CurrencyInfo, error) {
	seen := make(map[string]bool)
	currencies := make([]models.CurrencyInfo, 0, len(entries))

	for i, entry := range entries {
		code := strings.ToUpper(strings.TrimSpace(entry.Code))
		if code == "" {
			return nil, fmt.Errorf("currency at index %d missing code", i)
		}
		if seen[code] {
			return nil, fmt.Errorf("currency %s defined twice", code)
		}
		if entry.BaseRate <= 0 {
			return nil, fmt.Errorf("currency %s must have a positive base_rate", code)
		}
		if entry.Volatility < 0 {
			return nil, fmt.Errorf("currency %s has negative volatility", code)
		}

		minAmount := decimal.Zero
		if entry.MinAmount != "" {
			var err error
			minAmount, err = decimal.NewFromString(entry.MinAmount)
			if err != nil {
				return nil, fmt.Errorf("currency %s has invalid min_amount %q: %w", code, entry.MinAmount, err)
			}
		}

		seen[code] = true
		currencies = append(currencies, models.CurrencyInfo{
			Code:       code,
			Name:       entry.Name,
			Country:    entry.Country,
			BaseRate:   entry.BaseRate,
			Volatility: entry.Volatility,
			MinAmount:  minAmount,
		})
	}

	if !seen[models.PeggedCurrency] {
		return nil, fmt.Errorf("currencies must include %s", models.PeggedCurrency)
	}
	return currencies, nil
}
