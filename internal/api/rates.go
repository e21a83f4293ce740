package api

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"remit-wallet-go/internal/models"
)

var ErrUnknownCurrency = errors.New("unknown currency")

// RateBoard is the live rate table shown to users
type RateBoard struct {
	UpdatedAt time.Time          `json:"updated_at"`
	Rates     []models.RateQuote `json:"rates"`
}

func (s *WalletService) GetRates() RateBoard {
	return RateBoard{
		UpdatedAt: s.feed.LastUpdated(),
		Rates:     s.feed.Quotes(),
	}
}

func (s *WalletService) GetRate(code string) (models.RateQuote, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	quote, ok := s.feed.Quote(code)
	if !ok {
		return models.RateQuote{}, fmt.Errorf("%w: %s", ErrUnknownCurrency, code)
	}
	return quote, nil
}

// CurrencyInfo returns the reference data for a supported currency
func (s *WalletService) CurrencyInfo(code string) (models.CurrencyInfo, error) {
	info, ok := s.feed.Currency(strings.ToUpper(strings.TrimSpace(code)))
	if !ok {
		return models.CurrencyInfo{}, fmt.Errorf("%w: %s", ErrUnknownCurrency, code)
	}
	return info, nil
}
