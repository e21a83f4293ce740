package analytics

import (
	"sort"
	"time"

	"remit-wallet-go/internal/models"

	"github.com/shopspring/decimal"
)

const uncategorized = "uncategorized"

// CategoryAmount is completed spend aggregated by category.
type CategoryAmount struct {
	Category string          `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
	Count    int             `json:"count"`
}

// CurrencyAmount is completed spend aggregated by payout currency.
type CurrencyAmount struct {
	Currency        string          `json:"currency"`
	Amount          decimal.Decimal `json:"amount"`
	ConvertedAmount decimal.Decimal `json:"converted_amount"`
	Count           int             `json:"count"`
}

// DailyAmount is completed spend (fees included) for one UTC day.
type DailyAmount struct {
	Date   string          `json:"date"`
	Amount decimal.Decimal `json:"amount"`
}

// Summary is the spending overview of a user's history over a period.
type Summary struct {
	From             time.Time        `json:"from,omitempty"`
	To               time.Time        `json:"to,omitempty"`
	TransactionCount int              `json:"transaction_count"`
	TotalSent        decimal.Decimal  `json:"total_sent"`
	TotalFees        decimal.Decimal  `json:"total_fees"`
	TotalReceived    decimal.Decimal  `json:"total_received"`
	StatusCounts     map[string]int   `json:"status_counts"`
	ByCategory       []CategoryAmount `json:"by_category"`
	ByCurrency       []CurrencyAmount `json:"by_currency"`
	DailyTrend       []DailyAmount    `json:"daily_trend"`
}

// Summarize aggregates transactions created in [from, to). A zero bound is
// open. Only completed sends and withdrawals count as spend; only
// completed deposits count as received.
func Summarize(transactions []models.Transaction, from, to time.Time) Summary {
	summary := Summary{
		From:          from,
		To:            to,
		TotalSent:     decimal.Zero,
		TotalFees:     decimal.Zero,
		TotalReceived: decimal.Zero,
		StatusCounts:  make(map[string]int),
	}

	categories := make(map[string]*CategoryAmount)
	currencies := make(map[string]*CurrencyAmount)
	daily := make(map[string]decimal.Decimal)

	for _, tx := range transactions {
		if !from.IsZero() && tx.CreatedAt.Before(from) {
			continue
		}
		if !to.IsZero() && !tx.CreatedAt.Before(to) {
			continue
		}

		summary.TransactionCount++
		summary.StatusCounts[tx.Status]++

		if tx.Status != models.StatusCompleted {
			continue
		}

		if tx.Type == models.TransactionTypeDeposit {
			summary.TotalReceived = summary.TotalReceived.Add(tx.Amount)
			continue
		}

		summary.TotalSent = summary.TotalSent.Add(tx.Amount)
		summary.TotalFees = summary.TotalFees.Add(tx.Fee)

		category := tx.Category
		if category == "" {
			category = uncategorized
		}
		c, ok := categories[category]
		if !ok {
			c = &CategoryAmount{Category: category, Amount: decimal.Zero}
			categories[category] = c
		}
		c.Amount = c.Amount.Add(tx.Amount)
		c.Count++

		cur, ok := currencies[tx.RecipientCurrency]
		if !ok {
			cur = &CurrencyAmount{Currency: tx.RecipientCurrency, Amount: decimal.Zero, ConvertedAmount: decimal.Zero}
			currencies[tx.RecipientCurrency] = cur
		}
		cur.Amount = cur.Amount.Add(tx.Amount)
		cur.ConvertedAmount = cur.ConvertedAmount.Add(tx.ConvertedAmount)
		cur.Count++

		day := tx.CreatedAt.UTC().Format(time.DateOnly)
		daily[day] = daily[day].Add(tx.TotalPaid)
	}

	summary.ByCategory = make([]CategoryAmount, 0, len(categories))
	for _, c := range categories {
		summary.ByCategory = append(summary.ByCategory, *c)
	}
	sort.Slice(summary.ByCategory, func(i, j int) bool {
		a, b := summary.ByCategory[i], summary.ByCategory[j]
		if !a.Amount.Equal(b.Amount) {
			return a.Amount.GreaterThan(b.Amount)
		}
		return a.Category < b.Category
	})

	summary.ByCurrency = make([]CurrencyAmount, 0, len(currencies))
	for _, c := range currencies {
		summary.ByCurrency = append(summary.ByCurrency, *c)
	}
	sort.Slice(summary.ByCurrency, func(i, j int) bool {
		a, b := summary.ByCurrency[i], summary.ByCurrency[j]
		if !a.Amount.Equal(b.Amount) {
			return a.Amount.GreaterThan(b.Amount)
		}
		return a.Currency < b.Currency
	})

	summary.DailyTrend = make([]DailyAmount, 0, len(daily))
	for day, amount := range daily {
		summary.DailyTrend = append(summary.DailyTrend, DailyAmount{Date: day, Amount: amount})
	}
	sort.Slice(summary.DailyTrend, func(i, j int) bool {
		return summary.DailyTrend[i].Date < summary.DailyTrend[j].Date
	})

	return summary
}

// Percentage returns part as a percentage of total, zero when total is zero.
func Percentage(part, total decimal.Decimal) decimal.Decimal {
	if total.IsZero() {
		return decimal.Zero
	}
	return part.Div(total).Mul(decimal.NewFromInt(100)).Round(2)
}
