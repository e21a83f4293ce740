package transfer

import (
	"remit-wallet-go/internal/models"

	"github.com/shopspring/decimal"
)

var (
	peerFeeRate = decimal.RequireFromString("0.005")
	bankFeeRate = decimal.RequireFromString("0.015")
)

// Breakdown is the priced form of a transfer.
type Breakdown struct {
	Amount          decimal.Decimal
	ExchangeRate    decimal.Decimal
	ConvertedAmount decimal.Decimal
	Fee             decimal.Decimal
	TotalPaid       decimal.Decimal
}

// ComputeBreakdown prices a transfer of amount CBUSD paid out in
// recipientCurrency. Payouts in the pegged currency stay in the app and are
// charged 0.5% with no conversion; every other currency is a bank payout
// charged 1.5% and converted at the given rate (1 when unknown).
func ComputeBreakdown(amount decimal.Decimal, recipientCurrency string, rates map[string]float64) Breakdown {
	exchangeRate := decimal.NewFromInt(1)
	if rate, ok := rates[recipientCurrency]; ok {
		exchangeRate = decimal.NewFromFloat(rate)
	}

	var converted, fee decimal.Decimal
	if recipientCurrency == models.PeggedCurrency {
		converted = amount
		fee = amount.Mul(peerFeeRate)
	} else {
		converted = amount.Mul(exchangeRate)
		fee = amount.Mul(bankFeeRate)
	}

	return Breakdown{
		Amount:          amount,
		ExchangeRate:    exchangeRate,
		ConvertedAmount: converted,
		Fee:             fee,
		TotalPaid:       amount.Add(fee),
	}
}
