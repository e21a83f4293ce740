/**
 * Copyright 2025-present Coinbase Global, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// UserBalance represents a user's balance for a specific asset
type UserBalance struct {
	Asset   string          `json:"asset"`
	Balance decimal.Decimal `json:"balance"`
}

// TransferResult is returned when a send or withdrawal is accepted
type TransferResult struct {
	Transaction Transaction `json:"transaction"`
	SettlesAt   time.Time   `json:"settles_at"`
}

// DepositResult represents the result of processing a deposit
type DepositResult struct {
	Success     bool            `json:"success"`
	UserId      string          `json:"user_id,omitempty"`
	Transaction *Transaction    `json:"transaction,omitempty"`
	NewBalance  decimal.Decimal `json:"new_balance,omitempty"`
	Error       string          `json:"error,omitempty"`
}

// Receipt is the user-facing confirmation of a terminal transaction
type Receipt struct {
	ReferenceNumber   string          `json:"reference_number"`
	Status            string          `json:"status"`
	RecipientName     string          `json:"recipient_name,omitempty"`
	Amount            decimal.Decimal `json:"amount"`
	Fee               decimal.Decimal `json:"fee"`
	TotalPaid         decimal.Decimal `json:"total_paid"`
	Currency          string          `json:"currency"`
	ConvertedAmount   decimal.Decimal `json:"converted_amount"`
	RecipientCurrency string          `json:"recipient_currency"`
	ExchangeRate      decimal.Decimal `json:"exchange_rate"`
	Category          string          `json:"category,omitempty"`
	Note              string          `json:"note,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
	SettledAt         time.Time       `json:"settled_at,omitempty"`
}

// NewReceipt builds a receipt view of t.
func NewReceipt(t Transaction) Receipt {
	return Receipt{
		ReferenceNumber:   t.ReferenceNumber,
		Status:            t.Status,
		RecipientName:     t.RecipientName,
		Amount:            t.Amount,
		Fee:               t.Fee,
		TotalPaid:         t.TotalPaid,
		Currency:          t.Currency,
		ConvertedAmount:   t.ConvertedAmount,
		RecipientCurrency: t.RecipientCurrency,
		ExchangeRate:      t.ExchangeRate,
		Category:          t.Category,
		Note:              t.Note,
		CreatedAt:         t.CreatedAt,
		SettledAt:         t.SettledAt,
	}
}
