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

// CurrencyInfo is the reference data for one supported payout currency
type CurrencyInfo struct {
	Code       string          `yaml:"code" json:"code"`
	Name       string          `yaml:"name" json:"name"`
	Country    string          `yaml:"country" json:"country"`
	BaseRate   float64         `yaml:"base_rate" json:"base_rate"`
	Volatility float64         `yaml:"volatility" json:"volatility"`
	MinAmount  decimal.Decimal `yaml:"-" json:"min_amount"`
}

// ChangeDirection describes a live rate relative to its base rate
type ChangeDirection string

const (
	ChangeUp      ChangeDirection = "up"
	ChangeDown    ChangeDirection = "down"
	ChangeNeutral ChangeDirection = "neutral"
)

// RateQuote is a point-in-time view of one currency's live rate
type RateQuote struct {
	Currency         string          `json:"currency"`
	Rate             float64         `json:"rate"`
	BaseRate         float64         `json:"base_rate"`
	ChangePercentage float64         `json:"change_percentage"`
	Direction        ChangeDirection `json:"direction"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// SettlementEvent is published once a transfer reaches a terminal status
type SettlementEvent struct {
	TransactionId     string          `json:"transaction_id"`
	ReferenceNumber   string          `json:"reference_number"`
	UserId            string          `json:"user_id"`
	Type              string          `json:"type"`
	RecipientName     string          `json:"recipient_name"`
	Amount            decimal.Decimal `json:"amount"`
	Currency          string          `json:"currency"`
	ConvertedAmount   decimal.Decimal `json:"converted_amount"`
	RecipientCurrency string          `json:"recipient_currency"`
	Status            string          `json:"status"`
	SettledAt         time.Time       `json:"settled_at"`
}
