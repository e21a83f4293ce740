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

package api

import (
	"context"
	"fmt"
	"time"

	"remit-wallet-go/internal/analytics"
	"remit-wallet-go/internal/models"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100

	// analytics reads at most this much history
	maxAnalyticsTransactions = 1000
)

// GetBalance returns the user's spendable CBUSD balance
func (s *WalletService) GetBalance(ctx context.Context, userId string) (decimal.Decimal, error) {
	if _, err := s.GetUser(ctx, userId); err != nil {
		return decimal.Zero, err
	}

	balance, err := s.ledger.GetBalance(ctx, userId)
	if err != nil {
		zap.L().Error("Failed to get user balance",
			zap.String("user_id", userId),
			zap.Error(err))
		return decimal.Zero, fmt.Errorf("failed to retrieve balance: %w", err)
	}

	return balance, nil
}

// GetUserBalances returns all non-zero balances for a user
func (s *WalletService) GetUserBalances(ctx context.Context, userId string) ([]models.UserBalance, error) {
	if _, err := s.GetUser(ctx, userId); err != nil {
		return nil, err
	}

	balances, err := s.ledger.GetAllBalances(ctx, userId)
	if err != nil {
		zap.L().Error("Failed to get user balances", zap.String("user_id", userId), zap.Error(err))
		return nil, fmt.Errorf("failed to retrieve balances: %w", err)
	}

	result := make([]models.UserBalance, 0, len(balances))
	for _, balance := range balances {
		if balance.Balance.IsZero() {
			continue
		}
		result = append(result, models.UserBalance{
			Asset:   balance.Asset,
			Balance: balance.Balance,
		})
	}

	return result, nil
}

// GetTransactionHistory returns paginated transaction history, newest first
func (s *WalletService) GetTransactionHistory(ctx context.Context, userId string, limit, offset int) ([]models.Transaction, error) {
	if _, err := s.GetUser(ctx, userId); err != nil {
		return nil, err
	}

	if limit <= 0 || limit > maxHistoryLimit {
		limit = defaultHistoryLimit
	}
	if offset < 0 {
		offset = 0
	}

	transactions, err := s.ledger.GetTransactionHistory(ctx, userId, limit, offset)
	if err != nil {
		zap.L().Error("Failed to get transaction history",
			zap.String("user_id", userId),
			zap.Error(err))
		return nil, fmt.Errorf("failed to retrieve transaction history: %w", err)
	}

	if transactions == nil {
		transactions = []models.Transaction{}
	}
	return transactions, nil
}

// GetReceipt returns the receipt of one of the user's transactions
func (s *WalletService) GetReceipt(ctx context.Context, userId, transactionId string) (*models.Receipt, error) {
	if _, err := s.GetUser(ctx, userId); err != nil {
		return nil, err
	}

	tx, err := s.ledger.GetTransaction(ctx, userId, transactionId)
	if err != nil {
		return nil, err
	}

	receipt := models.NewReceipt(*tx)
	return &receipt, nil
}

// GetAnalytics summarises the user's history created in [from, to)
func (s *WalletService) GetAnalytics(ctx context.Context, userId string, from, to time.Time) (analytics.Summary, error) {
	if _, err := s.GetUser(ctx, userId); err != nil {
		return analytics.Summary{}, err
	}

	var history []models.Transaction
	for offset := 0; offset < maxAnalyticsTransactions; offset += maxHistoryLimit {
		page, err := s.ledger.GetTransactionHistory(ctx, userId, maxHistoryLimit, offset)
		if err != nil {
			return analytics.Summary{}, fmt.Errorf("failed to retrieve transaction history: %w", err)
		}
		history = append(history, page...)

		// history is newest first, so older pages cannot fall in the period
		if len(page) < maxHistoryLimit || (!from.IsZero() && page[len(page)-1].CreatedAt.Before(from)) {
			break
		}
	}

	return analytics.Summarize(history, from, to), nil
}
