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
	"errors"

	"remit-wallet-go/internal/models"
	"remit-wallet-go/internal/store"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ProcessDeposit credits a deposit to the user's balance. The result carries
// the error text as well so CLIs can print it.
func (s *WalletService) ProcessDeposit(ctx context.Context, userId string, amount decimal.Decimal, method string) (*models.DepositResult, error) {
	zap.L().Info("Processing deposit",
		zap.String("user_id", userId),
		zap.String("amount", amount.String()),
		zap.String("method", method))

	user, err := s.GetUser(ctx, userId)
	if err != nil {
		return &models.DepositResult{Success: false, UserId: userId, Error: err.Error()}, err
	}

	entry, err := s.orchestrator.Deposit(ctx, user.Id, amount, method)
	if err != nil {
		if errors.Is(err, store.ErrDuplicateTransaction) {
			zap.L().Info("Duplicate deposit detected in API service",
				zap.String("user_id", userId),
				zap.String("amount", amount.String()))
		} else {
			zap.L().Error("Deposit processing failed",
				zap.String("user_id", userId),
				zap.String("amount", amount.String()),
				zap.Error(err))
		}
		return &models.DepositResult{Success: false, UserId: userId, Error: err.Error()}, err
	}

	newBalance, err := s.ledger.GetBalance(ctx, user.Id)
	if err != nil {
		zap.L().Error("Failed to get updated balance", zap.Error(err))
		newBalance = entry.BalanceAfter
	}

	zap.L().Info("Deposit processed successfully",
		zap.String("user_id", user.Id),
		zap.String("user_name", user.Name),
		zap.String("amount", amount.String()),
		zap.String("new_balance", newBalance.String()))

	return &models.DepositResult{
		Success:     true,
		UserId:      user.Id,
		Transaction: &entry.Transaction,
		NewBalance:  newBalance,
	}, nil
}
