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

package main

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"remit-wallet-go/internal/common"
	"remit-wallet-go/internal/config"
	"remit-wallet-go/internal/models"
	"remit-wallet-go/internal/transfer"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func main() {
	ctx := context.Background()

	logger, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	emailFlag := flag.String("email", "", "User email (required)")
	amountFlag := flag.String("amount", "", "Amount to deposit in CBUSD (required)")
	methodFlag := flag.String("method", transfer.DepositMethods[0], "Funding source: "+strings.Join(transfer.DepositMethods, ", "))
	flag.Parse()

	if *emailFlag == "" || *amountFlag == "" {
		logger.Fatal("Both flags are required: --email and --amount")
	}

	amount, err := decimal.NewFromString(*amountFlag)
	if err != nil {
		logger.Fatal("Invalid amount format", zap.String("amount", *amountFlag), zap.Error(err))
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	services, err := common.InitializeServices(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to initialize services", zap.Error(err))
	}
	defer services.Close()

	user, err := common.ResolveUser(ctx, services.DbService, *emailFlag, logger)
	if err != nil {
		logger.Fatal("Failed to find user", zap.Error(err))
	}

	result, err := services.Wallet.ProcessDeposit(ctx, user.Id, amount, *methodFlag)
	if err != nil {
		logger.Fatal("Deposit failed", zap.Error(err))
	}
	if !result.Success {
		logger.Fatal("Deposit rejected", zap.String("reason", result.Error))
	}

	fmt.Println()
	common.PrintReceipt(models.NewReceipt(*result.Transaction))
	fmt.Printf("New balance:     %s\n", common.FormatMoney(result.NewBalance, models.PeggedCurrency))
	common.PrintSeparator("=", common.DefaultWidth)

	logger.Info("Deposit completed",
		zap.String("user", user.Email),
		zap.String("amount", amount.String()),
		zap.String("new_balance", result.NewBalance.String()))
}
