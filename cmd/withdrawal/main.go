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
	"errors"
	"flag"
	"fmt"
	"time"

	"remit-wallet-go/internal/common"
	"remit-wallet-go/internal/config"
	"remit-wallet-go/internal/models"
	"remit-wallet-go/internal/store"
	"remit-wallet-go/internal/transfer"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const settlementGrace = 10 * time.Second

type withdrawalRequest struct {
	email       string
	recipientId string
	amount      decimal.Decimal
	note        string
}

func parseAndValidateFlags() (*withdrawalRequest, error) {
	emailFlag := flag.String("email", "", "User email (required)")
	recipientFlag := flag.String("recipient", "", "Saved bank recipient id (required)")
	amountFlag := flag.String("amount", "", "Amount to withdraw in CBUSD (required)")
	noteFlag := flag.String("note", "", "Note shown on the receipt (optional)")
	flag.Parse()

	if *emailFlag == "" || *recipientFlag == "" || *amountFlag == "" {
		return nil, fmt.Errorf("all flags are required: --email, --recipient, --amount")
	}

	amount, err := decimal.NewFromString(*amountFlag)
	if err != nil {
		return nil, fmt.Errorf("invalid amount format: %w", err)
	}

	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("amount must be greater than zero")
	}

	return &withdrawalRequest{
		email:       *emailFlag,
		recipientId: *recipientFlag,
		amount:      amount,
		note:        *noteFlag,
	}, nil
}

func verifyBalance(ctx context.Context, services *common.Services, userId string, required decimal.Decimal) (decimal.Decimal, error) {
	balance, err := services.Wallet.GetBalance(ctx, userId)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to get balance: %w", err)
	}

	if balance.LessThan(required) {
		return balance, fmt.Errorf("insufficient balance: current=%s, required=%s, shortfall=%s",
			balance.StringFixed(2), required.StringFixed(2), required.Sub(balance).StringFixed(2))
	}

	zap.L().Info("Balance verification successful",
		zap.String("user_id", userId),
		zap.String("balance", balance.String()),
		zap.String("required", required.String()))

	return balance, nil
}

func printWithdrawalSummary(user common.UserInfo, recipient *models.Recipient, balance decimal.Decimal, breakdown transfer.Breakdown) {
	common.PrintHeader("WITHDRAWAL REQUEST", common.DefaultWidth)
	fmt.Printf("User:           %s (%s)\n", user.Name, user.Email)
	fmt.Printf("Bank account:   %s, %s %s\n", recipient.Name, recipient.BankName, recipient.AccountNumber)
	fmt.Printf("Balance:        %s\n", common.FormatMoney(balance, models.PeggedCurrency))
	fmt.Printf("Amount:         %s\n", common.FormatMoney(breakdown.Amount, models.PeggedCurrency))
	fmt.Printf("Fee:            %s\n", common.FormatMoney(breakdown.Fee, models.PeggedCurrency))
	fmt.Printf("Total:          %s\n", common.FormatMoney(breakdown.TotalPaid, models.PeggedCurrency))
	fmt.Printf("Payout:         %s\n", common.FormatMoney(breakdown.ConvertedAmount, recipient.Currency))
	common.PrintSeparator("=", common.DefaultWidth)
}

func main() {
	ctx := context.Background()

	logger, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	req, err := parseAndValidateFlags()
	if err != nil {
		logger.Fatal("Invalid arguments", zap.Error(err))
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

	user, err := common.ResolveUser(ctx, services.DbService, req.email, logger)
	if err != nil {
		logger.Fatal("Failed to find user", zap.Error(err))
	}

	recipient, err := services.Registry.Get(ctx, user.Id, req.recipientId)
	if err != nil {
		logger.Fatal("Failed to find recipient", zap.String("recipient_id", req.recipientId), zap.Error(err))
	}
	if recipient.IsPeer() {
		logger.Fatal("Withdrawals pay out to bank accounts, use cmd/send for peers")
	}

	breakdown := services.Orchestrator.Quote(req.amount, recipient.Currency)
	balance, err := verifyBalance(ctx, services, user.Id, breakdown.TotalPaid)
	if err != nil {
		logger.Fatal("Balance check failed", zap.Error(err))
	}

	printWithdrawalSummary(user, recipient, balance, breakdown)

	result, handle, err := services.Wallet.ProcessWithdrawal(ctx, user.Id, recipient.Id, req.amount, req.note)
	if err != nil {
		switch {
		case errors.Is(err, transfer.ErrTransferInFlight):
			logger.Fatal("Another transfer is still settling for this user - please retry shortly")
		case errors.Is(err, store.ErrInsufficientFunds):
			logger.Fatal("Insufficient funds", zap.Error(err))
		default:
			logger.Fatal("Withdrawal failed", zap.Error(err))
		}
	}

	fmt.Printf("\nWithdrawal accepted: %s (settles at %s)\n",
		result.Transaction.ReferenceNumber, result.SettlesAt.Format(time.RFC1123))

	settled, err := common.AwaitSettlement(ctx, handle, services.Orchestrator.SettlementDelay(), settlementGrace)
	if err != nil {
		logger.Fatal("Withdrawal did not complete", zap.Error(err))
	}

	fmt.Println()
	common.PrintReceipt(models.NewReceipt(settled))
	common.PrintSeparator("=", common.DefaultWidth)

	logger.Info("Withdrawal completed",
		zap.String("reference", settled.ReferenceNumber),
		zap.String("status", settled.Status))
}
