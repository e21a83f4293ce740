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
	"strings"
	"time"

	"remit-wallet-go/internal/api"
	"remit-wallet-go/internal/common"
	"remit-wallet-go/internal/config"
	"remit-wallet-go/internal/models"
	"remit-wallet-go/internal/registry"
	"remit-wallet-go/internal/store"
	"remit-wallet-go/internal/transfer"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const settlementGrace = 10 * time.Second

type sendFlags struct {
	email       string
	recipientId string
	name        string
	phone       string
	bankCode    string
	account     string
	bankName    string
	currency    string
	country     string
	amount      string
	category    string
	note        string
}

func parseFlags() sendFlags {
	var f sendFlags
	flag.StringVar(&f.email, "email", "", "Sender email (required)")
	flag.StringVar(&f.recipientId, "recipient-id", "", "Saved recipient id")
	flag.StringVar(&f.name, "name", "", "Recipient name, for a new recipient")
	flag.StringVar(&f.phone, "phone", "", "Peer phone number, for a new peer recipient")
	flag.StringVar(&f.bankCode, "bank-code", "", "Bank code, for a new bank recipient")
	flag.StringVar(&f.account, "account", "", "Account number, for a new bank recipient")
	flag.StringVar(&f.bankName, "bank-name", "", "Bank name (optional)")
	flag.StringVar(&f.currency, "currency", "", "Payout currency, for a new bank recipient")
	flag.StringVar(&f.country, "country", "", "Recipient country (optional)")
	flag.StringVar(&f.amount, "amount", "", "Amount to send in CBUSD (required)")
	flag.StringVar(&f.category, "category", "", "Category: "+strings.Join(models.TransactionCategories, ", "))
	flag.StringVar(&f.note, "note", "", "Note shown on the receipt (optional)")
	flag.Parse()
	return f
}

func buildRequest(f sendFlags) (api.SendRequest, error) {
	if f.email == "" || f.amount == "" {
		return api.SendRequest{}, fmt.Errorf("both flags are required: --email and --amount")
	}

	amount, err := decimal.NewFromString(f.amount)
	if err != nil {
		return api.SendRequest{}, fmt.Errorf("invalid amount format: %w", err)
	}

	req := api.SendRequest{Amount: amount, Category: f.category, Note: f.note}
	switch {
	case f.recipientId != "":
		req.RecipientId = f.recipientId
	case f.phone != "":
		req.Recipient = &registry.RecipientInput{
			Type:    models.RecipientTypePeer,
			Name:    f.name,
			Phone:   f.phone,
			Country: f.country,
		}
	case f.account != "":
		req.Recipient = &registry.RecipientInput{
			Type:          models.RecipientTypeBank,
			Name:          f.name,
			BankCode:      f.bankCode,
			AccountNumber: f.account,
			BankName:      f.bankName,
			Currency:      strings.ToUpper(f.currency),
			Country:       f.country,
		}
	default:
		return api.SendRequest{}, fmt.Errorf("pass --recipient-id, --phone for a peer, or --account for a bank recipient")
	}
	return req, nil
}

func printQuote(services *common.Services, req api.SendRequest, currency string) {
	breakdown := services.Orchestrator.Quote(req.Amount, currency)
	common.PrintHeader("TRANSFER QUOTE", common.DefaultWidth)
	fmt.Printf("Amount:         %s\n", common.FormatMoney(breakdown.Amount, models.PeggedCurrency))
	fmt.Printf("Fee:            %s\n", common.FormatMoney(breakdown.Fee, models.PeggedCurrency))
	fmt.Printf("Total:          %s\n", common.FormatMoney(breakdown.TotalPaid, models.PeggedCurrency))
	if currency != models.PeggedCurrency {
		fmt.Printf("Rate:           1 %s = %s %s\n", models.PeggedCurrency, breakdown.ExchangeRate.String(), currency)
	}
	fmt.Printf("Recipient gets: %s\n", common.FormatMoney(breakdown.ConvertedAmount, currency))
	common.PrintSeparator("=", common.DefaultWidth)
}

func main() {
	ctx := context.Background()

	logger, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	f := parseFlags()
	req, err := buildRequest(f)
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

	user, err := common.ResolveUser(ctx, services.DbService, f.email, logger)
	if err != nil {
		logger.Fatal("Failed to find user", zap.Error(err))
	}

	payoutCurrency := models.PeggedCurrency
	if req.Recipient != nil && req.Recipient.Type == models.RecipientTypeBank {
		payoutCurrency = req.Recipient.Currency
	} else if req.RecipientId != "" {
		recipient, err := services.Registry.Get(ctx, user.Id, req.RecipientId)
		if err != nil {
			logger.Fatal("Failed to find recipient", zap.String("recipient_id", req.RecipientId), zap.Error(err))
		}
		payoutCurrency = recipient.Currency
	}
	printQuote(services, req, payoutCurrency)

	result, handle, err := services.Wallet.SendMoney(ctx, user.Id, req)
	if err != nil {
		switch {
		case registry.IsValidation(err), transfer.IsValidation(err):
			logger.Fatal("Invalid transfer", zap.Error(err))
		case errors.Is(err, transfer.ErrTransferInFlight):
			logger.Fatal("Another transfer is still settling for this user - please retry shortly")
		case errors.Is(err, store.ErrInsufficientFunds):
			logger.Fatal("Insufficient funds", zap.Error(err))
		default:
			logger.Fatal("Send failed", zap.Error(err))
		}
	}

	fmt.Printf("\nTransfer accepted: %s to %s (settles at %s)\n",
		result.Transaction.ReferenceNumber, result.Transaction.RecipientName, result.SettlesAt.Format(time.RFC1123))

	settled, err := common.AwaitSettlement(ctx, handle, services.Orchestrator.SettlementDelay(), settlementGrace)
	if err != nil {
		logger.Fatal("Transfer did not complete", zap.Error(err))
	}

	fmt.Println()
	common.PrintReceipt(models.NewReceipt(settled))
	common.PrintSeparator("=", common.DefaultWidth)

	logger.Info("Transfer completed",
		zap.String("reference", settled.ReferenceNumber),
		zap.String("status", settled.Status))
}
