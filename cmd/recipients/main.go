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
	"os"
	"strings"

	"remit-wallet-go/internal/common"
	"remit-wallet-go/internal/config"
	"remit-wallet-go/internal/models"
	"remit-wallet-go/internal/registry"

	"go.uber.org/zap"
)

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: recipients <list|add|remove> --email EMAIL [flags]\n")
	flag.PrintDefaults()
}

func describe(r models.Recipient) string {
	if r.IsPeer() {
		return fmt.Sprintf("peer %s", r.Phone)
	}
	bank := r.BankName
	if bank == "" {
		bank = r.BankCode
	}
	return fmt.Sprintf("bank %s %s, %s", bank, r.AccountNumber, r.Currency)
}

func printRecipients(user common.UserInfo, recipients []models.Recipient) {
	fmt.Printf("\n┌─ User: %s (%s)\n", user.Name, user.Email)
	fmt.Printf("│  Saved recipients: %d\n", len(recipients))
	common.PrintBoxSeparator(78)
	for i, r := range recipients {
		fmt.Printf("%s %-36s %-20s %s\n", common.BoxPrefix(i == len(recipients)-1), r.Id, r.Name, describe(r))
	}
}

func main() {
	ctx := context.Background()

	logger, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	command := os.Args[1]

	fs := flag.NewFlagSet(command, flag.ExitOnError)
	emailFlag := fs.String("email", "", "User email (required)")
	idFlag := fs.String("id", "", "Recipient id, for remove")
	typeFlag := fs.String("type", models.RecipientTypeBank, "Recipient type: bank or peer")
	nameFlag := fs.String("name", "", "Recipient name")
	phoneFlag := fs.String("phone", "", "Peer phone number")
	bankCodeFlag := fs.String("bank-code", "", "Bank code")
	accountFlag := fs.String("account", "", "Account number")
	bankNameFlag := fs.String("bank-name", "", "Bank name (optional)")
	currencyFlag := fs.String("currency", "", "Payout currency for bank recipients")
	countryFlag := fs.String("country", "", "Country (optional)")
	if err := fs.Parse(os.Args[2:]); err != nil {
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

	user, err := common.ResolveUser(ctx, services.DbService, *emailFlag, logger)
	if err != nil {
		logger.Fatal("Failed to find user", zap.Error(err))
	}

	switch command {
	case "list":
		recipients, err := services.Wallet.ListRecipients(ctx, user.Id)
		if err != nil {
			logger.Fatal("Failed to list recipients", zap.Error(err))
		}
		printRecipients(user, recipients)

	case "add":
		recipient, err := services.Wallet.AddRecipient(ctx, user.Id, registry.RecipientInput{
			Type:          *typeFlag,
			Name:          *nameFlag,
			Phone:         *phoneFlag,
			BankCode:      *bankCodeFlag,
			AccountNumber: *accountFlag,
			BankName:      *bankNameFlag,
			Currency:      strings.ToUpper(*currencyFlag),
			Country:       *countryFlag,
		})
		if err != nil {
			logger.Fatal("Failed to add recipient", zap.Error(err))
		}
		fmt.Printf("✓ Saved %s (%s) as %s\n", recipient.Name, describe(*recipient), recipient.Id)

	case "remove":
		if *idFlag == "" {
			logger.Fatal("--id is required for remove")
		}
		if err := services.Wallet.RemoveRecipient(ctx, user.Id, *idFlag); err != nil {
			logger.Fatal("Failed to remove recipient", zap.String("id", *idFlag), zap.Error(err))
		}
		fmt.Printf("✓ Removed recipient %s\n", *idFlag)

	default:
		usage()
		os.Exit(2)
	}
}
