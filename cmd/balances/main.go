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
	"time"

	"remit-wallet-go/internal/analytics"
	"remit-wallet-go/internal/common"
	"remit-wallet-go/internal/config"
	"remit-wallet-go/internal/models"
	"remit-wallet-go/internal/store"

	"go.uber.org/zap"
)

type balanceStats struct {
	totalUsers        int
	totalBalances     int
	usersWithBalances int
}

type reportOptions struct {
	history   int
	analytics bool
	since     time.Time
}

func formatTransactionId(txId string) string {
	if txId == "" {
		return "none"
	}
	if len(txId) > 8 {
		return txId[:8] + "..."
	}
	return txId
}

func printBalance(balance models.AccountBalance, isLast bool) {
	symbol := common.BoxPrefix(isLast)
	lastTx := formatTransactionId(balance.LastTransactionId)

	fmt.Printf("%s %-15s: %20s (v%d, last_tx: %s, updated: %s)\n",
		symbol,
		balance.Asset,
		balance.Balance.StringFixed(2),
		balance.Version,
		lastTx,
		balance.UpdatedAt.Format("2006-01-02 15:04:05"))
}

func printUserHeader(user common.UserInfo, balanceCount int) {
	fmt.Printf("\n┌─ User: %s (%s)\n", user.Name, user.Email)
	fmt.Printf("│  ID: %s\n", user.Id)
	fmt.Printf("│  Assets: %d\n", balanceCount)
	common.PrintBoxSeparator(78)
}

func printHistory(transactions []models.Transaction) {
	fmt.Printf("│  Recent transactions:\n")
	for i, tx := range transactions {
		counterparty := tx.RecipientName
		if counterparty == "" {
			counterparty = tx.Note
		}
		fmt.Printf("%s %s %-10s %-9s %14s  %s\n",
			common.BoxPrefix(i == len(transactions)-1),
			tx.CreatedAt.Format("2006-01-02"),
			tx.Type,
			tx.Status,
			tx.BalanceImpact().StringFixed(2),
			counterparty)
	}
}

func printSummary(summary analytics.Summary) {
	fmt.Printf("│  Sent %s across %d transactions, fees %s, received %s\n",
		common.FormatMoney(summary.TotalSent, models.PeggedCurrency),
		summary.TransactionCount,
		common.FormatMoney(summary.TotalFees, models.PeggedCurrency),
		common.FormatMoney(summary.TotalReceived, models.PeggedCurrency))
	for i, c := range summary.ByCategory {
		fmt.Printf("%s %-15s %14s %6s%%\n",
			common.BoxDetailPrefix(i == len(summary.ByCategory)-1),
			c.Category,
			c.Amount.StringFixed(2),
			analytics.Percentage(c.Amount, summary.TotalSent).StringFixed(1))
	}
}

func processUser(ctx context.Context, user common.UserInfo, services *common.Services, opts reportOptions) (int, error) {
	balances, err := services.Ledger.GetAllBalances(ctx, user.Id)
	if err != nil {
		return 0, fmt.Errorf("failed to get balances: %w", err)
	}

	if len(balances) == 0 {
		return 0, nil
	}

	printUserHeader(user, len(balances))
	for i, balance := range balances {
		printBalance(balance, i == len(balances)-1 && opts.history == 0 && !opts.analytics)
	}

	if opts.history > 0 {
		transactions, err := services.Wallet.GetTransactionHistory(ctx, user.Id, opts.history, 0)
		if err != nil {
			return 0, fmt.Errorf("failed to get transaction history: %w", err)
		}
		printHistory(transactions)
	}

	if opts.analytics {
		summary, err := services.Wallet.GetAnalytics(ctx, user.Id, opts.since, time.Time{})
		if err != nil {
			return 0, fmt.Errorf("failed to build analytics: %w", err)
		}
		printSummary(summary)
	}

	return len(balances), nil
}

func processUsersAndGenerateReport(ctx context.Context, users []common.UserInfo, services *common.Services, opts reportOptions, logger *zap.Logger) balanceStats {
	stats := balanceStats{}

	for _, user := range users {
		stats.totalUsers++

		balanceCount, err := processUser(ctx, user, services, opts)
		if err != nil {
			logger.Error("Failed to process user",
				zap.String("user_id", user.Id),
				zap.String("user_name", user.Name),
				zap.Error(err))
			continue
		}

		if balanceCount > 0 {
			stats.usersWithBalances++
			stats.totalBalances += balanceCount
		}
	}

	return stats
}

func main() {
	ctx := context.Background()

	logger, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	emailFlag := flag.String("email", "", "Filter by specific user email (optional)")
	historyFlag := flag.Int("history", 0, "Show the N most recent transactions per user")
	analyticsFlag := flag.Bool("analytics", false, "Show a spending summary per user")
	sinceFlag := flag.String("since", "", "Analytics window start, YYYY-MM-DD (optional)")
	reconcileFlag := flag.Bool("reconcile", false, "Verify each balance against its transaction history")
	flag.Parse()

	opts := reportOptions{history: *historyFlag, analytics: *analyticsFlag}
	if *sinceFlag != "" {
		since, err := time.Parse(time.DateOnly, *sinceFlag)
		if err != nil {
			logger.Fatal("Invalid --since date", zap.String("since", *sinceFlag), zap.Error(err))
		}
		opts.since = since
	}

	logger.Info("Starting balance query")

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	logger.Info("Connecting to ledger", zap.String("backend", cfg.Ledger.Backend))
	services, err := common.InitializeServices(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to initialize services", zap.Error(err))
	}
	defer services.Close()

	users, err := common.InitializeUsers(ctx, services.DbService, *emailFlag, logger)
	if err != nil {
		logger.Fatal("Failed to initialize users", zap.Error(err))
	}

	common.PrintHeader("USER BALANCE REPORT", common.DefaultWidth)

	stats := processUsersAndGenerateReport(ctx, users, services, opts, logger)

	summary := fmt.Sprintf("SUMMARY: %d users with balances (%d total balances across %d users queried)",
		stats.usersWithBalances, stats.totalBalances, stats.totalUsers)
	common.PrintFooter(summary, common.DefaultWidth)

	if *reconcileFlag {
		reconcileUsers(ctx, users, services.Ledger, logger)
	}

	logger.Info("Balance query completed",
		zap.Int("users_queried", stats.totalUsers),
		zap.Int("users_with_balances", stats.usersWithBalances),
		zap.Int("total_balances", stats.totalBalances))
}

func reconcileUsers(ctx context.Context, users []common.UserInfo, ledger store.Ledger, logger *zap.Logger) {
	mismatched := 0
	for _, user := range users {
		if err := ledger.ReconcileBalance(ctx, user.Id); err != nil {
			mismatched++
			fmt.Printf("✗ %s: %v\n", user.Email, err)
			continue
		}
		fmt.Printf("✓ %s\n", user.Email)
	}
	logger.Info("Reconciliation completed", zap.Int("users", len(users)), zap.Int("mismatched", mismatched))
}
