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
	"os/signal"
	"syscall"
	"time"

	"remit-wallet-go/internal/common"
	"remit-wallet-go/internal/config"
	"remit-wallet-go/internal/models"
	"remit-wallet-go/internal/rates"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func directionSymbol(d models.ChangeDirection) string {
	switch d {
	case models.ChangeUp:
		return "▲"
	case models.ChangeDown:
		return "▼"
	default:
		return "="
	}
}

func printBoard(feed *rates.Feed, amount decimal.Decimal) {
	common.PrintHeader(fmt.Sprintf("EXCHANGE RATES (1 %s)", models.PeggedCurrency), common.DefaultWidth)
	quotes := feed.Quotes()
	for i, q := range quotes {
		line := fmt.Sprintf("%s %-6s %14.4f %s %+7.3f%%", common.BoxPrefix(i == len(quotes)-1),
			q.Currency, q.Rate, directionSymbol(q.Direction), q.ChangePercentage)
		if amount.IsPositive() {
			converted := amount.Mul(decimal.NewFromFloat(q.Rate)).Round(2)
			line += fmt.Sprintf("   %s -> %s", common.FormatMoney(amount, models.PeggedCurrency), common.FormatMoney(converted, q.Currency))
		}
		fmt.Println(line)
	}
	common.PrintFooter("Updated "+feed.LastUpdated().Format(time.RFC1123), common.DefaultWidth)
}

func main() {
	logger, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	watchFlag := flag.Bool("watch", false, "Keep printing the board on every feed update")
	amountFlag := flag.String("amount", "", "Show what this CBUSD amount converts to (optional)")
	flag.Parse()

	amount := decimal.Zero
	if *amountFlag != "" {
		parsed, err := decimal.NewFromString(*amountFlag)
		if err != nil {
			logger.Fatal("Invalid amount format", zap.String("amount", *amountFlag), zap.Error(err))
		}
		amount = parsed
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	currencies, err := common.LoadCurrencies(cfg.Rates.CurrenciesFile)
	if err != nil {
		logger.Fatal("Failed to load currencies", zap.Error(err))
	}

	feed := rates.NewFeed(cfg.Rates, currencies)
	printBoard(feed, amount)
	if !*watchFlag {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	feed.Start(ctx)
	defer feed.Stop()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(cfg.Rates.UpdateInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			fmt.Println()
			printBoard(feed, amount)
		case <-sigChan:
			logger.Info("Stopping rate watch")
			return
		}
	}
}
