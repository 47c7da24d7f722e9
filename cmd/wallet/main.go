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

	"github.com/ducduc1118-design/recash/internal/api"
	"github.com/ducduc1118-design/recash/internal/common"
	"github.com/ducduc1118-design/recash/internal/config"
	"github.com/ducduc1118-design/recash/internal/models"

	"go.uber.org/zap"
)

type walletStats struct {
	totalUsers       int
	usersWithHistory int
	totalEntries     int
}

func shortId(id string) string {
	if len(id) > 8 {
		return id[:8] + "..."
	}
	return id
}

func printRecord(record models.LedgerRecord, isLast bool) {
	fmt.Printf("%s %-6s %-28s %10s  %-10s %-9s (%s)\n",
		common.BoxPrefix(isLast),
		record.Date,
		record.Title,
		record.Amount,
		record.Type,
		record.Status,
		shortId(record.Id))
}

func printUserHeader(user models.User, view models.WalletView, checkin models.CheckinStatus) {
	fmt.Printf("\n┌─ User: %s (%s)\n", user.Name, user.Email)
	fmt.Printf("│  ID: %s\n", user.Id)
	fmt.Printf("│  Balance: %s   Pending: %s   Lifetime: %s\n", view.Balance, view.Pending, view.Lifetime)
	fmt.Printf("│  Check-in streak: %d (today: %t)\n", checkin.Streak, checkin.CheckedIn)
	common.PrintBoxSeparator(common.WideWidth - 2)
}

func processUser(ctx context.Context, rewards *api.RewardsService, user models.User, limit int) (int, error) {
	view, err := rewards.GetWalletSummary(ctx, user.Id)
	if err != nil {
		return 0, fmt.Errorf("failed to get wallet: %w", err)
	}

	checkin, err := rewards.GetCheckinStatus(ctx, user.Id)
	if err != nil {
		return 0, fmt.Errorf("failed to get check-in status: %w", err)
	}

	records, err := rewards.GetLedger(ctx, user.Id)
	if err != nil {
		return 0, fmt.Errorf("failed to get ledger: %w", err)
	}

	printUserHeader(user, view, checkin)
	if len(records) == 0 {
		fmt.Printf("%s (no ledger entries)\n", common.BoxPrefix(true))
		return 0, nil
	}

	shown := records
	if limit > 0 && len(shown) > limit {
		shown = shown[:limit]
	}
	for i, record := range shown {
		printRecord(record, i == len(shown)-1)
	}
	return len(records), nil
}

// printSummaryTable prints one line per user, like the admin user list
func printSummaryTable(ctx context.Context, rewards *api.RewardsService) error {
	balances, err := rewards.GetUserBalances(ctx)
	if err != nil {
		return err
	}

	common.PrintHeader("USER WALLETS", common.WideWidth)
	fmt.Printf("%-24s %-30s %-7s %10s %10s %10s\n", "NAME", "EMAIL", "JOINED", "BALANCE", "PENDING", "LIFETIME")
	common.PrintSeparator("-", common.WideWidth)
	for _, b := range balances {
		fmt.Printf("%-24s %-30s %-7s %10s %10s %10s\n",
			b.Name, b.Email, b.Joined, b.Summary.Balance, b.Summary.Pending, b.Summary.Lifetime)
	}
	common.PrintFooter(fmt.Sprintf("SUMMARY: %d users", len(balances)), common.WideWidth)
	return nil
}

func main() {
	ctx := context.Background()

	logger, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	emailFlag := flag.String("email", "", "Filter by specific user email (optional)")
	limitFlag := flag.Int("limit", 10, "Ledger entries to show per user (0 for all)")
	summaryFlag := flag.Bool("summary", false, "Print one summary line per user instead of ledgers")
	flag.Parse()

	logger.Info("Starting wallet report")

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	services, err := common.InitializeServices(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to initialize services", zap.Error(err))
	}
	defer services.Close()

	rewards := api.NewRewardsService(services.Ledger, services.Rewards, services.Publisher)

	if *summaryFlag {
		if err := printSummaryTable(ctx, rewards); err != nil {
			logger.Fatal("Failed to build wallet summary", zap.Error(err))
		}
		return
	}

	users, err := common.ResolveUsers(ctx, services.Ledger, *emailFlag)
	if err != nil {
		logger.Fatal("Failed to resolve users", zap.Error(err))
	}

	common.PrintHeader("WALLET REPORT", common.WideWidth)

	stats := walletStats{}
	for _, user := range users {
		stats.totalUsers++

		entryCount, err := processUser(ctx, rewards, user, *limitFlag)
		if err != nil {
			logger.Error("Failed to process user",
				zap.String("user_id", user.Id),
				zap.String("user_name", user.Name),
				zap.Error(err))
			continue
		}
		if entryCount > 0 {
			stats.usersWithHistory++
			stats.totalEntries += entryCount
		}
	}

	summary := fmt.Sprintf("SUMMARY: %d users with ledger history (%d entries across %d users queried)",
		stats.usersWithHistory, stats.totalEntries, stats.totalUsers)
	common.PrintFooter(summary, common.WideWidth)

	logger.Info("Wallet report completed",
		zap.Int("users_queried", stats.totalUsers),
		zap.Int("users_with_history", stats.usersWithHistory),
		zap.Int("total_entries", stats.totalEntries))
}
