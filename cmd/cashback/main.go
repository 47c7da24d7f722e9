package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/ducduc1118-design/recash/internal/api"
	"github.com/ducduc1118-design/recash/internal/common"
	"github.com/ducduc1118-design/recash/internal/config"
	"github.com/ducduc1118-design/recash/internal/models"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func printEntry(title string, entry *models.LedgerEntry, view models.WalletView) {
	common.PrintHeader(title, common.DefaultWidth)
	fmt.Printf("Entry ID:  %s\n", entry.Id)
	fmt.Printf("Title:     %s\n", entry.Title)
	fmt.Printf("Amount:    %s\n", entry.Amount.StringFixed(2))
	fmt.Printf("Status:    %s\n", entry.Status)
	fmt.Printf("Wallet:    balance %s, pending %s, lifetime %s\n", view.Balance, view.Pending, view.Lifetime)
	common.PrintSeparator("=", common.DefaultWidth)
	fmt.Println()
}

func main() {
	ctx := context.Background()

	_, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	emailFlag := flag.String("email", "", "User email (required)")
	storeFlag := flag.String("store", "", "Store name for a new pending cashback")
	amountFlag := flag.String("amount", "", "Cashback amount")
	settleFlag := flag.String("settle", "", "Entry id to settle")
	statusFlag := flag.String("status", "completed", "Settlement status: completed or failed")
	referralFlag := flag.String("referral", "", "Credit the referral bonus for this friend's name")
	flag.Parse()

	if *emailFlag == "" {
		zap.L().Fatal("Flag --email is required")
	}
	if *storeFlag == "" && *settleFlag == "" && *referralFlag == "" {
		zap.L().Fatal("One of --store, --settle or --referral is required")
	}

	cfg, err := config.Load()
	if err != nil {
		zap.L().Fatal("Failed to load config", zap.Error(err))
	}

	services, err := common.InitializeServices(ctx, cfg)
	if err != nil {
		zap.L().Fatal("Failed to initialize services", zap.Error(err))
	}
	defer services.Close()

	rewards := api.NewRewardsService(services.Ledger, services.Rewards, services.Publisher)

	user, err := common.ResolveUser(ctx, services.Ledger, *emailFlag)
	if err != nil {
		zap.L().Fatal("User not found", zap.String("email", *emailFlag), zap.Error(err))
	}

	var (
		entry *models.LedgerEntry
		title string
	)
	switch {
	case *settleFlag != "":
		status := models.EntryStatus(*statusFlag)
		if err := rewards.SettleEntry(ctx, user.Id, *settleFlag, status); err != nil {
			zap.L().Fatal("Failed to settle entry", zap.String("entry_id", *settleFlag), zap.Error(err))
		}
		fmt.Printf("✓ Entry %s settled as %s\n", *settleFlag, status)
		return
	case *referralFlag != "":
		title = "REFERRAL BONUS CREDITED"
		entry, err = rewards.CreditReferralBonus(ctx, user.Id, *referralFlag)
	default:
		amount, parseErr := decimal.NewFromString(*amountFlag)
		if parseErr != nil {
			zap.L().Fatal("Invalid amount", zap.String("amount", *amountFlag), zap.Error(parseErr))
		}
		title = "CASHBACK RECORDED"
		entry, err = rewards.RecordCashback(ctx, user.Id, *storeFlag, amount)
	}
	if err != nil {
		zap.L().Fatal("Failed to write ledger entry", zap.String("user_id", user.Id), zap.Error(err))
	}

	view, err := rewards.GetWalletSummary(ctx, user.Id)
	if err != nil {
		zap.L().Fatal("Failed to read wallet", zap.Error(err))
	}
	printEntry(title, entry, view)
}
