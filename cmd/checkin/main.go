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

func printStatus(title string, user *models.User, status models.CheckinStatus, balance string) {
	common.PrintHeader(title, common.DefaultWidth)
	fmt.Printf("User:          %s (%s)\n", user.Name, user.Email)
	fmt.Printf("Checked in:    %t\n", status.CheckedIn)
	fmt.Printf("Streak:        %d day(s)\n", status.Streak)
	fmt.Printf("Balance:       %s\n", balance)
	common.PrintSeparator("=", common.DefaultWidth)
	fmt.Println()
}

func main() {
	ctx := context.Background()

	_, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	emailFlag := flag.String("email", "", "User email (required)")
	statusOnly := flag.Bool("status", false, "Only show the check-in status")
	flag.Parse()

	if *emailFlag == "" {
		zap.L().Fatal("Flag --email is required")
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

	title := "CHECK-IN STATUS"
	var status models.CheckinStatus
	if *statusOnly {
		status, err = rewards.GetCheckinStatus(ctx, user.Id)
	} else {
		title = "DAILY CHECK-IN"
		status, err = rewards.CheckinToday(ctx, user.Id)
	}
	if err != nil {
		zap.L().Fatal("Check-in failed", zap.String("user_id", user.Id), zap.Error(err))
	}

	view, err := rewards.GetWalletSummary(ctx, user.Id)
	if err != nil {
		zap.L().Fatal("Failed to read wallet", zap.Error(err))
	}

	printStatus(title, user, status, view.Balance)
}
