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

	"github.com/ducduc1118-design/recash/internal/api"
	"github.com/ducduc1118-design/recash/internal/common"
	"github.com/ducduc1118-design/recash/internal/config"
	"github.com/ducduc1118-design/recash/internal/models"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type withdrawalRequest struct {
	email  string
	amount decimal.Decimal
	method models.WithdrawalMethod
}

type settleRequest struct {
	withdrawalId string
	status       models.WithdrawalStatus
}

// command holds exactly one of the three modes
type command struct {
	request *withdrawalRequest
	settle  *settleRequest
	// list is the status filter of the queue; empty lists every status
	list   models.WithdrawalStatus
	listed bool
}

func parseAndValidateFlags() (*command, error) {
	emailFlag := flag.String("email", "", "User email (required to request)")
	amountFlag := flag.String("amount", "", "Amount to withdraw (required to request)")
	methodFlag := flag.String("method", "bank", "Withdrawal method: bank or ewallet")
	settleFlag := flag.String("settle", "", "Withdrawal id to settle instead of requesting one")
	statusFlag := flag.String("status", "Completed", "Settlement status: Completed or Rejected")
	listFlag := flag.String("list", "", "List withdrawals of every user: Pending, Completed, Rejected or all")
	flag.Parse()

	if *listFlag != "" {
		cmd := &command{listed: true}
		if *listFlag != "all" {
			cmd.list = models.WithdrawalStatus(*listFlag)
			if _, err := cmd.list.EntryStatus(); err != nil {
				return nil, fmt.Errorf("--list must be Pending, Completed, Rejected or all: %w", err)
			}
		}
		return cmd, nil
	}

	if *settleFlag != "" {
		status := models.WithdrawalStatus(*statusFlag)
		if status != models.WithdrawalStatusCompleted && status != models.WithdrawalStatusRejected {
			return nil, fmt.Errorf("--status must be Completed or Rejected, got %q", *statusFlag)
		}
		return &command{settle: &settleRequest{withdrawalId: *settleFlag, status: status}}, nil
	}

	if *emailFlag == "" || *amountFlag == "" {
		return nil, fmt.Errorf("flags --email and --amount are required (or --settle, --list)")
	}

	amount, err := decimal.NewFromString(*amountFlag)
	if err != nil {
		return nil, fmt.Errorf("invalid amount format: %w", err)
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("amount must be greater than zero")
	}

	method := models.WithdrawalMethod(*methodFlag)
	if !method.Valid() {
		return nil, fmt.Errorf("invalid method %q: expected bank or ewallet", *methodFlag)
	}

	return &command{request: &withdrawalRequest{email: *emailFlag, amount: amount, method: method}}, nil
}

func listWithdrawals(ctx context.Context, rewards *api.RewardsService, status models.WithdrawalStatus) {
	records, err := rewards.ListWithdrawals(ctx, status)
	if err != nil {
		zap.L().Fatal("Failed to list withdrawals", zap.Error(err))
	}

	title := "ALL WITHDRAWALS"
	if status != "" {
		title = strings.ToUpper(string(status)) + " WITHDRAWALS"
	}
	common.PrintHeader(title, common.WideWidth)
	if len(records) == 0 {
		fmt.Println("No withdrawals found")
	}
	for i, w := range records {
		fmt.Printf("%s%-36s  %-10s %-14s %10s  %-9s %s\n",
			common.BoxPrefix(i == len(records)-1), w.Id, w.Date, w.UserName, w.Amount, w.Status, w.Details)
	}
	common.PrintFooter(fmt.Sprintf("%d withdrawal(s). Settle with: withdrawal --settle <id> --status Completed", len(records)), common.WideWidth)
}

func requestWithdrawal(ctx context.Context, services *common.Services, rewards *api.RewardsService, req *withdrawalRequest) {
	user, err := common.ResolveUser(ctx, services.Ledger, req.email)
	if err != nil {
		zap.L().Fatal("User not found", zap.String("email", req.email), zap.Error(err))
	}

	before, err := rewards.GetWalletSummary(ctx, user.Id)
	if err != nil {
		zap.L().Fatal("Failed to read wallet", zap.Error(err))
	}

	result, err := rewards.RequestWithdrawal(ctx, user.Id, req.amount, req.method)
	if err != nil {
		common.PrintHeader("WITHDRAWAL FAILED", common.DefaultWidth)
		common.PrintField("User", "%s (%s)", user.Name, user.Email)
		common.PrintField("Balance", "%s", before.Balance)
		common.PrintField("Requested Amount", "%s", req.amount.StringFixed(2))
		common.PrintField("Error", "%s", result.Error)
		common.PrintSeparator("=", common.DefaultWidth)
		if errors.Is(err, api.ErrInsufficientBalance) {
			zap.L().Fatal("Insufficient balance", zap.Error(err))
		}
		zap.L().Fatal("Withdrawal request failed", zap.Error(err))
	}

	common.PrintHeader("WITHDRAWAL REQUESTED", common.DefaultWidth)
	common.PrintField("User", "%s (%s)", user.Name, user.Email)
	common.PrintField("Withdrawal ID", "%s", result.WithdrawalId)
	common.PrintField("Method", "%s", req.method.Details())
	common.PrintField("Previous Balance", "%s", before.Balance)
	common.PrintField("Amount", "%s", result.Amount)
	common.PrintField("New Balance", "%s", result.NewBalance)
	common.PrintSeparator("=", common.DefaultWidth)
	fmt.Printf("\nSettle with: withdrawal --settle %s --status Completed\n\n", result.WithdrawalId)
}

func settleWithdrawal(ctx context.Context, rewards *api.RewardsService, req *settleRequest) {
	withdrawal, err := rewards.UpdateWithdrawalStatus(ctx, req.withdrawalId, req.status)
	if err != nil {
		zap.L().Fatal("Failed to settle withdrawal",
			zap.String("withdrawal_id", req.withdrawalId),
			zap.Error(err))
	}

	common.PrintHeader("WITHDRAWAL SETTLED", common.DefaultWidth)
	common.PrintField("Withdrawal ID", "%s", withdrawal.Id)
	common.PrintField("User", "%s", withdrawal.UserName)
	common.PrintField("Details", "%s", withdrawal.Details)
	common.PrintField("Amount", "%s", withdrawal.Amount.StringFixed(2))
	common.PrintField("Status", "%s", withdrawal.Status)
	common.PrintSeparator("=", common.DefaultWidth)
	fmt.Println()
}

func main() {
	ctx := context.Background()

	_, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	cmd, err := parseAndValidateFlags()
	if err != nil {
		zap.L().Fatal("Invalid flags", zap.Error(err))
	}

	cfg, err := config.Load()
	if err != nil {
		zap.L().Fatal("Failed to load config", zap.Error(err))
	}

	zap.L().Info("Initializing services")
	services, err := common.InitializeServices(ctx, cfg)
	if err != nil {
		zap.L().Fatal("Failed to initialize services", zap.Error(err))
	}
	defer services.Close()

	rewards := api.NewRewardsService(services.Ledger, services.Rewards, services.Publisher)

	switch {
	case cmd.listed:
		listWithdrawals(ctx, rewards, cmd.list)
	case cmd.settle != nil:
		settleWithdrawal(ctx, rewards, cmd.settle)
	default:
		requestWithdrawal(ctx, services, rewards, cmd.request)
	}
}
