package api

import (
	"context"
	"errors"
	"fmt"

	"github.com/ducduc1118-design/recash/internal/models"
	"github.com/ducduc1118-design/recash/internal/store"
	"github.com/ducduc1118-design/recash/internal/wallet"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// RequestWithdrawal files a pending withdrawal. The result is always non-nil; on failure it
// carries the message shown to the user and err says why.
func (s *RewardsService) RequestWithdrawal(ctx context.Context, userId string, amount decimal.Decimal, method models.WithdrawalMethod) (*models.WithdrawalResult, error) {
	if err := s.validateWithdrawal(userId, amount, method); err != nil {
		return &models.WithdrawalResult{Success: false, Error: err.Error()}, err
	}

	userName := "User"
	user, err := s.store.GetUserById(ctx, userId)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return &models.WithdrawalResult{Success: false, Error: "user not found"}, err
		}
		zap.L().Error("User lookup failed before withdrawal",
			zap.String("user_id", userId),
			zap.Error(err))
		return &models.WithdrawalResult{Success: false, Error: "withdrawal failed"}, fmt.Errorf("failed to look up user: %w", err)
	}
	if user.Name != "" {
		userName = user.Name
	}

	withdrawal, err := s.store.CreateWithdrawal(ctx, store.CreateWithdrawalParams{
		UserId:   userId,
		UserName: userName,
		Method:   method,
		Amount:   amount,
		Date:     s.now(),
	})
	if err != nil {
		if errors.Is(err, store.ErrInsufficientBalance) {
			zap.L().Info("Withdrawal exceeds balance",
				zap.String("user_id", userId),
				zap.String("amount", amount.String()))
			return &models.WithdrawalResult{Success: false, Error: "insufficient balance"}, err
		}
		zap.L().Error("Withdrawal request failed",
			zap.String("user_id", userId),
			zap.String("amount", amount.String()),
			zap.Error(err))
		return &models.WithdrawalResult{Success: false, Error: "withdrawal failed"}, fmt.Errorf("failed to create withdrawal: %w", err)
	}

	summary, err := s.walletSummary(ctx, userId)
	if err != nil {
		zap.L().Error("Balance lookup failed after withdrawal",
			zap.String("user_id", userId),
			zap.String("withdrawal_id", withdrawal.Id),
			zap.Error(err))
		return &models.WithdrawalResult{Success: false, Error: "balance lookup failed after withdrawal"}, err
	}

	zap.L().Info("Withdrawal requested",
		zap.String("user_id", userId),
		zap.String("withdrawal_id", withdrawal.Id),
		zap.String("method", string(method)),
		zap.String("amount", amount.String()),
		zap.String("new_balance", summary.Balance.String()))

	s.publish(ctx, models.LedgerEvent{
		Type:    models.EventWithdrawalRequested,
		UserId:  userId,
		EntryId: withdrawal.EntryId,
		Title:   method.EntryTitle(),
		Amount:  withdrawal.Amount,
		Status:  string(withdrawal.Status),
	})

	return &models.WithdrawalResult{
		Success:      true,
		WithdrawalId: withdrawal.Id,
		Amount:       wallet.FormatCurrency(withdrawal.Amount),
		NewBalance:   wallet.FormatCurrency(summary.Balance),
	}, nil
}

func (s *RewardsService) validateWithdrawal(userId string, amount decimal.Decimal, method models.WithdrawalMethod) error {
	if userId == "" {
		return invalidInput("user_id is required")
	}
	if !s.methodAllowed(method) {
		return invalidInput("unsupported withdrawal method %q", method)
	}
	if !amount.IsPositive() {
		return invalidInput("amount must be positive")
	}
	if !wallet.IsCents(amount) {
		return invalidInput("amount must be in whole cents")
	}
	if amount.LessThan(s.rewards.MinWithdrawal) {
		return invalidInput("minimum withdrawal is %s", wallet.FormatCurrency(s.rewards.MinWithdrawal))
	}
	return nil
}

func (s *RewardsService) methodAllowed(method models.WithdrawalMethod) bool {
	if !method.Valid() {
		return false
	}
	if len(s.rewards.WithdrawalMethods) == 0 {
		return true
	}
	for _, m := range s.rewards.WithdrawalMethods {
		if m == method {
			return true
		}
	}
	return false
}

func (s *RewardsService) GetWithdrawals(ctx context.Context, userId string) ([]models.WithdrawalRecord, error) {
	if userId == "" {
		return nil, invalidInput("user_id is required")
	}

	withdrawals, err := s.store.GetWithdrawals(ctx, userId)
	if err != nil {
		zap.L().Error("Failed to get withdrawals", zap.String("user_id", userId), zap.Error(err))
		return nil, fmt.Errorf("failed to retrieve withdrawals")
	}

	records := make([]models.WithdrawalRecord, len(withdrawals))
	for i, w := range withdrawals {
		records[i] = s.withdrawalRecord(w)
	}
	return records, nil
}

// ListWithdrawals is the admin queue across all users. An empty status lists everything.
func (s *RewardsService) ListWithdrawals(ctx context.Context, status models.WithdrawalStatus) ([]models.WithdrawalRecord, error) {
	if status != "" {
		if _, err := status.EntryStatus(); err != nil {
			return nil, invalidInput("%v", err)
		}
	}

	withdrawals, err := s.store.ListWithdrawals(ctx, status)
	if err != nil {
		zap.L().Error("Failed to list withdrawals", zap.String("status", string(status)), zap.Error(err))
		return nil, fmt.Errorf("failed to list withdrawals")
	}

	records := make([]models.WithdrawalRecord, len(withdrawals))
	for i, w := range withdrawals {
		records[i] = s.withdrawalRecord(w)
		records[i].UserId = w.UserId
		records[i].UserName = w.UserName
	}
	return records, nil
}

func (s *RewardsService) withdrawalRecord(w models.Withdrawal) models.WithdrawalRecord {
	return models.WithdrawalRecord{
		Id:      w.Id,
		Method:  string(w.Method),
		Details: w.Details,
		Amount:  wallet.FormatCurrency(w.Amount),
		Status:  string(w.Status),
		Date:    s.displayDate(w.Date),
	}
}

// UpdateWithdrawalStatus settles a withdrawal; its ledger entry follows in the same write.
func (s *RewardsService) UpdateWithdrawalStatus(ctx context.Context, withdrawalId string, status models.WithdrawalStatus) (*models.Withdrawal, error) {
	if withdrawalId == "" {
		return nil, invalidInput("withdrawal_id is required")
	}
	if _, err := status.EntryStatus(); err != nil {
		return nil, invalidInput("%v", err)
	}

	withdrawal, err := s.store.UpdateWithdrawalStatus(ctx, withdrawalId, status)
	if err != nil {
		if errors.Is(err, store.ErrWithdrawalNotFound) {
			return nil, err
		}
		zap.L().Error("Failed to update withdrawal",
			zap.String("withdrawal_id", withdrawalId),
			zap.String("status", string(status)),
			zap.Error(err))
		return nil, fmt.Errorf("failed to update withdrawal")
	}

	zap.L().Info("Withdrawal status updated",
		zap.String("withdrawal_id", withdrawal.Id),
		zap.String("user_id", withdrawal.UserId),
		zap.String("status", string(withdrawal.Status)))

	s.publish(ctx, models.LedgerEvent{
		Type:    models.EventWithdrawalSettled,
		UserId:  withdrawal.UserId,
		EntryId: withdrawal.EntryId,
		Title:   withdrawal.Method.EntryTitle(),
		Amount:  withdrawal.Amount,
		Status:  string(withdrawal.Status),
	})
	return withdrawal, nil
}
