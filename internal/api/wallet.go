package api

import (
	"context"
	"fmt"

	"github.com/ducduc1118-design/recash/internal/models"
	"github.com/ducduc1118-design/recash/internal/store"
	"github.com/ducduc1118-design/recash/internal/wallet"

	"go.uber.org/zap"
)

// GetWalletSummary aggregates the user's whole ledger
func (s *RewardsService) GetWalletSummary(ctx context.Context, userId string) (models.WalletView, error) {
	summary, err := s.walletSummary(ctx, userId)
	if err != nil {
		return models.WalletView{}, err
	}
	return wallet.View(summary), nil
}

func (s *RewardsService) walletSummary(ctx context.Context, userId string) (models.WalletSummary, error) {
	if userId == "" {
		return models.WalletSummary{}, invalidInput("user_id is required")
	}

	entries, err := s.store.FindEntries(ctx, store.EntryFilter{UserId: userId})
	if err != nil {
		zap.L().Error("Failed to get ledger entries", zap.String("user_id", userId), zap.Error(err))
		return models.WalletSummary{}, fmt.Errorf("failed to retrieve wallet")
	}
	return wallet.ComputeWalletSummary(entries), nil
}

// GetLedger returns the user's entries newest first, formatted for display
func (s *RewardsService) GetLedger(ctx context.Context, userId string) ([]models.LedgerRecord, error) {
	if userId == "" {
		return nil, invalidInput("user_id is required")
	}

	entries, err := s.store.FindEntries(ctx, store.EntryFilter{UserId: userId})
	if err != nil {
		zap.L().Error("Failed to get ledger entries", zap.String("user_id", userId), zap.Error(err))
		return nil, fmt.Errorf("failed to retrieve ledger")
	}

	records := make([]models.LedgerRecord, len(entries))
	for i, entry := range entries {
		records[i] = s.ledgerRecord(entry)
	}
	return records, nil
}

func (s *RewardsService) ledgerRecord(entry models.LedgerEntry) models.LedgerRecord {
	return models.LedgerRecord{
		Id:     entry.Id,
		Title:  entry.Title,
		Amount: wallet.FormatCurrency(entry.Amount),
		Type:   string(entry.Type),
		Status: string(entry.Status),
		Date:   s.displayDate(entry.Date),
	}
}

// GetUserBalances builds the admin report: one wallet summary per active user
func (s *RewardsService) GetUserBalances(ctx context.Context) ([]models.UserBalance, error) {
	users, err := s.store.GetUsers(ctx)
	if err != nil {
		zap.L().Error("Failed to list users", zap.Error(err))
		return nil, fmt.Errorf("failed to retrieve users")
	}

	result := make([]models.UserBalance, 0, len(users))
	for _, user := range users {
		summary, err := s.walletSummary(ctx, user.Id)
		if err != nil {
			return nil, err
		}
		result = append(result, models.UserBalance{
			UserId:  user.Id,
			Name:    user.Name,
			Email:   user.Email,
			Joined:  s.displayDate(user.CreatedAt),
			Summary: wallet.View(summary),
		})
	}

	zap.L().Debug("Built wallet report", zap.Int("users", len(result)))
	return result, nil
}
