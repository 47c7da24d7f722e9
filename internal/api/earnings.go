package api

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ducduc1118-design/recash/internal/models"
	"github.com/ducduc1118-design/recash/internal/store"
	"github.com/ducduc1118-design/recash/internal/wallet"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const referralBonusTitle = "Referral bonus"

// RecordCashback adds a pending earning that is settled later through SettleEntry
func (s *RewardsService) RecordCashback(ctx context.Context, userId, storeName string, amount decimal.Decimal) (*models.LedgerEntry, error) {
	storeName = strings.TrimSpace(storeName)
	if userId == "" || storeName == "" {
		return nil, invalidInput("user_id and store are required")
	}
	if !amount.IsPositive() {
		return nil, invalidInput("amount must be positive")
	}
	if !wallet.IsCents(amount) {
		return nil, invalidInput("amount must be in whole cents")
	}

	entry, err := s.store.CreateEntry(ctx, store.CreateEntryParams{
		UserId: userId,
		Title:  "Cashback from " + storeName,
		Amount: amount,
		Type:   models.EntryTypeEarning,
		Status: models.EntryStatusPending,
		Date:   s.now(),
	})
	if err != nil {
		zap.L().Error("Failed to record cashback",
			zap.String("user_id", userId),
			zap.String("store", storeName),
			zap.String("amount", amount.String()),
			zap.Error(err))
		return nil, fmt.Errorf("failed to record cashback")
	}

	zap.L().Info("Cashback recorded",
		zap.String("user_id", userId),
		zap.String("entry_id", entry.Id),
		zap.String("amount", amount.String()))

	s.publish(ctx, models.LedgerEvent{
		Type:    models.EventCashbackRecorded,
		UserId:  userId,
		EntryId: entry.Id,
		Title:   entry.Title,
		Amount:  entry.Amount,
		Status:  string(entry.Status),
	})
	return entry, nil
}

// SettleEntry moves an earning or bonus to completed or failed. Withdrawal entries
// follow their withdrawal and are settled through UpdateWithdrawalStatus.
func (s *RewardsService) SettleEntry(ctx context.Context, userId, entryId string, status models.EntryStatus) error {
	if userId == "" || entryId == "" {
		return invalidInput("user_id and entry_id are required")
	}
	if status != models.EntryStatusCompleted && status != models.EntryStatusFailed {
		return invalidInput("entries can only be settled to completed or failed")
	}

	entries, err := s.store.FindEntries(ctx, store.EntryFilter{UserId: userId})
	if err != nil {
		zap.L().Error("Failed to get ledger entries", zap.String("user_id", userId), zap.Error(err))
		return fmt.Errorf("failed to retrieve ledger")
	}

	var entry *models.LedgerEntry
	for i := range entries {
		if entries[i].Id == entryId {
			entry = &entries[i]
			break
		}
	}
	if entry == nil {
		return store.ErrEntryNotFound
	}
	if entry.Type == models.EntryTypeWithdrawal {
		return invalidInput("withdrawal entries are settled through their withdrawal")
	}

	if err := s.store.UpdateEntryStatus(ctx, entryId, status); err != nil {
		if errors.Is(err, store.ErrEntryNotFound) {
			return err
		}
		zap.L().Error("Failed to settle entry",
			zap.String("entry_id", entryId),
			zap.String("status", string(status)),
			zap.Error(err))
		return fmt.Errorf("failed to settle entry")
	}

	zap.L().Info("Entry settled",
		zap.String("user_id", userId),
		zap.String("entry_id", entryId),
		zap.String("status", string(status)))

	s.publish(ctx, models.LedgerEvent{
		Type:    models.EventEntrySettled,
		UserId:  userId,
		EntryId: entryId,
		Title:   entry.Title,
		Amount:  entry.Amount,
		Status:  string(status),
	})
	return nil
}

// CreditReferralBonus pays the configured referral bonus to the referrer
func (s *RewardsService) CreditReferralBonus(ctx context.Context, userId, friendName string) (*models.LedgerEntry, error) {
	if userId == "" {
		return nil, invalidInput("user_id is required")
	}
	return s.creditBonus(ctx, userId, referralBonusTitle, s.rewards.ReferralBonus, zap.String("friend", friendName))
}

func (s *RewardsService) creditBonus(ctx context.Context, userId, title string, amount decimal.Decimal, fields ...zap.Field) (*models.LedgerEntry, error) {
	if !amount.IsPositive() {
		return nil, invalidInput("bonus %q is not configured", title)
	}
	if !wallet.IsCents(amount) {
		return nil, invalidInput("bonus %q must be in whole cents", title)
	}

	entry, err := s.store.CreateEntry(ctx, store.CreateEntryParams{
		UserId: userId,
		Title:  title,
		Amount: amount,
		Type:   models.EntryTypeBonus,
		Status: models.EntryStatusCompleted,
		Date:   s.now(),
	})
	if err != nil {
		zap.L().Error("Failed to credit bonus",
			append(fields, zap.String("user_id", userId), zap.String("title", title), zap.Error(err))...)
		return nil, fmt.Errorf("failed to credit bonus")
	}

	zap.L().Info("Bonus credited",
		append(fields,
			zap.String("user_id", userId),
			zap.String("entry_id", entry.Id),
			zap.String("title", title),
			zap.String("amount", amount.String()))...)

	s.publish(ctx, models.LedgerEvent{
		Type:    models.EventBonusCredited,
		UserId:  userId,
		EntryId: entry.Id,
		Title:   entry.Title,
		Amount:  entry.Amount,
		Status:  string(entry.Status),
	})
	return entry, nil
}
