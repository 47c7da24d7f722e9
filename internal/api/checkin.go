package api

import (
	"context"
	"errors"
	"fmt"

	"github.com/ducduc1118-design/recash/internal/models"
	"github.com/ducduc1118-design/recash/internal/store"
	"github.com/ducduc1118-design/recash/internal/wallet"

	"go.uber.org/zap"
)

// GetCheckinStatus derives the streak from the user's check-in history
func (s *RewardsService) GetCheckinStatus(ctx context.Context, userId string) (models.CheckinStatus, error) {
	if userId == "" {
		return models.CheckinStatus{}, invalidInput("user_id is required")
	}
	if _, err := s.requireUser(ctx, userId); err != nil {
		return models.CheckinStatus{}, err
	}

	entries, err := s.checkinEntries(ctx, userId)
	if err != nil {
		return models.CheckinStatus{}, err
	}
	return wallet.ComputeCheckinStatus(entries, s.now(), s.rewards.Location), nil
}

// CheckinToday credits the daily reward at most once per calendar day. A repeat
// call, or one that loses a race to a concurrent call, writes nothing.
func (s *RewardsService) CheckinToday(ctx context.Context, userId string) (models.CheckinStatus, error) {
	if userId == "" {
		return models.CheckinStatus{}, invalidInput("user_id is required")
	}
	if _, err := s.requireUser(ctx, userId); err != nil {
		return models.CheckinStatus{}, err
	}

	now := s.now()
	entries, err := s.checkinEntries(ctx, userId)
	if err != nil {
		return models.CheckinStatus{}, err
	}

	status := wallet.ComputeCheckinStatus(entries, now, s.rewards.Location)
	if status.CheckedIn {
		zap.L().Debug("Already checked in today", zap.String("user_id", userId))
		return status, nil
	}

	day := wallet.DayKey(now, s.rewards.Location)
	entry, err := s.store.CreateCheckinEntry(ctx, store.CheckinParams{
		UserId: userId,
		Title:  s.rewards.CheckinTitle,
		Amount: s.rewards.CheckinReward,
		Date:   now,
		Day:    day,
	})
	if err != nil {
		if errors.Is(err, store.ErrDuplicateCheckin) {
			zap.L().Info("Concurrent check-in already recorded",
				zap.String("user_id", userId),
				zap.String("day", day))
			return s.GetCheckinStatus(ctx, userId)
		}
		zap.L().Error("Check-in failed", zap.String("user_id", userId), zap.Error(err))
		return models.CheckinStatus{}, fmt.Errorf("failed to record check-in")
	}

	status = wallet.ComputeCheckinStatus(append([]models.LedgerEntry{*entry}, entries...), now, s.rewards.Location)

	zap.L().Info("Daily check-in recorded",
		zap.String("user_id", userId),
		zap.String("day", day),
		zap.Int("streak", status.Streak))

	s.publish(ctx, models.LedgerEvent{
		Type:    models.EventCheckinCompleted,
		UserId:  userId,
		EntryId: entry.Id,
		Title:   entry.Title,
		Amount:  entry.Amount,
		Status:  string(entry.Status),
		Streak:  status.Streak,
	})
	return status, nil
}

func (s *RewardsService) checkinEntries(ctx context.Context, userId string) ([]models.LedgerEntry, error) {
	entries, err := s.store.FindEntries(ctx, store.EntryFilter{
		UserId: userId,
		Type:   models.EntryTypeBonus,
		Title:  s.rewards.CheckinTitle,
	})
	if err != nil {
		zap.L().Error("Failed to get check-in entries", zap.String("user_id", userId), zap.Error(err))
		return nil, fmt.Errorf("failed to retrieve check-in status")
	}
	return entries, nil
}
