package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"time"

	"github.com/ducduc1118-design/recash/internal/common"
	"github.com/ducduc1118-design/recash/internal/config"
	"github.com/ducduc1118-design/recash/internal/models"
	"github.com/ducduc1118-design/recash/internal/store"
	"github.com/ducduc1118-design/recash/internal/wallet"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type seedStats struct {
	users       int
	skipped     int
	entries     int
	checkins    int
	withdrawals int
}

func daysAgo(now time.Time, days int) time.Time {
	return now.AddDate(0, 0, -days)
}

func seedUser(ctx context.Context, services *common.Services, seed common.SeedUser, now time.Time, stats *seedStats) error {
	password := seed.Password
	if password == "" {
		password = "password123"
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), 10)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := services.Ledger.CreateUser(ctx, store.CreateUserParams{
		Name:         seed.Name,
		Email:        seed.Email,
		PasswordHash: string(hash),
		Role:         models.Role(seed.Role),
	})
	if err != nil {
		if errors.Is(err, store.ErrDuplicateUser) {
			fmt.Printf("- %s: already exists, skipped\n", seed.Email)
			stats.skipped++
			return nil
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	stats.users++

	for _, e := range seed.Entries {
		parsed, err := e.Parse()
		if err != nil {
			return err
		}
		if _, err := services.Ledger.CreateEntry(ctx, store.CreateEntryParams{
			UserId: user.Id,
			Title:  e.Title,
			Amount: parsed.Amount,
			Type:   parsed.Type,
			Status: parsed.Status,
			Date:   daysAgo(now, e.DaysAgo),
		}); err != nil {
			return fmt.Errorf("failed to create entry %q: %w", e.Title, err)
		}
		stats.entries++
	}

	for _, days := range seed.CheckinDays {
		date := daysAgo(now, days)
		_, err := services.Ledger.CreateCheckinEntry(ctx, store.CheckinParams{
			UserId: user.Id,
			Title:  services.Rewards.CheckinTitle,
			Amount: services.Rewards.CheckinReward,
			Date:   date,
			Day:    wallet.DayKey(date, services.Rewards.Location),
		})
		if err != nil && !errors.Is(err, store.ErrDuplicateCheckin) {
			return fmt.Errorf("failed to create check-in %d days ago: %w", days, err)
		}
		stats.checkins++
	}

	for _, w := range seed.Withdrawals {
		parsed, err := w.Parse()
		if err != nil {
			return err
		}
		withdrawal, err := services.Ledger.CreateWithdrawal(ctx, store.CreateWithdrawalParams{
			UserId:   user.Id,
			UserName: user.Name,
			Method:   parsed.Method,
			Amount:   parsed.Amount,
			Date:     daysAgo(now, w.DaysAgo),
		})
		if err != nil {
			return fmt.Errorf("failed to create withdrawal of %s: %w", w.Amount, err)
		}
		if parsed.Status != models.WithdrawalStatusPending {
			if _, err := services.Ledger.UpdateWithdrawalStatus(ctx, withdrawal.Id, parsed.Status); err != nil {
				return fmt.Errorf("failed to settle withdrawal %s: %w", withdrawal.Id, err)
			}
		}
		stats.withdrawals++
	}

	fmt.Printf("✓ %s (%s): %d entries, %d check-ins, %d withdrawals\n",
		user.Name, user.Email, len(seed.Entries), len(seed.CheckinDays), len(seed.Withdrawals))
	return nil
}

func main() {
	ctx := context.Background()

	logger, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	fileFlag := flag.String("file", "seed.yaml", "Seed file to load")
	flag.Parse()

	seed, err := common.LoadSeedFile(*fileFlag)
	if err != nil {
		logger.Fatal("Failed to load seed file", zap.Error(err))
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	services, err := common.InitializeServices(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to initialize services", zap.Error(err))
	}
	defer services.Close()

	common.PrintHeader("SEEDING DEMO DATA", common.DefaultWidth)

	now := time.Now()
	stats := seedStats{}
	for _, user := range seed.Users {
		if err := seedUser(ctx, services, user, now, &stats); err != nil {
			logger.Error("Failed to seed user", zap.String("email", user.Email), zap.Error(err))
		}
	}

	summary := fmt.Sprintf("SUMMARY: %d users created, %d skipped, %d entries, %d check-ins, %d withdrawals",
		stats.users, stats.skipped, stats.entries, stats.checkins, stats.withdrawals)
	common.PrintFooter(summary, common.DefaultWidth)

	logger.Info("Seed completed",
		zap.Int("users", stats.users),
		zap.Int("skipped", stats.skipped),
		zap.Int("entries", stats.entries))
}
