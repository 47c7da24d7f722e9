package common

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ducduc1118-design/recash/internal/models"
	"github.com/ducduc1118-design/recash/internal/wallet"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gopkg.in/yaml.v2"
)

// RewardsFile is the YAML layout of the reward rules. Amounts are strings so they
// parse exactly into decimals.
type RewardsFile struct {
	Checkin struct {
		Title  string `yaml:"title"`
		Reward string `yaml:"reward"`
	} `yaml:"checkin"`
	Timezone      string   `yaml:"timezone"`
	MinWithdrawal string   `yaml:"min_withdrawal"`
	SignUpBonus   string   `yaml:"signup_bonus"`
	ReferralBonus string   `yaml:"referral_bonus"`
	Methods       []string `yaml:"withdrawal_methods"`
}

func DefaultRewardsConfig() models.RewardsConfig {
	return models.RewardsConfig{
		CheckinTitle:      "Daily Check-in",
		CheckinReward:     decimal.NewFromInt(10),
		Location:          time.Local,
		MinWithdrawal:     decimal.NewFromInt(10),
		SignUpBonus:       decimal.NewFromInt(5),
		ReferralBonus:     decimal.NewFromInt(10),
		WithdrawalMethods: []models.WithdrawalMethod{models.WithdrawalMethodBank, models.WithdrawalMethodEWallet},
	}
}

// LoadRewardsConfig reads the rewards file. A missing file yields the defaults;
// fields left empty in the file keep their default.
func LoadRewardsConfig(rewardsFile string) (models.RewardsConfig, error) {
	cfg := DefaultRewardsConfig()

	path, err := resolvePath(rewardsFile)
	if err != nil {
		return cfg, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			zap.L().Info("Rewards file not found, using defaults", zap.String("file", rewardsFile))
			return cfg, nil
		}
		return cfg, fmt.Errorf("unable to read %s: %w", rewardsFile, err)
	}

	var file RewardsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return cfg, fmt.Errorf("unable to parse %s: %w", rewardsFile, err)
	}

	if file.Checkin.Title != "" {
		cfg.CheckinTitle = file.Checkin.Title
	}
	if file.Timezone != "" {
		loc, err := time.LoadLocation(file.Timezone)
		if err != nil {
			return cfg, fmt.Errorf("invalid timezone %q in %s: %w", file.Timezone, rewardsFile, err)
		}
		cfg.Location = loc
	}

	amounts := []struct {
		name  string
		value string
		dst   *decimal.Decimal
	}{
		{"checkin.reward", file.Checkin.Reward, &cfg.CheckinReward},
		{"min_withdrawal", file.MinWithdrawal, &cfg.MinWithdrawal},
		{"signup_bonus", file.SignUpBonus, &cfg.SignUpBonus},
		{"referral_bonus", file.ReferralBonus, &cfg.ReferralBonus},
	}
	for _, a := range amounts {
		if a.value == "" {
			continue
		}
		amount, err := decimal.NewFromString(a.value)
		if err != nil {
			return cfg, fmt.Errorf("invalid %s %q in %s: %w", a.name, a.value, rewardsFile, err)
		}
		if amount.IsNegative() {
			return cfg, fmt.Errorf("%s cannot be negative in %s", a.name, rewardsFile)
		}
		if !wallet.IsCents(amount) {
			return cfg, fmt.Errorf("%s %q in %s has fractions of a cent", a.name, a.value, rewardsFile)
		}
		*a.dst = amount
	}

	if len(file.Methods) > 0 {
		cfg.WithdrawalMethods = cfg.WithdrawalMethods[:0:0]
		for i, m := range file.Methods {
			method := models.WithdrawalMethod(m)
			if !method.Valid() {
				return cfg, fmt.Errorf("withdrawal method at index %d is invalid: %q", i, m)
			}
			cfg.WithdrawalMethods = append(cfg.WithdrawalMethods, method)
		}
	}

	zap.L().Info("Loaded rewards config",
		zap.String("file", rewardsFile),
		zap.String("checkin_reward", cfg.CheckinReward.String()),
		zap.String("timezone", cfg.Location.String()),
		zap.String("min_withdrawal", cfg.MinWithdrawal.String()))
	return cfg, nil
}

func resolvePath(file string) (string, error) {
	if filepath.IsAbs(file) {
		return file, nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get working directory: %w", err)
	}
	return filepath.Join(wd, file), nil
}
