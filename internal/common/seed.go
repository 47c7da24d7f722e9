package common

import (
	"fmt"
	"os"

	"github.com/ducduc1118-design/recash/internal/models"
	"github.com/ducduc1118-design/recash/internal/wallet"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v2"
)

type SeedEntry struct {
	Title   string `yaml:"title"`
	Amount  string `yaml:"amount"`
	Type    string `yaml:"type"`
	Status  string `yaml:"status"`
	DaysAgo int    `yaml:"days_ago"`
}

type SeedWithdrawal struct {
	Method  string `yaml:"method"`
	Amount  string `yaml:"amount"`
	Status  string `yaml:"status"`
	DaysAgo int    `yaml:"days_ago"`
}

type SeedUser struct {
	Name        string           `yaml:"name"`
	Email       string           `yaml:"email"`
	Password    string           `yaml:"password"`
	Role        string           `yaml:"role"`
	Entries     []SeedEntry      `yaml:"entries"`
	Withdrawals []SeedWithdrawal `yaml:"withdrawals"`
	// CheckinDays lists past check-ins as days before today, 0 meaning today
	CheckinDays []int `yaml:"checkin_days"`
}

type SeedFile struct {
	Users []SeedUser `yaml:"users"`
}

// LoadSeedFile parses and validates a demo data file
func LoadSeedFile(seedFile string) (*SeedFile, error) {
	path, err := resolvePath(seedFile)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read %s: %w", seedFile, err)
	}

	var seed SeedFile
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("unable to parse %s: %w", seedFile, err)
	}

	for i, user := range seed.Users {
		if user.Email == "" {
			return nil, fmt.Errorf("user at index %d missing email", i)
		}
		if user.Role != "" && !models.Role(user.Role).Valid() {
			return nil, fmt.Errorf("user %s: invalid role %q", user.Email, user.Role)
		}
		for j, entry := range user.Entries {
			if _, err := entry.Parse(); err != nil {
				return nil, fmt.Errorf("user %s entry %d: %w", user.Email, j, err)
			}
		}
		for j, w := range user.Withdrawals {
			if _, err := w.Parse(); err != nil {
				return nil, fmt.Errorf("user %s withdrawal %d: %w", user.Email, j, err)
			}
		}
	}
	return &seed, nil
}

// ParsedSeedEntry is a SeedEntry with typed fields
type ParsedSeedEntry struct {
	Amount decimal.Decimal
	Type   models.EntryType
	Status models.EntryStatus
}

func (e SeedEntry) Parse() (ParsedSeedEntry, error) {
	if e.Title == "" {
		return ParsedSeedEntry{}, fmt.Errorf("missing title")
	}
	amount, err := decimal.NewFromString(e.Amount)
	if err != nil || amount.IsNegative() || !wallet.IsCents(amount) {
		return ParsedSeedEntry{}, fmt.Errorf("invalid amount %q", e.Amount)
	}
	entryType := models.EntryType(e.Type)
	if !entryType.Valid() || entryType == models.EntryTypeWithdrawal {
		return ParsedSeedEntry{}, fmt.Errorf("invalid entry type %q", e.Type)
	}
	status := models.EntryStatus(e.Status)
	if status == "" {
		status = models.EntryStatusCompleted
	}
	if !status.Valid() {
		return ParsedSeedEntry{}, fmt.Errorf("invalid status %q", e.Status)
	}
	return ParsedSeedEntry{Amount: amount, Type: entryType, Status: status}, nil
}

// ParsedSeedWithdrawal is a SeedWithdrawal with typed fields
type ParsedSeedWithdrawal struct {
	Method models.WithdrawalMethod
	Amount decimal.Decimal
	Status models.WithdrawalStatus
}

func (w SeedWithdrawal) Parse() (ParsedSeedWithdrawal, error) {
	method := models.WithdrawalMethod(w.Method)
	if !method.Valid() {
		return ParsedSeedWithdrawal{}, fmt.Errorf("invalid method %q", w.Method)
	}
	amount, err := decimal.NewFromString(w.Amount)
	if err != nil || !amount.IsPositive() || !wallet.IsCents(amount) {
		return ParsedSeedWithdrawal{}, fmt.Errorf("invalid amount %q", w.Amount)
	}
	status := models.WithdrawalStatus(w.Status)
	if status == "" {
		status = models.WithdrawalStatusPending
	}
	if _, err := status.EntryStatus(); err != nil {
		return ParsedSeedWithdrawal{}, err
	}
	return ParsedSeedWithdrawal{Method: method, Amount: amount, Status: status}, nil
}
