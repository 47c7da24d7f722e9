package common

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ducduc1118-design/recash/internal/models"

	"github.com/shopspring/decimal"
)

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("Failed to write %s: %v", name, err)
	}
	return path
}

func TestLoadRewardsConfig_MissingFile(t *testing.T) {
	cfg, err := LoadRewardsConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Expected defaults for missing file, got %v", err)
	}
	if cfg.CheckinTitle != "Daily Check-in" || !cfg.CheckinReward.Equal(decimal.NewFromInt(10)) {
		t.Errorf("Unexpected defaults: %+v", cfg)
	}
	if !cfg.MinWithdrawal.Equal(decimal.NewFromInt(10)) || !cfg.SignUpBonus.Equal(decimal.NewFromInt(5)) {
		t.Errorf("Unexpected withdrawal/bonus defaults: %+v", cfg)
	}
}

func TestLoadRewardsConfig_Overrides(t *testing.T) {
	path := writeTempFile(t, "rewards.yaml", `
checkin:
  reward: "2.50"
timezone: Asia/Ho_Chi_Minh
min_withdrawal: "20"
withdrawal_methods: [ewallet]
`)

	cfg, err := LoadRewardsConfig(path)
	if err != nil {
		t.Fatalf("LoadRewardsConfig failed: %v", err)
	}
	if !cfg.CheckinReward.Equal(decimal.RequireFromString("2.50")) {
		t.Errorf("Expected reward 2.50, got %s", cfg.CheckinReward)
	}
	if cfg.CheckinTitle != "Daily Check-in" {
		t.Errorf("Expected default title to be kept, got %q", cfg.CheckinTitle)
	}
	if cfg.Location.String() != "Asia/Ho_Chi_Minh" {
		t.Errorf("Expected Asia/Ho_Chi_Minh, got %s", cfg.Location)
	}
	if len(cfg.WithdrawalMethods) != 1 || cfg.WithdrawalMethods[0] != models.WithdrawalMethodEWallet {
		t.Errorf("Expected only ewallet, got %v", cfg.WithdrawalMethods)
	}
	if !cfg.ReferralBonus.Equal(decimal.NewFromInt(10)) {
		t.Errorf("Expected default referral bonus, got %s", cfg.ReferralBonus)
	}
}

func TestLoadRewardsConfig_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad amount", "min_withdrawal: ten\n"},
		{"negative amount", "signup_bonus: \"-5\"\n"},
		{"fraction of a cent", "checkin:\n  reward: \"2.505\"\n"},
		{"bad timezone", "timezone: Mars/Olympus\n"},
		{"bad method", "withdrawal_methods: [paypal]\n"},
		{"bad yaml", "checkin: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeTempFile(t, "rewards.yaml", tt.content)
			if _, err := LoadRewardsConfig(path); err == nil {
				t.Error("Expected error, got nil")
			}
		})
	}
}

func TestLoadSeedFile(t *testing.T) {
	path := writeTempFile(t, "seed.yaml", `
users:
  - name: Alex
    email: alex@example.com
    password: password123
    checkin_days: [1, 2]
    entries:
      - title: Cashback from Amazon
        amount: "12.50"
        type: earning
        status: pending
        days_ago: 3
    withdrawals:
      - method: bank
        amount: "10"
        status: Completed
`)

	seed, err := LoadSeedFile(path)
	if err != nil {
		t.Fatalf("LoadSeedFile failed: %v", err)
	}
	if len(seed.Users) != 1 || len(seed.Users[0].Entries) != 1 || len(seed.Users[0].CheckinDays) != 2 {
		t.Fatalf("Unexpected seed: %+v", seed)
	}

	parsed, err := seed.Users[0].Entries[0].Parse()
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if parsed.Type != models.EntryTypeEarning || parsed.Status != models.EntryStatusPending {
		t.Errorf("Unexpected parsed entry: %+v", parsed)
	}

	bad := writeTempFile(t, "bad.yaml", `
users:
  - email: a@example.com
    entries:
      - title: Withdrawal
        amount: "5"
        type: withdrawal
`)
	if _, err := LoadSeedFile(bad); err == nil {
		t.Error("Expected withdrawal-type seed entry to be rejected")
	}
}

func TestSeedWithdrawalParse(t *testing.T) {
	tests := []struct {
		name    string
		w       SeedWithdrawal
		wantErr bool
		status  models.WithdrawalStatus
	}{
		{"defaults to pending", SeedWithdrawal{Method: "bank", Amount: "20"}, false, models.WithdrawalStatusPending},
		{"completed", SeedWithdrawal{Method: "ewallet", Amount: "12.50", Status: "Completed"}, false, models.WithdrawalStatusCompleted},
		{"typo in amount", SeedWithdrawal{Method: "bank", Amount: "2O"}, true, ""},
		{"zero amount", SeedWithdrawal{Method: "bank", Amount: "0"}, true, ""},
		{"fraction of a cent", SeedWithdrawal{Method: "bank", Amount: "10.001"}, true, ""},
		{"bad method", SeedWithdrawal{Method: "cash", Amount: "10"}, true, ""},
		{"bad status", SeedWithdrawal{Method: "bank", Amount: "10", Status: "Done"}, true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parsed, err := tt.w.Parse()
			if tt.wantErr {
				if err == nil {
					t.Errorf("Expected error, got %+v", parsed)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse failed: %v", err)
			}
			if parsed.Status != tt.status {
				t.Errorf("Expected status %s, got %s", tt.status, parsed.Status)
			}
		})
	}

	bad := writeTempFile(t, "bad-withdrawal.yaml", `
users:
  - email: a@example.com
    withdrawals:
      - method: bank
        amount: "2O"
`)
	if _, err := LoadSeedFile(bad); err == nil {
		t.Error("Expected seed withdrawal with unparseable amount to be rejected")
	}
}

func TestLoadSeedFile_Role(t *testing.T) {
	path := writeTempFile(t, "seed.yaml", `
users:
  - name: Admin
    email: admin@example.com
    role: admin
`)
	seed, err := LoadSeedFile(path)
	if err != nil {
		t.Fatalf("LoadSeedFile failed: %v", err)
	}
	if models.Role(seed.Users[0].Role) != models.RoleAdmin {
		t.Errorf("Expected admin role, got %q", seed.Users[0].Role)
	}

	bad := writeTempFile(t, "bad-role.yaml", `
users:
  - email: root@example.com
    role: root
`)
	if _, err := LoadSeedFile(bad); err == nil {
		t.Error("Expected unknown role to be rejected")
	}
}
