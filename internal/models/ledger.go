package models

import (
	"fmt"

	"github.com/shopspring/decimal"
)

type EntryType string

const (
	EntryTypeEarning    EntryType = "earning"
	EntryTypeWithdrawal EntryType = "withdrawal"
	EntryTypeBonus      EntryType = "bonus"
)

func (t EntryType) Valid() bool {
	switch t {
	case EntryTypeEarning, EntryTypeWithdrawal, EntryTypeBonus:
		return true
	}
	return false
}

type EntryStatus string

const (
	EntryStatusPending   EntryStatus = "pending"
	EntryStatusCompleted EntryStatus = "completed"
	EntryStatusFailed    EntryStatus = "failed"
)

func (s EntryStatus) Valid() bool {
	switch s {
	case EntryStatusPending, EntryStatusCompleted, EntryStatusFailed:
		return true
	}
	return false
}

// Role gates the admin back office. An empty role reads as RoleUser.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

type WithdrawalMethod string

const (
	WithdrawalMethodBank    WithdrawalMethod = "bank"
	WithdrawalMethodEWallet WithdrawalMethod = "ewallet"
)

// Details returns the display label stored alongside a withdrawal.
func (m WithdrawalMethod) Details() string {
	if m == WithdrawalMethodBank {
		return "Bank Transfer"
	}
	return "E-Wallet"
}

// EntryTitle is the title of the ledger entry recorded for a withdrawal.
func (m WithdrawalMethod) EntryTitle() string {
	if m == WithdrawalMethodBank {
		return "Withdrawal to Bank"
	}
	return "Withdrawal to E-Wallet"
}

func (m WithdrawalMethod) Valid() bool {
	return m == WithdrawalMethodBank || m == WithdrawalMethodEWallet
}

type WithdrawalStatus string

const (
	WithdrawalStatusPending   WithdrawalStatus = "Pending"
	WithdrawalStatusCompleted WithdrawalStatus = "Completed"
	WithdrawalStatusRejected  WithdrawalStatus = "Rejected"
)

// EntryStatus maps a withdrawal status onto the status of its ledger entry.
func (s WithdrawalStatus) EntryStatus() (EntryStatus, error) {
	switch s {
	case WithdrawalStatusPending:
		return EntryStatusPending, nil
	case WithdrawalStatusCompleted:
		return EntryStatusCompleted, nil
	case WithdrawalStatusRejected:
		return EntryStatusFailed, nil
	}
	return "", fmt.Errorf("unknown withdrawal status %q", s)
}

// WalletSummary holds the unrounded aggregates of a user's ledger.
type WalletSummary struct {
	Balance  decimal.Decimal
	Pending  decimal.Decimal
	Lifetime decimal.Decimal
}

// CheckinStatus is the derived daily check-in state of a user.
type CheckinStatus struct {
	Streak    int  `json:"streak"`
	CheckedIn bool `json:"checkedIn"`
}
