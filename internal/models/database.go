package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// User represents a user in the system
type User struct {
	Id           string    `db:"id"`
	Name         string    `db:"name"`
	Email        string    `db:"email"`
	PasswordHash string    `db:"password_hash"`
	ReferralCode string    `db:"referral_code"`
	Role         Role      `db:"role"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

// LedgerEntry is one append-only record of value moving in or out of a user's wallet.
// Amount is never negative; the direction is carried by Type.
type LedgerEntry struct {
	Id     string          `db:"id"`
	UserId string          `db:"user_id"`
	Title  string          `db:"title"`
	Amount decimal.Decimal `db:"amount"`
	Type   EntryType       `db:"type"`
	Status EntryStatus     `db:"status"`
	Date   time.Time       `db:"date"`
}

// Withdrawal is a cash-out request. Every withdrawal owns exactly one
// withdrawal-type ledger entry (EntryId) whose status follows the request.
type Withdrawal struct {
	Id        string           `db:"id"`
	UserId    string           `db:"user_id"`
	UserName  string           `db:"user_name"`
	Method    WithdrawalMethod `db:"method"`
	Details   string           `db:"details"`
	Amount    decimal.Decimal  `db:"amount"`
	Status    WithdrawalStatus `db:"status"`
	EntryId   string           `db:"entry_id"`
	Date      time.Time        `db:"date"`
	UpdatedAt time.Time        `db:"updated_at"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
