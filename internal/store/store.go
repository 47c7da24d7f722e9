package store

import (
	"context"
	"errors"
	"time"

	"github.com/ducduc1118-design/recash/internal/models"

	"github.com/shopspring/decimal"
)

// Sentinel errors shared across all backend implementations.
var (
	ErrDuplicateCheckin    = errors.New("check-in already recorded for this day")
	ErrDuplicateUser       = errors.New("user already exists")
	ErrUserNotFound        = errors.New("user not found")
	ErrEntryNotFound       = errors.New("ledger entry not found")
	ErrWithdrawalNotFound  = errors.New("withdrawal not found")
	ErrInsufficientBalance = errors.New("insufficient balance")
)

// CreateEntryParams contains the parameters for appending a ledger entry.
// A zero Date means "now".
type CreateEntryParams struct {
	UserId string
	Title  string
	Amount decimal.Decimal
	Type   models.EntryType
	Status models.EntryStatus
	Date   time.Time
}

// CheckinParams describes a daily check-in bonus. Day is the calendar-day key
// ("2006-01-02") the store must keep unique per user and title.
type CheckinParams struct {
	UserId string
	Title  string
	Amount decimal.Decimal
	Date   time.Time
	Day    string
}

// EntryFilter selects ledger entries for one user. Empty fields match everything.
type EntryFilter struct {
	UserId string
	Type   models.EntryType
	Title  string
	Status models.EntryStatus
	Limit  int
}

// Matches reports whether an entry passes the filter.
func (f EntryFilter) Matches(entry models.LedgerEntry) bool {
	if f.UserId != "" && entry.UserId != f.UserId {
		return false
	}
	if f.Type != "" && entry.Type != f.Type {
		return false
	}
	if f.Title != "" && entry.Title != f.Title {
		return false
	}
	if f.Status != "" && entry.Status != f.Status {
		return false
	}
	return true
}

// CreateUserParams contains the parameters for registering a user.
type CreateUserParams struct {
	Id           string
	Name         string
	Email        string
	PasswordHash string
	ReferralCode string
	// Role defaults to models.RoleUser when empty
	Role models.Role
}

// UserRole returns the role to persist for the new user.
func (p CreateUserParams) UserRole() models.Role {
	if p.Role == "" {
		return models.RoleUser
	}
	return p.Role
}

// CreateWithdrawalParams contains the parameters for a withdrawal request. The
// backend writes the request and its pending withdrawal entry atomically, and
// returns ErrInsufficientBalance if Amount exceeds the wallet balance.
type CreateWithdrawalParams struct {
	UserId   string
	UserName string
	Method   models.WithdrawalMethod
	Amount   decimal.Decimal
	Date     time.Time
}

// LedgerStore defines the contract that every backend (SQLite, Postgres, Formance, memory) must satisfy.
type LedgerStore interface {
	// --- Users ---
	GetUsers(ctx context.Context) ([]models.User, error)
	GetUserById(ctx context.Context, userId string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	CreateUser(ctx context.Context, params CreateUserParams) (*models.User, error)

	// --- Ledger entries ---
	CreateEntry(ctx context.Context, params CreateEntryParams) (*models.LedgerEntry, error)
	// FindEntries returns matching entries newest first.
	FindEntries(ctx context.Context, filter EntryFilter) ([]models.LedgerEntry, error)
	UpdateEntryStatus(ctx context.Context, entryId string, status models.EntryStatus) error
	// CreateCheckinEntry appends a completed bonus entry, or returns ErrDuplicateCheckin
	// if one already exists for the same user, title and day.
	CreateCheckinEntry(ctx context.Context, params CheckinParams) (*models.LedgerEntry, error)

	// --- Withdrawals ---
	CreateWithdrawal(ctx context.Context, params CreateWithdrawalParams) (*models.Withdrawal, error)
	GetWithdrawals(ctx context.Context, userId string) ([]models.Withdrawal, error)
	// ListWithdrawals returns withdrawals of every user newest first. An empty
	// status matches all of them.
	ListWithdrawals(ctx context.Context, status models.WithdrawalStatus) ([]models.Withdrawal, error)
	UpdateWithdrawalStatus(ctx context.Context, withdrawalId string, status models.WithdrawalStatus) (*models.Withdrawal, error)

	// --- Lifecycle ---
	Close()
}
