package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/ducduc1118-design/recash/internal/models"
	"github.com/ducduc1118-design/recash/internal/store"
	"github.com/ducduc1118-design/recash/internal/wallet"

	"github.com/google/uuid"
)

// Compile-time check: *Store must satisfy store.LedgerStore.
var _ store.LedgerStore = (*Store)(nil)

type checkinKey struct {
	userId string
	title  string
	day    string
}

// Store is an in-process LedgerStore. Its mutex plays the role of a database
// unique index for check-ins; it is meant for tests and local runs.
type Store struct {
	mu          sync.RWMutex
	users       map[string]models.User
	entries     []models.LedgerEntry
	checkins    map[checkinKey]string
	withdrawals map[string]models.Withdrawal
	now         func() time.Time
}

func NewStore() *Store {
	return &Store{
		users:       make(map[string]models.User),
		checkins:    make(map[checkinKey]string),
		withdrawals: make(map[string]models.Withdrawal),
		now:         time.Now,
	}
}

func (s *Store) Close() {}

func (s *Store) GetUsers(_ context.Context) ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]models.User, 0, len(s.users))
	for _, u := range s.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].CreatedAt.Before(users[j].CreatedAt) })
	return users, nil
}

func (s *Store) GetUserById(_ context.Context, userId string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[userId]
	if !ok {
		return nil, fmt.Errorf("%w: %s", store.ErrUserNotFound, userId)
	}
	return &u, nil
}

func (s *Store) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", store.ErrUserNotFound, email)
}

func (s *Store) CreateUser(_ context.Context, params store.CreateUserParams) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if strings.EqualFold(u.Email, params.Email) {
			return nil, fmt.Errorf("%w: %s", store.ErrDuplicateUser, params.Email)
		}
	}

	id := params.Id
	if id == "" {
		id = uuid.New().String()
	}
	now := s.now()
	u := models.User{
		Id:           id,
		Name:         params.Name,
		Email:        params.Email,
		PasswordHash: params.PasswordHash,
		ReferralCode: params.ReferralCode,
		Role:         params.UserRole(),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	s.users[id] = u
	return &u, nil
}

func (s *Store) CreateEntry(_ context.Context, params store.CreateEntryParams) (*models.LedgerEntry, error) {
	if params.Amount.IsNegative() {
		return nil, fmt.Errorf("ledger amount cannot be negative, got %s", params.Amount)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entry := s.appendLocked(params.UserId, params.Title, params)
	return &entry, nil
}

func (s *Store) appendLocked(userId, title string, params store.CreateEntryParams) models.LedgerEntry {
	date := params.Date
	if date.IsZero() {
		date = s.now()
	}
	entry := models.LedgerEntry{
		Id:     uuid.New().String(),
		UserId: userId,
		Title:  title,
		Amount: params.Amount,
		Type:   params.Type,
		Status: params.Status,
		Date:   date,
	}
	s.entries = append(s.entries, entry)
	return entry
}

func (s *Store) FindEntries(_ context.Context, filter store.EntryFilter) ([]models.LedgerEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []models.LedgerEntry
	for _, e := range s.entries {
		if filter.Matches(e) {
			result = append(result, e)
		}
	}
	sort.SliceStable(result, func(i, j int) bool { return result[i].Date.After(result[j].Date) })

	if filter.Limit > 0 && len(result) > filter.Limit {
		result = result[:filter.Limit]
	}
	return result, nil
}

func (s *Store) UpdateEntryStatus(_ context.Context, entryId string, status models.EntryStatus) error {
	if !status.Valid() {
		return fmt.Errorf("invalid entry status %q", status)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.entries {
		if s.entries[i].Id == entryId {
			s.entries[i].Status = status
			return nil
		}
	}
	return fmt.Errorf("%w: %s", store.ErrEntryNotFound, entryId)
}

func (s *Store) CreateCheckinEntry(_ context.Context, params store.CheckinParams) (*models.LedgerEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := checkinKey{userId: params.UserId, title: params.Title, day: params.Day}
	if existing, ok := s.checkins[key]; ok {
		return nil, fmt.Errorf("%w: entry %s", store.ErrDuplicateCheckin, existing)
	}

	entry := s.appendLocked(params.UserId, params.Title, store.CreateEntryParams{
		Amount: params.Amount,
		Type:   models.EntryTypeBonus,
		Status: models.EntryStatusCompleted,
		Date:   params.Date,
	})
	s.checkins[key] = entry.Id
	return &entry, nil
}

func (s *Store) CreateWithdrawal(_ context.Context, params store.CreateWithdrawalParams) (*models.Withdrawal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var own []models.LedgerEntry
	for _, e := range s.entries {
		if e.UserId == params.UserId {
			own = append(own, e)
		}
	}
	if balance := wallet.ComputeWalletSummary(own).Balance; balance.LessThan(params.Amount) {
		return nil, fmt.Errorf("%w: balance %s, requested %s", store.ErrInsufficientBalance, balance, params.Amount)
	}

	entry := s.appendLocked(params.UserId, params.Method.EntryTitle(), store.CreateEntryParams{
		Amount: params.Amount,
		Type:   models.EntryTypeWithdrawal,
		Status: models.EntryStatusPending,
		Date:   params.Date,
	})

	w := models.Withdrawal{
		Id:        uuid.New().String(),
		UserId:    params.UserId,
		UserName:  params.UserName,
		Method:    params.Method,
		Details:   params.Method.Details(),
		Amount:    params.Amount,
		Status:    models.WithdrawalStatusPending,
		EntryId:   entry.Id,
		Date:      entry.Date,
		UpdatedAt: entry.Date,
	}
	s.withdrawals[w.Id] = w
	return &w, nil
}

func (s *Store) GetWithdrawals(_ context.Context, userId string) ([]models.Withdrawal, error) {
	return s.withdrawalsWhere(func(w models.Withdrawal) bool { return w.UserId == userId }), nil
}

func (s *Store) ListWithdrawals(_ context.Context, status models.WithdrawalStatus) ([]models.Withdrawal, error) {
	return s.withdrawalsWhere(func(w models.Withdrawal) bool { return status == "" || w.Status == status }), nil
}

func (s *Store) withdrawalsWhere(match func(models.Withdrawal) bool) []models.Withdrawal {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []models.Withdrawal
	for _, w := range s.withdrawals {
		if match(w) {
			result = append(result, w)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Date.After(result[j].Date) })
	return result
}

func (s *Store) UpdateWithdrawalStatus(_ context.Context, withdrawalId string, status models.WithdrawalStatus) (*models.Withdrawal, error) {
	entryStatus, err := status.EntryStatus()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.withdrawals[withdrawalId]
	if !ok {
		return nil, fmt.Errorf("%w: %s", store.ErrWithdrawalNotFound, withdrawalId)
	}
	for i := range s.entries {
		if s.entries[i].Id == w.EntryId {
			s.entries[i].Status = entryStatus
		}
	}
	w.Status = status
	w.UpdatedAt = s.now()
	s.withdrawals[withdrawalId] = w
	return &w, nil
}
