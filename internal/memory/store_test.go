package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ducduc1118-design/recash/internal/models"
	"github.com/ducduc1118-design/recash/internal/store"

	"github.com/shopspring/decimal"
)

func TestCreateCheckinEntry_Concurrent(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	now := time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)

	const workers = 20
	var wg sync.WaitGroup
	var mu sync.Mutex
	created, duplicates := 0, 0

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.CreateCheckinEntry(ctx, store.CheckinParams{
				UserId: "user1",
				Title:  "Daily Check-in",
				Amount: decimal.NewFromInt(10),
				Date:   now,
				Day:    "2026-10-18",
			})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				created++
			case errors.Is(err, store.ErrDuplicateCheckin):
				duplicates++
			default:
				t.Errorf("Unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if created != 1 {
		t.Errorf("Expected exactly 1 check-in, got %d", created)
	}
	if duplicates != workers-1 {
		t.Errorf("Expected %d duplicates, got %d", workers-1, duplicates)
	}

	entries, err := s.FindEntries(ctx, store.EntryFilter{UserId: "user1", Type: models.EntryTypeBonus})
	if err != nil {
		t.Fatalf("FindEntries failed: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("Expected 1 stored entry, got %d", len(entries))
	}
}

func TestWithdrawalStatusFollowsEntry(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	_, err := s.CreateWithdrawal(ctx, store.CreateWithdrawalParams{
		UserId: "user1",
		Method: models.WithdrawalMethodBank,
		Amount: decimal.NewFromInt(15),
	})
	if !errors.Is(err, store.ErrInsufficientBalance) {
		t.Fatalf("Expected ErrInsufficientBalance on empty wallet, got %v", err)
	}

	if _, err := s.CreateEntry(ctx, store.CreateEntryParams{
		UserId: "user1",
		Title:  "Cashback from Nike",
		Amount: decimal.NewFromInt(20),
		Type:   models.EntryTypeEarning,
		Status: models.EntryStatusCompleted,
	}); err != nil {
		t.Fatalf("CreateEntry failed: %v", err)
	}

	w, err := s.CreateWithdrawal(ctx, store.CreateWithdrawalParams{
		UserId: "user1",
		Method: models.WithdrawalMethodEWallet,
		Amount: decimal.NewFromInt(15),
	})
	if err != nil {
		t.Fatalf("CreateWithdrawal failed: %v", err)
	}
	if w.Details != "E-Wallet" {
		t.Errorf("Expected details E-Wallet, got %s", w.Details)
	}

	if _, err := s.UpdateWithdrawalStatus(ctx, w.Id, models.WithdrawalStatusRejected); err != nil {
		t.Fatalf("UpdateWithdrawalStatus failed: %v", err)
	}

	entries, _ := s.FindEntries(ctx, store.EntryFilter{UserId: "user1", Type: models.EntryTypeWithdrawal})
	if len(entries) != 1 {
		t.Fatalf("Expected 1 withdrawal entry, got %d", len(entries))
	}
	if entries[0].Status != models.EntryStatusFailed {
		t.Errorf("Expected entry status failed, got %s", entries[0].Status)
	}

	if _, err := s.UpdateWithdrawalStatus(ctx, "missing", models.WithdrawalStatusCompleted); !errors.Is(err, store.ErrWithdrawalNotFound) {
		t.Errorf("Expected ErrWithdrawalNotFound, got %v", err)
	}
}

func TestListWithdrawals_AcrossUsers(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	base := time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)

	for i, userId := range []string{"user1", "user2"} {
		if _, err := s.CreateEntry(ctx, store.CreateEntryParams{
			UserId: userId,
			Title:  "Cashback from Nike",
			Amount: decimal.NewFromInt(50),
			Type:   models.EntryTypeEarning,
			Status: models.EntryStatusCompleted,
		}); err != nil {
			t.Fatalf("CreateEntry failed: %v", err)
		}
		if _, err := s.CreateWithdrawal(ctx, store.CreateWithdrawalParams{
			UserId: userId,
			Method: models.WithdrawalMethodBank,
			Amount: decimal.NewFromInt(10),
			Date:   base.Add(time.Duration(i) * time.Hour),
		}); err != nil {
			t.Fatalf("CreateWithdrawal failed: %v", err)
		}
	}

	all, err := s.ListWithdrawals(ctx, "")
	if err != nil {
		t.Fatalf("ListWithdrawals failed: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("Expected 2 withdrawals, got %d", len(all))
	}
	if all[0].UserId != "user2" {
		t.Errorf("Expected newest first (user2), got %s", all[0].UserId)
	}

	if _, err := s.UpdateWithdrawalStatus(ctx, all[0].Id, models.WithdrawalStatusCompleted); err != nil {
		t.Fatalf("UpdateWithdrawalStatus failed: %v", err)
	}

	pending, _ := s.ListWithdrawals(ctx, models.WithdrawalStatusPending)
	if len(pending) != 1 || pending[0].UserId != "user1" {
		t.Errorf("Expected only user1 pending, got %+v", pending)
	}
	completed, _ := s.ListWithdrawals(ctx, models.WithdrawalStatusCompleted)
	if len(completed) != 1 || completed[0].UserId != "user2" {
		t.Errorf("Expected only user2 completed, got %+v", completed)
	}
}

func TestCreateUser_DefaultRole(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	u, err := s.CreateUser(ctx, store.CreateUserParams{Name: "Alex", Email: "alex@example.com"})
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	if u.Role != models.RoleUser {
		t.Errorf("Expected role user, got %q", u.Role)
	}

	admin, _ := s.CreateUser(ctx, store.CreateUserParams{Name: "Admin", Email: "admin@example.com", Role: models.RoleAdmin})
	if !admin.IsAdmin() {
		t.Errorf("Expected admin role, got %q", admin.Role)
	}
}
