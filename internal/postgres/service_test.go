package postgres

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/ducduc1118-design/recash/internal/models"
	"github.com/ducduc1118-design/recash/internal/store"

	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/shopspring/decimal"
)

func TestIsUniqueViolation(t *testing.T) {
	if !isUniqueViolation(&pgconn.PgError{Code: "23505"}) {
		t.Error("23505 should be a unique violation")
	}
	if !isUniqueViolation(fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"})) {
		t.Error("wrapped 23505 should be a unique violation")
	}
	if isUniqueViolation(&pgconn.PgError{Code: "23503"}) {
		t.Error("foreign key violation is not a unique violation")
	}
	if isUniqueViolation(errors.New("boom")) || isUniqueViolation(nil) {
		t.Error("plain errors are not unique violations")
	}
}

func TestNewService_Validation(t *testing.T) {
	ctx := context.Background()
	if _, err := NewService(ctx, models.PostgresConfig{}); err == nil {
		t.Error("expected error for empty DSN")
	}
	if _, err := NewService(ctx, models.PostgresConfig{DSN: "postgres://localhost/x", MaxOpenConns: 0, PingTimeout: time.Second}); err == nil {
		t.Error("expected error for zero max open connections")
	}
}

// setupTestDb connects to POSTGRES_TEST_DSN; the tests are skipped without it.
func setupTestDb(t *testing.T) *Service {
	t.Helper()
	dsn := os.Getenv("POSTGRES_TEST_DSN")
	if dsn == "" {
		t.Skip("POSTGRES_TEST_DSN not set")
	}

	service, err := NewService(context.Background(), models.PostgresConfig{
		DSN:          dsn,
		MaxOpenConns: 10,
		MaxIdleConns: 5,
		PingTimeout:  5 * time.Second,
	})
	if err != nil {
		t.Fatalf("NewService failed: %v", err)
	}
	t.Cleanup(service.Close)
	return service
}

func TestCreateCheckinEntry_ConcurrentWriters(t *testing.T) {
	service := setupTestDb(t)
	ctx := context.Background()
	userId := "pg-test-" + uuid.New().String()

	const workers = 12
	var wg sync.WaitGroup
	results := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := service.CreateCheckinEntry(ctx, store.CheckinParams{
				UserId: userId,
				Title:  "Daily Check-in",
				Amount: decimal.NewFromInt(10),
				Date:   time.Now(),
				Day:    "2026-10-18",
			})
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	created := 0
	for err := range results {
		switch {
		case err == nil:
			created++
		case errors.Is(err, store.ErrDuplicateCheckin):
		default:
			t.Errorf("Unexpected error: %v", err)
		}
	}
	if created != 1 {
		t.Errorf("Expected exactly 1 successful check-in, got %d", created)
	}
}

func TestWithdrawalLifecycle(t *testing.T) {
	service := setupTestDb(t)
	ctx := context.Background()
	userId := "pg-test-" + uuid.New().String()

	_, err := service.CreateEntry(ctx, store.CreateEntryParams{
		UserId: userId,
		Title:  "Cashback from Nike",
		Amount: decimal.RequireFromString("20.00"),
		Type:   models.EntryTypeEarning,
		Status: models.EntryStatusCompleted,
	})
	if err != nil {
		t.Fatalf("CreateEntry failed: %v", err)
	}

	_, err = service.CreateWithdrawal(ctx, store.CreateWithdrawalParams{
		UserId: userId,
		Method: models.WithdrawalMethodBank,
		Amount: decimal.RequireFromString("20.01"),
	})
	if !errors.Is(err, store.ErrInsufficientBalance) {
		t.Fatalf("Expected ErrInsufficientBalance, got %v", err)
	}

	w, err := service.CreateWithdrawal(ctx, store.CreateWithdrawalParams{
		UserId: userId,
		Method: models.WithdrawalMethodBank,
		Amount: decimal.RequireFromString("15.00"),
	})
	if err != nil {
		t.Fatalf("CreateWithdrawal failed: %v", err)
	}

	if _, err := service.UpdateWithdrawalStatus(ctx, w.Id, models.WithdrawalStatusCompleted); err != nil {
		t.Fatalf("UpdateWithdrawalStatus failed: %v", err)
	}

	entries, err := service.FindEntries(ctx, store.EntryFilter{UserId: userId, Type: models.EntryTypeWithdrawal})
	if err != nil {
		t.Fatalf("FindEntries failed: %v", err)
	}
	if len(entries) != 1 || entries[0].Status != models.EntryStatusCompleted {
		t.Errorf("Expected one completed withdrawal entry, got %+v", entries)
	}
}

func TestListWithdrawals_AcrossUsers(t *testing.T) {
	service := setupTestDb(t)
	ctx := context.Background()

	var ids []string
	for i := 0; i < 2; i++ {
		userId := "pg-test-" + uuid.New().String()
		if _, err := service.CreateEntry(ctx, store.CreateEntryParams{
			UserId: userId,
			Title:  "Cashback from Nike",
			Amount: decimal.RequireFromString("30.00"),
			Type:   models.EntryTypeEarning,
			Status: models.EntryStatusCompleted,
		}); err != nil {
			t.Fatalf("CreateEntry failed: %v", err)
		}
		w, err := service.CreateWithdrawal(ctx, store.CreateWithdrawalParams{
			UserId: userId,
			Method: models.WithdrawalMethodEWallet,
			Amount: decimal.RequireFromString("10.00"),
		})
		if err != nil {
			t.Fatalf("CreateWithdrawal failed: %v", err)
		}
		ids = append(ids, w.Id)
	}

	if _, err := service.UpdateWithdrawalStatus(ctx, ids[0], models.WithdrawalStatusRejected); err != nil {
		t.Fatalf("UpdateWithdrawalStatus failed: %v", err)
	}

	pending, err := service.ListWithdrawals(ctx, models.WithdrawalStatusPending)
	if err != nil {
		t.Fatalf("ListWithdrawals failed: %v", err)
	}
	found := map[string]bool{}
	for _, w := range pending {
		found[w.Id] = true
	}
	if found[ids[0]] {
		t.Errorf("Expected rejected withdrawal %s to be filtered out", ids[0])
	}
	if !found[ids[1]] {
		t.Errorf("Expected pending withdrawal %s in the queue", ids[1])
	}

	all, err := service.ListWithdrawals(ctx, "")
	if err != nil {
		t.Fatalf("ListWithdrawals failed: %v", err)
	}
	if len(all) < 2 {
		t.Errorf("Expected at least 2 withdrawals, got %d", len(all))
	}
}
