package database

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/ducduc1118-design/recash/internal/models"
	"github.com/ducduc1118-design/recash/internal/store"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
)

func setupTestDb(t *testing.T) (*Service, func()) {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	// every :memory: connection is a separate database
	db.SetMaxOpenConns(1)

	service := &Service{db: db}

	// Use the actual schema initialization
	if err := service.InitSchema(context.Background()); err != nil {
		t.Fatalf("Failed to create test schema: %v", err)
	}

	cleanup := func() {
		db.Close()
	}

	return service, cleanup
}

func createTestEntry(t *testing.T, service *Service, entryType models.EntryType, amount string, status models.EntryStatus, date time.Time) *models.LedgerEntry {
	t.Helper()
	entry, err := service.CreateEntry(context.Background(), store.CreateEntryParams{
		UserId: "user1",
		Title:  "Cashback from Nike",
		Amount: decimal.RequireFromString(amount),
		Type:   entryType,
		Status: status,
		Date:   date,
	})
	if err != nil {
		t.Fatalf("CreateEntry failed: %v", err)
	}
	return entry
}

func TestCreateEntry_RoundTrip(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	date := time.Date(2026, 10, 18, 9, 30, 0, 0, time.FixedZone("UTC+7", 7*60*60))
	created := createTestEntry(t, service, models.EntryTypeEarning, "10.20", models.EntryStatusPending, date)

	entries, err := service.FindEntries(context.Background(), store.EntryFilter{UserId: "user1"})
	if err != nil {
		t.Fatalf("FindEntries failed: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("Expected 1 entry, got %d", len(entries))
	}

	got := entries[0]
	if got.Id != created.Id {
		t.Errorf("Expected id %s, got %s", created.Id, got.Id)
	}
	if !got.Amount.Equal(decimal.RequireFromString("10.20")) {
		t.Errorf("Expected amount 10.20, got %s", got.Amount)
	}
	if got.Type != models.EntryTypeEarning || got.Status != models.EntryStatusPending {
		t.Errorf("Expected earning/pending, got %s/%s", got.Type, got.Status)
	}
	if !got.Date.Equal(date) {
		t.Errorf("Expected date %v, got %v", date, got.Date)
	}
}

func TestCreateEntry_RejectsNegativeAmount(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	_, err := service.CreateEntry(context.Background(), store.CreateEntryParams{
		UserId: "user1",
		Title:  "bad",
		Amount: decimal.NewFromInt(-5),
		Type:   models.EntryTypeEarning,
		Status: models.EntryStatusCompleted,
	})
	if err == nil {
		t.Fatal("Expected error for negative amount, got nil")
	}
}

func TestFindEntries_NewestFirstAndFiltered(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	base := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	createTestEntry(t, service, models.EntryTypeEarning, "1.00", models.EntryStatusCompleted, base)
	createTestEntry(t, service, models.EntryTypeBonus, "2.00", models.EntryStatusCompleted, base.Add(48*time.Hour))
	createTestEntry(t, service, models.EntryTypeEarning, "3.00", models.EntryStatusPending, base.Add(24*time.Hour))

	ctx := context.Background()
	entries, err := service.FindEntries(ctx, store.EntryFilter{UserId: "user1"})
	if err != nil {
		t.Fatalf("FindEntries failed: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("Expected 3 entries, got %d", len(entries))
	}
	for i := 1; i < len(entries); i++ {
		if entries[i].Date.After(entries[i-1].Date) {
			t.Errorf("Entries not ordered newest first at index %d", i)
		}
	}

	earnings, err := service.FindEntries(ctx, store.EntryFilter{UserId: "user1", Type: models.EntryTypeEarning})
	if err != nil {
		t.Fatalf("FindEntries failed: %v", err)
	}
	if len(earnings) != 2 {
		t.Errorf("Expected 2 earnings, got %d", len(earnings))
	}

	limited, err := service.FindEntries(ctx, store.EntryFilter{UserId: "user1", Limit: 1})
	if err != nil {
		t.Fatalf("FindEntries failed: %v", err)
	}
	if len(limited) != 1 || !limited[0].Amount.Equal(decimal.NewFromInt(2)) {
		t.Errorf("Expected newest entry of 2.00, got %+v", limited)
	}

	others, err := service.FindEntries(ctx, store.EntryFilter{UserId: "user2"})
	if err != nil {
		t.Fatalf("FindEntries failed: %v", err)
	}
	if len(others) != 0 {
		t.Errorf("Expected no entries for user2, got %d", len(others))
	}
}

func TestUpdateEntryStatus(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	ctx := context.Background()
	entry := createTestEntry(t, service, models.EntryTypeEarning, "4.50", models.EntryStatusPending, time.Now())

	if err := service.UpdateEntryStatus(ctx, entry.Id, models.EntryStatusCompleted); err != nil {
		t.Fatalf("UpdateEntryStatus failed: %v", err)
	}

	entries, _ := service.FindEntries(ctx, store.EntryFilter{UserId: "user1", Status: models.EntryStatusCompleted})
	if len(entries) != 1 {
		t.Errorf("Expected 1 completed entry, got %d", len(entries))
	}

	err := service.UpdateEntryStatus(ctx, "missing", models.EntryStatusCompleted)
	if !errors.Is(err, store.ErrEntryNotFound) {
		t.Errorf("Expected ErrEntryNotFound, got %v", err)
	}

	if err := service.UpdateEntryStatus(ctx, entry.Id, "settled"); err == nil {
		t.Error("Expected error for invalid status, got nil")
	}
}

func TestCreateCheckinEntry_DuplicateDay(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	ctx := context.Background()
	params := store.CheckinParams{
		UserId: "user1",
		Title:  "Daily Check-in",
		Amount: decimal.NewFromInt(10),
		Date:   time.Date(2026, 10, 18, 8, 0, 0, 0, time.UTC),
		Day:    "2026-10-18",
	}

	if _, err := service.CreateCheckinEntry(ctx, params); err != nil {
		t.Fatalf("First check-in failed: %v", err)
	}

	params.Date = params.Date.Add(6 * time.Hour)
	_, err := service.CreateCheckinEntry(ctx, params)
	if !errors.Is(err, store.ErrDuplicateCheckin) {
		t.Fatalf("Expected ErrDuplicateCheckin, got %v", err)
	}

	params.Day = "2026-10-19"
	params.Date = params.Date.Add(24 * time.Hour)
	if _, err := service.CreateCheckinEntry(ctx, params); err != nil {
		t.Fatalf("Next-day check-in failed: %v", err)
	}

	// another user may check in on the same day
	params.UserId = "user2"
	if _, err := service.CreateCheckinEntry(ctx, params); err != nil {
		t.Fatalf("Check-in for user2 failed: %v", err)
	}

	entries, _ := service.FindEntries(ctx, store.EntryFilter{UserId: "user1", Type: models.EntryTypeBonus, Title: "Daily Check-in"})
	if len(entries) != 2 {
		t.Errorf("Expected 2 check-ins for user1, got %d", len(entries))
	}
}

func TestCreateCheckinEntry_ConcurrentWriters(t *testing.T) {
	service, err := NewService(context.Background(), models.DatabaseConfig{
		Path:         filepath.Join(t.TempDir(), "ledger.db"),
		MaxOpenConns: 8,
		MaxIdleConns: 4,
		PingTimeout:  5 * time.Second,
	})
	if err != nil {
		t.Fatalf("NewService failed: %v", err)
	}
	defer service.Close()

	ctx := context.Background()
	const workers = 16
	var wg sync.WaitGroup
	results := make(chan error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := service.CreateCheckinEntry(ctx, store.CheckinParams{
				UserId: "user1",
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

	entries, err := service.FindEntries(ctx, store.EntryFilter{UserId: "user1", Title: "Daily Check-in"})
	if err != nil {
		t.Fatalf("FindEntries failed: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("Expected 1 stored check-in, got %d", len(entries))
	}
}
