package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ducduc1118-design/recash/internal/models"
	"github.com/ducduc1118-design/recash/internal/store"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CreateEntry appends a ledger entry
func (s *Service) CreateEntry(ctx context.Context, params store.CreateEntryParams) (*models.LedgerEntry, error) {
	if params.Amount.IsNegative() {
		return nil, fmt.Errorf("ledger amount cannot be negative, got %s", params.Amount)
	}

	zap.L().Info("Creating ledger entry",
		zap.String("user_id", params.UserId),
		zap.String("type", string(params.Type)),
		zap.String("status", string(params.Status)),
		zap.String("title", params.Title),
		zap.String("amount", params.Amount.String()))

	entry, err := insertEntry(ctx, s.db, params, sql.NullString{})
	if err != nil {
		return nil, fmt.Errorf("failed to insert ledger entry: %w", err)
	}
	return entry, nil
}

// CreateCheckinEntry relies on idx_ledger_entries_checkin_day to reject a second
// check-in on the same day, so concurrent callers across processes see exactly one insert.
func (s *Service) CreateCheckinEntry(ctx context.Context, params store.CheckinParams) (*models.LedgerEntry, error) {
	entry, err := insertEntry(ctx, s.db, store.CreateEntryParams{
		UserId: params.UserId,
		Title:  params.Title,
		Amount: params.Amount,
		Type:   models.EntryTypeBonus,
		Status: models.EntryStatusCompleted,
		Date:   params.Date,
	}, sql.NullString{String: params.Day, Valid: true})
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: user %s on %s", store.ErrDuplicateCheckin, params.UserId, params.Day)
		}
		return nil, fmt.Errorf("failed to insert check-in entry: %w", err)
	}

	zap.L().Info("Check-in recorded",
		zap.String("user_id", params.UserId),
		zap.String("day", params.Day),
		zap.String("entry_id", entry.Id))
	return entry, nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertEntry(ctx context.Context, db execer, params store.CreateEntryParams, checkinDay sql.NullString) (*models.LedgerEntry, error) {
	date := params.Date
	if date.IsZero() {
		date = time.Now()
	}

	entry := &models.LedgerEntry{
		Id:     uuid.New().String(),
		UserId: params.UserId,
		Title:  params.Title,
		Amount: params.Amount,
		Type:   params.Type,
		Status: params.Status,
		Date:   date.UTC(),
	}

	_, err := db.ExecContext(ctx, queryInsertEntry,
		entry.Id, entry.UserId, entry.Title, entry.Amount.String(),
		string(entry.Type), string(entry.Status), checkinDay, entry.Date)
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// FindEntries returns the user's entries newest first
func (s *Service) FindEntries(ctx context.Context, filter store.EntryFilter) ([]models.LedgerEntry, error) {
	if filter.UserId == "" {
		return nil, fmt.Errorf("user id is required to query ledger entries")
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = -1
	}

	zap.L().Debug("Querying ledger entries",
		zap.String("user_id", filter.UserId),
		zap.String("type", string(filter.Type)),
		zap.String("title", filter.Title),
		zap.Int("limit", limit))

	rows, err := s.db.QueryContext(ctx, queryFindEntries,
		filter.UserId,
		string(filter.Type), string(filter.Type),
		filter.Title, filter.Title,
		string(filter.Status), string(filter.Status),
		limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query ledger entries: %w", err)
	}
	defer closeRows(rows)

	var entries []models.LedgerEntry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *entry)
	}

	// Check for errors during iteration
	if err := rows.Err(); err != nil {
		zap.L().Error("Error during ledger row iteration", zap.Error(err))
		return nil, fmt.Errorf("error iterating ledger rows: %w", err)
	}

	return entries, nil
}

// UpdateEntryStatus moves an entry to a new status. It is the only mutation allowed on an entry.
func (s *Service) UpdateEntryStatus(ctx context.Context, entryId string, status models.EntryStatus) error {
	if !status.Valid() {
		return fmt.Errorf("invalid entry status %q", status)
	}

	result, err := s.db.ExecContext(ctx, queryUpdateEntryStatus, string(status), entryId)
	if err != nil {
		return fmt.Errorf("failed to update entry status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%w: %s", store.ErrEntryNotFound, entryId)
	}

	zap.L().Info("Ledger entry status updated",
		zap.String("entry_id", entryId),
		zap.String("status", string(status)))
	return nil
}

func scanEntry(row rowScanner) (*models.LedgerEntry, error) {
	var entry models.LedgerEntry
	var amountStr, entryType, status string
	if err := row.Scan(&entry.Id, &entry.UserId, &entry.Title, &amountStr, &entryType, &status, &entry.Date); err != nil {
		return nil, fmt.Errorf("failed to scan ledger entry: %w", err)
	}

	amount, err := decimal.NewFromString(amountStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse amount '%s': %w", amountStr, err)
	}
	entry.Amount = amount
	entry.Type = models.EntryType(entryType)
	entry.Status = models.EntryStatus(status)
	return &entry, nil
}
