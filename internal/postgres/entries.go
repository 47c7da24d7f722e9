package postgres

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

func (s *Service) CreateEntry(ctx context.Context, params store.CreateEntryParams) (*models.LedgerEntry, error) {
	if params.Amount.IsNegative() {
		return nil, fmt.Errorf("ledger amount cannot be negative, got %s", params.Amount)
	}

	entry, err := insertEntry(ctx, s.db, params, sql.NullString{})
	if err != nil {
		return nil, fmt.Errorf("failed to insert ledger entry: %w", err)
	}

	zap.L().Info("Ledger entry created",
		zap.String("entry_id", entry.Id),
		zap.String("user_id", entry.UserId),
		zap.String("type", string(entry.Type)),
		zap.String("amount", entry.Amount.String()))
	return entry, nil
}

// CreateCheckinEntry relies on idx_ledger_entries_checkin_day; the losing writer gets unique_violation.
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

func (s *Service) FindEntries(ctx context.Context, filter store.EntryFilter) ([]models.LedgerEntry, error) {
	if filter.UserId == "" {
		return nil, fmt.Errorf("user id is required to query ledger entries")
	}

	// LIMIT NULL is no limit
	limit := sql.NullInt64{Int64: int64(filter.Limit), Valid: filter.Limit > 0}

	rows, err := s.db.QueryContext(ctx, queryFindEntries,
		filter.UserId, string(filter.Type), filter.Title, string(filter.Status), limit)
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
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating ledger rows: %w", err)
	}
	return entries, nil
}

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
	var entryType, status string
	if err := row.Scan(&entry.Id, &entry.UserId, &entry.Title, &entry.Amount, &entryType, &status, &entry.Date); err != nil {
		return nil, fmt.Errorf("failed to scan ledger entry: %w", err)
	}
	entry.Type = models.EntryType(entryType)
	entry.Status = models.EntryStatus(status)
	return &entry, nil
}

// scanAmounts reads (type, status, amount) rows into entries for aggregation.
func scanAmounts(rows *sql.Rows) ([]models.LedgerEntry, error) {
	var entries []models.LedgerEntry
	for rows.Next() {
		var entryType, status string
		var amount decimal.Decimal
		if err := rows.Scan(&entryType, &status, &amount); err != nil {
			return nil, fmt.Errorf("failed to scan ledger amount: %w", err)
		}
		entries = append(entries, models.LedgerEntry{
			Type:   models.EntryType(entryType),
			Status: models.EntryStatus(status),
			Amount: amount,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating ledger amounts: %w", err)
	}
	return entries, nil
}
