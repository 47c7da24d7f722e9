package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ducduc1118-design/recash/internal/models"
	"github.com/ducduc1118-design/recash/internal/store"
	"github.com/ducduc1118-design/recash/internal/wallet"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CreateWithdrawal checks the balance, appends the pending withdrawal entry and
// stores the request in one transaction.
func (s *Service) CreateWithdrawal(ctx context.Context, params store.CreateWithdrawalParams) (*models.Withdrawal, error) {
	zap.L().Info("Processing withdrawal request",
		zap.String("user_id", params.UserId),
		zap.String("method", string(params.Method)),
		zap.String("amount", params.Amount.String()))

	// Start database transaction for atomicity
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	balance, err := userBalance(ctx, tx, params.UserId)
	if err != nil {
		return nil, err
	}
	if balance.LessThan(params.Amount) {
		return nil, fmt.Errorf("%w: balance %s, requested %s", store.ErrInsufficientBalance, balance, params.Amount)
	}

	entry, err := insertEntry(ctx, tx, store.CreateEntryParams{
		UserId: params.UserId,
		Title:  params.Method.EntryTitle(),
		Amount: params.Amount,
		Type:   models.EntryTypeWithdrawal,
		Status: models.EntryStatusPending,
		Date:   params.Date,
	}, sql.NullString{})
	if err != nil {
		return nil, fmt.Errorf("failed to insert withdrawal entry: %w", err)
	}

	withdrawal := &models.Withdrawal{
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

	_, err = tx.ExecContext(ctx, queryInsertWithdrawal,
		withdrawal.Id, withdrawal.UserId, withdrawal.UserName, string(withdrawal.Method), withdrawal.Details,
		withdrawal.Amount.String(), string(withdrawal.Status), withdrawal.EntryId, withdrawal.Date, withdrawal.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert withdrawal: %w", err)
	}

	// Commit transaction
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	zap.L().Info("Withdrawal request recorded",
		zap.String("withdrawal_id", withdrawal.Id),
		zap.String("user_id", params.UserId),
		zap.String("old_balance", balance.String()),
		zap.String("new_balance", balance.Sub(params.Amount).String()))

	return withdrawal, nil
}

// userBalance recomputes the wallet balance from the ledger inside tx.
func userBalance(ctx context.Context, tx *sql.Tx, userId string) (decimal.Decimal, error) {
	rows, err := tx.QueryContext(ctx, queryGetUserEntryAmounts, userId)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to read ledger amounts: %w", err)
	}
	defer closeRows(rows)

	var entries []models.LedgerEntry
	for rows.Next() {
		var entryType, status, amountStr string
		if err := rows.Scan(&entryType, &status, &amountStr); err != nil {
			return decimal.Zero, fmt.Errorf("failed to scan ledger amount: %w", err)
		}
		amount, err := decimal.NewFromString(amountStr)
		if err != nil {
			return decimal.Zero, fmt.Errorf("failed to parse amount '%s': %w", amountStr, err)
		}
		entries = append(entries, models.LedgerEntry{
			Type:   models.EntryType(entryType),
			Status: models.EntryStatus(status),
			Amount: amount,
		})
	}
	if err := rows.Err(); err != nil {
		return decimal.Zero, fmt.Errorf("error iterating ledger amounts: %w", err)
	}

	return wallet.ComputeWalletSummary(entries).Balance, nil
}

func (s *Service) GetWithdrawals(ctx context.Context, userId string) ([]models.Withdrawal, error) {
	return s.queryWithdrawals(ctx, queryGetWithdrawals, userId)
}

func (s *Service) ListWithdrawals(ctx context.Context, status models.WithdrawalStatus) ([]models.Withdrawal, error) {
	zap.L().Debug("Listing withdrawals", zap.String("status", string(status)))
	return s.queryWithdrawals(ctx, queryListWithdrawals, string(status), string(status))
}

func (s *Service) queryWithdrawals(ctx context.Context, query string, args ...any) ([]models.Withdrawal, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query withdrawals: %w", err)
	}
	defer closeRows(rows)

	var withdrawals []models.Withdrawal
	for rows.Next() {
		w, err := scanWithdrawal(rows)
		if err != nil {
			return nil, err
		}
		withdrawals = append(withdrawals, *w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating withdrawal rows: %w", err)
	}

	return withdrawals, nil
}

// UpdateWithdrawalStatus settles a withdrawal and its ledger entry together.
func (s *Service) UpdateWithdrawalStatus(ctx context.Context, withdrawalId string, status models.WithdrawalStatus) (*models.Withdrawal, error) {
	entryStatus, err := status.EntryStatus()
	if err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	withdrawal, err := scanWithdrawal(tx.QueryRowContext(ctx, queryGetWithdrawalById, withdrawalId))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", store.ErrWithdrawalNotFound, withdrawalId)
		}
		return nil, err
	}

	now := time.Now().UTC()
	if _, err := tx.ExecContext(ctx, queryUpdateWithdrawalStatus, string(status), now, withdrawalId); err != nil {
		return nil, fmt.Errorf("failed to update withdrawal: %w", err)
	}
	if _, err := tx.ExecContext(ctx, queryUpdateEntryStatus, string(entryStatus), withdrawal.EntryId); err != nil {
		return nil, fmt.Errorf("failed to update withdrawal entry: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	zap.L().Info("Withdrawal status updated",
		zap.String("withdrawal_id", withdrawalId),
		zap.String("from", string(withdrawal.Status)),
		zap.String("to", string(status)))

	withdrawal.Status = status
	withdrawal.UpdatedAt = now
	return withdrawal, nil
}

func scanWithdrawal(row rowScanner) (*models.Withdrawal, error) {
	var w models.Withdrawal
	var method, status, amountStr string
	err := row.Scan(&w.Id, &w.UserId, &w.UserName, &method, &w.Details, &amountStr, &status, &w.EntryId, &w.Date, &w.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to scan withdrawal: %w", err)
	}

	w.Amount, err = decimal.NewFromString(amountStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse amount '%s': %w", amountStr, err)
	}
	w.Method = models.WithdrawalMethod(method)
	w.Status = models.WithdrawalStatus(status)
	return &w, nil
}
