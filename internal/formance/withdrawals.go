package formance

import (
	"context"
	"fmt"
	"time"

	"github.com/ducduc1118-design/recash/internal/models"
	"github.com/ducduc1118-design/recash/internal/store"

	v3 "github.com/formancehq/formance-sdk-go/v3"
	"github.com/formancehq/formance-sdk-go/v3/pkg/models/operations"
	"github.com/formancehq/formance-sdk-go/v3/pkg/models/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CreateWithdrawal posts the withdrawal entry with the request fields as metadata.
// The ledger itself refuses to overdraw @users:{id}.
func (s *Service) CreateWithdrawal(ctx context.Context, params store.CreateWithdrawalParams) (*models.Withdrawal, error) {
	zap.L().Info("Processing withdrawal request in Formance",
		zap.String("user_id", params.UserId),
		zap.String("method", string(params.Method)),
		zap.String("amount", params.Amount.String()))

	entry := newEntry(store.CreateEntryParams{
		UserId: params.UserId,
		Title:  params.Method.EntryTitle(),
		Amount: params.Amount,
		Type:   models.EntryTypeWithdrawal,
		Status: models.EntryStatusPending,
		Date:   params.Date,
	})

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

	err := s.postEntry(ctx, entry, "withdrawal:"+withdrawal.Id, withdrawalMetadata(withdrawal))
	if err != nil {
		if isInsufficientFundError(err) {
			balance := s.accountBalance(ctx, userAccount(params.UserId))
			return nil, fmt.Errorf("%w: balance %s, requested %s", store.ErrInsufficientBalance, balance, params.Amount)
		}
		return nil, fmt.Errorf("error posting withdrawal: %w", err)
	}

	zap.L().Info("Withdrawal posted to Formance",
		zap.String("withdrawal_id", withdrawal.Id),
		zap.String("entry_id", entry.Id),
		zap.String("user_id", params.UserId))
	return withdrawal, nil
}

func (s *Service) GetWithdrawals(ctx context.Context, userId string) ([]models.Withdrawal, error) {
	return s.queryWithdrawals(ctx, map[string]string{"user_id": userId})
}

// ListWithdrawals filters on the withdrawal_status metadata kept in step by UpdateWithdrawalStatus
func (s *Service) ListWithdrawals(ctx context.Context, status models.WithdrawalStatus) ([]models.Withdrawal, error) {
	match := map[string]string{}
	if status != "" {
		match["withdrawal_status"] = string(status)
	}
	return s.queryWithdrawals(ctx, match)
}

func (s *Service) queryWithdrawals(ctx context.Context, match map[string]string) ([]models.Withdrawal, error) {
	match["record"] = "ledger_entry"
	match["type"] = string(models.EntryTypeWithdrawal)

	txs, err := s.listTransactions(ctx, metadataQuery(match))
	if err != nil {
		return nil, fmt.Errorf("failed to list withdrawals: %w", err)
	}

	var withdrawals []models.Withdrawal
	for _, tx := range txs {
		if tx.Metadata["withdrawal_id"] == "" {
			continue
		}
		w, err := transactionToWithdrawal(tx)
		if err != nil {
			zap.L().Warn("Skipping malformed withdrawal transaction", zap.String("tx_id", tx.ID.String()), zap.Error(err))
			continue
		}
		withdrawals = append(withdrawals, w)
	}
	return withdrawals, nil
}

// UpdateWithdrawalStatus rewrites the withdrawal and entry status metadata in one call.
func (s *Service) UpdateWithdrawalStatus(ctx context.Context, withdrawalId string, status models.WithdrawalStatus) (*models.Withdrawal, error) {
	entryStatus, err := status.EntryStatus()
	if err != nil {
		return nil, err
	}

	tx, err := s.findTransaction(ctx, "withdrawal_id", withdrawalId)
	if err != nil {
		return nil, fmt.Errorf("failed to find withdrawal %s: %w", withdrawalId, err)
	}
	if tx == nil {
		return nil, fmt.Errorf("%w: %s", store.ErrWithdrawalNotFound, withdrawalId)
	}

	withdrawal, err := transactionToWithdrawal(*tx)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	err = s.addTransactionMetadata(ctx, tx.ID, map[string]string{
		"withdrawal_status": string(status),
		"status":            string(entryStatus),
		"updated_at":        now.Format(time.RFC3339),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update withdrawal: %w", err)
	}

	zap.L().Info("Withdrawal status updated in Formance",
		zap.String("withdrawal_id", withdrawalId),
		zap.String("from", string(withdrawal.Status)),
		zap.String("to", string(status)))

	withdrawal.Status = status
	withdrawal.UpdatedAt = now
	return &withdrawal, nil
}

// accountBalance reads the current balance of an account, zero if unknown.
func (s *Service) accountBalance(ctx context.Context, address string) decimal.Decimal {
	resp, err := s.client.Ledger.V2.GetAccount(ctx, operations.V2GetAccountRequest{
		Ledger:  s.ledger,
		Address: address,
		Expand:  v3.Pointer("volumes"),
	})
	if err != nil {
		zap.L().Warn("Failed to get account volumes", zap.String("address", address), zap.Error(err))
		return decimal.Zero
	}
	return fromMinorUnits(volumeBalance(resp.V2AccountResponse.Data.Volumes))
}

// ---------- helpers ----------

func withdrawalMetadata(w *models.Withdrawal) map[string]string {
	return map[string]string{
		"withdrawal_id":     w.Id,
		"withdrawal_status": string(w.Status),
		"method":            string(w.Method),
		"details":           w.Details,
		"user_name":         w.UserName,
		"updated_at":        w.UpdatedAt.Format(time.RFC3339),
	}
}

func transactionToWithdrawal(tx shared.V2Transaction) (models.Withdrawal, error) {
	meta := tx.Metadata
	amount, err := decimal.NewFromString(meta["amount"])
	if err != nil {
		return models.Withdrawal{}, fmt.Errorf("failed to parse amount '%s': %w", meta["amount"], err)
	}

	updated := tx.Timestamp
	if t, err := time.Parse(time.RFC3339, meta["updated_at"]); err == nil {
		updated = t
	}

	return models.Withdrawal{
		Id:        meta["withdrawal_id"],
		UserId:    meta["user_id"],
		UserName:  meta["user_name"],
		Method:    models.WithdrawalMethod(meta["method"]),
		Details:   meta["details"],
		Amount:    amount,
		Status:    models.WithdrawalStatus(meta["withdrawal_status"]),
		EntryId:   meta["entry_id"],
		Date:      tx.Timestamp,
		UpdatedAt: updated,
	}, nil
}
