package formance

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/ducduc1118-design/recash/internal/models"
	"github.com/ducduc1118-design/recash/internal/store"

	"github.com/formancehq/formance-sdk-go/v3/pkg/models/operations"
	"github.com/formancehq/formance-sdk-go/v3/pkg/models/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ---------------------------------------------------------------------------
// Numscript templates. Immutable facts are set inside the script; fields that
// may change later (status) are sent as request metadata.
// ---------------------------------------------------------------------------

const numscriptCredit = `vars {
  asset $asset
  number $amount
  account $user_id
  string $entry_type
}

send [$asset $amount] (
  source = @world
  destination = @users:$user_id
)

set_tx_meta("record", "ledger_entry")
set_tx_meta("entry_type", $entry_type)
`

// numscriptWithdrawal has no overdraft on the user account, so the ledger
// rejects a withdrawal above the balance with INSUFFICIENT_FUND.
const numscriptWithdrawal = `vars {
  asset $asset
  number $amount
  account $user_id
  account $method
}

send [$asset $amount] (
  source = @users:$user_id
  destination = @payouts:$method
)

set_tx_meta("record", "ledger_entry")
set_tx_meta("entry_type", "withdrawal")
`

// CreateEntry posts one ledger transaction for the entry.
func (s *Service) CreateEntry(ctx context.Context, params store.CreateEntryParams) (*models.LedgerEntry, error) {
	if params.Amount.IsNegative() {
		return nil, fmt.Errorf("ledger amount cannot be negative, got %s", params.Amount)
	}

	entry := newEntry(params)
	if err := s.postEntry(ctx, entry, "entry:"+entry.Id, nil); err != nil {
		return nil, fmt.Errorf("error posting ledger entry: %w", err)
	}

	zap.L().Info("Ledger entry posted to Formance",
		zap.String("entry_id", entry.Id),
		zap.String("user_id", entry.UserId),
		zap.String("type", string(entry.Type)),
		zap.String("amount", entry.Amount.String()))
	return entry, nil
}

// CreateCheckinEntry uses the transaction reference as the per-day uniqueness key.
func (s *Service) CreateCheckinEntry(ctx context.Context, params store.CheckinParams) (*models.LedgerEntry, error) {
	entry := newEntry(store.CreateEntryParams{
		UserId: params.UserId,
		Title:  params.Title,
		Amount: params.Amount,
		Type:   models.EntryTypeBonus,
		Status: models.EntryStatusCompleted,
		Date:   params.Date,
	})

	ref := checkinReference(params.UserId, params.Title, params.Day)
	err := s.postEntry(ctx, entry, ref, map[string]string{"checkin_day": params.Day})
	if err != nil {
		if isConflictError(err) {
			return nil, fmt.Errorf("%w: user %s on %s", store.ErrDuplicateCheckin, params.UserId, params.Day)
		}
		return nil, fmt.Errorf("error posting check-in: %w", err)
	}

	zap.L().Info("Check-in posted to Formance",
		zap.String("user_id", params.UserId),
		zap.String("day", params.Day),
		zap.String("reference", ref))
	return entry, nil
}

// postEntry sends the Numscript matching the entry type.
func (s *Service) postEntry(ctx context.Context, entry *models.LedgerEntry, reference string, extra map[string]string) error {
	meta := entryMetadata(entry)
	for k, v := range extra {
		meta[k] = v
	}

	script := &shared.V2PostTransactionScript{
		Plain: numscriptCredit,
		Vars: map[string]string{
			"asset":      ledgerAsset,
			"amount":     toMinorUnits(entry.Amount),
			"user_id":    entry.UserId,
			"entry_type": string(entry.Type),
		},
	}
	if entry.Type == models.EntryTypeWithdrawal {
		method := extra["method"]
		if method == "" {
			method = "manual"
		}
		script = &shared.V2PostTransactionScript{
			Plain: numscriptWithdrawal,
			Vars: map[string]string{
				"asset":   ledgerAsset,
				"amount":  toMinorUnits(entry.Amount),
				"user_id": entry.UserId,
				"method":  method,
			},
		}
	}

	_, err := s.client.Ledger.V2.CreateTransaction(ctx, operations.V2CreateTransactionRequest{
		Ledger: s.ledger,
		V2PostTransaction: shared.V2PostTransaction{
			Reference: strPtr(reference),
			Timestamp: &entry.Date,
			Script:    script,
			Metadata:  meta,
		},
	})
	return err
}

// FindEntries lists the user's entry transactions and orders them newest first.
func (s *Service) FindEntries(ctx context.Context, filter store.EntryFilter) ([]models.LedgerEntry, error) {
	if filter.UserId == "" {
		return nil, fmt.Errorf("user id is required to query ledger entries")
	}

	txs, err := s.listTransactions(ctx, metadataQuery(entryFilterMetadata(filter)))
	if err != nil {
		return nil, fmt.Errorf("failed to list ledger transactions: %w", err)
	}

	entries := make([]models.LedgerEntry, 0, len(txs))
	for _, tx := range txs {
		entry, err := transactionToEntry(tx)
		if err != nil {
			zap.L().Warn("Skipping malformed ledger transaction", zap.String("tx_id", tx.ID.String()), zap.Error(err))
			continue
		}
		if filter.Matches(entry) {
			entries = append(entries, entry)
		}
	}

	sortNewestFirst(entries)
	if filter.Limit > 0 && len(entries) > filter.Limit {
		entries = entries[:filter.Limit]
	}
	return entries, nil
}

// UpdateEntryStatus rewrites the status metadata; postings are never touched.
func (s *Service) UpdateEntryStatus(ctx context.Context, entryId string, status models.EntryStatus) error {
	if !status.Valid() {
		return fmt.Errorf("invalid entry status %q", status)
	}

	tx, err := s.findTransaction(ctx, "entry_id", entryId)
	if err != nil {
		return fmt.Errorf("failed to find entry %s: %w", entryId, err)
	}
	if tx == nil {
		return fmt.Errorf("%w: %s", store.ErrEntryNotFound, entryId)
	}

	if err := s.addTransactionMetadata(ctx, tx.ID, map[string]string{"status": string(status)}); err != nil {
		return fmt.Errorf("failed to update entry status: %w", err)
	}

	zap.L().Info("Ledger entry status updated in Formance",
		zap.String("entry_id", entryId),
		zap.String("tx_id", tx.ID.String()),
		zap.String("status", string(status)))
	return nil
}

// ---------- helpers ----------

func newEntry(params store.CreateEntryParams) *models.LedgerEntry {
	date := params.Date
	if date.IsZero() {
		date = time.Now()
	}
	return &models.LedgerEntry{
		Id:     uuid.New().String(),
		UserId: params.UserId,
		Title:  params.Title,
		Amount: params.Amount,
		Type:   params.Type,
		Status: params.Status,
		Date:   date.UTC(),
	}
}

func checkinReference(userId, title, day string) string {
	return "checkin:" + userId + ":" + title + ":" + day
}

func entryMetadata(entry *models.LedgerEntry) map[string]string {
	return map[string]string{
		"entry_id": entry.Id,
		"user_id":  entry.UserId,
		"title":    entry.Title,
		"type":     string(entry.Type),
		"status":   string(entry.Status),
		"amount":   entry.Amount.String(),
	}
}

// entryFilterMetadata narrows the ledger query server side; the limit is applied after sorting.
func entryFilterMetadata(filter store.EntryFilter) map[string]string {
	pairs := map[string]string{
		"record":  "ledger_entry",
		"user_id": filter.UserId,
	}
	if filter.Type != "" {
		pairs["type"] = string(filter.Type)
	}
	if filter.Title != "" {
		pairs["title"] = filter.Title
	}
	if filter.Status != "" {
		pairs["status"] = string(filter.Status)
	}
	return pairs
}

func transactionToEntry(tx shared.V2Transaction) (models.LedgerEntry, error) {
	meta := tx.Metadata
	if meta["entry_id"] == "" {
		return models.LedgerEntry{}, fmt.Errorf("missing entry_id metadata")
	}

	amount, err := decimal.NewFromString(meta["amount"])
	if err != nil {
		// fall back to the posted amount
		amount = decimal.Zero
		for _, p := range tx.Postings {
			if p.Asset == ledgerAsset {
				amount = fromMinorUnits(p.Amount)
			}
		}
	}

	entry := models.LedgerEntry{
		Id:     meta["entry_id"],
		UserId: meta["user_id"],
		Title:  meta["title"],
		Amount: amount,
		Type:   models.EntryType(meta["type"]),
		Status: models.EntryStatus(meta["status"]),
		Date:   tx.Timestamp,
	}
	if !entry.Type.Valid() || !entry.Status.Valid() {
		return models.LedgerEntry{}, fmt.Errorf("invalid type/status %q/%q", entry.Type, entry.Status)
	}
	return entry, nil
}

func sortNewestFirst(entries []models.LedgerEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Date.After(entries[j].Date)
	})
}
