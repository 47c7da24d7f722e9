package formance

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sort"

	"github.com/ducduc1118-design/recash/internal/models"
	"github.com/ducduc1118-design/recash/internal/store"

	v3 "github.com/formancehq/formance-sdk-go/v3"
	"github.com/formancehq/formance-sdk-go/v3/pkg/models/operations"
	"github.com/formancehq/formance-sdk-go/v3/pkg/models/sdkerrors"
	"github.com/formancehq/formance-sdk-go/v3/pkg/models/shared"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Compile-time check: *Service must satisfy store.LedgerStore.
var _ store.LedgerStore = (*Service)(nil)

const (
	// Wallet amounts are kept in cents.
	ledgerAsset     = "USD/2"
	ledgerPrecision = 2

	pageSize = 100
)

// Service implements store.LedgerStore backed by a Formance Stack ledger.
//
// Every ledger entry is one Formance transaction. Earnings and bonuses move
// funds from @world to @users:{id}, withdrawals move them from @users:{id} to
// @payouts:{method}, so the user account balance always equals the wallet
// balance. Entry fields live in transaction metadata; status changes only
// rewrite metadata.
type Service struct {
	client *v3.Formance
	ledger string
}

// NewService creates a Formance-backed LedgerStore.
// It connects to the stack, creates the ledger if it doesn't already exist, and returns ready to use.
func NewService(ctx context.Context, cfg models.FormanceConfig) (*Service, error) {
	if cfg.StackURL == "" || cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, fmt.Errorf("formance config requires StackURL, ClientID, and ClientSecret")
	}
	if cfg.LedgerName == "" {
		cfg.LedgerName = "recash-rewards"
	}

	zap.L().Info("Connecting to Formance Stack",
		zap.String("stack_url", cfg.StackURL),
		zap.String("ledger", cfg.LedgerName))

	client := v3.New(
		v3.WithServerURL(cfg.StackURL),
		v3.WithSecurity(shared.Security{
			ClientID:     v3.Pointer(cfg.ClientID),
			ClientSecret: v3.Pointer(cfg.ClientSecret),
		}),
	)

	svc := &Service{client: client, ledger: cfg.LedgerName}

	if err := svc.ensureLedger(ctx); err != nil {
		return nil, fmt.Errorf("failed to ensure ledger exists: %w", err)
	}

	zap.L().Info("Formance service initialized", zap.String("ledger", cfg.LedgerName))
	return svc, nil
}

// ensureLedger creates the ledger if it does not already exist.
func (s *Service) ensureLedger(ctx context.Context) error {
	_, err := s.client.Ledger.V2.CreateLedger(ctx, operations.V2CreateLedgerRequest{
		Ledger: s.ledger,
		V2CreateLedgerRequest: shared.V2CreateLedgerRequest{
			Metadata: map[string]string{
				"application": "recash",
			},
		},
	})
	if err != nil {
		var apiErr *sdkerrors.V2ErrorResponse
		if errors.As(err, &apiErr) && apiErr.ErrorCode == shared.V2ErrorsEnumLedgerAlreadyExists {
			zap.L().Info("Ledger already exists", zap.String("ledger", s.ledger))
			return nil
		}
		return err
	}
	zap.L().Info("Ledger created", zap.String("ledger", s.ledger))
	return nil
}

// Close is a no-op for the Formance backend (HTTP client needs no teardown).
func (s *Service) Close() {}

// listTransactions follows the cursor until every transaction matching query is read.
func (s *Service) listTransactions(ctx context.Context, query map[string]any) ([]shared.V2Transaction, error) {
	var all []shared.V2Transaction
	var cursor *string
	for {
		resp, err := s.client.Ledger.V2.ListTransactions(ctx, operations.V2ListTransactionsRequest{
			Ledger:      s.ledger,
			PageSize:    ptrInt64(pageSize),
			Cursor:      cursor,
			RequestBody: query,
		})
		if err != nil {
			return nil, err
		}
		page := resp.V2TransactionsCursorResponse.Cursor
		all = append(all, page.Data...)
		if !page.HasMore || page.Next == nil {
			return all, nil
		}
		cursor = page.Next
	}
}

// findTransaction returns the single transaction carrying metadata key=value, or nil.
func (s *Service) findTransaction(ctx context.Context, key, value string) (*shared.V2Transaction, error) {
	resp, err := s.client.Ledger.V2.ListTransactions(ctx, operations.V2ListTransactionsRequest{
		Ledger:      s.ledger,
		PageSize:    ptrInt64(1),
		RequestBody: metadataQuery(map[string]string{key: value}),
	})
	if err != nil {
		return nil, err
	}
	if len(resp.V2TransactionsCursorResponse.Cursor.Data) == 0 {
		return nil, nil
	}
	tx := resp.V2TransactionsCursorResponse.Cursor.Data[0]
	return &tx, nil
}

func (s *Service) addTransactionMetadata(ctx context.Context, id *big.Int, meta map[string]string) error {
	_, err := s.client.Ledger.V2.AddMetadataOnTransaction(ctx, operations.V2AddMetadataOnTransactionRequest{
		Ledger:      s.ledger,
		ID:          id,
		RequestBody: meta,
	})
	return err
}

// ---------- helpers ----------

// metadataQuery builds a Formance filter matching every metadata pair.
// Keys are sorted so the request body is stable.
func metadataQuery(pairs map[string]string) map[string]any {
	keys := make([]string, 0, len(pairs))
	for k := range pairs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	clauses := make([]any, 0, len(keys))
	for _, k := range keys {
		clauses = append(clauses, map[string]any{
			"$match": map[string]any{"metadata[" + k + "]": pairs[k]},
		})
	}
	if len(clauses) == 1 {
		return clauses[0].(map[string]any)
	}
	return map[string]any{"$and": clauses}
}

// toMinorUnits renders an amount in cents as Numscript expects it.
func toMinorUnits(amount decimal.Decimal) string {
	return amount.Round(ledgerPrecision).Shift(ledgerPrecision).BigInt().String()
}

// fromMinorUnits converts a cent amount back to a decimal.
func fromMinorUnits(raw *big.Int) decimal.Decimal {
	if raw == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(raw, -ledgerPrecision)
}

// volumeBalance extracts the balance for the ledger asset from account volumes.
func volumeBalance(vols map[string]shared.V2Volume) *big.Int {
	vol, ok := vols[ledgerAsset]
	if !ok {
		return nil
	}
	if vol.Balance != nil {
		return vol.Balance
	}
	if vol.Input == nil {
		return nil
	}
	result := new(big.Int).Set(vol.Input)
	if vol.Output != nil {
		result.Sub(result, vol.Output)
	}
	return result
}

// isConflictError checks whether a Formance SDK error is a CONFLICT (duplicate reference).
func isConflictError(err error) bool {
	var apiErr *sdkerrors.V2ErrorResponse
	return errors.As(err, &apiErr) && apiErr.ErrorCode == shared.V2ErrorsEnumConflict
}

// isNotFoundError checks whether a Formance SDK error is NOT_FOUND.
func isNotFoundError(err error) bool {
	var apiErr *sdkerrors.V2ErrorResponse
	return errors.As(err, &apiErr) && apiErr.ErrorCode == shared.V2ErrorsEnumNotFound
}

// isInsufficientFundError checks whether a Formance SDK error is INSUFFICIENT_FUND.
func isInsufficientFundError(err error) bool {
	var apiErr *sdkerrors.V2ErrorResponse
	return errors.As(err, &apiErr) && apiErr.ErrorCode == shared.V2ErrorsEnumInsufficientFund
}

func strPtr(s string) *string { return &s }
func ptrInt64(v int64) *int64 { return &v }
