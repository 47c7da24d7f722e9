package wallet

import (
	"fmt"

	"github.com/ducduc1118-design/recash/internal/models"

	"github.com/shopspring/decimal"
)

// ComputeWalletSummary aggregates a user's whole ledger history.
//
// Lifetime counts every earning and bonus entry whatever its status. Pending counts
// every entry whose status is pending, whatever its type. Balance is lifetime minus
// all withdrawals, so it can go negative. The result does not depend on input order.
func ComputeWalletSummary(entries []models.LedgerEntry) models.WalletSummary {
	lifetime := decimal.Zero
	pending := decimal.Zero
	withdrawals := decimal.Zero

	for _, entry := range entries {
		switch entry.Type {
		case models.EntryTypeEarning, models.EntryTypeBonus:
			lifetime = lifetime.Add(entry.Amount)
		case models.EntryTypeWithdrawal:
			withdrawals = withdrawals.Add(entry.Amount)
		}
		if entry.Status == models.EntryStatusPending {
			pending = pending.Add(entry.Amount)
		}
	}

	return models.WalletSummary{
		Balance:  lifetime.Sub(withdrawals),
		Pending:  pending,
		Lifetime: lifetime,
	}
}

// IsCents reports whether amount has no digits past the cent.
func IsCents(amount decimal.Decimal) bool {
	return amount.Equal(amount.Round(2))
}

// FormatCurrency renders an amount rounded half away from zero to cents, e.g. "$10.70" or "-$39.30".
func FormatCurrency(amount decimal.Decimal) string {
	rounded := amount.Round(2)
	if rounded.IsNegative() {
		return fmt.Sprintf("-$%s", rounded.Neg().StringFixed(2))
	}
	return fmt.Sprintf("$%s", rounded.StringFixed(2))
}

// View converts a summary to its presentation form.
func View(summary models.WalletSummary) models.WalletView {
	return models.WalletView{
		Balance:  FormatCurrency(summary.Balance),
		Pending:  FormatCurrency(summary.Pending),
		Lifetime: FormatCurrency(summary.Lifetime),
	}
}
