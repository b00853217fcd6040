// Package ledger reconstructs chronological running balances: a single
// account's ledger from its transaction lines, and an entity statement
// merged from heterogeneous entry kinds.
package ledger

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/tallyhq/tally-backend/internal/domain"
)

// ComputeAccountLedger walks the account's lines in chronological order and
// attaches the running balance to each. Lines are sorted by (date,
// transaction number) so the result never depends on display order; callers
// may reverse the slice for presentation, the balances are fixed by the
// forward pass.
func ComputeAccountLedger(lines []domain.AccountLine, accountType domain.AccountType) []domain.LedgerRow {
	sorted := make([]domain.AccountLine, len(lines))
	copy(sorted, lines)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].Date.Equal(sorted[j].Date) {
			return sorted[i].Date.Before(sorted[j].Date)
		}
		return sorted[i].TransactionNumber < sorted[j].TransactionNumber
	})

	debitIncreases := accountType.DebitIncreases()

	rows := make([]domain.LedgerRow, 0, len(sorted))
	balance := decimal.Zero
	for _, l := range sorted {
		delta := l.Debit.Sub(l.Credit)
		if !debitIncreases {
			delta = l.Credit.Sub(l.Debit)
		}
		balance = balance.Add(delta)

		rows = append(rows, domain.LedgerRow{
			TransactionID:     l.TransactionID,
			TransactionNumber: l.TransactionNumber,
			Date:              l.Date,
			Description:       l.Description,
			Debit:             l.Debit,
			Credit:            l.Credit,
			Balance:           balance,
		})
	}
	return rows
}
