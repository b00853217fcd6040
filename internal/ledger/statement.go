package ledger

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/tallyhq/tally-backend/internal/domain"
)

// kindRank is the stable tiebreak for entries sharing a date: charges come
// before settlements so a same-day payment never drives the balance
// negative ahead of the order it settles.
func kindRank(k domain.EntryKind) int {
	switch k {
	case domain.EntryKindOpeningBalance:
		return 0
	case domain.EntryKindOrder:
		return 1
	case domain.EntryKindPayment:
		return 2
	case domain.EntryKindReturn:
		return 3
	case domain.EntryKindRefund:
		return 4
	default:
		return 5
	}
}

// charges reports whether the entry increases what the entity owes.
//
// For a customer the receivable grows on orders (debit side); payments,
// returns and refunds shrink it. For a supplier the payable grows on their
// invoices (entered as ORDER) and shrinks on our payments. The two roles
// are mirror images on the debit/credit columns but the running balance
// arithmetic is identical: charge minus settlement.
func charges(k domain.EntryKind) bool {
	return k == domain.EntryKindOrder || k == domain.EntryKindOpeningBalance
}

// BuildStatement merges an entity's history into one chronological ledger
// with a running balance, then presents it most-recent-first. A positive
// balance is the amount still owed; a negative one is credit held in
// advance.
func BuildStatement(entries []domain.StatementEntry, role domain.EntityRole) ([]domain.StatementLine, error) {
	if !role.IsValid() {
		return nil, fmt.Errorf("BuildStatement: %q: %w", role, domain.ErrInvalidEntityRole)
	}

	sorted := make([]domain.StatementEntry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].Date.Equal(sorted[j].Date) {
			return sorted[i].Date.Before(sorted[j].Date)
		}
		ri, rj := kindRank(sorted[i].Kind), kindRank(sorted[j].Kind)
		if ri != rj {
			return ri < rj
		}
		return sorted[i].Reference < sorted[j].Reference
	})

	lines := make([]domain.StatementLine, 0, len(sorted))
	balance := decimal.Zero
	for _, e := range sorted {
		line := domain.StatementLine{
			Date:      e.Date,
			Kind:      e.Kind,
			Reference: e.Reference,
		}
		if charges(e.Kind) {
			balance = balance.Add(e.Amount)
			if role == domain.EntityRoleCustomer {
				line.Debit = e.Amount
			} else {
				line.Credit = e.Amount
			}
		} else {
			balance = balance.Sub(e.Amount)
			if role == domain.EntityRoleCustomer {
				line.Credit = e.Amount
			} else {
				line.Debit = e.Amount
			}
		}
		line.Balance = balance
		lines = append(lines, line)
	}

	// most-recent-first for display; balances were fixed by the forward pass
	for i, j := 0, len(lines)-1; i < j; i, j = i+1, j-1 {
		lines[i], lines[j] = lines[j], lines[i]
	}
	return lines, nil
}

// BalanceLabel renders the closing balance for display. The economic
// meaning differs by role: a customer's negative balance is credit they can
// spend with us, a supplier's is credit we hold with them.
func BalanceLabel(balance decimal.Decimal) string {
	if balance.IsNegative() {
		return fmt.Sprintf("Advance: %s", balance.Neg().StringFixed(2))
	}
	return fmt.Sprintf("Owes: %s", balance.StringFixed(2))
}
