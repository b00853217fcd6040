// Package pending derives an invoice's outstanding balance from its
// heterogeneous payment sources.
package pending

import (
	"github.com/shopspring/decimal"

	"github.com/tallyhq/tally-backend/internal/domain"
)

// Calculate returns the invoice's pending amount. Payments linked directly
// to the invoice win; if there are none, the owning entity's payments are
// summed; failing both, the legacy single payment-amount column applies.
// The result is clamped at zero, so an overpaid invoice reads as settled.
func Calculate(inv domain.Invoice) decimal.Decimal {
	paid := totalPaid(inv)
	pending := inv.Total.Sub(paid)
	if pending.IsNegative() {
		return decimal.Zero
	}
	return pending
}

func totalPaid(inv domain.Invoice) decimal.Decimal {
	if len(inv.Payments) > 0 {
		return sumApplied(inv.Payments)
	}
	if len(inv.EntityPayments) > 0 {
		return sumApplied(inv.EntityPayments)
	}
	if inv.LegacyPayment != nil {
		return *inv.LegacyPayment
	}
	return decimal.Zero
}

func sumApplied(payments []domain.Payment) decimal.Decimal {
	total := decimal.Zero
	for i := range payments {
		total = total.Add(payments[i].TotalApplied())
	}
	return total
}

// Payable filters to invoices that still have something outstanding.
func Payable(invoices []domain.Invoice) []domain.Invoice {
	var out []domain.Invoice
	for _, inv := range invoices {
		if Calculate(inv).IsPositive() {
			out = append(out, inv)
		}
	}
	return out
}
