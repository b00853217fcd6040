package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type InvoiceKind string

const (
	InvoiceKindOrder    InvoiceKind = "order"
	InvoiceKindPurchase InvoiceKind = "purchase"
)

// Invoice carries every source a pending balance can be derived from:
// payments linked directly to the invoice, the owning entity's payments as
// a fallback aggregate, and the legacy single payment-amount column still
// present on old rows.
type Invoice struct {
	ID       uuid.UUID
	TenantID uuid.UUID
	Kind     InvoiceKind
	Number   string
	EntityID uuid.UUID
	Date     time.Time
	Total    decimal.Decimal

	Payments       []Payment
	EntityPayments []Payment
	LegacyPayment  *decimal.Decimal
}

// BalanceSnapshot is an entity's position at a point in time. A negative
// pending is an overpayment held as usable credit.
type BalanceSnapshot struct {
	Pending          decimal.Decimal
	AvailableAdvance decimal.Decimal
}

func NewBalanceSnapshot(pending decimal.Decimal) BalanceSnapshot {
	advance := decimal.Zero
	if pending.IsNegative() {
		advance = pending.Neg()
	}
	return BalanceSnapshot{Pending: pending, AvailableAdvance: advance}
}
