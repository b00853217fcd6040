package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type EntityRole string

const (
	EntityRoleCustomer EntityRole = "customer"
	EntityRoleSupplier EntityRole = "supplier"
)

func (r EntityRole) IsValid() bool {
	return r == EntityRoleCustomer || r == EntityRoleSupplier
}

type EntryKind string

const (
	EntryKindOpeningBalance EntryKind = "OPENING_BALANCE"
	EntryKindOrder          EntryKind = "ORDER"
	EntryKindPayment        EntryKind = "PAYMENT"
	EntryKindReturn         EntryKind = "RETURN"
	EntryKindRefund         EntryKind = "REFUND"
)

// StatementEntry is one raw event in an entity's history before the
// statement builder assigns debit/credit sides and a running balance.
type StatementEntry struct {
	Date      time.Time
	Kind      EntryKind
	Amount    decimal.Decimal
	Reference string
}

// StatementLine is a display row: the entry with its side resolved and the
// running balance attached.
type StatementLine struct {
	Date      time.Time
	Kind      EntryKind
	Debit     decimal.Decimal
	Credit    decimal.Decimal
	Balance   decimal.Decimal
	Reference string
}

// LedgerRow is a display row of a single account's ledger.
type LedgerRow struct {
	TransactionID     uuid.UUID
	TransactionNumber int64
	Date              time.Time
	Description       string
	Debit             decimal.Decimal
	Credit            decimal.Decimal
	Balance           decimal.Decimal
}
