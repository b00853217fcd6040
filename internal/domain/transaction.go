package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type TransactionLine struct {
	AccountID uuid.UUID
	Debit     decimal.Decimal
	Credit    decimal.Decimal
}

type Transaction struct {
	ID          uuid.UUID
	TenantID    uuid.UUID
	Number      int64
	Date        time.Time
	Description string
	Lines       []TransactionLine
	CreatedAt   time.Time
}

// Balanced reports whether the transaction's debits equal its credits.
func (t *Transaction) Balanced() bool {
	debits := decimal.Zero
	credits := decimal.Zero
	for _, l := range t.Lines {
		debits = debits.Add(l.Debit)
		credits = credits.Add(l.Credit)
	}
	return debits.Equal(credits)
}

// AccountLine is a transaction line joined with its transaction header,
// the unit the ledger reconstructor walks for a single account.
type AccountLine struct {
	TransactionID     uuid.UUID
	TransactionNumber int64
	Date              time.Time
	Description       string
	Debit             decimal.Decimal
	Credit            decimal.Decimal
}
