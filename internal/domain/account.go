package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type AccountType string

const (
	AccountTypeAsset     AccountType = "ASSET"
	AccountTypeLiability AccountType = "LIABILITY"
	AccountTypeEquity    AccountType = "EQUITY"
	AccountTypeIncome    AccountType = "INCOME"
	AccountTypeExpense   AccountType = "EXPENSE"
)

func (t AccountType) IsValid() bool {
	switch t {
	case AccountTypeAsset, AccountTypeLiability, AccountTypeEquity, AccountTypeIncome, AccountTypeExpense:
		return true
	}
	return false
}

// DebitIncreases reports whether a debit raises this account's balance.
// Asset and expense accounts grow on the debit side; liability, equity
// and income accounts grow on the credit side.
func (t AccountType) DebitIncreases() bool {
	return t == AccountTypeAsset || t == AccountTypeExpense
}

// Account balances are derived from posted transactions; Balance is the
// cached value the reconciliation invariant checks against.
type Account struct {
	ID        uuid.UUID
	TenantID  uuid.UUID
	Name      string
	Code      string
	Type      AccountType
	Balance   decimal.Decimal
	CreatedAt time.Time
}
