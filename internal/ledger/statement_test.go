package ledger

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tallyhq/tally-backend/internal/domain"
)

func entry(kind domain.EntryKind, date time.Time, amount, ref string) domain.StatementEntry {
	return domain.StatementEntry{
		Date:      date,
		Kind:      kind,
		Amount:    dec(amount),
		Reference: ref,
	}
}

func TestBuildStatement_CustomerColumnsAndBalance(t *testing.T) {
	entries := []domain.StatementEntry{
		entry(domain.EntryKindOrder, day(1), "1000", "INV-1"),
		entry(domain.EntryKindPayment, day(2), "400", "PAY-1"),
		entry(domain.EntryKindReturn, day(3), "100", "RET-1"),
	}

	lines, err := BuildStatement(entries, domain.EntityRoleCustomer)
	require.NoError(t, err)
	require.Len(t, lines, 3)

	// most-recent-first: index 0 is the return
	assert.Equal(t, domain.EntryKindReturn, lines[0].Kind)
	assert.True(t, lines[0].Balance.Equal(dec("500")))
	assert.True(t, lines[0].Debit.IsZero())
	assert.True(t, lines[0].Credit.Equal(dec("100")))

	assert.Equal(t, domain.EntryKindPayment, lines[1].Kind)
	assert.True(t, lines[1].Balance.Equal(dec("600")))

	assert.Equal(t, domain.EntryKindOrder, lines[2].Kind)
	assert.True(t, lines[2].Debit.Equal(dec("1000")))
	assert.True(t, lines[2].Balance.Equal(dec("1000")))
}

func TestBuildStatement_SupplierMirrorsColumns(t *testing.T) {
	entries := []domain.StatementEntry{
		entry(domain.EntryKindOrder, day(1), "800", "PINV-1"),
		entry(domain.EntryKindPayment, day(2), "300", "PAY-1"),
	}

	lines, err := BuildStatement(entries, domain.EntityRoleSupplier)
	require.NoError(t, err)
	require.Len(t, lines, 2)

	// supplier invoice sits on the credit column, our payment on debit
	assert.True(t, lines[1].Credit.Equal(dec("800")))
	assert.True(t, lines[1].Debit.IsZero())
	assert.True(t, lines[0].Debit.Equal(dec("300")))

	// balance arithmetic is the same for both roles
	assert.True(t, lines[0].Balance.Equal(dec("500")))
}

func TestBuildStatement_OpeningBalanceFirst(t *testing.T) {
	entries := []domain.StatementEntry{
		entry(domain.EntryKindPayment, day(1), "50", "PAY-1"),
		entry(domain.EntryKindOpeningBalance, day(1), "200", "opening-balance"),
	}

	lines, err := BuildStatement(entries, domain.EntityRoleCustomer)
	require.NoError(t, err)
	require.Len(t, lines, 2)

	// same date: the opening balance ranks ahead of the payment, so after
	// reversal it is the last line
	assert.Equal(t, domain.EntryKindOpeningBalance, lines[1].Kind)
	assert.True(t, lines[1].Balance.Equal(dec("200")))
	assert.True(t, lines[0].Balance.Equal(dec("150")))
}

func TestBuildStatement_SameDayOrderBeforePayment(t *testing.T) {
	entries := []domain.StatementEntry{
		entry(domain.EntryKindPayment, day(5), "100", "PAY-1"),
		entry(domain.EntryKindOrder, day(5), "100", "INV-1"),
	}

	lines, err := BuildStatement(entries, domain.EntityRoleCustomer)
	require.NoError(t, err)
	require.Len(t, lines, 2)

	// the payment never drives the balance negative ahead of its order
	assert.Equal(t, domain.EntryKindOrder, lines[1].Kind)
	assert.True(t, lines[1].Balance.Equal(dec("100")))
	assert.True(t, lines[0].Balance.IsZero())
}

func TestBuildStatement_OverpaymentGoesNegative(t *testing.T) {
	entries := []domain.StatementEntry{
		entry(domain.EntryKindOrder, day(1), "100", "INV-1"),
		entry(domain.EntryKindPayment, day(2), "250", "PAY-1"),
	}

	lines, err := BuildStatement(entries, domain.EntityRoleCustomer)
	require.NoError(t, err)
	assert.True(t, lines[0].Balance.Equal(dec("-150")))
}

func TestBuildStatement_RefundSettlesLikeAPayment(t *testing.T) {
	entries := []domain.StatementEntry{
		entry(domain.EntryKindOrder, day(1), "100", "INV-1"),
		entry(domain.EntryKindPayment, day(2), "100", "PAY-1"),
		entry(domain.EntryKindRefund, day(3), "50", "REF-1"),
	}

	// refunds sit on the settlement side with payments and returns
	lines, err := BuildStatement(entries, domain.EntityRoleCustomer)
	require.NoError(t, err)
	assert.True(t, lines[0].Balance.Equal(dec("-50")), "balance = %s", lines[0].Balance)
	assert.True(t, lines[0].Credit.Equal(dec("50")))
	assert.True(t, lines[0].Debit.IsZero())
}

func TestBuildStatement_InvalidRole(t *testing.T) {
	_, err := BuildStatement(nil, domain.EntityRole("vendor"))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidEntityRole)
}

func TestBuildStatement_Empty(t *testing.T) {
	lines, err := BuildStatement(nil, domain.EntityRoleCustomer)
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestBalanceLabel(t *testing.T) {
	assert.Equal(t, "Owes: 150.00", BalanceLabel(dec("150")))
	assert.Equal(t, "Advance: 42.50", BalanceLabel(dec("-42.5")))
	assert.Equal(t, "Owes: 0.00", BalanceLabel(decimal.Zero))
}
