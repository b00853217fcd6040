package ledger

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tallyhq/tally-backend/internal/domain"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func day(d int) time.Time {
	return time.Date(2026, 1, d, 0, 0, 0, 0, time.UTC)
}

func line(num int64, date time.Time, debit, credit string) domain.AccountLine {
	return domain.AccountLine{
		TransactionID:     uuid.New(),
		TransactionNumber: num,
		Date:              date,
		Debit:             dec(debit),
		Credit:            dec(credit),
	}
}

func TestComputeAccountLedger_AssetRunningBalance(t *testing.T) {
	lines := []domain.AccountLine{
		line(1, day(1), "1000", "0"),
		line(2, day(2), "0", "400"),
		line(3, day(3), "250", "0"),
	}

	rows := ComputeAccountLedger(lines, domain.AccountTypeAsset)
	require.Len(t, rows, 3)
	assert.True(t, rows[0].Balance.Equal(dec("1000")))
	assert.True(t, rows[1].Balance.Equal(dec("600")))
	assert.True(t, rows[2].Balance.Equal(dec("850")))
}

func TestComputeAccountLedger_LiabilityInvertsDirection(t *testing.T) {
	lines := []domain.AccountLine{
		line(1, day(1), "0", "500"),
		line(2, day(2), "200", "0"),
	}

	rows := ComputeAccountLedger(lines, domain.AccountTypeLiability)
	require.Len(t, rows, 2)
	assert.True(t, rows[0].Balance.Equal(dec("500")))
	assert.True(t, rows[1].Balance.Equal(dec("300")))
}

func TestComputeAccountLedger_InputOrderIrrelevant(t *testing.T) {
	a := line(1, day(1), "100", "0")
	b := line(2, day(1), "0", "30")
	c := line(3, day(2), "50", "0")

	forward := ComputeAccountLedger([]domain.AccountLine{a, b, c}, domain.AccountTypeAsset)
	shuffled := ComputeAccountLedger([]domain.AccountLine{c, a, b}, domain.AccountTypeAsset)

	require.Len(t, shuffled, 3)
	for i := range forward {
		assert.Equal(t, forward[i].TransactionNumber, shuffled[i].TransactionNumber)
		assert.True(t, forward[i].Balance.Equal(shuffled[i].Balance))
	}
}

func TestComputeAccountLedger_SameDayTiebreakByNumber(t *testing.T) {
	lines := []domain.AccountLine{
		line(7, day(1), "0", "20"),
		line(3, day(1), "100", "0"),
	}

	rows := ComputeAccountLedger(lines, domain.AccountTypeAsset)
	require.Len(t, rows, 2)
	assert.Equal(t, int64(3), rows[0].TransactionNumber)
	assert.True(t, rows[0].Balance.Equal(dec("100")))
	assert.True(t, rows[1].Balance.Equal(dec("80")))
}

func TestComputeAccountLedger_Empty(t *testing.T) {
	rows := ComputeAccountLedger(nil, domain.AccountTypeExpense)
	assert.Empty(t, rows)
}

func TestComputeAccountLedger_FinalBalanceMatchesSum(t *testing.T) {
	// The last row's balance is the reconciliation figure compared against
	// the cached account balance.
	lines := []domain.AccountLine{
		line(1, day(1), "500", "0"),
		line(2, day(2), "0", "125.50"),
		line(3, day(3), "0", "74.50"),
	}

	rows := ComputeAccountLedger(lines, domain.AccountTypeAsset)
	require.Len(t, rows, 3)
	assert.True(t, rows[len(rows)-1].Balance.Equal(dec("300")))
}
