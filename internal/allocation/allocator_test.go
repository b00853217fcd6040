package allocation

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

func customerRequest(selections []Selection, advance decimal.Decimal) Request {
	accountID := uuid.New()
	return Request{
		TenantID:    uuid.New(),
		EntityID:    uuid.New(),
		Role:        domain.EntityRoleCustomer,
		Date:        time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		Selections:  selections,
		AdvanceUsed: advance,
		AccountID:   &accountID,
	}
}

func TestAllocate_ProportionalAdvanceSplit(t *testing.T) {
	invA := uuid.New()
	invB := uuid.New()
	req := customerRequest([]Selection{
		{InvoiceID: invA, Pending: dec("200"), Requested: dec("200")},
		{InvoiceID: invB, Pending: dec("300"), Requested: dec("300")},
	}, dec("100"))

	payments, err := Allocate(req)
	require.NoError(t, err)
	require.Len(t, payments, 2)

	// 200/500 and 300/500 of the 100 advance.
	assert.True(t, payments[0].AdvanceAmountUsed.Equal(dec("40")), "got %s", payments[0].AdvanceAmountUsed)
	assert.True(t, payments[1].AdvanceAmountUsed.Equal(dec("60")), "got %s", payments[1].AdvanceAmountUsed)
	assert.True(t, payments[0].Amount.Equal(dec("160")), "got %s", payments[0].Amount)
	assert.True(t, payments[1].Amount.Equal(dec("240")), "got %s", payments[1].Amount)

	assert.True(t, payments[0].UseAdvanceBalance)
	assert.Equal(t, domain.PaymentTypeCustomer, payments[0].Type)
	require.NotNil(t, payments[0].OrderID)
	assert.Equal(t, invA, *payments[0].OrderID)
	assert.Nil(t, payments[0].SupplierID)
}

func TestAllocate_SharesNeverExceedAdvance(t *testing.T) {
	// Thirds force rounding; distributed total must still be <= advance.
	req := customerRequest([]Selection{
		{InvoiceID: uuid.New(), Pending: dec("100"), Requested: dec("100")},
		{InvoiceID: uuid.New(), Pending: dec("100"), Requested: dec("100")},
		{InvoiceID: uuid.New(), Pending: dec("100"), Requested: dec("100")},
	}, dec("10"))

	payments, err := Allocate(req)
	require.NoError(t, err)

	total := decimal.Zero
	for _, p := range payments {
		assert.False(t, p.AdvanceAmountUsed.IsNegative())
		total = total.Add(p.AdvanceAmountUsed)
	}
	assert.True(t, total.LessThanOrEqual(dec("10")), "distributed %s", total)
}

func TestAllocate_ShareCappedAtRequested(t *testing.T) {
	// First invoice only requests 10 of its 900 pending, so its
	// proportional share (90) is capped and the cash portion stays zero
	// or positive.
	req := customerRequest([]Selection{
		{InvoiceID: uuid.New(), Pending: dec("900"), Requested: dec("10")},
		{InvoiceID: uuid.New(), Pending: dec("100"), Requested: dec("100")},
	}, dec("100"))

	payments, err := Allocate(req)
	require.NoError(t, err)

	assert.True(t, payments[0].AdvanceAmountUsed.Equal(dec("10")), "got %s", payments[0].AdvanceAmountUsed)
	assert.True(t, payments[0].Amount.IsZero())
	assert.False(t, payments[1].Amount.IsNegative())
}

func TestAllocate_Deterministic(t *testing.T) {
	selections := []Selection{
		{InvoiceID: uuid.New(), Pending: dec("123.45"), Requested: dec("123.45")},
		{InvoiceID: uuid.New(), Pending: dec("678.90"), Requested: dec("500")},
	}
	req := customerRequest(selections, dec("77.77"))

	first, err := Allocate(req)
	require.NoError(t, err)
	second, err := Allocate(req)
	require.NoError(t, err)

	require.Len(t, second, len(first))
	for i := range first {
		assert.True(t, first[i].Amount.Equal(second[i].Amount))
		assert.True(t, first[i].AdvanceAmountUsed.Equal(second[i].AdvanceAmountUsed))
	}
}

func TestAllocate_SupplierRole(t *testing.T) {
	inv := uuid.New()
	accountID := uuid.New()
	req := Request{
		TenantID:    uuid.New(),
		EntityID:    uuid.New(),
		Role:        domain.EntityRoleSupplier,
		Date:        time.Now().UTC(),
		Selections:  []Selection{{InvoiceID: inv, Pending: dec("50"), Requested: dec("50")}},
		AdvanceUsed: decimal.Zero,
		AccountID:   &accountID,
	}

	payments, err := Allocate(req)
	require.NoError(t, err)
	require.Len(t, payments, 1)

	assert.Equal(t, domain.PaymentTypeSupplier, payments[0].Type)
	require.NotNil(t, payments[0].PurchaseInvoiceID)
	assert.Equal(t, inv, *payments[0].PurchaseInvoiceID)
	assert.Nil(t, payments[0].OrderID)
	assert.Nil(t, payments[0].CustomerID)
}

func TestAllocate_FullyCoveredByAdvanceNeedsNoAccount(t *testing.T) {
	req := Request{
		TenantID:    uuid.New(),
		EntityID:    uuid.New(),
		Role:        domain.EntityRoleCustomer,
		Date:        time.Now().UTC(),
		Selections:  []Selection{{InvoiceID: uuid.New(), Pending: dec("30"), Requested: dec("30")}},
		AdvanceUsed: dec("30"),
		AccountID:   nil,
	}

	payments, err := Allocate(req)
	require.NoError(t, err)
	require.Len(t, payments, 1)
	assert.True(t, payments[0].Amount.IsZero())
	assert.Nil(t, payments[0].AccountID)
}

func TestAllocate_Validation(t *testing.T) {
	invA := uuid.New()
	accountID := uuid.New()

	tests := []struct {
		name      string
		req       Request
		wantErrIs error
		wantInv   *uuid.UUID
	}{
		{
			name: "requested exceeds pending by a cent",
			req: customerRequest([]Selection{
				{InvoiceID: invA, Pending: dec("100"), Requested: dec("100.01")},
			}, decimal.Zero),
			wantErrIs: domain.ErrAmountExceedsPending,
			wantInv:   &invA,
		},
		{
			name: "zero requested",
			req: customerRequest([]Selection{
				{InvoiceID: invA, Pending: dec("100"), Requested: decimal.Zero},
			}, decimal.Zero),
			wantErrIs: domain.ErrInvalidAmount,
			wantInv:   &invA,
		},
		{
			name: "negative requested",
			req: customerRequest([]Selection{
				{InvoiceID: invA, Pending: dec("100"), Requested: dec("-5")},
			}, decimal.Zero),
			wantErrIs: domain.ErrInvalidAmount,
			wantInv:   &invA,
		},
		{
			name:      "no selections",
			req:       customerRequest(nil, decimal.Zero),
			wantErrIs: domain.ErrNothingToAllocate,
		},
		{
			name: "negative advance",
			req: customerRequest([]Selection{
				{InvoiceID: invA, Pending: dec("100"), Requested: dec("100")},
			}, dec("-1")),
			wantErrIs: domain.ErrNegativeAdvance,
		},
		{
			name: "invalid role",
			req: Request{
				Role:       domain.EntityRole("vendor"),
				Selections: []Selection{{InvoiceID: invA, Pending: dec("10"), Requested: dec("10")}},
				AccountID:  &accountID,
			},
			wantErrIs: domain.ErrInvalidEntityRole,
		},
		{
			name: "cash without account",
			req: Request{
				TenantID:    uuid.New(),
				EntityID:    uuid.New(),
				Role:        domain.EntityRoleCustomer,
				Selections:  []Selection{{InvoiceID: invA, Pending: dec("100"), Requested: dec("100")}},
				AdvanceUsed: dec("40"),
				AccountID:   nil,
			},
			wantErrIs: domain.ErrNoPaymentAccount,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Allocate(tc.req)
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.wantErrIs)

			if tc.wantInv != nil {
				var verr *ValidationError
				require.ErrorAs(t, err, &verr)
				require.NotNil(t, verr.InvoiceID)
				assert.Equal(t, *tc.wantInv, *verr.InvoiceID)
			}
		})
	}
}

func TestAllocate_RequestedEqualToPendingAccepted(t *testing.T) {
	req := customerRequest([]Selection{
		{InvoiceID: uuid.New(), Pending: dec("100"), Requested: dec("100")},
	}, decimal.Zero)

	payments, err := Allocate(req)
	require.NoError(t, err)
	require.Len(t, payments, 1)
	assert.True(t, payments[0].Amount.Equal(dec("100")))
}
