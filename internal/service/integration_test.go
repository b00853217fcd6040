package service_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tallyhq/tally-backend/internal/allocation"
	"github.com/tallyhq/tally-backend/internal/domain"
	"github.com/tallyhq/tally-backend/internal/repository"
	"github.com/tallyhq/tally-backend/internal/service"
	"github.com/tallyhq/tally-backend/internal/testutil"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

type testEnv struct {
	db          *sql.DB
	tenantID    uuid.UUID
	accounts    map[string]*domain.Account
	allocations *service.AllocationService
	statements  *service.StatementService
	accounting  *service.AccountingService
}

func setupEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testutil.SetupTestDB(t)
	tenantID := testutil.SeedTenant(t, db, "acme")
	accounts := testutil.SeedChartOfAccounts(t, db, tenantID)

	invoices := repository.NewInvoiceRepository(db)
	payments := repository.NewPaymentRepository(db)
	accountRepo := repository.NewAccountRepository(db)
	transactions := repository.NewTransactionRepository(db)
	entities := repository.NewEntityRepository(db)

	posting := service.NewPostingService(
		repository.NewDB(db), invoices, payments, accountRepo, transactions,
		service.DefaultPostingAccounts(),
	)

	return &testEnv{
		db:          db,
		tenantID:    tenantID,
		accounts:    accounts,
		allocations: service.NewAllocationService(invoices, allocation.NewSubmitter(posting)),
		statements:  service.NewStatementService(entities, invoices, payments),
		accounting:  service.NewAccountingService(accountRepo),
	}
}

func TestAllocate_CashAcrossTwoInvoices(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	customer := testutil.SeedEntity(t, env.db, env.tenantID, "North Traders", domain.EntityRoleCustomer, decimal.Zero)
	invA := testutil.SeedInvoice(t, env.db, env.tenantID, domain.InvoiceKindOrder, customer.ID, "INV-1", dec("200"))
	invB := testutil.SeedInvoice(t, env.db, env.tenantID, domain.InvoiceKindOrder, customer.ID, "INV-2", dec("300"))
	cash := env.accounts["1000"]

	report, err := env.allocations.Allocate(ctx, service.AllocationRequest{
		TenantID: env.tenantID,
		EntityID: customer.ID,
		Role:     domain.EntityRoleCustomer,
		Date:     time.Now().UTC(),
		Selections: []service.SelectionInput{
			{InvoiceID: invA.ID, Amount: dec("200")},
			{InvoiceID: invB.ID, Amount: dec("100")},
		},
		AdvanceUsed: decimal.Zero,
		AccountID:   &cash.ID,
	})
	require.NoError(t, err)
	require.True(t, report.AllPosted(), "first error: %v", report.FirstError())
	require.Len(t, report.Items, 2)

	assert.Equal(t, 1, testutil.CountPayments(t, env.db, invA.ID))
	assert.Equal(t, 1, testutil.CountPayments(t, env.db, invB.ID))

	// the stored payment round-trips with its invoice link intact
	stored, err := repository.NewPaymentRepository(env.db).GetByID(ctx, env.tenantID, report.Items[0].Payment.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.OrderID)
	assert.Equal(t, invA.ID, *stored.OrderID)
	assert.True(t, stored.Amount.Equal(dec("200")))

	// each posting wrote a balanced journal transaction
	var txnID uuid.UUID
	require.NoError(t, env.db.QueryRow(
		`SELECT id FROM transactions WHERE tenant_id = $1 ORDER BY number LIMIT 1`, env.tenantID,
	).Scan(&txnID))
	txn, err := repository.NewTransactionRepository(env.db).GetByID(ctx, env.tenantID, txnID)
	require.NoError(t, err)
	assert.True(t, txn.Balanced())
	assert.Equal(t, int64(1), txn.Number)

	// cash up by the full 300, receivable down by the same
	assert.True(t, testutil.GetAccountBalance(t, env.db, cash.ID).Equal(dec("300")))
	assert.True(t, testutil.GetAccountBalance(t, env.db, env.accounts["1200"].ID).Equal(dec("-300")))

	// INV-1 is settled and drops off the payable list
	payable, err := env.allocations.ListPayable(ctx, env.tenantID, customer.ID)
	require.NoError(t, err)
	require.Len(t, payable, 1)
	assert.Equal(t, invB.ID, payable[0].Invoice.ID)
	assert.True(t, payable[0].Pending.Equal(dec("200")))
}

func TestAllocate_AdvanceSplitPostsJournals(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	customer := testutil.SeedEntity(t, env.db, env.tenantID, "South Retail", domain.EntityRoleCustomer, decimal.Zero)
	invA := testutil.SeedInvoice(t, env.db, env.tenantID, domain.InvoiceKindOrder, customer.ID, "INV-1", dec("200"))
	invB := testutil.SeedInvoice(t, env.db, env.tenantID, domain.InvoiceKindOrder, customer.ID, "INV-2", dec("300"))
	cash := env.accounts["1000"]

	report, err := env.allocations.Allocate(ctx, service.AllocationRequest{
		TenantID: env.tenantID,
		EntityID: customer.ID,
		Role:     domain.EntityRoleCustomer,
		Date:     time.Now().UTC(),
		Selections: []service.SelectionInput{
			{InvoiceID: invA.ID, Amount: dec("200")},
			{InvoiceID: invB.ID, Amount: dec("300")},
		},
		AdvanceUsed: dec("100"),
		AccountID:   &cash.ID,
	})
	require.NoError(t, err)
	require.True(t, report.AllPosted(), "first error: %v", report.FirstError())

	// 100 advance split 40/60; cash covers the rest
	assert.True(t, testutil.GetAccountBalance(t, env.db, cash.ID).Equal(dec("400")))
	assert.True(t, testutil.GetAccountBalance(t, env.db, env.accounts["2300"].ID).Equal(dec("-100")))
	assert.True(t, testutil.GetAccountBalance(t, env.db, env.accounts["1200"].ID).Equal(dec("-500")))
}

func TestAllocate_SecondAttemptRejectedAsStale(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	customer := testutil.SeedEntity(t, env.db, env.tenantID, "West Goods", domain.EntityRoleCustomer, decimal.Zero)
	inv := testutil.SeedInvoice(t, env.db, env.tenantID, domain.InvoiceKindOrder, customer.ID, "INV-1", dec("100"))
	cash := env.accounts["1000"]

	req := service.AllocationRequest{
		TenantID:   env.tenantID,
		EntityID:   customer.ID,
		Role:       domain.EntityRoleCustomer,
		Date:       time.Now().UTC(),
		Selections: []service.SelectionInput{{InvoiceID: inv.ID, Amount: dec("100")}},
		AccountID:  &cash.ID,
	}

	first, err := env.allocations.Allocate(ctx, req)
	require.NoError(t, err)
	require.True(t, first.AllPosted())

	// nothing pending anymore, so the resubmitted amount exceeds it
	_, err = env.allocations.Allocate(ctx, req)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrAmountExceedsPending)
	assert.Equal(t, 1, testutil.CountPayments(t, env.db, inv.ID))
}

func TestAllocate_SupplierSide(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	supplier := testutil.SeedEntity(t, env.db, env.tenantID, "Mills & Co", domain.EntityRoleSupplier, decimal.Zero)
	inv := testutil.SeedInvoice(t, env.db, env.tenantID, domain.InvoiceKindPurchase, supplier.ID, "PINV-1", dec("750"))
	cash := env.accounts["1000"]

	report, err := env.allocations.Allocate(ctx, service.AllocationRequest{
		TenantID:   env.tenantID,
		EntityID:   supplier.ID,
		Role:       domain.EntityRoleSupplier,
		Date:       time.Now().UTC(),
		Selections: []service.SelectionInput{{InvoiceID: inv.ID, Amount: dec("750")}},
		AccountID:  &cash.ID,
	})
	require.NoError(t, err)
	require.True(t, report.AllPosted(), "first error: %v", report.FirstError())

	// paying a supplier credits cash and debits the payable
	assert.True(t, testutil.GetAccountBalance(t, env.db, cash.ID).Equal(dec("-750")))
	assert.True(t, testutil.GetAccountBalance(t, env.db, env.accounts["2100"].ID).Equal(dec("-750")))
}

func TestStatement_ReflectsPostedPayments(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	customer := testutil.SeedEntity(t, env.db, env.tenantID, "East Stores", domain.EntityRoleCustomer, dec("50"))
	inv := testutil.SeedInvoice(t, env.db, env.tenantID, domain.InvoiceKindOrder, customer.ID, "INV-1", dec("400"))
	cash := env.accounts["1000"]

	report, err := env.allocations.Allocate(ctx, service.AllocationRequest{
		TenantID:   env.tenantID,
		EntityID:   customer.ID,
		Role:       domain.EntityRoleCustomer,
		Date:       time.Now().UTC(),
		Selections: []service.SelectionInput{{InvoiceID: inv.ID, Amount: dec("150")}},
		AccountID:  &cash.ID,
	})
	require.NoError(t, err)
	require.True(t, report.AllPosted())

	st, err := env.statements.BuildStatement(ctx, env.tenantID, customer.ID)
	require.NoError(t, err)
	require.Len(t, st.Lines, 3) // opening, order, payment

	// 50 opening + 400 order - 150 paid
	assert.True(t, st.ClosingBalance.Equal(dec("300")), "closing = %s", st.ClosingBalance)
	assert.Equal(t, "Owes: 300.00", st.BalanceLabel)
	assert.Equal(t, domain.EntryKindPayment, st.Lines[0].Kind)

	snap, err := env.statements.GetBalanceSnapshot(ctx, env.tenantID, customer.ID)
	require.NoError(t, err)
	assert.True(t, snap.Pending.Equal(dec("300")))
	assert.True(t, snap.AvailableAdvance.IsZero())
}

func TestAccountLedger_ReconcilesWithCachedBalance(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	customer := testutil.SeedEntity(t, env.db, env.tenantID, "North Traders", domain.EntityRoleCustomer, decimal.Zero)
	invA := testutil.SeedInvoice(t, env.db, env.tenantID, domain.InvoiceKindOrder, customer.ID, "INV-1", dec("120"))
	invB := testutil.SeedInvoice(t, env.db, env.tenantID, domain.InvoiceKindOrder, customer.ID, "INV-2", dec("80"))
	cash := env.accounts["1000"]

	report, err := env.allocations.Allocate(ctx, service.AllocationRequest{
		TenantID: env.tenantID,
		EntityID: customer.ID,
		Role:     domain.EntityRoleCustomer,
		Date:     time.Now().UTC(),
		Selections: []service.SelectionInput{
			{InvoiceID: invA.ID, Amount: dec("120")},
			{InvoiceID: invB.ID, Amount: dec("80")},
		},
		AccountID: &cash.ID,
	})
	require.NoError(t, err)
	require.True(t, report.AllPosted())

	al, err := env.accounting.GetAccountLedger(ctx, env.tenantID, cash.ID)
	require.NoError(t, err)
	require.Len(t, al.Rows, 2)
	assert.True(t, al.Rows[len(al.Rows)-1].Balance.Equal(dec("200")))

	inSync, err := env.accounting.Reconcile(ctx, env.tenantID, cash.ID)
	require.NoError(t, err)
	assert.True(t, inSync)
}
