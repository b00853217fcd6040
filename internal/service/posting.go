package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tallyhq/tally-backend/internal/domain"
	"github.com/tallyhq/tally-backend/internal/logging"
	"github.com/tallyhq/tally-backend/internal/pending"
	"github.com/tallyhq/tally-backend/internal/repository"
)

// PostingAccounts are the chart-of-accounts codes the posting service
// resolves control accounts through.
type PostingAccounts struct {
	ReceivableCode      string
	PayableCode         string
	CustomerAdvanceCode string
	SupplierAdvanceCode string
}

func DefaultPostingAccounts() PostingAccounts {
	return PostingAccounts{
		ReceivableCode:      "1200",
		PayableCode:         "2100",
		CustomerAdvanceCode: "2300",
		SupplierAdvanceCode: "1300",
	}
}

// PostingService is the single write path for payments. Each call persists
// one Payment together with its balanced journal transaction, atomically.
type PostingService struct {
	db           *repository.DB
	invoices     invoiceRepository
	payments     paymentRepository
	accounts     accountRepository
	transactions transactionRepository
	codes        PostingAccounts
}

func NewPostingService(
	db *repository.DB,
	invoices invoiceRepository,
	payments paymentRepository,
	accounts accountRepository,
	transactions transactionRepository,
	codes PostingAccounts,
) *PostingService {
	return &PostingService{
		db:           db,
		invoices:     invoices,
		payments:     payments,
		accounts:     accounts,
		transactions: transactions,
		codes:        codes,
	}
}

// PostPayment persists the draft inside one DB transaction. The linked
// invoice is locked and its pending amount recomputed from the locked rows,
// so an allocation built on a stale snapshot is rejected here rather than
// double-paying the invoice.
func (s *PostingService) PostPayment(ctx context.Context, p *domain.Payment) (*domain.Payment, error) {
	log := logging.FromContext(ctx)

	applied := p.TotalApplied()
	if !applied.IsPositive() {
		return nil, fmt.Errorf("PostPayment: %w", domain.ErrInvalidAmount)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("PostPayment: begin tx: %w", err)
	}
	defer tx.Rollback()

	invoiceID, err := linkedInvoiceID(p)
	if err != nil {
		return nil, fmt.Errorf("PostPayment: %w", err)
	}

	inv, err := s.invoices.GetForUpdate(ctx, tx, p.TenantID, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("PostPayment: %w", err)
	}

	currentPending := pending.Calculate(*inv)
	if applied.GreaterThan(currentPending) {
		return nil, fmt.Errorf("PostPayment: invoice %s: applied %s exceeds pending %s: %w",
			inv.ID, applied, currentPending, domain.ErrStalePending)
	}

	now := time.Now().UTC()
	stored := *p
	stored.ID = uuid.New()
	stored.CreatedAt = now

	if err := s.payments.Create(ctx, tx, &stored); err != nil {
		return nil, fmt.Errorf("PostPayment: create payment: %w", err)
	}

	txn, err := s.buildJournal(ctx, tx, &stored, inv, now)
	if err != nil {
		return nil, fmt.Errorf("PostPayment: %w", err)
	}
	if err := s.transactions.Create(ctx, tx, txn); err != nil {
		return nil, fmt.Errorf("PostPayment: create transaction: %w", err)
	}

	if err := s.applyToBalances(ctx, tx, txn); err != nil {
		return nil, fmt.Errorf("PostPayment: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("PostPayment: commit: %w", err)
	}

	log.Info("payment posted",
		"payment_id", stored.ID,
		"invoice_id", inv.ID,
		"amount", stored.Amount,
		"advance_used", stored.AdvanceAmountUsed,
		"transaction_number", txn.Number,
	)

	return &stored, nil
}

// buildJournal assembles the balanced journal entry for one payment.
//
// Customer payment: debit cash for the cash portion, debit the customer
// advance liability for the credit drawn down, credit receivables for the
// total applied. Supplier payment mirrors it on the payable side.
func (s *PostingService) buildJournal(ctx context.Context, tx *sql.Tx, p *domain.Payment, inv *domain.Invoice, now time.Time) (*domain.Transaction, error) {
	number, err := s.transactions.NextNumber(ctx, tx, p.TenantID)
	if err != nil {
		return nil, fmt.Errorf("buildJournal: %w", err)
	}

	var lines []domain.TransactionLine
	switch p.Type {
	case domain.PaymentTypeCustomer:
		lines, err = s.customerLines(ctx, p)
	case domain.PaymentTypeSupplier:
		lines, err = s.supplierLines(ctx, p)
	default:
		return nil, fmt.Errorf("buildJournal: payment type %q: %w", p.Type, domain.ErrInvalidRequest)
	}
	if err != nil {
		return nil, fmt.Errorf("buildJournal: %w", err)
	}

	txn := &domain.Transaction{
		ID:          uuid.New(),
		TenantID:    p.TenantID,
		Number:      number,
		Date:        p.Date,
		Description: fmt.Sprintf("Payment against %s %s", inv.Kind, inv.Number),
		Lines:       lines,
		CreatedAt:   now,
	}
	if !txn.Balanced() {
		return nil, fmt.Errorf("buildJournal: %w", domain.ErrUnbalancedTransaction)
	}
	return txn, nil
}

func (s *PostingService) customerLines(ctx context.Context, p *domain.Payment) ([]domain.TransactionLine, error) {
	receivable, err := s.accounts.GetByCode(ctx, p.TenantID, s.codes.ReceivableCode)
	if err != nil {
		return nil, fmt.Errorf("customerLines: receivable: %w", err)
	}

	var lines []domain.TransactionLine
	if p.Amount.IsPositive() {
		if p.AccountID == nil {
			return nil, fmt.Errorf("customerLines: %w", domain.ErrNoPaymentAccount)
		}
		lines = append(lines, domain.TransactionLine{AccountID: *p.AccountID, Debit: p.Amount, Credit: decimal.Zero})
	}
	if p.AdvanceAmountUsed.IsPositive() {
		advance, err := s.accounts.GetByCode(ctx, p.TenantID, s.codes.CustomerAdvanceCode)
		if err != nil {
			return nil, fmt.Errorf("customerLines: advance: %w", err)
		}
		lines = append(lines, domain.TransactionLine{AccountID: advance.ID, Debit: p.AdvanceAmountUsed, Credit: decimal.Zero})
	}
	lines = append(lines, domain.TransactionLine{AccountID: receivable.ID, Debit: decimal.Zero, Credit: p.TotalApplied()})
	return lines, nil
}

func (s *PostingService) supplierLines(ctx context.Context, p *domain.Payment) ([]domain.TransactionLine, error) {
	payable, err := s.accounts.GetByCode(ctx, p.TenantID, s.codes.PayableCode)
	if err != nil {
		return nil, fmt.Errorf("supplierLines: payable: %w", err)
	}

	lines := []domain.TransactionLine{
		{AccountID: payable.ID, Debit: p.TotalApplied(), Credit: decimal.Zero},
	}
	if p.Amount.IsPositive() {
		if p.AccountID == nil {
			return nil, fmt.Errorf("supplierLines: %w", domain.ErrNoPaymentAccount)
		}
		lines = append(lines, domain.TransactionLine{AccountID: *p.AccountID, Debit: decimal.Zero, Credit: p.Amount})
	}
	if p.AdvanceAmountUsed.IsPositive() {
		advance, err := s.accounts.GetByCode(ctx, p.TenantID, s.codes.SupplierAdvanceCode)
		if err != nil {
			return nil, fmt.Errorf("supplierLines: advance: %w", err)
		}
		lines = append(lines, domain.TransactionLine{AccountID: advance.ID, Debit: decimal.Zero, Credit: p.AdvanceAmountUsed})
	}
	return lines, nil
}

// applyToBalances rolls each line into its account's cached balance while
// holding the row lock. The cached value is what the reconciliation
// invariant checks the recomputed running balance against.
func (s *PostingService) applyToBalances(ctx context.Context, tx *sql.Tx, txn *domain.Transaction) error {
	for _, l := range txn.Lines {
		acct, err := s.accounts.GetForUpdate(ctx, tx, txn.TenantID, l.AccountID)
		if err != nil {
			return fmt.Errorf("applyToBalances: %w", err)
		}

		delta := l.Debit.Sub(l.Credit)
		if !acct.Type.DebitIncreases() {
			delta = l.Credit.Sub(l.Debit)
		}

		if err := s.accounts.UpdateBalance(ctx, tx, acct.ID, acct.Balance.Add(delta)); err != nil {
			return fmt.Errorf("applyToBalances: %w", err)
		}
	}
	return nil
}

func linkedInvoiceID(p *domain.Payment) (uuid.UUID, error) {
	if p.OrderID != nil {
		return *p.OrderID, nil
	}
	if p.PurchaseInvoiceID != nil {
		return *p.PurchaseInvoiceID, nil
	}
	return uuid.Nil, fmt.Errorf("linkedInvoiceID: payment has no invoice link: %w", domain.ErrInvalidRequest)
}
