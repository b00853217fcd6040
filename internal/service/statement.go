package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tallyhq/tally-backend/internal/domain"
	"github.com/tallyhq/tally-backend/internal/ledger"
)

type Statement struct {
	Entity         *domain.Entity
	Lines          []domain.StatementLine
	ClosingBalance decimal.Decimal
	BalanceLabel   string
}

type StatementService struct {
	entities entityRepository
	invoices invoiceRepository
	payments paymentRepository
}

func NewStatementService(entities entityRepository, invoices invoiceRepository, payments paymentRepository) *StatementService {
	return &StatementService{entities: entities, invoices: invoices, payments: payments}
}

// BuildStatement merges the entity's opening balance, invoices, payments
// and returns into one chronological ledger with a running balance,
// presented most-recent-first.
func (s *StatementService) BuildStatement(ctx context.Context, tenantID, entityID uuid.UUID) (*Statement, error) {
	entity, err := s.entities.GetByID(ctx, tenantID, entityID)
	if err != nil {
		return nil, fmt.Errorf("BuildStatement: %w", err)
	}

	entries, err := s.collectEntries(ctx, entity)
	if err != nil {
		return nil, fmt.Errorf("BuildStatement: %w", err)
	}

	lines, err := ledger.BuildStatement(entries, entity.Role)
	if err != nil {
		return nil, fmt.Errorf("BuildStatement: %w", err)
	}

	closing := decimal.Zero
	if len(lines) > 0 {
		closing = lines[0].Balance
	}

	return &Statement{
		Entity:         entity,
		Lines:          lines,
		ClosingBalance: closing,
		BalanceLabel:   ledger.BalanceLabel(closing),
	}, nil
}

// GetBalanceSnapshot reports what the entity currently owes, or the advance
// credit held when the statement closes negative. The allocator validates
// against this snapshot before a payment is split.
func (s *StatementService) GetBalanceSnapshot(ctx context.Context, tenantID, entityID uuid.UUID) (domain.BalanceSnapshot, error) {
	st, err := s.BuildStatement(ctx, tenantID, entityID)
	if err != nil {
		return domain.BalanceSnapshot{}, fmt.Errorf("GetBalanceSnapshot: %w", err)
	}
	return domain.NewBalanceSnapshot(st.ClosingBalance), nil
}

func (s *StatementService) collectEntries(ctx context.Context, entity *domain.Entity) ([]domain.StatementEntry, error) {
	var entries []domain.StatementEntry

	if !entity.OpeningBalance.IsZero() {
		entries = append(entries, domain.StatementEntry{
			Date:      entity.CreatedAt,
			Kind:      domain.EntryKindOpeningBalance,
			Amount:    entity.OpeningBalance,
			Reference: "opening-balance",
		})
	}

	invoices, err := s.invoices.ListByEntity(ctx, entity.TenantID, entity.ID)
	if err != nil {
		return nil, fmt.Errorf("collectEntries: invoices: %w", err)
	}
	for _, inv := range invoices {
		entries = append(entries, domain.StatementEntry{
			Date:      inv.Date,
			Kind:      domain.EntryKindOrder,
			Amount:    inv.Total,
			Reference: inv.Number,
		})
	}

	payments, err := s.payments.ListByEntity(ctx, entity.TenantID, entity.ID)
	if err != nil {
		return nil, fmt.Errorf("collectEntries: payments: %w", err)
	}
	for i := range payments {
		p := &payments[i]
		kind := domain.EntryKindPayment
		if p.Type == domain.PaymentTypeRefund {
			kind = domain.EntryKindRefund
		}
		entries = append(entries, domain.StatementEntry{
			Date:      p.Date,
			Kind:      kind,
			Amount:    p.TotalApplied(),
			Reference: p.ID.String(),
		})
	}

	returns, err := s.entities.ListReturns(ctx, entity.TenantID, entity.ID)
	if err != nil {
		return nil, fmt.Errorf("collectEntries: returns: %w", err)
	}
	for _, ret := range returns {
		entries = append(entries, domain.StatementEntry{
			Date:      ret.Date,
			Kind:      domain.EntryKindReturn,
			Amount:    ret.Amount,
			Reference: ret.Reference,
		})
	}

	return entries, nil
}
