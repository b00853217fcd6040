package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tallyhq/tally-backend/internal/allocation"
	"github.com/tallyhq/tally-backend/internal/domain"
	"github.com/tallyhq/tally-backend/internal/pending"
)

// AllocationRequest is one payment to be split across selected invoices.
type AllocationRequest struct {
	TenantID    uuid.UUID
	EntityID    uuid.UUID
	Role        domain.EntityRole
	Date        time.Time
	Selections  []SelectionInput
	AdvanceUsed decimal.Decimal
	AccountID   *uuid.UUID
}

type SelectionInput struct {
	InvoiceID uuid.UUID
	Amount    decimal.Decimal
}

type submitter interface {
	Submit(ctx context.Context, payments []domain.Payment) allocation.SubmissionReport
}

// AllocationService resolves the request's invoices to fresh pending
// snapshots, runs the pure allocator, and hands the drafts to the
// sequential submitter.
type AllocationService struct {
	invoices  invoiceRepository
	submitter submitter
}

func NewAllocationService(invoices invoiceRepository, sub submitter) *AllocationService {
	return &AllocationService{invoices: invoices, submitter: sub}
}

func (s *AllocationService) Allocate(ctx context.Context, req AllocationRequest) (allocation.SubmissionReport, error) {
	selections := make([]allocation.Selection, 0, len(req.Selections))
	for _, in := range req.Selections {
		inv, err := s.invoices.GetByID(ctx, req.TenantID, in.InvoiceID)
		if err != nil {
			return allocation.SubmissionReport{}, fmt.Errorf("Allocate: invoice %s: %w", in.InvoiceID, err)
		}
		selections = append(selections, allocation.Selection{
			InvoiceID: inv.ID,
			Pending:   pending.Calculate(*inv),
			Requested: in.Amount,
		})
	}

	payments, err := allocation.Allocate(allocation.Request{
		TenantID:    req.TenantID,
		EntityID:    req.EntityID,
		Role:        req.Role,
		Date:        req.Date,
		Selections:  selections,
		AdvanceUsed: req.AdvanceUsed,
		AccountID:   req.AccountID,
	})
	if err != nil {
		return allocation.SubmissionReport{}, fmt.Errorf("Allocate: %w", err)
	}

	return s.submitter.Submit(ctx, payments), nil
}

// ListPayable returns the entity's invoices that still have a pending
// balance, each with its pending amount attached.
func (s *AllocationService) ListPayable(ctx context.Context, tenantID, entityID uuid.UUID) ([]PayableInvoice, error) {
	invoices, err := s.invoices.ListByEntity(ctx, tenantID, entityID)
	if err != nil {
		return nil, fmt.Errorf("ListPayable: %w", err)
	}

	var out []PayableInvoice
	for _, inv := range pending.Payable(invoices) {
		out = append(out, PayableInvoice{Invoice: inv, Pending: pending.Calculate(inv)})
	}
	return out, nil
}

type PayableInvoice struct {
	Invoice domain.Invoice
	Pending decimal.Decimal
}
