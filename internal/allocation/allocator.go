// Package allocation splits a single payment across selected outstanding
// invoices, optionally drawing on the payer's advance credit.
package allocation

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tallyhq/tally-backend/internal/domain"
)

// Selection is one invoice the payer chose to settle, together with the
// pending amount snapshotted when the invoice list was fetched.
type Selection struct {
	InvoiceID uuid.UUID
	Pending   decimal.Decimal
	Requested decimal.Decimal
}

type Request struct {
	TenantID    uuid.UUID
	EntityID    uuid.UUID
	Role        domain.EntityRole
	Date        time.Time
	Selections  []Selection
	AdvanceUsed decimal.Decimal
	AccountID   *uuid.UUID
}

// ValidationError names the offending invoice or field. It wraps a domain
// sentinel so callers can branch with errors.Is.
type ValidationError struct {
	InvoiceID *uuid.UUID
	Field     string
	Err       error
}

func (e *ValidationError) Error() string {
	if e.InvoiceID != nil {
		return fmt.Sprintf("invoice %s: %v", e.InvoiceID, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

func invoiceError(id uuid.UUID, err error) *ValidationError {
	return &ValidationError{InvoiceID: &id, Err: err}
}

func fieldError(field string, err error) *ValidationError {
	return &ValidationError{Field: field, Err: err}
}

// Allocate validates the whole request up front and, on success, returns one
// draft Payment per selection. Nothing is written here; the drafts carry no
// IDs until the posting layer persists them. The function is pure: the same
// request always yields the same splits.
//
// The advance credit is distributed across the selected invoices in
// proportion to their pending amounts, capped per invoice at its own
// requested amount so no invoice receives more credit than it needs. Each
// selection's cash portion is its requested amount minus its advance share.
func Allocate(req Request) ([]domain.Payment, error) {
	if !req.Role.IsValid() {
		return nil, fieldError("role", domain.ErrInvalidEntityRole)
	}
	if req.AdvanceUsed.IsNegative() {
		return nil, fieldError("advance_used", domain.ErrNegativeAdvance)
	}

	totalRequested := decimal.Zero
	for _, sel := range req.Selections {
		if !sel.Requested.IsPositive() {
			return nil, invoiceError(sel.InvoiceID, domain.ErrInvalidAmount)
		}
		if sel.Requested.GreaterThan(sel.Pending) {
			return nil, invoiceError(sel.InvoiceID, domain.ErrAmountExceedsPending)
		}
		totalRequested = totalRequested.Add(sel.Requested)
	}
	if !totalRequested.IsPositive() {
		return nil, fieldError("selections", domain.ErrNothingToAllocate)
	}

	shares := advanceShares(req.Selections, req.AdvanceUsed)

	totalCash := decimal.Zero
	for i, sel := range req.Selections {
		totalCash = totalCash.Add(sel.Requested.Sub(shares[i]))
	}
	if totalCash.IsPositive() && req.AccountID == nil {
		return nil, fieldError("account_id", domain.ErrNoPaymentAccount)
	}

	payments := make([]domain.Payment, 0, len(req.Selections))
	for i, sel := range req.Selections {
		payments = append(payments, buildPayment(req, sel, sel.Requested.Sub(shares[i]), shares[i]))
	}
	return payments, nil
}

// advanceShares splits advanceUsed proportionally to each selection's
// pending amount. Shares are rounded to cents; each is capped at the
// selection's requested amount and at the advance still undistributed, so
// the total handed out never exceeds advanceUsed.
func advanceShares(selections []Selection, advanceUsed decimal.Decimal) []decimal.Decimal {
	shares := make([]decimal.Decimal, len(selections))
	for i := range shares {
		shares[i] = decimal.Zero
	}
	if !advanceUsed.IsPositive() {
		return shares
	}

	totalPending := decimal.Zero
	for _, sel := range selections {
		totalPending = totalPending.Add(sel.Pending)
	}
	if !totalPending.IsPositive() {
		return shares
	}

	remaining := advanceUsed
	for i, sel := range selections {
		share := sel.Pending.Div(totalPending).Mul(advanceUsed).Round(2)
		if share.GreaterThan(sel.Requested) {
			share = sel.Requested
		}
		if share.GreaterThan(remaining) {
			share = remaining
		}
		shares[i] = share
		remaining = remaining.Sub(share)
	}
	return shares
}

func buildPayment(req Request, sel Selection, cash, share decimal.Decimal) domain.Payment {
	p := domain.Payment{
		TenantID:          req.TenantID,
		Date:              req.Date,
		Amount:            cash,
		UseAdvanceBalance: share.IsPositive(),
		AdvanceAmountUsed: share,
	}
	if cash.IsPositive() {
		p.AccountID = req.AccountID
	}

	entityID := req.EntityID
	invoiceID := sel.InvoiceID
	switch req.Role {
	case domain.EntityRoleCustomer:
		p.Type = domain.PaymentTypeCustomer
		p.CustomerID = &entityID
		p.OrderID = &invoiceID
	case domain.EntityRoleSupplier:
		p.Type = domain.PaymentTypeSupplier
		p.SupplierID = &entityID
		p.PurchaseInvoiceID = &invoiceID
	}
	return p
}
