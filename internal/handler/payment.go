package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tallyhq/tally-backend/internal/allocation"
	"github.com/tallyhq/tally-backend/internal/auth"
	"github.com/tallyhq/tally-backend/internal/domain"
	"github.com/tallyhq/tally-backend/internal/logging"
	"github.com/tallyhq/tally-backend/internal/service"
)

type allocationService interface {
	Allocate(ctx context.Context, req service.AllocationRequest) (allocation.SubmissionReport, error)
	ListPayable(ctx context.Context, tenantID, entityID uuid.UUID) ([]service.PayableInvoice, error)
}

type PaymentHandler struct {
	allocations allocationService
}

func NewPaymentHandler(allocations allocationService) *PaymentHandler {
	return &PaymentHandler{allocations: allocations}
}

type selectionDTO struct {
	InvoiceID uuid.UUID       `json:"invoice_id"`
	Amount    decimal.Decimal `json:"amount"`
}

// selections may arrive as the structure itself or, from older clients, as
// a JSON-encoded string; Flexible normalizes both at the boundary.
type allocateRequest struct {
	EntityID    uuid.UUID                       `json:"entity_id"`
	Role        string                          `json:"role"`
	Date        time.Time                       `json:"date"`
	AccountID   *uuid.UUID                      `json:"account_id"`
	AdvanceUsed decimal.Decimal                 `json:"advance_used"`
	Selections  domain.Flexible[[]selectionDTO] `json:"selections"`
}

func (r allocateRequest) Validate() []FieldError {
	var errs []FieldError
	if r.EntityID == uuid.Nil {
		errs = append(errs, FieldError{Field: "entity_id", Message: "required"})
	}
	if r.Role == "" {
		errs = append(errs, FieldError{Field: "role", Message: "required"})
	} else if !domain.EntityRole(r.Role).IsValid() {
		errs = append(errs, FieldError{Field: "role", Message: "must be customer or supplier"})
	}
	if len(r.Selections.Value()) == 0 {
		errs = append(errs, FieldError{Field: "selections", Message: "at least one invoice required"})
	}
	return errs
}

type submissionItemDTO struct {
	InvoiceID uuid.UUID  `json:"invoice_id"`
	Status    string     `json:"status"`
	PaymentID *uuid.UUID `json:"payment_id,omitempty"`
	Error     string     `json:"error,omitempty"`
}

type allocateResponse struct {
	AllPosted bool                `json:"all_posted"`
	Items     []submissionItemDTO `json:"items"`
}

func toAllocateResponse(report allocation.SubmissionReport) allocateResponse {
	resp := allocateResponse{AllPosted: report.AllPosted()}
	for _, item := range report.Items {
		dto := submissionItemDTO{
			InvoiceID: item.InvoiceID,
			Status:    string(item.Status),
		}
		if item.Payment != nil {
			id := item.Payment.ID
			dto.PaymentID = &id
		}
		if item.Err != nil {
			dto.Error = item.Err.Error()
		}
		resp.Items = append(resp.Items, dto)
	}
	return resp
}

// Allocate splits one payment across the selected invoices and posts the
// resulting records. Partial application is reported, never hidden: the
// response names each invoice's outcome so the client never resubmits a
// posted item.
func (h *PaymentHandler) Allocate(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())

	tenantID, ok := auth.TenantIDFromContext(r.Context())
	if !ok {
		RespondAppError(w, ErrMissingToken, nil)
		return
	}

	var req allocateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}

	if fields := req.Validate(); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	date := req.Date
	if date.IsZero() {
		date = time.Now().UTC()
	}

	selections := make([]service.SelectionInput, 0, len(req.Selections.Value()))
	for _, sel := range req.Selections.Value() {
		selections = append(selections, service.SelectionInput{
			InvoiceID: sel.InvoiceID,
			Amount:    sel.Amount,
		})
	}

	report, err := h.allocations.Allocate(r.Context(), service.AllocationRequest{
		TenantID:    tenantID,
		EntityID:    req.EntityID,
		Role:        domain.EntityRole(req.Role),
		Date:        date,
		Selections:  selections,
		AdvanceUsed: req.AdvanceUsed,
		AccountID:   req.AccountID,
	})
	if err != nil {
		log.Warn("allocation rejected", "error", err)

		var valErr *allocation.ValidationError
		if errors.As(err, &valErr) && valErr.InvoiceID != nil {
			RespondValidationError(w, []FieldError{{
				Field:   "invoice:" + valErr.InvoiceID.String(),
				Message: valErr.Err.Error(),
			}})
			return
		}
		RespondDomainError(w, err)
		return
	}

	status := http.StatusCreated
	if !report.AllPosted() {
		status = http.StatusMultiStatus
	}
	RespondSuccess(w, status, toAllocateResponse(report))
}

type payableInvoiceDTO struct {
	ID      uuid.UUID       `json:"id"`
	Kind    string          `json:"kind"`
	Number  string          `json:"number"`
	Date    time.Time       `json:"date"`
	Total   decimal.Decimal `json:"total"`
	Pending decimal.Decimal `json:"pending"`
}

// ListPayable returns the entity's invoices that still carry a pending
// balance; only these are offered for selection.
func (h *PaymentHandler) ListPayable(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := auth.TenantIDFromContext(r.Context())
	if !ok {
		RespondAppError(w, ErrMissingToken, nil)
		return
	}

	entityID, err := uuid.Parse(r.URL.Query().Get("entity_id"))
	if err != nil {
		RespondValidationError(w, []FieldError{{Field: "entity_id", Message: "must be a valid uuid"}})
		return
	}

	payable, err := h.allocations.ListPayable(r.Context(), tenantID, entityID)
	if err != nil {
		logging.FromContext(r.Context()).Warn("payable lookup failed", "error", err)
		RespondDomainError(w, err)
		return
	}

	dtos := make([]payableInvoiceDTO, 0, len(payable))
	for _, p := range payable {
		dtos = append(dtos, payableInvoiceDTO{
			ID:      p.Invoice.ID,
			Kind:    string(p.Invoice.Kind),
			Number:  p.Invoice.Number,
			Date:    p.Invoice.Date,
			Total:   p.Invoice.Total,
			Pending: p.Pending,
		})
	}
	RespondSuccess(w, http.StatusOK, dtos)
}
