package allocation

import (
	"context"

	"github.com/google/uuid"

	"github.com/tallyhq/tally-backend/internal/domain"
	"github.com/tallyhq/tally-backend/internal/logging"
)

type paymentPoster interface {
	PostPayment(ctx context.Context, p *domain.Payment) (*domain.Payment, error)
}

type ItemStatus string

const (
	ItemStatusPosted  ItemStatus = "posted"
	ItemStatusFailed  ItemStatus = "failed"
	ItemStatusSkipped ItemStatus = "skipped"
)

type SubmissionItem struct {
	InvoiceID uuid.UUID
	Status    ItemStatus
	Payment   *domain.Payment
	Err       error
}

// SubmissionReport lists the outcome of every per-invoice write so the
// caller knows exactly which payments exist and never resubmits one that
// already succeeded.
type SubmissionReport struct {
	Items []SubmissionItem
}

func (r SubmissionReport) AllPosted() bool {
	for _, item := range r.Items {
		if item.Status != ItemStatusPosted {
			return false
		}
	}
	return true
}

func (r SubmissionReport) FirstError() error {
	for _, item := range r.Items {
		if item.Err != nil {
			return item.Err
		}
	}
	return nil
}

type Submitter struct {
	poster paymentPoster
}

func NewSubmitter(poster paymentPoster) *Submitter {
	return &Submitter{poster: poster}
}

// Submit posts the draft payments one at a time, in order. There is no
// cross-record transaction: on the first failure the remaining drafts are
// not attempted and come back as skipped. Already-posted items stay posted.
func (s *Submitter) Submit(ctx context.Context, payments []domain.Payment) SubmissionReport {
	log := logging.FromContext(ctx)

	report := SubmissionReport{Items: make([]SubmissionItem, 0, len(payments))}
	failed := false

	for i := range payments {
		p := payments[i]
		item := SubmissionItem{InvoiceID: linkedInvoiceID(&p)}

		if failed {
			item.Status = ItemStatusSkipped
			report.Items = append(report.Items, item)
			continue
		}

		stored, err := s.poster.PostPayment(ctx, &p)
		if err != nil {
			log.Warn("payment submission failed",
				"invoice_id", item.InvoiceID,
				"error", err,
			)
			item.Status = ItemStatusFailed
			item.Err = err
			failed = true
		} else {
			item.Status = ItemStatusPosted
			item.Payment = stored
		}
		report.Items = append(report.Items, item)
	}

	return report
}

func linkedInvoiceID(p *domain.Payment) uuid.UUID {
	if p.OrderID != nil {
		return *p.OrderID
	}
	if p.PurchaseInvoiceID != nil {
		return *p.PurchaseInvoiceID
	}
	return uuid.Nil
}
