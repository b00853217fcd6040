package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tallyhq/tally-backend/internal/domain"
)

const invoiceColumns = `id, tenant_id, kind, number, entity_id, date, total, legacy_payment`

type InvoiceRepository struct {
	db *sql.DB
}

func NewInvoiceRepository(db *sql.DB) *InvoiceRepository {
	return &InvoiceRepository{db: db}
}

func (r *InvoiceRepository) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*domain.Invoice, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+invoiceColumns+` FROM invoices WHERE tenant_id = $1 AND id = $2`,
		tenantID, id,
	)
	inv, err := scanInvoice(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetByID: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("GetByID: %w", err)
	}

	inv.Payments, err = r.linkedPayments(ctx, inv.ID)
	if err != nil {
		return nil, fmt.Errorf("GetByID: %w", err)
	}
	if len(inv.Payments) == 0 {
		inv.EntityPayments, err = r.unlinkedEntityPayments(ctx, inv.TenantID, inv.EntityID)
		if err != nil {
			return nil, fmt.Errorf("GetByID: %w", err)
		}
	}
	return inv, nil
}

// ListByEntity returns the entity's invoices with their directly linked
// payments attached, newest invoice first.
func (r *InvoiceRepository) ListByEntity(ctx context.Context, tenantID, entityID uuid.UUID) ([]domain.Invoice, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+invoiceColumns+` FROM invoices
		 WHERE tenant_id = $1 AND entity_id = $2 ORDER BY date DESC, number DESC`,
		tenantID, entityID,
	)
	if err != nil {
		return nil, fmt.Errorf("ListByEntity: %w", err)
	}
	defer rows.Close()

	var invoices []domain.Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, fmt.Errorf("ListByEntity: scan: %w", err)
		}
		invoices = append(invoices, *inv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListByEntity: rows: %w", err)
	}

	var entityPayments []domain.Payment
	fetchedEntity := false
	for i := range invoices {
		payments, err := r.linkedPayments(ctx, invoices[i].ID)
		if err != nil {
			return nil, fmt.Errorf("ListByEntity: %w", err)
		}
		invoices[i].Payments = payments

		// legacy rows have payments attributed to the entity only
		if len(payments) == 0 {
			if !fetchedEntity {
				entityPayments, err = r.unlinkedEntityPayments(ctx, tenantID, entityID)
				if err != nil {
					return nil, fmt.Errorf("ListByEntity: %w", err)
				}
				fetchedEntity = true
			}
			invoices[i].EntityPayments = entityPayments
		}
	}
	return invoices, nil
}

// GetForUpdate locks the invoice row and re-reads its linked payments
// inside the posting transaction. This is the write-time re-validation
// read: the pending amount computed from this snapshot cannot go stale
// before the commit.
func (r *InvoiceRepository) GetForUpdate(ctx context.Context, tx *sql.Tx, tenantID, id uuid.UUID) (*domain.Invoice, error) {
	row := tx.QueryRowContext(ctx,
		`SELECT `+invoiceColumns+` FROM invoices WHERE tenant_id = $1 AND id = $2 FOR UPDATE`,
		tenantID, id,
	)
	inv, err := scanInvoice(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetForUpdate: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("GetForUpdate: %w", err)
	}

	rows, err := tx.QueryContext(ctx,
		`SELECT `+paymentColumns+` FROM payments
		 WHERE order_id = $1 OR purchase_invoice_id = $1 ORDER BY created_at`,
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("GetForUpdate: payments: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("GetForUpdate: scan payment: %w", err)
		}
		inv.Payments = append(inv.Payments, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("GetForUpdate: rows: %w", err)
	}

	if len(inv.Payments) == 0 {
		erows, err := tx.QueryContext(ctx,
			`SELECT `+paymentColumns+` FROM payments
			 WHERE tenant_id = $1 AND (customer_id = $2 OR supplier_id = $2)
			   AND order_id IS NULL AND purchase_invoice_id IS NULL
			 ORDER BY created_at`,
			tenantID, inv.EntityID,
		)
		if err != nil {
			return nil, fmt.Errorf("GetForUpdate: entity payments: %w", err)
		}
		defer erows.Close()

		for erows.Next() {
			p, err := scanPayment(erows)
			if err != nil {
				return nil, fmt.Errorf("GetForUpdate: scan entity payment: %w", err)
			}
			inv.EntityPayments = append(inv.EntityPayments, *p)
		}
		if err := erows.Err(); err != nil {
			return nil, fmt.Errorf("GetForUpdate: entity payment rows: %w", err)
		}
	}
	return inv, nil
}

func (r *InvoiceRepository) linkedPayments(ctx context.Context, invoiceID uuid.UUID) ([]domain.Payment, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+paymentColumns+` FROM payments
		 WHERE order_id = $1 OR purchase_invoice_id = $1 ORDER BY created_at`,
		invoiceID,
	)
	if err != nil {
		return nil, fmt.Errorf("linkedPayments: %w", err)
	}
	defer rows.Close()

	var payments []domain.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("linkedPayments: scan: %w", err)
		}
		payments = append(payments, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("linkedPayments: rows: %w", err)
	}
	return payments, nil
}

// unlinkedEntityPayments returns the entity's payments that carry no
// invoice link, the middle rung of the pending fallback chain.
func (r *InvoiceRepository) unlinkedEntityPayments(ctx context.Context, tenantID, entityID uuid.UUID) ([]domain.Payment, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+paymentColumns+` FROM payments
		 WHERE tenant_id = $1 AND (customer_id = $2 OR supplier_id = $2)
		   AND order_id IS NULL AND purchase_invoice_id IS NULL
		 ORDER BY created_at`,
		tenantID, entityID,
	)
	if err != nil {
		return nil, fmt.Errorf("unlinkedEntityPayments: %w", err)
	}
	defer rows.Close()

	var payments []domain.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("unlinkedEntityPayments: scan: %w", err)
		}
		payments = append(payments, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("unlinkedEntityPayments: rows: %w", err)
	}
	return payments, nil
}

func scanInvoice(s scanner) (*domain.Invoice, error) {
	var inv domain.Invoice
	var legacy decimal.NullDecimal
	err := s.Scan(
		&inv.ID, &inv.TenantID, &inv.Kind, &inv.Number,
		&inv.EntityID, &inv.Date, &inv.Total, &legacy,
	)
	if err != nil {
		return nil, err
	}
	if legacy.Valid {
		inv.LegacyPayment = &legacy.Decimal
	}
	return &inv, nil
}
