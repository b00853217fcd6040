package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/tallyhq/tally-backend/internal/domain"
)

const paymentColumns = `id, tenant_id, date, type, amount, account_id,
	customer_id, supplier_id, order_id, purchase_invoice_id,
	use_advance_balance, advance_amount_used, created_at`

type PaymentRepository struct {
	db *sql.DB
}

func NewPaymentRepository(db *sql.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func (r *PaymentRepository) Create(ctx context.Context, tx *sql.Tx, p *domain.Payment) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO payments (
			id, tenant_id, date, type, amount, account_id,
			customer_id, supplier_id, order_id, purchase_invoice_id,
			use_advance_balance, advance_amount_used, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		p.ID, p.TenantID, p.Date, p.Type, p.Amount, p.AccountID,
		p.CustomerID, p.SupplierID, p.OrderID, p.PurchaseInvoiceID,
		p.UseAdvanceBalance, p.AdvanceAmountUsed, p.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

func (r *PaymentRepository) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*domain.Payment, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+paymentColumns+` FROM payments WHERE tenant_id = $1 AND id = $2`,
		tenantID, id,
	)
	p, err := scanPayment(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetByID: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("GetByID: %w", err)
	}
	return p, nil
}

// ListByEntity returns every payment attributed to the customer or
// supplier, including refunds, oldest first.
func (r *PaymentRepository) ListByEntity(ctx context.Context, tenantID, entityID uuid.UUID) ([]domain.Payment, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+paymentColumns+` FROM payments
		 WHERE tenant_id = $1 AND (customer_id = $2 OR supplier_id = $2)
		 ORDER BY date, created_at`,
		tenantID, entityID,
	)
	if err != nil {
		return nil, fmt.Errorf("ListByEntity: %w", err)
	}
	defer rows.Close()

	var payments []domain.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("ListByEntity: scan: %w", err)
		}
		payments = append(payments, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListByEntity: rows: %w", err)
	}
	return payments, nil
}

func scanPayment(s scanner) (*domain.Payment, error) {
	var p domain.Payment
	var accountID, customerID, supplierID, orderID, purchaseInvoiceID uuid.NullUUID

	err := s.Scan(
		&p.ID, &p.TenantID, &p.Date, &p.Type, &p.Amount, &accountID,
		&customerID, &supplierID, &orderID, &purchaseInvoiceID,
		&p.UseAdvanceBalance, &p.AdvanceAmountUsed, &p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if accountID.Valid {
		p.AccountID = &accountID.UUID
	}
	if customerID.Valid {
		p.CustomerID = &customerID.UUID
	}
	if supplierID.Valid {
		p.SupplierID = &supplierID.UUID
	}
	if orderID.Valid {
		p.OrderID = &orderID.UUID
	}
	if purchaseInvoiceID.Valid {
		p.PurchaseInvoiceID = &purchaseInvoiceID.UUID
	}
	return &p, nil
}
