package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PaymentType string

const (
	PaymentTypeCustomer PaymentType = "CUSTOMER_PAYMENT"
	PaymentTypeSupplier PaymentType = "SUPPLIER_PAYMENT"
	PaymentTypeRefund   PaymentType = "REFUND"
)

// Payment is immutable once posted; corrections would require a reversal
// flow that does not exist yet.
type Payment struct {
	ID                uuid.UUID
	TenantID          uuid.UUID
	Date              time.Time
	Type              PaymentType
	Amount            decimal.Decimal
	AccountID         *uuid.UUID
	CustomerID        *uuid.UUID
	SupplierID        *uuid.UUID
	OrderID           *uuid.UUID
	PurchaseInvoiceID *uuid.UUID
	UseAdvanceBalance bool
	AdvanceAmountUsed decimal.Decimal
	CreatedAt         time.Time
}

// TotalApplied is the amount settled against the linked invoice: the cash
// portion plus any advance credit drawn.
func (p *Payment) TotalApplied() decimal.Decimal {
	return p.Amount.Add(p.AdvanceAmountUsed)
}
