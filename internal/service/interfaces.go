package service

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tallyhq/tally-backend/internal/domain"
)

type invoiceRepository interface {
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*domain.Invoice, error)
	ListByEntity(ctx context.Context, tenantID, entityID uuid.UUID) ([]domain.Invoice, error)
	GetForUpdate(ctx context.Context, tx *sql.Tx, tenantID, id uuid.UUID) (*domain.Invoice, error)
}

type paymentRepository interface {
	Create(ctx context.Context, tx *sql.Tx, p *domain.Payment) error
	ListByEntity(ctx context.Context, tenantID, entityID uuid.UUID) ([]domain.Payment, error)
}

type accountRepository interface {
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*domain.Account, error)
	GetByCode(ctx context.Context, tenantID uuid.UUID, code string) (*domain.Account, error)
	ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]domain.Account, error)
	Create(ctx context.Context, account *domain.Account) error
	GetLines(ctx context.Context, tenantID, accountID uuid.UUID) ([]domain.AccountLine, error)
	GetForUpdate(ctx context.Context, tx *sql.Tx, tenantID, id uuid.UUID) (*domain.Account, error)
	UpdateBalance(ctx context.Context, tx *sql.Tx, id uuid.UUID, newBalance decimal.Decimal) error
}

type transactionRepository interface {
	NextNumber(ctx context.Context, tx *sql.Tx, tenantID uuid.UUID) (int64, error)
	Create(ctx context.Context, tx *sql.Tx, txn *domain.Transaction) error
}

type entityRepository interface {
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*domain.Entity, error)
	ListReturns(ctx context.Context, tenantID, entityID uuid.UUID) ([]domain.Return, error)
}

type feeConfigRepository interface {
	Get(ctx context.Context, tenantID uuid.UUID, kind domain.FeeRuleKind) (*domain.FeeConfig, error)
	Upsert(ctx context.Context, tenantID uuid.UUID, cfg *domain.FeeConfig) error
}
