package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/tallyhq/tally-backend/internal/domain"
)

type EntityRepository struct {
	db *sql.DB
}

func NewEntityRepository(db *sql.DB) *EntityRepository {
	return &EntityRepository{db: db}
}

func (r *EntityRepository) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*domain.Entity, error) {
	var e domain.Entity
	err := r.db.QueryRowContext(ctx,
		`SELECT id, tenant_id, name, role, opening_balance, created_at
		 FROM entities WHERE tenant_id = $1 AND id = $2`,
		tenantID, id,
	).Scan(&e.ID, &e.TenantID, &e.Name, &e.Role, &e.OpeningBalance, &e.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetByID: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("GetByID: %w", err)
	}
	return &e, nil
}

func (r *EntityRepository) ListReturns(ctx context.Context, tenantID, entityID uuid.UUID) ([]domain.Return, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, tenant_id, entity_id, date, amount, reference
		 FROM returns WHERE tenant_id = $1 AND entity_id = $2 ORDER BY date`,
		tenantID, entityID,
	)
	if err != nil {
		return nil, fmt.Errorf("ListReturns: %w", err)
	}
	defer rows.Close()

	var returns []domain.Return
	for rows.Next() {
		var ret domain.Return
		if err := rows.Scan(&ret.ID, &ret.TenantID, &ret.EntityID, &ret.Date, &ret.Amount, &ret.Reference); err != nil {
			return nil, fmt.Errorf("ListReturns: scan: %w", err)
		}
		returns = append(returns, ret)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListReturns: rows: %w", err)
	}
	return returns, nil
}
