package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tallyhq/tally-backend/internal/domain"
)

type FeeConfigRepository struct {
	db *sql.DB
}

func NewFeeConfigRepository(db *sql.DB) *FeeConfigRepository {
	return &FeeConfigRepository{db: db}
}

// Configs are stored whole as JSONB, one row per tenant and kind; the rule
// list never needs relational access.
func (r *FeeConfigRepository) Get(ctx context.Context, tenantID uuid.UUID, kind domain.FeeRuleKind) (*domain.FeeConfig, error) {
	var raw []byte
	err := r.db.QueryRowContext(ctx,
		`SELECT config FROM fee_configs WHERE tenant_id = $1 AND kind = $2`,
		tenantID, kind,
	).Scan(&raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("Get: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("Get: %w", err)
	}

	var cfg domain.FeeConfig
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("Get: decode config: %w", err)
	}
	return &cfg, nil
}

func (r *FeeConfigRepository) Upsert(ctx context.Context, tenantID uuid.UUID, cfg *domain.FeeConfig) error {
	raw, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("Upsert: encode config: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO fee_configs (tenant_id, kind, config, updated_at)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (tenant_id, kind) DO UPDATE SET config = $3, updated_at = $4`,
		tenantID, cfg.Kind, raw, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("Upsert: %w", err)
	}
	return nil
}
