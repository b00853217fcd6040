package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tallyhq/tally-backend/internal/domain"
	"github.com/tallyhq/tally-backend/internal/fees"
)

type FeeConfigService struct {
	configs feeConfigRepository
}

func NewFeeConfigService(configs feeConfigRepository) *FeeConfigService {
	return &FeeConfigService{configs: configs}
}

// Get returns the tenant's config for the kind, or an empty FIXED config
// at zero when none has been saved yet.
func (s *FeeConfigService) Get(ctx context.Context, tenantID uuid.UUID, kind domain.FeeRuleKind) (*domain.FeeConfig, error) {
	cfg, err := s.configs.Get(ctx, tenantID, kind)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return &domain.FeeConfig{Kind: kind, Mode: domain.FeeModeFixed}, nil
		}
		return nil, fmt.Errorf("Get: %w", err)
	}
	return cfg, nil
}

// Update validates and normalizes the config before storing it; the rule
// list is re-sorted so later lookups stay deterministic.
func (s *FeeConfigService) Update(ctx context.Context, tenantID uuid.UUID, cfg *domain.FeeConfig) error {
	if err := fees.ValidateConfig(cfg); err != nil {
		return fmt.Errorf("Update: %w", err)
	}
	if err := s.configs.Upsert(ctx, tenantID, cfg); err != nil {
		return fmt.Errorf("Update: %w", err)
	}
	return nil
}

// CODFee evaluates the tenant's COD handling fee for an order amount.
func (s *FeeConfigService) CODFee(ctx context.Context, tenantID uuid.UUID, amount decimal.Decimal) (decimal.Decimal, error) {
	cfg, err := s.Get(ctx, tenantID, domain.FeeRuleKindCOD)
	if err != nil {
		return decimal.Zero, fmt.Errorf("CODFee: %w", err)
	}
	return fees.Evaluate(*cfg, amount), nil
}

// QuantityPrice evaluates the tenant's quantity-based pricing for a line
// quantity.
func (s *FeeConfigService) QuantityPrice(ctx context.Context, tenantID uuid.UUID, quantity int64) (decimal.Decimal, error) {
	cfg, err := s.Get(ctx, tenantID, domain.FeeRuleKindQuantity)
	if err != nil {
		return decimal.Zero, fmt.Errorf("QuantityPrice: %w", err)
	}
	return fees.QuantityPrice(*cfg, quantity), nil
}
