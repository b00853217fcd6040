package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tallyhq/tally-backend/internal/auth"
	"github.com/tallyhq/tally-backend/internal/domain"
	"github.com/tallyhq/tally-backend/internal/logging"
)

type feeConfigService interface {
	Get(ctx context.Context, tenantID uuid.UUID, kind domain.FeeRuleKind) (*domain.FeeConfig, error)
	Update(ctx context.Context, tenantID uuid.UUID, cfg *domain.FeeConfig) error
	CODFee(ctx context.Context, tenantID uuid.UUID, amount decimal.Decimal) (decimal.Decimal, error)
	QuantityPrice(ctx context.Context, tenantID uuid.UUID, quantity int64) (decimal.Decimal, error)
}

type FeeConfigHandler struct {
	configs feeConfigService
}

func NewFeeConfigHandler(configs feeConfigService) *FeeConfigHandler {
	return &FeeConfigHandler{configs: configs}
}

func (h *FeeConfigHandler) Get(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := auth.TenantIDFromContext(r.Context())
	if !ok {
		RespondAppError(w, ErrMissingToken, nil)
		return
	}

	kind := domain.FeeRuleKind(r.PathValue("kind"))
	if !kind.IsValid() {
		RespondAppError(w, ErrResourceNotFound, nil)
		return
	}

	cfg, err := h.configs.Get(r.Context(), tenantID, kind)
	if err != nil {
		logging.FromContext(r.Context()).Warn("fee config lookup failed", "error", err)
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, cfg)
}

// updateFeeConfigRequest tolerates the rules list arriving either parsed
// or as a JSON-encoded string from the legacy form builder.
type updateFeeConfigRequest struct {
	Mode       string                            `json:"mode"`
	Percent    decimal.Decimal                   `json:"percent"`
	FlatAmount decimal.Decimal                   `json:"flat_amount"`
	Rules      domain.Flexible[[]domain.FeeRule] `json:"rules"`
	DefaultFee decimal.Decimal                   `json:"default_fee"`
}

func (h *FeeConfigHandler) Update(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := auth.TenantIDFromContext(r.Context())
	if !ok {
		RespondAppError(w, ErrMissingToken, nil)
		return
	}

	kind := domain.FeeRuleKind(r.PathValue("kind"))
	if !kind.IsValid() {
		RespondAppError(w, ErrResourceNotFound, nil)
		return
	}

	var req updateFeeConfigRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}

	cfg := &domain.FeeConfig{
		Kind:       kind,
		Mode:       domain.FeeMode(req.Mode),
		Percent:    req.Percent,
		FlatAmount: req.FlatAmount,
		Rules:      req.Rules.Value(),
		DefaultFee: req.DefaultFee,
	}

	if err := h.configs.Update(r.Context(), tenantID, cfg); err != nil {
		logging.FromContext(r.Context()).Warn("fee config update rejected", "error", err)
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, cfg)
}

type feeQuoteDTO struct {
	Fee decimal.Decimal `json:"fee"`
}

// Quote evaluates the stored config: ?amount= for the COD fee,
// ?quantity= for quantity pricing.
func (h *FeeConfigHandler) Quote(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := auth.TenantIDFromContext(r.Context())
	if !ok {
		RespondAppError(w, ErrMissingToken, nil)
		return
	}

	kind := domain.FeeRuleKind(r.PathValue("kind"))
	switch kind {
	case domain.FeeRuleKindCOD:
		amount, err := decimal.NewFromString(r.URL.Query().Get("amount"))
		if err != nil {
			RespondValidationError(w, []FieldError{{Field: "amount", Message: "must be a decimal"}})
			return
		}
		fee, err := h.configs.CODFee(r.Context(), tenantID, amount)
		if err != nil {
			RespondDomainError(w, err)
			return
		}
		RespondSuccess(w, http.StatusOK, feeQuoteDTO{Fee: fee})
	case domain.FeeRuleKindQuantity:
		quantity, err := strconv.ParseInt(r.URL.Query().Get("quantity"), 10, 64)
		if err != nil || quantity < 0 {
			RespondValidationError(w, []FieldError{{Field: "quantity", Message: "must be a non-negative integer"}})
			return
		}
		fee, err := h.configs.QuantityPrice(r.Context(), tenantID, quantity)
		if err != nil {
			RespondDomainError(w, err)
			return
		}
		RespondSuccess(w, http.StatusOK, feeQuoteDTO{Fee: fee})
	default:
		RespondAppError(w, ErrResourceNotFound, nil)
	}
}
