package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tallyhq/tally-backend/internal/auth"
	"github.com/tallyhq/tally-backend/internal/domain"
	"github.com/tallyhq/tally-backend/internal/logging"
	"github.com/tallyhq/tally-backend/internal/service"
)

type statementService interface {
	BuildStatement(ctx context.Context, tenantID, entityID uuid.UUID) (*service.Statement, error)
	GetBalanceSnapshot(ctx context.Context, tenantID, entityID uuid.UUID) (domain.BalanceSnapshot, error)
}

type StatementHandler struct {
	statements statementService
}

func NewStatementHandler(statements statementService) *StatementHandler {
	return &StatementHandler{statements: statements}
}

type statementLineDTO struct {
	Date      time.Time       `json:"date"`
	Kind      string          `json:"kind"`
	Debit     decimal.Decimal `json:"debit"`
	Credit    decimal.Decimal `json:"credit"`
	Balance   decimal.Decimal `json:"balance"`
	Reference string          `json:"reference"`
}

type statementDTO struct {
	EntityID       uuid.UUID          `json:"entity_id"`
	EntityName     string             `json:"entity_name"`
	Role           string             `json:"role"`
	ClosingBalance decimal.Decimal    `json:"closing_balance"`
	BalanceLabel   string             `json:"balance_label"`
	Lines          []statementLineDTO `json:"lines"`
}

func (h *StatementHandler) Get(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := auth.TenantIDFromContext(r.Context())
	if !ok {
		RespondAppError(w, ErrMissingToken, nil)
		return
	}

	entityID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		RespondAppError(w, ErrResourceNotFound, nil)
		return
	}

	st, err := h.statements.BuildStatement(r.Context(), tenantID, entityID)
	if err != nil {
		logging.FromContext(r.Context()).Warn("statement build failed", "error", err)
		RespondDomainError(w, err)
		return
	}

	dto := statementDTO{
		EntityID:       st.Entity.ID,
		EntityName:     st.Entity.Name,
		Role:           string(st.Entity.Role),
		ClosingBalance: st.ClosingBalance,
		BalanceLabel:   st.BalanceLabel,
	}
	for _, line := range st.Lines {
		dto.Lines = append(dto.Lines, statementLineDTO{
			Date:      line.Date,
			Kind:      string(line.Kind),
			Debit:     line.Debit,
			Credit:    line.Credit,
			Balance:   line.Balance,
			Reference: line.Reference,
		})
	}
	RespondSuccess(w, http.StatusOK, dto)
}

type balanceSnapshotDTO struct {
	Pending          decimal.Decimal `json:"pending"`
	AvailableAdvance decimal.Decimal `json:"available_advance"`
}

func (h *StatementHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := auth.TenantIDFromContext(r.Context())
	if !ok {
		RespondAppError(w, ErrMissingToken, nil)
		return
	}

	entityID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		RespondAppError(w, ErrResourceNotFound, nil)
		return
	}

	snap, err := h.statements.GetBalanceSnapshot(r.Context(), tenantID, entityID)
	if err != nil {
		logging.FromContext(r.Context()).Warn("balance snapshot failed", "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, balanceSnapshotDTO{
		Pending:          snap.Pending,
		AvailableAdvance: snap.AvailableAdvance,
	})
}
