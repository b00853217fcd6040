package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tallyhq/tally-backend/internal/auth"
	"github.com/tallyhq/tally-backend/internal/domain"
	"github.com/tallyhq/tally-backend/internal/logging"
	"github.com/tallyhq/tally-backend/internal/service"
)

type accountingService interface {
	GetAccountLedger(ctx context.Context, tenantID, accountID uuid.UUID) (*service.AccountLedger, error)
	ListAccounts(ctx context.Context, tenantID uuid.UUID) ([]domain.Account, error)
	CreateAccount(ctx context.Context, tenantID uuid.UUID, name, code string, accountType domain.AccountType) (*domain.Account, error)
}

type AccountHandler struct {
	accounting accountingService
}

func NewAccountHandler(accounting accountingService) *AccountHandler {
	return &AccountHandler{accounting: accounting}
}

type accountDTO struct {
	ID      uuid.UUID       `json:"id"`
	Name    string          `json:"name"`
	Code    string          `json:"code"`
	Type    string          `json:"type"`
	Balance decimal.Decimal `json:"balance"`
}

func toAccountDTO(a *domain.Account) accountDTO {
	return accountDTO{
		ID:      a.ID,
		Name:    a.Name,
		Code:    a.Code,
		Type:    string(a.Type),
		Balance: a.Balance,
	}
}

// List returns the tenant's chart of accounts.
func (h *AccountHandler) List(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := auth.TenantIDFromContext(r.Context())
	if !ok {
		RespondAppError(w, ErrMissingToken, nil)
		return
	}

	accounts, err := h.accounting.ListAccounts(r.Context(), tenantID)
	if err != nil {
		logging.FromContext(r.Context()).Warn("account list failed", "error", err)
		RespondDomainError(w, err)
		return
	}

	dtos := make([]accountDTO, 0, len(accounts))
	for i := range accounts {
		dtos = append(dtos, toAccountDTO(&accounts[i]))
	}
	RespondSuccess(w, http.StatusOK, dtos)
}

type createAccountRequest struct {
	Name string `json:"name"`
	Code string `json:"code"`
	Type string `json:"type"`
}

func (h *AccountHandler) Create(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := auth.TenantIDFromContext(r.Context())
	if !ok {
		RespondAppError(w, ErrMissingToken, nil)
		return
	}

	var req createAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}

	acct, err := h.accounting.CreateAccount(r.Context(), tenantID, req.Name, req.Code, domain.AccountType(req.Type))
	if err != nil {
		logging.FromContext(r.Context()).Warn("account creation rejected", "error", err)
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusCreated, toAccountDTO(acct))
}

type ledgerRowDTO struct {
	TransactionID     uuid.UUID       `json:"transaction_id"`
	TransactionNumber int64           `json:"transaction_number"`
	Date              time.Time       `json:"date"`
	Description       string          `json:"description"`
	Debit             decimal.Decimal `json:"debit"`
	Credit            decimal.Decimal `json:"credit"`
	Balance           decimal.Decimal `json:"balance"`
}

type accountLedgerDTO struct {
	AccountID   uuid.UUID       `json:"account_id"`
	AccountName string          `json:"account_name"`
	AccountType string          `json:"account_type"`
	Balance     decimal.Decimal `json:"balance"`
	Rows        []ledgerRowDTO  `json:"rows"`
}

// GetLedger returns the account's reconstructed ledger most-recent-first.
// Balances were fixed by the chronological pass; only the presentation
// order is reversed here.
func (h *AccountHandler) GetLedger(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := auth.TenantIDFromContext(r.Context())
	if !ok {
		RespondAppError(w, ErrMissingToken, nil)
		return
	}

	accountID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		RespondAppError(w, ErrResourceNotFound, nil)
		return
	}

	al, err := h.accounting.GetAccountLedger(r.Context(), tenantID, accountID)
	if err != nil {
		logging.FromContext(r.Context()).Warn("ledger reconstruction failed", "error", err)
		RespondDomainError(w, err)
		return
	}

	dto := accountLedgerDTO{
		AccountID:   al.Account.ID,
		AccountName: al.Account.Name,
		AccountType: string(al.Account.Type),
		Balance:     al.Account.Balance,
	}
	for i := len(al.Rows) - 1; i >= 0; i-- {
		row := al.Rows[i]
		dto.Rows = append(dto.Rows, ledgerRowDTO{
			TransactionID:     row.TransactionID,
			TransactionNumber: row.TransactionNumber,
			Date:              row.Date,
			Description:       row.Description,
			Debit:             row.Debit,
			Credit:            row.Credit,
			Balance:           row.Balance,
		})
	}
	RespondSuccess(w, http.StatusOK, dto)
}
