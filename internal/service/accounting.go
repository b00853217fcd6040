package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tallyhq/tally-backend/internal/domain"
	"github.com/tallyhq/tally-backend/internal/ledger"
)

type AccountLedger struct {
	Account *domain.Account
	Rows    []domain.LedgerRow
}

type AccountingService struct {
	accounts accountRepository
}

func NewAccountingService(accounts accountRepository) *AccountingService {
	return &AccountingService{accounts: accounts}
}

// ListAccounts returns the tenant's chart of accounts ordered by code.
func (s *AccountingService) ListAccounts(ctx context.Context, tenantID uuid.UUID) ([]domain.Account, error) {
	accounts, err := s.accounts.ListByTenant(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("ListAccounts: %w", err)
	}
	return accounts, nil
}

// CreateAccount adds an account to the tenant's chart.
func (s *AccountingService) CreateAccount(ctx context.Context, tenantID uuid.UUID, name, code string, accountType domain.AccountType) (*domain.Account, error) {
	if name == "" || code == "" || !accountType.IsValid() {
		return nil, fmt.Errorf("CreateAccount: %w", domain.ErrInvalidRequest)
	}

	acct := &domain.Account{
		ID:        uuid.New(),
		TenantID:  tenantID,
		Name:      name,
		Code:      code,
		Type:      accountType,
		Balance:   decimal.Zero,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.accounts.Create(ctx, acct); err != nil {
		return nil, fmt.Errorf("CreateAccount: %w", err)
	}
	return acct, nil
}

// GetAccountLedger recomputes the account's running balance from its
// transaction lines. Rows come back in chronological order; display
// reversal is the caller's business.
func (s *AccountingService) GetAccountLedger(ctx context.Context, tenantID, accountID uuid.UUID) (*AccountLedger, error) {
	acct, err := s.accounts.GetByID(ctx, tenantID, accountID)
	if err != nil {
		return nil, fmt.Errorf("GetAccountLedger: %w", err)
	}

	lines, err := s.accounts.GetLines(ctx, tenantID, accountID)
	if err != nil {
		return nil, fmt.Errorf("GetAccountLedger: %w", err)
	}

	return &AccountLedger{
		Account: acct,
		Rows:    ledger.ComputeAccountLedger(lines, acct.Type),
	}, nil
}

// Reconcile checks the reconciliation invariant: the final recomputed
// running balance must equal the account's cached balance.
func (s *AccountingService) Reconcile(ctx context.Context, tenantID, accountID uuid.UUID) (bool, error) {
	al, err := s.GetAccountLedger(ctx, tenantID, accountID)
	if err != nil {
		return false, fmt.Errorf("Reconcile: %w", err)
	}
	if len(al.Rows) == 0 {
		return al.Account.Balance.IsZero(), nil
	}
	return al.Rows[len(al.Rows)-1].Balance.Equal(al.Account.Balance), nil
}
