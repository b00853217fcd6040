package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tallyhq/tally-backend/internal/domain"
)

const accountColumns = `id, tenant_id, name, code, type, balance, created_at`

type AccountRepository struct {
	db *sql.DB
}

func NewAccountRepository(db *sql.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

func (r *AccountRepository) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*domain.Account, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE tenant_id = $1 AND id = $2`,
		tenantID, id,
	)
	a, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetByID: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("GetByID: %w", err)
	}
	return a, nil
}

func (r *AccountRepository) GetByCode(ctx context.Context, tenantID uuid.UUID, code string) (*domain.Account, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE tenant_id = $1 AND code = $2`,
		tenantID, code,
	)
	a, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetByCode: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("GetByCode: %w", err)
	}
	return a, nil
}

func (r *AccountRepository) ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]domain.Account, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE tenant_id = $1 ORDER BY code`, tenantID,
	)
	if err != nil {
		return nil, fmt.Errorf("ListByTenant: %w", err)
	}
	defer rows.Close()

	var accounts []domain.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("ListByTenant: scan: %w", err)
		}
		accounts = append(accounts, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListByTenant: rows: %w", err)
	}
	return accounts, nil
}

func (r *AccountRepository) Create(ctx context.Context, account *domain.Account) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO accounts (id, tenant_id, name, code, type, balance, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		account.ID, account.TenantID, account.Name, account.Code,
		account.Type, account.Balance, account.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

// GetLines returns every transaction line touching the account, joined
// with its transaction header. Ordering is left to the ledger
// reconstructor.
func (r *AccountRepository) GetLines(ctx context.Context, tenantID, accountID uuid.UUID) ([]domain.AccountLine, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT t.id, t.number, t.date, t.description, l.debit, l.credit
		 FROM transaction_lines l
		 JOIN transactions t ON t.id = l.transaction_id
		 WHERE t.tenant_id = $1 AND l.account_id = $2`,
		tenantID, accountID,
	)
	if err != nil {
		return nil, fmt.Errorf("GetLines: %w", err)
	}
	defer rows.Close()

	var lines []domain.AccountLine
	for rows.Next() {
		var l domain.AccountLine
		if err := rows.Scan(&l.TransactionID, &l.TransactionNumber, &l.Date, &l.Description, &l.Debit, &l.Credit); err != nil {
			return nil, fmt.Errorf("GetLines: scan: %w", err)
		}
		lines = append(lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("GetLines: rows: %w", err)
	}
	return lines, nil
}

func (r *AccountRepository) GetForUpdate(ctx context.Context, tx *sql.Tx, tenantID, id uuid.UUID) (*domain.Account, error) {
	row := tx.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE tenant_id = $1 AND id = $2 FOR UPDATE`,
		tenantID, id,
	)
	a, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetForUpdate: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("GetForUpdate: %w", err)
	}
	return a, nil
}

func (r *AccountRepository) UpdateBalance(ctx context.Context, tx *sql.Tx, id uuid.UUID, newBalance decimal.Decimal) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE accounts SET balance = $1 WHERE id = $2`, newBalance, id,
	)
	if err != nil {
		return fmt.Errorf("UpdateBalance: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("UpdateBalance: rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("UpdateBalance: %w", domain.ErrNotFound)
	}
	return nil
}

func scanAccount(s scanner) (*domain.Account, error) {
	var a domain.Account
	err := s.Scan(
		&a.ID, &a.TenantID, &a.Name, &a.Code, &a.Type, &a.Balance, &a.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}
