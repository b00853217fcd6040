package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/tallyhq/tally-backend/internal/domain"
)

type TransactionRepository struct {
	db *sql.DB
}

func NewTransactionRepository(db *sql.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

// NextNumber reserves the tenant's next transaction number. Runs inside
// the posting transaction so a rollback releases the number gap-free only
// per tx; gaps across rollbacks are acceptable.
func (r *TransactionRepository) NextNumber(ctx context.Context, tx *sql.Tx, tenantID uuid.UUID) (int64, error) {
	var n int64
	err := tx.QueryRowContext(ctx,
		`UPDATE tenant_sequences SET transaction_number = transaction_number + 1
		 WHERE tenant_id = $1
		 RETURNING transaction_number`,
		tenantID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("NextNumber: %w", err)
	}
	return n, nil
}

// Create inserts the header and its lines. The caller owns the transaction;
// unbalanced input is rejected here as a last line of defense.
func (r *TransactionRepository) Create(ctx context.Context, tx *sql.Tx, txn *domain.Transaction) error {
	if !txn.Balanced() {
		return fmt.Errorf("Create: %w", domain.ErrUnbalancedTransaction)
	}

	_, err := tx.ExecContext(ctx,
		`INSERT INTO transactions (id, tenant_id, number, date, description, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		txn.ID, txn.TenantID, txn.Number, txn.Date, txn.Description, txn.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("Create: header: %w", err)
	}

	for i, l := range txn.Lines {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO transaction_lines (transaction_id, position, account_id, debit, credit)
			 VALUES ($1, $2, $3, $4, $5)`,
			txn.ID, i, l.AccountID, l.Debit, l.Credit,
		)
		if err != nil {
			return fmt.Errorf("Create: line %d: %w", i, err)
		}
	}
	return nil
}

func (r *TransactionRepository) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*domain.Transaction, error) {
	var txn domain.Transaction
	err := r.db.QueryRowContext(ctx,
		`SELECT id, tenant_id, number, date, description, created_at
		 FROM transactions WHERE tenant_id = $1 AND id = $2`,
		tenantID, id,
	).Scan(&txn.ID, &txn.TenantID, &txn.Number, &txn.Date, &txn.Description, &txn.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("GetByID: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("GetByID: %w", err)
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT account_id, debit, credit FROM transaction_lines
		 WHERE transaction_id = $1 ORDER BY position`,
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("GetByID: lines: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var l domain.TransactionLine
		if err := rows.Scan(&l.AccountID, &l.Debit, &l.Credit); err != nil {
			return nil, fmt.Errorf("GetByID: scan line: %w", err)
		}
		txn.Lines = append(txn.Lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("GetByID: rows: %w", err)
	}
	return &txn, nil
}
