package repository

import (
	"context"
	"database/sql"
	"fmt"
)

// scanner is the row shape shared by sql.Row and sql.Rows, letting the
// repositories use one scan helper for single- and multi-row queries.
type scanner interface {
	Scan(dest ...any) error
}

// DB wraps the connection pool and hands out the transactions that
// posting runs in. Every allocation writes its payment, journal entry
// and lines inside one BeginTx transaction so a partial posting never
// becomes visible.
type DB struct {
	pool *sql.DB
}

func NewDB(pool *sql.DB) *DB {
	return &DB{pool: pool}
}

// Conn exposes the raw pool for reads that do not need a transaction.
func (d *DB) Conn() *sql.DB {
	return d.pool
}

func (d *DB) BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error) {
	tx, err := d.pool.BeginTx(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("BeginTx: %w", err)
	}
	return tx, nil
}
