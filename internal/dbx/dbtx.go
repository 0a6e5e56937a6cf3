// Package dbx provides the small database abstractions shared by repositories
// and services: DBTX, implemented by both *sql.DB and *sql.Tx, and helpers to
// run one unit of work inside a transaction.
package dbx

import (
	"context"
	"database/sql"
)

// DBTX is the subset of database/sql used by the repositories.
// Both *sql.DB and *sql.Tx satisfy this interface.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// TxFunc is a unit of work bound to a transactional handle.
type TxFunc func(ctx context.Context, tx DBTX) error

// DB is what services depend on: plain reads through DBTX and one
// transaction per mutating operation through RunInTx.
type DB interface {
	DBTX
	RunInTx(ctx context.Context, fn TxFunc) error
}

// Conn adapts *sql.DB to DB.
type Conn struct {
	*sql.DB
}

func NewConn(db *sql.DB) *Conn {
	return &Conn{DB: db}
}

func (c *Conn) RunInTx(ctx context.Context, fn TxFunc) error {
	return WithTx(ctx, c.DB, nil, fn)
}

// WithTx begins a transaction, runs fn with a transactional handle, and then
// commits on success or rolls back on error/panic. Panics are rethrown.
//
// Typical use:
//
//	err := dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) error {
//	    _, err := tx.ExecContext(ctx, "UPDATE products SET is_active = false WHERE slug = $1", slug)
//	    return err
//	})
func WithTx(ctx context.Context, db *sql.DB, opts *sql.TxOptions, fn TxFunc) (err error) {
	tx, err := db.BeginTx(ctx, opts)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
			return
		}
		err = tx.Commit()
	}()

	err = fn(ctx, tx)
	return err
}
