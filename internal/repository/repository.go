// Package repository contains the database access layer.
//
// Queries are written against PostgreSQL through database/sql with the pgx
// stdlib driver. Each method maps one SQL statement; business logic and
// error translation live in the service layer. The Querier interface
// exists so services can be tested against in-memory fakes.
package repository

import (
	"context"
	"database/sql"
)

// DBTX is the subset of database/sql used by Queries. It is satisfied by
// both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

// Queries provides access to all database queries.
type Queries struct {
	db DBTX
}

// New creates a Queries instance backed by the given database handle.
func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// WithTx returns a Queries instance that runs against the given transaction.
func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}
