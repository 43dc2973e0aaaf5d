package trm

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
)

type Transaction interface {
	Commit() error
	Rollback() error
}

// Querier is satisfied by both *sqlx.DB and *sqlx.Tx.
type Querier interface {
	sqlx.ExtContext
	GetContext(ctx context.Context, dest any, query string, args ...any) error
	SelectContext(ctx context.Context, dest any, query string, args ...any) error
}

type txKey struct{}

func withTx(ctx context.Context, tx *sqlx.Tx) context.Context {
	return context.WithValue(ctx, txKey{}, tx)
}

func ExtractTx(ctx context.Context) *sqlx.Tx {
	tx, ok := ctx.Value(txKey{}).(*sqlx.Tx)
	if !ok {
		return nil
	}
	return tx
}

// QuerierFrom returns the transaction bound to ctx, or db when there is none.
func QuerierFrom(ctx context.Context, db *sqlx.DB) Querier {
	if tx := ExtractTx(ctx); tx != nil {
		return tx
	}
	return db
}

type Option func(*sql.TxOptions)

func WithIsolation(level sql.IsolationLevel) Option {
	return func(o *sql.TxOptions) { o.Isolation = level }
}

func ReadOnly() Option {
	return func(o *sql.TxOptions) { o.ReadOnly = true }
}

type Manager interface {
	BeginTx(ctx context.Context, opts ...Option) (context.Context, Transaction, error)
	// Do runs callback in a transaction. A transaction already carried by ctx
	// is joined instead of starting a new one; the outermost Do commits.
	Do(ctx context.Context, callback func(ctx context.Context) error, opts ...Option) error
}

type txManager struct {
	db *sqlx.DB
}

func NewManager(db *sqlx.DB) Manager {
	return &txManager{
		db: db,
	}
}

func (t *txManager) BeginTx(ctx context.Context, opts ...Option) (context.Context, Transaction, error) {
	txOpts := &sql.TxOptions{}
	for _, opt := range opts {
		opt(txOpts)
	}
	tx, err := t.db.BeginTxx(ctx, txOpts)
	if err != nil {
		return nil, nil, err
	}
	return withTx(ctx, tx), tx, nil
}

func (t *txManager) Do(ctx context.Context, callback func(ctx context.Context) error, opts ...Option) error {
	if ExtractTx(ctx) != nil {
		return callback(ctx)
	}

	ctx, tx, err := t.BeginTx(ctx, opts...)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := callback(ctx); err != nil {
		return err
	}
	return tx.Commit()
}
