package core

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgStore opens load transactions on a pgx connection pool.
type PgStore struct {
	pool *pgxpool.Pool
}

// NewPgStore wraps pool.
func NewPgStore(pool *pgxpool.Pool) *PgStore {
	return &PgStore{pool: pool}
}

// PoolOptions sizes the connection pool. Zero values keep pgxpool defaults.
type PoolOptions struct {
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// Connect opens a pool for databaseURL and verifies it with a ping.
func Connect(ctx context.Context, databaseURL string, opts PoolOptions) (*PgStore, error) {
	poolConfig, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}

	if opts.MaxConns > 0 {
		poolConfig.MaxConns = int32(opts.MaxConns)
	}
	if opts.MinConns > 0 {
		poolConfig.MinConns = int32(opts.MinConns)
	}
	if opts.MaxConnLifetime > 0 {
		poolConfig.MaxConnLifetime = opts.MaxConnLifetime
	}
	if opts.MaxConnIdleTime > 0 {
		poolConfig.MaxConnIdleTime = opts.MaxConnIdleTime
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return NewPgStore(pool), nil
}

// Database returns the name of the connected database.
func (s *PgStore) Database() string {
	return s.pool.Config().ConnConfig.Database
}

// Close closes every pooled connection.
func (s *PgStore) Close() {
	s.pool.Close()
}

// Ping verifies a connection can be acquired and used.
func (s *PgStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Begin acquires a dedicated connection and starts a transaction on it.
// COPY needs the raw connection, so the transaction keeps hold of it until
// Commit or Rollback.
func (s *PgStore) Begin(ctx context.Context) (Tx, error) {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}

	tx, err := conn.Begin(ctx)
	if err != nil {
		conn.Release()
		return nil, err
	}

	return &pgTx{conn: conn, tx: tx}, nil
}

type pgTx struct {
	conn    *pgxpool.Conn
	tx      pgx.Tx
	release sync.Once
}

func (t *pgTx) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return t.tx.Exec(ctx, sql, args...)
}

func (t *pgTx) CopyFrom(ctx context.Context, r io.Reader, sql string) (pgconn.CommandTag, error) {
	return t.conn.Conn().PgConn().CopyFrom(ctx, r, sql)
}

func (t *pgTx) Commit(ctx context.Context) error {
	defer t.done()
	return t.tx.Commit(ctx)
}

func (t *pgTx) Rollback(ctx context.Context) error {
	defer t.done()
	return t.tx.Rollback(ctx)
}

func (t *pgTx) done() {
	t.release.Do(t.conn.Release)
}
