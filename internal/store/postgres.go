// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Linkloom Contributors

// Package store provides the PostgreSQL connection lifecycle and
// schema migrations for the link registry.
package store

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/oops"
	"github.com/sethvargo/go-retry"
)

// Startup connection retry policy. The database may come up after the
// service under orchestration, so the initial ping backs off instead of
// failing fast.
const (
	connectRetries     = 5
	connectBackoffBase = 500 * time.Millisecond
)

// Store owns the pgx connection pool. It is opened once at process
// start, shared by reference with every repository, and closed at
// shutdown.
type Store struct {
	pool *pgxpool.Pool
}

// Open connects to PostgreSQL and waits for the database to answer a
// ping, retrying with exponential backoff.
func Open(ctx context.Context, dsn string) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, oops.Code("DB_CONNECT_FAILED").
			With("operation", "create pool").
			Wrap(err)
	}

	backoff := retry.WithMaxRetries(connectRetries, retry.NewExponential(connectBackoffBase))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		if pingErr := pool.Ping(ctx); pingErr != nil {
			return retry.RetryableError(pingErr)
		}
		return nil
	})
	if err != nil {
		pool.Close()
		return nil, oops.Code("DB_CONNECT_FAILED").
			With("operation", "ping database").
			Wrap(err)
	}

	return &Store{pool: pool}, nil
}

// Pool returns the underlying connection pool for repositories.
func (s *Store) Pool() *pgxpool.Pool {
	return s.pool
}

// Ping checks database reachability. Used by the readiness probe.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		return oops.Code("DB_PING_FAILED").Wrap(err)
	}
	return nil
}

// Close closes the connection pool.
func (s *Store) Close() {
	s.pool.Close()
}
