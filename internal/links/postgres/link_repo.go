// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Linkloom Contributors

// Package postgres implements the link repository using PostgreSQL.
package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/linkloom/linkloom/internal/links"
)

// DB is the narrow pool surface the repository needs. *pgxpool.Pool
// satisfies it, as does pgxmock.PgxPoolIface in tests.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// LinkRepository implements links.LinkRepository using PostgreSQL.
type LinkRepository struct {
	db DB
}

// NewLinkRepository creates a new LinkRepository.
func NewLinkRepository(db DB) *LinkRepository {
	return &LinkRepository{db: db}
}

// Create stores a new link. A violated unique index on the URL is
// reported by wrapping links.ErrDuplicate; this is the authoritative
// duplicate guard under concurrent insertion.
func (r *LinkRepository) Create(ctx context.Context, link *links.Link) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO links (id, url, added_by, date_added)
		VALUES ($1, $2, $3, $4)
	`, link.ID.String(), link.URL, link.AddedBy, link.DateAdded)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return oops.Code("LINK_DUPLICATE").
				With("url", link.URL).
				With("constraint", pgErr.ConstraintName).
				Wrap(links.ErrDuplicate)
		}
		return oops.Code("LINK_CREATE_FAILED").
			With("operation", "insert link").
			With("url", link.URL).
			Wrap(err)
	}
	return nil
}

// Get retrieves a link by ID.
func (r *LinkRepository) Get(ctx context.Context, id ulid.ULID) (*links.Link, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, url, added_by, date_added
		FROM links
		WHERE id = $1
	`, id.String())

	link, err := scanLink(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("LINK_NOT_FOUND").
			With("id", id.String()).
			Wrap(links.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("LINK_GET_FAILED").
			With("operation", "get link by id").
			With("id", id.String()).
			Wrap(err)
	}
	return link, nil
}

// List retrieves links most-recently-added first with pagination.
// ULIDs are lexicographically sortable by creation time, so ordering
// by id descending is newest-first.
func (r *LinkRepository) List(ctx context.Context, opts links.ListOptions) ([]*links.Link, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = links.DefaultLimit
	}
	rows, err := r.db.Query(ctx, `
		SELECT id, url, added_by, date_added
		FROM links
		ORDER BY id DESC
		LIMIT $1 OFFSET $2
	`, limit, opts.Offset)
	if err != nil {
		return nil, oops.Code("LINK_QUERY_FAILED").
			With("operation", "list links").
			Wrap(err)
	}
	defer rows.Close()

	return scanLinks(rows)
}

// ExistsByURL checks whether a link with the given URL exists.
func (r *LinkRepository) ExistsByURL(ctx context.Context, url string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM links WHERE url = $1)
	`, url).Scan(&exists)
	if err != nil {
		return false, oops.Code("LINK_EXISTS_FAILED").
			With("operation", "check url exists").
			With("url", url).
			Wrap(err)
	}
	return exists, nil
}

// scanLink scans a single row into a Link.
// Callers are responsible for handling pgx.ErrNoRows.
func scanLink(row pgx.Row) (*links.Link, error) {
	var (
		idStr     string
		url       string
		addedBy   string
		dateAdded time.Time
	)

	err := row.Scan(&idStr, &url, &addedBy, &dateAdded)
	if err != nil {
		// Propagate pgx.ErrNoRows unchanged for callers to handle with context.
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err //nolint:wrapcheck // Callers wrap with context-specific info
		}
		return nil, oops.Code("LINK_SCAN_FAILED").
			With("operation", "scan link").
			Wrap(err)
	}

	id, err := ulid.Parse(idStr)
	if err != nil {
		return nil, oops.Code("LINK_INVALID_ID").
			With("operation", "parse link id").
			With("id", idStr).
			Wrap(err)
	}

	return &links.Link{
		ID:        id,
		URL:       url,
		AddedBy:   addedBy,
		DateAdded: dateAdded,
	}, nil
}

// scanLinks collects all rows into links, surfacing row iteration
// errors.
func scanLinks(rows pgx.Rows) ([]*links.Link, error) {
	var result []*links.Link
	for rows.Next() {
		link, err := scanLink(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, link)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("LINK_QUERY_FAILED").
			With("operation", "iterate links").
			Wrap(err)
	}
	return result, nil
}

// Compile-time interface check.
var _ links.LinkRepository = (*LinkRepository)(nil)
