// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Linkloom Contributors

package postgres_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/oklog/ulid/v2"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linkloom/linkloom/internal/links"
	"github.com/linkloom/linkloom/internal/links/postgres"
	"github.com/linkloom/linkloom/pkg/errutil"
)

func newMockPool(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err, "failed to create mock")
	t.Cleanup(mock.Close)
	return mock
}

func testLink() *links.Link {
	return &links.Link{
		ID:        ulid.Make(),
		URL:       "https://example.com/article",
		AddedBy:   "alice",
		DateAdded: time.Now().UTC().Truncate(time.Microsecond),
	}
}

func linkRows(list ...*links.Link) *pgxmock.Rows {
	rows := pgxmock.NewRows([]string{"id", "url", "added_by", "date_added"})
	for _, l := range list {
		rows.AddRow(l.ID.String(), l.URL, l.AddedBy, l.DateAdded)
	}
	return rows
}

func TestLinkRepository_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("inserts a link", func(t *testing.T) {
		mock := newMockPool(t)
		repo := postgres.NewLinkRepository(mock)
		link := testLink()

		mock.ExpectExec(`INSERT INTO links`).
			WithArgs(link.ID.String(), link.URL, link.AddedBy, link.DateAdded).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		err := repo.Create(ctx, link)
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet(), "unfulfilled expectations")
	})

	t.Run("unique violation maps to duplicate", func(t *testing.T) {
		mock := newMockPool(t)
		repo := postgres.NewLinkRepository(mock)
		link := testLink()

		mock.ExpectExec(`INSERT INTO links`).
			WithArgs(link.ID.String(), link.URL, link.AddedBy, link.DateAdded).
			WillReturnError(&pgconn.PgError{
				Code:           pgerrcode.UniqueViolation,
				ConstraintName: "links_url_unique",
			})

		err := repo.Create(ctx, link)
		require.Error(t, err)
		assert.ErrorIs(t, err, links.ErrDuplicate)
		errutil.AssertErrorCode(t, err, "LINK_DUPLICATE")
	})

	t.Run("other database errors are not duplicates", func(t *testing.T) {
		mock := newMockPool(t)
		repo := postgres.NewLinkRepository(mock)
		link := testLink()

		mock.ExpectExec(`INSERT INTO links`).
			WithArgs(link.ID.String(), link.URL, link.AddedBy, link.DateAdded).
			WillReturnError(errors.New("connection refused"))

		err := repo.Create(ctx, link)
		require.Error(t, err)
		assert.NotErrorIs(t, err, links.ErrDuplicate)
		errutil.AssertErrorCode(t, err, "LINK_CREATE_FAILED")
	})
}

func TestLinkRepository_Get(t *testing.T) {
	ctx := context.Background()

	t.Run("retrieves existing link", func(t *testing.T) {
		mock := newMockPool(t)
		repo := postgres.NewLinkRepository(mock)
		link := testLink()

		mock.ExpectQuery(`SELECT id, url, added_by, date_added`).
			WithArgs(link.ID.String()).
			WillReturnRows(linkRows(link))

		got, err := repo.Get(ctx, link.ID)
		require.NoError(t, err)
		assert.Equal(t, link.ID, got.ID)
		assert.Equal(t, link.URL, got.URL)
		assert.Equal(t, link.AddedBy, got.AddedBy)
	})

	t.Run("missing link is ErrNotFound", func(t *testing.T) {
		mock := newMockPool(t)
		repo := postgres.NewLinkRepository(mock)
		id := ulid.Make()

		mock.ExpectQuery(`SELECT id, url, added_by, date_added`).
			WithArgs(id.String()).
			WillReturnRows(linkRows())

		_, err := repo.Get(ctx, id)
		require.Error(t, err)
		assert.ErrorIs(t, err, links.ErrNotFound)
		errutil.AssertErrorCode(t, err, "LINK_NOT_FOUND")
	})
}

func TestLinkRepository_List(t *testing.T) {
	ctx := context.Background()

	t.Run("returns a page of links", func(t *testing.T) {
		mock := newMockPool(t)
		repo := postgres.NewLinkRepository(mock)
		a, b := testLink(), testLink()

		mock.ExpectQuery(`ORDER BY id DESC`).
			WithArgs(10, 0).
			WillReturnRows(linkRows(b, a))

		got, err := repo.List(ctx, links.ListOptions{Offset: 0, Limit: 10})
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, b.ID, got[0].ID)
		assert.Equal(t, a.ID, got[1].ID)
	})

	t.Run("zero limit falls back to the default page size", func(t *testing.T) {
		mock := newMockPool(t)
		repo := postgres.NewLinkRepository(mock)

		mock.ExpectQuery(`ORDER BY id DESC`).
			WithArgs(links.DefaultLimit, 0).
			WillReturnRows(linkRows())

		got, err := repo.List(ctx, links.ListOptions{})
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("offset is passed through", func(t *testing.T) {
		mock := newMockPool(t)
		repo := postgres.NewLinkRepository(mock)

		mock.ExpectQuery(`ORDER BY id DESC`).
			WithArgs(5, 20).
			WillReturnRows(linkRows())

		_, err := repo.List(ctx, links.ListOptions{Offset: 20, Limit: 5})
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet(), "unfulfilled expectations")
	})

	t.Run("query error surfaces", func(t *testing.T) {
		mock := newMockPool(t)
		repo := postgres.NewLinkRepository(mock)

		mock.ExpectQuery(`ORDER BY id DESC`).
			WithArgs(links.DefaultLimit, 0).
			WillReturnError(errors.New("connection refused"))

		_, err := repo.List(ctx, links.ListOptions{})
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "LINK_QUERY_FAILED")
	})
}

func TestLinkRepository_ExistsByURL(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name   string
		exists bool
	}{
		{"url registered", true},
		{"url not registered", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := newMockPool(t)
			repo := postgres.NewLinkRepository(mock)

			rows := pgxmock.NewRows([]string{"exists"}).AddRow(tt.exists)
			mock.ExpectQuery(`SELECT EXISTS`).
				WithArgs("https://example.com/article").
				WillReturnRows(rows)

			got, err := repo.ExistsByURL(ctx, "https://example.com/article")
			require.NoError(t, err)
			assert.Equal(t, tt.exists, got)
		})
	}
}
