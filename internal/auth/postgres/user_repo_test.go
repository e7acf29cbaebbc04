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

	"github.com/linkloom/linkloom/internal/auth"
	"github.com/linkloom/linkloom/internal/auth/postgres"
	"github.com/linkloom/linkloom/pkg/errutil"
)

func newMockPool(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err, "failed to create mock")
	t.Cleanup(mock.Close)
	return mock
}

func testUser() *auth.User {
	return &auth.User{
		ID:           ulid.Make(),
		Username:     "alice",
		Email:        "alice@example.com",
		PasswordHash: "$argon2id$v=19$m=65536,t=1,p=4$salt$hash",
		IsAdmin:      false,
		Disabled:     false,
		DateAdded:    time.Now().UTC().Truncate(time.Microsecond),
	}
}

func userRows(users ...*auth.User) *pgxmock.Rows {
	rows := pgxmock.NewRows([]string{"id", "username", "email", "password_hash", "is_admin", "disabled", "date_added"})
	for _, u := range users {
		rows.AddRow(u.ID.String(), u.Username, u.Email, u.PasswordHash, u.IsAdmin, u.Disabled, u.DateAdded)
	}
	return rows
}

func TestUserRepository_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("inserts a user", func(t *testing.T) {
		mock := newMockPool(t)
		repo := postgres.NewUserRepository(mock)
		user := testUser()

		mock.ExpectExec(`INSERT INTO users`).
			WithArgs(user.ID.String(), user.Username, user.Email, user.PasswordHash,
				user.IsAdmin, user.Disabled, user.DateAdded).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		err := repo.Create(ctx, user)
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet(), "unfulfilled expectations")
	})

	t.Run("unique violation maps to duplicate", func(t *testing.T) {
		mock := newMockPool(t)
		repo := postgres.NewUserRepository(mock)
		user := testUser()

		mock.ExpectExec(`INSERT INTO users`).
			WithArgs(user.ID.String(), user.Username, user.Email, user.PasswordHash,
				user.IsAdmin, user.Disabled, user.DateAdded).
			WillReturnError(&pgconn.PgError{
				Code:           pgerrcode.UniqueViolation,
				ConstraintName: "users_email_unique",
			})

		err := repo.Create(ctx, user)
		require.Error(t, err)
		assert.ErrorIs(t, err, auth.ErrDuplicate)
		errutil.AssertErrorCode(t, err, "USER_DUPLICATE")
	})

	t.Run("other database errors are not duplicates", func(t *testing.T) {
		mock := newMockPool(t)
		repo := postgres.NewUserRepository(mock)
		user := testUser()

		mock.ExpectExec(`INSERT INTO users`).
			WithArgs(user.ID.String(), user.Username, user.Email, user.PasswordHash,
				user.IsAdmin, user.Disabled, user.DateAdded).
			WillReturnError(errors.New("connection refused"))

		err := repo.Create(ctx, user)
		require.Error(t, err)
		assert.NotErrorIs(t, err, auth.ErrDuplicate)
		errutil.AssertErrorCode(t, err, "USER_CREATE_FAILED")
	})
}

func TestUserRepository_GetByID(t *testing.T) {
	ctx := context.Background()

	t.Run("retrieves existing user", func(t *testing.T) {
		mock := newMockPool(t)
		repo := postgres.NewUserRepository(mock)
		user := testUser()

		mock.ExpectQuery(`SELECT id, username, email, password_hash, is_admin, disabled, date_added`).
			WithArgs(user.ID.String()).
			WillReturnRows(userRows(user))

		got, err := repo.GetByID(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, user.ID, got.ID)
		assert.Equal(t, user.Username, got.Username)
		assert.Equal(t, user.Email, got.Email)
	})

	t.Run("missing user is ErrNotFound", func(t *testing.T) {
		mock := newMockPool(t)
		repo := postgres.NewUserRepository(mock)
		id := ulid.Make()

		mock.ExpectQuery(`SELECT id, username, email, password_hash, is_admin, disabled, date_added`).
			WithArgs(id.String()).
			WillReturnRows(userRows())

		_, err := repo.GetByID(ctx, id)
		require.Error(t, err)
		assert.ErrorIs(t, err, auth.ErrNotFound)
		errutil.AssertErrorCode(t, err, "USER_NOT_FOUND")
	})

	t.Run("unparseable stored id is an error", func(t *testing.T) {
		mock := newMockPool(t)
		repo := postgres.NewUserRepository(mock)
		id := ulid.Make()

		rows := pgxmock.NewRows([]string{"id", "username", "email", "password_hash", "is_admin", "disabled", "date_added"}).
			AddRow("not-a-ulid", "alice", "alice@example.com", "hash", false, false, time.Now())
		mock.ExpectQuery(`SELECT id, username, email, password_hash, is_admin, disabled, date_added`).
			WithArgs(id.String()).
			WillReturnRows(rows)

		_, err := repo.GetByID(ctx, id)
		require.Error(t, err)
	})
}

func TestUserRepository_GetByUsername(t *testing.T) {
	ctx := context.Background()

	t.Run("lookup is case-insensitive", func(t *testing.T) {
		mock := newMockPool(t)
		repo := postgres.NewUserRepository(mock)
		user := testUser()

		mock.ExpectQuery(`LOWER\(username\) = LOWER\(\$1\)`).
			WithArgs("ALICE").
			WillReturnRows(userRows(user))

		got, err := repo.GetByUsername(ctx, "ALICE")
		require.NoError(t, err)
		assert.Equal(t, user.Username, got.Username)
	})

	t.Run("missing user is ErrNotFound", func(t *testing.T) {
		mock := newMockPool(t)
		repo := postgres.NewUserRepository(mock)

		mock.ExpectQuery(`LOWER\(username\) = LOWER\(\$1\)`).
			WithArgs("ghost").
			WillReturnRows(userRows())

		_, err := repo.GetByUsername(ctx, "ghost")
		require.Error(t, err)
		assert.ErrorIs(t, err, auth.ErrNotFound)
	})
}

func TestUserRepository_GetByEmail(t *testing.T) {
	ctx := context.Background()

	t.Run("lookup is case-insensitive", func(t *testing.T) {
		mock := newMockPool(t)
		repo := postgres.NewUserRepository(mock)
		user := testUser()

		mock.ExpectQuery(`LOWER\(email\) = LOWER\(\$1\)`).
			WithArgs("Alice@Example.com").
			WillReturnRows(userRows(user))

		got, err := repo.GetByEmail(ctx, "Alice@Example.com")
		require.NoError(t, err)
		assert.Equal(t, user.Email, got.Email)
	})

	t.Run("missing user is ErrNotFound", func(t *testing.T) {
		mock := newMockPool(t)
		repo := postgres.NewUserRepository(mock)

		mock.ExpectQuery(`LOWER\(email\) = LOWER\(\$1\)`).
			WithArgs("ghost@example.com").
			WillReturnRows(userRows())

		_, err := repo.GetByEmail(ctx, "ghost@example.com")
		require.Error(t, err)
		assert.ErrorIs(t, err, auth.ErrNotFound)
		errutil.AssertErrorCode(t, err, "USER_NOT_FOUND")
	})
}

func TestUserRepository_UpdatePassword(t *testing.T) {
	ctx := context.Background()

	t.Run("updates the hash", func(t *testing.T) {
		mock := newMockPool(t)
		repo := postgres.NewUserRepository(mock)
		id := ulid.Make()

		mock.ExpectExec(`UPDATE users SET password_hash`).
			WithArgs(id.String(), "$argon2id$new").
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		err := repo.UpdatePassword(ctx, id, "$argon2id$new")
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet(), "unfulfilled expectations")
	})

	t.Run("zero rows affected is ErrNotFound", func(t *testing.T) {
		mock := newMockPool(t)
		repo := postgres.NewUserRepository(mock)
		id := ulid.Make()

		mock.ExpectExec(`UPDATE users SET password_hash`).
			WithArgs(id.String(), "$argon2id$new").
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		err := repo.UpdatePassword(ctx, id, "$argon2id$new")
		require.Error(t, err)
		assert.ErrorIs(t, err, auth.ErrNotFound)
		errutil.AssertErrorCode(t, err, "USER_NOT_FOUND")
	})
}
