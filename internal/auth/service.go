// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Linkloom Contributors

package auth

import (
	"context"
	"errors"
	"log/slog"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// SubjectClaim is the claim carrying the authenticated identity.
// Login is keyed on email, so the subject is the user's email address.
const SubjectClaim = "sub"

// dummyPasswordHash is used when a user doesn't exist to prevent timing attacks.
// We still run password verification to make response time consistent.
// This is NOT a real credential - it's a fake hash that will never match any password.
//
//nolint:gosec // G101: This is an intentionally fake hash for timing attack prevention, not a credential.
const dummyPasswordHash = "$argon2id$v=19$m=65536,t=1,p=4$AAAAAAAAAAAAAAAAAAAAAA$AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"

// RegisterInput carries the fields accepted when registering a user.
// Password arrives in plaintext and is stored only as a hash.
type RegisterInput struct {
	Username string
	Email    string
	Password string
	IsAdmin  bool
}

// Service provides authentication and user-management operations.
type Service struct {
	users  UserRepository
	hasher PasswordHasher
	tokens *TokenIssuer
	logger *slog.Logger
}

// NewService creates a new Service.
func NewService(users UserRepository, hasher PasswordHasher, tokens *TokenIssuer) (*Service, error) {
	return NewServiceWithLogger(users, hasher, tokens, slog.Default())
}

// NewServiceWithLogger creates a new Service with an explicit logger.
func NewServiceWithLogger(users UserRepository, hasher PasswordHasher, tokens *TokenIssuer, logger *slog.Logger) (*Service, error) {
	if users == nil {
		return nil, oops.Code("AUTH_CONFIG_INVALID").Errorf("users repository is required")
	}
	if hasher == nil {
		return nil, oops.Code("AUTH_CONFIG_INVALID").Errorf("password hasher is required")
	}
	if tokens == nil {
		return nil, oops.Code("AUTH_CONFIG_INVALID").Errorf("token issuer is required")
	}
	if logger == nil {
		return nil, oops.Code("AUTH_CONFIG_INVALID").Errorf("logger is required")
	}
	return &Service{
		users:  users,
		hasher: hasher,
		tokens: tokens,
		logger: logger,
	}, nil
}

// Authenticate verifies credentials keyed on email. Bad credentials are
// an expected outcome, reported as ok=false with a nil error so callers
// can distinguish them from store failures; unknown email and wrong
// password are indistinguishable to the caller. Uses a dummy hash for
// unknown users so response time does not leak which emails exist.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*User, bool, error) {
	user, lookupErr := s.users.GetByEmail(ctx, email)

	targetHash := dummyPasswordHash
	userExists := false
	if lookupErr != nil {
		if !errors.Is(lookupErr, ErrNotFound) {
			return nil, false, oops.Code("AUTH_LOOKUP_FAILED").
				With("operation", "get user by email").
				Wrap(lookupErr)
		}
	} else {
		targetHash = user.PasswordHash
		userExists = true
	}

	// Always verify so the work done is the same for unknown users.
	valid, verifyErr := s.hasher.Verify(password, targetHash)
	if verifyErr != nil {
		if !userExists {
			return nil, false, nil
		}
		return nil, false, oops.Code("AUTH_VERIFY_FAILED").
			With("operation", "verify password").
			Wrap(verifyErr)
	}

	if !userExists || !valid {
		return nil, false, nil
	}

	return user, true, nil
}

// CreateAccessToken issues a signed access token whose subject is the
// user's email.
func (s *Service) CreateAccessToken(user *User) (string, error) {
	if user == nil {
		return "", oops.Code("AUTH_CONFIG_INVALID").Errorf("user is required")
	}
	return s.tokens.Issue(map[string]any{SubjectClaim: user.Email})
}

// TokenType returns the scheme label to present alongside issued tokens.
func (s *Service) TokenType() string {
	return DefaultTokenType
}

// Register creates a new user account. The duplicate pre-check is a
// fast path; the authoritative guard is the storage unique index, whose
// violation the repository reports as ErrDuplicate (code
// USER_DUPLICATE here) even under concurrent registration.
func (s *Service) Register(ctx context.Context, input RegisterInput) (*User, error) {
	if err := ValidateUsername(input.Username); err != nil {
		return nil, err
	}
	if err := ValidateEmail(input.Email); err != nil {
		return nil, err
	}

	if err := s.checkAvailable(ctx, input); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	user, err := NewUser(input.Username, input.Email, hash, input.IsAdmin)
	if err != nil {
		return nil, err
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, ErrDuplicate) {
			return nil, oops.Code("USER_DUPLICATE").
				With("username", input.Username).
				With("email", input.Email).
				Wrapf(err, "username or email already registered")
		}
		return nil, oops.Code("USER_CREATE_FAILED").
			With("username", input.Username).
			Wrap(err)
	}

	s.logger.InfoContext(ctx, "user registered",
		"user_id", user.ID.String(),
		"username", user.Username,
		"is_admin", user.IsAdmin,
	)

	return user, nil
}

// checkAvailable rejects a registration early when the username or
// email is already taken.
func (s *Service) checkAvailable(ctx context.Context, input RegisterInput) error {
	if _, err := s.users.GetByUsername(ctx, input.Username); err == nil {
		return oops.Code("USER_DUPLICATE").
			With("username", input.Username).
			Errorf("username %q already registered", input.Username)
	} else if !errors.Is(err, ErrNotFound) {
		return oops.Code("USER_CREATE_FAILED").
			With("operation", "check username").
			Wrap(err)
	}

	if _, err := s.users.GetByEmail(ctx, input.Email); err == nil {
		return oops.Code("USER_DUPLICATE").
			With("email", input.Email).
			Errorf("email %q already registered", input.Email)
	} else if !errors.Is(err, ErrNotFound) {
		return oops.Code("USER_CREATE_FAILED").
			With("operation", "check email").
			Wrap(err)
	}

	return nil
}

// UpdatePassword changes a user's password after verifying the old one
// against the stored hash, returning the refreshed record.
func (s *Service) UpdatePassword(ctx context.Context, id ulid.ULID, oldPassword, newPassword string) (*User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, oops.Code("USER_NOT_FOUND").
				With("id", id.String()).
				Wrap(err)
		}
		return nil, oops.Code("USER_UPDATE_FAILED").
			With("operation", "get user by id").
			Wrap(err)
	}

	valid, err := s.hasher.Verify(oldPassword, user.PasswordHash)
	if err != nil {
		return nil, oops.Code("AUTH_VERIFY_FAILED").
			With("operation", "verify old password").
			Wrap(err)
	}
	if !valid {
		return nil, oops.Code("AUTH_INVALID_CREDENTIALS").
			Errorf("old password does not match")
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return nil, err
	}

	if err := s.users.UpdatePassword(ctx, id, hash); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, oops.Code("USER_NOT_FOUND").
				With("id", id.String()).
				Wrap(err)
		}
		return nil, oops.Code("USER_UPDATE_FAILED").
			With("operation", "update password").
			Wrap(err)
	}

	refreshed, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, oops.Code("USER_UPDATE_FAILED").
			With("operation", "reload user").
			Wrap(err)
	}

	s.logger.InfoContext(ctx, "password updated", "user_id", id.String())

	return refreshed, nil
}

// CurrentUser resolves the active user for a verified bearer token.
// This is the request-authorization state machine: verify the token,
// extract the subject, load the user, then apply the disabled gate.
// Token and lookup failures carry their own codes; the transport maps
// all of them to the same unauthorized response.
func (s *Service) CurrentUser(ctx context.Context, tokenString string) (*User, error) {
	claims, err := s.tokens.Verify(tokenString)
	if err != nil {
		return nil, err
	}

	subject, ok := claims[SubjectClaim].(string)
	if !ok || subject == "" {
		return nil, oops.Code("TOKEN_MALFORMED").Errorf("missing subject claim")
	}

	user, err := s.users.GetByEmail(ctx, subject)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, oops.Code("USER_NOT_FOUND").Wrap(err)
		}
		return nil, oops.Code("AUTH_LOOKUP_FAILED").
			With("operation", "get user by subject").
			Wrap(err)
	}

	if user.Disabled {
		return nil, oops.Code("USER_DISABLED").
			With("user_id", user.ID.String()).
			Errorf("user is not active")
	}

	return user, nil
}

// RequireAdmin gates an operation on the admin flag. Composes after
// CurrentUser.
func (s *Service) RequireAdmin(user *User) error {
	if user == nil || !user.IsAdmin {
		return oops.Code("USER_NOT_ADMIN").Errorf("must be an admin user")
	}
	return nil
}
