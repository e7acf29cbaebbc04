// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Linkloom Contributors

package links

import (
	"context"
	"errors"
	"log/slog"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/linkloom/linkloom/internal/auth"
)

// CreateInput carries the fields accepted when registering a link.
// Attribution and the creation timestamp are server-assigned.
type CreateInput struct {
	URL string
}

// Service provides link lookup and creation on top of the repository.
type Service struct {
	links  LinkRepository
	logger *slog.Logger
}

// NewService creates a new Service.
func NewService(links LinkRepository) (*Service, error) {
	return NewServiceWithLogger(links, slog.Default())
}

// NewServiceWithLogger creates a new Service with an explicit logger.
func NewServiceWithLogger(links LinkRepository, logger *slog.Logger) (*Service, error) {
	if links == nil {
		return nil, oops.Code("LINK_CONFIG_INVALID").Errorf("links repository is required")
	}
	if logger == nil {
		return nil, oops.Code("LINK_CONFIG_INVALID").Errorf("logger is required")
	}
	return &Service{links: links, logger: logger}, nil
}

// List returns links most-recently-added first. An empty store yields
// an empty slice, not an error.
func (s *Service) List(ctx context.Context, opts ListOptions) ([]*Link, error) {
	result, err := s.links.List(ctx, opts)
	if err != nil {
		return nil, oops.Code("LINK_LIST_FAILED").Wrap(err)
	}
	if result == nil {
		result = []*Link{}
	}
	return result, nil
}

// Get retrieves a link by its string identifier. An id that cannot be
// parsed into the store's identifier type is rejected without touching
// the store.
func (s *Service) Get(ctx context.Context, idString string) (*Link, error) {
	id, err := ulid.Parse(idString)
	if err != nil {
		return nil, oops.Code("LINK_INVALID_ID").
			With("id", idString).
			Wrapf(err, "malformed link id")
	}

	link, err := s.links.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, oops.Code("LINK_NOT_FOUND").
				With("id", idString).
				Wrap(err)
		}
		return nil, oops.Code("LINK_GET_FAILED").
			With("id", idString).
			Wrap(err)
	}
	return link, nil
}

// Exists reports whether a link with the given URL is registered. Pure
// check, no side effects.
func (s *Service) Exists(ctx context.Context, rawURL string) (bool, error) {
	if err := ValidateURL(rawURL); err != nil {
		return false, err
	}
	exists, err := s.links.ExistsByURL(ctx, rawURL)
	if err != nil {
		return false, oops.Code("LINK_EXISTS_FAILED").
			With("url", rawURL).
			Wrap(err)
	}
	return exists, nil
}

// Create registers a new link attributed to the acting user. The
// existence pre-check is a fast path for an early error; correctness
// under concurrent duplicate submissions rests on the storage unique
// index, reported here as LINK_DUPLICATE. The returned record is
// re-read from the store so it matches exactly what a subsequent Get
// would return.
func (s *Service) Create(ctx context.Context, input CreateInput, actingUser *auth.User) (*Link, error) {
	if actingUser == nil {
		return nil, oops.Code("LINK_INVALID_USER").Errorf("acting user is required")
	}
	if err := ValidateURL(input.URL); err != nil {
		return nil, err
	}

	exists, err := s.links.ExistsByURL(ctx, input.URL)
	if err != nil {
		return nil, oops.Code("LINK_CREATE_FAILED").
			With("operation", "check url").
			Wrap(err)
	}
	if exists {
		return nil, oops.Code("LINK_DUPLICATE").
			With("url", input.URL).
			Errorf("link with given url already exists")
	}

	link, err := NewLink(input.URL, actingUser.Username)
	if err != nil {
		return nil, err
	}

	if err := s.links.Create(ctx, link); err != nil {
		if errors.Is(err, ErrDuplicate) {
			return nil, oops.Code("LINK_DUPLICATE").
				With("url", input.URL).
				Wrapf(err, "link with given url already exists")
		}
		return nil, oops.Code("LINK_CREATE_FAILED").
			With("url", input.URL).
			Wrap(err)
	}

	created, err := s.links.Get(ctx, link.ID)
	if err != nil {
		return nil, oops.Code("LINK_CREATE_FAILED").
			With("operation", "reload link").
			Wrap(err)
	}

	s.logger.InfoContext(ctx, "link created",
		"link_id", created.ID.String(),
		"added_by", created.AddedBy,
	)

	return created, nil
}
