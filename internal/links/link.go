// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Linkloom Contributors

package links

import (
	"context"
	"errors"
	"net/url"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// DefaultLimit is the page size used when a list request does not
// specify one.
const DefaultLimit = 50

// ErrNotFound is returned when a requested link does not exist.
var ErrNotFound = errors.New("not found")

// ErrDuplicate is returned when a link's URL is already registered.
// Repositories wrap the storage-level constraint violation with this
// sentinel so services never depend on driver error types.
var ErrDuplicate = errors.New("duplicate")

// Link represents a registered link. DateAdded is server-assigned
// exactly once, at insertion; links are never updated.
type Link struct {
	ID        ulid.ULID
	URL       string
	AddedBy   string
	DateAdded time.Time
}

// NewLink creates a validated Link with a server-assigned ID and UTC
// creation timestamp, attributed to the given username.
func NewLink(rawURL, addedBy string) (*Link, error) {
	if err := ValidateURL(rawURL); err != nil {
		return nil, err
	}
	if addedBy == "" {
		return nil, oops.Code("LINK_INVALID_USER").Errorf("added_by cannot be empty")
	}

	return &Link{
		ID:        ulid.Make(),
		URL:       rawURL,
		AddedBy:   addedBy,
		DateAdded: time.Now().UTC(),
	}, nil
}

// ValidateURL rejects anything that is not a syntactically valid
// absolute http or https URL, before the store is touched.
func ValidateURL(raw string) error {
	if raw == "" {
		return oops.Code("LINK_INVALID_URL").Errorf("url cannot be empty")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return oops.Code("LINK_INVALID_URL").
			With("url", raw).
			Wrapf(err, "invalid url")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return oops.Code("LINK_INVALID_URL").
			With("url", raw).
			Errorf("url scheme must be http or https")
	}
	if u.Host == "" {
		return oops.Code("LINK_INVALID_URL").
			With("url", raw).
			Errorf("url must be absolute")
	}
	return nil
}

// ListOptions controls pagination for link listings.
type ListOptions struct {
	Offset int
	Limit  int
}

// LinkRepository manages link persistence. URL uniqueness is enforced
// by the storage layer; Create reports a violated constraint by
// wrapping ErrDuplicate.
type LinkRepository interface {
	// Create stores a new link.
	Create(ctx context.Context, link *Link) error

	// Get retrieves a link by ID.
	Get(ctx context.Context, id ulid.ULID) (*Link, error)

	// List retrieves links most-recently-added first.
	List(ctx context.Context, opts ListOptions) ([]*Link, error)

	// ExistsByURL checks whether a link with the given URL exists.
	ExistsByURL(ctx context.Context, url string) (bool, error)
}
