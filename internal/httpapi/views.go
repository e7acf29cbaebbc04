// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Linkloom Contributors

package httpapi

import (
	"time"

	"github.com/linkloom/linkloom/internal/auth"
	"github.com/linkloom/linkloom/internal/links"
)

// UserView is the public shape of a user. The password hash is never
// serialized outward.
type UserView struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	IsAdmin   bool      `json:"is_admin"`
	Disabled  bool      `json:"disabled"`
	DateAdded time.Time `json:"date_added"`
}

// NewUserView builds the public view of a user.
func NewUserView(u *auth.User) UserView {
	return UserView{
		ID:        u.ID.String(),
		Username:  u.Username,
		Email:     u.Email,
		IsAdmin:   u.IsAdmin,
		Disabled:  u.Disabled,
		DateAdded: u.DateAdded,
	}
}

// LinkView is the public shape of a registered link.
type LinkView struct {
	ID        string    `json:"id"`
	URL       string    `json:"url"`
	AddedBy   string    `json:"added_by"`
	DateAdded time.Time `json:"date_added"`
}

// NewLinkView builds the public view of a link.
func NewLinkView(l *links.Link) LinkView {
	return LinkView{
		ID:        l.ID.String(),
		URL:       l.URL,
		AddedBy:   l.AddedBy,
		DateAdded: l.DateAdded,
	}
}

// NewLinkViews builds views for a list of links, never nil.
func NewLinkViews(list []*links.Link) []LinkView {
	views := make([]LinkView, 0, len(list))
	for _, l := range list {
		views = append(views, NewLinkView(l))
	}
	return views
}

// TokenResponse is returned by the token endpoint.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// LinkPage is a paginated link listing.
type LinkPage struct {
	Items  []LinkView `json:"items"`
	Offset int        `json:"offset"`
	Limit  int        `json:"limit"`
}

// TokenRequest is the login payload. Login is keyed on email.
type TokenRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest is the admin-only user creation payload.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	IsAdmin  bool   `json:"is_admin"`
}

// PasswordUpdateRequest carries a password change for the current user.
type PasswordUpdateRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

// CreateLinkRequest is the link registration payload.
type CreateLinkRequest struct {
	URL string `json:"url"`
}

// ErrorResponse is the uniform error payload.
type ErrorResponse struct {
	Detail string `json:"detail"`
}
