// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Linkloom Contributors

package httpapi

import (
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/samber/oops"

	"github.com/linkloom/linkloom/internal/auth"
	"github.com/linkloom/linkloom/pkg/errutil"
)

// userContextKey is the echo context key carrying the authenticated user.
const userContextKey = "linkloom.user"

// bearerToken extracts the token from an "Authorization: <scheme>
// <token>" header value. The scheme must match the configured token
// type label (case-insensitive).
func bearerToken(header, scheme string) (string, error) {
	if header == "" {
		return "", oops.Code("TOKEN_MALFORMED").Errorf("missing authorization header")
	}
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], scheme) {
		return "", oops.Code("TOKEN_MALFORMED").Errorf("authorization header must be %q scheme", scheme)
	}
	return parts[1], nil
}

// requireUser resolves the active user for the request's bearer token
// and attaches it to the context. Every failure on this path gets the
// same unauthorized response except the disabled-account gate, which is
// a forbidden outcome for a proven identity.
func (s *Server) requireUser(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token, err := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization), s.tokenType)
		if err != nil {
			return s.unauthorized(c)
		}

		user, err := s.auth.CurrentUser(c.Request().Context(), token)
		if err != nil {
			if errutil.Code(err) == "USER_DISABLED" {
				return s.serviceError(c, err)
			}
			return s.unauthorized(c)
		}

		c.Set(userContextKey, user)
		return next(c)
	}
}

// requireAdmin gates a route on the admin flag. Composes after
// requireUser.
func (s *Server) requireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if err := s.auth.RequireAdmin(currentUser(c)); err != nil {
			return s.serviceError(c, err)
		}
		return next(c)
	}
}

// currentUser returns the authenticated user attached by requireUser,
// or nil outside a protected route.
func currentUser(c echo.Context) *auth.User {
	user, _ := c.Get(userContextKey).(*auth.User)
	return user
}
