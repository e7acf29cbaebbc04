// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Linkloom Contributors

package httpapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/linkloom/linkloom/pkg/errutil"
)

// serviceError maps a service error code onto an HTTP response. Codes
// that represent normal business failures keep the error message as the
// detail; anything unmapped is a store or programming failure and is
// reported as an opaque 500.
func (s *Server) serviceError(c echo.Context, err error) error {
	code := errutil.Code(err)

	switch code {
	case "USER_DUPLICATE", "LINK_DUPLICATE", "AUTH_INVALID_CREDENTIALS", "AUTH_EMPTY_PASSWORD":
		return c.JSON(http.StatusBadRequest, ErrorResponse{Detail: err.Error()})
	case "USER_NOT_FOUND", "LINK_NOT_FOUND", "LINK_INVALID_ID":
		return c.JSON(http.StatusNotFound, ErrorResponse{Detail: err.Error()})
	case "USER_INVALID_EMAIL", "USER_INVALID_USERNAME", "LINK_INVALID_URL":
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Detail: err.Error()})
	case "USER_DISABLED", "USER_NOT_ADMIN":
		return c.JSON(http.StatusForbidden, ErrorResponse{Detail: err.Error()})
	case "TOKEN_EXPIRED", "TOKEN_INVALID_SIGNATURE", "TOKEN_MALFORMED":
		return s.unauthorized(c)
	}

	errutil.LogError(s.logger, "request failed", err)
	return c.JSON(http.StatusInternalServerError, ErrorResponse{Detail: "internal server error"})
}

// unauthorized writes the uniform credential-rejection response. It is
// deliberately identical for every authentication failure so clients
// cannot enumerate identifiers.
func (s *Server) unauthorized(c echo.Context) error {
	c.Response().Header().Set(echo.HeaderWWWAuthenticate, s.tokenType)
	return c.JSON(http.StatusUnauthorized, ErrorResponse{Detail: "could not validate credentials"})
}
