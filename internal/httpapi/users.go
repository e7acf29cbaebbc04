// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Linkloom Contributors

package httpapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/linkloom/linkloom/internal/auth"
)

// handleToken verifies credentials and issues an access token. Unknown
// email and wrong password produce the same response.
func (s *Server) handleToken(c echo.Context) error {
	var req TokenRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Detail: "invalid request body"})
	}

	user, ok, err := s.auth.Authenticate(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		s.recordLogin("error")
		return s.serviceError(c, err)
	}
	if !ok {
		s.recordLogin("failure")
		c.Response().Header().Set(echo.HeaderWWWAuthenticate, s.tokenType)
		return c.JSON(http.StatusBadRequest, ErrorResponse{Detail: "invalid email or password"})
	}

	token, err := s.auth.CreateAccessToken(user)
	if err != nil {
		s.recordLogin("error")
		return s.serviceError(c, err)
	}

	s.recordLogin("success")
	return c.JSON(http.StatusCreated, TokenResponse{
		AccessToken: token,
		TokenType:   s.tokenType,
	})
}

// handleCreateUser registers a new user. Admin only.
func (s *Server) handleCreateUser(c echo.Context) error {
	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Detail: "invalid request body"})
	}

	user, err := s.auth.Register(c.Request().Context(), auth.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		IsAdmin:  req.IsAdmin,
	})
	if err != nil {
		return s.serviceError(c, err)
	}

	return c.JSON(http.StatusCreated, NewUserView(user))
}

// handleMe returns the current user resolved from the bearer token.
func (s *Server) handleMe(c echo.Context) error {
	return c.JSON(http.StatusOK, NewUserView(currentUser(c)))
}

// handleUpdatePassword changes the current user's password after
// verifying the old one.
func (s *Server) handleUpdatePassword(c echo.Context) error {
	var req PasswordUpdateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Detail: "invalid request body"})
	}

	user, err := s.auth.UpdatePassword(c.Request().Context(), currentUser(c).ID, req.OldPassword, req.NewPassword)
	if err != nil {
		return s.serviceError(c, err)
	}

	return c.JSON(http.StatusOK, NewUserView(user))
}

// recordLogin increments the login metric when metrics are wired.
func (s *Server) recordLogin(outcome string) {
	if s.metrics != nil {
		s.metrics.LoginsTotal.WithLabelValues(outcome).Inc()
	}
}
