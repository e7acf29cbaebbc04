// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Linkloom Contributors

package httpapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/linkloom/linkloom/internal/links"
)

// handleListLinks returns registered links, most-recently-added first,
// with offset/limit pagination.
func (s *Server) handleListLinks(c echo.Context) error {
	opts := links.ListOptions{Limit: links.DefaultLimit}

	if raw := c.QueryParam("offset"); raw != "" {
		offset, err := strconv.Atoi(raw)
		if err != nil || offset < 0 {
			return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Detail: "offset must be a non-negative integer"})
		}
		opts.Offset = offset
	}
	if raw := c.QueryParam("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Detail: "limit must be a positive integer"})
		}
		opts.Limit = limit
	}

	list, err := s.links.List(c.Request().Context(), opts)
	if err != nil {
		return s.serviceError(c, err)
	}

	return c.JSON(http.StatusOK, LinkPage{
		Items:  NewLinkViews(list),
		Offset: opts.Offset,
		Limit:  opts.Limit,
	})
}

// handleLinkExists reports whether a URL is already registered. An
// already-registered URL is a client error, matching the create
// endpoint's duplicate behavior.
func (s *Server) handleLinkExists(c echo.Context) error {
	exists, err := s.links.Exists(c.Request().Context(), c.QueryParam("url"))
	if err != nil {
		return s.serviceError(c, err)
	}
	if exists {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Detail: "link already exists"})
	}
	return c.JSON(http.StatusOK, map[string]bool{"exists": false})
}

// handleGetLink returns a single link by id. Malformed ids are
// indistinguishable from missing records.
func (s *Server) handleGetLink(c echo.Context) error {
	link, err := s.links.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return s.serviceError(c, err)
	}
	return c.JSON(http.StatusOK, NewLinkView(link))
}

// handleCreateLink registers a new link attributed to the current user.
func (s *Server) handleCreateLink(c echo.Context) error {
	var req CreateLinkRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Detail: "invalid request body"})
	}

	link, err := s.links.Create(c.Request().Context(), links.CreateInput{URL: req.URL}, currentUser(c))
	if err != nil {
		return s.serviceError(c, err)
	}

	if s.metrics != nil {
		s.metrics.LinksCreated.Inc()
	}

	return c.JSON(http.StatusCreated, NewLinkView(link))
}
