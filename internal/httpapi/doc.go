// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Linkloom Contributors

// Package httpapi exposes the link registry over HTTP using echo.
//
// The transport is a thin shell: it extracts bearer tokens, binds and
// validates request shapes, delegates to the auth and links services,
// and maps service error codes onto HTTP statuses. Password hashes
// never appear in any response; outward-facing shapes are the view
// types in views.go.
package httpapi
