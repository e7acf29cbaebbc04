// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Linkloom Contributors

package auth

import "errors"

// ErrNotFound is returned when a requested user does not exist.
var ErrNotFound = errors.New("not found")

// ErrDuplicate is returned when a unique field (username, email) is
// already taken. Repositories wrap the storage-level constraint
// violation with this sentinel so services never depend on driver
// error types.
var ErrDuplicate = errors.New("duplicate")
