// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Linkloom Contributors

// Package auth provides authentication primitives for the link registry.
//
// # Domain Types
//
// User accounts should be created through NewUser, which validates the
// username and email and stamps the server-assigned identity and
// creation time. Direct struct initialization bypasses validation and
// may create invalid state. Repository implementations receive
// pre-validated types from the constructor.
//
// # Services
//
// Service coordinates credential verification, stateless access-token
// issuance, user registration, and the active-user resolution used to
// protect endpoints. It is created with NewService, which validates
// dependencies.
package auth
