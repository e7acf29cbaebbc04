// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Linkloom Contributors

// Package links provides the registered-link domain for the link
// registry: the Link type, its validation, the repository contract,
// and the Service coordinating lookup and creation.
//
// A URL is globally unique across all links. The service performs a
// fast-path existence check before inserting, but the guard that holds
// under concurrent duplicate submissions is the storage layer's unique
// index, whose violation repositories report as ErrDuplicate.
package links
