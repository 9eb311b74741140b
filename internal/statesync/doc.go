// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package statesync keeps the synchronizable state of two paired instances
// consistent.
//
// The [Middleware] wraps every local mutation of a [store.StateStore]. Once
// synchronization is active it diffs each key against a cached snapshot and
// pushes the per-key [models.Changes] through a [Sender]. Sends that fail go
// to the [RetryQueue], which merges diffs of the same key and resends them
// on a timer.
//
// [Diff], [Timestamps] and [ReconcileReply] are the pure comparison functions
// shared by the middleware and the initial reconciliation performed right
// after a connection is established.
package statesync
