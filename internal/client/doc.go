// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package client assembles a paired device: storages, the transport client,
// the state sync middleware, the role orchestrator and the command pipeline.
//
// [App] owns the lifecycle of those pieces. [App.RunConsole] exposes the
// command dispatcher over a line-oriented JSON stream.
package client
