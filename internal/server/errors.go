// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package server

import "errors"

var errNoServersAreCreated = errors.New("relay has no http handler to serve")
