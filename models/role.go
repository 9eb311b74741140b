// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import "fmt"

// Role identifies which side of a pair an instance plays.
type Role string

const (
	// RoleMaster is the primary display/process. It accepts slaves.
	RoleMaster Role = "MASTER"
	// RoleSlave is the secondary display/process. It pairs with a known master.
	RoleSlave Role = "SLAVE"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleMaster || r == RoleSlave
}

// Opposite returns the peer role of r.
func (r Role) Opposite() Role {
	if r == RoleMaster {
		return RoleSlave
	}
	return RoleMaster
}

// ParseRole converts a case-sensitive wire value into a [Role].
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

// Workspace is a secondary partition tag stamped on commands next to the role.
type Workspace string

const (
	WorkspaceMain   Workspace = "MAIN"
	WorkspaceBranch Workspace = "BRANCH"
)
