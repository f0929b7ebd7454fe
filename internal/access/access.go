// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package access provides authorization for administrative agent control and
// the targeting exemption of privileged occupants.
//
// All parameters use prefixed string format:
//   - subject: "char:01ABC", "system"
//   - action: "execute", "exempt"
//   - resource: "admin.mob", "mob.target"
package access

import (
	"context"
	"strings"

	"github.com/oklog/ulid/v2"
)

// Actions and resources checked by the engine.
const (
	ActionExecute = "execute"
	ActionExempt  = "exempt"

	ResourceAdminMob  = "admin.mob"
	ResourceMobTarget = "mob.target"

	SubjectSystem = "system"
)

// AccessControl checks permissions for subjects.
//
//nolint:revive // stutter accepted: callers say access.AccessControl
type AccessControl interface {
	// Check returns true if subject is allowed to perform action on resource.
	// Returns false for unknown subjects or denied permissions (deny by default).
	Check(ctx context.Context, subject, action, resource string) bool
}

// CharacterSubject returns the subject string for an occupant id.
func CharacterSubject(id ulid.ULID) string {
	return "char:" + id.String()
}

// ParseSubject splits a subject string into prefix and ID.
// Returns ("system", "") for "system".
// Returns ("", subject) if no colon separator found.
func ParseSubject(subject string) (prefix, id string) {
	if subject == "" {
		return "", ""
	}
	if subject == SubjectSystem {
		return SubjectSystem, ""
	}
	parts := strings.SplitN(subject, ":", 2)
	if len(parts) == 1 {
		return "", subject
	}
	return parts[0], parts[1]
}
