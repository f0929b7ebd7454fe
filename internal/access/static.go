// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package access

import (
	"context"
	"sync"

	"github.com/gobwas/glob"
	"github.com/samber/oops"
)

// StaticAccessControl implements AccessControl with static role definitions.
//
// Thread-safety: roles is immutable after construction and requires no synchronization.
// Only subjects is mutable and protected by mu.
type StaticAccessControl struct {
	roles    map[string][]compiledPermission // roleName → compiled permission patterns (immutable)
	subjects map[string]string               // subject → roleName (mutable, protected by mu)
	mu       sync.RWMutex
}

// compiledPermission holds a permission pattern and its compiled glob.
type compiledPermission struct {
	pattern string
	glob    glob.Glob
}

// NewStaticAccessControl creates a new static access controller with default roles.
//
// Panics if default roles contain invalid permission patterns (configuration bug).
func NewStaticAccessControl() *StaticAccessControl {
	ac, err := NewStaticAccessControlWithRoles(DefaultRoles())
	if err != nil {
		panic("invalid permission pattern in DefaultRoles: " + err.Error())
	}
	return ac
}

// NewStaticAccessControlWithRoles creates a static access controller with custom roles.
// Returns an error if any permission pattern fails to compile.
func NewStaticAccessControlWithRoles(roles map[string][]string) (*StaticAccessControl, error) {
	compiledRoles := make(map[string][]compiledPermission, len(roles))
	for role, perms := range roles {
		compiled := make([]compiledPermission, 0, len(perms))
		for _, p := range perms {
			// ':' separates action from resource
			g, err := glob.Compile(p, ':')
			if err != nil {
				return nil, oops.In("access").
					Code("INVALID_PERMISSION_PATTERN").
					With("role", role).
					With("pattern", p).
					Wrap(err)
			}
			compiled = append(compiled, compiledPermission{pattern: p, glob: g})
		}
		compiledRoles[role] = compiled
	}

	return &StaticAccessControl{
		roles:    compiledRoles,
		subjects: make(map[string]string),
	}, nil
}

// AssignRole sets the role of a subject. Unknown roles are rejected.
func (s *StaticAccessControl) AssignRole(subject, role string) error {
	if subject == "" {
		return oops.In("access").Code("INVALID_SUBJECT").Errorf("subject cannot be empty")
	}
	if _, ok := s.roles[role]; !ok {
		return oops.In("access").
			Code("UNKNOWN_ROLE").
			With("role", role).
			With("subject", subject).
			Errorf("unknown role %q", role)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subjects[subject] = role
	return nil
}

// RevokeRole removes any role held by subject.
func (s *StaticAccessControl) RevokeRole(subject string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subjects, subject)
}

// RoleOf returns the role held by subject, or "" if none.
func (s *StaticAccessControl) RoleOf(subject string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.subjects[subject]
}

// Check implements AccessControl.
func (s *StaticAccessControl) Check(_ context.Context, subject, action, resource string) bool {
	if subject == SubjectSystem {
		return true
	}
	if subject == "" {
		return false
	}

	prefix, _ := ParseSubject(subject)
	if prefix != "char" && prefix != "character" {
		return false
	}

	s.mu.RLock()
	role := s.subjects[subject]
	s.mu.RUnlock()
	if role == "" {
		return false
	}

	requested := action + ":" + resource
	for _, perm := range s.roles[role] {
		if perm.glob.Match(requested) {
			return true
		}
	}
	return false
}
