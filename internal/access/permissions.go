// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package access

// Permission groups define reusable sets of permissions.
// Roles compose these groups rather than inheriting.

var builderPowers = []string{
	// Builders are never picked as targets by hostile agents.
	"exempt:mob.target",
}

var adminPowers = []string{
	"execute:admin.*",
	"exempt:mob.*",
}

// Role names.
const (
	RolePlayer  = "player"
	RoleBuilder = "builder"
	RoleAdmin   = "admin"
)

// DefaultRoles returns the default role definitions.
// Players hold no permissions: they can be targeted and cannot toggle agents.
func DefaultRoles() map[string][]string {
	return map[string][]string{
		RolePlayer:  {},
		RoleBuilder: builderPowers,
		RoleAdmin:   compose(builderPowers, adminPowers),
	}
}

// compose merges multiple permission slices into one.
func compose(groups ...[]string) []string {
	total := 0
	for _, g := range groups {
		total += len(g)
	}
	result := make([]string, 0, total)
	for _, g := range groups {
		result = append(result, g...)
	}
	return result
}
