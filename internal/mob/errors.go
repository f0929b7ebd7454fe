// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package mob

import (
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// Error codes returned by the engine.
const (
	CodeAgentNotFound      = "AGENT_NOT_FOUND"
	CodeDuplicateAgent     = "DUPLICATE_AGENT"
	CodeInvalidAgentConfig = "INVALID_AGENT_CONFIG"
	CodeInvalidConfig      = "INVALID_CONFIG"
)

func agentNotFound(id ulid.ULID) error {
	return oops.In("mob").
		Code(CodeAgentNotFound).
		With("agent_id", id.String()).
		Errorf("agent not found")
}
