// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package admin gates administrative activation and deactivation of agents
// behind an access check.
package admin

import (
	"context"
	"log/slog"
	"strings"

	"github.com/oklog/ulid/v2"

	"github.com/holomush/holomob/internal/access"
	"github.com/holomush/holomob/internal/mob"
	"github.com/holomush/holomob/internal/observability"
	"github.com/holomush/holomob/pkg/errutil"
)

// Commands understood by Toggle.
const (
	CommandOn  = "mobon"
	CommandOff = "moboff"

	// Usage is shown when Toggle is called without a unit.
	Usage = "mobon||moboff <unit>"
)

// Engine is the part of the agent engine the controller drives.
type Engine interface {
	Activate(ctx context.Context, id ulid.ULID) error
	Deactivate(ctx context.Context, id ulid.ULID) error
	Find(name string) (ulid.ULID, bool)
}

var _ Engine = (*mob.Engine)(nil)

// Controller turns agents on and off for privileged subjects.
type Controller struct {
	engine Engine
	access access.AccessControl
	logger *slog.Logger
}

// NewController creates a Controller. A nil logger uses slog.Default.
func NewController(engine Engine, ac access.AccessControl, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{engine: engine, access: ac, logger: logger}
}

// Activate brings an agent online on behalf of subject.
func (c *Controller) Activate(ctx context.Context, subject string, id ulid.ULID) error {
	err := c.authorize(ctx, subject, CommandOn)
	if err == nil {
		err = c.toggle(ctx, subject, CommandOn, id)
	}
	record(CommandOn, err)
	return err
}

// Deactivate takes an agent offline on behalf of subject.
func (c *Controller) Deactivate(ctx context.Context, subject string, id ulid.ULID) error {
	err := c.authorize(ctx, subject, CommandOff)
	if err == nil {
		err = c.toggle(ctx, subject, CommandOff, id)
	}
	record(CommandOff, err)
	return err
}

// Toggle handles "mobon <unit>" and "moboff <unit>", finding the unit by name.
func (c *Controller) Toggle(ctx context.Context, subject, command, args string) error {
	command = strings.ToLower(strings.TrimSpace(command))
	if command != CommandOn && command != CommandOff {
		return ErrUnknownCommand(command)
	}
	err := c.toggleByName(ctx, subject, command, args)
	record(command, err)
	return err
}

func (c *Controller) toggleByName(ctx context.Context, subject, command, args string) error {
	if err := c.authorize(ctx, subject, command); err != nil {
		return err
	}
	unit := strings.TrimSpace(args)
	if unit == "" {
		return ErrInvalidArgs(command, Usage)
	}
	id, ok := c.engine.Find(unit)
	if !ok {
		return ErrAgentNotFound(unit)
	}
	return c.toggle(ctx, subject, command, id)
}

// toggle must only be called once subject is authorized.
func (c *Controller) toggle(ctx context.Context, subject, command string, id ulid.ULID) error {
	var err error
	if command == CommandOn {
		err = c.engine.Activate(ctx, id)
	} else {
		err = c.engine.Deactivate(ctx, id)
	}
	if err != nil {
		return err //nolint:wrapcheck // engine errors are structured oops errors
	}

	c.logger.InfoContext(ctx, "admin agent command",
		"subject", subject,
		"command", command,
		"agent_id", id.String())
	return nil
}

func (c *Controller) authorize(ctx context.Context, subject, command string) error {
	if c.access == nil || !c.access.Check(ctx, subject, access.ActionExecute, access.ResourceAdminMob) {
		c.logger.WarnContext(ctx, "admin command denied", "subject", subject, "command", command)
		return ErrPermissionDenied(command, access.ResourceAdminMob)
	}
	return nil
}

func record(command string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = errutil.Code(err)
		if outcome == "" {
			outcome = "error"
		}
	}
	observability.RecordAdminCommand(command, outcome)
}
