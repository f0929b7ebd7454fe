// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/holomush/holomob/internal/access"
	"github.com/holomush/holomob/internal/admin"
)

// runConsole reads operator lines until EOF, "quit" or ctx is done. Lines are
// "status" or an admin toggle ("mobon <unit>", "moboff <unit>") run as the
// system subject.
func runConsole(ctx context.Context, in io.Reader, out io.Writer, rt *runtime) {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		command, args, _ := strings.Cut(line, " ")
		switch strings.ToLower(command) {
		case "quit":
			return
		case "status":
			printStatus(out, rt)
		default:
			if err := rt.admin.Toggle(ctx, access.SubjectSystem, command, args); err != nil {
				fmt.Fprintln(out, admin.PlayerMessage(err))
				continue
			}
			fmt.Fprintln(out, "Done.")
		}
	}
}

func printStatus(out io.Writer, rt *runtime) {
	for _, snap := range rt.engine.Agents() {
		health := "-"
		if snap.Alive {
			health = fmt.Sprintf("%.1f", snap.Health)
		}
		fmt.Fprintf(out, "%-20s %-10s %s\n", snap.Name, snap.State, health)
	}
}
