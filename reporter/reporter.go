// Copyright 2016 Google Inc. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package reporter defines the narrow interface the executor uses to tell
// the outside world what it's doing, plus the concrete reporters kiln
// ships: Human (interactive TTY), Plain (piped/non-TTY), and Daemon
// (long-running watch mode).
package reporter

import "github.com/kiln-build/kiln/graph"

// Reporter is the collaborator interface consumed by engine.Executor.
// Nothing in engine or graph depends on a concrete implementation.
type Reporter interface {
	// SetConcurrencyCount is called once at Executor construction with
	// the job slot count.
	SetConcurrencyCount(n int)

	// SetRunningCommand reports that slot is now running cmd, or has
	// gone idle (cmd == nil).
	SetRunningCommand(slot int, cmd *graph.Command)

	// ReportCommand reports that the command previously running in
	// slot finished. cmd == nil means the generation changed before
	// completion and the result was discarded.
	ReportCommand(slot int, cmd *graph.Command)

	// ReportCommandQueue reports the full pending queue, called once
	// per RunMoreCommands pass.
	ReportCommandQueue(commands []*graph.Command)
}

// Get resolves a reporter by the CLI's -r name: "human", "plain",
// "daemon", or "guess" (TTY-appropriate default, resolved by the caller
// since only it knows whether stdout is a terminal and whether daemon
// mode is active).
func Get(name string) Reporter {
	switch name {
	case "human":
		return NewHuman()
	case "daemon":
		return NewDaemon()
	default:
		return NewPlain()
	}
}
