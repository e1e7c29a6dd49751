// Copyright 2011 Google Inc. All Rights Reserved.
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

package graph

import (
	"fmt"
	"time"
)

// CommandState is the lifecycle state of a Command.
type CommandState int

const (
	CommandUnknown CommandState = iota
	ToBeRun
	Running
	CommandDone
	// Depfail is declared for parity with the source this was ported
	// from but is never entered: nothing in this graph currently
	// distinguishes "input's generator permanently failed" from any
	// other non-terminal input state, so CanRun just blocks on it
	// forever like any other non-terminal input (see spec Open
	// Questions). Plumbing it through Check would mean tracking
	// permanent-failure separately from transient ToRebuild/Rebuilding,
	// which nothing here needs yet.
	Depfail
)

func (s CommandState) String() string {
	switch s {
	case CommandUnknown:
		return "unknown"
	case ToBeRun:
		return "to be run"
	case Running:
		return "running"
	case CommandDone:
		return "done"
	case Depfail:
		return "depfail"
	default:
		return "invalid"
	}
}

// Result holds the outcome and resource measurements of the most recent
// (and running-averaged) execution of a Command.
type Result struct {
	Output           string
	ErrorCode        int
	MeasurementCount int
	TimeEstimate     time.Duration
	SpaceNeeded      uint64
}

// Command is an edge in the build graph: a single command-line invocation
// with input files and output files.
type Command struct {
	CommandToRun string

	Inputs  []*File
	Outputs []*File

	State CommandState

	Result *Result
}

// NewCommand creates a Command wrapping the literal shell command line to
// run. It is registered with the graph via AddInput/AddOutput, then with
// an Executor via Executor.Run.
func NewCommand(commandToRun string) *Command {
	return &Command{CommandToRun: commandToRun, State: CommandUnknown}
}

// AddInput appends f to the command's inputs, registers this command as a
// listener on f, and re-evaluates readiness.
func (c *Command) AddInput(f *File) {
	c.Inputs = append(c.Inputs, f)
	f.Listeners = append(f.Listeners, c)
	c.Check()
}

// AddOutput claims f as an output of this command. It panics if f already
// has a generator: graph construction bugs (two commands claiming the same
// output) are not recoverable at runtime, matching evoke's throw here.
func (c *Command) AddOutput(f *File) {
	if f.Generator != nil {
		panic(fmt.Sprintf("graph construction error: %q already has a generator", f.Path))
	}
	f.Generator = c
	f.State = Unknown
	c.Outputs = append(c.Outputs, f)
	c.Check()
}

// mtime returns the file's last recorded modification time (see
// File.SetModTime), or zero if none was ever recorded. It does not stat the
// file. Outputs with a zero time compare as "oldest possible", forcing a
// rebuild.
func mtime(f *File) time.Time {
	return f.mtime
}

// Check re-evaluates whether this command needs to run. This is the core
// readiness algorithm: it decides whether to mark outputs ToRebuild, and
// becomes ToBeRun itself when an input's generator is ToBeRun after its own
// Check.
func (c *Command) Check() {
	if len(c.Outputs) == 0 {
		// Sinkless command: nothing depends on running it.
		return
	}
	if c.State == ToBeRun {
		// Idempotence guard: once on the ToBeRun frontier in this
		// cascade, never re-examine. This also bounds re-entrancy.
		return
	}

	oldestOutput := mtime(c.Outputs[0])
	missingOutput := oldestOutput.IsZero()
	for _, o := range c.Outputs[1:] {
		if t := mtime(o); t.Before(oldestOutput) {
			oldestOutput = t
		}
		if mtime(o).IsZero() {
			missingOutput = true
		}
	}

	for _, in := range c.Inputs {
		if mtime(in).After(oldestOutput) {
			c.rebuild()
			return
		}
		if in.Generator != nil {
			in.Generator.Check()
			if in.Generator.State == ToBeRun {
				c.rebuild()
				return
			}
		}
	}

	for _, o := range c.Outputs {
		if missingOutput {
			o.State = Error
		} else {
			o.State = Done
		}
	}
	c.State = CommandDone
}

// rebuild marks this command ToBeRun and its outputs ToRebuild, then re-runs
// Check on the generator of every file listed in those outputs'
// Dependencies.
func (c *Command) rebuild() {
	c.State = ToBeRun
	for _, o := range c.Outputs {
		o.State = ToRebuild
		for _, d := range o.Dependencies {
			if d.Generator != nil {
				d.Generator.Check()
			}
		}
	}
}

// SetResult records the outcome of running this command: errorcode,
// combined stdout+stderr, and best-effort resource measurements. The
// estimates are updated as a running mean over the number of times this
// command has ever been measured, then the terminal state (Done/Error) is
// propagated to State and to every output.
func (c *Command) SetResult(errorcode int, output string, timeTaken time.Duration, spaceUsed uint64) {
	if c.Result == nil {
		c.Result = &Result{TimeEstimate: time.Second, SpaceNeeded: 1 << 30}
	}
	r := c.Result
	n := r.MeasurementCount
	r.TimeEstimate = (r.TimeEstimate*time.Duration(n) + timeTaken) / time.Duration(n+1)
	r.SpaceNeeded = (r.SpaceNeeded*uint64(n) + spaceUsed) / uint64(n+1)
	r.MeasurementCount = n + 1
	r.Output = output
	r.ErrorCode = errorcode

	c.setSuccess(errorcode == 0)
}

// setSuccess transitions the command to Done and every output to Done or
// Error accordingly.
func (c *Command) setSuccess(success bool) {
	c.State = CommandDone
	for _, o := range c.Outputs {
		if success {
			o.State = Done
		} else {
			o.State = Error
		}
	}
}

// CanRun reports whether this command is ready to dispatch: it must be
// ToBeRun, and every input must be in a terminal state (Source or Done).
// Inputs still ToRebuild/Rebuilding/Error/unresolved block dispatch.
func (c *Command) CanRun() bool {
	if c.State != ToBeRun {
		return false
	}
	for _, in := range c.Inputs {
		if in.State != Source && in.State != Done {
			return false
		}
	}
	return true
}

func (c *Command) String() string {
	return fmt.Sprintf("%s state=%s", c.CommandToRun, c.State)
}
