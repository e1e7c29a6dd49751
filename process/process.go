// Copyright 2012 Google Inc. All Rights Reserved.
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

// Package process wraps scoped ownership of a single OS child: it captures
// combined stdout+stderr, waits for termination, reads best-effort resource
// usage, and invokes a completion callback exactly once.
package process

import (
	"bytes"
	"os/exec"
	"runtime"
	"time"
)

// State is the lifecycle state of a Process.
type State int

const (
	Running State = iota
	Done
)

// OnComplete is invoked exactly once, after the process's state is Done, on
// the worker goroutine that drove the child. cpuTime and vsize are
// best-effort: platforms without per-process accounting report zero for
// both, and callers should treat zero as "unknown" rather than "idle".
type OnComplete func(p *Process, cpuTime time.Duration, vsize uint64)

// Process wraps exactly one OS subprocess launched with a single shell
// command line. Construction never blocks: the read-drain-and-wait work
// runs on a dedicated goroutine concurrent with the caller.
type Process struct {
	cmd        *exec.Cmd
	buf        bytes.Buffer
	state      State
	errorcode  int
	onComplete OnComplete
}

// Start launches command (interpreted by the platform's shell, matching
// ninja/evoke's use of system()) and immediately returns a Process whose
// onComplete callback will fire exactly once, later, when the child exits.
func Start(command string, onComplete OnComplete) *Process {
	p := &Process{onComplete: onComplete}
	p.cmd = shellCommand(command)
	p.cmd.Stdout = &p.buf
	p.cmd.Stderr = &p.buf
	go p.run()
	return p
}

func (p *Process) run() {
	var cpuTime time.Duration
	var vsize uint64
	var errorcode int

	if err := p.cmd.Start(); err != nil {
		p.buf.Reset()
		p.buf.WriteString(err.Error())
		errorcode = -1
	} else {
		// Snapshot /proc/<pid>/stat immediately: see statPid's doc
		// comment for why this is advisory, not load-bearing.
		cpuTime, vsize = statPid(p.cmd.Process.Pid)
		waitErr := p.cmd.Wait()
		if ps := p.cmd.ProcessState; ps != nil && ps.Exited() {
			// Ordinary nonzero exit: recorded in the command's
			// result, not treated as an executor-level failure.
			errorcode = ps.ExitCode()
		} else if waitErr != nil {
			// Signal, spawn error, or I/O error: the output buffer
			// is replaced with the failure description.
			errorcode = -1
			p.buf.Reset()
			p.buf.WriteString(waitErr.Error())
		}
	}

	p.errorcode = errorcode
	p.state = Done

	// Consume (move) the callback before invoking it so that re-entrant
	// destruction from within the callback is safe.
	cb := p.onComplete
	p.onComplete = nil
	cb(p, cpuTime, vsize)
}

// Done reports whether the child has terminated and the completion
// callback has fired.
func (p *Process) Done() bool { return p.state == Done }

// ExitCode returns the child's exit code, or -1 if it was never spawned or
// terminated abnormally.
func (p *Process) ExitCode() int { return p.errorcode }

// Output returns the child's combined stdout+stderr, or (on spawn/wait
// failure) the failure description in its place.
func (p *Process) Output() string { return p.buf.String() }

func shellCommand(c string) *exec.Cmd {
	if runtime.GOOS == "windows" {
		return exec.Command("cmd.exe", "/c", c)
	}
	return exec.Command("/bin/sh", "-c", c)
}
