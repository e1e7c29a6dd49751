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

// Package engine mediates between the build graph and the OS: a
// fixed-width slot array of optional processes, a queue of commands, a
// monotonic generation counter, and the RunMoreCommands scheduling loop.
package engine

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/kiln-build/kiln/graph"
	"github.com/kiln-build/kiln/process"
	"github.com/kiln-build/kiln/reporter"
)

// Executor owns the single global mutex that serializes every mutation of
// commands, activeProcesses, generation, and all graph state reachable
// during a scheduling pass. Run, NewGeneration, RunMoreCommands, and
// AllSuccess all assume the caller already holds the lock (via Lock/
// Unlock) — exactly like the reference tool's public ex.m, which main()
// takes a lock_guard on before touching the executor. The one exception
// is the process completion callback: it runs on its own goroutine with
// nothing else held, so it acquires the lock itself before touching any
// graph state.
type Executor struct {
	m sync.Mutex

	reporter reporter.Reporter

	commands        []*graph.Command
	activeProcesses []*process.Process
	generation      int
	daemonMode      bool

	shutdown     chan struct{}
	shutdownOnce sync.Once
}

// New sizes activeProcesses to j empty slots and tells the reporter the
// concurrency width.
func New(j int, r reporter.Reporter) *Executor {
	e := &Executor{
		reporter:        r,
		activeProcesses: make([]*process.Process, j),
		shutdown:        make(chan struct{}),
	}
	r.SetConcurrencyCount(j)
	return e
}

// Lock acquires the executor's mutex. Callers must hold it before calling
// Run, NewGeneration, RunMoreCommands, or AllSuccess.
func (e *Executor) Lock() { e.m.Lock() }

// Unlock releases the executor's mutex.
func (e *Executor) Unlock() { e.m.Unlock() }

// Run enqueues cmd. It does not dispatch; RunMoreCommands drives
// execution. Caller must hold the lock.
func (e *Executor) Run(cmd *graph.Command) {
	e.commands = append(e.commands, cmd)
}

// Mode records daemon mode and, if daemon, installs termination-signal
// handlers whose sole effect is to fulfill the returned shutdown channel.
// Call RunMoreCommands afterward; Mode itself never dispatches.
func (e *Executor) Mode(isDaemon bool) <-chan struct{} {
	e.daemonMode = isDaemon
	if isDaemon {
		installSignalHandler(e.fulfillShutdown)
	}
	return e.shutdown
}

func (e *Executor) fulfillShutdown() {
	e.shutdownOnce.Do(func() { close(e.shutdown) })
}

// NewGeneration increments the generation counter and clears the command
// queue. Processes still running from the previous generation are not
// killed: they keep their slot until they complete, at which point their
// completion callback observes the generation mismatch and discards the
// result instead of touching graph state (see the callback in
// RunMoreCommands). Caller must hold the lock.
func (e *Executor) NewGeneration() {
	e.generation++
	e.commands = nil
	e.reporter.ReportCommandQueue(e.commands)
}

// AllSuccess reports whether no queued command finished with a nonzero
// error code; commands that never ran (no Result) count as successful.
// Caller must hold the lock.
func (e *Executor) AllSuccess() bool {
	for _, c := range e.commands {
		if c.Result != nil && c.Result.ErrorCode != 0 {
			return false
		}
	}
	return true
}

// RunMoreCommands walks the command queue in insertion order, dispatching
// every ready command into a free slot, until slots are saturated or the
// queue is exhausted. Call it after Run, after NewGeneration, and
// (recursively) after each process completion.
//
// Must be called with e.m held, or not at all concurrently with another
// call: it is re-entered directly from completion callbacks, which already
// hold m.
func (e *Executor) RunMoreCommands() {
	e.reporter.ReportCommandQueue(e.commands)

	n := 0
	for _, c := range e.commands {
		for n != len(e.activeProcesses) && e.activeProcesses[n] != nil {
			n++
		}
		if n == len(e.activeProcesses) {
			break
		}
		if !c.CanRun() {
			continue
		}

		c.State = graph.Running
		for _, o := range c.Outputs {
			if dir := filepath.Dir(o.Path); dir != "." {
				os.MkdirAll(dir, 0o755)
			}
		}

		e.reporter.SetRunningCommand(n, c)
		slot := n
		cmd := c
		generationWhenStarted := e.generation
		e.activeProcesses[slot] = process.Start(cmd.CommandToRun, func(p *process.Process, cpuTime time.Duration, vsize uint64) {
			e.m.Lock()
			defer e.m.Unlock()

			e.activeProcesses[slot] = nil
			if e.generation == generationWhenStarted {
				cmd.SetResult(p.ExitCode(), p.Output(), cpuTime, vsize)
				if p.ExitCode() == 0 {
					refreshOutputTimes(cmd)
				}
				e.reporter.ReportCommand(slot, cmd)
			} else {
				// Pointers into this generation's graph may be
				// stale (NewGeneration cleared commands and the
				// caller may have rebuilt the graph); don't touch
				// cmd or any graph state.
				e.reporter.ReportCommand(slot, nil)
			}
			e.reporter.SetRunningCommand(slot, nil)
			e.RunMoreCommands()
		})
	}

	for _, p := range e.activeProcesses {
		if p != nil {
			return
		}
	}
	if !e.daemonMode {
		e.fulfillShutdown()
	}
}

// refreshOutputTimes re-stats each output file after a successful run so
// the next Check sees an up-to-date mtime instead of the pre-build one.
func refreshOutputTimes(c *graph.Command) {
	for _, o := range c.Outputs {
		if info, err := os.Stat(o.Path); err == nil {
			o.SetModTime(info.ModTime())
		}
	}
}
