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

package reporter

import (
	"fmt"
	"sync"

	"github.com/pterm/pterm"

	"github.com/kiln-build/kiln/graph"
)

// Daemon is the long-running watch-mode reporter: it prints one summary
// line per generation instead of a continuously refreshed progress bar,
// since the queue is replaced wholesale on every filesystem change.
type Daemon struct {
	mu               sync.Mutex
	generation       int
	total, finished  int
	failedThisRound  int
}

// NewDaemon constructs a Daemon reporter.
func NewDaemon() *Daemon {
	return &Daemon{}
}

func (d *Daemon) SetConcurrencyCount(n int) {
	pterm.Info.Printfln("watching for changes (%d parallel jobs)", n)
}

func (d *Daemon) ReportCommandQueue(commands []*graph.Command) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(commands) == 0 {
		// NewGeneration's cleared queue: the next non-empty queue starts
		// the new generation.
		d.total = 0
		return
	}
	if len(commands) != d.total {
		d.generation++
		d.total = len(commands)
		d.finished = 0
		d.failedThisRound = 0
		pterm.Info.Printfln("generation %d: %d commands queued", d.generation, d.total)
	}
}

func (d *Daemon) SetRunningCommand(slot int, cmd *graph.Command) {}

func (d *Daemon) ReportCommand(slot int, cmd *graph.Command) {
	if cmd == nil {
		return
	}
	d.mu.Lock()
	d.finished++
	failed := cmd.Result != nil && cmd.Result.ErrorCode != 0
	if failed {
		d.failedThisRound++
	}
	finished, total, failedThisRound := d.finished, d.total, d.failedThisRound
	d.mu.Unlock()

	if failed {
		pterm.Error.Println("FAILED: " + cmd.CommandToRun)
	}
	if finished == total {
		if failedThisRound == 0 {
			pterm.Success.Println(fmt.Sprintf("build clean (%d commands)", total))
		} else {
			pterm.Error.Println(fmt.Sprintf("build finished with %d failure(s)", failedThisRound))
		}
	}
}
