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
	"strings"
	"sync"

	"github.com/pterm/pterm"

	"github.com/kiln-build/kiln/graph"
)

// Human is the interactive-TTY reporter: a live progress bar plus colored
// FAILED output, the "guess" default when stdout is a terminal. Modeled on
// the teacher's StatusPrinter, generalized to pterm's progress bar instead
// of a hand-rolled %f/%t status line.
type Human struct {
	mu       sync.Mutex
	bar      *pterm.ProgressbarPrinter
	total    int
	finished int
}

// NewHuman constructs a Human reporter.
func NewHuman() *Human {
	return &Human{}
}

func (h *Human) SetConcurrencyCount(n int) {}

func (h *Human) ReportCommandQueue(commands []*graph.Command) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.bar == nil && len(commands) > 0 {
		h.bar, _ = pterm.DefaultProgressbar.
			WithTotal(len(commands)).
			WithTitle("building").
			Start()
		h.total = len(commands)
	}
}

func (h *Human) SetRunningCommand(slot int, cmd *graph.Command) {
	if cmd == nil {
		return
	}
	h.mu.Lock()
	bar := h.bar
	h.mu.Unlock()
	if bar != nil {
		bar.UpdateTitle(shortName(cmd))
	}
}

func (h *Human) ReportCommand(slot int, cmd *graph.Command) {
	if cmd == nil {
		return
	}
	h.mu.Lock()
	h.finished++
	bar := h.bar
	h.mu.Unlock()
	if bar != nil {
		bar.Increment()
	}
	if cmd.Result != nil && cmd.Result.ErrorCode != 0 {
		pterm.Error.Println("FAILED: " + cmd.CommandToRun)
		if out := strings.TrimRight(cmd.Result.Output, "\x00"); out != "" {
			pterm.Println(out)
		}
	}
}

func shortName(cmd *graph.Command) string {
	if len(cmd.Outputs) == 0 {
		return cmd.CommandToRun
	}
	return cmd.Outputs[0].Path
}
