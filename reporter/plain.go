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
	"strings"
	"sync"

	"github.com/kiln-build/kiln/graph"
)

// Plain is the non-TTY / piped reporter: one line per started command, plus
// a FAILED line and the command's output for each failed one; no cursor
// control. Default when stdout isn't a terminal.
type Plain struct {
	mu             sync.Mutex
	started, total int
}

// NewPlain constructs a Plain reporter.
func NewPlain() *Plain {
	return &Plain{}
}

func (p *Plain) SetConcurrencyCount(n int) {
	fmt.Printf("kiln: using %d parallel jobs\n", n)
}

func (p *Plain) ReportCommandQueue(commands []*graph.Command) {
	p.mu.Lock()
	p.total = len(commands)
	p.mu.Unlock()
}

func (p *Plain) SetRunningCommand(slot int, cmd *graph.Command) {
	if cmd == nil {
		return
	}
	p.mu.Lock()
	p.started++
	s, t := p.started, p.total
	p.mu.Unlock()
	fmt.Printf("[%d/%d] %s\n", s, t, shortName(cmd))
}

func (p *Plain) ReportCommand(slot int, cmd *graph.Command) {
	if cmd == nil {
		return
	}
	if cmd.Result != nil && cmd.Result.ErrorCode != 0 {
		fmt.Printf("FAILED: %s\n", cmd.CommandToRun)
		if out := strings.TrimRight(cmd.Result.Output, "\x00"); out != "" {
			fmt.Println(out)
		}
	}
}
