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

//go:build linux

package process

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// clockTicksPerSec mirrors sysconf(_SC_CLK_TCK), which is fixed at 100 on
// every Linux architecture Go supports.
const clockTicksPerSec = 100

// statPid reads /proc/<pid>/stat and returns a best-effort CPU time and
// virtual memory size for pid. The CPU time is taken from the cutime/cstime
// fields (CPU time of pid's waited-for children), not pid's own
// utime/stime.
//
// This is read immediately after the child is spawned, not after it
// exits: by the time Wait() returns, /proc/<pid> is gone. That means the
// cutime/cstime/vsize fields are a snapshot from very early in the child's
// life, not its totals at exit — the same limitation the reference tool
// this was ported from has. Skip 15 whitespace-delimited fields (past
// comm, state, ppid, ... stime) and parse the remainder positionally;
// treat the result as advisory only, never as a correctness signal.
func statPid(pid int) (time.Duration, uint64) {
	data, err := os.ReadFile(fmt.Sprintf("/proc/%d/stat", pid))
	if err != nil {
		return 0, 0
	}
	fields := strings.Fields(string(data))
	// comm (field 2) may itself contain spaces; it's parenthesized, so
	// walk past its closing paren instead of trusting Fields' split.
	if close := strings.LastIndexByte(string(data), ')'); close >= 0 {
		rest := strings.Fields(string(data)[close+1:])
		fields = append([]string{"", ""}, rest...)
	}
	if len(fields) < 23 {
		return 0, 0
	}
	var cutime, cstime int64
	var vsize uint64
	fmt.Sscanf(fields[15], "%d", &cutime)
	fmt.Sscanf(fields[16], "%d", &cstime)
	fmt.Sscanf(fields[22], "%d", &vsize)
	cpu := time.Duration(cutime+cstime) * time.Second / clockTicksPerSec
	return cpu, vsize
}
