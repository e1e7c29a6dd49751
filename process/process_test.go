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

package process

import (
	"strings"
	"testing"
	"time"
)

func awaitDone(t *testing.T, p *Process, done <-chan struct{}) {
	t.Helper()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for process completion callback")
	}
	if !p.Done() {
		t.Fatal("expected Done() true after completion callback fired")
	}
}

func TestProcess_successfulExit(t *testing.T) {
	done := make(chan struct{})
	var p *Process
	p = Start("echo hello", func(pr *Process, cpuTime time.Duration, vsize uint64) {
		close(done)
	})
	awaitDone(t, p, done)

	if p.ExitCode() != 0 {
		t.Fatalf("expected exit code 0, got %d", p.ExitCode())
	}
	if !strings.Contains(p.Output(), "hello") {
		t.Fatalf("expected output to contain %q, got %q", "hello", p.Output())
	}
}

func TestProcess_nonzeroExit(t *testing.T) {
	done := make(chan struct{})
	p := Start("exit 7", func(pr *Process, cpuTime time.Duration, vsize uint64) {
		close(done)
	})
	awaitDone(t, p, done)

	if p.ExitCode() != 7 {
		t.Fatalf("expected exit code 7, got %d", p.ExitCode())
	}
}

func TestProcess_noSuchCommand(t *testing.T) {
	done := make(chan struct{})
	p := Start("kiln_no_such_command_xyz", func(pr *Process, cpuTime time.Duration, vsize uint64) {
		close(done)
	})
	awaitDone(t, p, done)

	if p.ExitCode() == 0 {
		t.Fatal("expected a nonzero exit code for a missing command")
	}
}

func TestProcess_callbackFiresExactlyOnce(t *testing.T) {
	var count int
	done := make(chan struct{})
	_ = Start("true", func(pr *Process, cpuTime time.Duration, vsize uint64) {
		count++
		close(done)
	})
	<-done
	time.Sleep(20 * time.Millisecond)
	if count != 1 {
		t.Fatalf("expected completion callback to fire exactly once, fired %d times", count)
	}
}
