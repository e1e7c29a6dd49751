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

import "testing"

func TestIsTranslationUnit(t *testing.T) {
	cases := map[string]bool{
		"./foo.cpp": true,
		"./foo.cc":  true,
		"./foo.c":   true,
		"./foo.mm":  true,
		"./foo.h":   false,
		"./foo.hpp": false,
		"./foo":     false,
	}
	for path, want := range cases {
		if got := IsTranslationUnit(path); got != want {
			t.Errorf("IsTranslationUnit(%q) = %v, want %v", path, got, want)
		}
	}
}

func TestIsHeader(t *testing.T) {
	cases := map[string]bool{
		"./foo.h":   true,
		"./foo.hxx": true,
		"./foo.cpp": false,
	}
	for path, want := range cases {
		if got := IsHeader(path); got != want {
			t.Errorf("IsHeader(%q) = %v, want %v", path, got, want)
		}
	}
}

func TestAddImport_partitionPrefix(t *testing.T) {
	f := NewFile("./foo.cppm", nil)
	f.SetModule("mymod", true)
	f.AddImport(":part", false)
	if _, ok := f.Imports["mymod:part"]; !ok {
		t.Fatalf("expected partition import to be qualified with module name, got %v", f.Imports)
	}
}

func TestFileUpdated_notifiesListeners(t *testing.T) {
	comp := &Component{Name: "c"}
	hdr := NewFile("./foo.h", comp)
	src := NewFile("./foo.cpp", comp)
	src.Dependencies["foo.h"] = hdr

	cmd := NewCommand("cc -c foo.cpp -o foo.o")
	cmd.AddInput(src)
	cmd.AddInput(hdr)
	out := NewFile("./foo.o", comp)
	cmd.AddOutput(out)

	if len(hdr.Listeners) != 1 {
		t.Fatalf("expected AddInput to register cmd as a listener on hdr, got %d", len(hdr.Listeners))
	}

	// FileUpdated re-runs Check on every listener; it must not panic even
	// though out has never been produced.
	hdr.FileUpdated()
	if cmd.State != ToBeRun && cmd.State != CommandDone {
		t.Fatalf("unexpected command state after FileUpdated: %v", cmd.State)
	}
}
