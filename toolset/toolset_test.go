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

package toolset

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kiln-build/kiln/fswatch"
	"github.com/kiln-build/kiln/graph"
	"github.com/kiln-build/kiln/project"
)

type stubProject struct {
	components []*graph.Component
}

func (s stubProject) Components() []*graph.Component                        { return s.components }
func (s stubProject) UnknownHeaders() []string                              { return nil }
func (s stubProject) Reload() error                                         { return nil }
func (s stubProject) FileUpdate(path string, change fswatch.Change) bool    { return false }

func TestGet_resolvesKnownNames(t *testing.T) {
	for _, name := range []string{"", "unix", "gcc", "linux", "clang", "apple", "darwin"} {
		if _, err := Get(name); err != nil {
			t.Errorf("Get(%q) returned unexpected error: %v", name, err)
		}
	}
}

func TestUnix_compilerFor(t *testing.T) {
	u := Unix{CC: "cc", CXX: "c++"}
	if got := u.compilerFor("foo.c"); got != "cc" {
		t.Errorf("compilerFor(foo.c) = %q, want cc", got)
	}
	if got := u.compilerFor("foo.cpp"); got != "c++" {
		t.Errorf("compilerFor(foo.cpp) = %q, want c++", got)
	}
}

func TestCreateCommandsFor_oneCompileOneLink(t *testing.T) {
	comp := &graph.Component{Name: "widget", Kind: graph.Executable}
	src := graph.NewFile("./widget/main.cpp", comp)
	hdr := graph.NewFile("./widget/widget.h", comp)
	comp.Files = []*graph.File{src, hdr}

	u := Unix{CC: "cc", CXX: "c++"}
	if err := u.CreateCommandsFor(stubProject{[]*graph.Component{comp}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(comp.Commands) != 2 {
		t.Fatalf("expected 1 compile + 1 link command, got %d", len(comp.Commands))
	}
	compile, link := comp.Commands[0], comp.Commands[1]
	if !strings.Contains(compile.CommandToRun, "c++ -c ./widget/main.cpp") {
		t.Errorf("unexpected compile command: %q", compile.CommandToRun)
	}
	if !strings.HasPrefix(link.CommandToRun, "c++ ") || !strings.Contains(link.CommandToRun, "-o ./.kiln-out/widget") {
		t.Errorf("unexpected link command: %q", link.CommandToRun)
	}
	if len(link.Inputs) != 1 {
		t.Fatalf("expected link to depend on exactly the one object file, got %d inputs", len(link.Inputs))
	}
}

// TestCreateCommandsFor_realProjectLinksExecutable drives project.Open on
// an actual on-disk tree through CreateCommandsFor, so the component
// classification scan() does (graph.Executable for a "main" translation
// unit, graph.Library otherwise) is exercised end to end rather than only
// against a hand-built graph.Component fixture.
func TestCreateCommandsFor_realProjectLinksExecutable(t *testing.T) {
	root := t.TempDir()
	files := map[string]string{
		"app/main.cpp":      "int main(int argc, char** argv) {\n  return 0;\n}\n",
		"widget/widget.cpp": "int add(int a, int b) { return a + b; }\n",
		"widget/widget.h":   "int add(int a, int b);\n",
	}
	for rel, content := range files {
		path := filepath.Join(root, rel)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	proj, err := project.Open(root)
	if err != nil {
		t.Fatalf("project.Open: %v", err)
	}

	u := Unix{CC: "cc", CXX: "c++"}
	if err := u.CreateCommandsFor(proj); err != nil {
		t.Fatalf("CreateCommandsFor: %v", err)
	}

	var appLink, widgetLink *graph.Command
	for _, c := range proj.Components() {
		last := c.Commands[len(c.Commands)-1]
		switch c.Name {
		case "app":
			appLink = last
		case "widget":
			widgetLink = last
		}
	}

	if appLink == nil {
		t.Fatal("expected an \"app\" component with at least one command")
	}
	if strings.Contains(appLink.CommandToRun, "ar rcs") {
		t.Fatalf("component containing main() produced an archive command, not a link: %q", appLink.CommandToRun)
	}
	if !strings.HasPrefix(appLink.CommandToRun, "c++ ") || !strings.Contains(appLink.CommandToRun, "-o ./.kiln-out/app") {
		t.Fatalf("unexpected link command for the executable component: %q", appLink.CommandToRun)
	}

	if widgetLink == nil {
		t.Fatal("expected a \"widget\" component with at least one command")
	}
	if !strings.HasPrefix(widgetLink.CommandToRun, "ar rcs") {
		t.Fatalf("component without main() should still archive, got: %q", widgetLink.CommandToRun)
	}
}

func TestCreateCommandsFor_headerOnlyComponentProducesNoCommands(t *testing.T) {
	comp := &graph.Component{Name: "headeronly"}
	comp.Files = []*graph.File{graph.NewFile("./headeronly/only.h", comp)}

	u := Unix{CC: "cc", CXX: "c++"}
	if err := u.CreateCommandsFor(stubProject{[]*graph.Component{comp}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(comp.Commands) != 0 {
		t.Fatalf("expected no commands for a header-only component, got %d", len(comp.Commands))
	}
}
