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

package project

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/kiln-build/kiln/fswatch"
	"github.com/kiln-build/kiln/graph"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(root, rel)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func findByExt(files []*graph.File, ext string) *graph.File {
	for _, f := range files {
		if filepath.Ext(f.Path) == ext {
			return f
		}
	}
	return nil
}

func TestOpen_resolvesLocalInclude(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"widget/widget.h":   "#pragma once\n",
		"widget/widget.cpp": "#include \"widget.h\"\nint main() {}\n",
	})

	p, err := Open(root)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	comps := p.Components()
	if len(comps) != 1 {
		t.Fatalf("expected 1 component, got %d", len(comps))
	}
	if comps[0].Name != "widget" {
		t.Fatalf("expected component name %q, got %q", "widget", comps[0].Name)
	}

	src := findByExt(comps[0].Files, ".cpp")
	if src == nil {
		t.Fatal("expected to find widget.cpp among the component's files")
	}
	if len(src.Dependencies) != 1 {
		t.Fatalf("expected widget.cpp to resolve its one #include, got %d deps", len(src.Dependencies))
	}
	if len(p.UnknownHeaders()) != 0 {
		t.Fatalf("expected no unresolved headers, got %v", p.UnknownHeaders())
	}
}

func TestOpen_reportsUnknownHeader(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"widget/widget.cpp": "#include <nonexistent_header.h>\n",
	})

	p, err := Open(root)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	unknown := p.UnknownHeaders()
	if len(unknown) != 1 || unknown[0] != "nonexistent_header.h" {
		t.Fatalf("expected [nonexistent_header.h], got %v", unknown)
	}
}

func TestFileUpdate_deletionSignalsReload(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"widget/widget.cpp": "int main() {}\n",
	})
	p, err := Open(root)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	path := filepath.Join(root, "widget", "widget.cpp")
	os.Remove(path)

	if reloaded := p.FileUpdate(path, fswatch.Deleted); !reloaded {
		t.Fatal("expected deleting a known file to report reloaded=true")
	}
}

func TestFileUpdate_createdFileIsScannedAndAddedToComponent(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"widget/widget.h": "#pragma once\n",
	})
	p, err := Open(root)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if n := len(p.Components()[0].Files); n != 1 {
		t.Fatalf("expected 1 file before the create event, got %d", n)
	}

	newPath := filepath.Join(root, "widget", "widget.cpp")
	if err := os.WriteFile(newPath, []byte("#include \"widget.h\"\nint main() { return 0; }\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if reloaded := p.FileUpdate(newPath, fswatch.Created); !reloaded {
		t.Fatal("expected a Created event to report reloaded=true")
	}

	comps := p.Components()
	if len(comps) != 1 {
		t.Fatalf("expected still 1 component, got %d", len(comps))
	}
	if len(comps[0].Files) != 2 {
		t.Fatalf("expected the new file to be added to the component, got %d files", len(comps[0].Files))
	}
	src := findByExt(comps[0].Files, ".cpp")
	if src == nil {
		t.Fatal("expected the newly created .cpp file among the component's files")
	}
	if len(src.Dependencies) != 1 {
		t.Fatalf("expected the new file's #include to resolve against the existing header, got %d deps", len(src.Dependencies))
	}
	if comps[0].Kind != graph.Executable {
		t.Fatalf("expected the component to become Executable once a main() file is added, got %v", comps[0].Kind)
	}
}

func TestFileUpdate_renamedVacatedPathIsEvicted(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"widget/old.cpp": "int f() { return 1; }\n",
	})
	p, err := Open(root)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	oldPath := filepath.Join(root, "widget", "old.cpp")
	newPath := filepath.Join(root, "widget", "new.cpp")
	if err := os.Rename(oldPath, newPath); err != nil {
		t.Fatal(err)
	}

	// fsnotify reports a Rename event for the vacated old name.
	if reloaded := p.FileUpdate(oldPath, fswatch.Renamed); !reloaded {
		t.Fatal("expected a Renamed event on a vacated path to report reloaded=true")
	}
	// The new half of the rename arrives as its own Created event.
	p.FileUpdate(newPath, fswatch.Created)
	if findByExt(p.Components()[0].Files, ".cpp").Path == "./widget/old.cpp" {
		t.Fatal("expected the vacated old name to no longer resolve as the live file")
	}
}

func TestScan_classifiesComponentWithMainAsExecutable(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"app/main.cpp":      "int main() { return 0; }\n",
		"widget/widget.cpp": "int add(int a, int b) { return a + b; }\n",
	})
	p, err := Open(root)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	var app, widget *graph.Component
	for _, c := range p.Components() {
		switch c.Name {
		case "app":
			app = c
		case "widget":
			widget = c
		}
	}
	if app == nil || app.Kind != graph.Executable {
		t.Fatalf("expected component \"app\" to be classified Executable, got %+v", app)
	}
	if widget == nil || widget.Kind != graph.Library {
		t.Fatalf("expected component \"widget\" to stay Library, got %+v", widget)
	}
}

func TestReload_danglingSymlinkSurfacesAsConcurrentModification(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"widget/widget.cpp": "int main() { return 0; }\n",
	})
	ghost := filepath.Join(root, "widget", "ghost.cpp")
	if err := os.Symlink(filepath.Join(root, "widget", "missing.cpp"), ghost); err != nil {
		t.Skipf("symlinks unavailable in this environment: %v", err)
	}

	p := &project{root: root}
	err := p.scan()
	if err == nil {
		t.Fatal("expected scanning a dangling symlink to return an error")
	}
	if !errors.Is(err, ErrConcurrentModification) {
		t.Fatalf("expected ErrConcurrentModification in the chain, got %v", err)
	}
}

func TestFileUpdate_unchangedEditDoesNotForceReload(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"widget/widget.cpp": "int main() { return 0; }\n",
	})
	p, err := Open(root)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	path := filepath.Join(root, "widget", "widget.cpp")
	os.WriteFile(path, []byte("int main() { return 1; }\n"), 0o644)

	if reloaded := p.FileUpdate(path, fswatch.Modified); reloaded {
		t.Fatal("expected an edit with no include/import changes to not force a reload")
	}
}
