// Copyright 2021 Google Inc. All Rights Reserved.
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

// Package compiledb emits a standard compile_commands.json compilation
// database, and per-component CMakeLists.txt files, from a built Project.
package compiledb

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/kiln-build/kiln/graph"
	"github.com/kiln-build/kiln/project"
)

// entry is one element of the compile_commands.json array. The schema is
// small and fixed, so encoding/json's struct tags are the idiomatic tool
// here; see DESIGN.md for why no third-party JSON library from the corpus
// is a better fit for a one-shot array-of-structs marshal.
type entry struct {
	Directory string `json:"directory"`
	Command   string `json:"command"`
	File      string `json:"file"`
}

// WriteCompileCommands writes the compilation database for every compile
// command (one per translation unit) across every component in p.
func WriteCompileCommands(w io.Writer, root string, p project.Project) error {
	var entries []entry
	for _, c := range p.Components() {
		for _, cmd := range c.Commands {
			tu := translationUnitInput(cmd)
			if tu == nil {
				continue
			}
			entries = append(entries, entry{
				Directory: root,
				Command:   cmd.CommandToRun,
				File:      tu.Path,
			})
		}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(entries)
}

// translationUnitInput returns cmd's first translation-unit input, if it
// has one: compile commands have exactly one, link/archive commands have
// none, and synthesis commands (whose output is itself a translation unit)
// are skipped.
func translationUnitInput(cmd *graph.Command) *graph.File {
	for _, out := range cmd.Outputs {
		if out.IsTranslationUnit() {
			return nil
		}
	}
	for _, in := range cmd.Inputs {
		if in.IsTranslationUnit() {
			return in
		}
	}
	return nil
}

// WriteCMakeLists emits one CMakeLists.txt per component under outDir,
// declaring an add_library/add_executable with that component's
// translation units and resolved include directories. This supplements a
// feature the distilled spec folded into a bare "-cm" flag without
// detailing: evoke's CMake exporter did the same one-file-per-component
// split.
func WriteCMakeLists(outDir string, p project.Project) error {
	for _, c := range p.Components() {
		var sb strings.Builder
		fmt.Fprintf(&sb, "# Generated by kiln -cm. Do not edit.\n")
		fmt.Fprintf(&sb, "cmake_minimum_required(VERSION 3.16)\n")
		fmt.Fprintf(&sb, "project(%s)\n\n", c.Name)

		var tus []string
		includeDirs := map[string]struct{}{}
		for _, f := range c.Files {
			if f.IsTranslationUnit() {
				tus = append(tus, f.Path)
			}
			for dir := range f.IncludePaths {
				includeDirs[dir] = struct{}{}
			}
		}
		if len(tus) == 0 {
			continue
		}

		target := "add_library"
		if c.Kind == graph.Executable {
			target = "add_executable"
		}
		fmt.Fprintf(&sb, "%s(%s\n", target, c.Name)
		for _, tu := range tus {
			fmt.Fprintf(&sb, "  %s\n", tu)
		}
		sb.WriteString(")\n")

		if len(includeDirs) > 0 {
			fmt.Fprintf(&sb, "\ntarget_include_directories(%s PRIVATE\n", c.Name)
			for dir := range includeDirs {
				fmt.Fprintf(&sb, "  %s\n", dir)
			}
			sb.WriteString(")\n")
		}

		path := filepath.Join(outDir, c.Name, "CMakeLists.txt")
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return fmt.Errorf("compiledb: writing %s: %w", path, err)
		}
		if err := os.WriteFile(path, []byte(sb.String()), 0o644); err != nil {
			return fmt.Errorf("compiledb: writing %s: %w", path, err)
		}
	}
	return nil
}
