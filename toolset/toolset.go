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

// Package toolset is the command-synthesis collaborator: it turns a
// Project's components and files into graph.Commands, wiring AddInput/
// AddOutput so the Check cascade is correct from the moment a command is
// created.
package toolset

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/kiln-build/kiln/graph"
	"github.com/kiln-build/kiln/project"
)

// Toolset is the narrow collaborator interface spec.md names: given a
// Project, emit (by mutating its components' Commands) one command graph
// per translation unit / component.
type Toolset interface {
	CreateCommandsFor(p project.Project) error
	CreateCommandsForUnity(p project.Project) error
}

// objDir is where compiled object files and unity translation units are
// written, kept out of the source tree the same way evoke's toolset does.
const objDir = "./.kiln-out"

// Get resolves a toolset by the CLI's -t name.
func Get(name string) (Toolset, error) {
	switch name {
	case "", "unix", "gcc", "linux":
		return Unix{CC: "cc", CXX: "c++"}, nil
	case "clang", "apple", "darwin":
		return Unix{CC: "clang", CXX: "clang++"}, nil
	default:
		if s := suggest(name); s != "" {
			return nil, fmt.Errorf("toolset: unknown toolset %q, did you mean %q?", name, s)
		}
		return nil, fmt.Errorf("toolset: unknown toolset %q", name)
	}
}

// Unix synthesizes commands for a single cc/c++-style compiler pair,
// covering the gcc/clang family that Unix-like platforms use. It's the
// default on linux and darwin.
type Unix struct {
	CC  string
	CXX string

	// ExtraFlags holds per-component extra compiler flags loaded from a
	// ".toolset" YAML config (see config.go). Keyed by component name; the
	// zero value (nil) means no component has overrides.
	ExtraFlags map[string][]string
}

func (u Unix) compilerFor(path string) string {
	switch filepath.Ext(path) {
	case ".c", ".m":
		return u.CC
	default:
		return u.CXX
	}
}

// CreateCommandsFor emits one compile command per translation unit and one
// link (or archive) command per component.
func (u Unix) CreateCommandsFor(p project.Project) error {
	for _, c := range p.Components() {
		var objs []*graph.File
		for _, f := range c.Files {
			if !f.IsTranslationUnit() {
				continue
			}
			objFile, cmd := u.compileCommand(f, objPath(f.Path), c.Name)
			c.Commands = append(c.Commands, cmd)
			objs = append(objs, objFile)
		}
		if len(objs) == 0 {
			continue
		}
		c.Commands = append(c.Commands, u.linkCommand(c, objs))
	}
	return nil
}

// CreateCommandsForUnity concatenates each component's translation units
// into a single generated .unity.cpp (via a synthesis command of its own,
// so Check sees it as a normal generated file) and compiles only that.
func (u Unix) CreateCommandsForUnity(p project.Project) error {
	for _, c := range p.Components() {
		var tus []*graph.File
		for _, f := range c.Files {
			if f.IsTranslationUnit() {
				tus = append(tus, f)
			}
		}
		if len(tus) == 0 {
			continue
		}

		unityPath := fmt.Sprintf("%s/%s.unity.cpp", objDir, c.Name)
		unityFile := graph.NewFile(unityPath, c)

		var cat strings.Builder
		cat.WriteString("cat")
		for _, f := range tus {
			cat.WriteString(" " + f.Path)
		}
		cat.WriteString(" > " + unityPath)
		synth := graph.NewCommand(cat.String())
		for _, f := range tus {
			synth.AddInput(f)
		}
		synth.AddOutput(unityFile)
		c.Commands = append(c.Commands, synth)

		objFile, compile := u.compileCommand(unityFile, objPath(unityPath), c.Name)
		c.Commands = append(c.Commands, compile)
		c.Commands = append(c.Commands, u.linkCommand(c, []*graph.File{objFile}))
	}
	return nil
}

// compileCommand builds the compile Command for f and returns both it and
// the object File it produces, so callers can feed that File straight into
// a link command without re-creating (and double-claiming) it.
func (u Unix) compileCommand(f *graph.File, obj, component string) (*graph.File, *graph.Command) {
	paths := sortedIncludePaths(f)
	var args strings.Builder
	args.WriteString(u.compilerFor(f.Path))
	args.WriteString(" -c " + f.Path)
	for _, inc := range paths {
		args.WriteString(" -I" + inc)
	}
	for _, flag := range u.ExtraFlags[component] {
		args.WriteString(" " + flag)
	}
	args.WriteString(" -o " + obj)

	cmd := graph.NewCommand(args.String())
	cmd.AddInput(f)
	for _, dep := range f.Dependencies {
		cmd.AddInput(dep)
	}
	objFile := graph.NewFile(obj, f.Component)
	cmd.AddOutput(objFile)
	return objFile, cmd
}

func (u Unix) linkCommand(c *graph.Component, objs []*graph.File) *graph.Command {
	objPaths := make([]string, len(objs))
	for i, o := range objs {
		objPaths[i] = o.Path
	}

	var args strings.Builder
	var outPath string
	switch c.Kind {
	case graph.Executable:
		outPath = fmt.Sprintf("%s/%s", objDir, c.Name)
		args.WriteString(u.CXX + " " + strings.Join(objPaths, " ") + " -o " + outPath)
	default:
		outPath = fmt.Sprintf("%s/lib%s.a", objDir, c.Name)
		args.WriteString("ar rcs " + outPath + " " + strings.Join(objPaths, " "))
	}

	cmd := graph.NewCommand(args.String())
	for _, o := range objs {
		cmd.AddInput(o)
	}
	cmd.AddOutput(graph.NewFile(outPath, c))
	return cmd
}

func objPath(srcPath string) string {
	base := strings.TrimSuffix(filepath.Base(srcPath), filepath.Ext(srcPath))
	return fmt.Sprintf("%s/%s.o", objDir, base)
}

func sortedIncludePaths(f *graph.File) []string {
	paths := make([]string, 0, len(f.IncludePaths))
	for p := range f.IncludePaths {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}
