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

// Package project is the source-discovery collaborator: it walks a root
// directory, classifies files, scans them for raw include/import
// statements, and resolves those statements into the graph's dependency
// edges. This is explicitly an external collaborator to the build engine
// (engine and graph never import this package); the engine only sees the
// Files and Commands that result.
package project

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/kiln-build/kiln/fswatch"
	"github.com/kiln-build/kiln/graph"
)

// ErrConcurrentModification marks a scan or rescan that observed the tree
// changing out from under it (a file vanishing between being listed and
// being opened). Reload/FileUpdate callers should treat this as transient
// and retry the whole step, rather than as a terminal failure.
var ErrConcurrentModification = errors.New("project: directory tree changed during scan")

// Project is the narrow collaborator interface the CLI and daemon depend
// on.
type Project interface {
	Components() []*graph.Component
	UnknownHeaders() []string
	FileUpdate(path string, change fswatch.Change) (reloaded bool)
	Reload() error
}

var (
	includeRe = regexp.MustCompile(`^\s*#\s*include\s*([<"])([^>"]+)[>"]`)
	importRe  = regexp.MustCompile(`^\s*#\s*import\s*([<"])([^>"]+)[>"]`)
	moduleRe  = regexp.MustCompile(`^\s*export\s+module\s+([A-Za-z0-9_.:]+)\s*;`)
	cxxImport = regexp.MustCompile(`^\s*import\s+([A-Za-z0-9_.:]+)\s*;`)
	mainRe    = regexp.MustCompile(`^\s*(?:static\s+)?(?:int|void)\s+main\s*\(`)
)

// project is the concrete, on-disk implementation shipped with kiln.
type project struct {
	root       string
	components map[string]*graph.Component
	byPath     map[string]*graph.File
	unknown    map[string]struct{}
}

// Open walks root and builds the initial graph.
func Open(root string) (Project, error) {
	p := &project{root: root}
	if err := p.scan(); err != nil {
		return nil, err
	}
	return p, nil
}

// Components returns every discovered component, sorted by name for
// deterministic iteration (toolset command synthesis, -cm export, -v
// dump).
func (p *project) Components() []*graph.Component {
	out := make([]*graph.Component, 0, len(p.components))
	for _, c := range p.components {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// UnknownHeaders returns every raw include/import the scan could not
// resolve against any known file, sorted for stable output.
func (p *project) UnknownHeaders() []string {
	out := make([]string, 0, len(p.unknown))
	for h := range p.unknown {
		out = append(out, h)
	}
	sort.Strings(out)
	return out
}

// Reload re-walks the whole tree from scratch, matching evoke's
// Project::Reload: used when a package/toolset config file changes, since
// that can affect every component at once.
func (p *project) Reload() error {
	return p.scan()
}

// FileUpdate applies a single file change to the graph and reports whether
// it changed the graph enough that commands must be regenerated. A Deleted
// event reports true for a tracked file. A Created or Renamed event reports
// true unless it names an existing file that is neither a source nor a
// header. An in-place edit reports true if the file is untracked or
// unreadable, if its set of raw includes/imports changed, or if it gained
// or lost a main definition; otherwise it notifies the file's listeners
// and reports false.
func (p *project) FileUpdate(path string, change fswatch.Change) bool {
	rel := p.relPath(path)
	switch change {
	case fswatch.Deleted:
		if f, ok := p.byPath[rel]; ok {
			delete(p.byPath, rel)
			f.SignalRebuild(graph.NotFound)
			return true
		}
		return false
	case fswatch.Created, fswatch.Renamed:
		return p.addOrRemoveFile(rel)
	default:
		f, ok := p.byPath[rel]
		if !ok {
			return true
		}
		oldIncludes, oldImports := f.RawIncludes, f.RawImports
		hadMain := f.HasMain
		if err := p.scanFile(f); err != nil {
			return true
		}
		changed := len(f.RawIncludes) != len(oldIncludes) || len(f.RawImports) != len(oldImports) || f.HasMain != hadMain
		for name := range f.RawIncludes {
			if _, ok := oldIncludes[name]; !ok {
				changed = true
			}
		}
		for name := range f.RawImports {
			if _, ok := oldImports[name]; !ok {
				changed = true
			}
		}
		if changed {
			return true
		}
		f.FileUpdated()
		return false
	}
}

// addOrRemoveFile handles a Created or Renamed event for rel. fsnotify
// reports a Rename on the vacated (old) name, indistinguishable at this
// layer from a delete, so this stats the path first: if it's gone, any
// stale graph entry for it is evicted (dropped from the path index and
// from its component's file list, and marked NotFound); if it's
// present (a genuine create, or the new half of a rename landing in the
// same watched tree), it's classified, scanned, and added to its
// component the same way scan() would have found it from a cold walk.
func (p *project) addOrRemoveFile(rel string) bool {
	abs := filepath.Join(p.root, strings.TrimPrefix(rel, "./"))
	info, err := os.Stat(abs)
	if err != nil || info.IsDir() {
		if f, ok := p.byPath[rel]; ok {
			delete(p.byPath, rel)
			if c := f.Component; c != nil {
				for i, cf := range c.Files {
					if cf == f {
						c.Files = append(c.Files[:i:i], c.Files[i+1:]...)
						break
					}
				}
			}
			f.SignalRebuild(graph.NotFound)
		}
		return true
	}
	if !graph.IsTranslationUnit(rel) && !graph.IsHeader(rel) {
		return false
	}

	compName := componentName(p.root, abs)
	c, ok := p.components[compName]
	if !ok {
		c = &graph.Component{Name: compName, Kind: graph.Library}
		p.components[compName] = c
	}
	f := graph.NewFile(rel, c)
	f.SetModTime(info.ModTime())
	c.Files = append(c.Files, f)
	p.byPath[rel] = f

	if err := p.scanFile(f); err != nil {
		return true
	}
	classifyComponent(c)
	return true
}

func (p *project) relPath(abs string) string {
	rel, err := filepath.Rel(p.root, abs)
	if err != nil {
		return abs
	}
	return "./" + filepath.ToSlash(rel)
}

// scan performs the full walk + parse + resolve pass.
func (p *project) scan() error {
	components := map[string]*graph.Component{}
	byPath := map[string]*graph.File{}

	err := filepath.WalkDir(p.root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return ErrConcurrentModification
			}
			return err
		}
		if d.IsDir() {
			if d.Name() == ".git" || d.Name() == "build" {
				return filepath.SkipDir
			}
			return nil
		}
		if !graph.IsTranslationUnit(path) && !graph.IsHeader(path) {
			return nil
		}
		rel := p.relPath(path)
		compName := componentName(p.root, path)
		c, ok := components[compName]
		if !ok {
			c = &graph.Component{Name: compName, Kind: graph.Library}
			components[compName] = c
		}
		f := graph.NewFile(rel, c)
		if info, statErr := d.Info(); statErr == nil {
			f.SetModTime(info.ModTime())
		}
		c.Files = append(c.Files, f)
		byPath[rel] = f
		return nil
	})
	if err != nil {
		return fmt.Errorf("project: scanning %s: %w", p.root, err)
	}

	for _, f := range byPath {
		if err := scanFileContents(p.root, f); err != nil {
			if os.IsNotExist(err) {
				return fmt.Errorf("project: scanning %s: %w", f.Path, ErrConcurrentModification)
			}
			return fmt.Errorf("project: scanning %s: %w", f.Path, err)
		}
	}
	for _, c := range components {
		classifyComponent(c)
	}

	unknown := map[string]struct{}{}
	for _, f := range byPath {
		resolve(f, byPath, unknown)
	}

	p.components = components
	p.byPath = byPath
	p.unknown = unknown
	return nil
}

func (p *project) scanFile(f *graph.File) error {
	f.RawIncludes = map[string]bool{}
	f.RawImports = map[string]bool{}
	f.HasMain = false
	if err := scanFileContents(p.root, f); err != nil {
		return err
	}
	resolve(f, p.byPath, p.unknown)
	if f.Component != nil {
		classifyComponent(f.Component)
	}
	return nil
}

// classifyComponent derives c.Kind from its files: any translation unit
// defining main makes the whole component an executable, matching the
// synthesized link command (toolset.Unix.linkCommand emits a binary link
// for graph.Executable, an archive otherwise).
func classifyComponent(c *graph.Component) {
	for _, f := range c.Files {
		if f.HasMain {
			c.Kind = graph.Executable
			return
		}
	}
	c.Kind = graph.Library
}

// componentName groups a file by its immediate parent directory relative
// to root; files scattered directly under root form an implicit "root"
// component.
func componentName(root, path string) string {
	rel, err := filepath.Rel(root, filepath.Dir(path))
	if err != nil || rel == "." {
		return "root"
	}
	return filepath.ToSlash(strings.SplitN(rel, string(filepath.Separator), 2)[0])
}

// scanFileContents reads f line by line, extracting raw include/import/
// module statements.
func scanFileContents(root string, f *graph.File) error {
	abs := filepath.Join(root, strings.TrimPrefix(f.Path, "./"))
	fh, err := os.Open(abs)
	if err != nil {
		return err
	}
	defer fh.Close()

	sc := bufio.NewScanner(fh)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for sc.Scan() {
		line := sc.Text()
		if m := includeRe.FindStringSubmatch(line); m != nil {
			f.AddIncludeStmt(m[1] == "<", m[2])
			continue
		}
		if m := importRe.FindStringSubmatch(line); m != nil {
			f.AddImportStmt(m[1] == "<", m[2])
			continue
		}
		if m := moduleRe.FindStringSubmatch(line); m != nil {
			f.SetModule(m[1], true)
			continue
		}
		if m := cxxImport.FindStringSubmatch(line); m != nil {
			f.AddImport(m[1], false)
			continue
		}
		if mainRe.MatchString(line) {
			f.HasMain = true
		}
	}
	return sc.Err()
}

// resolve matches f's raw includes/imports against every known file by
// basename, populating Dependencies/ModImports/IncludePaths. Anything that
// doesn't match a known file is recorded as unknown.
func resolve(f *graph.File, byPath map[string]*graph.File, unknown map[string]struct{}) {
	for name := range f.RawIncludes {
		if dep := findByBase(byPath, name); dep != nil {
			f.Dependencies[name] = dep
			f.IncludePaths[filepath.Dir(strings.TrimPrefix(dep.Path, "./"))] = struct{}{}
		} else {
			unknown[name] = struct{}{}
		}
	}
	for name := range f.RawImports {
		if dep := findByBase(byPath, name); dep != nil {
			f.Dependencies[name] = dep
		} else {
			unknown[name] = struct{}{}
		}
	}
	for name := range f.Imports {
		if dep := findByModule(byPath, name); dep != nil {
			f.ModImports[name] = dep
		}
	}
}

func findByBase(byPath map[string]*graph.File, name string) *graph.File {
	base := filepath.Base(name)
	for path, f := range byPath {
		if filepath.Base(path) == base {
			return f
		}
	}
	return nil
}

func findByModule(byPath map[string]*graph.File, moduleName string) *graph.File {
	for _, f := range byPath {
		if f.ModuleName == moduleName {
			return f
		}
	}
	return nil
}
