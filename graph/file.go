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

// Package graph holds the build graph's data model: files, commands, and
// the Check propagation algorithm that keeps their readiness state
// consistent as the graph is mutated.
package graph

import (
	"strings"
	"time"
)

// State is the lifecycle state of a File.
type State int

const (
	Unknown State = iota
	NotFound
	Source
	ToRebuild
	Rebuilding
	Error
	Done
)

func (s State) String() string {
	switch s {
	case Unknown:
		return "unknown"
	case NotFound:
		return "not found"
	case Source:
		return "source"
	case ToRebuild:
		return "to rebuild"
	case Rebuilding:
		return "rebuilding"
	case Error:
		return "error"
	case Done:
		return "done"
	default:
		return "invalid"
	}
}

// Component is a named group of files that form a single build unit: a
// library, an executable, or (in unity-build mode) one amalgamated
// translation unit. Toolset attaches the Commands it synthesizes for the
// component's files here so the CLI and daemon can iterate
// Project.Components() and queue each component's Commands.
type Component struct {
	Name     string
	Kind     ComponentKind
	Files    []*File
	Commands []*Command
}

// ComponentKind distinguishes the kind of artifact a Component produces.
type ComponentKind int

const (
	Library ComponentKind = iota
	Executable
	Unity
)

// File is a node in the artifact graph: an on-disk source, header, or
// generated file.
type File struct {
	// Path is the canonical path from the project root; always begins
	// with "./".
	Path string

	// Component is a non-owning back-reference to the owning component.
	Component *Component

	ModuleName     string
	ModuleExported bool

	// RawIncludes/RawImports map the textual include/import target to
	// whether it was written with angle brackets (<...>) rather than
	// quotes. These are exactly what the parser observed, unresolved.
	RawIncludes map[string]bool
	RawImports  map[string]bool

	// Imports maps fully-qualified module name to whether it's exported.
	// A leading ':' is resolved against ModuleName.
	Imports map[string]bool

	// Dependencies maps textual name to the resolved File: "depends on
	// the actual file." ModImports is the analogous "depends on the
	// precompiled artifact of that file."
	Dependencies map[string]*File
	ModImports   map[string]*File

	// IncludePaths is the set of directories that must be on the
	// include search path for this file to compile.
	IncludePaths map[string]struct{}

	// Generator is the upstream Command that produces this file, if
	// any. At most one Command may claim a given File as output; see
	// Command.AddOutput.
	Generator *Command

	// Listeners are downstream Commands to notify (via Check) when this
	// file updates.
	Listeners []*Command

	HasExternalInclude bool
	HasInclude         bool

	// HasMain records whether this translation unit defines a main entry
	// point. Project uses it to classify the owning Component as an
	// executable rather than a library.
	HasMain bool

	State State

	// Hash is reserved for a future content-hash based cache; the
	// readiness protocol never consults it, only mtimes.
	Hash [64]byte

	// mtime is the last observed modification time of this file. The
	// zero value means "never produced / never stat'd", which Check
	// treats as older than any real timestamp, forcing a rebuild.
	mtime time.Time
}

// ModTime returns the file's last observed modification time.
func (f *File) ModTime() time.Time { return f.mtime }

// SetModTime records path's on-disk modification time (or the zero time
// if it doesn't exist / hasn't been produced yet). Project calls this
// after a filesystem stat; the Executor calls it on a command's outputs
// after that command completes successfully.
func (f *File) SetModTime(t time.Time) { f.mtime = t }

// NewFile constructs a File defaulting to the Source state, matching
// evoke's File ctor (generated files are later moved to Unknown by
// Command.AddOutput).
func NewFile(path string, component *Component) *File {
	return &File{
		Path:         path,
		Component:    component,
		RawIncludes:  map[string]bool{},
		RawImports:   map[string]bool{},
		Imports:      map[string]bool{},
		Dependencies: map[string]*File{},
		ModImports:   map[string]*File{},
		IncludePaths: map[string]struct{}{},
		State:        Source,
	}
}

// AddIncludeStmt records a raw #include observed by the parser.
func (f *File) AddIncludeStmt(angleBracketed bool, filename string) {
	f.RawIncludes[filename] = angleBracketed
}

// AddImportStmt records a raw #import (Objective-C) observed by the parser.
func (f *File) AddImportStmt(angleBracketed bool, filename string) {
	f.RawImports[filename] = angleBracketed
}

// SetModule records this file's C++20 module declaration.
func (f *File) SetModule(moduleName string, exported bool) {
	f.ModuleName = moduleName
	f.ModuleExported = exported
}

// AddImport records a C++20 "import" declaration. A name starting with ':'
// is a partition of the current module.
func (f *File) AddImport(importName string, exported bool) {
	if strings.HasPrefix(importName, ":") {
		f.Imports[f.ModuleName+importName] = exported
	} else {
		f.Imports[importName] = exported
	}
}

// FileUpdated notifies every listener that this file changed, re-running
// Check on each so the readiness state propagates downstream.
func (f *File) FileUpdated() {
	for _, c := range f.Listeners {
		c.Check()
	}
}

// SignalRebuild forces this file directly into newState. Used by the
// daemon/project layer when a source file on disk changes and must be
// re-scanned; generated files instead get their state flipped indirectly
// via Command.Check.
func (f *File) SignalRebuild(newState State) {
	f.State = newState
}

var translationUnitExts = map[string]struct{}{
	".c": {}, ".cc": {}, ".cpp": {}, ".cxx": {}, ".m": {}, ".mm": {},
}

var headerExts = map[string]struct{}{
	".h": {}, ".hh": {}, ".hpp": {}, ".hxx": {}, ".inl": {},
}

func extOf(path string) string {
	i := strings.LastIndexByte(path, '.')
	if i < 0 {
		return ""
	}
	return path[i:]
}

// IsTranslationUnit reports whether path names a compilable source file
// based on its extension.
func IsTranslationUnit(path string) bool {
	_, ok := translationUnitExts[extOf(path)]
	return ok
}

// IsHeader reports whether path names a header (dependency-only) file.
func IsHeader(path string) bool {
	_, ok := headerExts[extOf(path)]
	return ok
}

// IsTranslationUnit is the instance form of the static classifier.
func (f *File) IsTranslationUnit() bool { return IsTranslationUnit(f.Path) }

// IsHeader is the instance form of the static classifier.
func (f *File) IsHeader() bool { return IsHeader(f.Path) }
