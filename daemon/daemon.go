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

// Package daemon binds a filesystem-change event to graph reload +
// Executor.NewGeneration + re-dispatch. It is the only place that drives
// Project.Reload/FileUpdate, Toolset.CreateCommandsFor, and
// Executor.NewGeneration/RunMoreCommands together, all under the
// executor's single lock.
package daemon

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/kiln-build/kiln/compiledb"
	"github.com/kiln-build/kiln/engine"
	"github.com/kiln-build/kiln/fswatch"
	applog "github.com/kiln-build/kiln/log"
	"github.com/kiln-build/kiln/project"
	"github.com/kiln-build/kiln/toolset"
)

// Options configures what a daemon generation does after a reload.
type Options struct {
	Root                   string
	Unity                  bool
	WriteCompileCommandsTo string // empty disables -cp output
	ToolsetName            string // -t flag; re-resolved against the config file on every *.toolset change
}

// Daemon owns the long-running watch loop.
type Daemon struct {
	ex   *engine.Executor
	proj project.Project
	ts   toolset.Toolset
	opts Options
}

// toolsetConfigPath returns where a project keeps its optional ".toolset"
// YAML override file, at the project root.
func (d *Daemon) toolsetConfigPath() string {
	return filepath.Join(d.opts.Root, ".toolset")
}

// reloadToolsetConfig re-reads the project's ".toolset" file, if any, and
// rebuilds d.ts with its compiler/flag overrides applied. Called whenever a
// *.toolset file anywhere in the tree changes (see isPackageOrToolsetChange
// in attemptStep).
func (d *Daemon) reloadToolsetConfig() error {
	cfg, err := toolset.LoadConfig(d.toolsetConfigPath())
	if err != nil {
		return err
	}
	ts, err := toolset.GetConfigured(d.opts.ToolsetName, cfg)
	if err != nil {
		return err
	}
	d.ts = ts
	return nil
}

// New constructs a Daemon wired to an already-built Project/Executor/
// Toolset.
func New(ex *engine.Executor, proj project.Project, ts toolset.Toolset, opts Options) *Daemon {
	return &Daemon{ex: ex, proj: proj, ts: ts, opts: opts}
}

// Watch starts the filesystem watcher in the background and returns once
// it's installed. The caller is responsible for blocking on the
// executor's own shutdown signal (from Executor.Mode) and for calling the
// returned stop function to tear the watch down afterward.
func (d *Daemon) Watch() (stop func(), err error) {
	return fswatch.Watch(d.opts.Root, d.onChange)
}

// onChange implements spec §4.5: acquire the executor mutex; ask Project
// whether the change requires a reload; treat *.toolset / packages.conf as
// a package/toolset change regardless; if either is true, NewGeneration +
// regenerate commands, calling Project.Reload first only for a
// package/toolset change (and re-reading the .toolset config only for a
// *.toolset change); optionally rewrite the compilation database;
// then RunMoreCommands. If Project's tree walk observes the tree changing
// out from under it (project.ErrConcurrentModification), the whole step is
// retried from scratch.
func (d *Daemon) onChange(path string, change fswatch.Change) {
	for {
		if d.attemptStep(path, change) {
			return
		}
	}
}

// attemptStep returns false when the step should be retried (a concurrent
// filesystem change raced the scan), true once it has either succeeded or
// failed for a reason retrying won't fix.
func (d *Daemon) attemptStep(path string, change fswatch.Change) bool {
	d.ex.Lock()
	defer d.ex.Unlock()

	applog.Info("change: %s", path)

	isPackageOrToolsetChange := filepath.Ext(path) == ".toolset" || filepath.Base(path) == "packages.conf"
	reloaded := d.proj.FileUpdate(path, change)

	if reloaded || isPackageOrToolsetChange {
		if isPackageOrToolsetChange {
			if err := d.proj.Reload(); err != nil {
				if errors.Is(err, project.ErrConcurrentModification) {
					applog.Warning("retrying after concurrent filesystem change: %v", err)
					return false
				}
				applog.Error("reload failed: %v", err)
				return true
			}
			if filepath.Ext(path) == ".toolset" {
				if err := d.reloadToolsetConfig(); err != nil {
					applog.Error("toolset config reload failed: %v", err)
					return true
				}
			}
		}
		d.ex.NewGeneration()
		if err := d.generateCommands(); err != nil {
			applog.Error("command synthesis failed: %v", err)
			return true
		}
	}

	if d.opts.WriteCompileCommandsTo != "" {
		if err := d.writeCompileCommands(); err != nil {
			applog.Error("writing compile_commands.json failed: %v", err)
		}
	}

	d.ex.RunMoreCommands()
	return true
}

func (d *Daemon) generateCommands() error {
	var err error
	if d.opts.Unity {
		err = d.ts.CreateCommandsForUnity(d.proj)
	} else {
		err = d.ts.CreateCommandsFor(d.proj)
	}
	if err != nil {
		return err
	}
	for _, c := range d.proj.Components() {
		for _, cmd := range c.Commands {
			d.ex.Run(cmd)
		}
	}
	return nil
}

func (d *Daemon) writeCompileCommands() error {
	f, err := os.Create(d.opts.WriteCompileCommandsTo)
	if err != nil {
		return err
	}
	defer f.Close()
	return compiledb.WriteCompileCommands(f, d.opts.Root, d.proj)
}
