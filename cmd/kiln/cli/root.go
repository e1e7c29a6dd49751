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

// Package cli wires kiln's cobra command surface to the project, toolset,
// engine, reporter, and daemon packages.
package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/kiln-build/kiln/compiledb"
	"github.com/kiln-build/kiln/daemon"
	"github.com/kiln-build/kiln/engine"
	applog "github.com/kiln-build/kiln/log"
	"github.com/kiln-build/kiln/project"
	"github.com/kiln-build/kiln/reporter"
	"github.com/kiln-build/kiln/toolset"
)

var flags struct {
	root              string
	jobs              int
	reporterName      string
	compileCommandsAt string
	writeCMake        bool
	verbose           bool
	unity             bool
	daemonMode        bool
	toolsetName       string
}

var rootCmd = &cobra.Command{
	Use:   "kiln [targets...]",
	Short: "A daemon-friendly incremental build driver",
	Long: `kiln scans a source tree into components, synthesizes compile and
link commands through a Toolset, and runs only what's out of date. Given
-d it stays resident and rebuilds incrementally as files change.`,
	RunE: runBuild,
}

func init() {
	rootCmd.Flags().StringVar(&flags.root, "root", ".", "project root to scan")
	rootCmd.Flags().IntVarP(&flags.jobs, "jobs", "j", runtime.NumCPU(), "maximum number of concurrent commands")
	rootCmd.Flags().StringVarP(&flags.reporterName, "reporter", "r", "guess", "progress reporter: human, plain, or daemon")
	rootCmd.Flags().StringVar(&flags.compileCommandsAt, "cp", "", "write a compile_commands.json to this path")
	rootCmd.Flags().BoolVar(&flags.writeCMake, "cm", false, "export a CMakeLists.txt per component")
	rootCmd.Flags().BoolVarP(&flags.verbose, "verbose", "v", false, "print the resolved component graph before building")
	rootCmd.Flags().BoolVarP(&flags.unity, "unity", "u", false, "build each component as a single amalgamated translation unit")
	rootCmd.Flags().BoolVarP(&flags.daemonMode, "daemon", "d", false, "stay resident and rebuild on filesystem changes")
	rootCmd.Flags().StringVarP(&flags.toolsetName, "toolset", "t", "", "toolset to synthesize commands with (default: host-appropriate)")
}

// Execute runs the root command and returns a process exit code.
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		return 1
	}
	return exitCode
}

// exitCode is set by runBuild since cobra's RunE only distinguishes
// error/no-error, not kiln's "ran, but a command failed" case.
var exitCode int

func runBuild(cmd *cobra.Command, targets []string) error {
	proj, err := project.Open(flags.root)
	if err != nil {
		return fmt.Errorf("opening project: %w", err)
	}

	if flags.verbose {
		dumpProject(proj)
	}

	cfg, err := toolset.LoadConfig(filepath.Join(flags.root, ".toolset"))
	if err != nil {
		return err
	}
	ts, err := toolset.GetConfigured(flags.toolsetName, cfg)
	if err != nil {
		return err
	}

	reporterName := flags.reporterName
	if reporterName == "guess" {
		reporterName = guessReporter(flags.daemonMode)
	}
	rep := reporter.Get(reporterName)

	ex := engine.New(flags.jobs, rep)

	ex.Lock()
	if err := synthesizeAndQueue(ex, proj, ts, targets); err != nil {
		ex.Unlock()
		return err
	}
	if flags.compileCommandsAt != "" {
		if err := writeCompileCommands(proj); err != nil {
			applog.Error("writing compile_commands.json: %v", err)
		}
	}
	if flags.writeCMake {
		if err := compiledb.WriteCMakeLists(flags.root, proj); err != nil {
			applog.Error("writing CMakeLists.txt: %v", err)
		}
	}

	if flags.daemonMode {
		shutdown := ex.Mode(true)
		ex.RunMoreCommands()
		ex.Unlock()

		d := daemon.New(ex, proj, ts, daemon.Options{
			Root:                   flags.root,
			Unity:                  flags.unity,
			WriteCompileCommandsTo: flags.compileCommandsAt,
			ToolsetName:            flags.toolsetName,
		})
		stop, err := d.Watch()
		if err != nil {
			applog.Fatal("watch: %v", err)
		}
		defer stop()
		<-shutdown
		return nil
	}

	ex.RunMoreCommands()
	success := ex.AllSuccess()
	ex.Unlock()

	if !success {
		exitCode = 1
	}
	return nil
}

func synthesizeAndQueue(ex *engine.Executor, proj project.Project, ts toolset.Toolset, targets []string) error {
	var err error
	if flags.unity {
		err = ts.CreateCommandsForUnity(proj)
	} else {
		err = ts.CreateCommandsFor(proj)
	}
	if err != nil {
		return err
	}

	wanted := map[string]bool{}
	for _, t := range targets {
		wanted[t] = true
	}

	for _, c := range proj.Components() {
		if len(wanted) != 0 && !wanted[c.Name] {
			continue
		}
		for _, cmd := range c.Commands {
			ex.Run(cmd)
		}
	}
	return nil
}

func writeCompileCommands(proj project.Project) error {
	f, err := os.Create(flags.compileCommandsAt)
	if err != nil {
		return err
	}
	defer f.Close()
	return compiledb.WriteCompileCommands(f, flags.root, proj)
}

func guessReporter(daemonMode bool) string {
	if daemonMode {
		return "daemon"
	}
	if fi, err := os.Stdout.Stat(); err == nil && (fi.Mode()&os.ModeCharDevice) != 0 {
		return "human"
	}
	return "plain"
}

func dumpProject(proj project.Project) {
	for _, c := range proj.Components() {
		fmt.Fprintf(os.Stderr, "component %s (%d files)\n", c.Name, len(c.Files))
		for _, f := range c.Files {
			fmt.Fprintf(os.Stderr, "  %s\n", f.Path)
		}
	}
	for _, h := range proj.UnknownHeaders() {
		fmt.Fprintf(os.Stderr, "unresolved: %s\n", h)
	}
}
