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

package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	applog "github.com/kiln-build/kiln/log"
	"github.com/kiln-build/kiln/project"
	"github.com/kiln-build/kiln/toolset"
)

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove every file a toolset would generate",
	RunE:  runClean,
}

func init() {
	rootCmd.AddCommand(cleanCmd)
}

// runClean scans the project, synthesizes commands exactly as a normal
// build would, and removes every resulting output file. It doesn't touch
// anything Check would classify as Source.
func runClean(cmd *cobra.Command, args []string) error {
	proj, err := project.Open(flags.root)
	if err != nil {
		return fmt.Errorf("opening project: %w", err)
	}
	ts, err := toolset.Get(flags.toolsetName)
	if err != nil {
		return err
	}
	if flags.unity {
		err = ts.CreateCommandsForUnity(proj)
	} else {
		err = ts.CreateCommandsFor(proj)
	}
	if err != nil {
		return err
	}

	n := 0
	for _, c := range proj.Components() {
		for _, command := range c.Commands {
			for _, out := range command.Outputs {
				rel := out.Path
				if err := os.Remove(rel); err == nil {
					n++
					if flags.verbose {
						applog.Info("removed %s", rel)
					}
				}
			}
		}
	}
	applog.Info("cleaned %d file(s)", n)
	return nil
}
