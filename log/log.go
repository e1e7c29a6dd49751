// Copyright 2021 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package log holds kiln's four logging helpers, generalized from the
// package-private infof/warningf/errorf/fatalf helpers the teacher tool
// keeps tied to its one binary into something cmd/kiln and daemon can both
// use.
package log

import (
	"fmt"
	"os"
)

// Fatal prints a fatal message to stderr and exits the process.
func Fatal(msg string, v ...interface{}) {
	fmt.Fprintf(os.Stderr, "kiln: fatal: "+msg+"\n", v...)
	os.Stderr.Sync()
	os.Exit(1)
}

// Warning prints a warning message to stderr.
func Warning(msg string, v ...interface{}) {
	fmt.Fprintf(os.Stderr, "kiln: warning: "+msg+"\n", v...)
}

// Error prints an error message to stderr.
func Error(msg string, v ...interface{}) {
	fmt.Fprintf(os.Stderr, "kiln: error: "+msg+"\n", v...)
}

// Info prints an informational message to stdout.
func Info(msg string, v ...interface{}) {
	fmt.Fprintf(os.Stdout, "kiln: "+msg+"\n", v...)
}
