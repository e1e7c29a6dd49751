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
	"testing"
)

func TestLoadConfig_missingFileIsNotAnError(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), ".toolset"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Compiler != "" || cfg.Flags != nil {
		t.Fatalf("expected zero-value Config, got %+v", cfg)
	}
}

func TestLoadConfig_parsesCompilerAndFlags(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".toolset")
	yaml := "compiler: clang\nflags:\n  widget:\n    - -Wall\n    - -Werror\n"
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Compiler != "clang" {
		t.Fatalf("Compiler = %q, want clang", cfg.Compiler)
	}
	if got := cfg.Flags["widget"]; len(got) != 2 || got[0] != "-Wall" || got[1] != "-Werror" {
		t.Fatalf("Flags[widget] = %v, want [-Wall -Werror]", got)
	}
}

func TestLoadConfig_invalidYAMLErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".toolset")
	if err := os.WriteFile(path, []byte("compiler: [unterminated\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Fatal("expected an error for malformed YAML")
	}
}

func TestGetConfigured_appliesCompilerOverride(t *testing.T) {
	ts, err := GetConfigured("", Config{Compiler: "clang"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	u := ts.(Unix)
	if u.CC != "clang" || u.CXX != "clang++" {
		t.Fatalf("expected clang/clang++ after override, got %s/%s", u.CC, u.CXX)
	}
}

func TestGetConfigured_setsExtraFlags(t *testing.T) {
	ts, err := GetConfigured("gcc", Config{Flags: map[string][]string{"widget": {"-Wall"}}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	u := ts.(Unix)
	if got := u.ExtraFlags["widget"]; len(got) != 1 || got[0] != "-Wall" {
		t.Fatalf("ExtraFlags[widget] = %v, want [-Wall]", got)
	}
}
