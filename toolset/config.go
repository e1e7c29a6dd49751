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
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the on-disk shape of a project's ".toolset" file: which
// compiler pair to use, plus per-component extra flags. The daemon treats
// any file matching this name as a package/toolset change (SPEC_FULL.md
// §4.5) and triggers a full Project.Reload when it changes.
type Config struct {
	Compiler string              `yaml:"compiler"`
	Flags    map[string][]string `yaml:"flags"`
}

// LoadConfig reads and parses a ".toolset" YAML file. A missing file is not
// an error: callers fall back to Config{}'s zero value (default compiler,
// no extra flags).
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Config{}, nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("toolset: reading %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("toolset: parsing %s: %w", path, err)
	}
	return cfg, nil
}

// GetConfigured resolves a toolset the same way Get does, but applies cfg's
// compiler override and per-component extra flags on top.
func GetConfigured(name string, cfg Config) (Toolset, error) {
	ts, err := Get(name)
	if err != nil {
		return nil, err
	}
	u := ts.(Unix)
	if cfg.Compiler != "" {
		switch cfg.Compiler {
		case "clang":
			u.CC, u.CXX = "clang", "clang++"
		case "gcc", "unix":
			u.CC, u.CXX = "cc", "c++"
		default:
			u.CC, u.CXX = cfg.Compiler, cfg.Compiler
		}
	}
	u.ExtraFlags = cfg.Flags
	return u, nil
}
