// Copyright 2025 Google Inc. All Rights Reserved.
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

// Package fswatch wraps fsnotify behind the narrow FsWatch collaborator
// interface the daemon depends on: one recursive watch rooted at a path,
// debounced into single-file change callbacks.
package fswatch

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Change is the kind of filesystem event observed for a path.
type Change int

const (
	Created Change = iota
	Modified
	Deleted
	Renamed
)

// Callback is invoked once per settled change to path.
type Callback func(path string, change Change)

var ignoredDirs = map[string]struct{}{
	".git": {}, "node_modules": {}, ".cache": {}, "build": {}, "dist": {},
}

// Watch recursively watches root and, debounced by a short settle window,
// invokes cb once per file that changed. It returns as soon as the watch is
// installed; events are delivered from a background goroutine until the
// returned stop function is called. Watcher errors are discarded.
func Watch(root string, cb Callback) (stop func(), err error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := addRecursive(w, root); err != nil {
		w.Close()
		return nil, err
	}

	done := make(chan struct{})
	var mu sync.Mutex
	pending := map[string]Change{}
	var timer *time.Timer
	const debounce = 75 * time.Millisecond

	flush := func() {
		mu.Lock()
		batch := pending
		pending = map[string]Change{}
		mu.Unlock()
		for path, ch := range batch {
			cb(path, ch)
		}
	}

	go func() {
		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if shouldIgnore(ev.Name) {
					continue
				}
				mu.Lock()
				pending[ev.Name] = changeKind(ev.Op)
				if timer != nil {
					timer.Stop()
				}
				timer = time.AfterFunc(debounce, flush)
				mu.Unlock()
			case _, ok := <-w.Errors:
				if !ok {
					return
				}
			case <-done:
				return
			}
		}
	}()

	return func() {
		close(done)
		w.Close()
	}, nil
}

func changeKind(op fsnotify.Op) Change {
	switch {
	case op&fsnotify.Create != 0:
		return Created
	case op&fsnotify.Remove != 0:
		return Deleted
	case op&fsnotify.Rename != 0:
		return Renamed
	default:
		return Modified
	}
}

func addRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if d.Name() != filepath.Base(root) {
			if _, ignore := ignoredDirs[d.Name()]; ignore {
				return filepath.SkipDir
			}
		}
		return w.Add(p)
	})
}

func shouldIgnore(path string) bool {
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if _, ok := ignoredDirs[part]; ok {
			return true
		}
	}
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".#") || strings.HasSuffix(base, "~") {
		return true
	}
	return false
}
