// Copyright 2012 Google Inc. All Rights Reserved.
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

//go:build !linux

package process

import "time"

// statPid reports zero on platforms without /proc-style per-process
// accounting. The Executor passes these zeros to Command.SetResult
// unchanged, which averages them into the command's time and space
// estimates like any other measurement.
func statPid(pid int) (time.Duration, uint64) {
	return 0, 0
}
