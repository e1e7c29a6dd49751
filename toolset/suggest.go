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

// knownToolsets lists every name Get accepts, used only to build "did you
// mean" suggestions on an unknown -t value.
var knownToolsets = []string{"unix", "gcc", "linux", "clang", "apple", "darwin"}

// suggest returns the closest known toolset name to name by edit distance,
// or "" if nothing is close enough to be a plausible typo.
func suggest(name string) string {
	const maxDistance = 3
	best := ""
	bestDist := maxDistance + 1
	for _, k := range knownToolsets {
		if d := editDistance(name, k, true, bestDist); d < bestDist {
			bestDist = d
			best = k
		}
	}
	return best
}

// editDistance computes the Levenshtein distance between s1 and s2,
// bailing out early once the best possible distance on the current row
// exceeds maxEditDistance (0 means no cap).
func editDistance(s1, s2 string, allowReplacements bool, maxEditDistance int) int {
	m := len(s1)
	n := len(s2)

	row := make([]int, n+1)
	for i := 1; i <= n; i++ {
		row[i] = i
	}

	for y := 1; y <= m; y++ {
		row[0] = y
		bestThisRow := row[0]

		previous := y - 1
		for x := 1; x <= n; x++ {
			oldRow := row[x]
			if allowReplacements {
				v := 0
				if s1[y-1] != s2[x-1] {
					v = 1
				}
				row[x] = min3(previous+v, row[x-1]+1, row[x]+1)
			} else {
				if s1[y-1] == s2[x-1] {
					row[x] = previous
				} else {
					row[x] = min2(row[x-1], row[x]) + 1
				}
			}
			previous = oldRow
			if row[x] < bestThisRow {
				bestThisRow = row[x]
			}
		}

		if maxEditDistance != 0 && bestThisRow > maxEditDistance {
			return maxEditDistance + 1
		}
	}

	return row[n]
}

func min2(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func min3(a, b, c int) int {
	return min2(a, min2(b, c))
}
