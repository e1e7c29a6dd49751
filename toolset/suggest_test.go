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

import "testing"

func TestSuggest_closeTypo(t *testing.T) {
	if got := suggest("linx"); got != "linux" {
		t.Fatalf("suggest(%q) = %q, want %q", "linx", got, "linux")
	}
}

func TestSuggest_nothingClose(t *testing.T) {
	if got := suggest("xyzzyplugh"); got != "" {
		t.Fatalf("suggest(%q) = %q, want empty", "xyzzyplugh", got)
	}
}

func TestEditDistance_identical(t *testing.T) {
	if d := editDistance("gcc", "gcc", true, 0); d != 0 {
		t.Fatalf("editDistance of identical strings = %d, want 0", d)
	}
}

func TestEditDistance_capBailsOutEarly(t *testing.T) {
	if d := editDistance("abcdef", "zyxwvu", true, 2); d != 3 {
		t.Fatalf("expected capped distance maxEditDistance+1=3, got %d", d)
	}
}

func TestGet_unknownToolsetSuggestsClosest(t *testing.T) {
	_, err := Get("linx")
	if err == nil {
		t.Fatal("expected an error for an unknown toolset name")
	}
	if got := err.Error(); got == "" {
		t.Fatal("expected a non-empty error message")
	}
}
