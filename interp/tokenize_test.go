// Copyright 2025 Radio Room Software
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

package interp

import (
	"reflect"
	"testing"
)

func TestTokenize(t *testing.T) {
	testCases := []struct {
		Name string
		Line string
		Want []string
	}{
		{
			Name: "Empty",
			Line: "",
			Want: nil,
		},
		{
			Name: "WhitespaceOnly",
			Line: "   \t ",
			Want: nil,
		},
		{
			Name: "SimpleWords",
			Line: "18 A",
			Want: []string{"18", "A"},
		},
		{
			Name: "CommaList",
			Line: "18,19,E1 AV",
			Want: []string{"18", "19", "E1", "AV"},
		},
		{
			Name: "CommaListWithSpaces",
			Line: "18, 19 OS",
			Want: []string{"18", "19", "OS"},
		},
		{
			Name: "FreeTextAfterColon",
			Line: "18 AR: patient is stable, breathing",
			Want: []string{"18", "AR", "patient is stable, breathing"},
		},
		{
			Name: "ColonTailTrimmed",
			Line: "E1 R:   crew returning  ",
			Want: []string{"E1", "R", "crew returning"},
		},
		{
			Name: "EmptyColonTail",
			Line: "E1 AR:",
			Want: []string{"E1", "AR"},
		},
		{
			Name: "LeadingColonNotSplit",
			Line: ":oddball",
			Want: []string{":oddball"},
		},
		{
			Name: "OnlyFirstColonSplits",
			Line: "E1 AR: time 10:45 on scene",
			Want: []string{"E1", "AR", "time 10:45 on scene"},
		},
		{
			Name: "ExtraWhitespace",
			Line: "  18   19   A  ",
			Want: []string{"18", "19", "A"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.Name, func(t *testing.T) {
			got := Tokenize(tc.Line)
			if !reflect.DeepEqual(got, tc.Want) {
				t.Errorf("Tokenize(%q) = %v, want %v", tc.Line, got, tc.Want)
			}
		})
	}
}

// Tokenizing the same line twice must yield equal, independent slices.
func TestTokenizeRecomputed(t *testing.T) {
	first := Tokenize("18,19 D #3")
	second := Tokenize("18,19 D #3")
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("tokenization not stable: %v vs %v", first, second)
	}
	first[0] = "mutated"
	if second[0] == "mutated" {
		t.Error("token slices must not share backing storage across calls")
	}
}
