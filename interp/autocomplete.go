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

import "strings"

const (
	// Autocomplete triggers once the first token reaches this length.
	minSuggestLen = 2

	// More candidates than this means the operator hasn't typed enough to
	// be worth interrupting.
	maxSuggestions = 8
)

// Suggestion is one autocomplete candidate: the alias that matched the typed
// prefix plus the catalog entry it belongs to.
type Suggestion struct {
	Alias       string
	Key         ActionKey
	Description string
}

// SuggestCommands recomputes the suggestion list for the current input. It
// is a pure view over the catalog: candidates are entries where some alias
// starts with the first token. The list is suppressed entirely when empty,
// oversized, or when the sole candidate is already typed out exactly.
func SuggestCommands(cat *Catalog, input string) []Suggestion {
	first := firstToken(input)
	if len(first) < minSuggestLen {
		return nil
	}
	norm := normalizeAlias(first)

	var out []Suggestion
	for _, def := range cat.Defs() {
		for _, alias := range def.Aliases {
			na := normalizeAlias(alias)
			if strings.HasPrefix(na, norm) {
				out = append(out, Suggestion{Alias: alias, Key: def.Key, Description: def.Description})
				break
			}
		}
	}

	if len(out) == 0 || len(out) > maxSuggestions {
		return nil
	}
	if len(out) == 1 && normalizeAlias(out[0].Alias) == norm {
		return nil
	}
	return out
}

// ApplySuggestion replaces only the first token of the input, preserving the
// remainder of the line.
func ApplySuggestion(input, alias string) string {
	trimmed := strings.TrimLeft(input, " \t")
	if i := strings.IndexAny(trimmed, " \t"); i >= 0 {
		return alias + trimmed[i:]
	}
	return alias
}

func firstToken(input string) string {
	fields := strings.Fields(input)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
