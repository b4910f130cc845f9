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

const (
	// Tokens shorter than this only resolve by exact match. Fuzzy-matching
	// "E" against "ER" would turn every short unit name into a command.
	minLooseMatchLen = 3

	// Maximum edit distance accepted by the fuzzy tier.
	maxFuzzyDistance = 2

	// Prefix matches only complete aliases longer than this, so a three
	// letter token cannot claim an equally short alias it merely overlaps.
	minPrefixAliasLen = 3
)

// Resolve maps one token to its action key, or reports no match. Tiers are
// strict: fuzzy is only attempted when exact found nothing, prefix only when
// both prior tiers found nothing. Ties inside a tier go to the alias that
// appears first in catalog declaration order.
func (c *Catalog) Resolve(token string) (ActionKey, bool) {
	norm := normalizeAlias(token)
	if norm == "" {
		return "", false
	}

	if key, ok := c.exact[norm]; ok {
		return key, true
	}

	if len(norm) < minLooseMatchLen {
		return "", false
	}

	if key, ok := c.resolveFuzzy(norm); ok {
		return key, true
	}
	return c.resolvePrefix(norm)
}

// resolveFuzzy picks the single globally closest alias within the edit
// distance bound. First-encountered wins on equal distance.
func (c *Catalog) resolveFuzzy(norm string) (ActionKey, bool) {
	bestDist := maxFuzzyDistance + 1
	var bestKey ActionKey
	found := false

	for _, def := range c.defs {
		for _, alias := range def.Aliases {
			d := editDistance(norm, normalizeAlias(alias))
			if d < bestDist {
				bestDist = d
				bestKey = def.Key
				found = true
			}
		}
	}
	if !found {
		return "", false
	}
	return bestKey, true
}

// resolvePrefix accepts the first alias the token is a proper prefix of.
func (c *Catalog) resolvePrefix(norm string) (ActionKey, bool) {
	for _, def := range c.defs {
		for _, alias := range def.Aliases {
			na := normalizeAlias(alias)
			if len(na) > minPrefixAliasLen && len(norm) < len(na) && na[:len(norm)] == norm {
				return def.Key, true
			}
		}
	}
	return "", false
}

// editDistance computes the Levenshtein distance between two strings using
// the two-row formulation.
func editDistance(a, b string) int {
	if a == b {
		return 0
	}
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		cur[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			cur[j] = min(prev[j-1]+cost, min(cur[j-1], prev[j])+1)
		}
		prev, cur = cur, prev
	}
	return prev[len(b)]
}
