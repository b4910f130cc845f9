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

// AliasResolver maps operator shorthand to canonical unit identifiers. The
// table is not authoritative: an unmapped token passes through unchanged, so
// a missing or empty alias map degrades to identity.
type AliasResolver struct {
	table map[string]string
}

// NewAliasResolver builds a resolver over the given shorthand table. Keys
// are compared lowercase. A nil table is valid.
func NewAliasResolver(table map[string]string) *AliasResolver {
	lowered := make(map[string]string, len(table))
	for k, v := range table {
		k = strings.ToLower(strings.TrimSpace(k))
		v = strings.TrimSpace(v)
		if k == "" || v == "" {
			continue
		}
		lowered[k] = v
	}
	return &AliasResolver{table: lowered}
}

// Replace swaps the whole table atomically at the reference level. Callers
// never observe a partially updated map.
func (r *AliasResolver) Replace(table map[string]string) {
	r.table = NewAliasResolver(table).table
}

// Resolve returns the canonical unit id for a shorthand token, or the token
// unchanged when no mapping exists.
func (r *AliasResolver) Resolve(token string) string {
	if canonical, ok := r.table[strings.ToLower(token)]; ok {
		return canonical
	}
	return token
}

// ResolveAll maps Resolve over a token list, preserving order and dropping
// empties.
func (r *AliasResolver) ResolveAll(tokens []string) []string {
	out := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if resolved := strings.TrimSpace(r.Resolve(strings.TrimSpace(tok))); resolved != "" {
			out = append(out, resolved)
		}
	}
	return out
}

// Len reports how many shorthands are loaded.
func (r *AliasResolver) Len() int {
	return len(r.table)
}
