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

import "testing"

// The default definitions must construct cleanly; DefaultCatalog panics on
// a malformed table, and this is the test that keeps that promise honest.
func TestDefaultCatalogBuilds(t *testing.T) {
	cat, err := NewCatalog(defaultDefs)
	if err != nil {
		t.Fatalf("default definitions are malformed: %v", err)
	}
	if len(cat.Defs()) != len(defaultDefs) {
		t.Errorf("Defs() = %d entries, want %d", len(cat.Defs()), len(defaultDefs))
	}
}

func TestNewCatalogRejectsDuplicateAlias(t *testing.T) {
	_, err := NewCatalog([]CommandDef{
		{Key: "FIRST", Aliases: []string{"GO"}},
		{Key: "SECOND", Aliases: []string{"go"}},
	})
	if err == nil {
		t.Fatal("an alias shared across keys must fail construction")
	}
}

func TestNewCatalogRejectsEmptyAlias(t *testing.T) {
	_, err := NewCatalog([]CommandDef{
		{Key: "FIRST", Aliases: []string{"  "}},
	})
	if err == nil {
		t.Fatal("a blank alias must fail construction")
	}

	_, err = NewCatalog([]CommandDef{
		{Key: "FIRST", Aliases: nil},
	})
	if err == nil {
		t.Fatal("an entry with no aliases must fail construction")
	}
}

// The same alias may be listed twice under one key; only cross-key
// collisions are ambiguous.
func TestNewCatalogAllowsRepeatWithinKey(t *testing.T) {
	_, err := NewCatalog([]CommandDef{
		{Key: "FIRST", Aliases: []string{"GO", "go"}},
	})
	if err != nil {
		t.Fatalf("repeat alias under one key should be tolerated: %v", err)
	}
}

func TestCatalogLookup(t *testing.T) {
	cat := DefaultCatalog()

	def, ok := cat.Lookup(ActionDispatch)
	if !ok {
		t.Fatal("DISPATCH missing from catalog")
	}
	if len(def.Aliases) == 0 || def.Aliases[0] != "D" {
		t.Errorf("DISPATCH aliases = %v, want D first", def.Aliases)
	}

	if _, ok := cat.Lookup("NO_SUCH_ACTION"); ok {
		t.Error("Lookup of an unknown key should report false")
	}
}
