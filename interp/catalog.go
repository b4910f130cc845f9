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
	"fmt"
	"strings"
)

// ActionKey is the canonical identifier for one operator intent.
type ActionKey string

const (
	ActionDispatch        ActionKey = "DISPATCH"
	ActionDispatchEnroute ActionKey = "DISPATCH_ENROUTE"

	ActionEnroute    ActionKey = "ENROUTE"
	ActionOnScene    ActionKey = "ON_SCENE"
	ActionStaged     ActionKey = "STAGED"
	ActionTransport  ActionKey = "TRANSPORT"
	ActionAtHospital ActionKey = "AT_HOSPITAL"
	ActionReturning  ActionKey = "RETURNING"
	ActionInQuarters ActionKey = "IN_QUARTERS"
	ActionOnRadio    ActionKey = "ON_RADIO"
	ActionBusy       ActionKey = "BUSY"
	ActionTraining   ActionKey = "TRAINING"
	ActionMealBreak  ActionKey = "MEAL_BREAK"
	ActionCancelled  ActionKey = "CANCELLED"

	ActionAvailable     ActionKey = "AVAILABLE"
	ActionOutOfService  ActionKey = "OUT_OF_SERVICE"
	ActionBackInService ActionKey = "BACK_IN_SERVICE"

	ActionAddRemark ActionKey = "ADD_REMARK"

	ActionUnitDisposition  ActionKey = "UNIT_DISPOSITION"
	ActionEventDisposition ActionKey = "EVENT_DISPOSITION"

	ActionCoverageStart ActionKey = "COVERAGE_START"
	ActionCoverageEnd   ActionKey = "COVERAGE_END"

	ActionCrewAssign   ActionKey = "CREW_ASSIGN"
	ActionCrewUnassign ActionKey = "CREW_UNASSIGN"

	ActionOpenUnit      ActionKey = "OPEN_UNIT"
	ActionOpenIncident  ActionKey = "OPEN_INCIDENT"
	ActionRefresh       ActionKey = "REFRESH"
	ActionReloadAliases ActionKey = "RELOAD_ALIASES"
	ActionHelp          ActionKey = "HELP"
)

// CommandDef describes one catalog entry: the canonical action key, its
// operator-facing aliases in declaration order, and a short description used
// by autocomplete and the help view.
type CommandDef struct {
	Key         ActionKey
	Aliases     []string
	Description string
}

// Catalog is the immutable set of command definitions. Declaration order is
// load-bearing: fuzzy and prefix resolution break ties by the order entries
// (and their aliases) appear here.
type Catalog struct {
	defs  []CommandDef
	exact map[string]ActionKey
}

// defaultDefs lists every action the console understands. Aliases are
// matched case-insensitively with hyphens stripped.
var defaultDefs = []CommandDef{
	{ActionDispatch, []string{"D", "DISP", "DISPATCH", "SEND"}, "Dispatch units to an incident"},
	{ActionDispatchEnroute, []string{"DE", "DISPGO"}, "Dispatch units and mark them enroute"},

	{ActionEnroute, []string{"E", "ER", "ENR", "RESPONDING"}, "Mark units enroute"},
	{ActionOnScene, []string{"OS", "ONSCENE", "ARRIVED"}, "Mark units on scene"},
	{ActionStaged, []string{"STG", "STAGE", "STAGED"}, "Mark units staged"},
	{ActionTransport, []string{"T", "TX", "TRANSPORT"}, "Mark units transporting"},
	{ActionAtHospital, []string{"AH", "HOSP", "AT-HOSPITAL"}, "Mark units at hospital"},
	{ActionReturning, []string{"RTN", "RETURNING"}, "Mark units returning to quarters"},
	{ActionInQuarters, []string{"AQ", "IQ", "QUARTERS"}, "Mark units available in quarters"},
	{ActionOnRadio, []string{"AOR", "ONRADIO"}, "Mark units available on radio"},
	{ActionBusy, []string{"B", "BUSY"}, "Mark units busy"},
	{ActionTraining, []string{"TRN", "TRAINING"}, "Mark units out for training"},
	{ActionMealBreak, []string{"MB", "MEAL"}, "Mark units on meal break"},
	{ActionCancelled, []string{"CAN", "CANCEL"}, "Cancel units from their response"},

	{ActionAvailable, []string{"A", "AV", "AVAIL", "CLEAR"}, "Clear units and make them available"},
	{ActionOutOfService, []string{"OOS", "X", "OUT-OF-SERVICE"}, "Take units out of service"},
	{ActionBackInService, []string{"BIS", "INSERVICE"}, "Return units to service"},

	{ActionAddRemark, []string{"R", "AR", "REMARK", "NOTE"}, "Add a remark to a unit's active incident"},

	{ActionUnitDisposition, []string{"UD", "UDISP"}, "Record a disposition code for units"},
	{ActionEventDisposition, []string{"ED", "EDISP"}, "Record a disposition code for an incident"},

	{ActionCoverageStart, []string{"CS", "COVER", "MOVEUP"}, "Start station coverage for units"},
	{ActionCoverageEnd, []string{"CE", "UNCOVER"}, "End station coverage for units"},

	{ActionCrewAssign, []string{"CA", "ONBOARD", "CREW"}, "Assign personnel to an apparatus"},
	{ActionCrewUnassign, []string{"CU", "OFFBOARD"}, "Remove personnel from an apparatus"},

	{ActionOpenUnit, []string{"U", "UNIT"}, "Open the unit detail window"},
	{ActionOpenIncident, []string{"I", "INC", "OPEN"}, "Open the incident window"},
	{ActionRefresh, []string{"REFRESH", "RELOAD"}, "Refresh all panels"},
	{ActionReloadAliases, []string{"RA", "ALIASES"}, "Reload the unit alias table"},
	{ActionHelp, []string{"?", "HELP"}, "Show the command reference"},
}

// NewCatalog builds a catalog from the given definitions. A duplicate
// normalized alias is a construction error, not a runtime condition: the
// resolver must never have to guess between two entries.
func NewCatalog(defs []CommandDef) (*Catalog, error) {
	exact := make(map[string]ActionKey)
	for _, def := range defs {
		if len(def.Aliases) == 0 {
			return nil, fmt.Errorf("catalog entry %s has no aliases", def.Key)
		}
		for _, alias := range def.Aliases {
			norm := normalizeAlias(alias)
			if norm == "" {
				return nil, fmt.Errorf("catalog entry %s has an empty alias", def.Key)
			}
			if prev, ok := exact[norm]; ok && prev != def.Key {
				return nil, fmt.Errorf("alias %q maps to both %s and %s", alias, prev, def.Key)
			}
			if _, ok := exact[norm]; !ok {
				exact[norm] = def.Key
			}
		}
	}
	return &Catalog{defs: defs, exact: exact}, nil
}

// DefaultCatalog returns the built-in action catalog. The default definitions
// are validated by tests, so construction cannot fail here.
func DefaultCatalog() *Catalog {
	cat, err := NewCatalog(defaultDefs)
	if err != nil {
		panic(err)
	}
	return cat
}

// Defs returns the catalog entries in declaration order.
func (c *Catalog) Defs() []CommandDef {
	return c.defs
}

// Lookup returns the definition for a key.
func (c *Catalog) Lookup(key ActionKey) (CommandDef, bool) {
	for _, def := range c.defs {
		if def.Key == key {
			return def, true
		}
	}
	return CommandDef{}, false
}

// normalizeAlias folds a token into the form aliases are compared in:
// uppercase with hyphens stripped.
func normalizeAlias(s string) string {
	return strings.ReplaceAll(strings.ToUpper(strings.TrimSpace(s)), "-", "")
}
