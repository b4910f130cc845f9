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

import "regexp"

const maxUnitTokenLen = 12

var (
	unitTokenRe      = regexp.MustCompile(`^[A-Za-z0-9]+$`)
	incidentNumberRe = regexp.MustCompile(`^\d{4}-\d{5}$`)
	incidentMarkerRe = regexp.MustCompile(`^#\d+$`)
	incidentChoiceRe = regexp.MustCompile(`^\d+$`)
)

// isUnitLike reports whether a token has the shape of a unit identifier:
// short, alphanumeric, and not an incident reference. Whether it actually IS
// a unit also depends on the catalog; see ScanUnits.
func isUnitLike(token string) bool {
	return token != "" &&
		len(token) <= maxUnitTokenLen &&
		unitTokenRe.MatchString(token) &&
		!isIncidentRef(token)
}

// isIncidentRef matches the unambiguous incident reference shapes: the
// formatted event number (2025-00314) and the marked row shorthand (#3).
// Bare digits are NOT an incident ref here, since plain numbers are common
// unit names.
func isIncidentRef(token string) bool {
	return incidentNumberRe.MatchString(token) || incidentMarkerRe.MatchString(token)
}

// isIncidentChoice matches anything acceptable as the answer to a pending
// incident pick, where no unit reading competes: formatted numbers, marked
// rows, or bare digits.
func isIncidentChoice(token string) bool {
	return isIncidentRef(token) || incidentChoiceRe.MatchString(token)
}

// trimIncidentMarker strips the leading # from a marked row shorthand.
func trimIncidentMarker(token string) string {
	if incidentMarkerRe.MatchString(token) {
		return token[1:]
	}
	return token
}

// ScanUnits greedily consumes the leading tokens that read as unit
// identifiers, stopping at the first token that does not. A token that the
// catalog resolves to an action is never a unit: commands take priority over
// ambiguous unit names. Returns the units consumed and the index of the
// first unconsumed token; zero units is a valid outcome the caller must
// report, not swallow.
func ScanUnits(tokens []string, start int, cat *Catalog) ([]string, int) {
	var units []string
	i := start
	for ; i < len(tokens); i++ {
		tok := tokens[i]
		if !isUnitLike(tok) {
			break
		}
		if _, ok := cat.Resolve(tok); ok {
			break
		}
		units = append(units, tok)
	}
	return units, i
}
