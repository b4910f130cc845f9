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
	"regexp"
	"strings"
)

// nlpPattern maps one conversational phrasing onto the same action
// vocabulary the catalog resolves to. The extract function turns capture
// groups into the unit list and argument tokens the normal handler expects,
// so both parsing front ends share one code path per action.
type nlpPattern struct {
	re      *regexp.Regexp
	key     ActionKey
	extract func(m []string) (units, args []string)
}

// nlpPatterns returns the fallback patterns in priority order. First match
// wins; no match falls through to the tokenizer pipeline.
func nlpPatterns() []nlpPattern {
	return []nlpPattern{
		{
			re:  regexp.MustCompile(`(?i)^(?:send|dispatch)\s+(.+?)\s+to\s+(?:incident\s+)?#?(\d+(?:-\d+)?)$`),
			key: ActionDispatch,
			extract: func(m []string) ([]string, []string) {
				return splitUnitPhrase(m[1]), []string{m[2]}
			},
		},
		{
			re:  regexp.MustCompile(`(?i)^move\s+(.+?)\s+to\s+(?:station\s+)?(\w+)$`),
			key: ActionCoverageStart,
			extract: func(m []string) ([]string, []string) {
				return splitUnitPhrase(m[1]), []string{m[2]}
			},
		},
		{
			re:  regexp.MustCompile(`(?i)^(?:clear|free\s+up)\s+(.+)$`),
			key: ActionAvailable,
			extract: func(m []string) ([]string, []string) {
				return splitUnitPhrase(m[1]), nil
			},
		},
		{
			re:  regexp.MustCompile(`(?i)^(.+?)\s+(?:is|are)\s+(?:on\s*scene|arrived)$`),
			key: ActionOnScene,
			extract: func(m []string) ([]string, []string) {
				return splitUnitPhrase(m[1]), nil
			},
		},
		{
			re:  regexp.MustCompile(`(?i)^(.+?)\s+(?:is|are)\s+(?:enroute|responding)$`),
			key: ActionEnroute,
			extract: func(m []string) ([]string, []string) {
				return splitUnitPhrase(m[1]), nil
			},
		},
		{
			re:  regexp.MustCompile(`(?i)^(.+?)\s+(?:is|are)\s+transporting$`),
			key: ActionTransport,
			extract: func(m []string) ([]string, []string) {
				return splitUnitPhrase(m[1]), nil
			},
		},
		{
			re:  regexp.MustCompile(`(?i)^take\s+(.+?)\s+out\s+of\s+service$`),
			key: ActionOutOfService,
			extract: func(m []string) ([]string, []string) {
				return splitUnitPhrase(m[1]), nil
			},
		},
		{
			re:  regexp.MustCompile(`(?i)^note\s+(?:on|for)\s+(\S+)\s*[:,]\s*(.+)$`),
			key: ActionAddRemark,
			extract: func(m []string) ([]string, []string) {
				return []string{m[1]}, []string{strings.TrimSpace(m[2])}
			},
		},
	}
}

// matchNLP tries each pattern in order against the whole line. A match whose
// captured units are not unit-shaped is discarded so conversational phrasing
// inside a remark cannot hijack the line from the tokenizer pipeline.
func matchNLP(patterns []nlpPattern, line string) (ActionKey, []string, []string, bool) {
	for _, p := range patterns {
		m := p.re.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		units, args := p.extract(m)
		if !allUnitLike(units) {
			continue
		}
		return p.key, units, args, true
	}
	return "", nil, nil, false
}

func allUnitLike(units []string) bool {
	if len(units) == 0 {
		return false
	}
	for _, u := range units {
		if !isUnitLike(u) {
			return false
		}
	}
	return true
}

// splitUnitPhrase normalizes a captured unit list: "E1, M1 and 18" becomes
// three tokens.
func splitUnitPhrase(phrase string) []string {
	phrase = strings.ReplaceAll(phrase, ",", " ")
	var units []string
	for _, f := range strings.Fields(phrase) {
		if strings.EqualFold(f, "and") {
			continue
		}
		units = append(units, f)
	}
	return units
}
