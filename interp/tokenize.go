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

// Tokenize splits one raw command line into tokens.
//
// A colon past position zero divides the line into a head and a free-text
// tail: the head is tokenized normally and the trimmed tail, if non-empty,
// becomes exactly one final token. This keeps "E1 AR: patient stable,
// breathing" from having its remark chopped into words. Without a colon the
// line splits on whitespace and comma-joined tokens split again into their
// parts ("18,19,E1" is three tokens).
func Tokenize(line string) []string {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}

	if idx := strings.Index(line, ":"); idx > 0 {
		tokens := splitWords(line[:idx])
		if tail := strings.TrimSpace(line[idx+1:]); tail != "" {
			tokens = append(tokens, tail)
		}
		return tokens
	}
	return splitWords(line)
}

func splitWords(s string) []string {
	var tokens []string
	for _, field := range strings.Fields(s) {
		for _, part := range strings.Split(field, ",") {
			if part = strings.TrimSpace(part); part != "" {
				tokens = append(tokens, part)
			}
		}
	}
	return tokens
}
