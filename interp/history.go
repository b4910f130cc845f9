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

// DefaultHistoryCapacity bounds the recall buffer.
const DefaultHistoryCapacity = 50

// History is a bounded buffer of past command lines with a navigation
// cursor. The cursor sits at -1 ("live draft") until the operator starts
// paging back; the draft they were typing is restored when they page past
// the newest entry again.
type History struct {
	entries  []string
	capacity int
	cursor   int
	draft    string
}

// NewHistory returns an empty history. Non-positive capacities get the
// default.
func NewHistory(capacity int) *History {
	if capacity <= 0 {
		capacity = DefaultHistoryCapacity
	}
	return &History{capacity: capacity, cursor: -1}
}

// Push records a submitted line. A consecutive duplicate of the newest entry
// is suppressed; at capacity the oldest entry is evicted. Pushing always
// resets navigation.
func (h *History) Push(line string) {
	defer h.resetCursor()

	line = strings.TrimSpace(line)
	if line == "" {
		return
	}
	if n := len(h.entries); n > 0 && h.entries[n-1] == line {
		return
	}
	h.entries = append(h.entries, line)
	if len(h.entries) > h.capacity {
		h.entries = h.entries[1:]
	}
}

// Previous moves one step toward the oldest entry, saving the operator's
// current draft on the first step. Clamps at the oldest entry.
func (h *History) Previous(current string) (string, bool) {
	if len(h.entries) == 0 {
		return "", false
	}
	switch {
	case h.cursor == -1:
		h.draft = current
		h.cursor = len(h.entries) - 1
	case h.cursor > 0:
		h.cursor--
	}
	return h.entries[h.cursor], true
}

// Next moves one step toward the newest entry; stepping past it restores
// the saved draft and returns the cursor to live.
func (h *History) Next() (string, bool) {
	if h.cursor == -1 {
		return "", false
	}
	h.cursor++
	if h.cursor >= len(h.entries) {
		draft := h.draft
		h.resetCursor()
		return draft, true
	}
	return h.entries[h.cursor], true
}

// Len reports the number of stored entries.
func (h *History) Len() int {
	return len(h.entries)
}

// Entries returns a copy of the buffer, oldest first.
func (h *History) Entries() []string {
	out := make([]string, len(h.entries))
	copy(out, h.entries)
	return out
}

func (h *History) resetCursor() {
	h.cursor = -1
	h.draft = ""
}
