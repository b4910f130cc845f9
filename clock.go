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

// Time display helpers for the console. Dispatch logs use a 24-hour wall
// clock; incident rows show elapsed time since opening.

package main

import (
	"fmt"
	"time"
)

// FormatClock renders a timestamp the way it appears in the message log.
func FormatClock(t time.Time) string {
	return t.Format("15:04:05")
}

// FormatAge renders the elapsed time since t in the compact form dispatchers
// read at a glance: "45s", "3m", "1h12m", "2d4h". Future or zero times
// render as "--".
func FormatAge(t time.Time, now time.Time) string {
	if t.IsZero() || t.After(now) {
		return "--"
	}
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return fmt.Sprintf("%ds", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	case d < 24*time.Hour:
		h := int(d.Hours())
		m := int(d.Minutes()) % 60
		if m == 0 {
			return fmt.Sprintf("%dh", h)
		}
		return fmt.Sprintf("%dh%dm", h, m)
	default:
		days := int(d.Hours()) / 24
		h := int(d.Hours()) % 24
		if h == 0 {
			return fmt.Sprintf("%dd", days)
		}
		return fmt.Sprintf("%dd%dh", days, h)
	}
}
