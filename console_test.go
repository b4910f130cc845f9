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

package main

import (
	"strings"
	"testing"
	"time"

	"github.com/radioroom/cadline/cad"
	"github.com/radioroom/cadline/interp"
)

func TestNotifierCollectsAndResets(t *testing.T) {
	n := &uiNotifier{}

	n.Toast("18 enroute", interp.ToastSuccess)
	n.Toast("19: enroute failed: boom", interp.ToastError)
	n.PromptIncidentPick([]string{"E1"}, interp.ModeDispatch)
	n.RefreshPanels()
	n.OpenIncident("42")

	if len(n.toasts) != 2 {
		t.Errorf("toasts = %d, want 2", len(n.toasts))
	}
	if n.pick == nil || n.pick.mode != interp.ModeDispatch {
		t.Errorf("pick = %+v", n.pick)
	}
	if !n.refresh || n.openInc != "42" {
		t.Error("refresh and incident open should be recorded")
	}

	n.reset()
	if len(n.toasts) != 0 || n.pick != nil || n.refresh || n.openInc != "" {
		t.Error("reset should clear every pending signal")
	}
}

func TestIncidentItemRendering(t *testing.T) {
	item := incidentItem{
		row: 3,
		inc: cad.Incident{
			ID:       "7",
			Number:   "2025-00314",
			Type:     "STRUCTURE FIRE",
			Address:  "401 MAIN ST",
			OpenedAt: time.Now().Add(-5 * time.Minute),
		},
	}

	title := item.Title()
	if !strings.Contains(title, "#3") || !strings.Contains(title, "2025-00314") {
		t.Errorf("title = %q", title)
	}
	desc := item.Description()
	if !strings.Contains(desc, "401 MAIN ST") || !strings.Contains(desc, "5m") {
		t.Errorf("description = %q", desc)
	}
}

// Every catalog alias must show up in the rendered reference, or the help
// view lies about what the interpreter accepts.
func TestCommandReferenceCoversCatalog(t *testing.T) {
	cat := interp.DefaultCatalog()
	md := commandReferenceMarkdown(cat)

	for _, def := range cat.Defs() {
		if !strings.Contains(md, string(def.Key)) && !strings.Contains(md, def.Aliases[0]) {
			t.Errorf("reference is missing %s", def.Key)
		}
		if !strings.Contains(md, def.Description) {
			t.Errorf("reference is missing description for %s", def.Key)
		}
	}
}
