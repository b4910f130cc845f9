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
	"fmt"
	"runtime"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/radioroom/cadline/interp"
)

// commandReferenceMarkdown builds the command reference from the live
// catalog, so the help view never drifts from what the interpreter accepts.
func commandReferenceMarkdown(cat *interp.Catalog) string {
	var b strings.Builder
	b.WriteString("# Command Reference\n\n")
	b.WriteString("Type unit IDs first, then the action: `18,19 E` marks both enroute.\n")
	b.WriteString("Free text after a colon is kept verbatim: `18 AR: patient refused transport`.\n\n")
	b.WriteString("| Aliases | Action |\n|---|---|\n")
	for _, def := range cat.Defs() {
		fmt.Fprintf(&b, "| %s | %s |\n", strings.Join(def.Aliases, ", "), def.Description)
	}
	b.WriteString("\n## Dispatching\n\n")
	b.WriteString("* `D 3 E1 M1` sends E1 and M1 to the incident on picker row 3\n")
	b.WriteString("* `E1,M1 D` with no incident opens the incident picker\n")
	b.WriteString("* `DE` dispatches and marks units enroute in one step\n\n")
	b.WriteString("## Keys\n\n")
	b.WriteString("* `enter` run command, `up`/`down` history, `tab` complete\n")
	b.WriteString("* `f1` this reference, `ctrl+y` copy last message, `esc` dismiss, `ctrl+c` quit\n")
	return b.String()
}

// getUsageMessage renders the CLI usage guide for the `usage` subcommand.
func getUsageMessage(cat *interp.Catalog) string {
	message := fmt.Sprintf(`
**Cadline %s**

Keyboard-first command console for CAD dispatch operators. One line of text
drives unit status changes, dispatches, remarks, and coverage moves without
touching the mouse.

Built with Go %s

# Getting started

* Run `+"`cadline`"+` to open the console against the configured server
* Run `+"`cadline exec \"18 A\""+"`"+` to fire a single command and exit
* Run `+"`cadline settings`"+` to inspect or create ~/.cadline.yaml

%s
`, version, runtime.Version(), commandReferenceMarkdown(cat))

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return message
	}
	out, err := renderer.Render(message)
	if err != nil {
		return message
	}
	return out
}
