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
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/radioroom/cadline/cad"
	"github.com/radioroom/cadline/interp"
)

var version = "1.2.0"

// cliNotifier prints interpreter output straight to the terminal for the
// one-shot exec mode.
type cliNotifier struct {
	failed bool
}

func (n *cliNotifier) Toast(message, kind string) {
	switch kind {
	case interp.ToastError:
		n.failed = true
		fmt.Printf("%s✗ %s%s\n", Error, message, Reset)
	case interp.ToastSuccess:
		fmt.Printf("%s✓ %s%s\n", Green, message, Reset)
	default:
		fmt.Printf("%s• %s%s\n", Info, message, Reset)
	}
}

func (n *cliNotifier) OpenIncident(incidentID string) {
	fmt.Printf("%s• incident: %s%s\n", Info, incidentID, Reset)
}

func (n *cliNotifier) OpenUnit(unitID string) {
	fmt.Printf("%s• unit: %s%s\n", Info, unitID, Reset)
}

func (n *cliNotifier) RefreshPanels() {}

func (n *cliNotifier) PromptIncidentPick(units []string, mode interp.DispatchMode) {
	n.failed = true
	fmt.Printf("%s✗ dispatch of %s needs an incident reference in exec mode (try: D <incident> <units>)%s\n",
		Error, strings.Join(units, ", "), Reset)
}

func (n *cliNotifier) ShowHelp() {
	fmt.Println(getUsageMessage(interp.DefaultCatalog()))
}

func main() {
	InitializeColors()

	asciiLogo := `
 ██████╗ █████╗ ██████╗ ██╗     ██╗███╗   ██╗███████╗
██╔════╝██╔══██╗██╔══██╗██║     ██║████╗  ██║██╔════╝
██║     ███████║██║  ██║██║     ██║██╔██╗ ██║█████╗
██║     ██╔══██║██║  ██║██║     ██║██║╚██╗██║██╔══╝
╚██████╗██║  ██║██████╔╝███████╗██║██║ ╚████║███████╗
 ╚═════╝╚═╝  ╚═╝╚═════╝ ╚══════╝╚═╝╚═╝  ╚═══╝╚══════╝
Keyboard-first command console for CAD dispatch operators [Version: %s%s%s]

`

	asciiLogo = fmt.Sprintf(asciiLogo, Green, version, Reset)

	var cmdRun = &cobra.Command{
		Use:   "run",
		Short: "Open the dispatch console",
		Long:  fmt.Sprintf("%s\n%s", asciiLogo, `Run opens the full-screen console against the configured CAD server`),
		Args:  cobra.MinimumNArgs(0),
		Run: func(cmd *cobra.Command, args []string) {
			runFull()
		},
	}

	var cmdExec = &cobra.Command{
		Use:   "exec <command line>",
		Short: "Run one console command and exit",
		Long:  fmt.Sprintf("%s\n%s", asciiLogo, `Exec interprets a single command line without opening the console, for scripts and testing`),
		Args:  cobra.MinimumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			runOneShot(strings.Join(args, " "))
		},
	}

	var cmdCatalog = &cobra.Command{
		Use:   "catalog",
		Short: "Print the command catalog",
		Args:  cobra.MinimumNArgs(0),
		Run: func(cmd *cobra.Command, args []string) {
			printCatalog()
		},
	}

	var cmdUsage = &cobra.Command{
		Use:   "usage",
		Short: "Print the usage guide",
		Long:  fmt.Sprintf("%s\n%s", asciiLogo, `Usage displays the console usage guide and command reference`),
		Args:  cobra.MinimumNArgs(0),
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(getUsageMessage(interp.DefaultCatalog()))
		},
	}

	var cmdSettings = &cobra.Command{
		Use:   "settings",
		Short: "Show or create the configuration file",
		Args:  cobra.MinimumNArgs(0),
		Run: func(cmd *cobra.Command, args []string) {
			displaySettings()
		},
	}

	var cmdVersion = &cobra.Command{
		Use:   "version",
		Short: "Print the cadline version",
		Args:  cobra.MinimumNArgs(0),
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(version)
		},
	}

	var rootCmd = &cobra.Command{
		Use:     "cadline",
		Version: version,
		Long:    asciiLogo,
		Run: func(cmd *cobra.Command, args []string) {
			// Default to the console when no subcommand is given
			runFull()
		},
	}
	rootCmd.AddCommand(cmdRun, cmdExec, cmdCatalog, cmdUsage, cmdSettings, cmdVersion)
	rootCmd.Execute()
}

func runFull() {
	config, _ := LoadConfig()
	if err := initLogger(config.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "%s⚠ logging disabled: %v%s\n", Warning, err, Reset)
	}
	defer syncLogger()

	logger.Infow("console starting", "version", version, "server", config.Server.BaseURL)
	if err := runConsole(config); err != nil {
		fmt.Fprintf(os.Stderr, "%s✗ console error: %v%s\n", Error, err, Reset)
		os.Exit(1)
	}
}

func runOneShot(line string) {
	config, _ := LoadConfig()
	if err := initLogger(config.Logging); err == nil {
		defer syncLogger()
	}

	client := cad.NewClient(config.Server.BaseURL, config.Server.APIKey, config.Server.Timeout(), logger)
	notifier := &cliNotifier{}

	it := interp.New(interp.DefaultCatalog(), client, notifier, logger)
	it.NLPEnabled = config.Console.EnableNLP

	ctx, cancel := context.WithTimeout(context.Background(), config.Server.Timeout())
	defer cancel()

	if err := it.LoadAliases(ctx); err != nil {
		logger.Warnw("alias load failed", "error", err)
	}
	it.Execute(ctx, line)

	if notifier.failed {
		os.Exit(1)
	}
}

func printCatalog() {
	for _, def := range interp.DefaultCatalog().Defs() {
		fmt.Printf("%s%-28s%s %s\n", Green, strings.Join(def.Aliases, ", "), Reset, def.Description)
	}
}
