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
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/patrickmn/go-cache"

	"github.com/radioroom/cadline/cad"
	"github.com/radioroom/cadline/interp"
)

const (
	maxLogLines = 200

	// Rendered help markdown is cached; the reference only changes with
	// the binary.
	helpCacheExpiration = 30 * time.Minute
	helpCacheCleanup    = 5 * time.Minute
	helpCacheKey        = "reference"
)

// pickRequest is a deferred dispatch waiting for the operator to choose an
// incident from the picker overlay.
type pickRequest struct {
	units []string
	mode  interp.DispatchMode
}

// uiNotifier collects everything the interpreter wants to show. Execute runs
// synchronously inside Update, so the model drains it right after each
// command with no locking.
type uiNotifier struct {
	toasts   []toastEntry
	openInc  string
	openUnit string
	refresh  bool
	pick     *pickRequest
	showHelp bool
}

type toastEntry struct {
	text string
	kind string
}

func (n *uiNotifier) Toast(message, kind string) {
	n.toasts = append(n.toasts, toastEntry{text: message, kind: kind})
}
func (n *uiNotifier) OpenIncident(incidentID string) { n.openInc = incidentID }
func (n *uiNotifier) OpenUnit(unitID string)         { n.openUnit = unitID }
func (n *uiNotifier) RefreshPanels()                 { n.refresh = true }
func (n *uiNotifier) PromptIncidentPick(units []string, mode interp.DispatchMode) {
	n.pick = &pickRequest{units: units, mode: mode}
}
func (n *uiNotifier) ShowHelp() { n.showHelp = true }

func (n *uiNotifier) reset() {
	*n = uiNotifier{}
}

// incidentItem adapts an open incident for the picker list.
type incidentItem struct {
	row int
	inc cad.Incident
}

func (i incidentItem) FilterValue() string { return i.inc.Number + " " + i.inc.Address }
func (i incidentItem) Title() string {
	return fmt.Sprintf("#%d  %s  %s", i.row, i.inc.Number, i.inc.Type)
}
func (i incidentItem) Description() string {
	return fmt.Sprintf("%s  (open %s)", i.inc.Address, FormatAge(i.inc.OpenedAt, time.Now()))
}

// Styles holds all the styling for the console.
type Styles struct {
	BorderFocused lipgloss.Style
	BorderBlurred lipgloss.Style
	Title         lipgloss.Style
	Suggestion    lipgloss.Style
	LogTime       lipgloss.Style
	LogInfo       lipgloss.Style
	LogSuccess    lipgloss.Style
	LogError      lipgloss.Style
	HelpKey       lipgloss.Style
	HelpDesc      lipgloss.Style
}

// NewStyles creates the default styles.
func NewStyles() *Styles {
	return &Styles{
		BorderFocused: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Bold(true),
		BorderBlurred: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")),
		Title: lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")).
			Padding(0, 1).
			Bold(true),
		Suggestion: lipgloss.NewStyle().
			Foreground(lipgloss.Color("243")).
			Italic(true),
		LogTime: lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")),
		LogInfo: lipgloss.NewStyle().
			Foreground(lipgloss.Color("251")),
		LogSuccess: lipgloss.NewStyle().
			Foreground(lipgloss.Color("46")),
		LogError: lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true),
		HelpKey: lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Bold(true),
		HelpDesc: lipgloss.NewStyle().
			Foreground(lipgloss.Color("243")),
	}
}

// eventMsg wraps one server push delivered into the Update loop.
type eventMsg struct {
	event cad.Event
}

// feedClosedMsg means the event channel is gone; the feed goroutine handles
// reconnects, so this only stops the listener command.
type feedClosedMsg struct{}

// ConsoleModel is the Bubble Tea application state.
type ConsoleModel struct {
	ready bool

	input        textinput.Model
	messageView  viewport.Model
	picker       list.Model
	helpViewport viewport.Model

	it        *interp.Interpreter
	client    *cad.Client
	notifier  *uiNotifier
	history   *interp.History
	helpCache *cache.Cache
	config    *Config
	events    <-chan cad.Event

	showPicker  bool
	showHelp    bool
	pickerRows  []cad.Incident
	suggestions []interp.Suggestion
	logLines    []string
	lastMessage string
	lastInput   string

	styles          *Styles
	glamourRenderer *glamour.TermRenderer

	width  int
	height int
}

// NewConsoleModel wires the interpreter, backend client, and UI components
// together.
func NewConsoleModel(it *interp.Interpreter, client *cad.Client, notifier *uiNotifier, config *Config, events <-chan cad.Event) ConsoleModel {
	ti := textinput.New()
	ti.Placeholder = "units then action, e.g. 18,19 E"
	ti.Focus()
	ti.CharLimit = 256
	ti.Width = 60

	messageView := viewport.New(0, 0)
	messageView.SetContent("Connected. Type a command, F1 for the reference.")

	picker := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	picker.SetShowTitle(false)
	picker.SetShowHelp(false)
	picker.SetFilteringEnabled(false)

	helpViewport := viewport.New(0, 0)

	glamourRenderer, _ := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)

	historySize := config.Console.HistorySize
	return ConsoleModel{
		input:           ti,
		messageView:     messageView,
		picker:          picker,
		helpViewport:    helpViewport,
		it:              it,
		client:          client,
		notifier:        notifier,
		history:         interp.NewHistory(historySize),
		helpCache:       cache.New(helpCacheExpiration, helpCacheCleanup),
		config:          config,
		events:          events,
		styles:          NewStyles(),
		glamourRenderer: glamourRenderer,
	}
}

// Init is called when the program starts.
func (m ConsoleModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.listenForEvents())
}

// listenForEvents turns the feed channel into Bubble Tea messages, one
// command per event.
func (m ConsoleModel) listenForEvents() tea.Cmd {
	events := m.events
	if events == nil {
		return nil
	}
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return feedClosedMsg{}
		}
		return eventMsg{event: ev}
	}
}

// Update handles all the I/O.
func (m ConsoleModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.showHelp {
			return m.updateHelpOverlay(msg)
		}
		if m.showPicker {
			return m.updatePicker(msg)
		}
		return m.updateCommandLine(msg)

	case eventMsg:
		m.handleEvent(msg.event)
		return m, m.listenForEvents()

	case feedClosedMsg:
		m.appendLog("event feed closed", interp.ToastError)
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		m.ready = true
	}

	return m, nil
}

// updateCommandLine handles keys while the input line owns focus.
func (m ConsoleModel) updateCommandLine(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		line := m.input.Value()
		m.history.Push(line)
		m.input.SetValue("")
		m.suggestions = nil
		m.lastInput = ""
		m.runCommand(line)
		return m, nil

	case "up":
		if prev, ok := m.history.Previous(m.input.Value()); ok {
			m.input.SetValue(prev)
			m.input.CursorEnd()
			m.lastInput = prev
			m.suggestions = nil
		}
		return m, nil

	case "down":
		if next, ok := m.history.Next(); ok {
			m.input.SetValue(next)
			m.input.CursorEnd()
			m.lastInput = next
			m.suggestions = nil
		}
		return m, nil

	case "tab":
		if len(m.suggestions) > 0 {
			completed := interp.ApplySuggestion(m.input.Value(), m.suggestions[0].Alias)
			m.input.SetValue(completed)
			m.input.CursorEnd()
			m.lastInput = completed
			m.suggestions = interp.SuggestCommands(m.it.Catalog(), completed)
		}
		return m, nil

	case "f1":
		m.openHelp()
		return m, nil

	case "ctrl+y":
		if m.lastMessage != "" {
			if err := clipboard.WriteAll(m.lastMessage); err == nil {
				m.appendLog("copied last message to clipboard", interp.ToastInfo)
			}
		}
		return m, nil

	case "esc":
		m.input.SetValue("")
		m.suggestions = nil
		m.lastInput = ""
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)

	if current := m.input.Value(); current != m.lastInput {
		m.suggestions = interp.SuggestCommands(m.it.Catalog(), current)
		m.lastInput = current
	}
	return m, cmd
}

// updatePicker handles keys while the incident picker overlay is up.
func (m ConsoleModel) updatePicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.it.CancelPending()
		m.showPicker = false
		m.appendLog("dispatch cancelled", interp.ToastInfo)
		return m, nil

	case "enter":
		idx := m.picker.Index()
		if idx >= 0 && idx < len(m.pickerRows) {
			inc := m.pickerRows[idx]
			m.showPicker = false
			ctx, cancel := m.commandContext()
			m.it.ConfirmIncidentPick(ctx, inc.ID)
			cancel()
			m.drainNotifier()
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)
	return m, cmd
}

// updateHelpOverlay handles keys while the reference overlay is up.
func (m ConsoleModel) updateHelpOverlay(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "f1", "q":
		m.showHelp = false
		return m, nil
	}
	var cmd tea.Cmd
	m.helpViewport, cmd = m.helpViewport.Update(msg)
	return m, cmd
}

// runCommand feeds one line through the interpreter and surfaces the
// results.
func (m *ConsoleModel) runCommand(line string) {
	ctx, cancel := m.commandContext()
	defer cancel()
	m.it.Execute(ctx, line)
	m.drainNotifier()
}

func (m *ConsoleModel) commandContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), m.config.Server.Timeout()+time.Second)
}

// drainNotifier moves everything the interpreter reported into the UI.
func (m *ConsoleModel) drainNotifier() {
	n := m.notifier

	for _, t := range n.toasts {
		m.appendLog(t.text, t.kind)
	}
	if n.openInc != "" {
		m.appendLog(fmt.Sprintf("incident window: %s", n.openInc), interp.ToastInfo)
	}
	if n.openUnit != "" {
		m.appendLog(fmt.Sprintf("unit window: %s", n.openUnit), interp.ToastInfo)
	}
	if n.showHelp {
		m.openHelp()
	}
	if n.pick != nil {
		m.openPicker(n.pick)
	}
	if n.refresh {
		logger.Debugw("panel refresh requested")
	}

	n.reset()
}

// openPicker loads the open-incident board and shows the overlay. A load
// failure cancels the deferred dispatch rather than leaving it dangling.
func (m *ConsoleModel) openPicker(req *pickRequest) {
	ctx, cancel := m.commandContext()
	incidents, err := m.client.GetOpenIncidents(ctx)
	cancel()
	if err != nil {
		m.it.CancelPending()
		m.appendLog(fmt.Sprintf("could not load open incidents: %v", err), interp.ToastError)
		return
	}
	if len(incidents) == 0 {
		m.it.CancelPending()
		m.appendLog("no open incidents to dispatch to", interp.ToastError)
		return
	}

	m.pickerRows = incidents
	items := make([]list.Item, len(incidents))
	for i, inc := range incidents {
		items[i] = incidentItem{row: i + 1, inc: inc}
	}
	m.picker.SetItems(items)
	m.picker.ResetSelected()
	m.showPicker = true
	m.appendLog(fmt.Sprintf("pick an incident for %s", strings.Join(req.units, ", ")), interp.ToastInfo)
}

// openHelp renders the command reference, caching the rendered output.
func (m *ConsoleModel) openHelp() {
	var content string
	if v, ok := m.helpCache.Get(helpCacheKey); ok {
		content = v.(string)
	} else {
		md := commandReferenceMarkdown(m.it.Catalog())
		if m.glamourRenderer != nil {
			if rendered, err := m.glamourRenderer.Render(md); err == nil {
				md = rendered
			}
		}
		content = md
		m.helpCache.Set(helpCacheKey, content, helpCacheExpiration)
	}
	m.helpViewport.SetContent(content)
	m.helpViewport.GotoTop()
	m.showHelp = true
}

// handleEvent reacts to one server push.
func (m *ConsoleModel) handleEvent(ev cad.Event) {
	switch ev.Type {
	case cad.EventAliasesChanged:
		ctx, cancel := m.commandContext()
		if err := m.it.LoadAliases(ctx); err != nil {
			logger.Warnw("alias reload after server push failed", "error", err)
		}
		cancel()
		m.appendLog("unit aliases updated from server", interp.ToastInfo)
	case cad.EventSystemBroadcast:
		if ev.Message != "" {
			m.appendLog(ev.Message, interp.ToastInfo)
		}
	default:
		// Unit and incident updates just mean our panels are stale.
		logger.Debugw("server event", "type", ev.Type, "unit", ev.UnitID, "incident", ev.IncidentID)
	}
}

// appendLog adds one line to the message log and scrolls to it.
func (m *ConsoleModel) appendLog(text, kind string) {
	var style lipgloss.Style
	switch kind {
	case interp.ToastSuccess:
		style = m.styles.LogSuccess
	case interp.ToastError:
		style = m.styles.LogError
	default:
		style = m.styles.LogInfo
	}

	line := fmt.Sprintf("%s %s",
		m.styles.LogTime.Render(FormatClock(time.Now())),
		style.Render(text))

	m.logLines = append(m.logLines, line)
	if len(m.logLines) > maxLogLines {
		m.logLines = m.logLines[len(m.logLines)-maxLogLines:]
	}
	m.lastMessage = text
	m.messageView.SetContent(strings.Join(m.logLines, "\n"))
	m.messageView.GotoBottom()
}

// View renders the UI.
func (m ConsoleModel) View() string {
	if !m.ready {
		return "Initializing..."
	}
	if m.width < 40 || m.height < 10 {
		return "Terminal too small. Please resize your terminal."
	}

	if m.showHelp {
		return m.renderHelpOverlay()
	}
	if m.showPicker {
		return m.renderPickerOverlay()
	}
	return m.renderConsole()
}

func (m ConsoleModel) renderConsole() string {
	inputHeight := 3
	logHeight := m.height - inputHeight - 5

	inputTitle := " ⌨  Command "
	inputBox := m.styles.BorderFocused.
		Width(m.width - 2).
		Height(inputHeight).
		Padding(0, 1).
		Render(lipgloss.JoinVertical(
			lipgloss.Left,
			m.styles.Title.Render(inputTitle),
			m.input.View(),
			m.renderSuggestionLine(),
		))

	logBox := m.styles.BorderBlurred.
		Width(m.width - 2).
		Height(logHeight).
		Render(lipgloss.JoinVertical(
			lipgloss.Left,
			m.styles.Title.Render(" 📻 Dispatch Log "),
			m.messageView.View(),
		))

	return lipgloss.JoinVertical(
		lipgloss.Left,
		inputBox,
		logBox,
		m.renderFooter(),
	)
}

func (m ConsoleModel) renderSuggestionLine() string {
	if len(m.suggestions) == 0 {
		return ""
	}
	parts := make([]string, 0, len(m.suggestions))
	for _, s := range m.suggestions {
		parts = append(parts, fmt.Sprintf("%s (%s)", s.Alias, s.Description))
	}
	return m.styles.Suggestion.Render(strings.Join(parts, "  ·  "))
}

func (m ConsoleModel) renderPickerOverlay() string {
	title := " 🚨 Open Incidents (enter to dispatch, esc to cancel) "
	box := m.styles.BorderFocused.
		Width(m.width - 2).
		Height(m.height - 4).
		Render(lipgloss.JoinVertical(
			lipgloss.Left,
			m.styles.Title.Render(title),
			m.picker.View(),
		))
	return lipgloss.JoinVertical(lipgloss.Left, box, m.renderFooter())
}

func (m ConsoleModel) renderHelpOverlay() string {
	box := m.styles.BorderFocused.
		Width(m.width - 2).
		Height(m.height - 4).
		Render(lipgloss.JoinVertical(
			lipgloss.Left,
			m.styles.Title.Render(" 📖 Command Reference "),
			m.helpViewport.View(),
		))
	return lipgloss.JoinVertical(lipgloss.Left, box, m.renderFooter())
}

func (m ConsoleModel) renderFooter() string {
	keys := []string{"enter", "up/down", "tab", "f1", "ctrl+y", "esc", "ctrl+c"}
	descs := []string{"run", "history", "complete", "reference", "copy last", "dismiss", "quit"}

	var entries []string
	for i, key := range keys {
		entries = append(entries,
			fmt.Sprintf("%s %s",
				m.styles.HelpKey.Render(key),
				m.styles.HelpDesc.Render(descs[i])))
	}

	return lipgloss.NewStyle().
		Padding(0, 0, 0, 2).
		Render(strings.Join(entries, " • "))
}

// updateLayout updates component dimensions.
func (m *ConsoleModel) updateLayout() {
	inputHeight := 3
	logHeight := m.height - inputHeight - 5

	m.input.Width = m.width - 8
	m.messageView.Width = m.width - 4
	m.messageView.Height = logHeight - 2
	m.picker.SetSize(m.width-4, m.height-8)
	m.helpViewport.Width = m.width - 4
	m.helpViewport.Height = m.height - 8

	m.messageView.SetContent(strings.Join(m.logLines, "\n"))
	m.messageView.GotoBottom()
}

// runConsole builds the full stack and runs the Bubble Tea program until the
// operator quits.
func runConsole(config *Config) error {
	InitializeColors()

	client := cad.NewClient(config.Server.BaseURL, config.Server.APIKey, config.Server.Timeout(), logger)
	notifier := &uiNotifier{}

	it := interp.New(interp.DefaultCatalog(), client, notifier, logger)
	it.NLPEnabled = config.Console.EnableNLP

	ctx, cancel := context.WithTimeout(context.Background(), config.Server.Timeout())
	if err := it.LoadAliases(ctx); err != nil {
		logger.Warnw("initial alias load failed", "error", err)
	}
	cancel()

	events := make(chan cad.Event, 16)
	feedCtx, stopFeed := context.WithCancel(context.Background())
	defer stopFeed()
	go pumpEvents(feedCtx, config.Server.BaseURL, events)

	model := NewConsoleModel(it, client, notifier, config, events)
	program := tea.NewProgram(
		model,
		tea.WithAltScreen(),
	)

	_, err := program.Run()
	return err
}

// pumpEvents keeps the server event feed alive, forwarding every event into
// the channel and reconnecting with a capped backoff.
func pumpEvents(ctx context.Context, baseURL string, events chan<- cad.Event) {
	defer close(events)

	backoff := time.Second
	for {
		feed := cad.NewEventFeed(baseURL, logger)
		err := feed.Run(ctx, func(ev cad.Event) {
			backoff = time.Second
			select {
			case events <- ev:
			case <-ctx.Done():
			}
		})
		feed.Close()

		if ctx.Err() != nil {
			return
		}
		logger.Warnw("event feed dropped", "error", err, "retry_in", backoff)

		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return
		}
		if backoff < 30*time.Second {
			backoff *= 2
		}
	}
}
