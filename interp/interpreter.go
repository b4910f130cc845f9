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
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// Unit status codes sent to the backend by the status-family actions.
const (
	StatusEnroute       = "ER"
	StatusOnScene       = "OS"
	StatusStaged        = "STG"
	StatusTransport     = "TX"
	StatusAtHospital    = "AH"
	StatusReturning     = "RTN"
	StatusInQuarters    = "AQ"
	StatusOnRadio       = "AOR"
	StatusBusy          = "BSY"
	StatusTraining      = "TRN"
	StatusMealBreak     = "MB"
	StatusCancelled     = "CAN"
	StatusBackInService = "INS"
)

// PendingSelection bridges a dispatch command to its deferred incident
// choice. At most one is live; a new dispatch overwrites it (last write
// wins, one line at a time).
type PendingSelection struct {
	Units []string
	Mode  DispatchMode
}

type handlerFunc func(ctx context.Context, units, args []string) error

// Interpreter turns one line of operator text into a validated action call
// on the backend. All state it owns (alias table, pending selection,
// handlers) is session-scoped; nothing survives a restart.
type Interpreter struct {
	catalog  *Catalog
	aliases  *AliasResolver
	backend  Backend
	notifier Notifier
	log      *zap.SugaredLogger
	nlp      []nlpPattern
	handlers map[ActionKey]handlerFunc
	pending  *PendingSelection

	// NLPEnabled gates the conversational fallback pass. On by default.
	NLPEnabled bool
}

// New wires an interpreter over the given collaborators. Pass a nil logger
// to log nowhere.
func New(cat *Catalog, backend Backend, notifier Notifier, log *zap.SugaredLogger) *Interpreter {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	it := &Interpreter{
		catalog:    cat,
		aliases:    NewAliasResolver(nil),
		backend:    backend,
		notifier:   notifier,
		log:        log,
		nlp:        nlpPatterns(),
		NLPEnabled: true,
	}
	it.handlers = it.buildHandlers()
	return it
}

// Catalog exposes the command catalog for autocomplete and help rendering.
func (it *Interpreter) Catalog() *Catalog {
	return it.catalog
}

// Aliases exposes the unit alias resolver.
func (it *Interpreter) Aliases() *AliasResolver {
	return it.aliases
}

// Pending returns the live pending selection, or nil.
func (it *Interpreter) Pending() *PendingSelection {
	return it.pending
}

// LoadAliases fetches the shorthand table and replaces the current one
// wholesale. A fetch failure leaves the previous table in place.
func (it *Interpreter) LoadAliases(ctx context.Context) error {
	table, err := it.backend.FetchAliasMap(ctx)
	if err != nil {
		return fmt.Errorf("alias map fetch: %w", err)
	}
	it.aliases.Replace(table)
	it.log.Infow("alias map loaded", "count", it.aliases.Len())
	return nil
}

// Execute interprets one raw line. Every failure is reported to the
// operator and leaves interpreter state ready for the next line; nothing
// here is fatal.
func (it *Interpreter) Execute(ctx context.Context, line string) {
	line = strings.TrimSpace(line)
	if line == "" {
		return
	}
	it.log.Debugw("execute", "line", line)

	// A bare incident reference while a dispatch is waiting is the answer
	// to the pick, not a new command.
	if it.pending != nil && isIncidentChoice(line) {
		it.consumePending(ctx, trimIncidentMarker(line), "")
		return
	}

	if it.NLPEnabled {
		if key, units, args, ok := matchNLP(it.nlp, line); ok {
			it.dispatchAction(ctx, key, units, args)
			return
		}
	}

	tokens := Tokenize(line)
	if len(tokens) == 0 {
		return
	}

	units, idx := ScanUnits(tokens, 0, it.catalog)
	if idx == len(tokens) {
		it.reportf("no action word in %q", line)
		return
	}

	key, ok := it.catalog.Resolve(tokens[idx])
	if !ok {
		it.reportf("unknown command %q", tokens[idx])
		return
	}
	it.dispatchAction(ctx, key, units, tokens[idx+1:])
}

// dispatchAction is the single funnel both parsing front ends reach. Units
// pass through the alias table here so neither route can skip it.
func (it *Interpreter) dispatchAction(ctx context.Context, key ActionKey, units, args []string) {
	h, ok := it.handlers[key]
	if !ok {
		it.reportf("no handler for %s", key)
		return
	}
	if err := h(ctx, it.aliases.ResolveAll(units), args); err != nil {
		it.notifier.Toast(err.Error(), ToastError)
		it.log.Warnw("command rejected", "action", key, "error", err)
	}
}

// ConfirmIncidentPick completes a pending dispatch with an incident id
// chosen in the picker.
func (it *Interpreter) ConfirmIncidentPick(ctx context.Context, incidentID string) {
	it.consumePending(ctx, "", incidentID)
}

// CancelPending abandons the live pending selection, if any.
func (it *Interpreter) CancelPending() {
	it.pending = nil
}

// consumePending uses the stored units/mode exactly once. Confirming with
// no live selection is an error, not a no-op.
func (it *Interpreter) consumePending(ctx context.Context, incidentRef, incidentID string) {
	p := it.pending
	if p == nil {
		it.notifier.Toast("no dispatch is waiting for an incident choice", ToastError)
		return
	}
	it.pending = nil
	err := it.sendDispatch(ctx, DispatchRequest{
		Units:       p.Units,
		IncidentRef: incidentRef,
		IncidentID:  incidentID,
		Mode:        p.Mode,
	})
	if err != nil {
		it.notifier.Toast(err.Error(), ToastError)
	}
}

func (it *Interpreter) reportf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	it.notifier.Toast(msg, ToastError)
	it.log.Infow("parse error", "message", msg)
}

// forEachUnit runs one backend call per unit, reporting each outcome
// independently. A failure on one unit never blocks the rest.
func (it *Interpreter) forEachUnit(ctx context.Context, units []string, verb string, call func(context.Context, string) error) {
	succeeded := 0
	for _, unit := range units {
		if err := call(ctx, unit); err != nil {
			it.notifier.Toast(fmt.Sprintf("%s: %s failed: %v", unit, verb, err), ToastError)
			it.log.Warnw("unit call failed", "unit", unit, "verb", verb, "error", err)
			continue
		}
		succeeded++
		it.notifier.Toast(fmt.Sprintf("%s %s", unit, verb), ToastSuccess)
	}
	if succeeded > 0 {
		it.notifier.RefreshPanels()
	}
}

func (it *Interpreter) sendDispatch(ctx context.Context, req DispatchRequest) error {
	if err := it.backend.PostDispatch(ctx, req); err != nil {
		return fmt.Errorf("dispatch failed: %w", err)
	}
	target := req.IncidentRef
	if target == "" {
		target = req.IncidentID
	}
	it.notifier.Toast(fmt.Sprintf("dispatched %s to %s", strings.Join(req.Units, ","), target), ToastSuccess)
	it.notifier.RefreshPanels()
	it.log.Infow("dispatched", "units", req.Units, "incident", target, "mode", req.Mode)
	return nil
}

// buildHandlers maps every action key to exactly one handler. The status
// family shares one shape parameterized by code and verb.
func (it *Interpreter) buildHandlers() map[ActionKey]handlerFunc {
	h := map[ActionKey]handlerFunc{
		ActionDispatch:        it.dispatchHandler(ModeDispatch),
		ActionDispatchEnroute: it.dispatchHandler(ModeDispatchEnroute),

		ActionEnroute:       it.statusHandler(StatusEnroute, "enroute"),
		ActionOnScene:       it.statusHandler(StatusOnScene, "on scene"),
		ActionStaged:        it.statusHandler(StatusStaged, "staged"),
		ActionTransport:     it.statusHandler(StatusTransport, "transporting"),
		ActionAtHospital:    it.statusHandler(StatusAtHospital, "at hospital"),
		ActionReturning:     it.statusHandler(StatusReturning, "returning"),
		ActionInQuarters:    it.statusHandler(StatusInQuarters, "in quarters"),
		ActionOnRadio:       it.statusHandler(StatusOnRadio, "available on radio"),
		ActionBusy:          it.statusHandler(StatusBusy, "busy"),
		ActionTraining:      it.statusHandler(StatusTraining, "out for training"),
		ActionMealBreak:     it.statusHandler(StatusMealBreak, "on meal break"),
		ActionCancelled:     it.statusHandler(StatusCancelled, "cancelled"),
		ActionBackInService: it.statusHandler(StatusBackInService, "back in service"),

		ActionAvailable:    it.availableHandler,
		ActionOutOfService: it.outOfServiceHandler,

		ActionAddRemark: it.remarkHandler,

		ActionUnitDisposition:  it.unitDispositionHandler,
		ActionEventDisposition: it.eventDispositionHandler,

		ActionCoverageStart: it.coverageStartHandler,
		ActionCoverageEnd:   it.coverageEndHandler,

		ActionCrewAssign:   it.crewAssignHandler,
		ActionCrewUnassign: it.crewUnassignHandler,

		ActionOpenUnit:      it.openUnitHandler,
		ActionOpenIncident:  it.openIncidentHandler,
		ActionRefresh:       it.refreshHandler,
		ActionReloadAliases: it.reloadAliasesHandler,
		ActionHelp:          it.helpHandler,
	}
	return h
}

func requireUnits(units []string, verb string) error {
	if len(units) == 0 {
		return fmt.Errorf("%s needs at least one unit", verb)
	}
	return nil
}

func (it *Interpreter) statusHandler(code, verb string) handlerFunc {
	return func(ctx context.Context, units, args []string) error {
		if err := requireUnits(units, verb); err != nil {
			return err
		}
		it.forEachUnit(ctx, units, verb, func(ctx context.Context, unit string) error {
			return it.backend.PostUnitStatus(ctx, unit, code)
		})
		return nil
	}
}

// dispatchHandler partitions its arguments: the first incident-shaped token
// is the destination, every other unit-like token joins the acting set.
// Units with no destination park in the pending slot and prompt the picker;
// a newer dispatch overwrites an older pending slot.
func (it *Interpreter) dispatchHandler(mode DispatchMode) handlerFunc {
	return func(ctx context.Context, units, args []string) error {
		incident := ""
		for _, arg := range args {
			switch {
			case incident == "" && isIncidentChoice(arg):
				incident = arg
			case isUnitLike(arg):
				units = append(units, it.aliases.Resolve(arg))
			default:
				return fmt.Errorf("dispatch: unexpected argument %q", arg)
			}
		}
		if err := requireUnits(units, "dispatch"); err != nil {
			return err
		}
		if incident == "" {
			it.pending = &PendingSelection{Units: units, Mode: mode}
			it.notifier.PromptIncidentPick(units, mode)
			return nil
		}
		return it.sendDispatch(ctx, DispatchRequest{
			Units:       units,
			IncidentRef: trimIncidentMarker(incident),
			Mode:        mode,
		})
	}
}

func (it *Interpreter) availableHandler(ctx context.Context, units, args []string) error {
	if err := requireUnits(units, "clear"); err != nil {
		return err
	}
	it.forEachUnit(ctx, units, "available", it.backend.PostUnitAvailable)
	return nil
}

func (it *Interpreter) outOfServiceHandler(ctx context.Context, units, args []string) error {
	if err := requireUnits(units, "out of service"); err != nil {
		return err
	}
	it.forEachUnit(ctx, units, "out of service", it.backend.PostUnitOOS)
	return nil
}

// remarkHandler posts free text against a unit's active incident when it has
// one, the unit itself otherwise. "R #123: text" targets an incident
// directly.
func (it *Interpreter) remarkHandler(ctx context.Context, units, args []string) error {
	if len(args) > 0 && isIncidentRef(args[0]) {
		text := strings.TrimSpace(strings.Join(args[1:], " "))
		if text == "" {
			return errors.New("remark needs text after the incident reference")
		}
		if err := it.backend.PostRemark(ctx, RemarkRequest{IncidentID: trimIncidentMarker(args[0]), Text: text}); err != nil {
			return fmt.Errorf("remark failed: %w", err)
		}
		it.notifier.Toast("remark added", ToastSuccess)
		it.notifier.RefreshPanels()
		return nil
	}

	if err := requireUnits(units, "remark"); err != nil {
		return err
	}
	text := strings.TrimSpace(strings.Join(args, " "))
	if text == "" {
		return errors.New("remark needs text")
	}
	it.forEachUnit(ctx, units, "remark added", func(ctx context.Context, unit string) error {
		req := RemarkRequest{UnitID: unit, Text: text}
		if uc, err := it.backend.GetUnitContext(ctx, unit); err == nil && uc.ActiveIncidentID != "" {
			req = RemarkRequest{IncidentID: uc.ActiveIncidentID, Text: text}
		}
		return it.backend.PostRemark(ctx, req)
	})
	return nil
}

func (it *Interpreter) unitDispositionHandler(ctx context.Context, units, args []string) error {
	if err := requireUnits(units, "disposition"); err != nil {
		return err
	}
	if len(args) != 1 {
		return errors.New("unit disposition needs exactly one code")
	}
	code := args[0]
	it.forEachUnit(ctx, units, "disposition "+code, func(ctx context.Context, unit string) error {
		return it.backend.PostUnitDisposition(ctx, unit, code)
	})
	return nil
}

// eventDispositionHandler accepts either "ED <incident> <code>" or
// "<units> ED <code>", the latter resolving each unit's active incident.
func (it *Interpreter) eventDispositionHandler(ctx context.Context, units, args []string) error {
	if len(units) == 0 {
		if len(args) != 2 || !isIncidentChoice(args[0]) {
			return errors.New("event disposition needs an incident reference and a code")
		}
		incident, code := trimIncidentMarker(args[0]), args[1]
		if err := it.backend.PostEventDisposition(ctx, incident, code); err != nil {
			return fmt.Errorf("event disposition failed: %w", err)
		}
		it.notifier.Toast(fmt.Sprintf("incident %s closed with %s", incident, code), ToastSuccess)
		it.notifier.RefreshPanels()
		return nil
	}

	if len(args) != 1 {
		return errors.New("event disposition needs exactly one code")
	}
	code := args[0]
	it.forEachUnit(ctx, units, "event disposition "+code, func(ctx context.Context, unit string) error {
		uc, err := it.backend.GetUnitContext(ctx, unit)
		if err != nil {
			return err
		}
		if uc.ActiveIncidentID == "" {
			return errors.New("no active incident")
		}
		return it.backend.PostEventDisposition(ctx, uc.ActiveIncidentID, code)
	})
	return nil
}

func (it *Interpreter) coverageStartHandler(ctx context.Context, units, args []string) error {
	if err := requireUnits(units, "coverage"); err != nil {
		return err
	}
	station := ""
	if len(args) > 0 {
		station = args[0]
	}
	verb := "covering"
	if station != "" {
		verb = "covering station " + station
	}
	it.forEachUnit(ctx, units, verb, func(ctx context.Context, unit string) error {
		return it.backend.PostCoverageStart(ctx, unit, station)
	})
	return nil
}

func (it *Interpreter) coverageEndHandler(ctx context.Context, units, args []string) error {
	if err := requireUnits(units, "coverage end"); err != nil {
		return err
	}
	it.forEachUnit(ctx, units, "coverage ended", it.backend.PostCoverageEnd)
	return nil
}

func (it *Interpreter) crewAssignHandler(ctx context.Context, units, args []string) error {
	if err := requireUnits(units, "crew assign"); err != nil {
		return err
	}
	if len(args) != 1 {
		return errors.New("crew assign needs an apparatus")
	}
	apparatus := it.aliases.Resolve(args[0])
	it.forEachUnit(ctx, units, "assigned to "+apparatus, func(ctx context.Context, personnel string) error {
		return it.backend.PostCrewAssign(ctx, personnel, apparatus)
	})
	return nil
}

// crewUnassignHandler falls back to each person's current apparatus when
// none is given.
func (it *Interpreter) crewUnassignHandler(ctx context.Context, units, args []string) error {
	if err := requireUnits(units, "crew unassign"); err != nil {
		return err
	}
	apparatus := ""
	if len(args) > 0 {
		apparatus = it.aliases.Resolve(args[0])
	}
	it.forEachUnit(ctx, units, "unassigned", func(ctx context.Context, personnel string) error {
		target := apparatus
		if target == "" {
			uc, err := it.backend.GetUnitContext(ctx, personnel)
			if err != nil {
				return err
			}
			if uc.CurrentApparatus == "" {
				return errors.New("not assigned to an apparatus")
			}
			target = uc.CurrentApparatus
		}
		return it.backend.PostCrewUnassign(ctx, personnel, target)
	})
	return nil
}

func (it *Interpreter) openUnitHandler(ctx context.Context, units, args []string) error {
	units = append(units, it.aliases.ResolveAll(args)...)
	if err := requireUnits(units, "open unit"); err != nil {
		return err
	}
	for _, unit := range units {
		it.notifier.OpenUnit(unit)
	}
	return nil
}

func (it *Interpreter) openIncidentHandler(ctx context.Context, units, args []string) error {
	if len(args) > 0 && isIncidentChoice(args[0]) {
		it.notifier.OpenIncident(trimIncidentMarker(args[0]))
		return nil
	}
	if err := requireUnits(units, "open incident"); err != nil {
		return err
	}
	it.forEachUnit(ctx, units, "incident opened", func(ctx context.Context, unit string) error {
		uc, err := it.backend.GetUnitContext(ctx, unit)
		if err != nil {
			return err
		}
		if uc.ActiveIncidentID == "" {
			return errors.New("no active incident")
		}
		it.notifier.OpenIncident(uc.ActiveIncidentID)
		return nil
	})
	return nil
}

func (it *Interpreter) refreshHandler(ctx context.Context, units, args []string) error {
	it.notifier.RefreshPanels()
	return nil
}

func (it *Interpreter) reloadAliasesHandler(ctx context.Context, units, args []string) error {
	if err := it.LoadAliases(ctx); err != nil {
		return err
	}
	it.notifier.Toast(fmt.Sprintf("%d unit aliases loaded", it.aliases.Len()), ToastInfo)
	return nil
}

func (it *Interpreter) helpHandler(ctx context.Context, units, args []string) error {
	it.notifier.ShowHelp()
	return nil
}
