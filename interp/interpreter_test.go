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
	"testing"
)

type statusCall struct {
	Unit   string
	Status string
}

type crewCall struct {
	Personnel string
	Apparatus string
}

type fakeBackend struct {
	statuses     []statusCall
	availables   []string
	oos          []string
	dispatches   []DispatchRequest
	remarks      []RemarkRequest
	unitDispos   []statusCall
	eventDispos  []statusCall
	coverStarts  []crewCall
	coverEnds    []string
	crewAssigns  []crewCall
	crewRemoves  []crewCall
	contexts     map[string]UnitContext
	aliasMap     map[string]string
	aliasErr     error
	failingUnits map[string]bool
}

func (f *fakeBackend) failFor(unit string) error {
	if f.failingUnits[unit] {
		return errors.New("backend rejected")
	}
	return nil
}

func (f *fakeBackend) PostUnitStatus(_ context.Context, unitID, status string) error {
	if err := f.failFor(unitID); err != nil {
		return err
	}
	f.statuses = append(f.statuses, statusCall{unitID, status})
	return nil
}

func (f *fakeBackend) PostUnitAvailable(_ context.Context, unitID string) error {
	if err := f.failFor(unitID); err != nil {
		return err
	}
	f.availables = append(f.availables, unitID)
	return nil
}

func (f *fakeBackend) PostUnitOOS(_ context.Context, unitID string) error {
	if err := f.failFor(unitID); err != nil {
		return err
	}
	f.oos = append(f.oos, unitID)
	return nil
}

func (f *fakeBackend) PostDispatch(_ context.Context, req DispatchRequest) error {
	f.dispatches = append(f.dispatches, req)
	return nil
}

func (f *fakeBackend) PostRemark(_ context.Context, req RemarkRequest) error {
	f.remarks = append(f.remarks, req)
	return nil
}

func (f *fakeBackend) PostUnitDisposition(_ context.Context, unitID, code string) error {
	if err := f.failFor(unitID); err != nil {
		return err
	}
	f.unitDispos = append(f.unitDispos, statusCall{unitID, code})
	return nil
}

func (f *fakeBackend) PostEventDisposition(_ context.Context, incidentID, code string) error {
	f.eventDispos = append(f.eventDispos, statusCall{incidentID, code})
	return nil
}

func (f *fakeBackend) PostCoverageStart(_ context.Context, unitID, stationID string) error {
	if err := f.failFor(unitID); err != nil {
		return err
	}
	f.coverStarts = append(f.coverStarts, crewCall{unitID, stationID})
	return nil
}

func (f *fakeBackend) PostCoverageEnd(_ context.Context, unitID string) error {
	if err := f.failFor(unitID); err != nil {
		return err
	}
	f.coverEnds = append(f.coverEnds, unitID)
	return nil
}

func (f *fakeBackend) PostCrewAssign(_ context.Context, personnelID, apparatusID string) error {
	f.crewAssigns = append(f.crewAssigns, crewCall{personnelID, apparatusID})
	return nil
}

func (f *fakeBackend) PostCrewUnassign(_ context.Context, personnelID, apparatusID string) error {
	f.crewRemoves = append(f.crewRemoves, crewCall{personnelID, apparatusID})
	return nil
}

func (f *fakeBackend) GetUnitContext(_ context.Context, unitID string) (UnitContext, error) {
	if uc, ok := f.contexts[unitID]; ok {
		return uc, nil
	}
	return UnitContext{}, nil
}

func (f *fakeBackend) FetchAliasMap(_ context.Context) (map[string]string, error) {
	return f.aliasMap, f.aliasErr
}

type toast struct {
	Message string
	Kind    string
}

type pickPrompt struct {
	Units []string
	Mode  DispatchMode
}

type fakeNotifier struct {
	toasts        []toast
	openIncidents []string
	openUnits     []string
	refreshes     int
	picks         []pickPrompt
	helpShown     int
}

func (f *fakeNotifier) Toast(message, kind string) {
	f.toasts = append(f.toasts, toast{message, kind})
}

func (f *fakeNotifier) OpenIncident(id string) { f.openIncidents = append(f.openIncidents, id) }
func (f *fakeNotifier) OpenUnit(id string)     { f.openUnits = append(f.openUnits, id) }
func (f *fakeNotifier) RefreshPanels()         { f.refreshes++ }
func (f *fakeNotifier) ShowHelp()              { f.helpShown++ }

func (f *fakeNotifier) PromptIncidentPick(units []string, mode DispatchMode) {
	f.picks = append(f.picks, pickPrompt{units, mode})
}

func (f *fakeNotifier) errorToasts() []string {
	var out []string
	for _, t := range f.toasts {
		if t.Kind == ToastError {
			out = append(out, t.Message)
		}
	}
	return out
}

func newTestInterpreter(t *testing.T) (*Interpreter, *fakeBackend, *fakeNotifier) {
	t.Helper()
	backend := &fakeBackend{
		contexts:     map[string]UnitContext{},
		failingUnits: map[string]bool{},
	}
	notifier := &fakeNotifier{}
	return New(DefaultCatalog(), backend, notifier, nil), backend, notifier
}

func TestStatusCommands(t *testing.T) {
	testCases := []struct {
		Name     string
		Line     string
		Expected []statusCall
	}{
		{"SingleUnitEnroute", "E1 E", []statusCall{{"E1", StatusEnroute}}},
		{"CommaListOnScene", "18,19 OS", []statusCall{{"18", StatusOnScene}, {"19", StatusOnScene}}},
		{"FuzzyActionWord", "E1 TRANSPROT", []statusCall{{"E1", StatusTransport}}},
		{"HyphenInsensitive", "M1 AT-HOSPITAL", []statusCall{{"M1", StatusAtHospital}}},
	}

	for _, tc := range testCases {
		t.Run(tc.Name, func(t *testing.T) {
			it, backend, _ := newTestInterpreter(t)
			it.Execute(context.Background(), tc.Line)

			if len(backend.statuses) != len(tc.Expected) {
				t.Fatalf("got %d status calls, want %d", len(backend.statuses), len(tc.Expected))
			}
			for i, want := range tc.Expected {
				if backend.statuses[i] != want {
					t.Errorf("call %d = %+v, want %+v", i, backend.statuses[i], want)
				}
			}
		})
	}
}

func TestPendingSelectionFlow(t *testing.T) {
	it, backend, notifier := newTestInterpreter(t)

	it.Execute(context.Background(), "18 D")

	if it.Pending() == nil {
		t.Fatal("expected a pending selection after dispatch with no incident")
	}
	if got := it.Pending().Units; len(got) != 1 || got[0] != "18" {
		t.Errorf("pending units = %v, want [18]", got)
	}
	if it.Pending().Mode != ModeDispatch {
		t.Errorf("pending mode = %s, want %s", it.Pending().Mode, ModeDispatch)
	}
	if len(notifier.picks) != 1 {
		t.Fatalf("expected one picker prompt, got %d", len(notifier.picks))
	}
	if len(backend.dispatches) != 0 {
		t.Fatalf("no dispatch should be sent before the pick, got %d", len(backend.dispatches))
	}

	it.ConfirmIncidentPick(context.Background(), "7")

	if len(backend.dispatches) != 1 {
		t.Fatalf("expected exactly one dispatch after the pick, got %d", len(backend.dispatches))
	}
	req := backend.dispatches[0]
	if len(req.Units) != 1 || req.Units[0] != "18" || req.IncidentID != "7" || req.Mode != ModeDispatch {
		t.Errorf("dispatch = %+v, want units [18] incidentId 7 mode D", req)
	}
	if it.Pending() != nil {
		t.Error("pending selection should be consumed")
	}
}

func TestPendingSelectionTypedChoice(t *testing.T) {
	it, backend, _ := newTestInterpreter(t)

	it.Execute(context.Background(), "E1,M1 DE")
	if it.Pending() == nil {
		t.Fatal("expected pending selection")
	}

	it.Execute(context.Background(), "#4")

	if len(backend.dispatches) != 1 {
		t.Fatalf("expected one dispatch, got %d", len(backend.dispatches))
	}
	req := backend.dispatches[0]
	if req.IncidentRef != "4" || req.Mode != ModeDispatchEnroute {
		t.Errorf("dispatch = %+v, want incidentRef 4 mode DE", req)
	}
	if it.Pending() != nil {
		t.Error("pending selection should be consumed")
	}
}

func TestPendingSelectionOverwrite(t *testing.T) {
	it, backend, _ := newTestInterpreter(t)

	it.Execute(context.Background(), "18 D")
	it.Execute(context.Background(), "19 D")

	p := it.Pending()
	if p == nil || len(p.Units) != 1 || p.Units[0] != "19" {
		t.Fatalf("pending = %+v, want the newer selection for unit 19", p)
	}

	it.ConfirmIncidentPick(context.Background(), "2")
	if len(backend.dispatches) != 1 || backend.dispatches[0].Units[0] != "19" {
		t.Errorf("dispatches = %+v, want one dispatch for unit 19", backend.dispatches)
	}
}

func TestConfirmWithoutPendingIsError(t *testing.T) {
	it, backend, notifier := newTestInterpreter(t)

	it.ConfirmIncidentPick(context.Background(), "7")

	if len(backend.dispatches) != 0 {
		t.Fatalf("no dispatch should be issued, got %d", len(backend.dispatches))
	}
	if len(notifier.errorToasts()) != 1 {
		t.Fatalf("expected one error toast, got %v", notifier.toasts)
	}
}

func TestDispatchWithInlineIncident(t *testing.T) {
	it, backend, _ := newTestInterpreter(t)

	it.Execute(context.Background(), "D 3 E1 M1")

	if it.Pending() != nil {
		t.Fatal("inline incident must not create a pending selection")
	}
	if len(backend.dispatches) != 1 {
		t.Fatalf("expected one dispatch, got %d", len(backend.dispatches))
	}
	req := backend.dispatches[0]
	if req.IncidentRef != "3" {
		t.Errorf("incidentRef = %q, want 3", req.IncidentRef)
	}
	if len(req.Units) != 2 || req.Units[0] != "E1" || req.Units[1] != "M1" {
		t.Errorf("units = %v, want [E1 M1]", req.Units)
	}
}

func TestMultiUnitPartialFailure(t *testing.T) {
	it, backend, notifier := newTestInterpreter(t)
	backend.failingUnits["19"] = true

	it.Execute(context.Background(), "18,19 AV")

	if len(backend.availables) != 1 || backend.availables[0] != "18" {
		t.Fatalf("availables = %v, want unit 18 to succeed independently", backend.availables)
	}
	failures := notifier.errorToasts()
	if len(failures) != 1 || !strings.Contains(failures[0], "19") {
		t.Errorf("error toasts = %v, want one mentioning unit 19", failures)
	}
	if notifier.refreshes == 0 {
		t.Error("panels should refresh after the surviving unit succeeds")
	}
}

func TestRemarkFreeTextPreserved(t *testing.T) {
	it, backend, _ := newTestInterpreter(t)

	it.Execute(context.Background(), "18 AR: patient is stable, breathing")

	if len(backend.remarks) != 1 {
		t.Fatalf("expected one remark, got %d", len(backend.remarks))
	}
	r := backend.remarks[0]
	if r.UnitID != "18" || r.Text != "patient is stable, breathing" {
		t.Errorf("remark = %+v, want unit 18 with comma preserved in text", r)
	}
}

func TestRemarkTargetsActiveIncident(t *testing.T) {
	it, backend, _ := newTestInterpreter(t)
	backend.contexts["E1"] = UnitContext{ActiveIncidentID: "812"}

	it.Execute(context.Background(), "E1 R: crew on air")

	if len(backend.remarks) != 1 {
		t.Fatalf("expected one remark, got %d", len(backend.remarks))
	}
	r := backend.remarks[0]
	if r.IncidentID != "812" || r.UnitID != "" {
		t.Errorf("remark = %+v, want it addressed to incident 812", r)
	}
}

func TestRemarkWithoutTextRejected(t *testing.T) {
	it, backend, notifier := newTestInterpreter(t)

	it.Execute(context.Background(), "18 AR")

	if len(backend.remarks) != 0 {
		t.Fatalf("no remark should be posted, got %v", backend.remarks)
	}
	if len(notifier.errorToasts()) == 0 {
		t.Error("missing text should be reported")
	}
}

func TestUnknownCommandReported(t *testing.T) {
	it, backend, notifier := newTestInterpreter(t)

	it.Execute(context.Background(), "18 ZZZZZZZ")

	if len(backend.statuses)+len(backend.availables) != 0 {
		t.Fatal("unknown command must not reach the backend")
	}
	errs := notifier.errorToasts()
	if len(errs) != 1 || !strings.Contains(errs[0], "ZZZZZZZ") {
		t.Errorf("toasts = %v, want one naming the unknown token", notifier.toasts)
	}
}

func TestLineOfOnlyUnitsReported(t *testing.T) {
	it, _, notifier := newTestInterpreter(t)

	it.Execute(context.Background(), "18 19 E1")

	if len(notifier.errorToasts()) != 1 {
		t.Errorf("a line with no action word should be reported, got %v", notifier.toasts)
	}
}

func TestEmptyLineIsNoOp(t *testing.T) {
	it, backend, notifier := newTestInterpreter(t)

	it.Execute(context.Background(), "   ")

	if len(notifier.toasts) != 0 || len(backend.dispatches) != 0 {
		t.Error("blank input must do nothing")
	}
}

func TestAliasResolutionAppliesToUnits(t *testing.T) {
	it, backend, _ := newTestInterpreter(t)
	it.Aliases().Replace(map[string]string{"q1": "E1"})

	it.Execute(context.Background(), "q1 OS")

	if len(backend.statuses) != 1 || backend.statuses[0].Unit != "E1" {
		t.Errorf("statuses = %v, want canonical unit E1", backend.statuses)
	}
}

func TestEventDispositionForms(t *testing.T) {
	t.Run("ExplicitIncident", func(t *testing.T) {
		it, backend, _ := newTestInterpreter(t)
		it.Execute(context.Background(), "ED #812 5")
		if len(backend.eventDispos) != 1 || backend.eventDispos[0] != (statusCall{"812", "5"}) {
			t.Errorf("eventDispos = %v, want incident 812 code 5", backend.eventDispos)
		}
	})

	t.Run("ViaUnitContext", func(t *testing.T) {
		it, backend, _ := newTestInterpreter(t)
		backend.contexts["E1"] = UnitContext{ActiveIncidentID: "99"}
		it.Execute(context.Background(), "E1 ED 2")
		if len(backend.eventDispos) != 1 || backend.eventDispos[0] != (statusCall{"99", "2"}) {
			t.Errorf("eventDispos = %v, want incident 99 code 2", backend.eventDispos)
		}
	})

	t.Run("NoActiveIncident", func(t *testing.T) {
		it, backend, notifier := newTestInterpreter(t)
		it.Execute(context.Background(), "E1 ED 2")
		if len(backend.eventDispos) != 0 {
			t.Errorf("eventDispos = %v, want none", backend.eventDispos)
		}
		if len(notifier.errorToasts()) == 0 {
			t.Error("missing active incident should be reported")
		}
	})
}

func TestCrewCommands(t *testing.T) {
	it, backend, _ := newTestInterpreter(t)
	backend.contexts["P404"] = UnitContext{CurrentApparatus: "E1"}

	it.Execute(context.Background(), "P401,P402 CA E1")
	it.Execute(context.Background(), "P404 CU")

	wantAssigns := []crewCall{{"P401", "E1"}, {"P402", "E1"}}
	if len(backend.crewAssigns) != 2 || backend.crewAssigns[0] != wantAssigns[0] || backend.crewAssigns[1] != wantAssigns[1] {
		t.Errorf("crewAssigns = %v, want %v", backend.crewAssigns, wantAssigns)
	}
	if len(backend.crewRemoves) != 1 || backend.crewRemoves[0] != (crewCall{"P404", "E1"}) {
		t.Errorf("crewRemoves = %v, want P404 off E1 via unit context", backend.crewRemoves)
	}
}

func TestOpenIncidentByReference(t *testing.T) {
	it, _, notifier := newTestInterpreter(t)

	it.Execute(context.Background(), "I #812")

	if len(notifier.openIncidents) != 1 || notifier.openIncidents[0] != "812" {
		t.Errorf("openIncidents = %v, want [812]", notifier.openIncidents)
	}
}

func TestReloadAliases(t *testing.T) {
	it, backend, notifier := newTestInterpreter(t)
	backend.aliasMap = map[string]string{"eng1": "E1", "med1": "M1"}

	it.Execute(context.Background(), "RA")

	if it.Aliases().Len() != 2 {
		t.Fatalf("alias count = %d, want 2", it.Aliases().Len())
	}
	if len(notifier.toasts) == 0 {
		t.Error("reload should confirm to the operator")
	}

	backend.aliasErr = fmt.Errorf("boom")
	it.Execute(context.Background(), "RA")
	if it.Aliases().Len() != 2 {
		t.Error("a failed fetch must leave the previous table in place")
	}
}

func TestNLPFallbackSharesHandlers(t *testing.T) {
	it, backend, _ := newTestInterpreter(t)
	it.Aliases().Replace(map[string]string{"eng1": "E1"})

	it.Execute(context.Background(), "send eng1 and M1 to incident 3")

	if len(backend.dispatches) != 1 {
		t.Fatalf("expected one dispatch, got %d", len(backend.dispatches))
	}
	req := backend.dispatches[0]
	if len(req.Units) != 2 || req.Units[0] != "E1" || req.Units[1] != "M1" {
		t.Errorf("units = %v, want aliased [E1 M1]", req.Units)
	}
	if req.IncidentRef != "3" {
		t.Errorf("incidentRef = %q, want 3", req.IncidentRef)
	}
}

func TestNLPDisabledFallsThrough(t *testing.T) {
	it, backend, notifier := newTestInterpreter(t)
	it.NLPEnabled = false

	it.Execute(context.Background(), "move E1 to 5")

	if len(backend.coverStarts) != 0 {
		t.Errorf("coverage calls = %v, want none with NLP off", backend.coverStarts)
	}
	if len(notifier.errorToasts()) == 0 {
		t.Error("the tokenizer route should report the unparseable line")
	}
}

func TestMoveToCoverage(t *testing.T) {
	it, backend, _ := newTestInterpreter(t)

	it.Execute(context.Background(), "move E1 to 5")

	if len(backend.coverStarts) != 1 || backend.coverStarts[0] != (crewCall{"E1", "5"}) {
		t.Errorf("coverStarts = %v, want E1 covering station 5", backend.coverStarts)
	}
}

func TestHelpCommand(t *testing.T) {
	it, _, notifier := newTestInterpreter(t)

	it.Execute(context.Background(), "?")

	if notifier.helpShown != 1 {
		t.Errorf("helpShown = %d, want 1", notifier.helpShown)
	}
}
