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

import "context"

// DispatchMode selects how dispatched units start their response.
type DispatchMode string

const (
	ModeDispatch        DispatchMode = "D"  // dispatched, awaiting enroute
	ModeDispatchEnroute DispatchMode = "DE" // dispatched and immediately enroute
)

// DispatchRequest is the wire shape of one dispatch call. Exactly one of
// IncidentRef (operator-typed reference) or IncidentID (picker choice) is
// set.
type DispatchRequest struct {
	Units       []string     `json:"units"`
	IncidentRef string       `json:"incidentRef,omitempty"`
	IncidentID  string       `json:"incidentId,omitempty"`
	Mode        DispatchMode `json:"mode"`
}

// RemarkRequest targets either a unit or an incident, never both.
type RemarkRequest struct {
	UnitID     string `json:"unitId,omitempty"`
	IncidentID string `json:"incidentId,omitempty"`
	Text       string `json:"text"`
}

// UnitContext is the backend's view of a unit's current assignments.
type UnitContext struct {
	ActiveIncidentID string `json:"activeIncidentId"`
	CurrentApparatus string `json:"currentApparatus"`
}

// Backend is the outbound surface the interpreter drives. Implementations
// talk to the CAD server; tests substitute fakes. Every call is awaited
// before the next unit's call starts.
type Backend interface {
	PostUnitStatus(ctx context.Context, unitID, status string) error
	PostUnitAvailable(ctx context.Context, unitID string) error
	PostUnitOOS(ctx context.Context, unitID string) error
	PostDispatch(ctx context.Context, req DispatchRequest) error
	PostRemark(ctx context.Context, req RemarkRequest) error
	PostUnitDisposition(ctx context.Context, unitID, code string) error
	PostEventDisposition(ctx context.Context, incidentID, code string) error
	PostCoverageStart(ctx context.Context, unitID, stationID string) error
	PostCoverageEnd(ctx context.Context, unitID string) error
	PostCrewAssign(ctx context.Context, personnelID, apparatusID string) error
	PostCrewUnassign(ctx context.Context, personnelID, apparatusID string) error
	GetUnitContext(ctx context.Context, unitID string) (UnitContext, error)
	FetchAliasMap(ctx context.Context) (map[string]string, error)
}

// Toast severity levels understood by the console.
const (
	ToastInfo    = "info"
	ToastSuccess = "success"
	ToastError   = "error"
)

// Notifier is the inbound surface back to the operator's screen: messages,
// window opens, panel refreshes, and the incident picker prompt.
type Notifier interface {
	Toast(message, kind string)
	OpenIncident(incidentID string)
	OpenUnit(unitID string)
	RefreshPanels()
	PromptIncidentPick(units []string, mode DispatchMode)
	ShowHelp()
}
