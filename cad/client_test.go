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

package cad

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/radioroom/cadline/interp"
)

func TestPostDispatchWire(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody interp.DispatchRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.Method + " " + r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "secret", 0, nil)
	err := c.PostDispatch(context.Background(), interp.DispatchRequest{
		Units:      []string{"E1", "M1"},
		IncidentID: "7",
		Mode:       interp.ModeDispatchEnroute,
	})
	if err != nil {
		t.Fatal(err)
	}

	if gotPath != "POST /api/dispatch" {
		t.Errorf("path = %q", gotPath)
	}
	if gotAuth != "Bearer secret" {
		t.Errorf("auth = %q", gotAuth)
	}
	if len(gotBody.Units) != 2 || gotBody.IncidentID != "7" || gotBody.Mode != interp.ModeDispatchEnroute {
		t.Errorf("body = %+v", gotBody)
	}
}

func TestUnitStatusInvalidatesContext(t *testing.T) {
	contextHits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/context"):
			contextHits++
			json.NewEncoder(w).Encode(interp.UnitContext{ActiveIncidentID: "42"})
		default:
			w.WriteHeader(http.StatusOK)
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", 0, nil)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		uc, err := c.GetUnitContext(ctx, "E1")
		if err != nil {
			t.Fatal(err)
		}
		if uc.ActiveIncidentID != "42" {
			t.Fatalf("ActiveIncidentID = %q", uc.ActiveIncidentID)
		}
	}
	if contextHits != 1 {
		t.Errorf("context fetched %d times, want 1 (cached)", contextHits)
	}

	if err := c.PostUnitStatus(ctx, "E1", "OS"); err != nil {
		t.Fatal(err)
	}
	if _, err := c.GetUnitContext(ctx, "E1"); err != nil {
		t.Fatal(err)
	}
	if contextHits != 2 {
		t.Errorf("context fetched %d times after a status post, want 2", contextHits)
	}
}

func TestServerErrorSurfaced(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(map[string]string{"error": "unit Z9 not found"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", 0, nil)
	err := c.PostUnitAvailable(context.Background(), "Z9")
	if err == nil {
		t.Fatal("expected an error from a 422 response")
	}
	if !strings.Contains(err.Error(), "unit Z9 not found") {
		t.Errorf("error = %q, want the server's message in it", err)
	}
}

func TestServerErrorWithoutBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", 0, nil)
	err := c.PostUnitOOS(context.Background(), "E1")
	if err == nil || !strings.Contains(err.Error(), "502") {
		t.Errorf("error = %v, want the status line", err)
	}
}

func TestCoverageStartOmitsEmptyStation(t *testing.T) {
	var gotBody map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", 0, nil)
	if err := c.PostCoverageStart(context.Background(), "E1", ""); err != nil {
		t.Fatal(err)
	}
	if _, ok := gotBody["stationId"]; ok {
		t.Error("empty station should not be sent")
	}
	if gotBody["unitId"] != "E1" {
		t.Errorf("unitId = %q", gotBody["unitId"])
	}
}

func TestFetchAliasMap(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/aliases" {
			t.Errorf("path = %q", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]string{"eng1": "E1"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", 0, nil)
	m, err := c.FetchAliasMap(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if m["eng1"] != "E1" {
		t.Errorf("alias map = %v", m)
	}
}

func TestGetOpenIncidents(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]Incident{
			{ID: "7", Number: "2025-00314", Type: "STRUCTURE FIRE", Address: "401 MAIN ST"},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", 0, nil)
	got, err := c.GetOpenIncidents(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Number != "2025-00314" {
		t.Errorf("incidents = %+v", got)
	}
}
