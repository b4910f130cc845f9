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

// Package cad is the HTTP client for the CAD server. It implements the
// interpreter's backend surface plus the read endpoints the console panels
// need.
package cad

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"github.com/radioroom/cadline/interp"
)

const (
	// Unit context changes with every status post, so cache entries are
	// short-lived. The console re-reads context on most remark and open
	// commands; this keeps a burst of multi-unit commands to one fetch
	// per unit.
	unitContextTTL     = 15 * time.Second
	unitContextCleanup = time.Minute

	defaultTimeout = 10 * time.Second
)

// Incident is one row of the open-incident board, as served by the CAD
// server. The console's picker shows Number and Address.
type Incident struct {
	ID       string    `json:"id"`
	Number   string    `json:"number"`
	Type     string    `json:"type"`
	Address  string    `json:"address"`
	OpenedAt time.Time `json:"openedAt"`
}

// Client talks JSON over HTTP to the CAD server. A zero api key disables
// the Authorization header for servers on trusted networks.
type Client struct {
	baseURL  string
	apiKey   string
	hc       *http.Client
	ctxCache *cache.Cache
	log      *zap.SugaredLogger
}

// NewClient builds a client for the given server. A zero timeout falls back
// to the default.
func NewClient(baseURL, apiKey string, timeout time.Duration, log *zap.SugaredLogger) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Client{
		baseURL:  baseURL,
		apiKey:   apiKey,
		hc:       &http.Client{Timeout: timeout},
		ctxCache: cache.New(unitContextTTL, unitContextCleanup),
		log:      log,
	}
}

// BaseURL returns the configured server address.
func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) PostUnitStatus(ctx context.Context, unitID, status string) error {
	err := c.do(ctx, http.MethodPost, "/api/units/"+url.PathEscape(unitID)+"/status",
		map[string]string{"status": status}, nil)
	if err == nil {
		c.ctxCache.Delete(unitID)
	}
	return err
}

func (c *Client) PostUnitAvailable(ctx context.Context, unitID string) error {
	err := c.do(ctx, http.MethodPost, "/api/units/"+url.PathEscape(unitID)+"/available", nil, nil)
	if err == nil {
		c.ctxCache.Delete(unitID)
	}
	return err
}

func (c *Client) PostUnitOOS(ctx context.Context, unitID string) error {
	err := c.do(ctx, http.MethodPost, "/api/units/"+url.PathEscape(unitID)+"/oos", nil, nil)
	if err == nil {
		c.ctxCache.Delete(unitID)
	}
	return err
}

func (c *Client) PostDispatch(ctx context.Context, req interp.DispatchRequest) error {
	err := c.do(ctx, http.MethodPost, "/api/dispatch", req, nil)
	if err == nil {
		for _, u := range req.Units {
			c.ctxCache.Delete(u)
		}
	}
	return err
}

func (c *Client) PostRemark(ctx context.Context, req interp.RemarkRequest) error {
	return c.do(ctx, http.MethodPost, "/api/remarks", req, nil)
}

func (c *Client) PostUnitDisposition(ctx context.Context, unitID, code string) error {
	return c.do(ctx, http.MethodPost, "/api/units/"+url.PathEscape(unitID)+"/disposition",
		map[string]string{"code": code}, nil)
}

func (c *Client) PostEventDisposition(ctx context.Context, incidentID, code string) error {
	return c.do(ctx, http.MethodPost, "/api/incidents/"+url.PathEscape(incidentID)+"/disposition",
		map[string]string{"code": code}, nil)
}

func (c *Client) PostCoverageStart(ctx context.Context, unitID, stationID string) error {
	body := map[string]string{"unitId": unitID}
	if stationID != "" {
		body["stationId"] = stationID
	}
	return c.do(ctx, http.MethodPost, "/api/coverage/start", body, nil)
}

func (c *Client) PostCoverageEnd(ctx context.Context, unitID string) error {
	return c.do(ctx, http.MethodPost, "/api/coverage/end",
		map[string]string{"unitId": unitID}, nil)
}

func (c *Client) PostCrewAssign(ctx context.Context, personnelID, apparatusID string) error {
	return c.do(ctx, http.MethodPost, "/api/crew/assign",
		map[string]string{"personnelId": personnelID, "apparatusId": apparatusID}, nil)
}

func (c *Client) PostCrewUnassign(ctx context.Context, personnelID, apparatusID string) error {
	return c.do(ctx, http.MethodPost, "/api/crew/unassign",
		map[string]string{"personnelId": personnelID, "apparatusId": apparatusID}, nil)
}

// GetUnitContext serves from the short-lived cache when it can, so a
// multi-unit remark does not hammer the server once per unit per keystroke.
func (c *Client) GetUnitContext(ctx context.Context, unitID string) (interp.UnitContext, error) {
	if v, ok := c.ctxCache.Get(unitID); ok {
		return v.(interp.UnitContext), nil
	}
	var uc interp.UnitContext
	err := c.do(ctx, http.MethodGet, "/api/units/"+url.PathEscape(unitID)+"/context", nil, &uc)
	if err != nil {
		return interp.UnitContext{}, err
	}
	c.ctxCache.Set(unitID, uc, unitContextTTL)
	return uc, nil
}

func (c *Client) FetchAliasMap(ctx context.Context) (map[string]string, error) {
	var m map[string]string
	if err := c.do(ctx, http.MethodGet, "/api/aliases", nil, &m); err != nil {
		return nil, err
	}
	return m, nil
}

// GetOpenIncidents returns the open-incident board for the picker overlay.
func (c *Client) GetOpenIncidents(ctx context.Context) ([]Incident, error) {
	var out []Incident
	if err := c.do(ctx, http.MethodGet, "/api/incidents/open", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// do runs one JSON round trip. A non-2xx response becomes an error carrying
// the server's message when it sent one.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		rd = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%s %s: %s", method, path, serverError(resp))
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

// serverError extracts the error message the server embeds in failure
// bodies, falling back to the HTTP status line.
func serverError(resp *http.Response) string {
	var payload struct {
		Error string `json:"error"`
	}
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err == nil && json.Unmarshal(raw, &payload) == nil && payload.Error != "" {
		return payload.Error
	}
	return resp.Status
}
