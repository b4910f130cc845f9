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
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Event is one server push: a unit changed status, an incident was updated,
// the alias table changed. The console refreshes its panels on any of them.
type Event struct {
	Type       string `json:"type"`
	UnitID     string `json:"unitId,omitempty"`
	IncidentID string `json:"incidentId,omitempty"`
	Message    string `json:"message,omitempty"`
}

// Event types the server currently sends.
const (
	EventUnitStatus      = "unit_status"
	EventIncidentUpdate  = "incident_update"
	EventAliasesChanged  = "aliases_changed"
	EventSystemBroadcast = "broadcast"
)

// EventFeed subscribes to the CAD server's push channel over a WebSocket.
// Run blocks reading events; the caller owns reconnect policy.
type EventFeed struct {
	mu   sync.Mutex
	url  string
	conn *websocket.Conn
	log  *zap.SugaredLogger
}

// NewEventFeed builds a feed for the server behind baseURL. The HTTP scheme
// is rewritten to its WebSocket counterpart.
func NewEventFeed(baseURL string, log *zap.SugaredLogger) *EventFeed {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	wsURL := strings.Replace(baseURL, "http", "ws", 1) + "/api/events"
	return &EventFeed{url: wsURL, log: log}
}

// Connect establishes the WebSocket connection. Calling it while connected
// is a no-op.
func (f *EventFeed) Connect(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.conn != nil {
		return nil
	}

	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}
	conn, _, err := dialer.DialContext(ctx, f.url, nil)
	if err != nil {
		return fmt.Errorf("event feed connect: %w", err)
	}
	f.conn = conn
	f.log.Infow("event feed connected", "url", f.url)
	return nil
}

// Run reads events until the connection drops or the context is cancelled,
// invoking onEvent for each one. It connects first if needed.
func (f *EventFeed) Run(ctx context.Context, onEvent func(Event)) error {
	if err := f.Connect(ctx); err != nil {
		return err
	}
	f.mu.Lock()
	conn := f.conn
	f.mu.Unlock()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		var ev Event
		if err := conn.ReadJSON(&ev); err != nil {
			return fmt.Errorf("event feed read: %w", err)
		}
		if onEvent != nil {
			onEvent(ev)
		}
	}
}

// Close tears down the connection. Safe to call at any time.
func (f *EventFeed) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.conn == nil {
		return nil
	}
	err := f.conn.Close()
	f.conn = nil
	return err
}

// IsConnected reports whether the feed currently holds a live connection.
func (f *EventFeed) IsConnected() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.conn != nil
}
