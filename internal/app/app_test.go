// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/relabs-tech/joypad/internal/config"
	"github.com/relabs-tech/joypad/internal/diag"
	"github.com/relabs-tech/joypad/internal/hw"
	"github.com/relabs-tech/joypad/internal/input"
	"github.com/relabs-tech/joypad/internal/mapping"
	"github.com/relabs-tech/joypad/internal/render"
)

var t0 = time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)

func TestPrintStatus(t *testing.T) {
	payload, _ := json.Marshal(diag.PWMEvent(t0, false))
	var buf bytes.Buffer
	if err := printStatus(&buf, payload); err != nil {
		t.Fatalf("printStatus: %v", err)
	}
	if got := buf.String(); got != "09:30:00.000 [PWM] state: disabled\n" {
		t.Fatalf("got %q", got)
	}
	if err := printStatus(&buf, []byte("{")); err == nil {
		t.Fatal("expected unmarshal error")
	}
}

func TestControllerOnMockBackend(t *testing.T) {
	drawer := hw.NewMockDrawer(mapping.DisplayWidth, mapping.DisplayHeight)
	be := mockBackend(drawer)
	var out bytes.Buffer
	cfg := config.Default()
	cfg.ReportInterval = 1

	c, err := newController(cfg, be, frameReporter(&out, drawer))
	if err != nil {
		t.Fatalf("newController: %v", err)
	}
	if drawer.Draws() != 1 {
		t.Fatalf("splash not drawn, draws = %d", drawer.Draws())
	}

	c.queue.Push(input.Edge{Button: input.ButtonJoystick, At: t0})
	c.loop.HandleEdge(<-c.queue.Events())
	if err := c.loop.Step(t0.Add(20 * time.Millisecond)); err != nil {
		t.Fatalf("Step: %v", err)
	}

	frame := drawer.Frame()
	if !render.Lit(frame, 2, 2) || render.Lit(frame, 3, 3) {
		t.Fatal("triple border missing from flushed frame")
	}
	cur := c.loop.Cursor()
	if !render.Lit(frame, cur.X, cur.Y) {
		t.Fatalf("cursor at %+v not lit", cur)
	}
	if be.green.(*hw.MockPWM).Level() != input.IndicatorOn {
		t.Fatal("indicator LED not driven")
	}
	if !strings.Contains(out.String(), "[BUTTON] border: 2 indicator: on") ||
		!strings.Contains(out.String(), "[JOYSTICK]") {
		t.Fatalf("unexpected console output:\n%s", out.String())
	}
}

func TestStatusHub(t *testing.T) {
	hub := newStatusHub()
	srv := httptest.NewServer(hub.routes())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/status")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("empty status code = %d", resp.StatusCode)
	}

	hub.publish(diag.BorderEvent(t0, 2, true))

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	var first Status
	if err := conn.ReadJSON(&first); err != nil {
		t.Fatalf("read snapshot: %v", err)
	}
	if first.Button == nil || first.Button.Border != 2 {
		t.Fatalf("snapshot = %+v", first)
	}

	hub.publish(diag.JoystickEvent(t0, 100, 200, 29, 59, 0, 0))
	var ev diag.Event
	if err := conn.ReadJSON(&ev); err != nil {
		t.Fatalf("read event: %v", err)
	}
	if ev.Kind != diag.KindJoystick || ev.RawY != 200 {
		t.Fatalf("event = %+v", ev)
	}

	resp, err = http.Get(srv.URL + "/api/status")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var s Status
	if err := json.NewDecoder(resp.Body).Decode(&s); err != nil {
		t.Fatal(err)
	}
	if s.Joystick == nil || s.Button == nil || s.PWM != nil {
		t.Fatalf("status = %+v", s)
	}
}

func TestRunMockButtonsFeedController(t *testing.T) {
	drawer := hw.NewMockDrawer(mapping.DisplayWidth, mapping.DisplayHeight)
	be := mockBackend(drawer)
	c, err := newController(config.Default(), be, diag.Discard)
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hw.MockButtons(ctx, c.queue, []hw.Press{{After: 0, Button: input.ButtonA}})
	select {
	case e := <-c.queue.Events():
		if !c.loop.HandleEdge(e) {
			t.Fatal("first edge rejected")
		}
	case <-time.After(time.Second):
		t.Fatal("no edge")
	}
	if c.state.PWMEnabled() {
		t.Fatal("PWM still enabled")
	}
}
