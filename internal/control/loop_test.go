// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package control

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/relabs-tech/joypad/internal/calibration"
	"github.com/relabs-tech/joypad/internal/diag"
	"github.com/relabs-tech/joypad/internal/input"
	"github.com/relabs-tech/joypad/internal/mapping"
)

var base = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func at(ms int) time.Time { return base.Add(time.Duration(ms) * time.Millisecond) }

type fakeStick struct {
	x, y  uint16
	err   error
	reads int
}

func (s *fakeStick) Read() (uint16, uint16, error) {
	s.reads++
	return s.x, s.y, s.err
}

// fakeTrigger is asserted while on is set, or from its (after+1)th poll
// onwards when after is positive.
type fakeTrigger struct {
	on    atomic.Bool
	after int32
	polls atomic.Int32
}

func (f *fakeTrigger) Asserted() bool {
	n := f.polls.Add(1)
	return f.on.Load() || (f.after > 0 && n > f.after)
}

type fakeResetter struct{ calls int }

func (f *fakeResetter) Reset() { f.calls++ }

type fakeOutput struct{ levels []uint16 }

func (o *fakeOutput) Set(level uint16) error {
	o.levels = append(o.levels, level)
	return nil
}

func (o *fakeOutput) last() uint16 { return o.levels[len(o.levels)-1] }

type countingSurface struct {
	ops     []string
	flushes int
}

func (s *countingSurface) Clear() { s.ops = s.ops[:0]; s.ops = append(s.ops, "clear") }
func (s *countingSurface) Rect(x, y, w, h int) {
	s.ops = append(s.ops, fmt.Sprintf("rect %d %d %d %d", x, y, w, h))
}
func (s *countingSurface) FillRect(x, y, w, h int) {
	s.ops = append(s.ops, fmt.Sprintf("fill %d %d %d %d", x, y, w, h))
}
func (s *countingSurface) Flush() error { s.flushes++; return nil }

type recorder struct{ events []diag.Event }

func (r *recorder) Report(e diag.Event) { r.events = append(r.events, e) }

type rig struct {
	stick   *fakeStick
	trigger *fakeTrigger
	reset   *fakeResetter
	red     *fakeOutput
	blue    *fakeOutput
	surface *countingSurface
	state   *input.State
	queue   *input.Queue
	rec     *recorder
	loop    *Loop
}

func newRig(t *testing.T, reportEvery int) *rig {
	t.Helper()
	r := &rig{
		stick:   &fakeStick{x: calibration.CenterX, y: calibration.CenterY},
		trigger: &fakeTrigger{},
		reset:   &fakeResetter{},
		red:     &fakeOutput{},
		blue:    &fakeOutput{},
		surface: &countingSurface{},
		state:   input.NewState(),
		queue:   input.NewQueue(8),
		rec:     &recorder{},
	}
	loop, err := New(Config{
		Stick:       r.stick,
		Trigger:     r.trigger,
		Reset:       r.reset,
		Red:         r.red,
		Blue:        r.blue,
		Surface:     r.surface,
		State:       r.state,
		Debounce:    input.NewDebouncer(r.state, nil, r.rec),
		Events:      r.queue.Events(),
		Report:      r.rec,
		ReportEvery: reportEvery,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	r.loop = loop
	return r
}

func TestStepCenteredStick(t *testing.T) {
	r := newRig(t, 0)
	if err := r.loop.Step(at(0)); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if r.loop.Cursor() != mapping.Start {
		t.Fatalf("cursor moved: %+v", r.loop.Cursor())
	}
	if r.red.last() != 0 || r.blue.last() != 0 {
		t.Fatalf("LEDs lit at rest: red=%d blue=%d", r.red.last(), r.blue.last())
	}
	if r.surface.flushes != 1 {
		t.Fatalf("flushes = %d, want 1", r.surface.flushes)
	}
	want := []string{"clear", "rect 0 0 128 64", "fill 59 29 8 8"}
	if fmt.Sprint(r.surface.ops) != fmt.Sprint(want) {
		t.Fatalf("frame ops = %v, want %v", r.surface.ops, want)
	}
}

func TestStepDrivesIntensitiesWhenEnabled(t *testing.T) {
	r := newRig(t, 0)
	r.stick.x, r.stick.y = 3000, 3000
	if err := r.loop.Step(at(0)); err != nil {
		t.Fatalf("Step: %v", err)
	}
	last := r.loop.Last()
	if last.Levels.Red == 0 || last.Levels.Blue == 0 {
		t.Fatalf("expected non-zero levels, got %+v", last.Levels)
	}
	if r.red.last() != last.Levels.Red || r.blue.last() != last.Levels.Blue {
		t.Fatalf("outputs %d/%d do not match levels %+v", r.red.last(), r.blue.last(), last.Levels)
	}
}

func TestStepPushesZeroWhenPWMDisabled(t *testing.T) {
	r := newRig(t, 0)
	r.state.TogglePWM()
	r.stick.x, r.stick.y = 3000, 3000
	if err := r.loop.Step(at(0)); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if r.red.last() != 0 || r.blue.last() != 0 {
		t.Fatalf("disabled PWM still drove LEDs: red=%d blue=%d", r.red.last(), r.blue.last())
	}
	if r.loop.Last().Levels.Red == 0 {
		t.Fatal("levels should still be computed while disabled")
	}
}

func TestStepMovesAndReportsSwappedPosition(t *testing.T) {
	r := newRig(t, 1)
	r.stick.y = calibration.ADCMax // horizontal +5
	if err := r.loop.Step(at(0)); err != nil {
		t.Fatalf("Step: %v", err)
	}
	cur := r.loop.Cursor()
	if cur.X != mapping.Start.X+5 || cur.Y != mapping.Start.Y {
		t.Fatalf("cursor = %+v", cur)
	}
	if len(r.rec.events) != 1 || r.rec.events[0].Kind != diag.KindJoystick {
		t.Fatalf("expected one joystick report, got %+v", r.rec.events)
	}
	ev := r.rec.events[0]
	if ev.Top != cur.Y || ev.Left != cur.X || ev.RawY != calibration.ADCMax {
		t.Fatalf("report %+v does not match cursor %+v", ev, cur)
	}
}

func TestReportEvery(t *testing.T) {
	r := newRig(t, 3)
	for i := 0; i < 7; i++ {
		if err := r.loop.Step(at(i * 20)); err != nil {
			t.Fatalf("Step: %v", err)
		}
	}
	// Ticks 0, 3 and 6.
	if len(r.rec.events) != 3 {
		t.Fatalf("got %d reports, want 3", len(r.rec.events))
	}
}

func TestStepSkipsOnJoystickError(t *testing.T) {
	r := newRig(t, 1)
	r.stick.err = errors.New("adc timeout")
	if err := r.loop.Step(at(0)); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if r.surface.flushes != 0 || len(r.red.levels) != 0 || r.loop.Ticks() != 0 {
		t.Fatal("failed sample must not render or actuate")
	}
}

func TestResetStopsTicks(t *testing.T) {
	r := newRig(t, 0)
	if err := r.loop.Step(at(0)); err != nil {
		t.Fatalf("Step: %v", err)
	}
	r.trigger.on.Store(true)

	if err := r.loop.Step(at(20)); !errors.Is(err, ErrResetReturned) {
		t.Fatalf("expected ErrResetReturned, got %v", err)
	}
	if r.reset.calls != 1 {
		t.Fatalf("reset called %d times", r.reset.calls)
	}
	reads, flushes := r.stick.reads, r.surface.flushes

	// Even if the trigger is released, nothing runs any more.
	r.trigger.on.Store(false)
	for i := 0; i < 3; i++ {
		if err := r.loop.Step(at(40 + i*20)); !errors.Is(err, ErrResetReturned) {
			t.Fatalf("step after reset returned %v", err)
		}
	}
	if r.stick.reads != reads || r.surface.flushes != flushes || r.reset.calls != 1 || r.loop.Ticks() != 1 {
		t.Fatal("loop kept running after reset")
	}
	last := r.rec.events[len(r.rec.events)-1]
	if last.Kind != diag.KindSystem {
		t.Fatalf("expected a system report before reset, got %+v", last)
	}
}

func TestRunAppliesEdgesAndStopsOnReset(t *testing.T) {
	r := newRig(t, 0)
	r.trigger.after = 3
	tick := make(ChanTicker)
	done := make(chan error, 1)
	go func() { done <- r.loop.Run(context.Background(), tick) }()

	tick <- at(0)
	r.queue.Push(input.Edge{Button: input.ButtonJoystick, At: at(5)})
	r.queue.Push(input.Edge{Button: input.ButtonJoystick, At: at(15)}) // within guard
	r.queue.Push(input.Edge{Button: input.ButtonA, At: at(16)})
	tick <- at(20)
	tick <- at(40)
	tick <- at(60) // fourth poll asserts the reset

	select {
	case err := <-done:
		if !errors.Is(err, ErrResetReturned) {
			t.Fatalf("Run returned %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after reset")
	}

	if r.loop.Ticks() != 3 {
		t.Fatalf("ticks = %d, want 3", r.loop.Ticks())
	}
	snap := r.state.Read()
	if snap.Border != input.BorderTriple || !snap.Indicator || snap.PWMEnabled {
		t.Fatalf("unexpected state after edges: %+v", snap)
	}
	if r.reset.calls != 1 {
		t.Fatalf("reset calls = %d", r.reset.calls)
	}
}

func TestRunEdgeQueuedDuringTickAppliesBeforeNextSample(t *testing.T) {
	r := newRig(t, 0)
	tick := make(ChanTicker)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.loop.Run(ctx, tick) }()

	tick <- at(0)
	r.queue.Push(input.Edge{Button: input.ButtonJoystick, At: at(10)})
	tick <- at(20)
	tick <- at(40) // ensures the previous tick finished
	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Fatalf("Run returned %v", err)
	}

	if r.loop.Last().State.Border != input.BorderTriple {
		t.Fatalf("edge not visible to the next tick: %+v", r.loop.Last().State)
	}
	if r.surface.ops[1] != "rect 0 0 128 64" || r.surface.ops[3] != "rect 2 2 124 60" {
		t.Fatalf("triple border not drawn: %v", r.surface.ops)
	}
}

func TestNewValidates(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Fatal("expected error for empty config")
	}
	r := newRig(t, 0)
	cfg := r.loop.cfg
	cfg.Surface = nil
	if _, err := New(cfg); err == nil {
		t.Fatal("expected error for missing surface")
	}
}
