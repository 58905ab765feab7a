// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package control runs the fixed-period sampling, mapping, rendering and
// actuation loop.
package control

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/relabs-tech/joypad/internal/calibration"
	"github.com/relabs-tech/joypad/internal/diag"
	"github.com/relabs-tech/joypad/internal/input"
	"github.com/relabs-tech/joypad/internal/mapping"
	"github.com/relabs-tech/joypad/internal/render"
)

// Period is the target tick period. It is a soft deadline.
const Period = 20 * time.Millisecond

// ErrResetReturned is returned once the reset action has been invoked. A real
// reset never returns, so seeing this error outside tests is a bug in the
// Resetter.
var ErrResetReturned = errors.New("control: reset action returned")

// Joystick samples both analog axes, X first, in the 12-bit ADC domain.
type Joystick interface {
	Read() (x, y uint16, err error)
}

// ResetTrigger reports the level of the reset button.
type ResetTrigger interface {
	Asserted() bool
}

// Resetter hands the device over to the reprogramming facility. Reset must
// not return.
type Resetter interface {
	Reset()
}

// Output is a PWM channel taking a duty-cycle level in [0, mapping.MaxDuty].
type Output interface {
	Set(level uint16) error
}

// Config wires a Loop to its collaborators. Report and Events may be nil.
type Config struct {
	Stick   Joystick
	Trigger ResetTrigger
	Reset   Resetter
	Red     Output
	Blue    Output
	Surface render.Surface

	State    *input.State
	Debounce *input.Debouncer
	Events   <-chan input.Edge

	Report diag.Reporter
	// ReportEvery is the number of ticks between joystick reports; 0 disables them.
	ReportEvery int

	Calibration calibration.Calibration
	Bounds      mapping.Bounds
}

// Tick is what one Step observed and produced.
type Tick struct {
	At      time.Time
	RawX    uint16
	RawY    uint16
	Cursor  mapping.Cursor
	Levels  mapping.Levels // computed from the joystick
	Applied mapping.Levels // pushed to the outputs
	State   input.Snapshot
}

// Loop owns the cursor position and drives one tick at a time. All methods
// must be called from a single goroutine.
type Loop struct {
	cfg        Config
	motion     *mapping.Motion
	intensity  *mapping.Intensity
	compositor *render.Compositor

	cursor mapping.Cursor
	ticks  uint64
	last   Tick
	reset  bool
}

// New validates cfg and returns a loop with the cursor at mapping.Start.
func New(cfg Config) (*Loop, error) {
	switch {
	case cfg.Stick == nil:
		return nil, errors.New("control: joystick is required")
	case cfg.Trigger == nil || cfg.Reset == nil:
		return nil, errors.New("control: reset trigger and resetter are required")
	case cfg.Red == nil || cfg.Blue == nil:
		return nil, errors.New("control: red and blue outputs are required")
	case cfg.Surface == nil:
		return nil, errors.New("control: surface is required")
	case cfg.State == nil:
		return nil, errors.New("control: input state is required")
	}
	if cfg.Report == nil {
		cfg.Report = diag.Discard
	}
	if cfg.Bounds == (mapping.Bounds{}) {
		cfg.Bounds = mapping.DefaultBounds
	}
	if cfg.Calibration == (calibration.Calibration{}) {
		cfg.Calibration = calibration.Factory
	}
	if cfg.Debounce == nil {
		cfg.Debounce = input.NewDebouncer(cfg.State, nil, cfg.Report)
	}

	motion, err := mapping.NewMotion(cfg.Calibration, cfg.Bounds)
	if err != nil {
		return nil, fmt.Errorf("control: %w", err)
	}
	intensity, err := mapping.NewIntensity(cfg.Calibration)
	if err != nil {
		return nil, fmt.Errorf("control: %w", err)
	}

	return &Loop{
		cfg:        cfg,
		motion:     motion,
		intensity:  intensity,
		compositor: render.NewCompositor(cfg.Bounds),
		cursor:     mapping.Start,
	}, nil
}

// Cursor returns the current cursor position.
func (l *Loop) Cursor() mapping.Cursor { return l.cursor }

// Ticks returns the number of completed ticks.
func (l *Loop) Ticks() uint64 { return l.ticks }

// Last returns the most recent completed tick.
func (l *Loop) Last() Tick { return l.last }

// Step runs one tick at now. After the reset action has been invoked every
// call returns ErrResetReturned and does nothing else.
func (l *Loop) Step(now time.Time) error {
	if l.reset {
		return ErrResetReturned
	}

	if l.cfg.Trigger.Asserted() {
		l.reset = true
		l.cfg.Report.Report(diag.SystemEvent(now, "entering reprogramming mode"))
		l.cfg.Reset.Reset()
		return ErrResetReturned
	}

	x, y, err := l.cfg.Stick.Read()
	if err != nil {
		log.Printf("controller: joystick read error: %v", err)
		return nil
	}

	l.cursor = l.motion.Next(l.cursor, x, y)
	levels := l.intensity.Map(x, y)
	snap := l.cfg.State.Read()
	placement := l.cursor.Placement()

	if err := l.compositor.Compose(l.cfg.Surface, snap.Border, placement); err != nil {
		log.Printf("controller: display error: %v", err)
	}

	if l.cfg.ReportEvery > 0 && l.ticks%uint64(l.cfg.ReportEvery) == 0 {
		l.cfg.Report.Report(diag.JoystickEvent(now, x, y, placement.Top, placement.Left, levels.Red, levels.Blue))
	}

	applied := mapping.Levels{}
	if snap.PWMEnabled {
		applied = levels
	}
	l.drive(applied)

	l.ticks++
	l.last = Tick{At: now, RawX: x, RawY: y, Cursor: l.cursor, Levels: levels, Applied: applied, State: snap}
	return nil
}

func (l *Loop) drive(lv mapping.Levels) {
	if err := l.cfg.Red.Set(lv.Red); err != nil {
		log.Printf("controller: red PWM error: %v", err)
	}
	if err := l.cfg.Blue.Set(lv.Blue); err != nil {
		log.Printf("controller: blue PWM error: %v", err)
	}
}

// HandleEdge feeds one button edge to the debouncer.
func (l *Loop) HandleEdge(e input.Edge) bool {
	return l.cfg.Debounce.Handle(e)
}

// drain applies every edge already waiting in the queue.
func (l *Loop) drain() {
	for {
		select {
		case e := <-l.cfg.Events:
			l.HandleEdge(e)
		default:
			return
		}
	}
}

// Run steps the loop on every tick of t and applies button edges as they
// arrive, both from this goroutine. It returns when ctx is done or after the
// reset action.
func (l *Loop) Run(ctx context.Context, t Ticker) error {
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case e := <-l.cfg.Events:
			l.HandleEdge(e)
		case now := <-t.C():
			l.drain()
			if err := l.Step(now); err != nil {
				return err
			}
		}
	}
}
