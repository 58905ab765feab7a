// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package input

import (
	"time"

	"github.com/relabs-tech/joypad/internal/diag"
)

// Guard is the minimum spacing between two accepted edges on one button.
// An edge is accepted only when strictly more than Guard has elapsed.
const Guard = 50 * time.Millisecond

// IndicatorOn is the duty-cycle level of the indicator LED when lit.
const IndicatorOn = 2047

// Indicator drives the LED bound to the joystick button.
type Indicator interface {
	Set(level uint16) error
}

// Debouncer accepts or rejects button edges and fires the bound action of
// every accepted edge. It is not safe for concurrent use; one goroutine
// (the control loop) owns it.
type Debouncer struct {
	state     *State
	indicator Indicator
	report    diag.Reporter
	last      map[Button]time.Time
}

// NewDebouncer binds the debouncer to the shared state. indicator and report
// may be nil.
func NewDebouncer(state *State, indicator Indicator, report diag.Reporter) *Debouncer {
	if report == nil {
		report = diag.Discard
	}
	return &Debouncer{
		state:     state,
		indicator: indicator,
		report:    report,
		last:      make(map[Button]time.Time),
	}
}

// Handle processes one edge and reports whether it was accepted. Rejected
// edges leave no trace: they are not queued and not retried.
func (d *Debouncer) Handle(e Edge) bool {
	if last, ok := d.last[e.Button]; ok && e.At.Sub(last) <= Guard {
		return false
	}

	switch e.Button {
	case ButtonA:
		on := d.state.TogglePWM()
		d.report.Report(diag.PWMEvent(e.At, on))
	case ButtonJoystick:
		lit := d.state.ToggleIndicator()
		d.driveIndicator(lit)
		border := d.state.ToggleBorder()
		d.report.Report(diag.BorderEvent(e.At, int(border), lit))
	default:
		// Only edge-bound buttons carry actions; the reset button is polled.
		return false
	}

	d.last[e.Button] = e.At
	return true
}

// LastAccepted returns the time of the last accepted edge on b.
func (d *Debouncer) LastAccepted(b Button) (time.Time, bool) {
	t, ok := d.last[b]
	return t, ok
}

func (d *Debouncer) driveIndicator(lit bool) {
	if d.indicator == nil {
		return
	}
	var level uint16
	if lit {
		level = IndicatorOn
	}
	if err := d.indicator.Set(level); err != nil {
		d.report.Report(diag.SystemEvent(time.Now(), "indicator set failed: "+err.Error()))
	}
}
