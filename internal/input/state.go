// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package input turns raw button edges into debounced logical toggles and
// owns the logical input state read by the control loop.
package input

import (
	"fmt"
	"sync/atomic"
)

// BorderStyle selects the frame border drawn around the display.
type BorderStyle int32

const (
	BorderSingle BorderStyle = 1 // one full-bleed outline
	BorderTriple BorderStyle = 2 // three concentric outlines
)

func (b BorderStyle) String() string {
	switch b {
	case BorderSingle:
		return "single"
	case BorderTriple:
		return "triple"
	default:
		return fmt.Sprintf("BorderStyle(%d)", int32(b))
	}
}

// State is the process-wide logical input state. Every field is an atomic
// cell; writers only go through the Toggle methods.
type State struct {
	pwmEnabled atomic.Bool
	border     atomic.Int32
	indicator  atomic.Bool
}

// Snapshot is a plain copy of State.
type Snapshot struct {
	PWMEnabled bool        `json:"pwm_enabled"`
	Border     BorderStyle `json:"border"`
	Indicator  bool        `json:"indicator"`
}

// NewState returns the boot state: PWM enabled, single border, indicator off.
func NewState() *State {
	s := &State{}
	s.pwmEnabled.Store(true)
	s.border.Store(int32(BorderSingle))
	return s
}

// TogglePWM flips the PWM enable flag and returns the new value.
func (s *State) TogglePWM() bool {
	for {
		old := s.pwmEnabled.Load()
		if s.pwmEnabled.CompareAndSwap(old, !old) {
			return !old
		}
	}
}

// ToggleBorder swaps between the two border styles and returns the new one.
func (s *State) ToggleBorder() BorderStyle {
	for {
		old := BorderStyle(s.border.Load())
		next := BorderSingle
		if old == BorderSingle {
			next = BorderTriple
		}
		if s.border.CompareAndSwap(int32(old), int32(next)) {
			return next
		}
	}
}

// ToggleIndicator flips the indicator LED flag and returns the new value.
func (s *State) ToggleIndicator() bool {
	for {
		old := s.indicator.Load()
		if s.indicator.CompareAndSwap(old, !old) {
			return !old
		}
	}
}

func (s *State) PWMEnabled() bool    { return s.pwmEnabled.Load() }
func (s *State) Border() BorderStyle { return BorderStyle(s.border.Load()) }
func (s *State) IndicatorOn() bool   { return s.indicator.Load() }

// Read returns a copy of all flags. Each field is read atomically; the set
// as a whole is not a transaction.
func (s *State) Read() Snapshot {
	return Snapshot{
		PWMEnabled: s.PWMEnabled(),
		Border:     s.Border(),
		Indicator:  s.IndicatorOn(),
	}
}
