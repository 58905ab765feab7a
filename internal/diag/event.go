// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package diag carries the line-oriented status messages of the device and
// fans them out to the configured sinks (log, serial line, MQTT).
package diag

import (
	"fmt"
	"time"
)

// Kind classifies a status event. It is also the last MQTT topic level.
type Kind string

const (
	KindButton   Kind = "button"
	KindPWM      Kind = "pwm"
	KindJoystick Kind = "joystick"
	KindSystem   Kind = "system"
)

// Event is one status message. Only the fields relevant to Kind are set.
type Event struct {
	Kind Kind      `json:"kind"`
	Time time.Time `json:"time"`

	// button
	Border    int  `json:"border,omitempty"`
	Indicator bool `json:"indicator,omitempty"`

	// pwm
	PWMEnabled bool `json:"pwm_enabled,omitempty"`

	// joystick
	RawX uint16 `json:"raw_x,omitempty"`
	RawY uint16 `json:"raw_y,omitempty"`
	Top  int    `json:"top,omitempty"`
	Left int    `json:"left,omitempty"`
	Red  uint16 `json:"red,omitempty"`
	Blue uint16 `json:"blue,omitempty"`

	// system
	Message string `json:"message,omitempty"`
}

func BorderEvent(t time.Time, border int, indicator bool) Event {
	return Event{Kind: KindButton, Time: t, Border: border, Indicator: indicator}
}

func PWMEvent(t time.Time, enabled bool) Event {
	return Event{Kind: KindPWM, Time: t, PWMEnabled: enabled}
}

// JoystickEvent is the periodic sample/position report. top and left are
// the swapped (reported) cursor coordinates.
func JoystickEvent(t time.Time, rawX, rawY uint16, top, left int, red, blue uint16) Event {
	return Event{Kind: KindJoystick, Time: t, RawX: rawX, RawY: rawY, Top: top, Left: left, Red: red, Blue: blue}
}

func SystemEvent(t time.Time, msg string) Event {
	return Event{Kind: KindSystem, Time: t, Message: msg}
}

// Retained reports whether the event describes state that a late MQTT
// subscriber should still see.
func (e Event) Retained() bool {
	return e.Kind == KindButton || e.Kind == KindPWM
}

// Line renders the event as a single status line without trailing newline.
func (e Event) Line() string {
	switch e.Kind {
	case KindButton:
		return fmt.Sprintf("[BUTTON] border: %d indicator: %s", e.Border, onOff(e.Indicator))
	case KindPWM:
		state := "disabled"
		if e.PWMEnabled {
			state = "enabled"
		}
		return fmt.Sprintf("[PWM] state: %s", state)
	case KindJoystick:
		return fmt.Sprintf("[JOYSTICK] X: %4d | Y: %4d | Pos: (%3d, %3d)", e.RawX, e.RawY, e.Top, e.Left)
	case KindSystem:
		return fmt.Sprintf("[SYSTEM] %s", e.Message)
	default:
		return fmt.Sprintf("[%s] %+v", e.Kind, e)
	}
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
