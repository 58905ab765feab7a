// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package hw

import (
	"fmt"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"

	"github.com/relabs-tech/joypad/internal/mapping"
)

// PWMChannel drives one LED pin with a 12-bit level.
type PWMChannel struct {
	pin  gpio.PinOut
	freq physic.Frequency
}

// NewPWMChannel wraps pin at carrier frequency freq.
func NewPWMChannel(pin gpio.PinOut, freq physic.Frequency) *PWMChannel {
	return &PWMChannel{pin: pin, freq: freq}
}

// Set applies level, which must be in [0, mapping.MaxDuty].
func (p *PWMChannel) Set(level uint16) error {
	if level > mapping.MaxDuty {
		return fmt.Errorf("PWM level %d above %d", level, mapping.MaxDuty)
	}
	if err := p.pin.PWM(Duty(level), p.freq); err != nil {
		return fmt.Errorf("%s: %w", p.pin, err)
	}
	return nil
}

// Halt drives the pin low.
func (p *PWMChannel) Halt() error {
	return p.pin.Out(gpio.Low)
}

// Duty scales a level in [0, mapping.MaxDuty] to a gpio.Duty.
func Duty(level uint16) gpio.Duty {
	return gpio.Duty(int64(level) * int64(gpio.DutyMax) / mapping.MaxDuty)
}
