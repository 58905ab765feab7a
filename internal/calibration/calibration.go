// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package calibration converts raw 12-bit joystick samples into signed,
// deadzone-filtered displacements.
//
// The constants below were measured on the factory board and are fixed for
// the lifetime of a build.
package calibration

import (
	"fmt"

	"github.com/relabs-tech/joypad/internal/mathx"
)

const (
	// ADCMax is the largest value of the 12-bit ADC domain.
	ADCMax = 4095

	// CenterX and CenterY are the rest-position readings of each axis.
	CenterX = 1929
	CenterY = 2019

	// Deadzone is the band around the center that is ignored.
	Deadzone = 100
)

// Calibration groups the per-axis rest readings and the shared deadzone.
type Calibration struct {
	CenterX  int
	CenterY  int
	Deadzone int
}

// Factory is the calibration of the shipped device.
var Factory = Calibration{
	CenterX:  CenterX,
	CenterY:  CenterY,
	Deadzone: Deadzone,
}

// Displacement returns raw - center as a signed value.
func Displacement(raw uint16, center int) int {
	return int(raw) - center
}

// IsSignificant reports whether a displacement leaves the deadzone band.
// The comparison is strict: a displacement equal to the deadzone is noise.
func IsSignificant(displacement, deadzone int) bool {
	return mathx.Abs(displacement) > deadzone
}

// Axis returns the displacement of raw against center and whether it is significant.
func (c Calibration) Axis(raw uint16, center int) (int, bool) {
	d := Displacement(raw, center)
	return d, IsSignificant(d, c.Deadzone)
}

// X is Axis for the horizontal joystick channel.
func (c Calibration) X(raw uint16) (int, bool) { return c.Axis(raw, c.CenterX) }

// Y is Axis for the vertical joystick channel.
func (c Calibration) Y(raw uint16) (int, bool) { return c.Axis(raw, c.CenterY) }

// Validate checks the structural invariants: centers inside the ADC domain and
// a non-negative deadzone smaller than the ADC range.
func (c Calibration) Validate() error {
	if !mathx.Between(c.CenterX, 0, ADCMax) {
		return fmt.Errorf("calibration: center X %d outside [0, %d]", c.CenterX, ADCMax)
	}
	if !mathx.Between(c.CenterY, 0, ADCMax) {
		return fmt.Errorf("calibration: center Y %d outside [0, %d]", c.CenterY, ADCMax)
	}
	if c.Deadzone < 0 || c.Deadzone >= ADCMax {
		return fmt.Errorf("calibration: deadzone %d must be in [0, %d)", c.Deadzone, ADCMax)
	}
	return nil
}
