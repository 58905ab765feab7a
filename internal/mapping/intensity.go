// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package mapping

import (
	"errors"
	"fmt"

	"github.com/relabs-tech/joypad/internal/calibration"
	"github.com/relabs-tech/joypad/internal/mathx"
)

// MaxDuty is the PWM wrap value; levels live in [0, MaxDuty].
const MaxDuty = 4095

// ErrLevelOutOfRange marks a computed level outside [0, MaxDuty]. It means
// the calibration constants do not match the ADC range of the build.
var ErrLevelOutOfRange = errors.New("mapping: intensity level out of range")

// Levels is one tick's duty-cycle pair.
type Levels struct {
	Red  uint16 `json:"red"`
	Blue uint16 `json:"blue"`
}

// Intensity maps joystick samples to LED brightness.
//
// Red follows the Y displacement and Blue the X displacement. Each channel's
// divisor uses the calibration center of the OTHER axis. This matches the
// factory calibration of the device and is kept as is.
type Intensity struct {
	cal calibration.Calibration
}

// NewIntensity validates cal and returns a mapper.
func NewIntensity(cal calibration.Calibration) (*Intensity, error) {
	if err := cal.Validate(); err != nil {
		return nil, err
	}
	if MaxDuty-cal.CenterX-cal.Deadzone <= 0 {
		return nil, fmt.Errorf("mapping: red divisor is not positive (center X %d, deadzone %d)", cal.CenterX, cal.Deadzone)
	}
	if MaxDuty-cal.CenterY-cal.Deadzone <= 0 {
		return nil, fmt.Errorf("mapping: blue divisor is not positive (center Y %d, deadzone %d)", cal.CenterY, cal.Deadzone)
	}
	return &Intensity{cal: cal}, nil
}

// Map computes the red/blue pair for one sample. A level outside
// [0, MaxDuty] panics with ErrLevelOutOfRange.
func (m *Intensity) Map(rawX, rawY uint16) Levels {
	var l Levels
	if dy, ok := m.cal.Y(rawY); ok {
		l.Red = m.level("red", dy, m.cal.CenterX)
	}
	if dx, ok := m.cal.X(rawX); ok {
		l.Blue = m.level("blue", dx, m.cal.CenterY)
	}
	return l
}

func (m *Intensity) level(channel string, displacement, oppositeCenter int) uint16 {
	v := m.scale(displacement, oppositeCenter)
	if !mathx.Between(v, 0, MaxDuty) {
		panic(fmt.Errorf("%w: %s=%d for displacement %d", ErrLevelOutOfRange, channel, v, displacement))
	}
	return uint16(v)
}

func (m *Intensity) scale(displacement, oppositeCenter int) int {
	return (mathx.Abs(displacement) - m.cal.Deadzone) * MaxDuty / (MaxDuty - oppositeCenter - m.cal.Deadzone)
}

// Peak returns the largest level each channel can reach over the whole ADC
// domain, without the range check. A value above MaxDuty means some
// deflections will trip ErrLevelOutOfRange.
func (m *Intensity) Peak() (red, blue int) {
	maxDY := max(m.cal.CenterY, calibration.ADCMax-m.cal.CenterY)
	maxDX := max(m.cal.CenterX, calibration.ADCMax-m.cal.CenterX)
	if maxDY > m.cal.Deadzone {
		red = m.scale(maxDY, m.cal.CenterX)
	}
	if maxDX > m.cal.Deadzone {
		blue = m.scale(maxDX, m.cal.CenterY)
	}
	return red, blue
}
