// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package hw

import (
	"fmt"

	"periph.io/x/conn/v3/analog"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/devices/v3/ads1x15"

	"github.com/relabs-tech/joypad/internal/calibration"
	"github.com/relabs-tech/joypad/internal/config"
	"github.com/relabs-tech/joypad/internal/mathx"
)

// Sampler reads one analog channel.
type Sampler interface {
	Read() (analog.Sample, error)
}

// ADCJoystick reads the two stick axes and scales them to 12-bit counts.
type ADCJoystick struct {
	x, y      Sampler
	fullScale physic.ElectricPotential
}

var channels = [...]ads1x15.Channel{ads1x15.Channel0, ads1x15.Channel1, ads1x15.Channel2, ads1x15.Channel3}

func newADCJoystick(dev *ads1x15.Dev, cfg *config.Config) (*ADCJoystick, error) {
	x, err := dev.PinForChannel(channels[cfg.ADCChannelX], cfg.ADCFullScale, cfg.ADCSampleRate, ads1x15.BestQuality)
	if err != nil {
		return nil, fmt.Errorf("failed to open ADC channel %d: %w", cfg.ADCChannelX, err)
	}
	y, err := dev.PinForChannel(channels[cfg.ADCChannelY], cfg.ADCFullScale, cfg.ADCSampleRate, ads1x15.BestQuality)
	if err != nil {
		return nil, fmt.Errorf("failed to open ADC channel %d: %w", cfg.ADCChannelY, err)
	}
	return NewADCJoystick(x, y, cfg.ADCFullScale), nil
}

// NewADCJoystick returns a joystick over two samplers whose full-scale
// voltage reads as calibration.ADCMax.
func NewADCJoystick(x, y Sampler, fullScale physic.ElectricPotential) *ADCJoystick {
	return &ADCJoystick{x: x, y: y, fullScale: fullScale}
}

// Read samples X then Y.
func (j *ADCJoystick) Read() (uint16, uint16, error) {
	sx, err := j.x.Read()
	if err != nil {
		return 0, 0, fmt.Errorf("read X axis: %w", err)
	}
	sy, err := j.y.Read()
	if err != nil {
		return 0, 0, fmt.Errorf("read Y axis: %w", err)
	}
	return Counts(sx.V, j.fullScale), Counts(sy.V, j.fullScale), nil
}

// Counts converts a voltage to the 12-bit ADC domain, clamped to
// [0, calibration.ADCMax].
func Counts(v, fullScale physic.ElectricPotential) uint16 {
	if fullScale <= 0 {
		return 0
	}
	c := int64(v) * calibration.ADCMax / int64(fullScale)
	return uint16(mathx.Clamp(c, 0, calibration.ADCMax))
}
