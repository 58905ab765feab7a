// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package hw binds the control loop to the board peripherals through periph.io
// and provides a mock backend with the same surface.
package hw

import (
	"context"
	"fmt"
	"log"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/devices/v3/ads1x15"
	"periph.io/x/devices/v3/ssd1306"
	"periph.io/x/host/v3"

	"github.com/relabs-tech/joypad/internal/config"
	"github.com/relabs-tech/joypad/internal/input"
	"github.com/relabs-tech/joypad/internal/mapping"
)

// Board is the opened set of peripherals of one device.
type Board struct {
	bus     i2c.BusCloser
	Display *ssd1306.Dev
	adc     *ads1x15.Dev

	Stick *ADCJoystick
	Reset *ResetPin
	Red   *PWMChannel
	Blue  *PWMChannel
	Green *PWMChannel

	buttons []ButtonPin
}

// Open initializes the host drivers and every peripheral named in cfg. All
// PWM channels are driven to zero before Open returns.
func Open(cfg *config.Config) (*Board, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize periph: %w", err)
	}

	bus, err := i2creg.Open(cfg.I2CBus)
	if err != nil {
		return nil, fmt.Errorf("failed to open I2C bus: %w", err)
	}
	b := &Board{bus: bus}

	b.Display, err = ssd1306.NewI2C(bus, &ssd1306.Opts{W: mapping.DisplayWidth, H: mapping.DisplayHeight})
	if err != nil {
		b.Close()
		return nil, fmt.Errorf("failed to initialize display: %w", err)
	}
	log.Printf("hw: display initialized (%dx%d)", mapping.DisplayWidth, mapping.DisplayHeight)

	b.adc, err = ads1x15.NewADS1015(bus, &ads1x15.Opts{I2cAddress: cfg.ADCI2CAddr})
	if err != nil {
		b.Close()
		return nil, fmt.Errorf("failed to initialize ADC: %w", err)
	}
	b.Stick, err = newADCJoystick(b.adc, cfg)
	if err != nil {
		b.Close()
		return nil, err
	}
	log.Printf("hw: ADC initialized at 0x%02X (X=ch%d, Y=ch%d)", cfg.ADCI2CAddr, cfg.ADCChannelX, cfg.ADCChannelY)

	for _, bp := range []struct {
		button input.Button
		name   string
	}{
		{input.ButtonA, cfg.ButtonAPin},
		{input.ButtonJoystick, cfg.ButtonJoystickPin},
	} {
		pin, err := inputPin(bp.name, gpio.FallingEdge)
		if err != nil {
			b.Close()
			return nil, err
		}
		b.buttons = append(b.buttons, ButtonPin{Button: bp.button, Pin: pin})
	}

	resetPin, err := inputPin(cfg.ButtonResetPin, gpio.NoEdge)
	if err != nil {
		b.Close()
		return nil, err
	}
	b.Reset = &ResetPin{pin: resetPin}

	for _, out := range []struct {
		dst  **PWMChannel
		name string
	}{
		{&b.Red, cfg.LEDRedPin},
		{&b.Blue, cfg.LEDBluePin},
		{&b.Green, cfg.LEDGreenPin},
	} {
		pin := gpioreg.ByName(out.name)
		if pin == nil {
			b.Close()
			return nil, fmt.Errorf("unknown LED pin %q", out.name)
		}
		*out.dst = NewPWMChannel(pin, cfg.PWMFrequency)
		if err := (*out.dst).Set(0); err != nil {
			b.Close()
			return nil, fmt.Errorf("failed to zero PWM on %s: %w", out.name, err)
		}
	}
	log.Printf("hw: PWM channels ready at %s", cfg.PWMFrequency)

	return b, nil
}

func inputPin(name string, edge gpio.Edge) (gpio.PinIn, error) {
	pin := gpioreg.ByName(name)
	if pin == nil {
		return nil, fmt.Errorf("unknown button pin %q", name)
	}
	if err := pin.In(gpio.PullUp, edge); err != nil {
		return nil, fmt.Errorf("failed to configure %s: %w", name, err)
	}
	return pin, nil
}

// WatchButtons starts one edge watcher per button. Watchers stop when ctx
// is done.
func (b *Board) WatchButtons(ctx context.Context, q *input.Queue) {
	WatchButtons(ctx, q, b.buttons...)
}

// Close zeroes the LEDs and releases the devices.
func (b *Board) Close() error {
	for _, ch := range []*PWMChannel{b.Red, b.Blue, b.Green} {
		if ch != nil {
			_ = ch.Halt()
		}
	}
	if b.Display != nil {
		if err := b.Display.Halt(); err != nil {
			log.Printf("hw: display halt error: %v", err)
		}
	}
	if b.adc != nil {
		if err := b.adc.Halt(); err != nil {
			log.Printf("hw: ADC halt error: %v", err)
		}
	}
	if b.bus != nil {
		return b.bus.Close()
	}
	return nil
}
