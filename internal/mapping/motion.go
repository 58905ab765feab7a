// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package mapping turns calibrated joystick displacements into a bounded
// cursor position and into per-channel LED duty-cycle levels.
package mapping

import (
	"errors"
	"fmt"

	"github.com/relabs-tech/joypad/internal/calibration"
	"github.com/relabs-tech/joypad/internal/mathx"
)

const (
	DisplayWidth  = 128
	DisplayHeight = 64
	CursorSize    = 8

	// Gain / Scale is the cursor step per unit of displacement. The division
	// truncates toward zero, so small deflections produce no motion.
	Gain  = 5
	Scale = 2048
)

// ErrPositionOutOfRange marks a cursor that escaped its bounds after clamping.
var ErrPositionOutOfRange = errors.New("mapping: cursor position out of range")

// Cursor is the on-screen cursor in internal coordinates: X is the
// horizontal pixel column, Y the vertical pixel row of its top-left corner.
type Cursor struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Start is where the cursor sits at boot.
var Start = Cursor{X: 59, Y: 29}

// Placement is the reported cursor position handed to the renderer. The
// pair is swapped relative to Cursor: Top carries the vertical coordinate
// and Left the horizontal one, matching the display driver's (top, left)
// argument order.
type Placement struct {
	Top  int `json:"top"`
	Left int `json:"left"`
}

// Placement returns the swapped pair for rendering and reporting.
func (c Cursor) Placement() Placement {
	return Placement{Top: c.Y, Left: c.X}
}

// Bounds describes the drawable area and the cursor glyph size.
type Bounds struct {
	Width  int
	Height int
	Cursor int
}

// DefaultBounds is the 128x64 panel with an 8x8 cursor.
var DefaultBounds = Bounds{Width: DisplayWidth, Height: DisplayHeight, Cursor: CursorSize}

// MaxX is the largest legal cursor X.
func (b Bounds) MaxX() int { return b.Width - b.Cursor }

// MaxY is the largest legal cursor Y.
func (b Bounds) MaxY() int { return b.Height - b.Cursor }

// Contains reports whether c lies inside the legal cursor range.
func (b Bounds) Contains(c Cursor) bool {
	return mathx.Between(c.X, 0, b.MaxX()) && mathx.Between(c.Y, 0, b.MaxY())
}

// Motion maps joystick samples to cursor movement.
type Motion struct {
	cal    calibration.Calibration
	bounds Bounds
}

// NewMotion validates the calibration and bounds and returns a mapper.
func NewMotion(cal calibration.Calibration, b Bounds) (*Motion, error) {
	if err := cal.Validate(); err != nil {
		return nil, err
	}
	if b.Cursor <= 0 || b.Cursor > b.Width || b.Cursor > b.Height {
		return nil, fmt.Errorf("mapping: cursor size %d does not fit %dx%d", b.Cursor, b.Width, b.Height)
	}
	return &Motion{cal: cal, bounds: b}, nil
}

// Bounds returns the bounds the mapper clamps to.
func (m *Motion) Bounds() Bounds { return m.bounds }

// Step converts one axis displacement into a cursor increment.
func Step(displacement int) int {
	return displacement * Gain / Scale
}

// Next applies one tick of joystick input to cur.
//
// The axes are crossed: the Y channel moves the cursor horizontally and the
// X channel moves it vertically, inverted. Each axis only contributes when
// its own displacement leaves the deadzone. The result is clamped to the
// bounds.
func (m *Motion) Next(cur Cursor, rawX, rawY uint16) Cursor {
	dx, okX := m.cal.X(rawX)
	dy, okY := m.cal.Y(rawY)

	if okY {
		cur.X += Step(dy)
	}
	if okX {
		cur.Y -= Step(dx)
	}

	cur.X = mathx.Clamp(cur.X, 0, m.bounds.MaxX())
	cur.Y = mathx.Clamp(cur.Y, 0, m.bounds.MaxY())

	if !m.bounds.Contains(cur) {
		panic(fmt.Errorf("%w: (%d, %d) outside [0, %d]x[0, %d]",
			ErrPositionOutOfRange, cur.X, cur.Y, m.bounds.MaxX(), m.bounds.MaxY()))
	}
	return cur
}
