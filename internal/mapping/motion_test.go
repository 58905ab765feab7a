// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package mapping

import (
	"math/rand"
	"testing"

	"github.com/relabs-tech/joypad/internal/calibration"
)

func newMotion(t *testing.T) *Motion {
	t.Helper()
	m, err := NewMotion(calibration.Factory, DefaultBounds)
	if err != nil {
		t.Fatalf("NewMotion: %v", err)
	}
	return m
}

func TestMotionCenteredDoesNotMove(t *testing.T) {
	m := newMotion(t)
	got := m.Next(Start, calibration.CenterX, calibration.CenterY)
	if got != Start {
		t.Fatalf("centered stick moved cursor: %+v -> %+v", Start, got)
	}
}

func TestMotionSubThresholdRounding(t *testing.T) {
	m := newMotion(t)
	// Just outside the deadzone: 1*5/2048 truncates to zero.
	got := m.Next(Start, calibration.CenterX, calibration.CenterY+calibration.Deadzone+1)
	if got != Start {
		t.Fatalf("sub-threshold deflection moved cursor: %+v", got)
	}
}

func TestMotionAxesAreCrossed(t *testing.T) {
	m := newMotion(t)

	// Full +Y: horizontal coordinate grows by 2076*5/2048 = 5.
	got := m.Next(Start, calibration.CenterX, calibration.ADCMax)
	if got.X != Start.X+5 || got.Y != Start.Y {
		t.Fatalf("+Y: got %+v, want X=%d Y=%d", got, Start.X+5, Start.Y)
	}

	// Full +X: vertical coordinate shrinks by 2166*5/2048 = 5.
	got = m.Next(Start, calibration.ADCMax, calibration.CenterY)
	if got.Y != Start.Y-5 || got.X != Start.X {
		t.Fatalf("+X: got %+v, want X=%d Y=%d", got, Start.X, Start.Y-5)
	}

	// Full -X: vertical coordinate grows; -1929*5/2048 truncates to -4.
	got = m.Next(Start, 0, calibration.CenterY)
	if got.Y != Start.Y+4 {
		t.Fatalf("-X: got Y=%d, want %d", got.Y, Start.Y+4)
	}
}

func TestMotionDeadzoneOnOneAxisOnly(t *testing.T) {
	m := newMotion(t)
	// X exactly at the deadzone edge is not significant; Y moves.
	got := m.Next(Start, calibration.CenterX+calibration.Deadzone, calibration.ADCMax)
	if got.Y != Start.Y {
		t.Fatalf("X at deadzone edge moved Y: %+v", got)
	}
	if got.X == Start.X {
		t.Fatalf("Y deflection did not move X: %+v", got)
	}
}

func TestMotionClampsAtZero(t *testing.T) {
	m := newMotion(t)
	// -2019*5/2048 = -4, so X=1 would become -3 and must clamp to 0.
	got := m.Next(Cursor{X: 1, Y: 10}, calibration.CenterX, 0)
	if got.X != 0 {
		t.Fatalf("expected X clamped to 0, got %d", got.X)
	}
}

func TestMotionClampsAtFarEdge(t *testing.T) {
	m := newMotion(t)
	cur := Start
	for i := 0; i < 100; i++ {
		cur = m.Next(cur, 0, calibration.ADCMax)
	}
	want := Cursor{X: DisplayWidth - CursorSize, Y: DisplayHeight - CursorSize}
	if cur != want {
		t.Fatalf("got %+v, want %+v", cur, want)
	}
}

func TestMotionStaysInBoundsForAnySequence(t *testing.T) {
	m := newMotion(t)
	rng := rand.New(rand.NewSource(42))
	cur := Start
	for i := 0; i < 20000; i++ {
		cur = m.Next(cur, uint16(rng.Intn(calibration.ADCMax+1)), uint16(rng.Intn(calibration.ADCMax+1)))
		if cur.X < 0 || cur.X > 120 || cur.Y < 0 || cur.Y > 56 {
			t.Fatalf("step %d: cursor %+v out of bounds", i, cur)
		}
	}
}

func TestPlacementSwapsCoordinates(t *testing.T) {
	p := Cursor{X: 100, Y: 7}.Placement()
	if p.Top != 7 || p.Left != 100 {
		t.Fatalf("unexpected placement %+v", p)
	}
}

func TestNewMotionRejectsOversizedCursor(t *testing.T) {
	if _, err := NewMotion(calibration.Factory, Bounds{Width: 4, Height: 64, Cursor: 8}); err == nil {
		t.Fatal("expected error for cursor wider than the display")
	}
}
