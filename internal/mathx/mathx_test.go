// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package mathx

import "testing"

func TestAbs(t *testing.T) {
	cases := []struct{ in, want int }{{0, 0}, {5, 5}, {-5, 5}, {-2019, 2019}}
	for _, c := range cases {
		if got := Abs(c.in); got != c.want {
			t.Errorf("Abs(%d) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestClamp(t *testing.T) {
	cases := []struct{ v, lo, hi, want int }{
		{-3, 0, 120, 0},
		{121, 0, 120, 120},
		{60, 0, 120, 60},
		{60, 120, 0, 60}, // swapped bounds
	}
	for _, c := range cases {
		if got := Clamp(c.v, c.lo, c.hi); got != c.want {
			t.Errorf("Clamp(%d, %d, %d) = %d, want %d", c.v, c.lo, c.hi, got, c.want)
		}
	}
}

func TestBetween(t *testing.T) {
	if !Between(0, 0, 4095) || !Between(4095, 0, 4095) {
		t.Fatal("bounds must be inclusive")
	}
	if Between(4096, 0, 4095) || Between(-1, 0, 4095) {
		t.Fatal("values outside the range reported as inside")
	}
}
