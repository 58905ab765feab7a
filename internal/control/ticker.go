// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package control

import "time"

// Ticker is the tick source of the loop. Tests inject a channel they drive
// by hand instead of waiting on a real period.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

type realTicker struct{ t *time.Ticker }

// NewTicker returns a Ticker firing every d.
func NewTicker(d time.Duration) Ticker {
	return realTicker{t: time.NewTicker(d)}
}

func (r realTicker) C() <-chan time.Time { return r.t.C }
func (r realTicker) Stop()               { r.t.Stop() }

// ChanTicker is a Ticker over a caller-owned channel.
type ChanTicker chan time.Time

func (c ChanTicker) C() <-chan time.Time { return c }
func (c ChanTicker) Stop()               {}
