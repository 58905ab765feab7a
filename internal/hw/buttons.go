// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package hw

import (
	"context"
	"log"
	"time"

	"periph.io/x/conn/v3/gpio"

	"github.com/relabs-tech/joypad/internal/input"
)

// edgePoll bounds each wait so watchers notice cancellation.
const edgePoll = 100 * time.Millisecond

// EdgePin is the part of gpio.PinIn the watchers use.
type EdgePin interface {
	WaitForEdge(timeout time.Duration) bool
}

// ButtonPin binds a logical button to a pin configured for falling edges.
type ButtonPin struct {
	Button input.Button
	Pin    EdgePin
}

// WatchButtons starts one goroutine per pin. Each detected edge is pushed
// into q stamped with the detection time. Push never blocks; a full queue
// drops the edge.
func WatchButtons(ctx context.Context, q *input.Queue, pins ...ButtonPin) {
	for _, bp := range pins {
		bp := bp
		go func() {
			for ctx.Err() == nil {
				if !bp.Pin.WaitForEdge(edgePoll) {
					continue
				}
				if !q.Push(input.Edge{Button: bp.Button, At: time.Now()}) {
					log.Printf("hw: event queue full, dropped %s edge", bp.Button)
				}
			}
		}()
	}
}

// ResetPin reads the active-low reset button.
type ResetPin struct {
	pin gpio.PinIn
}

// Asserted reports whether the button is held.
func (r *ResetPin) Asserted() bool {
	return r.pin.Read() == gpio.Low
}
