// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package input

import (
	"fmt"
	"sync/atomic"
	"time"
)

// Button identifies a logical push button.
type Button int

const (
	ButtonA        Button = iota // toggles PWM output
	ButtonJoystick               // toggles border style and indicator LED
	ButtonReset                  // enters the reprogramming facility (level-polled)
)

func (b Button) String() string {
	switch b {
	case ButtonA:
		return "A"
	case ButtonJoystick:
		return "joystick"
	case ButtonReset:
		return "reset"
	default:
		return fmt.Sprintf("Button(%d)", int(b))
	}
}

// Edge is a falling edge captured on a button at time At.
type Edge struct {
	Button Button
	At     time.Time
}

// DefaultQueueLen is used when NewQueue gets a non-positive size.
const DefaultQueueLen = 16

// Queue is the bounded hand-off between edge producers (GPIO watchers) and
// the single consumer running the control loop. Push never blocks.
type Queue struct {
	ch    chan Edge
	drops uint32
}

// NewQueue creates a queue holding up to n pending edges.
func NewQueue(n int) *Queue {
	if n <= 0 {
		n = DefaultQueueLen
	}
	return &Queue{ch: make(chan Edge, n)}
}

// Push enqueues e, or drops it and returns false if the queue is full.
func (q *Queue) Push(e Edge) bool {
	select {
	case q.ch <- e:
		return true
	default:
		atomic.AddUint32(&q.drops, 1)
		return false
	}
}

// Events is the consumer side of the queue.
func (q *Queue) Events() <-chan Edge { return q.ch }

// Drops reports how many edges were discarded because the queue was full.
func (q *Queue) Drops() uint32 { return atomic.LoadUint32(&q.drops) }
