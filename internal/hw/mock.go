// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package hw

import (
	"context"
	"image"
	"image/color"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"periph.io/x/devices/v3/ssd1306/image1bit"

	"github.com/relabs-tech/joypad/internal/calibration"
	"github.com/relabs-tech/joypad/internal/input"
)

// MockJoystick sweeps both axes around their calibration centers so the
// cursor wanders and both LEDs breathe.
type MockJoystick struct {
	start time.Time
	now   func() time.Time
}

// NewMockJoystick creates a joystick whose readings follow wall-clock time.
func NewMockJoystick() *MockJoystick {
	return &MockJoystick{start: time.Now(), now: time.Now}
}

func (m *MockJoystick) Read() (uint16, uint16, error) {
	elapsed := m.now().Sub(m.start).Seconds()
	// Amplitudes stay inside the range the intensity mapper accepts.
	x := float64(calibration.CenterX) + 1900*math.Sin(elapsed*0.9)
	y := float64(calibration.CenterY) + 1900*math.Cos(elapsed*0.6)
	return uint16(x), uint16(y), nil
}

// MockDrawer is an in-memory 128x64 panel keeping the last flushed frame.
type MockDrawer struct {
	mu     sync.Mutex
	frame  *image1bit.VerticalLSB
	draws  int
	halted bool
}

// NewMockDrawer creates a blank panel of the given size.
func NewMockDrawer(width, height int) *MockDrawer {
	return &MockDrawer{frame: image1bit.NewVerticalLSB(image.Rect(0, 0, width, height))}
}

func (d *MockDrawer) String() string { return "mock-ssd1306" }

func (d *MockDrawer) Halt() error {
	d.mu.Lock()
	d.halted = true
	d.mu.Unlock()
	return nil
}

func (d *MockDrawer) ColorModel() color.Model { return image1bit.BitModel }

func (d *MockDrawer) Bounds() image.Rectangle { return d.frame.Bounds() }

// Draw copies src into the retained frame.
func (d *MockDrawer) Draw(r image.Rectangle, src image.Image, sp image.Point) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	r = r.Intersect(d.frame.Bounds())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			c := src.At(sp.X+x-r.Min.X, sp.Y+y-r.Min.Y)
			d.frame.SetBit(x, y, image1bit.BitModel.Convert(c).(image1bit.Bit))
		}
	}
	d.draws++
	return nil
}

// Frame returns a copy of the last flushed frame.
func (d *MockDrawer) Frame() *image1bit.VerticalLSB {
	d.mu.Lock()
	defer d.mu.Unlock()
	cp := image1bit.NewVerticalLSB(d.frame.Bounds())
	copy(cp.Pix, d.frame.Pix)
	return cp
}

// Draws returns the number of Draw calls.
func (d *MockDrawer) Draws() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.draws
}

// MockPWM records the last level set on it.
type MockPWM struct {
	Name  string
	level atomic.Uint32
	sets  atomic.Uint64
}

func (p *MockPWM) Set(level uint16) error {
	p.level.Store(uint32(level))
	p.sets.Add(1)
	return nil
}

// Level returns the last level set.
func (p *MockPWM) Level() uint16 { return uint16(p.level.Load()) }

// Sets returns the number of Set calls.
func (p *MockPWM) Sets() uint64 { return p.sets.Load() }

// MockResetPin is a reset button that can be pressed from code.
type MockResetPin struct {
	held atomic.Bool
}

func (r *MockResetPin) Asserted() bool { return r.held.Load() }

// Press holds the button down.
func (r *MockResetPin) Press() { r.held.Store(true) }

// MockResetter records that a reset was requested instead of leaving the
// process.
type MockResetter struct {
	calls atomic.Int32
	Done  chan struct{}
}

// NewMockResetter returns a resetter whose Done channel closes on the first
// Reset.
func NewMockResetter() *MockResetter {
	return &MockResetter{Done: make(chan struct{})}
}

func (r *MockResetter) Reset() {
	if r.calls.Add(1) == 1 {
		close(r.Done)
	}
}

// Calls returns how many times Reset was invoked.
func (r *MockResetter) Calls() int { return int(r.calls.Load()) }

// Press is one scripted button edge, relative to the start of MockButtons.
type Press struct {
	After  time.Duration
	Button input.Button
}

// MockButtons pushes a scripted sequence of edges into q and returns when
// the script ends or ctx is done.
func MockButtons(ctx context.Context, q *input.Queue, script []Press) {
	start := time.Now()
	for _, p := range script {
		wait := time.Until(start.Add(p.After))
		select {
		case <-ctx.Done():
			return
		case <-time.After(wait):
		}
		q.Push(input.Edge{Button: p.Button, At: time.Now()})
	}
}

// DemoScript toggles the border and the LEDs a few times.
func DemoScript() []Press {
	return []Press{
		{2 * time.Second, input.ButtonJoystick},
		{2*time.Second + 10*time.Millisecond, input.ButtonJoystick}, // bounce, rejected
		{4 * time.Second, input.ButtonA},
		{6 * time.Second, input.ButtonA},
		{8 * time.Second, input.ButtonJoystick},
	}
}
