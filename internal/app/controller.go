// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/relabs-tech/joypad/internal/calibration"
	"github.com/relabs-tech/joypad/internal/config"
	"github.com/relabs-tech/joypad/internal/control"
	"github.com/relabs-tech/joypad/internal/diag"
	"github.com/relabs-tech/joypad/internal/hw"
	"github.com/relabs-tech/joypad/internal/input"
	"github.com/relabs-tech/joypad/internal/mapping"
	"github.com/relabs-tech/joypad/internal/render"
)

// backend is the set of peripherals the controller runs on.
type backend struct {
	panel   render.Panel
	stick   control.Joystick
	trigger control.ResetTrigger
	reset   control.Resetter
	red     control.Output
	blue    control.Output
	green   control.Output
	watch   func(ctx context.Context, q *input.Queue)
	close   func() error
}

// controller is a wired control loop plus the queue feeding it.
type controller struct {
	loop  *control.Loop
	queue *input.Queue
	state *input.State
}

func newController(cfg *config.Config, be *backend, report diag.Reporter) (*controller, error) {
	if red, blue := peak(); red > mapping.MaxDuty || blue > mapping.MaxDuty {
		log.Printf("controller: warning: calibration lets levels reach red=%d blue=%d (max %d); full deflection will abort",
			red, blue, mapping.MaxDuty)
	}

	if err := render.Splash(be.panel, mapping.DisplayWidth, mapping.DisplayHeight, "joypad", "ready"); err != nil {
		log.Printf("controller: splash error: %v", err)
	}

	state := input.NewState()
	queue := input.NewQueue(input.DefaultQueueLen)
	loop, err := control.New(control.Config{
		Stick:       be.stick,
		Trigger:     be.trigger,
		Reset:       be.reset,
		Red:         be.red,
		Blue:        be.blue,
		Surface:     render.NewFramebuffer(mapping.DisplayWidth, mapping.DisplayHeight, be.panel),
		State:       state,
		Debounce:    input.NewDebouncer(state, be.green, report),
		Events:      queue.Events(),
		Report:      report,
		ReportEvery: cfg.ReportInterval,
	})
	if err != nil {
		return nil, err
	}
	return &controller{loop: loop, queue: queue, state: state}, nil
}

func peak() (red, blue int) {
	m, err := mapping.NewIntensity(calibration.Factory)
	if err != nil {
		return 0, 0
	}
	return m.Peak()
}

// run starts the button watchers and steps the loop until ctx is done or
// the reset action fires.
func (c *controller) run(ctx context.Context, be *backend) error {
	be.watch(ctx, c.queue)
	log.Printf("controller: control loop running every %s", control.Period)
	return c.loop.Run(ctx, control.NewTicker(control.Period))
}

// reporters builds the diagnostic fan-out: the log always, plus the serial
// line and MQTT when configured. The returned function closes the sinks
// once, however often it is called.
func reporters(cfg *config.Config, clientID string) (diag.Multi, func()) {
	sinks := diag.Multi{diag.LogReporter{}}
	var closers []func()

	if cfg.DiagSerialPort != "" {
		sr, err := diag.OpenSerial(cfg.DiagSerialPort, cfg.DiagBaudRate)
		if err != nil {
			log.Printf("controller: serial diagnostics disabled: %v", err)
		} else {
			sinks = append(sinks, sr)
			closers = append(closers, func() { _ = sr.Close() })
		}
	}

	if cfg.MQTTBroker != "" {
		mr, err := diag.ConnectMQTT(cfg.MQTTBroker, clientID, cfg.TopicStatus)
		if err != nil {
			log.Printf("controller: MQTT diagnostics disabled: %v", err)
		} else {
			sinks = append(sinks, mr)
			closers = append(closers, mr.Close)
		}
	}

	var once sync.Once
	return sinks, func() {
		once.Do(func() {
			for _, c := range closers {
				c()
			}
		})
	}
}

func hardwareBackend(cfg *config.Config, beforeReset func()) (*backend, error) {
	board, err := hw.Open(cfg)
	if err != nil {
		return nil, err
	}
	return &backend{
		panel:   board.Display,
		stick:   board.Stick,
		trigger: board.Reset,
		reset:   hw.NewExecResetter(cfg.ResetCommand, beforeReset),
		red:     board.Red,
		blue:    board.Blue,
		green:   board.Green,
		watch:   board.WatchButtons,
		close:   board.Close,
	}, nil
}

func mockBackend(drawer *hw.MockDrawer) *backend {
	return &backend{
		panel:   drawer,
		stick:   hw.NewMockJoystick(),
		trigger: &hw.MockResetPin{},
		reset:   hw.NewMockResetter(),
		red:     &hw.MockPWM{Name: "red"},
		blue:    &hw.MockPWM{Name: "blue"},
		green:   &hw.MockPWM{Name: "green"},
		watch: func(ctx context.Context, q *input.Queue) {
			go hw.MockButtons(ctx, q, hw.DemoScript())
		},
		close: func() error { return nil },
	}
}

// RunController runs the control loop on the board, or on the mock backend
// when mock is set, until SIGINT/SIGTERM or the reset button.
func RunController(mock bool) error {
	cfg := config.Get()
	if cfg == nil {
		return errors.New("configuration not initialized")
	}

	report, closeSinks := reporters(cfg, cfg.MQTTClientIDController)
	defer closeSinks()

	var (
		be  *backend
		err error
	)
	if mock {
		log.Println("controller: using mock peripherals")
		be = mockBackend(hw.NewMockDrawer(mapping.DisplayWidth, mapping.DisplayHeight))
	} else {
		be, err = hardwareBackend(cfg, closeSinks)
		if err != nil {
			return fmt.Errorf("hardware bring-up: %w", err)
		}
	}
	defer be.close()

	c, err := newController(cfg, be, report)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = c.run(ctx, be)
	switch {
	case errors.Is(err, context.Canceled):
		log.Println("controller: shutting down")
		return nil
	case errors.Is(err, control.ErrResetReturned) && mock:
		log.Println("controller: mock reset requested, exiting")
		return nil
	}
	return err
}
