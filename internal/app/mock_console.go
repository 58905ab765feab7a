// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/relabs-tech/joypad/internal/config"
	"github.com/relabs-tech/joypad/internal/diag"
	"github.com/relabs-tech/joypad/internal/hw"
	"github.com/relabs-tech/joypad/internal/mapping"
	"github.com/relabs-tech/joypad/internal/render"
)

// frameReporter prints the status line of every event and, on each joystick
// report, the current frame as ASCII art.
func frameReporter(w io.Writer, drawer *hw.MockDrawer) diag.Reporter {
	return diag.ReporterFunc(func(e diag.Event) {
		fmt.Fprintln(w, e.Line())
		if e.Kind == diag.KindJoystick {
			fmt.Fprint(w, render.ASCII(drawer.Frame()))
			fmt.Fprintf(w, "red=%4d blue=%4d\n\n", e.Red, e.Blue)
		}
	})
}

// RunMockConsole runs the controller on mock peripherals and draws every
// reported frame on stdout. It needs no hardware and no config file.
func RunMockConsole() error {
	cfg := config.Get()
	if cfg == nil {
		cfg = config.Default()
	}

	drawer := hw.NewMockDrawer(mapping.DisplayWidth, mapping.DisplayHeight)
	be := mockBackend(drawer)
	c, err := newController(cfg, be, frameReporter(os.Stdout, drawer))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := c.run(ctx, be); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
