// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package hw

import (
	"fmt"
	"log"
	"os"
	"os/exec"
	"syscall"

	"github.com/google/shlex"
)

// ExecResetter replaces the running process with the reprogramming command.
// Reset never returns: if the command cannot be started the process exits.
type ExecResetter struct {
	Command string
	// Before runs once before the exec, typically to flush diagnostics.
	Before func()

	exec func(argv0 string, argv []string, envv []string) error
}

// NewExecResetter returns a resetter that runs command through execve.
func NewExecResetter(command string, before func()) *ExecResetter {
	return &ExecResetter{Command: command, Before: before, exec: syscall.Exec}
}

// Reset hands over to the reprogramming command.
func (r *ExecResetter) Reset() {
	log.Println("hw: entering reprogramming mode")
	if r.Before != nil {
		r.Before()
	}
	if err := r.run(); err != nil {
		log.Fatalf("hw: reset failed: %v", err)
	}
	log.Fatalf("hw: reset command returned")
}

func (r *ExecResetter) run() error {
	if r.Command == "" {
		return fmt.Errorf("RESET_COMMAND is not configured")
	}
	argv, err := shlex.Split(r.Command)
	if err != nil {
		return fmt.Errorf("parse RESET_COMMAND: %w", err)
	}
	if len(argv) == 0 {
		return fmt.Errorf("RESET_COMMAND is empty")
	}
	path, err := exec.LookPath(argv[0])
	if err != nil {
		return err
	}
	ex := r.exec
	if ex == nil {
		ex = syscall.Exec
	}
	return ex(path, argv, os.Environ())
}
