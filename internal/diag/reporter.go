// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package diag

import (
	"io"
	"log"
	"sync"
)

// Reporter receives status events. Implementations must not block for long:
// Report is called from the control loop.
type Reporter interface {
	Report(Event)
}

// ReporterFunc adapts a function to Reporter.
type ReporterFunc func(Event)

func (f ReporterFunc) Report(e Event) { f(e) }

// Discard drops every event.
var Discard Reporter = ReporterFunc(func(Event) {})

// Multi fans one event out to every reporter in order.
type Multi []Reporter

func (m Multi) Report(e Event) {
	for _, r := range m {
		r.Report(e)
	}
}

// LogReporter writes each event line through a standard logger.
type LogReporter struct {
	Logger *log.Logger // nil means the standard logger
}

func (l LogReporter) Report(e Event) {
	if l.Logger == nil {
		log.Println(e.Line())
		return
	}
	l.Logger.Println(e.Line())
}

// WriterReporter writes one line per event to w. It is safe for concurrent
// use; write errors are counted and otherwise ignored.
type WriterReporter struct {
	mu     sync.Mutex
	w      io.Writer
	errors int
}

func NewWriterReporter(w io.Writer) *WriterReporter {
	return &WriterReporter{w: w}
}

func (r *WriterReporter) Report(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, err := io.WriteString(r.w, e.Line()+"\r\n"); err != nil {
		r.errors++
	}
}

// Errors returns the number of failed writes.
func (r *WriterReporter) Errors() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.errors
}
