// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package diag

import (
	"fmt"
	"io"
	"log"

	serial "github.com/jacobsa/go-serial/serial"
)

// SerialReporter mirrors status lines onto a UART.
type SerialReporter struct {
	*WriterReporter
	port io.ReadWriteCloser
}

// OpenSerial opens portName at baud (8N1) for status output.
func OpenSerial(portName string, baud int) (*SerialReporter, error) {
	opts := serial.OpenOptions{
		PortName:              portName,
		BaudRate:              uint(baud),
		DataBits:              8,
		StopBits:              1,
		MinimumReadSize:       1,
		ParityMode:            serial.PARITY_NONE,
		InterCharacterTimeout: 0,
	}
	port, err := serial.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("diag: open serial %s: %w", portName, err)
	}
	log.Printf("diag: status lines mirrored to %s at %d baud", portName, baud)
	return &SerialReporter{WriterReporter: NewWriterReporter(port), port: port}, nil
}

func (s *SerialReporter) Close() error { return s.port.Close() }
