// Copyright 2016 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package logtap emits the tagged log lines the control plane is required
// to print for test observability (spec.md §6): TREE, PROCESS, MODE, DLPM
// and BORDER. Their exact prefixes (including original spacing) are part
// of the external contract and must not be "cleaned up" — this mirrors the
// source firmware's plain printf() calls rather than reaching for a
// structured logging library, exactly the way periph itself logs driver
// events with bare log.Printf/fmt.Printf. Internal diagnostics that are
// not part of that contract go through log/slog instead (see package
// config for how that's configured).
package logtap

import (
	"fmt"
	"io"
	"sync"
)

// Tap writes tagged lines to an underlying writer, serializing writes so
// concurrent node simulations sharing one writer (e.g. in netsim) don't
// interleave partial lines.
type Tap struct {
	mu sync.Mutex
	w  io.Writer
}

// New creates a Tap writing to w.
func New(w io.Writer) *Tap {
	return &Tap{w: w}
}

func (t *Tap) emit(prefix, format string, args ...interface{}) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintf(t.w, prefix+format+"\n", args...)
}

// Tree logs a TREE line: beacon and parent-selection events.
func (t *Tap) Tree(format string, args ...interface{}) { t.emit("TREE : ", format, args...) }

// Process logs a PROCESS line: sensor readings, slope reports, valve
// actuation.
func (t *Tap) Process(format string, args ...interface{}) { t.emit("PROCESS : ", format, args...) }

// Mode logs a MODE line: Active/LPM/Deep-LPM transitions (except the
// Deep-LPM sensor-skip notice, which uses Dlpm).
func (t *Tap) Mode(format string, args ...interface{}) { t.emit("MODE : ", format, args...) }

// Dlpm logs a DLPM line: the Deep-LPM skipped-sampling notice. (A
// Computation node forwarding a sensor frame in Deep-LPM logs a PROCESS
// line instead.)
func (t *Tap) Dlpm(format string, args ...interface{}) { t.emit("DLPM   : ", format, args...) }

// Border logs a BORDER line: serial command ingress confirmations.
func (t *Tap) Border(format string, args ...interface{}) { t.emit("BORDER: ", format, args...) }
