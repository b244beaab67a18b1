// Copyright 2016 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package energest defines the energy-measurement source external
// collaborator used by the energised variant's battery model: cumulative
// activity-time counters for CPU, low-power mode, transmit and receive,
// in clock-ticks, that must be flushed before being read.
package energest

// Kind enumerates the four activity counters energest tracks.
type Kind int

const (
	CPU Kind = iota
	LPM
	TX
	RX
)

// Source is the energy-measurement collaborator. A real platform backs it
// with hardware activity counters; energesttest.Fake backs it with
// counters the test increments directly.
type Source interface {
	// Flush commits any buffered activity time so the next Time call
	// reflects it.
	Flush()
	// Time returns the cumulative ticks spent in the given activity since
	// boot.
	Time(k Kind) uint32
	// TicksPerSecond is the platform clock rate used to convert Time deltas
	// into seconds.
	TicksPerSecond() uint32
}
