// Copyright 2016 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package energesttest implements a fake for package energest: a set of
// counters the test bumps directly, standing in for real hardware activity
// timers.
package energesttest

import "waternet/energest"

// Fake is an energest.Source whose counters the test drives directly via
// Add. Flush is a no-op since there is nothing to buffer.
type Fake struct {
	Counters     [4]uint32
	TicksPerSec  uint32
}

// NewFake creates a Fake with the given ticks-per-second rate.
func NewFake(ticksPerSecond uint32) *Fake {
	return &Fake{TicksPerSec: ticksPerSecond}
}

// Add increments the counter for k by delta ticks.
func (f *Fake) Add(k energest.Kind, delta uint32) {
	f.Counters[k] += delta
}

// Flush implements energest.Source.
func (f *Fake) Flush() {}

// Time implements energest.Source.
func (f *Fake) Time(k energest.Kind) uint32 { return f.Counters[k] }

// TicksPerSecond implements energest.Source.
func (f *Fake) TicksPerSecond() uint32 { return f.TicksPerSec }
