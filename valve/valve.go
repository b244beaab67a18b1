// Copyright 2016 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package valve implements the Sensor role's valve actuation state: an LED
// and a one-shot auto-close timer, per spec.md §3 and §4.6.
package valve

import (
	"time"

	"waternet/clock"
	"waternet/led"
)

// Duration is how long a valve stays open after a COMMAND before
// auto-closing (VALVE_DURATION in spec.md).
const Duration = 600 * time.Second

// State drives the red LED from COMMAND receipts and its own close timer.
type State struct {
	Open bool

	led   led.LED
	timer clock.Timer
}

// New creates a valve State wired to the given LED and timer. The timer
// must not be armed yet; New does not arm it.
func New(l led.LED, t clock.Timer) *State {
	return &State{led: l, timer: t}
}

// Received handles an inbound COMMAND: turns the red LED on, marks the
// valve open, and (re)arms the close timer for Duration — a second command
// while already open simply restarts the duration, per spec.md's
// idempotent-restart guarantee.
func (s *State) Received() {
	s.led.On(led.Red)
	s.Open = true
	s.timer.Set(Duration)
}

// Expired handles the close-timer firing: turns the LED off and clears
// Open.
func (s *State) Expired() {
	s.led.Off(led.Red)
	s.Open = false
}

// TimerChan exposes the close timer's channel for the event loop's select.
func (s *State) TimerChan() <-chan time.Time { return s.timer.C() }
