// Copyright 2016 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package clock defines the timer driver external collaborator: monotonic
// ticks and one-shot expirations. The control plane's event loop (package
// node) waits on a Timer's channel rather than polling, which is the
// idiomatic Go rendering of the source firmware's
// etimer_set/etimer_reset/etimer_expired polling loop — the channel fires
// exactly once per arm/re-arm, same as the expired-flag would have flipped
// once.
package clock

import "time"

// Timer is a single re-armable one-shot timer.
type Timer interface {
	// C returns the channel that receives a value exactly once each time
	// the timer expires.
	C() <-chan time.Time
	// Set arms (or re-arms) the timer to fire after d from now, replacing
	// any pending expiration.
	Set(d time.Duration)
	// Reset re-arms the timer using the duration passed to the most recent
	// Set, counted from now. It does not count from the previous deadline,
	// so any delay between expiry and the Reset call shifts every later
	// expiration by that much.
	Reset()
	// Stop disarms the timer. Safe to call on an already-stopped timer.
	Stop()
}

// Clock creates timers and exposes the current time. Production code uses
// Real(); tests use clocktest.Virtual for deterministic, instantly-advanced
// time.
type Clock interface {
	NewTimer() Timer
	Now() time.Time
}

// Real is a Clock backed by the Go runtime's timers.
type Real struct{}

// NewTimer implements Clock.
func (Real) NewTimer() Timer { return &realTimer{} }

// Now implements Clock.
func (Real) Now() time.Time { return time.Now() }

type realTimer struct {
	t   *time.Timer
	dur time.Duration
}

func (r *realTimer) C() <-chan time.Time {
	if r.t == nil {
		// Never armed: return a channel that never fires, rather than nil
		// (a nil channel in a select simply blocks forever, which is
		// exactly the semantics we want here).
		ch := make(chan time.Time)
		return ch
	}
	return r.t.C
}

func (r *realTimer) Set(d time.Duration) {
	r.dur = d
	if r.t == nil {
		r.t = time.NewTimer(d)
		return
	}
	if !r.t.Stop() {
		drain(r.t)
	}
	r.t.Reset(d)
}

func (r *realTimer) Reset() {
	r.Set(r.dur)
}

func (r *realTimer) Stop() {
	if r.t != nil {
		if !r.t.Stop() {
			drain(r.t)
		}
	}
}

func drain(t *time.Timer) {
	select {
	case <-t.C:
	default:
	}
}
