// Copyright 2016 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package netsim

import "time"

// ZeroRng is a node.Rng that always returns 0, so HELLO jitter vanishes
// and beacons fire exactly on their nominal interval — the deterministic
// choice scenario tests want instead of real randomness.
type ZeroRng struct{}

// Intn implements node.Rng.
func (ZeroRng) Intn(n int) int { return 0 }

// settleDelay is how long Settle sleeps for goroutines driven by the
// virtual clock to catch up and finish processing before a test asserts,
// the same bounded-wait idiom the retrieval corpus's own concurrency
// tests use instead of a synchronization primitive that would need wiring
// into the production event loop just for tests.
const settleDelay = 20 * time.Millisecond

// Settle gives every role goroutine a chance to drain its packet queue and
// finish handling whatever Advance or a Medium delivery just triggered.
func (h *Harness) Settle() {
	time.Sleep(settleDelay)
}

// Advance moves the virtual clock forward by d and settles.
func (h *Harness) Advance(d time.Duration) {
	h.Clock.Advance(d)
	h.Settle()
}
