// Copyright 2016 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package radiotest implements fakes for package radio, in the spirit of
// periph's conn/conntest: a deterministic stand-in that single-node unit
// tests can assert against without a simulated multi-node medium. For
// multi-node scenario tests, see package netsim instead.
package radiotest

import (
	"sync"

	"waternet/radio"
)

// Sent records one transmission observed by Record.
type Sent struct {
	Broadcast bool
	Dst       radio.Addr
	Data      []byte
}

// Record implements radio.Radio, recording every Broadcast/Unicast call and
// allowing the test to inject inbound frames via Deliver.
type Record struct {
	mu  sync.Mutex
	Ops []Sent
	fn  radio.InputFunc
}

func (r *Record) String() string { return "radiotest.Record" }

// Broadcast implements radio.Radio.
func (r *Record) Broadcast(data []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := append([]byte(nil), data...)
	r.Ops = append(r.Ops, Sent{Broadcast: true, Data: cp})
	return nil
}

// Unicast implements radio.Radio.
func (r *Record) Unicast(dst radio.Addr, data []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := append([]byte(nil), data...)
	r.Ops = append(r.Ops, Sent{Dst: dst, Data: cp})
	return nil
}

// SetInputCallback implements radio.Radio.
func (r *Record) SetInputCallback(fn radio.InputFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fn = fn
}

// Deliver simulates an inbound frame arriving from src (addressed to dst),
// invoking the installed callback on the caller's goroutine. The node
// roles' callbacks queue the frame for their own event loop, so a test may
// call Deliver from its own goroutine.
func (r *Record) Deliver(data []byte, src, dst radio.Addr) {
	r.mu.Lock()
	fn := r.fn
	r.mu.Unlock()
	if fn != nil {
		fn(data, src, dst)
	}
}

// Reset clears recorded operations, keeping the installed callback.
func (r *Record) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Ops = nil
}
