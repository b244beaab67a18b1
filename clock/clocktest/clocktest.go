// Copyright 2016 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package clocktest implements a fake for package clock: a virtual clock
// whose time only moves when the test tells it to, so scenario tests (a
// 600-second valve timeout, a 3*HELLO_INTERVAL tree convergence) run
// instantly instead of for real wall-clock minutes.
package clocktest

import (
	"sort"
	"sync"
	"time"

	"waternet/clock"
)

// Virtual is a clock.Clock whose Now() only advances when Advance is
// called. It is not safe for concurrent use from multiple goroutines
// driving different nodes at once unless the caller serializes calls to
// Advance with node event-loop ticks, which is how the scenario harness in
// package netsim uses it (one virtual clock shared by all simulated
// nodes, advanced by the test in steps of its choosing).
type Virtual struct {
	mu      sync.Mutex
	now     time.Time
	timers  []*virtualTimer
	nextSeq int
}

// NewVirtual creates a Virtual clock starting at an arbitrary fixed epoch.
func NewVirtual() *Virtual {
	return &Virtual{now: time.Unix(0, 0)}
}

// NewTimer implements clock.Clock.
func (v *Virtual) NewTimer() clock.Timer {
	v.mu.Lock()
	defer v.mu.Unlock()
	t := &virtualTimer{v: v, ch: make(chan time.Time, 1)}
	return t
}

// Now implements clock.Clock.
func (v *Virtual) Now() time.Time {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.now
}

// Advance moves the virtual clock forward by d, firing (in deadline order)
// every armed timer whose deadline falls at or before the new time.
func (v *Virtual) Advance(d time.Duration) {
	v.mu.Lock()
	target := v.now.Add(d)
	var fired []*virtualTimer
	for _, t := range v.timers {
		if t.armed && !t.deadline.After(target) {
			fired = append(fired, t)
		}
	}
	sort.Slice(fired, func(i, j int) bool { return fired[i].deadline.Before(fired[j].deadline) })
	v.now = target
	for _, t := range fired {
		t.armed = false
		select {
		case t.ch <- t.deadline:
		default:
		}
	}
	v.mu.Unlock()
}

func (v *Virtual) register(t *virtualTimer) {
	v.mu.Lock()
	v.timers = append(v.timers, t)
	v.mu.Unlock()
}

type virtualTimer struct {
	v        *Virtual
	ch       chan time.Time
	dur      time.Duration
	deadline time.Time
	armed    bool
	regOnce  sync.Once
}

func (t *virtualTimer) C() <-chan time.Time { return t.ch }

func (t *virtualTimer) Set(d time.Duration) {
	t.regOnce.Do(func() { t.v.register(t) })
	t.v.mu.Lock()
	t.dur = d
	t.deadline = t.v.now.Add(d)
	t.armed = true
	t.v.mu.Unlock()
	// Drain any stale pending value.
	select {
	case <-t.ch:
	default:
	}
}

func (t *virtualTimer) Reset() {
	t.Set(t.dur)
}

func (t *virtualTimer) Stop() {
	t.v.mu.Lock()
	t.armed = false
	t.v.mu.Unlock()
}
