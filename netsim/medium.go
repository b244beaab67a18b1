// Copyright 2016 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package netsim provides an in-memory broadcast medium with range
// constraints, standing in for the single-PAN radio spec.md's control
// plane runs over, plus the scenario harness used to exercise the
// testable properties in spec.md §8. Unlike radiotest.Record, which a
// single-node unit test drives by hand, the medium here actually routes
// frames between several radio.Radio endpoints based on their placement,
// so multi-node convergence behavior (tree formation, parent switching)
// can be driven end to end.
package netsim

import (
	"math"
	"sync"

	"waternet/radio"
)

// Position places one node in the plane, in the medium's own abstract
// distance units.
type Position struct {
	X, Y float64
}

func (p Position) distance(o Position) float64 {
	dx := p.X - o.X
	dy := p.Y - o.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// Medium is a shared broadcast domain: every Endpoint registered on it can
// reach every other Endpoint within Range of its current Position.
// Delivery is synchronous and immediate, matching radio.Radio's
// non-failing/non-blocking contract — there is no simulated propagation
// delay or loss beyond the range cutoff.
type Medium struct {
	mu    sync.Mutex
	Range float64
	nodes map[uint8]*Endpoint
}

// NewMedium creates a Medium with the given range.
func NewMedium(rng float64) *Medium {
	return &Medium{Range: rng, nodes: make(map[uint8]*Endpoint)}
}

// Join creates and registers an Endpoint for nodeID at pos.
func (m *Medium) Join(nodeID uint8, pos Position) *Endpoint {
	e := &Endpoint{medium: m, addr: radio.NewAddr(nodeID), pos: pos}
	m.mu.Lock()
	m.nodes[nodeID] = e
	m.mu.Unlock()
	return e
}

// Move updates nodeID's position, changing who it can reach from now on.
func (m *Medium) Move(nodeID uint8, pos Position) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.nodes[nodeID]; ok {
		e.mu.Lock()
		e.pos = pos
		e.mu.Unlock()
	}
}

func (m *Medium) inRange(a, b *Endpoint) bool {
	a.mu.Lock()
	ap := a.pos
	a.mu.Unlock()
	b.mu.Lock()
	bp := b.pos
	b.mu.Unlock()
	return ap.distance(bp) <= m.Range
}

// Endpoint is one node's radio.Radio implementation backed by a Medium.
type Endpoint struct {
	medium *Medium
	addr   radio.Addr

	mu  sync.Mutex
	pos Position
	fn  radio.InputFunc
}

// Broadcast implements radio.Radio: delivers to every other endpoint
// currently within range.
func (e *Endpoint) Broadcast(data []byte) error {
	e.medium.mu.Lock()
	peers := make([]*Endpoint, 0, len(e.medium.nodes))
	for id, other := range e.medium.nodes {
		if id == e.addr.NodeID() {
			continue
		}
		peers = append(peers, other)
	}
	e.medium.mu.Unlock()

	for _, other := range peers {
		if !e.medium.inRange(e, other) {
			continue
		}
		other.deliver(data, e.addr)
	}
	return nil
}

// Unicast implements radio.Radio: delivers to dst only if it is currently
// in range and registered on the medium. Out-of-range or unknown
// destinations are silently dropped, matching the best-effort link the
// control plane assumes (spec.md §1's Non-goals: no reliable delivery).
func (e *Endpoint) Unicast(dst radio.Addr, data []byte) error {
	e.medium.mu.Lock()
	other, ok := e.medium.nodes[dst.NodeID()]
	e.medium.mu.Unlock()
	if !ok || !e.medium.inRange(e, other) {
		return nil
	}
	other.deliver(data, e.addr)
	return nil
}

// SetInputCallback implements radio.Radio.
func (e *Endpoint) SetInputCallback(fn radio.InputFunc) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.fn = fn
}

func (e *Endpoint) deliver(data []byte, src radio.Addr) {
	e.mu.Lock()
	fn := e.fn
	dst := e.addr
	e.mu.Unlock()
	if fn != nil {
		fn(data, src, dst)
	}
}
