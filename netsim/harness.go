// Copyright 2016 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package netsim

import (
	"bytes"
	"context"
	"sync"

	"waternet/clock/clocktest"
	"waternet/energest/energesttest"
	"waternet/led/ledtest"
	"waternet/logtap"
	"waternet/node"
	"waternet/serial/serialtest"
	"waternet/telemetry"
)

// Harness drives several node.Border/Computation/Sensor role loops over a
// shared Medium and a shared clocktest.Virtual clock, so multi-node
// scenarios (tree formation, parent switching, trend-triggered commands)
// run deterministically and instantly instead of for real wall-clock
// minutes. All roles share one logtap.Tap writing into LogBuf, so scenario
// tests assert on the same external log contract a real deployment would
// be grepped for.
type Harness struct {
	Clock   *clocktest.Virtual
	Medium  *Medium
	Log     *logtap.Tap
	LogBuf  *bytes.Buffer
	Variant node.Variant
	Border  uint8

	// Telemetry optionally maps a node id to the span handler its role
	// loop should dispatch through. A node with no entry runs untraced.
	// cmd/waternode populates this before adding a node when a tracer
	// provider is configured; scenario tests leave it nil.
	Telemetry map[uint8]*telemetry.Handler

	mu      sync.Mutex
	led     map[uint8]*ledtest.Record
	serial  map[uint8]*serialtest.Fake
	fakeSrc map[uint8]*energesttest.Fake

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewHarness creates an empty Harness. rangeUnits bounds the Medium's
// broadcast radius.
func NewHarness(rangeUnits float64, variant node.Variant, borderID uint8) *Harness {
	var buf bytes.Buffer
	ctx, cancel := context.WithCancel(context.Background())
	return &Harness{
		Clock:   clocktest.NewVirtual(),
		Medium:  NewMedium(rangeUnits),
		Log:     logtap.New(&buf),
		LogBuf:  &buf,
		Variant: variant,
		Border:  borderID,
		led:     make(map[uint8]*ledtest.Record),
		serial:  make(map[uint8]*serialtest.Fake),
		fakeSrc: make(map[uint8]*energesttest.Fake),
		ctx:     ctx,
		cancel:  cancel,
	}
}

func (h *Harness) cfg(nodeID uint8) node.NodeConfig {
	return node.NodeConfig{NodeID: nodeID, BorderNodeID: h.Border, Variant: h.Variant}
}

func (h *Harness) energest(nodeID uint8) *energesttest.Fake {
	f := energesttest.NewFake(100)
	h.mu.Lock()
	h.fakeSrc[nodeID] = f
	h.mu.Unlock()
	return f
}

// Energest returns the fake energy source backing nodeID, for scenario
// tests that need to drive activity-time deltas directly (only meaningful
// for the Energised variant).
func (h *Harness) Energest(nodeID uint8) *energesttest.Fake {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.fakeSrc[nodeID]
}

// LED returns the fake LED backing a sensor node, for asserting valve
// actuation.
func (h *Harness) LED(nodeID uint8) *ledtest.Record {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.led[nodeID]
}

// Serial returns the fake serial port backing the border node.
func (h *Harness) Serial(nodeID uint8) *serialtest.Fake {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.serial[nodeID]
}

// AddBorder creates and starts a Border role at pos.
func (h *Harness) AddBorder(nodeID uint8, pos Position, rng node.Rng) *node.Border {
	ep := h.Medium.Join(nodeID, pos)
	sp := &serialtest.Fake{}
	h.mu.Lock()
	h.serial[nodeID] = sp
	h.mu.Unlock()

	deps := node.BorderDeps{
		Radio:     ep,
		Clock:     h.Clock,
		Serial:    sp,
		Log:       h.Log,
		Rng:       rng,
		Telemetry: h.Telemetry[nodeID],
	}
	if h.Variant == node.Energised {
		deps.Energest = h.energest(nodeID)
	}
	b := node.NewBorder(h.cfg(nodeID), deps)
	h.start(b)
	return b
}

// AddComputation creates and starts a Computation role at pos.
func (h *Harness) AddComputation(nodeID uint8, pos Position, rng node.Rng) *node.Computation {
	ep := h.Medium.Join(nodeID, pos)
	deps := node.ComputationDeps{
		Radio:     ep,
		Clock:     h.Clock,
		Log:       h.Log,
		Rng:       rng,
		Telemetry: h.Telemetry[nodeID],
	}
	if h.Variant == node.Energised {
		deps.Energest = h.energest(nodeID)
	}
	c := node.NewComputation(h.cfg(nodeID), deps)
	h.start(c)
	return c
}

// AddSensor creates and starts a Sensor role at pos.
func (h *Harness) AddSensor(nodeID uint8, pos Position, rng node.Rng) *node.Sensor {
	ep := h.Medium.Join(nodeID, pos)
	rec := ledtest.NewRecord()
	h.mu.Lock()
	h.led[nodeID] = rec
	h.mu.Unlock()

	deps := node.SensorDeps{
		Radio:     ep,
		Clock:     h.Clock,
		LED:       rec,
		Log:       h.Log,
		Rng:       rng,
		Telemetry: h.Telemetry[nodeID],
	}
	if h.Variant == node.Energised {
		deps.Energest = h.energest(nodeID)
	}
	s := node.NewSensor(h.cfg(nodeID), deps)
	h.start(s)
	return s
}

type runner interface {
	Run(context.Context) error
}

func (h *Harness) start(r runner) {
	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		_ = r.Run(h.ctx)
	}()
}

// Stop cancels every running role loop and waits for them to return.
func (h *Harness) Stop() {
	h.cancel()
	h.wg.Wait()
}
