// Copyright 2016 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package node

import (
	"context"
	"time"

	"waternet/battery"
	"waternet/clock"
	"waternet/energest"
	"waternet/frame"
	"waternet/logtap"
	"waternet/power"
	"waternet/radio"
	"waternet/rank"
	"waternet/telemetry"
	"waternet/window"
)

// ComputationDeps collects the Computation role's external collaborators.
// Energest is only consulted when cfg.Variant is Energised. Telemetry may
// be left nil, in which case dispatch runs untraced.
type ComputationDeps struct {
	Radio     radio.Radio
	Clock     clock.Clock
	Energest  energest.Source
	Log       *logtap.Tap
	Rng       Rng
	Telemetry *telemetry.Handler
}

// Computation is an interior tree node: it relays HELLO beacons to
// maintain rank, and owns a bounded set of per-sensor sliding windows it
// uses to detect a sustained rising trend and issue an open-valve command
// directly to the sensor that's trending. In the Energised variant, once a
// node drops into Deep-LPM it stops analysing and instead forwards sensor
// frames upstream unexamined, handing the trend detection off to whichever
// ancestor is still awake.
type Computation struct {
	cfg  NodeConfig
	deps ComputationDeps

	tree    *rank.Table[radio.Addr]
	windows *window.Table
	bat     *battery.Model
	pwr     power.Machine

	packets chan packetMsg
	status  chan chan Snapshot
}

// NewComputation creates a Computation node and wires its radio callback.
func NewComputation(cfg NodeConfig, deps ComputationDeps) *Computation {
	isRoot := cfg.NodeID == cfg.BorderNodeID
	var tree *rank.Table[radio.Addr]
	if isRoot {
		tree = rank.NewRoot[radio.Addr]()
	} else {
		tree = rank.NewUnjoined[radio.Addr](cfg.Variant == Energised)
	}
	c := &Computation{
		cfg:     cfg,
		deps:    deps,
		tree:    tree,
		windows: window.NewTable(cfg.Variant == Unaware),
		packets: make(chan packetMsg, queueCapacity),
		status:  make(chan chan Snapshot),
	}
	if cfg.Variant == Energised {
		c.bat = battery.New(deps.Energest)
	}
	deps.Radio.SetInputCallback(c.onPacket)
	return c
}

func (c *Computation) onPacket(data []byte, src, dst radio.Addr) {
	f, err := frame.Decode(c.cfg.Variant, data)
	if err != nil {
		return
	}
	enqueue(c.packets, packetMsg{f: f, src: src})
}

// Run drives Computation's event loop until ctx is cancelled.
func (c *Computation) Run(ctx context.Context) error {
	if c.tree.IsRoot {
		c.deps.Log.Tree("Node %d: I am root (rank 0)", c.cfg.NodeID)
	}

	helloTimer := c.deps.Clock.NewTimer()
	helloTimer.Set(jitter(HelloInterval(c.cfg.NodeID, c.cfg.BorderNodeID), c.deps.Rng))

	energyTimer := c.deps.Clock.NewTimer()
	if c.cfg.Variant == Energised {
		energyTimer.Set(EnergyTickInterval)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case pkt := <-c.packets:
			c.dispatchPacket(ctx, pkt)
			drainAll(c.packets, func(p packetMsg) { c.dispatchPacket(ctx, p) })
		case <-energyTimer.C():
			c.tickEnergy()
			energyTimer.Reset()
		case <-helloTimer.C():
			c.sendHello()
			helloTimer.Reset()
		case resp := <-c.status:
			resp <- c.snapshot()
		}
	}
}

// Status asks the running event loop for a Snapshot, waiting up to
// statusTimeout for a reply. ok is false if the loop didn't answer in time
// (typically because it has already returned).
func (c *Computation) Status() (snap Snapshot, ok bool) {
	resp := make(chan Snapshot, 1)
	select {
	case c.status <- resp:
	case <-time.After(statusTimeout):
		return Snapshot{}, false
	}
	select {
	case snap = <-resp:
		return snap, true
	case <-time.After(statusTimeout):
		return Snapshot{}, false
	}
}

func (c *Computation) snapshot() Snapshot {
	s := Snapshot{
		NodeID:         c.cfg.NodeID,
		Role:           RoleComputation,
		Rank:           c.tree.MyRank,
		HasParent:      c.tree.HasParent,
		WindowOccupied: c.windows.AllocatedCount(),
	}
	if c.tree.HasParent {
		s.ParentID = c.tree.Parent.NodeID()
	}
	if c.cfg.Variant == Energised {
		s.Battery = c.bat.Level
		s.PowerState = c.pwr.State.String()
	}
	return s
}

func (c *Computation) dispatchPacket(ctx context.Context, pkt packetMsg) {
	name := "computation.hello_receipt"
	if pkt.f.Type == frame.TypeSensor {
		name = "computation.sensor_receipt"
	}
	c.deps.Telemetry.Span(ctx, name, func(context.Context) {
		c.handlePacket(pkt)
	})
}

func (c *Computation) handlePacket(pkt packetMsg) {
	switch pkt.f.Type {
	case frame.TypeHello:
		c.handleHello(pkt.src, pkt.f.Hello)
	case frame.TypeSensor:
		c.handleSensor(pkt.src, pkt.f.Sensor)
	}
}

func (c *Computation) handleHello(src radio.Addr, h *frame.Hello) {
	outcome := c.tree.OnHello(src, h.Rank, h.Battery)
	if outcome == rank.NewParent {
		if c.cfg.Variant == Energised {
			c.deps.Log.Tree("Node %d: new parent -> %d (rank=%d, bat=%d)",
				c.cfg.NodeID, src.NodeID(), c.tree.MyRank, h.Battery)
		} else {
			c.deps.Log.Tree("Node %d: new parent -> %d (rank %d)",
				c.cfg.NodeID, src.NodeID(), c.tree.MyRank)
		}
	}
}

func (c *Computation) handleSensor(src radio.Addr, s *frame.Sensor) {
	if c.cfg.Variant == Energised && c.pwr.State == power.DeepLPM {
		c.forwardSensor(s)
		return
	}
	w, ok := c.windows.Get(s.SourceID, c.now())
	if !ok {
		// No free slot and nothing stale to evict: drop, matching the
		// source firmware's get_window() returning NULL.
		return
	}
	w.Append(s.Value, c.now())
	if !w.Full() {
		return
	}
	slope := w.Slope()
	if c.cfg.Variant == Energised {
		c.deps.Log.Process("Node %d: slope=%.2f sensor=%d", c.cfg.NodeID, slope, s.SourceID)
	} else {
		c.deps.Log.Process("Node %d: slope=%.2f for sensor %d", c.cfg.NodeID, slope, s.SourceID)
	}
	if slope > window.SlopeThreshold {
		c.sendOpenValve(s.SourceID)
	}
}

func (c *Computation) forwardSensor(s *frame.Sensor) {
	if !c.tree.HasParent {
		return
	}
	buf := frame.EncodeSensor(*s)
	if err := c.deps.Radio.Unicast(c.tree.Parent, buf); err != nil {
		return
	}
	c.bat.Debit(battery.CostForwardSensor)
	c.deps.Log.Process("Node %d: forward sensor %d to %d", c.cfg.NodeID, s.SourceID, c.tree.Parent.NodeID())
}

func (c *Computation) sendOpenValve(targetID uint8) {
	buf := frame.EncodeCommand(frame.Command{TargetID: targetID, Code: 1})
	if err := c.deps.Radio.Unicast(radio.NewAddr(targetID), buf); err != nil {
		return
	}
	if c.cfg.Variant == Energised {
		c.bat.Debit(battery.CostCommand)
		c.deps.Log.Process("Node %d: OPEN_VALVE -> %d", c.cfg.NodeID, targetID)
	} else {
		c.deps.Log.Process("Node %d: send OPEN_VALVE to %d", c.cfg.NodeID, targetID)
	}
}

func (c *Computation) sendHello() {
	h := frame.Hello{Rank: c.tree.MyRank}
	if c.cfg.Variant == Energised {
		h.Battery = frame.ClampBattery(c.bat.Level)
		h.State = frame.PowerState(c.pwr.State)
	}
	_ = c.deps.Radio.Broadcast(frame.EncodeHello(c.cfg.Variant, h))
	if c.cfg.Variant == Energised {
		c.bat.Debit(battery.CostHello)
		c.deps.Log.Tree("Node %d: HELLO rank=%d bat=%d state=%d", c.cfg.NodeID, h.Rank, h.Battery, uint8(h.State))
	} else {
		c.deps.Log.Tree("Node %d: broadcast rank %d", c.cfg.NodeID, h.Rank)
	}
}

func (c *Computation) tickEnergy() {
	c.bat.Tick()
	if transitioned, _, to := c.pwr.Tick(c.bat); transitioned {
		c.deps.Log.Mode("Node %d: %s, battery=%.1f%%", c.cfg.NodeID, modeLabel(to), c.bat.Level)
	}
}

func (c *Computation) now() time.Time { return c.deps.Clock.Now() }
