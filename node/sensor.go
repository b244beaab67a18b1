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
	"waternet/led"
	"waternet/logtap"
	"waternet/power"
	"waternet/radio"
	"waternet/rank"
	"waternet/telemetry"
	"waternet/valve"
)

// SensorDeps collects the Sensor role's external collaborators. Energest is
// only consulted when cfg.Variant is Energised. Telemetry may be left nil,
// in which case dispatch runs untraced.
type SensorDeps struct {
	Radio     radio.Radio
	Clock     clock.Clock
	Energest  energest.Source
	LED       led.LED
	Log       *logtap.Tap
	Rng       Rng
	Telemetry *telemetry.Handler
}

// Sensor is a tree leaf: it maintains its own rank, samples a synthetic
// reading once per SensorInterval and forwards it toward the root through
// its current parent, and opens its valve on an inbound OPEN_VALVE
// command. In the Energised variant, a node in Deep-LPM keeps beaconing
// (so the tree stays alive) but skips sampling entirely — the slope
// detector upstream simply sees a gap.
type Sensor struct {
	cfg  NodeConfig
	deps SensorDeps

	tree  *rank.Table[radio.Addr]
	valve *valve.State
	bat   *battery.Model
	pwr   power.Machine

	sensorTimer   clock.Timer
	sensorStarted bool
	packets       chan packetMsg
	status        chan chan Snapshot
}

// NewSensor creates a Sensor node and wires its radio callback.
func NewSensor(cfg NodeConfig, deps SensorDeps) *Sensor {
	isRoot := cfg.NodeID == cfg.BorderNodeID
	var tree *rank.Table[radio.Addr]
	if isRoot {
		tree = rank.NewRoot[radio.Addr]()
	} else {
		tree = rank.NewUnjoined[radio.Addr](cfg.Variant == Energised)
	}
	s := &Sensor{
		cfg:     cfg,
		deps:    deps,
		tree:    tree,
		packets: make(chan packetMsg, queueCapacity),
		status:  make(chan chan Snapshot),
	}
	if cfg.Variant == Energised {
		s.bat = battery.New(deps.Energest)
	}
	deps.Radio.SetInputCallback(s.onPacket)
	return s
}

func (s *Sensor) onPacket(data []byte, src, dst radio.Addr) {
	f, err := frame.Decode(s.cfg.Variant, data)
	if err != nil {
		return
	}
	enqueue(s.packets, packetMsg{f: f, src: src})
}

// Run drives Sensor's event loop until ctx is cancelled. The sensor timer
// is created unarmed and only set once the node has joined the tree, so
// its channel simply never fires before then.
func (s *Sensor) Run(ctx context.Context) error {
	if s.tree.IsRoot {
		s.deps.Log.Tree("Node %d: I am root (rank 0)", s.cfg.NodeID)
	}

	helloTimer := s.deps.Clock.NewTimer()
	helloTimer.Set(jitter(HelloInterval(s.cfg.NodeID, s.cfg.BorderNodeID), s.deps.Rng))

	energyTimer := s.deps.Clock.NewTimer()
	if s.cfg.Variant == Energised {
		energyTimer.Set(EnergyTickInterval)
	}

	s.sensorTimer = s.deps.Clock.NewTimer()
	s.valve = valve.New(s.deps.LED, s.deps.Clock.NewTimer())

	for {
		select {
		case <-ctx.Done():
			return nil
		case pkt := <-s.packets:
			s.dispatchPacket(ctx, pkt)
			drainAll(s.packets, func(p packetMsg) { s.dispatchPacket(ctx, p) })
		case <-energyTimer.C():
			s.tickEnergy()
			energyTimer.Reset()
		case <-helloTimer.C():
			s.sendHello()
			helloTimer.Reset()
			// The unaware build only learns its rank went valid by noticing
			// it on its own next beacon tick; the energised build instead
			// starts sampling the instant it gains a parent, in
			// handleHello, which is why this check is unaware-only.
			if s.cfg.Variant == Unaware && !s.sensorStarted && s.tree.MyRank != rank.Unjoined {
				s.startSensorTimer()
			}
		case <-s.sensorTimer.C():
			s.sendReading()
			s.sensorTimer.Reset()
		case <-s.valve.TimerChan():
			s.valve.Expired()
			s.deps.Log.Process("Node %d: valve CLOSED", s.cfg.NodeID)
		case resp := <-s.status:
			resp <- s.snapshot()
		}
	}
}

// Status asks the running event loop for a Snapshot, waiting up to
// statusTimeout for a reply. ok is false if the loop didn't answer in time
// (typically because it has already returned).
func (s *Sensor) Status() (snap Snapshot, ok bool) {
	resp := make(chan Snapshot, 1)
	select {
	case s.status <- resp:
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

func (s *Sensor) snapshot() Snapshot {
	snap := Snapshot{
		NodeID:    s.cfg.NodeID,
		Role:      RoleSensor,
		Rank:      s.tree.MyRank,
		HasParent: s.tree.HasParent,
		ValveOpen: s.valve.Open,
	}
	if s.tree.HasParent {
		snap.ParentID = s.tree.Parent.NodeID()
	}
	if s.cfg.Variant == Energised {
		snap.Battery = s.bat.Level
		snap.PowerState = s.pwr.State.String()
	}
	return snap
}

func (s *Sensor) dispatchPacket(ctx context.Context, pkt packetMsg) {
	name := "sensor.hello_receipt"
	if pkt.f.Type == frame.TypeCommand {
		name = "sensor.command_receipt"
	}
	s.deps.Telemetry.Span(ctx, name, func(context.Context) {
		s.handlePacket(pkt)
	})
}

func (s *Sensor) handlePacket(pkt packetMsg) {
	switch pkt.f.Type {
	case frame.TypeHello:
		s.handleHello(pkt.src, pkt.f.Hello)
	case frame.TypeCommand:
		s.handleCommand(pkt.f.Command)
	}
}

func (s *Sensor) handleHello(src radio.Addr, h *frame.Hello) {
	outcome := s.tree.OnHello(src, h.Rank, h.Battery)
	if outcome != rank.NewParent {
		return
	}
	if s.cfg.Variant == Energised {
		s.deps.Log.Tree("Node %d: new parent -> %d (rank=%d, bat=%d)",
			s.cfg.NodeID, src.NodeID(), s.tree.MyRank, h.Battery)
		if !s.sensorStarted {
			s.startSensorTimer()
		}
	} else {
		s.deps.Log.Tree("Node %d: new parent -> %d (rank %d)",
			s.cfg.NodeID, src.NodeID(), s.tree.MyRank)
	}
}

func (s *Sensor) startSensorTimer() {
	s.sensorTimer.Set(SensorInterval)
	s.sensorStarted = true
}

func (s *Sensor) handleCommand(cmd *frame.Command) {
	if s.cfg.Variant == Energised {
		// The energised build opens on any COMMAND frame regardless of its
		// code, unlike the unaware build below — a real asymmetry carried
		// over from the source firmware, not an omission.
		s.bat.Debit(battery.CostValveReceive)
	} else if cmd.Code != 1 {
		return
	}
	s.valve.Received()
	s.deps.Log.Process("Node %d: valve OPEN", s.cfg.NodeID)
}

func (s *Sensor) sendReading() {
	if s.cfg.Variant == Energised && s.pwr.State == power.DeepLPM {
		s.deps.Log.Dlpm("Node %d: in DEEP LPM, skipping sensor send", s.cfg.NodeID)
		return
	}
	if !s.tree.HasParent {
		return
	}
	reading := uint16(s.deps.Rng.Intn(100))
	buf := frame.EncodeSensor(frame.Sensor{SourceID: s.cfg.NodeID, Value: reading})
	if err := s.deps.Radio.Unicast(s.tree.Parent, buf); err != nil {
		return
	}
	if s.cfg.Variant == Energised {
		s.bat.Debit(battery.CostSensorSend)
	}
	s.deps.Log.Process("Node %d: send reading %d to %d", s.cfg.NodeID, reading, s.tree.Parent.NodeID())
}

func (s *Sensor) sendHello() {
	h := frame.Hello{Rank: s.tree.MyRank}
	if s.cfg.Variant == Energised {
		h.Battery = frame.ClampBattery(s.bat.Level)
		h.State = frame.PowerState(s.pwr.State)
	}
	_ = s.deps.Radio.Broadcast(frame.EncodeHello(s.cfg.Variant, h))
	if s.cfg.Variant == Energised {
		s.bat.Debit(battery.CostHello)
		s.deps.Log.Tree("Node %d: HELLO rank=%d bat=%d state=%d", s.cfg.NodeID, h.Rank, h.Battery, uint8(h.State))
	} else {
		// The unaware sensor build's beacon line carries an extra "HELLO "
		// that the border and computation builds' equivalent line doesn't;
		// that asymmetry is preserved from the source firmware rather than
		// "fixed", since it is part of the logged contract.
		s.deps.Log.Tree("HELLO Node %d: broadcast rank %d", s.cfg.NodeID, h.Rank)
	}
}

func (s *Sensor) tickEnergy() {
	s.bat.Tick()
	if transitioned, _, to := s.pwr.Tick(s.bat); transitioned {
		s.deps.Log.Mode("Node %d: %s, battery=%.1f%%", s.cfg.NodeID, modeLabel(to), s.bat.Level)
	}
}
