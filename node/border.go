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
	"waternet/serial"
	"waternet/telemetry"
)

// BorderDeps collects the Border role's external collaborators. Energest is
// only consulted when cfg.Variant is Energised. Telemetry may be left nil,
// in which case dispatch runs untraced.
type BorderDeps struct {
	Radio     radio.Radio
	Clock     clock.Clock
	Energest  energest.Source
	Serial    serial.Port
	Log       *logtap.Tap
	Rng       Rng
	Telemetry *telemetry.Handler
}

// Border is the root of the tree: pinned at rank 0 from startup, it never
// updates its rank or parent, relays PC commands from its serial line onto
// the radio, and prints every sensor reading it receives. Exactly one node
// in a deployment or simulation run is built as a Border.
type Border struct {
	cfg  NodeConfig
	deps BorderDeps

	myRank uint16
	bat    *battery.Model
	pwr    power.Machine

	packets chan packetMsg
	lines   chan serial.Command
	status  chan chan Snapshot
}

// NewBorder creates a Border node and wires its input callbacks. cfg.NodeID
// must equal cfg.BorderNodeID.
func NewBorder(cfg NodeConfig, deps BorderDeps) *Border {
	b := &Border{
		cfg:     cfg,
		deps:    deps,
		myRank:  0,
		packets: make(chan packetMsg, queueCapacity),
		lines:   make(chan serial.Command, queueCapacity),
		status:  make(chan chan Snapshot),
	}
	if cfg.Variant == Energised {
		b.bat = battery.New(deps.Energest)
	}
	deps.Radio.SetInputCallback(b.onPacket)
	deps.Serial.SetLineCallback(b.onLine)
	return b
}

func (b *Border) onPacket(data []byte, src, dst radio.Addr) {
	f, err := frame.Decode(b.cfg.Variant, data)
	if err != nil {
		return
	}
	enqueue(b.packets, packetMsg{f: f, src: src})
}

func (b *Border) onLine(line string) {
	cmd, ok := serial.ParseCommandLine(line)
	if !ok {
		return
	}
	enqueue(b.lines, cmd)
}

// Run drives Border's event loop until ctx is cancelled. The select lists
// queued packets, queued serial lines, the energy tick (if Energised) and
// the HELLO beacon in the order the source firmware's PROCESS_THREAD
// checked them, but Go's select picks at random among cases that are ready
// at once, so no priority between simultaneously ready events is enforced.
// A packet or line wakeup drains its whole queue before the next select.
func (b *Border) Run(ctx context.Context) error {
	b.deps.Log.Tree("Node %d: I am root (rank 0)", b.cfg.NodeID)

	helloTimer := b.deps.Clock.NewTimer()
	helloTimer.Set(jitter(HelloInterval(b.cfg.NodeID, b.cfg.BorderNodeID), b.deps.Rng))

	// energyTimer is only ever armed for the Energised variant; left
	// unarmed its channel never fires, so the select below needs no branch
	// on cfg.Variant.
	energyTimer := b.deps.Clock.NewTimer()
	if b.cfg.Variant == Energised {
		energyTimer.Set(EnergyTickInterval)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case pkt := <-b.packets:
			b.dispatchPacket(ctx, pkt)
			drainAll(b.packets, func(p packetMsg) { b.dispatchPacket(ctx, p) })
		case cmd := <-b.lines:
			b.dispatchCommand(ctx, cmd)
			drainAll(b.lines, func(c serial.Command) { b.dispatchCommand(ctx, c) })
		case <-energyTimer.C():
			b.tickEnergy()
			energyTimer.Reset()
		case <-helloTimer.C():
			b.sendHello()
			helloTimer.Reset()
		case resp := <-b.status:
			resp <- b.snapshot()
		}
	}
}

// Status asks the running event loop for a Snapshot, waiting up to
// statusTimeout for a reply. ok is false if the loop didn't answer in time
// (typically because it has already returned).
func (b *Border) Status() (snap Snapshot, ok bool) {
	resp := make(chan Snapshot, 1)
	select {
	case b.status <- resp:
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

func (b *Border) snapshot() Snapshot {
	s := Snapshot{NodeID: b.cfg.NodeID, Role: RoleBorder, Rank: b.myRank}
	if b.cfg.Variant == Energised {
		s.Battery = b.bat.Level
		s.PowerState = b.pwr.State.String()
	}
	return s
}

func (b *Border) dispatchPacket(ctx context.Context, pkt packetMsg) {
	b.deps.Telemetry.Span(ctx, "border.sensor_receipt", func(context.Context) {
		b.handlePacket(pkt)
	})
}

func (b *Border) dispatchCommand(ctx context.Context, cmd serial.Command) {
	b.deps.Telemetry.Span(ctx, "border.command_receipt", func(context.Context) {
		b.handleCommand(cmd)
	})
}

func (b *Border) handlePacket(pkt packetMsg) {
	if pkt.f.Type == frame.TypeSensor {
		b.deps.Log.Process("Server got ID=%d, value=%d", pkt.f.Sensor.SourceID, pkt.f.Sensor.Value)
	}
	// HELLO and COMMAND frames arriving at the root are not meaningful: the
	// root never updates rank, and it only ever sends commands, never
	// receives them.
}

func (b *Border) handleCommand(cmd serial.Command) {
	buf := frame.EncodeCommand(frame.Command{TargetID: cmd.Node, Code: cmd.Code})
	if err := b.deps.Radio.Unicast(radio.NewAddr(cmd.Node), buf); err != nil {
		return
	}
	if b.cfg.Variant == Energised {
		b.bat.Debit(battery.CostCommand)
		b.deps.Log.Border("Sent cmd type=%d to %d", cmd.Type, cmd.Node)
	} else {
		b.deps.Log.Border("Sent cmd type=%d to %d (code=%d)", cmd.Type, cmd.Node, cmd.Code)
	}
}

func (b *Border) sendHello() {
	h := frame.Hello{Rank: b.myRank}
	if b.cfg.Variant == Energised {
		h.Battery = frame.ClampBattery(b.bat.Level)
		h.State = frame.PowerState(b.pwr.State)
	}
	_ = b.deps.Radio.Broadcast(frame.EncodeHello(b.cfg.Variant, h))
	if b.cfg.Variant == Energised {
		b.bat.Debit(battery.CostHello)
		b.deps.Log.Tree("Node %d: HELLO rank=%d bat=%d state=%d", b.cfg.NodeID, h.Rank, h.Battery, uint8(h.State))
	} else {
		b.deps.Log.Tree("Node %d: broadcast rank %d", b.cfg.NodeID, h.Rank)
	}
}

func (b *Border) tickEnergy() {
	b.bat.Tick()
	if transitioned, _, to := b.pwr.Tick(b.bat); transitioned {
		b.deps.Log.Mode("Node %d: %s, battery=%.1f%%", b.cfg.NodeID, modeLabel(to), b.bat.Level)
	}
}
