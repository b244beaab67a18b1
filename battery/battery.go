// Copyright 2016 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package battery implements the energised variant's energy model: a
// simulated battery percentage debited from energest activity-time deltas
// and event-driven costs, recharged stepwise while sleeping.
package battery

import "waternet/energest"

// Max is the maximum (and starting) battery percentage.
const Max = 100.0

// Event-driven debit costs, per spec.md §4.2.
const (
	CostHello          = 1.0
	CostForwardSensor  = 3.0 // Computation forwarding a sensor frame
	CostCommand        = 2.0 // Computation or Border sending a command
	CostValveReceive   = 1.0 // Sensor receiving an open-valve command
	CostSensorSend     = 3.0 // leaf sending a reading
)

// Per-tick activity-time debit weights, per spec.md §4.2.
const (
	weightCPU = 0.2
	weightLPM = 0.02
	weightTX  = 1.0
	weightRX  = 1.0
)

// Model tracks one node's battery level and the last-seen energest
// snapshot used to compute per-tick deltas.
type Model struct {
	Level float64

	src  energest.Source
	last [4]uint32 // indexed by energest.Kind
}

// New creates a Model at Max charge, snapshotting src's current counters so
// the first Tick only accounts for activity since now.
func New(src energest.Source) *Model {
	m := &Model{Level: Max, src: src}
	src.Flush()
	for k := energest.CPU; k <= energest.RX; k++ {
		m.last[k] = src.Time(k)
	}
	return m
}

// Tick debits the battery for one energy-tick's worth of activity-time
// deltas since the last Tick or New call. Call once per second per
// spec.md §4.2.
func (m *Model) Tick() {
	m.src.Flush()
	dCPU := delta(m.last[energest.CPU], m.src.Time(energest.CPU))
	dLPM := delta(m.last[energest.LPM], m.src.Time(energest.LPM))
	dTX := delta(m.last[energest.TX], m.src.Time(energest.TX))
	dRX := delta(m.last[energest.RX], m.src.Time(energest.RX))
	m.last[energest.CPU] = m.src.Time(energest.CPU)
	m.last[energest.LPM] = m.src.Time(energest.LPM)
	m.last[energest.TX] = m.src.Time(energest.TX)
	m.last[energest.RX] = m.src.Time(energest.RX)

	tps := float64(m.src.TicksPerSecond())
	m.Debit(float64(dCPU)/tps*weightCPU +
		float64(dLPM)/tps*weightLPM +
		float64(dTX)/tps*weightTX +
		float64(dRX)/tps*weightRX)
}

func delta(last, now uint32) uint32 {
	// Activity counters are cumulative and monotonic. The uint32
	// subtraction wraps modulo 2^32, as the source firmware's unsigned
	// subtraction does, so the delta is still correct across a single
	// counter wrap between two ticks.
	return now - last
}

// Debit subtracts cost from the battery, clamping at 0 (Open Question 4:
// battery never goes negative).
func (m *Model) Debit(cost float64) {
	m.Level -= cost
	if m.Level < 0 {
		m.Level = 0
	}
}

// Recharge adds amount, clamped at Max.
func (m *Model) Recharge(amount float64) {
	m.Level += amount
	if m.Level > Max {
		m.Level = Max
	}
}
