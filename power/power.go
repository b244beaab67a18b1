// Copyright 2016 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package power implements the energised variant's power-state machine:
// Active, LPM and Deep-LPM, with hysteretic transitions driven solely by
// battery-level crossings, plus the stepwise recharge that only happens
// while sleeping.
package power

import "waternet/battery"

// State is one of the three power states a node can be in.
type State int

const (
	Active State = iota
	LPM
	DeepLPM
)

func (s State) String() string {
	switch s {
	case Active:
		return "ACTIVE"
	case LPM:
		return "LPM"
	case DeepLPM:
		return "DEEP_LPM"
	default:
		return "UNKNOWN"
	}
}

// Transition thresholds and recharge cadence, per spec.md §4.2-4.3. There
// is deliberately no LPM→Active rule: a node that recharges out of LPM
// stays in LPM until a further dip drives it into Deep-LPM, from which it
// can wake directly to Active (Open Question 3, left as specified).
const (
	lpmThreshold     = 30.0
	deepLPMThreshold = 10.0
	wakeThreshold    = 90.0
	lpmRechargeEvery = 10
	deepRechargeEvery = 2
	rechargeAmount   = 1.0
)

// Machine is one node's power-state machine. Zero value starts Active.
type Machine struct {
	State State

	lpmTicks  int
	deepTicks int
}

// Tick applies one energy tick's recharge and transition evaluation. It
// must be called after the tick's battery debit (battery.Model.Tick) has
// already been applied. It returns whether a transition happened and the
// state before/after, so the caller can emit the MODE/DLPM log lines.
func (m *Machine) Tick(bat *battery.Model) (transitioned bool, from, to State) {
	switch m.State {
	case LPM:
		m.lpmTicks++
		if m.lpmTicks >= lpmRechargeEvery {
			bat.Recharge(rechargeAmount)
			m.lpmTicks = 0
		}
	case DeepLPM:
		m.deepTicks++
		if m.deepTicks >= deepRechargeEvery {
			bat.Recharge(rechargeAmount)
			m.deepTicks = 0
		}
	}

	from = m.State
	switch {
	case m.State == Active && bat.Level <= lpmThreshold:
		m.State = LPM
	case m.State == LPM && bat.Level <= deepLPMThreshold:
		m.State = DeepLPM
	case m.State == DeepLPM && bat.Level >= wakeThreshold:
		m.State = Active
		m.deepTicks = 0
	}
	return m.State != from, from, m.State
}
