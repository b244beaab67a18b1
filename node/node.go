// Copyright 2016 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package node implements the three cooperative event loops — Border,
// Computation and Sensor — that drive the control plane described by
// spec.md, built from the leaf packages frame, radio, clock, energest,
// led, serial, battery, power, rank, window and valve. Each role's loop is
// its own type (mirroring the source firmware's three separate
// PROCESS_THREAD functions); they share state and behavior through those
// common packages rather than through inheritance.
package node

import (
	"time"

	"waternet/frame"
)

// Variant selects which frame dialect (and therefore which feature set —
// battery model, power states, energy-aware tiebreak) a node build uses.
// It is exactly frame.Dialect; the alias exists so callers configuring a
// node don't need to import package frame just to pick a variant.
type Variant = frame.Dialect

const (
	Unaware   = frame.Unaware
	Energised = frame.Energised
)

// Role identifies which of the three node roles a process implements.
type Role int

const (
	RoleBorder Role = iota
	RoleComputation
	RoleSensor
)

func (r Role) String() string {
	switch r {
	case RoleBorder:
		return "border"
	case RoleComputation:
		return "computation"
	case RoleSensor:
		return "sensor"
	default:
		return "unknown"
	}
}

// DefaultBorderNodeID is BORDER_NODE_ID's compile-time default.
const DefaultBorderNodeID uint8 = 1

// SensorInterval is how often a Sensor leaf samples and sends a reading.
const SensorInterval = 60 * time.Second

// EnergyTickInterval is the energised variant's battery/power-state
// evaluation cadence.
const EnergyTickInterval = 1 * time.Second

// HelloInterval returns the HELLO re-arm period for a node: 10s at the
// root, 15s everywhere else, per spec.md §4.4.
func HelloInterval(nodeID, borderNodeID uint8) time.Duration {
	if nodeID == borderNodeID {
		return 10 * time.Second
	}
	return 15 * time.Second
}

// Rng is the randomness capability used for HELLO jitter and synthetic
// sensor readings, exposed as an interface (per spec.md §9's design note)
// so tests can seed determinism instead of depending on the global
// math/rand state.
type Rng interface {
	// Intn returns a pseudo-random number in [0, n).
	Intn(n int) int
}

// jitter returns a uniform-random duration in [0, d).
func jitter(d time.Duration, rng Rng) time.Duration {
	if d <= 0 {
		return 0
	}
	return time.Duration(rng.Intn(int(d)))
}

// Snapshot is a point-in-time, read-only view of a running node's tree and
// energy state, for a status command or the simulator's live dashboard.
// Unaware-variant nodes leave Battery/PowerState at their zero value, since
// that dialect never tracks either.
type Snapshot struct {
	NodeID         uint8
	Role           Role
	Rank           uint16
	HasParent      bool
	ParentID       uint8
	Battery        float64
	PowerState     string
	WindowOccupied int
	ValveOpen      bool
}

// statusTimeout bounds how long Status waits for the event loop to answer a
// status request, so a dashboard polling a node whose Run loop has already
// returned doesn't hang forever.
const statusTimeout = 200 * time.Millisecond
