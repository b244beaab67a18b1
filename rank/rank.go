// Copyright 2016 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package rank implements tree maintenance: rank tracking and parent
// selection (optionally energy-aware) from received HELLO beacons, per
// spec.md §4.4.
package rank

import "waternet/frame"

// Unjoined is the sentinel rank meaning "not yet part of the tree".
const Unjoined = frame.UnjoinedRank

// EnergyDiffThreshold is the hysteresis margin a same-rank neighbor's
// energy must exceed the current parent's by before a switch happens.
const EnergyDiffThreshold = 30

// Addr is the minimal address identity rank needs: comparable link-layer
// addresses. It is satisfied by radio.Addr without this package importing
// radio, keeping the dependency direction leaf-ward.
type Addr interface {
	comparable
}

// Table is one node's rank and parent state. Energised selects whether the
// energy-aware tiebreak (step 3's second clause) is evaluated; the
// unaware dialect never carries energy in its HELLO so the tiebreak can
// never fire there regardless of this flag, but keeping the flag explicit
// documents intent at call sites.
type Table[A Addr] struct {
	MyRank    uint16
	Parent    A
	HasParent bool
	ParentEnergy uint8

	IsRoot    bool
	Energised bool
}

// NewRoot creates a Table pinned at rank 0, as the Border always is from
// startup. The root never updates its rank or parent for the rest of the
// run.
func NewRoot[A Addr]() *Table[A] {
	return &Table[A]{MyRank: 0, IsRoot: true}
}

// NewUnjoined creates a Table for a non-root node, starting unjoined.
func NewUnjoined[A Addr](energised bool) *Table[A] {
	return &Table[A]{MyRank: Unjoined, Energised: energised}
}

// Outcome describes what OnHello did, for the caller to decide what (if
// anything) to log.
type Outcome int

const (
	// Ignored: the HELLO caused no state change (root, unjoined sender,
	// worse/equal candidate with no energy win, or unrelated sender).
	Ignored Outcome = iota
	// NewParent: rank and/or parent changed to src.
	NewParent
	// EnergyRefreshed: same parent, energy snapshot refreshed, rank
	// unchanged.
	EnergyRefreshed
)

// OnHello applies the rank-update algorithm from spec.md §4.4 for a HELLO
// received from src carrying recvRank and recvEnergy (recvEnergy is still
// stored as ParentEnergy, but only affects parent selection when Energised
// is true).
func (t *Table[A]) OnHello(src A, recvRank uint16, recvEnergy uint8) Outcome {
	if t.IsRoot {
		return Ignored
	}
	if recvRank == Unjoined {
		return Ignored
	}
	cand := recvRank + 1

	energyWin := t.Energised && cand == t.MyRank && (!t.HasParent || src != t.Parent) &&
		uint16(recvEnergy) > uint16(t.ParentEnergy)+EnergyDiffThreshold

	switch {
	case cand < t.MyRank:
		t.MyRank = cand
		t.Parent = src
		t.HasParent = true
		t.ParentEnergy = recvEnergy
		return NewParent
	case energyWin:
		t.MyRank = cand
		t.Parent = src
		t.HasParent = true
		t.ParentEnergy = recvEnergy
		return NewParent
	case t.HasParent && src == t.Parent:
		t.ParentEnergy = recvEnergy
		return EnergyRefreshed
	default:
		return Ignored
	}
}
