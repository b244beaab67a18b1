// Copyright 2016 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package rank

import "testing"

func TestRootIgnoresHello(t *testing.T) {
	tbl := NewRoot[string]()
	outcome := tbl.OnHello("p1", 0, 0)
	if outcome != Ignored || tbl.MyRank != 0 {
		t.Fatalf("root accepted a HELLO: outcome=%v rank=%v", outcome, tbl.MyRank)
	}
}

func TestUnjoinedIgnoresUnjoinedSender(t *testing.T) {
	tbl := NewUnjoined[string](false)
	outcome := tbl.OnHello("p1", Unjoined, 0)
	if outcome != Ignored || tbl.HasParent {
		t.Fatalf("accepted a HELLO from an unjoined sender: outcome=%v", outcome)
	}
}

func TestFirstHelloJoinsTree(t *testing.T) {
	tbl := NewUnjoined[string](false)
	outcome := tbl.OnHello("p1", 0, 0)
	if outcome != NewParent || tbl.MyRank != 1 || tbl.Parent != "p1" || !tbl.HasParent {
		t.Fatalf("outcome=%v rank=%v parent=%v hasParent=%v", outcome, tbl.MyRank, tbl.Parent, tbl.HasParent)
	}
}

func TestBetterRankSwitchesParent(t *testing.T) {
	tbl := NewUnjoined[string](false)
	tbl.OnHello("p1", 2, 0) // rank 3
	outcome := tbl.OnHello("p2", 0, 0) // rank 1, strictly better
	if outcome != NewParent || tbl.MyRank != 1 || tbl.Parent != "p2" {
		t.Fatalf("outcome=%v rank=%v parent=%v", outcome, tbl.MyRank, tbl.Parent)
	}
}

func TestWorseRankIgnored(t *testing.T) {
	tbl := NewUnjoined[string](false)
	tbl.OnHello("p1", 0, 0) // rank 1
	outcome := tbl.OnHello("p2", 5, 0) // rank 6, worse
	if outcome != Ignored || tbl.Parent != "p1" {
		t.Fatalf("outcome=%v parent=%v", outcome, tbl.Parent)
	}
}

func TestSameParentRefreshesEnergyWithoutRankChange(t *testing.T) {
	tbl := NewUnjoined[string](true)
	tbl.OnHello("p1", 0, 50)
	outcome := tbl.OnHello("p1", 0, 77)
	if outcome != EnergyRefreshed || tbl.ParentEnergy != 77 || tbl.MyRank != 1 {
		t.Fatalf("outcome=%v energy=%v rank=%v", outcome, tbl.ParentEnergy, tbl.MyRank)
	}
}

// TestEqualRankEnergySwitch reproduces spec.md scenario S6: a same-rank
// neighbor whose energy exceeds the current parent's by more than the
// hysteresis margin causes a switch; a neighbor within the margin does not.
func TestEqualRankEnergySwitch(t *testing.T) {
	tbl := NewUnjoined[string](true)
	tbl.OnHello("p1", 0, 40) // rank 1, parent energy 40

	if outcome := tbl.OnHello("p2", 0, 65); outcome != Ignored {
		t.Fatalf("65 <= 40+30 should not switch, got outcome=%v parent=%v", outcome, tbl.Parent)
	}
	if tbl.Parent != "p1" {
		t.Fatalf("parent changed on a sub-threshold energy beacon: %v", tbl.Parent)
	}

	outcome := tbl.OnHello("p2", 0, 80)
	if outcome != NewParent || tbl.Parent != "p2" || tbl.ParentEnergy != 80 {
		t.Fatalf("80 > 40+30 should switch, got outcome=%v parent=%v energy=%v", outcome, tbl.Parent, tbl.ParentEnergy)
	}
}

func TestEnergyTiebreakDisabledWhenNotEnergised(t *testing.T) {
	tbl := NewUnjoined[string](false)
	tbl.OnHello("p1", 0, 40)
	outcome := tbl.OnHello("p2", 0, 255)
	if outcome != Ignored || tbl.Parent != "p1" {
		t.Fatalf("unaware table applied an energy tiebreak: outcome=%v parent=%v", outcome, tbl.Parent)
	}
}
