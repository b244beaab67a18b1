// Copyright 2016 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package battery

import (
	"testing"

	"waternet/energest"
	"waternet/energest/energesttest"
)

func TestNewStartsAtMax(t *testing.T) {
	fake := energesttest.NewFake(100)
	m := New(fake)
	if m.Level != Max {
		t.Fatalf("Level = %v, want %v", m.Level, Max)
	}
}

func TestTickDebitsWeightedActivityDelta(t *testing.T) {
	fake := energesttest.NewFake(10)
	m := New(fake)
	fake.Add(energest.CPU, 10)  // 10/10 * 0.2 = 0.2
	fake.Add(energest.TX, 5)    // 5/10 * 1.0 = 0.5
	m.Tick()
	want := Max - 0.7
	if diff := m.Level - want; diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("Level = %v, want %v", m.Level, want)
	}
}

func TestTickOnlyAccountsForDeltaSinceLastTick(t *testing.T) {
	fake := energesttest.NewFake(10)
	m := New(fake)
	fake.Add(energest.RX, 10) // 10/10 * 1.0 = 1.0
	m.Tick()
	first := m.Level
	m.Tick() // no new activity: delta is 0
	if m.Level != first {
		t.Fatalf("second Tick with no new activity changed Level: %v -> %v", first, m.Level)
	}
}

func TestDebitClampsAtZero(t *testing.T) {
	m := &Model{Level: 2}
	m.Debit(5)
	if m.Level != 0 {
		t.Fatalf("Level = %v, want 0", m.Level)
	}
}

func TestRechargeClampsAtMax(t *testing.T) {
	m := &Model{Level: 99}
	m.Recharge(5)
	if m.Level != Max {
		t.Fatalf("Level = %v, want %v", m.Level, Max)
	}
}
