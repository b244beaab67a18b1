// Copyright 2016 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package window

import (
	"testing"
	"time"
)

func TestGetAllocatesUpToMaxSensors(t *testing.T) {
	tbl := NewTable(false)
	now := time.Unix(0, 0)
	for i := 0; i < MaxSensors; i++ {
		if _, ok := tbl.Get(uint8(i+1), now); !ok {
			t.Fatalf("slot %d: expected allocation to succeed", i)
		}
	}
	if _, ok := tbl.Get(uint8(MaxSensors+1), now); ok {
		t.Fatal("expected allocation to fail once all slots are occupied")
	}
	if n := tbl.AllocatedCount(); n != MaxSensors {
		t.Fatalf("AllocatedCount = %d, want %d", n, MaxSensors)
	}
}

func TestGetReusesMatchingSlot(t *testing.T) {
	tbl := NewTable(false)
	now := time.Unix(0, 0)
	w1, _ := tbl.Get(3, now)
	w1.Append(10, now)
	w2, _ := tbl.Get(3, now)
	if w2 != w1 || w2.Count() != 1 {
		t.Fatalf("expected the same window to be reused, count=%d", w2.Count())
	}
}

func TestExpireStaleFreesASlotOnlyForUnawareVariant(t *testing.T) {
	tbl := NewTable(true)
	start := time.Unix(0, 0)
	for i := 0; i < MaxSensors; i++ {
		tbl.Get(uint8(i+1), start)
	}
	later := start.Add(Expiry + time.Second)
	if _, ok := tbl.Get(99, later); !ok {
		t.Fatal("expected a stale slot to be evicted and reused")
	}
}

func TestNoExpiryWhenExpireStaleDisabled(t *testing.T) {
	tbl := NewTable(false)
	start := time.Unix(0, 0)
	for i := 0; i < MaxSensors; i++ {
		tbl.Get(uint8(i+1), start)
	}
	later := start.Add(Expiry + time.Hour)
	if _, ok := tbl.Get(99, later); ok {
		t.Fatal("energised variant must never expire windows")
	}
}

func TestFullBecomesTrueAndStaysTrue(t *testing.T) {
	tbl := NewTable(false)
	now := time.Unix(0, 0)
	w, _ := tbl.Get(1, now)
	for i := 0; i < Size-1; i++ {
		w.Append(uint16(i), now)
		if w.Full() {
			t.Fatalf("window reported full after only %d samples", i+1)
		}
	}
	w.Append(uint16(Size-1), now)
	if !w.Full() {
		t.Fatal("window should be full after Size samples")
	}
	w.Append(999, now)
	if !w.Full() {
		t.Fatal("Full must stay true on every later Append")
	}
}

func TestSlopeOfRisingSequence(t *testing.T) {
	tbl := NewTable(false)
	now := time.Unix(0, 0)
	w, _ := tbl.Get(7, now)
	for i := 0; i < Size; i++ {
		w.Append(uint16(i), now)
	}
	slope := w.Slope()
	if diff := slope - 1.0; diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("Slope() = %v, want 1.0", slope)
	}
}

func TestSlopeOfFlatSequence(t *testing.T) {
	tbl := NewTable(false)
	now := time.Unix(0, 0)
	w, _ := tbl.Get(7, now)
	for i := 0; i < Size; i++ {
		w.Append(5, now)
	}
	if slope := w.Slope(); slope != 0 {
		t.Fatalf("Slope() = %v, want 0 for a flat sequence", slope)
	}
}

func TestSlopeIsChronologicalAfterWraparound(t *testing.T) {
	tbl := NewTable(false)
	now := time.Unix(0, 0)
	w, _ := tbl.Get(7, now)
	for i := 0; i < Size; i++ {
		w.Append(100, now) // fill with a flat baseline first
	}
	// Overwrite the oldest 5 slots with a rising tail; the slope should
	// still read as a gentle rise if computed in write order, not as
	// nonsense from reading the backing array start-to-end.
	for i := 0; i < 5; i++ {
		w.Append(uint16(100+i+1), now)
	}
	slope := w.Slope()
	if slope <= 0 {
		t.Fatalf("Slope() = %v, want > 0 after appending a rising tail", slope)
	}
}
