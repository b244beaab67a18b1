// Copyright 2016 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package window implements the Computation role's per-sensor sliding
// window and its least-squares slope detector, per spec.md §3 and §4.5.
package window

import "time"

// Size is the number of samples a window holds (WINDOW_SIZE in spec.md).
const Size = 30

// MaxSensors is the number of window slots a Computation node owns
// (MAX_SENSORS in spec.md). This is the hard ceiling on memory: at most
// MaxSensors windows are ever allocated per node.
const MaxSensors = 5

// Expiry is how stale a window's last reading may be before Get evicts it,
// freeing its slot, on any lookup. It only applies to the energy-unaware
// variant (Open Question 5: the energised variant never expires windows).
const Expiry = 5 * time.Minute

// SlopeThreshold is the least-squares slope above which a full window
// triggers an OPEN_VALVE command.
const SlopeThreshold = 0.5

// sum_i and sum_i^2 over i=0..Size-1, precomputed constants used by Slope.
var (
	sumI  = float64(Size-1) * Size / 2.0
	sumI2 = float64(Size-1) * Size * (2*Size - 1) / 6.0
	denom = Size*sumI2 - sumI*sumI
)

// window is one source's circular buffer of readings.
type window struct {
	sourceID uint8
	occupied bool
	values   [Size]uint16
	count    int
	idx      int
	lastTS   time.Time
}

// Table owns up to MaxSensors windows for one Computation node.
type Table struct {
	slots       [MaxSensors]window
	expireStale bool // true for the energy-unaware variant only
}

// NewTable creates an empty Table. expireStale enables the 5-minute
// staleness sweep used by the energy-unaware variant only.
func NewTable(expireStale bool) *Table {
	return &Table{expireStale: expireStale}
}

// Get locates or allocates the window for sourceID, following the
// get_window policy from spec.md §4.5: first expire stale windows (unaware
// variant only), then reuse a matching occupied slot, then allocate a free
// slot. It returns (nil, false) if no slot is available, in which case the
// caller must drop the reading.
func (t *Table) Get(sourceID uint8, now time.Time) (*window, bool) {
	if t.expireStale {
		for i := range t.slots {
			s := &t.slots[i]
			if s.occupied && now.Sub(s.lastTS) > Expiry {
				*s = window{}
			}
		}
	}
	for i := range t.slots {
		s := &t.slots[i]
		if s.occupied && s.sourceID == sourceID {
			return s, true
		}
	}
	for i := range t.slots {
		s := &t.slots[i]
		if !s.occupied {
			*s = window{sourceID: sourceID, occupied: true}
			return s, true
		}
	}
	return nil, false
}

// Append appends v to the window, advancing the circular index and
// clamping count at Size. Once Full reports true it stays true on every
// later Append, so a caller that checks Full() after each Append computes
// the slope on every arrival from the window's first full cycle onward,
// not just once.
func (w *window) Append(v uint16, now time.Time) {
	w.values[w.idx] = v
	w.idx = (w.idx + 1) % Size
	if w.count < Size {
		w.count++
	}
	w.lastTS = now
}

// Full reports whether the window holds Size readings.
func (w *window) Full() bool { return w.count == Size }

// Occupied reports whether the window slot is in use (a free slot is
// count == 0 in spec terms).
func (w *window) Occupied() bool { return w.occupied }

// Slope computes the least-squares regression slope over the window's
// values in chronological order (oldest first, starting at the current
// write index, per spec.md §4.5 and Open Question 2's resolution). The
// caller must only call this once Full() is true; on an exact-zero
// denominator (never the case for Size=30, but guarded anyway) it returns
// 0.
func (w *window) Slope() float64 {
	var sumV, sumIV float64
	for k := 0; k < Size; k++ {
		pos := (w.idx + k) % Size
		v := float64(w.values[pos])
		sumV += v
		sumIV += float64(k) * v
	}
	if denom == 0 {
		return 0
	}
	num := Size*sumIV - sumI*sumV
	return num / denom
}

// SourceID returns the sensor id this window is tracking.
func (w *window) SourceID() uint8 { return w.sourceID }

// Count returns the number of readings currently stored (count ≤ Size).
func (w *window) Count() int { return w.count }

// AllocatedCount reports how many of Table's MaxSensors slots are
// currently occupied, for the bounded-memory property and for metrics.
func (t *Table) AllocatedCount() int {
	n := 0
	for i := range t.slots {
		if t.slots[i].occupied {
			n++
		}
	}
	return n
}
