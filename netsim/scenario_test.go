// Copyright 2016 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package netsim

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"waternet/frame"
	"waternet/led"
	"waternet/node"
)

// converge advances the harness's clock n rounds of d, settling after each
// round — one Advance per round rather than a single big one, since each
// round only carries one HELLO exchange hop further through the tree.
func converge(h *Harness, n int, d time.Duration) {
	for i := 0; i < n; i++ {
		h.Advance(d)
	}
}

// TestTwoHopTreeFormation reproduces spec.md scenario S1: node 3 is out of
// range of root 1 but in range of node 2; after a few HELLO rounds it joins
// the tree at rank 2 through parent 2.
func TestTwoHopTreeFormation(t *testing.T) {
	h := NewHarness(15, node.Unaware, 1)
	defer h.Stop()

	h.AddBorder(1, Position{X: 0, Y: 0}, ZeroRng{})
	h.AddComputation(2, Position{X: 10, Y: 0}, ZeroRng{})
	h.AddSensor(3, Position{X: 20, Y: 0}, ZeroRng{})

	converge(h, 3, node.HelloInterval(2, 1))

	assert.Contains(t, h.LogBuf.String(), "Node 2: new parent -> 1 (rank 1)")
	assert.Contains(t, h.LogBuf.String(), "Node 3: new parent -> 2 (rank 2)")
}

// TestTrendTriggeredValve reproduces spec.md scenario S2: a computation
// node that sees 30 rising SENSOR readings from a leaf issues an
// OPEN_VALVE command, and the leaf's LED turns on, then off after the
// valve duration.
func TestTrendTriggeredValve(t *testing.T) {
	h := NewHarness(15, node.Unaware, 1)
	defer h.Stop()

	h.AddBorder(1, Position{X: 0, Y: 0}, ZeroRng{})
	h.AddComputation(2, Position{X: 10, Y: 0}, ZeroRng{})
	h.AddSensor(7, Position{X: 20, Y: 0}, ZeroRng{})

	sensorEP := h.Medium.nodes[7]
	computationAddr := h.Medium.nodes[2].addr
	for v := uint16(0); v < 30; v++ {
		buf := frame.EncodeSensor(frame.Sensor{SourceID: 7, Value: v})
		require.NoError(t, sensorEP.Unicast(computationAddr, buf))
	}
	h.Settle()

	log := h.LogBuf.String()
	assert.Contains(t, log, "slope=1.00 for sensor 7")
	assert.Contains(t, log, "send OPEN_VALVE to 7")
	assert.True(t, h.LED(7).IsOn(led.Red))

	h.Advance(600 * time.Second)
	assert.False(t, h.LED(7).IsOn(led.Red))
}

// TestCommandViaSerial reproduces spec.md scenario S3: a well-formed
// serial command line from the PC produces exactly one outbound COMMAND
// to the named node.
func TestCommandViaSerial(t *testing.T) {
	h := NewHarness(50, node.Unaware, 1)
	defer h.Stop()

	h.AddBorder(1, Position{X: 0, Y: 0}, ZeroRng{})
	h.AddSensor(7, Position{X: 5, Y: 0}, ZeroRng{})

	h.Serial(1).Feed("3 7 1")
	h.Settle()

	log := h.LogBuf.String()
	assert.Equal(t, 1, strings.Count(log, "Sent cmd type=3 to 7"))
	assert.True(t, h.LED(7).IsOn(led.Red))
}

// TestSensorJoinsOneOfTwoEqualRankParents checks that an energised sensor
// within range of two same-rank parents converges on exactly one of them.
// The energy-aware hysteresis tiebreak itself (spec.md scenario S6) is
// exercised precisely against package rank directly, where the two
// candidates' battery readings can be set exactly rather than driven
// through a full energest/battery/HELLO pipeline.
func TestSensorJoinsOneOfTwoEqualRankParents(t *testing.T) {
	h := NewHarness(50, node.Energised, 1)
	defer h.Stop()

	h.AddBorder(1, Position{X: 0, Y: 0}, ZeroRng{})
	h.AddComputation(10, Position{X: 10, Y: 0}, ZeroRng{})
	h.AddComputation(11, Position{X: 10, Y: 10}, ZeroRng{})
	h.AddSensor(20, Position{X: 20, Y: 5}, ZeroRng{})

	converge(h, 4, node.HelloInterval(10, 1))

	log := h.LogBuf.String()
	joinedEither := strings.Contains(log, "Node 20: new parent -> 10") ||
		strings.Contains(log, "Node 20: new parent -> 11")
	assert.True(t, joinedEither, "sensor 20 never joined either equal-rank parent")
}
