// Copyright 2016 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package node

import (
	"bytes"
	"context"
	"testing"
	"time"

	"waternet/clock/clocktest"
	"waternet/energest/energesttest"
	"waternet/frame"
	"waternet/logtap"
	"waternet/radio"
	"waternet/radio/radiotest"
	"waternet/window"
)

func newComputationForTest(t *testing.T, variant Variant) (*Computation, *radiotest.Record, *bytes.Buffer, *clocktest.Virtual) {
	t.Helper()
	var buf bytes.Buffer
	r := &radiotest.Record{}
	clk := clocktest.NewVirtual()
	deps := ComputationDeps{
		Radio: r,
		Clock: clk,
		Log:   logtap.New(&buf),
		Rng:   zeroRng{},
	}
	if variant == Energised {
		deps.Energest = energesttest.NewFake(100)
	}
	c := NewComputation(NodeConfig{NodeID: 2, BorderNodeID: 1, Variant: variant}, deps)
	return c, r, &buf, clk
}

func runComputation(t *testing.T, c *Computation) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = c.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
}

func TestComputationJoinsOnHello(t *testing.T) {
	c, r, buf, _ := newComputationForTest(t, Unaware)
	runComputation(t, c)

	h := frame.Hello{Rank: 0}
	r.Deliver(frame.EncodeHello(Unaware, h), radio.NewAddr(1), radio.NewAddr(2))
	time.Sleep(20 * time.Millisecond)

	if !bytes.Contains(buf.Bytes(), []byte("Node 2: new parent -> 1 (rank 1)")) {
		t.Errorf("log missing new-parent line: %s", buf.String())
	}
	snap, ok := c.Status()
	if !ok {
		t.Fatal("Status timed out")
	}
	if !snap.HasParent || snap.ParentID != 1 || snap.Rank != 1 {
		t.Errorf("unexpected snapshot after joining: %+v", snap)
	}
}

func TestComputationOpensValveOnRisingTrend(t *testing.T) {
	c, r, buf, _ := newComputationForTest(t, Unaware)
	runComputation(t, c)

	for v := uint16(0); v < window.Size; v++ {
		data := frame.EncodeSensor(frame.Sensor{SourceID: 9, Value: v})
		r.Deliver(data, radio.NewAddr(9), radio.NewAddr(2))
	}
	time.Sleep(20 * time.Millisecond)

	if !bytes.Contains(buf.Bytes(), []byte("slope=1.00 for sensor 9")) {
		t.Errorf("log missing slope line: %s", buf.String())
	}
	if !bytes.Contains(buf.Bytes(), []byte("send OPEN_VALVE to 9")) {
		t.Errorf("log missing OPEN_VALVE line: %s", buf.String())
	}
	found := false
	for _, op := range r.Ops {
		if !op.Broadcast && op.Dst.NodeID() == 9 {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a unicast COMMAND to node 9, got %+v", r.Ops)
	}
}

func TestComputationStatusReportsWindowOccupancy(t *testing.T) {
	c, r, _, _ := newComputationForTest(t, Unaware)
	runComputation(t, c)

	r.Deliver(frame.EncodeSensor(frame.Sensor{SourceID: 9, Value: 1}), radio.NewAddr(9), radio.NewAddr(2))
	time.Sleep(20 * time.Millisecond)

	snap, ok := c.Status()
	if !ok {
		t.Fatal("Status timed out")
	}
	if snap.WindowOccupied != 1 {
		t.Errorf("WindowOccupied = %d, want 1", snap.WindowOccupied)
	}
}
