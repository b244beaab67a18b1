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
	"waternet/serial/serialtest"
)

type zeroRng struct{}

func (zeroRng) Intn(n int) int { return 0 }

func newBorderForTest(t *testing.T, variant Variant) (*Border, *radiotest.Record, *serialtest.Fake, *bytes.Buffer, *clocktest.Virtual) {
	t.Helper()
	var buf bytes.Buffer
	r := &radiotest.Record{}
	sp := &serialtest.Fake{}
	clk := clocktest.NewVirtual()
	deps := BorderDeps{
		Radio:  r,
		Clock:  clk,
		Serial: sp,
		Log:    logtap.New(&buf),
		Rng:    zeroRng{},
	}
	if variant == Energised {
		deps.Energest = energesttest.NewFake(100)
	}
	b := NewBorder(NodeConfig{NodeID: 1, BorderNodeID: 1, Variant: variant}, deps)
	return b, r, sp, &buf, clk
}

func runUntilStopped(t *testing.T, r *Border) context.CancelFunc {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = r.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return cancel
}

func TestBorderBeaconsAtRankZero(t *testing.T) {
	b, r, _, _, clk := newBorderForTest(t, Unaware)
	runUntilStopped(t, b)

	clk.Advance(HelloInterval(1, 1))
	time.Sleep(20 * time.Millisecond)

	if len(r.Ops) == 0 || !r.Ops[0].Broadcast {
		t.Fatalf("expected a broadcast HELLO, got %+v", r.Ops)
	}
	h, err := frame.Decode(Unaware, r.Ops[0].Data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if h.Hello.Rank != 0 {
		t.Errorf("border rank = %d, want 0", h.Hello.Rank)
	}
}

func TestBorderRelaysSerialCommand(t *testing.T) {
	b, r, sp, buf, _ := newBorderForTest(t, Unaware)
	runUntilStopped(t, b)

	sp.Feed("3 7 1")
	time.Sleep(20 * time.Millisecond)

	if len(r.Ops) != 1 || r.Ops[0].Dst.NodeID() != 7 {
		t.Fatalf("expected one unicast to node 7, got %+v", r.Ops)
	}
	if !bytes.Contains(buf.Bytes(), []byte("Sent cmd type=3 to 7")) {
		t.Errorf("log missing confirmation line: %s", buf.String())
	}
}

func TestBorderLogsSensorReadings(t *testing.T) {
	b, r, _, buf, _ := newBorderForTest(t, Unaware)
	runUntilStopped(t, b)

	data := frame.EncodeSensor(frame.Sensor{SourceID: 7, Value: 42})
	r.Deliver(data, radio.NewAddr(7), radio.NewAddr(1))
	time.Sleep(20 * time.Millisecond)

	if !bytes.Contains(buf.Bytes(), []byte("Server got ID=7, value=42")) {
		t.Errorf("log missing reading line: %s", buf.String())
	}
}

func TestBorderStatusReflectsRank(t *testing.T) {
	b, _, _, _, _ := newBorderForTest(t, Unaware)
	runUntilStopped(t, b)

	snap, ok := b.Status()
	if !ok {
		t.Fatal("Status timed out")
	}
	if snap.NodeID != 1 || snap.Role != RoleBorder || snap.Rank != 0 {
		t.Errorf("unexpected snapshot: %+v", snap)
	}
}

func TestBorderStatusFailsAfterLoopExits(t *testing.T) {
	b, _, _, _, _ := newBorderForTest(t, Unaware)
	cancel := runUntilStopped(t, b)
	cancel()
	time.Sleep(20 * time.Millisecond)

	if _, ok := b.Status(); ok {
		t.Error("Status succeeded after the event loop exited, want ok=false")
	}
}
