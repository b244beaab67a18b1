// Copyright 2016 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package node

import (
	"fmt"

	"waternet/frame"
	"waternet/power"
	"waternet/radio"
)

// NodeConfig is the static identity every role needs: its own address, the
// address of the tree's root, and which wire dialect it speaks. All three
// roles in one run must agree on Variant and BorderNodeID.
type NodeConfig struct {
	NodeID       uint8
	BorderNodeID uint8
	Variant      Variant
}

// queueCapacity bounds the inbound packet/line queues every role keeps
// between its external-collaborator callbacks (which may run on another
// goroutine) and its single-threaded event loop. A full queue drops the
// newest arrival, matching the link layer's own best-effort delivery
// guarantee — a queued-but-undelivered frame is indistinguishable from one
// the medium dropped outright.
const queueCapacity = 32

// packetMsg is one decoded inbound frame queued for the event loop.
type packetMsg struct {
	f   frame.Frame
	src radio.Addr
}

// enqueue does a non-blocking send, dropping the message if ch is full.
func enqueue[T any](ch chan T, v T) {
	select {
	case ch <- v:
	default:
	}
}

// drainAll processes every message currently buffered in ch without
// blocking, so a single wakeup on ch's first message handles everything
// that arrived before the event loop got back around to it.
func drainAll[T any](ch chan T, handle func(T)) {
	for {
		select {
		case v := <-ch:
			handle(v)
		default:
			return
		}
	}
}

// modeLabel renders the word the original firmware's MODE printf used for
// each transition target: WAKE when returning to Active, the state's own
// name otherwise.
func modeLabel(s power.State) string {
	switch s {
	case power.Active:
		return "WAKE"
	case power.LPM:
		return "LPM"
	case power.DeepLPM:
		return "DEEP LPM"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}
