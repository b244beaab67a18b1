// Copyright 2016 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package radio defines the NullNet-style link-layer the control plane runs
// over: best-effort datagrams, broadcast-capable, no acknowledgements, no
// retries, single PAN. It is the radio driver external collaborator from
// the node's point of view; concrete transports (a real radio, or the
// in-memory medium in package netsim) implement Radio.
package radio

import "fmt"

// Addr is a link-layer address. Only the low byte is meaningful to the
// control plane (it is the node id); the rest exists because real link
// layers carry wider addresses and the codec must not assume otherwise.
type Addr [8]byte

// NewAddr builds an Addr whose low byte is id. This is the only
// construction the control plane ever needs: node ids are 1..255.
func NewAddr(id uint8) Addr {
	var a Addr
	a[0] = id
	return a
}

// NodeID returns the low byte, i.e. the node id.
func (a Addr) NodeID() uint8 { return a[0] }

func (a Addr) String() string { return fmt.Sprintf("node%d", a[0]) }

// InputFunc is invoked by a Radio implementation for every inbound frame.
// It may run on any goroutine (netsim.Medium invokes it on the sender's
// goroutine). The node roles' callbacks only decode the frame and queue it
// for their own single-threaded event loop (see package node), so frame
// handlers never run reentrantly.
type InputFunc func(data []byte, src, dst Addr)

// Radio is the external link-layer collaborator. Broadcast and Unicast are
// treated as synchronous and non-failing from the caller's perspective —
// they stage data into the driver's outbound buffer — matching the
// nullnet_buf/NETSTACK_NETWORK.output() contract described in spec.md §6.
type Radio interface {
	// Broadcast sends data to every node in range.
	Broadcast(data []byte) error
	// Unicast sends data to a single destination address.
	Unicast(dst Addr, data []byte) error
	// SetInputCallback installs the single receiver for inbound frames. It
	// may be called at most once, during node bring-up, mirroring
	// nullnet_set_input_callback.
	SetInputCallback(fn InputFunc)
}
