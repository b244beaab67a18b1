// Copyright 2016 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"

	"waternet/config"
	"waternet/logtap"
	"waternet/netsim"
	"waternet/node"
	"waternet/telemetry"
)

// statusSource is implemented by *node.Border, *node.Computation and
// *node.Sensor: anything the dashboard or the metrics loop can poll for a
// point-in-time Snapshot.
type statusSource interface {
	Status() (node.Snapshot, bool)
}

// fleet is a running topology: every role's statusSource, keyed by node id,
// plus the harness that owns their goroutines and shared medium.
type fleet struct {
	harness *netsim.Harness
	nodes   map[uint8]statusSource
}

// bringUp builds and starts every node in top over a shared netsim.Medium,
// wiring each one's telemetry handler from provider. It is the one place
// that knows how to turn a Topology into running event loops; run, send and
// sim all call it.
func bringUp(top config.Topology, provider *telemetry.Provider) (*fleet, error) {
	variant := node.Unaware
	if top.Variant == "energised" {
		variant = node.Energised
	}

	h := netsim.NewHarness(top.Range, variant, top.BorderNodeID)
	h.Log = logtap.New(os.Stdout)
	if provider != nil {
		h.Telemetry = make(map[uint8]*telemetry.Handler, len(top.Nodes))
	}

	f := &fleet{harness: h, nodes: make(map[uint8]statusSource)}
	rng := node.NewDefaultRng(int64(top.BorderNodeID))

	for _, n := range top.Nodes {
		pos := netsim.Position{X: n.X, Y: n.Y}
		if provider != nil {
			h.Telemetry[n.NodeID] = telemetry.NewHandler(tracerNameFor(n.Role))
		}
		switch n.Role {
		case "border":
			b := h.AddBorder(n.NodeID, pos, rng)
			f.nodes[n.NodeID] = b
		case "computation":
			c := h.AddComputation(n.NodeID, pos, rng)
			f.nodes[n.NodeID] = c
		case "sensor":
			s := h.AddSensor(n.NodeID, pos, rng)
			f.nodes[n.NodeID] = s
		default:
			h.Stop()
			return nil, fmt.Errorf("bring up node %d: unknown role %q", n.NodeID, n.Role)
		}
	}
	return f, nil
}

func tracerNameFor(role string) string {
	switch role {
	case "border":
		return telemetry.TracerBorder
	case "computation":
		return telemetry.TracerComputation
	default:
		return telemetry.TracerSensor
	}
}

// snapshots polls every node's Status and returns whichever answered in
// time; a node whose loop already exited is simply omitted.
func (f *fleet) snapshots() []node.Snapshot {
	out := make([]node.Snapshot, 0, len(f.nodes))
	for _, src := range f.nodes {
		if snap, ok := src.Status(); ok {
			out = append(out, snap)
		}
	}
	return out
}
