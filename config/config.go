// Copyright 2016 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package config loads the YAML file a node (or the simulator) is started
// from, and configures the internal slog diagnostics logger. It is
// deliberately small next to the config managers in the retrieval corpus:
// no hot versioning, no A/B rollout, no remote source — a node's own
// config is read once at bring-up and never reloaded, per the
// static-resource-ceiling invariant in spec.md §5. Only a simulator
// topology file can be reloaded at runtime, through TopologyWatcher in
// topology.go.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"waternet/node"
)

// Node is one node's bring-up configuration: everything node.NodeConfig
// needs plus the operational knobs that live outside it (log level,
// metrics listen address). Field names match the YAML keys a deployment
// writes by hand.
type Node struct {
	NodeID       uint8  `yaml:"node_id"`
	Role         string `yaml:"role"`
	Variant      string `yaml:"variant"`
	BorderNodeID uint8  `yaml:"border_node_id"`
	LogLevel     string `yaml:"log_level"`
	MetricsAddr  string `yaml:"metrics_addr"`
}

// Load reads and validates a node config file at path.
func Load(path string) (Node, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Node{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	var n Node
	if err := yaml.Unmarshal(raw, &n); err != nil {
		return Node{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := n.validate(); err != nil {
		return Node{}, fmt.Errorf("config: %s: %w", path, err)
	}
	return n, nil
}

func (n Node) validate() error {
	if n.NodeID == 0 {
		return fmt.Errorf("node_id is required and must be nonzero")
	}
	if _, err := n.parseRole(); err != nil {
		return err
	}
	if _, err := n.variant(); err != nil {
		return err
	}
	if n.BorderNodeID == 0 {
		return fmt.Errorf("border_node_id is required and must be nonzero")
	}
	return nil
}

func (n Node) parseRole() (node.Role, error) {
	switch n.Role {
	case "border":
		return node.RoleBorder, nil
	case "computation":
		return node.RoleComputation, nil
	case "sensor":
		return node.RoleSensor, nil
	default:
		return 0, fmt.Errorf("role must be one of border, computation, sensor, got %q", n.Role)
	}
}

func (n Node) variant() (node.Variant, error) {
	switch n.Variant {
	case "unaware", "":
		return node.Unaware, nil
	case "energised":
		return node.Energised, nil
	default:
		return 0, fmt.Errorf("variant must be one of unaware, energised, got %q", n.Variant)
	}
}

// ParsedRole returns the parsed role. Load already validated it.
func (n Node) ParsedRole() node.Role { r, _ := n.parseRole(); return r }

// NodeConfig projects Node onto the node.NodeConfig the event loops take.
func (n Node) NodeConfig() node.NodeConfig {
	v, _ := n.variant()
	return node.NodeConfig{NodeID: n.NodeID, BorderNodeID: n.BorderNodeID, Variant: v}
}
