// Copyright 2016 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleTopology = `
border_node_id: 1
variant: unaware
range: 50
nodes:
  - node_id: 1
    role: border
    x: 0
    y: 0
  - node_id: 2
    role: sensor
    x: 10
    y: 0
`

func TestLoadTopology(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "topo.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleTopology), 0o644))

	top, err := LoadTopology(path)
	require.NoError(t, err)
	assert.Equal(t, uint8(1), top.BorderNodeID)
	assert.Len(t, top.Nodes, 2)
	assert.Equal(t, "sensor", top.Nodes[1].Role)
}

func TestLoadTopologyRejectsEmptyRoster(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "topo.yaml")
	require.NoError(t, os.WriteFile(path, []byte("border_node_id: 1\n"), 0o644))

	_, err := LoadTopology(path)
	require.Error(t, err)
}

func TestTopologyWatcherReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "topo.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleTopology), 0o644))

	w, err := NewTopologyWatcher(path)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	changes, errs := w.Watch(ctx)

	updated := sampleTopology + `  - node_id: 3
    role: sensor
    x: 20
    y: 0
`
	require.NoError(t, os.WriteFile(path, []byte(updated), 0o644))

	select {
	case top := <-changes:
		assert.Len(t, top.Nodes, 3)
	case err := <-errs:
		t.Fatalf("unexpected watch error: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for topology reload")
	}
}
