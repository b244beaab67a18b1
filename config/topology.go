// Copyright 2016 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"
)

// Topology describes the simulated deployment cmd/waternode's sim
// subcommand drives: the node roster plus each link's maximum range, in
// the simulator's own abstract distance units. Unlike Node, a real node
// never reads a Topology — only the in-process simulator does, so
// reloading it mid-run (via Watcher) doesn't conflict with spec.md §5's
// static-resource-ceiling invariant for actual firmware.
type Topology struct {
	BorderNodeID uint8          `yaml:"border_node_id"`
	Variant      string         `yaml:"variant"`
	Range        float64        `yaml:"range"`
	Nodes        []TopologyNode `yaml:"nodes"`
}

// TopologyNode places one simulated node in the plane.
type TopologyNode struct {
	NodeID uint8   `yaml:"node_id"`
	Role   string  `yaml:"role"`
	X      float64 `yaml:"x"`
	Y      float64 `yaml:"y"`
}

// LoadTopology reads and parses a topology file.
func LoadTopology(path string) (Topology, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Topology{}, fmt.Errorf("config: read topology %s: %w", path, err)
	}
	var t Topology
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return Topology{}, fmt.Errorf("config: parse topology %s: %w", path, err)
	}
	if len(t.Nodes) == 0 {
		return Topology{}, fmt.Errorf("config: topology %s defines no nodes", path)
	}
	return t, nil
}

// TopologyWatcher reloads a simulator topology file from disk whenever it
// changes on disk, grounded on the directory-watch-plus-path-filter
// pattern of 99souls-ariadne's config hot-reload system.
type TopologyWatcher struct {
	path    string
	watcher *fsnotify.Watcher

	mu      sync.Mutex
	started bool
}

// NewTopologyWatcher creates a watcher for the topology file at path. The
// file need not exist yet; Watch reports an error only once the directory
// itself can't be watched.
func NewTopologyWatcher(path string) (*TopologyWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("config: create topology watcher: %w", err)
	}
	return &TopologyWatcher{path: path, watcher: w}, nil
}

// Watch starts watching and returns a channel of freshly reloaded
// topologies (one per observed write) and a channel of load errors. Both
// channels close when ctx is cancelled. Watch may be called at most once
// per TopologyWatcher.
func (w *TopologyWatcher) Watch(ctx context.Context) (<-chan Topology, <-chan error) {
	changes := make(chan Topology, 4)
	errs := make(chan error, 4)

	w.mu.Lock()
	if w.started {
		w.mu.Unlock()
		close(changes)
		close(errs)
		return changes, errs
	}
	w.started = true
	dir := filepath.Dir(w.path)
	if err := w.watcher.Add(dir); err != nil {
		w.mu.Unlock()
		errs <- fmt.Errorf("config: watch topology dir %s: %w", dir, err)
		close(changes)
		close(errs)
		return changes, errs
	}
	w.mu.Unlock()

	go func() {
		defer close(changes)
		defer close(errs)
		defer w.watcher.Close()

		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-w.watcher.Events:
				if !ok {
					return
				}
				if event.Name != w.path {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				top, err := LoadTopology(w.path)
				if err != nil {
					select {
					case errs <- err:
					case <-ctx.Done():
						return
					}
					continue
				}
				select {
				case changes <- top:
				case <-ctx.Done():
					return
				}
			case err, ok := <-w.watcher.Errors:
				if !ok {
					return
				}
				select {
				case errs <- err:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return changes, errs
}
