// Copyright 2016 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"waternet/config"
	"waternet/metrics"
	"waternet/node"
	"waternet/telemetry"
)

func runCmd(provider *telemetry.Provider) *cobra.Command {
	var topologyPath, metricsAddr string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Bring up a topology and serve its live state as Prometheus metrics",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			top, err := config.LoadTopology(topologyPath)
			if err != nil {
				return err
			}
			f, err := bringUp(top, provider)
			if err != nil {
				return err
			}
			defer f.harness.Stop()

			reg := metrics.NewRegistry()
			srv := &http.Server{Addr: metricsAddr, Handler: reg.Handler()}
			srvErr := make(chan error, 1)
			go func() { srvErr <- srv.ListenAndServe() }()
			defer srv.Close()

			fmt.Fprintf(cmd.OutOrStdout(), "serving metrics on %s, %d nodes running\n", metricsAddr, len(top.Nodes))

			ticker := time.NewTicker(time.Second)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return nil
				case err := <-srvErr:
					if err != nil && err != http.ErrServerClosed {
						return fmt.Errorf("metrics server: %w", err)
					}
				case <-ticker.C:
					publish(reg, f.snapshots())
				}
			}
		},
	}
	cmd.Flags().StringVar(&topologyPath, "topology", "", "path to the topology YAML file (required)")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", ":9090", "address to serve /metrics on")
	_ = cmd.MarkFlagRequired("topology")
	return cmd
}

// publish writes one polling round of snapshots into reg. WindowOccupied
// is the number of occupied window slots on the node, not a per-source
// sample count, so it is recorded under source label "0" rather than split
// across the sources a computation node is actually tracking.
func publish(reg *metrics.Registry, snaps []node.Snapshot) {
	for _, s := range snaps {
		reg.SetRank(s.NodeID, s.Rank)
		if s.PowerState != "" {
			reg.SetBattery(s.NodeID, s.Battery)
			reg.SetPowerState(s.NodeID, powerStateOrdinal(s.PowerState))
		}
		if s.Role == node.RoleComputation {
			reg.SetWindowOccupancy(s.NodeID, 0, s.WindowOccupied)
		}
		if s.Role == node.RoleSensor {
			reg.SetValveOpen(s.NodeID, s.ValveOpen)
		}
	}
}

func powerStateOrdinal(state string) int {
	switch state {
	case "ACTIVE":
		return 0
	case "LPM":
		return 1
	case "DEEP_LPM":
		return 2
	default:
		return 0
	}
}
