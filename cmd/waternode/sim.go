// Copyright 2016 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"waternet/config"
	"waternet/simui"
	"waternet/telemetry"
)

func simCmd(provider *telemetry.Provider) *cobra.Command {
	var topologyPath string
	var tick time.Duration

	cmd := &cobra.Command{
		Use:   "sim",
		Short: "Run a topology's virtual clock forward and render a live dashboard",
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

			dash := simui.NewDashboard()
			ticker := time.NewTicker(200 * time.Millisecond)
			defer ticker.Stop()
			out := cmd.OutOrStdout()

			for {
				select {
				case <-ctx.Done():
					return nil
				case <-ticker.C:
					f.harness.Advance(tick)
					for _, snap := range f.snapshots() {
						dash.Update(snap)
					}
					fmt.Fprint(out, simui.ClearScreen())
					fmt.Fprint(out, dash.Render(fmt.Sprintf("water network (%s / tick)", tick)))
				}
			}
		},
	}
	cmd.Flags().StringVar(&topologyPath, "topology", "", "path to the topology YAML file (required)")
	cmd.Flags().DurationVar(&tick, "tick", 10*time.Second, "simulated time advanced per refresh")
	_ = cmd.MarkFlagRequired("topology")
	return cmd
}
