// Copyright 2016 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// waternode drives a simulated water-monitoring network: bringing up a
// topology's border, computation and sensor nodes over an in-process
// medium, exposing their live state as Prometheus gauges, sending one-off
// serial commands to the border node, and rendering a terminal dashboard
// of a running simulation.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"waternet/config"
	"waternet/telemetry"
)

var logLevel string

func main() {
	provider := telemetry.NewProvider(sdktrace.WithSampler(sdktrace.AlwaysSample()))
	defer func() {
		_ = provider.Shutdown(context.Background())
	}()

	root := &cobra.Command{
		Use:           "waternode",
		Short:         "Simulate and operate a water-monitoring sensor network",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return config.ConfigureLogging(logLevel)
		},
	}
	root.PersistentFlags().StringVar(&logLevel, "log-level", config.LevelInfo, "diagnostics log level: debug, info, warn, error")

	root.AddCommand(runCmd(provider))
	root.AddCommand(simCmd(provider))
	root.AddCommand(sendCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
