// Copyright 2016 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"waternet/config"
)

func sendCmd() *cobra.Command {
	var topologyPath, line string

	cmd := &cobra.Command{
		Use:   "send",
		Short: "Bring up a topology and feed one serial command line to its border node",
		RunE: func(cmd *cobra.Command, args []string) error {
			top, err := config.LoadTopology(topologyPath)
			if err != nil {
				return err
			}
			f, err := bringUp(top, nil)
			if err != nil {
				return err
			}
			defer f.harness.Stop()

			sp := f.harness.Serial(top.BorderNodeID)
			if sp == nil {
				return fmt.Errorf("node %d is not a border node in %s", top.BorderNodeID, topologyPath)
			}
			sp.Feed(line)
			f.harness.Settle()
			time.Sleep(50 * time.Millisecond)

			fmt.Fprint(cmd.OutOrStdout(), f.harness.LogBuf.String())
			return nil
		},
	}
	cmd.Flags().StringVar(&topologyPath, "topology", "", "path to the topology YAML file (required)")
	cmd.Flags().StringVar(&line, "line", "", `serial command line to feed the border node, e.g. "3 7 1"`)
	_ = cmd.MarkFlagRequired("topology")
	_ = cmd.MarkFlagRequired("line")
	return cmd
}
