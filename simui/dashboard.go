// Copyright 2016 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package simui renders a live terminal dashboard of a simulated water
// network's nodes for cmd/waternode sim: rank, parent, battery and power
// state per node, refreshed on an interval.
package simui

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"waternet/node"
)

var (
	purple = lipgloss.Color("99")
	green  = lipgloss.Color("76")
	yellow = lipgloss.Color("214")
	red    = lipgloss.Color("204")
	dim    = lipgloss.Color("243")
	faint  = lipgloss.Color("238")
)

var (
	headerStyle  = lipgloss.NewStyle().Foreground(purple).Bold(true).Padding(0, 1)
	cellStyle    = lipgloss.NewStyle().Padding(0, 1)
	titleStyle   = lipgloss.NewStyle().Foreground(purple).Bold(true)
	rootStyle    = cellStyle.Foreground(green).Bold(true)
	activeStyle  = cellStyle.Foreground(green)
	lpmStyle     = cellStyle.Foreground(yellow)
	deepLPMStyle = cellStyle.Foreground(red)
)

// Dashboard accumulates the latest Snapshot for each node and renders it
// as a table. It holds no goroutines of its own; a caller drives it by
// calling Update whenever it polls a node and Render whenever it wants a
// fresh frame.
type Dashboard struct {
	rows map[uint8]node.Snapshot
}

// NewDashboard creates an empty Dashboard.
func NewDashboard() *Dashboard {
	return &Dashboard{rows: make(map[uint8]node.Snapshot)}
}

// Update records the latest known Snapshot for one node.
func (d *Dashboard) Update(snap node.Snapshot) {
	d.rows[snap.NodeID] = snap
}

// Render returns the current frame as a styled string, ready to print. It
// does not clear the screen; the caller decides the refresh strategy
// (ClearScreen below, or simply printing below the previous frame).
func (d *Dashboard) Render(title string) string {
	ids := make([]uint8, 0, len(d.rows))
	for id := range d.rows {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	headers := []string{"NODE", "ROLE", "RANK", "PARENT", "BATTERY", "STATE", "WINDOW", "VALVE"}
	rows := make([][]string, 0, len(ids))
	for _, id := range ids {
		s := d.rows[id]
		rows = append(rows, []string{
			strconv.Itoa(int(s.NodeID)),
			s.Role.String(),
			rankLabel(s.Rank),
			parentLabel(s),
			batteryLabel(s),
			s.PowerState,
			strconv.Itoa(s.WindowOccupied),
			valveLabel(s.ValveOpen),
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(faint)).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return styleForState(rows[row][5])
		}).
		Headers(headers...).
		Rows(rows...)

	return titleStyle.Render(title) + "\n" + t.String() + "\n"
}

// ClearScreen returns the ANSI sequence that resets the cursor to the top
// left, for a refresh-in-place dashboard loop.
func ClearScreen() string {
	return "\033[H\033[2J"
}

func rankLabel(r uint16) string {
	if r == 0xFFFF {
		return "-"
	}
	return strconv.Itoa(int(r))
}

func parentLabel(s node.Snapshot) string {
	if s.Role == node.RoleBorder {
		return "-"
	}
	if !s.HasParent {
		return "-"
	}
	return strconv.Itoa(int(s.ParentID))
}

func batteryLabel(s node.Snapshot) string {
	if s.PowerState == "" {
		return "-"
	}
	return fmt.Sprintf("%.1f%%", s.Battery)
}

func valveLabel(open bool) string {
	if open {
		return "OPEN"
	}
	return "closed"
}

func styleForState(state string) lipgloss.Style {
	switch state {
	case "LPM":
		return lpmStyle
	case "DEEP_LPM":
		return deepLPMStyle
	case "ACTIVE", "":
		return activeStyle
	default:
		return cellStyle
	}
}
