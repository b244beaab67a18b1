// Copyright 2016 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package metrics exposes a node's live state as Prometheus gauges over
// /metrics, grounded on the registry-plus-GaugeVec pattern in
// 99souls-ariadne's engine/telemetry/metrics, scaled down to the five
// gauges a single node actually has: rank, battery level, power state,
// window occupancy and valve state. Unlike that package's generic
// Counter/Gauge/Histogram Provider abstraction (built for an arbitrary
// business-metrics surface), this one has a fixed, known set of
// instruments, so there's no NewGauge/NewCounter factory surface — just
// direct setters.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds one node's gauges, all labelled by node_id so a single
// process hosting several simulated nodes can share one registry.
type Registry struct {
	reg *prometheus.Registry

	rank      *prometheus.GaugeVec
	battery   *prometheus.GaugeVec
	power     *prometheus.GaugeVec
	window    *prometheus.GaugeVec
	valveOpen *prometheus.GaugeVec
}

// NewRegistry creates an empty Registry with all five gauges registered.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()
	r := &Registry{
		reg: reg,
		rank: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "waternet_node_rank",
			Help: "Current tree rank of the node (0 at the root, 65535 if unjoined).",
		}, []string{"node_id"}),
		battery: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "waternet_node_battery_percent",
			Help: "Remaining battery level, energised variant only.",
		}, []string{"node_id"}),
		power: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "waternet_node_power_state",
			Help: "Power state: 0=Active, 1=LPM, 2=DeepLPM.",
		}, []string{"node_id"}),
		window: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "waternet_node_window_occupancy",
			Help: "Sliding-window sample counts by source, on computation nodes.",
		}, []string{"node_id", "source_id"}),
		valveOpen: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "waternet_node_valve_open",
			Help: "1 if the sensor's valve is currently open, else 0.",
		}, []string{"node_id"}),
	}
	reg.MustRegister(r.rank, r.battery, r.power, r.window, r.valveOpen)
	return r
}

// Handler returns the HTTP handler to serve at /metrics.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}

// SetRank records a node's current tree rank.
func (r *Registry) SetRank(nodeID uint8, rank uint16) {
	r.rank.WithLabelValues(nodeIDLabel(nodeID)).Set(float64(rank))
}

// SetBattery records a node's current battery level, 0..100.
func (r *Registry) SetBattery(nodeID uint8, level float64) {
	r.battery.WithLabelValues(nodeIDLabel(nodeID)).Set(level)
}

// SetPowerState records a node's current power state as its ordinal.
func (r *Registry) SetPowerState(nodeID uint8, state int) {
	r.power.WithLabelValues(nodeIDLabel(nodeID)).Set(float64(state))
}

// SetWindowOccupancy records how many samples a computation node's window
// for sourceID currently holds.
func (r *Registry) SetWindowOccupancy(nodeID, sourceID uint8, count int) {
	r.window.WithLabelValues(nodeIDLabel(nodeID), nodeIDLabel(sourceID)).Set(float64(count))
}

// SetValveOpen records whether a sensor's valve is open.
func (r *Registry) SetValveOpen(nodeID uint8, open bool) {
	v := 0.0
	if open {
		v = 1.0
	}
	r.valveOpen.WithLabelValues(nodeIDLabel(nodeID)).Set(v)
}

func nodeIDLabel(id uint8) string {
	return strconv.Itoa(int(id))
}
