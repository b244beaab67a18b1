// Copyright 2016 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T, r *Registry) string {
	t.Helper()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	r.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	return rec.Body.String()
}

func TestRegistrySetRank(t *testing.T) {
	r := NewRegistry()
	r.SetRank(3, 2)
	body := scrape(t, r)
	assert.Contains(t, body, `waternet_node_rank{node_id="3"} 2`)
}

func TestRegistrySetBatteryAndPowerState(t *testing.T) {
	r := NewRegistry()
	r.SetBattery(5, 42.5)
	r.SetPowerState(5, 2)
	body := scrape(t, r)
	assert.True(t, strings.Contains(body, `waternet_node_battery_percent{node_id="5"} 42.5`))
	assert.True(t, strings.Contains(body, `waternet_node_power_state{node_id="5"} 2`))
}

func TestRegistryValveAndWindowOccupancy(t *testing.T) {
	r := NewRegistry()
	r.SetValveOpen(7, true)
	r.SetWindowOccupancy(9, 7, 12)
	body := scrape(t, r)
	assert.Contains(t, body, `waternet_node_valve_open{node_id="7"} 1`)
	assert.Contains(t, body, `waternet_node_window_occupancy{node_id="9",source_id="7"} 12`)
}
