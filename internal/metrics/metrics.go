// SPDX-License-Identifier: AGPL-3.0-or-later
// dabmod - DAB (ETSI EN 300 401) modulator with SFN timestamping
// Copyright (C) 2024-2026 SDRNet
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// The source code is available at <https://github.com/sdrnet/dabmod>

// Package metrics implements the modulator's run-statistics registry:
// a dedicated prometheus.Registry (not
// the global default registry, so multiple modulator instances in one
// process never collide) exposing the read-only controllable parameters of
// the remote-control plane plus the per-frame error counters. The core only
// updates these metrics; cmd/dabmod decides whether to serve them.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Metrics is the modulator's prometheus collector set: one struct of named
// counters/gauges plus recording methods, registered once at construction.
type Metrics struct {
	registry *prometheus.Registry

	SDRUnderruns    prometheus.Counter
	SDRLatePackets  prometheus.Counter
	SDRFramesSent   prometheus.Counter
	SDRTemperature  prometheus.Gauge
	GainClipped     prometheus.Counter
	FIRQueueDepth   prometheus.Gauge
	DPDQueueDepth   prometheus.Gauge
	StageDuration   *prometheus.HistogramVec
	ClockHoldovers  prometheus.Counter
}

// New builds a Metrics collector set and registers it into a fresh
// registry, returned for cmd/dabmod to optionally serve.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		SDRUnderruns: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dabmod_sdr_underruns_total",
			Help: "Total device-reported underruns (sdr.underruns).",
		}),
		SDRLatePackets: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dabmod_sdr_late_packets_total",
			Help: "Total transmission frames dropped for a timestamp too far in the past (sdr.latepackets).",
		}),
		SDRFramesSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dabmod_sdr_frames_total",
			Help: "Total transmission frames handed to the device (sdr.frames).",
		}),
		SDRTemperature: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "dabmod_sdr_temperature_celsius",
			Help: "Device-reported temperature (sdr.temp).",
		}),
		GainClipped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dabmod_gain_clipped_samples_total",
			Help: "Total samples saturated by the format converter.",
		}),
		FIRQueueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "dabmod_firfilter_queue_depth",
			Help: "Current depth of the FIR filter's pipeline queue.",
		}),
		DPDQueueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "dabmod_predistort_queue_depth",
			Help: "Current depth of the predistorter's worker-pool queue.",
		}),
		StageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "dabmod_stage_duration_seconds",
			Help:    "Per-node wall-clock processing duration.",
			Buckets: prometheus.DefBuckets,
		}, []string{"stage"}),
		ClockHoldovers: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dabmod_clock_holdovers_total",
			Help: "Total transitions of the GNSS clock state machine into Holdover.",
		}),
	}
	m.register()
	return m
}

// Registry returns the collector set's prometheus.Registry, for
// cmd/dabmod to wire into an HTTP /metrics handler.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

func (m *Metrics) register() {
	m.registry.MustRegister(
		m.SDRUnderruns,
		m.SDRLatePackets,
		m.SDRFramesSent,
		m.SDRTemperature,
		m.GainClipped,
		m.FIRQueueDepth,
		m.DPDQueueDepth,
		m.StageDuration,
		m.ClockHoldovers,
	)
}
