/*
SPDX-License-Identifier: Apache-2.0

Copyright 2026 The Gridstate Authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    https://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package persistence

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "gridstate"

// Metrics counts persistence traffic. A nil *Metrics records nothing.
type Metrics struct {
	writes    *prometheus.CounterVec
	reads     *prometheus.CounterVec
	coalesced prometheus.Counter
}

// NewMetrics creates the persistence collectors and registers them with reg
// when it is not nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		writes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "persistence",
				Name:      "slice_writes_total",
				Help:      "Slice writes by outcome (ok, error, unchanged).",
			},
			[]string{"slice", "result"},
		),
		reads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "persistence",
				Name:      "slice_reads_total",
				Help:      "Slice reads by outcome (hit, miss, corrupt, error).",
			},
			[]string{"slice", "result"},
		),
		coalesced: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "persistence",
				Name:      "coalesced_saves_total",
				Help:      "Saves merged into an already pending write.",
			},
		),
	}
	if reg != nil {
		reg.MustRegister(m.writes, m.reads, m.coalesced)
	}
	return m
}

func (m *Metrics) write(sl Slice, result string) {
	if m != nil {
		m.writes.WithLabelValues(string(sl), result).Inc()
	}
}

func (m *Metrics) read(sl Slice, result string) {
	if m != nil {
		m.reads.WithLabelValues(string(sl), result).Inc()
	}
}

func (m *Metrics) coalesce() {
	if m != nil {
		m.coalesced.Inc()
	}
}
