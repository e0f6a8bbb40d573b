// Copyright 2025 BrainSAIT
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package dispatch

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"brainsait/platform/orchestrator/audit"
	"brainsait/platform/orchestrator/request"
	"brainsait/platform/orchestrator/sync"
)

// Metrics instruments dispatch outcomes and downstream sync failures.
type Metrics struct {
	operations   *prometheus.CounterVec
	duration     *prometheus.HistogramVec
	syncFailures prometheus.Counter
}

// NewMetrics registers the dispatch metrics with reg. Tests pass their own
// registry; the service passes prometheus.DefaultRegisterer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "brainsait_operations_total",
			Help: "Dispatched operations by capability and outcome",
		}, []string{"capability", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "brainsait_operation_duration_seconds",
			Help:    "Provider execution duration by capability",
			Buckets: prometheus.DefBuckets,
		}, []string{"capability"}),
		syncFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "brainsait_sync_failures_total",
			Help: "Downstream sync submissions that failed",
		}),
	}
	reg.MustRegister(m.operations, m.duration, m.syncFailures)
	return m
}

// Observe records one finished dispatch.
func (m *Metrics) Observe(kind request.Capability, outcome audit.Outcome, elapsed time.Duration) {
	m.operations.WithLabelValues(string(kind), string(outcome)).Inc()
	m.duration.WithLabelValues(string(kind)).Observe(elapsed.Seconds())
}

// SyncOutcome counts failed sync submissions. It matches the sync worker's
// outcome hook signature.
func (m *Metrics) SyncOutcome(o sync.Outcome) {
	if !o.Success {
		m.syncFailures.Inc()
	}
}
