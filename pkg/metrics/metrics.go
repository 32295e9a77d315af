// Copyright 2025 KrakLabs
//
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
//
// SPDX-License-Identifier: Apache-2.0

// Package metrics holds the Prometheus instrumentation for batch
// execution, tool-gateway invocations, and graph projection. Metrics are
// lazily registered on first use, mirroring the ingestion subsystem's
// sync.Once-guarded registration, so importing this package never
// panics a caller that chooses not to expose /metrics.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

type pipelineMetrics struct {
	once sync.Once

	// Batch execution (BatchExecutor, §4.1)
	batchFilesTotal     *prometheus.CounterVec // labels: op_kind, outcome
	batchDuration       *prometheus.HistogramVec
	fileDuration        *prometheus.HistogramVec
	batchTimeoutsTotal  *prometheus.CounterVec
	batchConcurrencyCap prometheus.Gauge

	// Tool gateway (§4.2)
	toolInvocationsTotal *prometheus.CounterVec // labels: tool_op, outcome
	toolDuration         *prometheus.HistogramVec

	// Graph projection (§4.4)
	projectorNodesTotal *prometheus.CounterVec // labels: label
	projectorEdgesTotal *prometheus.CounterVec // labels: rel_type
	projectorErrors     prometheus.Counter

	// Sinks (§6.1, §6.2)
	sinkCommitsTotal  *prometheus.CounterVec // labels: outcome
	blobWriteFailures prometheus.Counter
}

var m pipelineMetrics

var buckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60}

func (m *pipelineMetrics) init() {
	m.once.Do(func() {
		m.batchFilesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "niemgraph_batch_files_total",
			Help: "Files processed by the batch executor, by operation kind and outcome.",
		}, []string{"op_kind", "outcome"})

		m.batchDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "niemgraph_batch_duration_seconds",
			Help:    "Wall-clock duration of a full batch run, by operation kind.",
			Buckets: buckets,
		}, []string{"op_kind"})

		m.fileDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "niemgraph_batch_file_duration_seconds",
			Help:    "Duration of a single file's operation within a batch.",
			Buckets: buckets,
		}, []string{"op_kind"})

		m.batchTimeoutsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "niemgraph_batch_file_timeouts_total",
			Help: "Per-file operations that hit the per-file timeout.",
		}, []string{"op_kind"})

		m.batchConcurrencyCap = prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "niemgraph_batch_concurrency_cap",
			Help: "Configured maximum concurrent in-flight files for the batch executor.",
		})

		m.toolInvocationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "niemgraph_tool_invocations_total",
			Help: "External tool-gateway invocations, by tool operation and outcome.",
		}, []string{"tool_op", "outcome"})

		m.toolDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "niemgraph_tool_duration_seconds",
			Help:    "Duration of external tool subprocess invocations.",
			Buckets: buckets,
		}, []string{"tool_op"})

		m.projectorNodesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "niemgraph_projector_nodes_total",
			Help: "Nodes emitted by the graph projector, by label.",
		}, []string{"label"})

		m.projectorEdgesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "niemgraph_projector_edges_total",
			Help: "Edges emitted by the graph projector, by relationship type.",
		}, []string{"rel_type"})

		m.projectorErrors = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "niemgraph_projector_errors_total",
			Help: "Instance documents that failed projection.",
		})

		m.sinkCommitsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "niemgraph_sink_commits_total",
			Help: "Graph sink transaction commits, by outcome.",
		}, []string{"outcome"})

		m.blobWriteFailures = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "niemgraph_blob_write_failures_total",
			Help: "Blob sink writes that failed (non-fatal per §4.5).",
		})

		prometheus.MustRegister(
			m.batchFilesTotal, m.batchDuration, m.fileDuration, m.batchTimeoutsTotal, m.batchConcurrencyCap,
			m.toolInvocationsTotal, m.toolDuration,
			m.projectorNodesTotal, m.projectorEdgesTotal, m.projectorErrors,
			m.sinkCommitsTotal, m.blobWriteFailures,
		)
	})
}

// RecordBatchFile records the outcome of a single file within a batch.
func RecordBatchFile(opKind, outcome string) {
	m.init()
	m.batchFilesTotal.WithLabelValues(opKind, outcome).Inc()
}

// ObserveBatchDuration records the total wall-clock time of a batch run.
func ObserveBatchDuration(opKind string, seconds float64) {
	m.init()
	m.batchDuration.WithLabelValues(opKind).Observe(seconds)
}

// ObserveFileDuration records how long a single file's operation took.
func ObserveFileDuration(opKind string, seconds float64) {
	m.init()
	m.fileDuration.WithLabelValues(opKind).Observe(seconds)
}

// RecordBatchTimeout records a per-file operation hitting its timeout.
func RecordBatchTimeout(opKind string) {
	m.init()
	m.batchTimeoutsTotal.WithLabelValues(opKind).Inc()
}

// SetBatchConcurrencyCap publishes the configured concurrency limit.
func SetBatchConcurrencyCap(n int) {
	m.init()
	m.batchConcurrencyCap.Set(float64(n))
}

// RecordToolInvocation records the outcome of one external tool call.
func RecordToolInvocation(toolOp, outcome string) {
	m.init()
	m.toolInvocationsTotal.WithLabelValues(toolOp, outcome).Inc()
}

// ObserveToolDuration records how long one external tool call took.
func ObserveToolDuration(toolOp string, seconds float64) {
	m.init()
	m.toolDuration.WithLabelValues(toolOp).Observe(seconds)
}

// RecordProjectedNode increments the node counter for a label.
func RecordProjectedNode(label string) {
	m.init()
	m.projectorNodesTotal.WithLabelValues(label).Inc()
}

// RecordProjectedEdge increments the edge counter for a relationship type.
func RecordProjectedEdge(relType string) {
	m.init()
	m.projectorEdgesTotal.WithLabelValues(relType).Inc()
}

// RecordProjectorError increments the projection-failure counter.
func RecordProjectorError() {
	m.init()
	m.projectorErrors.Inc()
}

// RecordSinkCommit records the outcome of a graph sink transaction.
func RecordSinkCommit(outcome string) {
	m.init()
	m.sinkCommitsTotal.WithLabelValues(outcome).Inc()
}

// RecordBlobWriteFailure records a non-fatal blob sink write failure.
func RecordBlobWriteFailure() {
	m.init()
	m.blobWriteFailures.Inc()
}
