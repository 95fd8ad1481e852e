// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts one scrape run. Each run owns its registry so the counters
// start at zero and can be written out as a node-exporter textfile.
type Metrics struct {
	reg *prometheus.Registry

	IDsFound       prometheus.Counter
	RecordsFetched prometheus.Counter
	Assembled      prometheus.Counter
	Malformed      prometheus.Counter
	ChunksFailed   prometheus.Counter
	LastSuccess    prometheus.Gauge
}

// NewMetrics registers the scrape counters on a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		reg: prometheus.NewRegistry(),
		IDsFound: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pubmed_tool_ids_found_total",
			Help: "PMIDs returned by ESearch.",
		}),
		RecordsFetched: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pubmed_tool_records_fetched_total",
			Help: "Citation records returned by EFetch.",
		}),
		Assembled: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pubmed_tool_articles_assembled_total",
			Help: "Records assembled into canonical articles.",
		}),
		Malformed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pubmed_tool_records_malformed_total",
			Help: "Records skipped as malformed.",
		}),
		ChunksFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pubmed_tool_chunks_failed_total",
			Help: "Chunks skipped after a fetch or write failure.",
		}),
		LastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "pubmed_tool_last_success_timestamp_seconds",
			Help: "Unix time the last scrape finished without a failed chunk.",
		}),
	}
	m.reg.MustRegister(m.IDsFound, m.RecordsFetched, m.Assembled, m.Malformed, m.ChunksFailed, m.LastSuccess)
	return m
}

// Registry returns the registry holding the run's collectors.
func (m *Metrics) Registry() *prometheus.Registry { return m.reg }

// WriteTextfile writes the counters to path in text exposition format.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.reg)
}
