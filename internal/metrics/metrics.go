// Package metrics holds the process-wide Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ResolverRequests counts logical metadata lookups, labeled by outcome
	// (ok, not_found, error).
	ResolverRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "zotgraph_resolver_requests_total",
			Help: "Metadata service lookups by outcome",
		},
		[]string{"outcome"},
	)

	// ResolverRetries counts transient failures that were retried.
	ResolverRetries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "zotgraph_resolver_retries_total",
			Help: "Metadata service requests retried after a transient failure",
		},
	)

	// ResolverLatency measures single HTTP round trips to the metadata service.
	ResolverLatency = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "zotgraph_resolver_request_duration_seconds",
			Help:    "Duration of metadata service HTTP requests",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
	)

	// NodeCacheLookups counts node cache reads, labeled hit, miss or corrupt.
	NodeCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "zotgraph_node_cache_lookups_total",
			Help: "Node cache lookups by result",
		},
		[]string{"result"},
	)

	// ExtractionRequests counts reference extractions, labeled by source
	// (cache, service, local) and outcome.
	ExtractionRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "zotgraph_extraction_requests_total",
			Help: "Reference-list extractions by source and outcome",
		},
		[]string{"source", "outcome"},
	)

	// GraphNodes tracks the number of present nodes per project.
	GraphNodes = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "zotgraph_graph_nodes",
			Help: "Present nodes in a project graph",
		},
		[]string{"project"},
	)

	// GraphEdges tracks the number of edges per project.
	GraphEdges = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "zotgraph_graph_edges",
			Help: "Edges in a project graph",
		},
		[]string{"project"},
	)
)
