// Package metrics holds the Prometheus collectors shared by every service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests served",
		},
		[]string{"service", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"service", "route"},
	)

	PredictionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "predictions_total",
			Help: "Total number of model predictions by outcome",
		},
		[]string{"service", "outcome"},
	)

	VerificationDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "verification_decisions_total",
			Help: "Identity verification decisions",
		},
		[]string{"decision"},
	)

	EmbeddingCache = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "embedding_cache_total",
			Help: "Embedding cache lookups by result",
		},
		[]string{"result"},
	)
)

// Verification decision labels.
const (
	DecisionApproved    = "auto_approved"
	DecisionMismatch    = "name_mismatch"
	DecisionNoCandidate = "no_name_found"
	DecisionError       = "error"
)
