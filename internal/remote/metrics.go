package remote

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	resultSuccess  = "success"
	resultRejected = "rejected"
	resultTimeout  = "timeout"
	resultError    = "error"

	operationFetch = "fetch"
)

var (
	// requestsTotal counts remote store calls by action and outcome.
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gymdesk_remote_requests_total",
		Help: "Remote store calls by action and result",
	}, []string{"action", "result"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "gymdesk_remote_request_duration_seconds",
		Help:    "Remote store call latency in seconds",
		Buckets: prometheus.ExponentialBuckets(0.05, 2, 9), // 50ms to ~12.8s
	}, []string{"action"})
)
