package kafka_middleware

import (
	"context"
	"time"

	"gymdesk/pkg/kafka"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	messagesPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gymdesk_kafka_messages_published_total",
			Help: "Kafka publish attempts by topic and result",
		},
		[]string{"topic", "result"},
	)

	publishDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gymdesk_kafka_publish_duration_seconds",
			Help:    "Kafka publish latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"topic"},
	)
)

func MetricsProducerMiddleware() kafka.ProducerMiddleware {
	return func(ctx context.Context, msg kafka.Message, next func(ctx context.Context, msg kafka.Message) error) error {
		start := time.Now()
		err := next(ctx, msg)
		publishDuration.WithLabelValues(msg.Topic).Observe(time.Since(start).Seconds())

		result := "success"
		if err != nil {
			result = "error"
		}
		messagesPublished.WithLabelValues(msg.Topic, result).Inc()
		return err
	}
}
