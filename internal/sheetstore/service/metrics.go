package service

import (
	"errors"

	apperrors "gymdesk/pkg/errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	resultSuccess  = "success"
	resultRejected = "rejected"
	resultError    = "error"
)

var (
	actionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gymdesk_sheetstore_actions_total",
			Help: "Actions received by the sheet store by action and result",
		},
		[]string{"action", "result"},
	)

	actionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gymdesk_sheetstore_action_duration_seconds",
			Help:    "Time to apply one action",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"action"},
	)
)

func resultFor(err error) string {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) && appErr.Code != apperrors.CodeInternal {
		return resultRejected
	}
	return resultError
}
