package purge

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	outcomeSuccess    = "success"
	outcomeResolution = "resolution_error"
	outcomeFetch      = "fetch_error"
	outcomeDelete     = "delete_error"
	outcomeTimeout    = "timeout"
)

var (
	purgesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tguserbot",
			Subsystem: "purge",
			Name:      "operations_total",
			Help:      "Total number of purge operations by outcome",
		},
		[]string{"outcome"},
	)
	messagesDeleted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "tguserbot",
			Subsystem: "purge",
			Name:      "messages_deleted_total",
			Help:      "Total number of message identifiers submitted in successful batch deletions",
		},
	)
	batchesFlushed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "tguserbot",
			Subsystem: "purge",
			Name:      "batches_flushed_total",
			Help:      "Total number of successful batch deletions",
		},
	)
	noticeFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tguserbot",
			Subsystem: "purge",
			Name:      "notice_failures_total",
			Help:      "Total number of completion notice failures by stage",
		},
		[]string{"stage"},
	)
	purgeDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "tguserbot",
			Subsystem: "purge",
			Name:      "duration_seconds",
			Help:      "Duration of purge operations, notice included",
			Buckets:   prometheus.ExponentialBuckets(0.25, 2, 10),
		},
	)
)

func init() {
	prometheus.MustRegister(purgesTotal, messagesDeleted, batchesFlushed, noticeFailures, purgeDuration)
}

func observePurge(err error, duration time.Duration) {
	purgesTotal.WithLabelValues(outcome(err)).Inc()
	purgeDuration.Observe(duration.Seconds())
}

func outcome(err error) string {
	var resErr *ResolutionError
	var tErr *TransportError
	switch {
	case err == nil:
		return outcomeSuccess
	case errors.Is(err, context.DeadlineExceeded):
		return outcomeTimeout
	case errors.As(err, &resErr):
		return outcomeResolution
	case errors.As(err, &tErr) && tErr.Op == OpFetchHistory:
		return outcomeFetch
	default:
		return outcomeDelete
	}
}
