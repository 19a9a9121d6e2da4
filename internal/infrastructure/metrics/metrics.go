// Package metrics exposes the ledger's Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "bank_santri"

var (
	// MovementsPosted counts committed postings by kind (deposit, withdrawal, transfer).
	MovementsPosted = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "movements_posted_total",
		Help:      "Committed movement postings by kind.",
	}, []string{"kind"})

	// PostingRejections counts postings refused before or during the transaction.
	PostingRejections = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "posting_rejections_total",
		Help:      "Rejected movement postings by error kind.",
	}, []string{"reason"})

	PostingDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "posting_duration_seconds",
		Help:      "Latency of PostMovement including the database transaction.",
		Buckets:   prometheus.DefBuckets,
	})

	ReconcileMismatches = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "reconcile_mismatched_accounts",
		Help:      "Accounts whose cached balance disagreed with the ledger on the last reconcile run.",
	})

	OutboxRelayed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "outbox_messages_total",
		Help:      "Outbox messages handled by the relay, by result.",
	}, []string{"result"})

	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "HTTP requests by route and status.",
	}, []string{"method", "route", "status"})
)
