package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// MessagesProcessed The total number of processed messages (counter)
	MessagesProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "messages",
			Name:      "processed_total",
			Help:      "The total number of processed messages",
		},
		[]string{"topic", "handler"},
	)

	// MessagesProcessingFailed total number of message processing failures (counter)
	MessagesProcessingFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "messages",
			Name:      "processing_failed_total",
			Help:      "The total number of message processing failures",
		},
		[]string{"topic", "handler"},
	)

	// MessagesProcessingDuration The total time spent processing messages (summary with quantiles 0.5, 0.9, and 0.99)
	MessagesProcessingDuration = promauto.NewSummaryVec(
		prometheus.SummaryOpts{
			Namespace:  "messages",
			Name:       "processing_duration_seconds",
			Help:       "The total time spent processing messages",
			Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
		},
		[]string{"topic", "handler"},
	)

	// TicketsIssued counts issuance outcomes, labeled created or replayed.
	TicketsIssued = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "bookings",
			Name:      "tickets_issued_total",
			Help:      "The total number of ticket issuance calls by outcome",
		},
		[]string{"result"},
	)

	// IssuanceConflicts counts duplicate-key races recovered during issuance.
	IssuanceConflicts = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "bookings",
			Name:      "issuance_conflicts_recovered_total",
			Help:      "The total number of concurrent issuance conflicts recovered internally",
		},
	)

	// IntentsReclaimed counts abandoned booking intents removed by the sweeper.
	IntentsReclaimed = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "bookings",
			Name:      "abandoned_intents_reclaimed_total",
			Help:      "The total number of abandoned booking intents reclaimed",
		},
	)

	// TicketsPruned counts stale unused tickets removed by the sweeper.
	TicketsPruned = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "bookings",
			Name:      "stale_tickets_pruned_total",
			Help:      "The total number of stale unused tickets pruned",
		},
	)

	// RefundsInitiated counts accepted cancellations, labeled gateway or manual.
	RefundsInitiated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "bookings",
			Name:      "refunds_initiated_total",
			Help:      "The total number of refunds initiated by mode",
		},
		[]string{"mode"},
	)
)
