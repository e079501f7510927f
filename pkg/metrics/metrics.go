// Package metrics exposes Prometheus collectors for moderation activity.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	EventsSeen = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "slacksweep_events_total",
		Help: "Message events received, by variant.",
	}, []string{"variant"})

	MediaClassified = promauto.NewCounter(prometheus.CounterOpts{
		Name: "slacksweep_media_classified_total",
		Help: "Media items successfully scored by the classifier.",
	})

	ClassifierFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "slacksweep_classifier_failures_total",
		Help: "Classifier calls that failed and were treated as not flagged.",
	})

	MessagesFlagged = promauto.NewCounter(prometheus.CounterOpts{
		Name: "slacksweep_messages_flagged_total",
		Help: "Messages flagged as explicit and handed to the orchestrator.",
	})

	ModerationFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "slacksweep_moderation_failures_total",
		Help: "Moderation flows that aborted before completing.",
	})
)
