package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "feedbackhub"

var (
	// AccessDecisions counts Access Guard outcomes; reason is "granted" or
	// a denial code.
	AccessDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "access_decisions_total",
		Help:      "Project access decisions by outcome.",
	}, []string{"reason"})

	EmbedTokens = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "embed_tokens_total",
		Help:      "Embed token issuances and verifications by result.",
	}, []string{"op", "result"})

	FeedbackSubmissions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "feedback_submissions_total",
		Help:      "Widget feedback submissions by result.",
	}, []string{"result"})

	TasksProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "tasks_processed_total",
		Help:      "Background tasks processed by type and result.",
	}, []string{"type", "result"})
)
