package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Submission results
const (
	ResultAdmitted       = "admitted"
	ResultInvalidLength  = "invalid_length"
	ResultCaptionTooLong = "caption_too_long"
	ResultRateLimited    = "rate_limited"
	ResultDropped        = "dropped"
	ResultFailed         = "failed"
)

// Decision results
const (
	DecisionApplied        = "applied"
	DecisionPublishFailed  = "publish_failed"
	DecisionAlreadyDecided = "already_decided"
	DecisionMalformed      = "malformed"
	DecisionEditFailed     = "edit_failed"
)

var SubmissionsCounter = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "relay_submissions_total",
	Help: "The total number of private submissions by admission result",
}, []string{"result"})

var DecisionsCounter = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "relay_decisions_total",
	Help: "The total number of moderator decisions by action and result",
}, []string{"action", "result"})

var NotifyFailuresCounter = promauto.NewCounter(prometheus.CounterOpts{
	Name: "relay_sender_notify_failures_total",
	Help: "The total number of sender notifications that could not be delivered",
})

var GatewayErrorsCounter = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "relay_gateway_errors_total",
	Help: "The total number of failed gateway calls by operation",
}, []string{"op"})

var PendingReviewsGauge = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "relay_pending_reviews",
	Help: "Number of reviewable units held in the review cache",
})

var RateLimitEntriesGauge = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "relay_rate_limit_entries",
	Help: "Number of senders tracked by the rate limiter",
})

var UpdatesCounter = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "relay_updates_total",
	Help: "The total number of platform updates received by kind",
}, []string{"kind"})
