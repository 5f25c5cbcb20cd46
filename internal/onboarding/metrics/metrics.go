// Package metrics provides Prometheus metrics for the onboarding workflow.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains all onboarding workflow metrics.
type Metrics struct {
	// Verification outcomes per channel.
	VerificationsTotal          *prometheus.CounterVec   // by channel, outcome (verified, failed, stale)
	VerificationDurationSeconds *prometheus.HistogramVec // remote call latency by channel

	// OTP challenge lifecycle.
	OTPTransitionsTotal *prometheus.CounterVec // by target state

	// Profile submission outcomes.
	SubmissionsTotal *prometheus.CounterVec // by outcome (created, conflict, validation, auth, server)

	// Live session gauge.
	ActiveSessions prometheus.Gauge
}

// New creates a Metrics instance with all metrics registered on the default registry.
func New() *Metrics {
	return &Metrics{
		VerificationsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "scoutpay_verifications_total",
			Help: "Verification attempts by channel and outcome",
		}, []string{"channel", "outcome"}),

		VerificationDurationSeconds: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "scoutpay_verification_duration_seconds",
			Help:    "Duration of remote verification calls by channel",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20},
		}, []string{"channel"}),

		OTPTransitionsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "scoutpay_otp_transitions_total",
			Help: "BVN OTP challenge transitions by target state",
		}, []string{"state"}),

		SubmissionsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "scoutpay_submissions_total",
			Help: "Wallet profile submission attempts by outcome",
		}, []string{"outcome"}),

		ActiveSessions: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "scoutpay_active_sessions",
			Help: "Currently live onboarding sessions",
		}),
	}
}

// RecordVerification records a verification attempt outcome for a channel.
func (m *Metrics) RecordVerification(channel, outcome string) {
	m.VerificationsTotal.WithLabelValues(channel, outcome).Inc()
}

// ObserveVerificationDuration records the latency of a remote verification call.
func (m *Metrics) ObserveVerificationDuration(channel string, seconds float64) {
	m.VerificationDurationSeconds.WithLabelValues(channel).Observe(seconds)
}

// RecordOTPTransition records a challenge transition into the given state.
func (m *Metrics) RecordOTPTransition(state string) {
	m.OTPTransitionsTotal.WithLabelValues(state).Inc()
}

// RecordSubmission records a submission outcome.
func (m *Metrics) RecordSubmission(outcome string) {
	m.SubmissionsTotal.WithLabelValues(outcome).Inc()
}

// SetActiveSessions updates the live session gauge.
func (m *Metrics) SetActiveSessions(n int) {
	m.ActiveSessions.Set(float64(n))
}
