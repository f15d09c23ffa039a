// Package metrics holds the Prometheus metrics for the service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	VisitsCreated   prometheus.Counter
	VisitsApproved  prometheus.Counter
	VisitsCancelled prometheus.Counter

	OTPSent      prometheus.Counter
	OTPVerified  prometheus.Counter
	OTPRejected  prometheus.Counter
	OTPThrottled prometheus.Counter

	CheckIns  prometheus.Counter
	CheckOuts prometheus.Counter

	NotificationFailures *prometheus.CounterVec

	RequestLatency *prometheus.HistogramVec
}

// New creates and registers all Prometheus metrics on the default registry.
func New() *Metrics {
	return NewWith(prometheus.DefaultRegisterer)
}

// NewWith registers the metrics on a specific registry. Tests pass a fresh
// prometheus.NewRegistry() to avoid duplicate registration panics.
func NewWith(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		VisitsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "visitgate_visits_created_total",
			Help: "Total number of visit records created",
		}),
		VisitsApproved: factory.NewCounter(prometheus.CounterOpts{
			Name: "visitgate_visits_approved_total",
			Help: "Total number of approve operations (re-approvals included)",
		}),
		VisitsCancelled: factory.NewCounter(prometheus.CounterOpts{
			Name: "visitgate_visits_cancelled_total",
			Help: "Total number of visits cancelled",
		}),
		OTPSent: factory.NewCounter(prometheus.CounterOpts{
			Name: "visitgate_otp_sent_total",
			Help: "Total number of one-time codes dispatched",
		}),
		OTPVerified: factory.NewCounter(prometheus.CounterOpts{
			Name: "visitgate_otp_verified_total",
			Help: "Total number of successful code verifications",
		}),
		OTPRejected: factory.NewCounter(prometheus.CounterOpts{
			Name: "visitgate_otp_rejected_total",
			Help: "Total number of rejected code verifications",
		}),
		OTPThrottled: factory.NewCounter(prometheus.CounterOpts{
			Name: "visitgate_otp_throttled_total",
			Help: "Total number of code requests rejected by the send throttle",
		}),
		CheckIns: factory.NewCounter(prometheus.CounterOpts{
			Name: "visitgate_checkins_total",
			Help: "Total number of visitor check-ins",
		}),
		CheckOuts: factory.NewCounter(prometheus.CounterOpts{
			Name: "visitgate_checkouts_total",
			Help: "Total number of visitor check-outs",
		}),
		NotificationFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "visitgate_notification_failures_total",
			Help: "Notification dispatch failures by channel",
		}, []string{"channel"}),
		RequestLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "visitgate_request_duration_seconds",
			Help:    "HTTP request latency by route",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method"}),
	}
}
