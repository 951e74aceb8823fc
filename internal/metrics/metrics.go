package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "licensegate"

var (
	LicenseChecks = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "license_checks_total",
		Help:      "License verifications by verdict.",
	}, []string{"verdict"})

	LicenseCheckDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "license_check_duration_seconds",
		Help:      "Time spent evaluating a license check, including the audit write.",
		Buckets:   prometheus.DefBuckets,
	})

	AuditWriteFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "audit_write_failures_total",
		Help:      "License log entries that could not be persisted.",
	})

	RateLimitDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rate_limit_decisions_total",
		Help:      "Rate governor decisions on the public check endpoint.",
	}, []string{"decision"})

	ExpiredBySweep = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "licenses_expired_by_sweep_total",
		Help:      "Licenses moved to EXPIRED by the background sweep.",
	})
)
