// Package metrics defines and registers the custom Prometheus metrics for the
// villa API. It is the single source of truth for metric names, labels, and
// help strings; request-level HTTP metrics come from echoprometheus and are
// not duplicated here.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "villa"

// LoginsTotal counts login attempts.
// Label:
//   - result: "success" or "failure" (bad credentials and unknown users are
//     indistinguishable and both count as "failure")
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// RegistrationsTotal counts registration attempts.
// Label:
//   - result: "success", "duplicate", or "error"
var RegistrationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "registrations_total",
		Help:      "Total number of registration attempts, by result.",
	},
	[]string{"result"},
)

// TokenRejectionsTotal counts requests the access guard refused.
// Label:
//   - reason: "missing_header", "malformed_header", "expired", "invalid"
var TokenRejectionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "token_rejections_total",
		Help:      "Total number of requests rejected by the token guard, by reason.",
	},
	[]string{"reason"},
)

// CacheTotal counts response-cache lookups on read routes.
// Label:
//   - result: "hit" or "miss"
var CacheTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "response_cache_total",
		Help:      "Total number of response cache lookups, by result (hit/miss).",
	},
	[]string{"result"},
)
