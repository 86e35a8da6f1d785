// Package metrics defines and registers the custom Prometheus metrics of the
// Infield user service. It is the single source of truth for metric names,
// labels, and help strings.
//
// Metrics are registered with the default Prometheus registry on import via
// promauto. HTTP request metrics come from the echoprometheus middleware.
package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/infield/user-service/internal/core/domain"
)

const namespace = "infield_users"

// ── Profile metrics ───────────────────────────────────────────────────────────

// ProfileMutationsTotal counts profile mutations by operation and outcome.
// Labels:
//   - operation: "edit", "add_skills", "remove_specialty", "remove_region", "delete"
//   - result: "ok" or the error kind ("no_data", "invalid_argument", "not_allowed", "error")
var ProfileMutationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "profile_mutations_total",
		Help:      "Total number of profile mutations, by operation and result.",
	},
	[]string{"operation", "result"},
)

// ── Directory metrics ─────────────────────────────────────────────────────────

// SearchResults observes how many users a name search returned.
var SearchResults = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "search_results",
		Help:      "Number of users returned per name search.",
		Buckets:   []float64{0, 1, 5, 10, 25, 50, 100, 250},
	},
)

// ── Verification metrics ──────────────────────────────────────────────────────

// PhoneVerificationsTotal counts verification code requests.
// Label:
//   - result: "ok", "throttled", or another Result value
var PhoneVerificationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "phone_verifications_total",
		Help:      "Total number of phone verification requests, by result.",
	},
	[]string{"result"},
)

// ── Rating metrics ────────────────────────────────────────────────────────────

// RatingsTotal counts agronomist ratings by result.
var RatingsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "ratings_total",
		Help:      "Total number of agronomist ratings, by result.",
	},
	[]string{"result"},
)

// Result converts an operation error into a low-cardinality label value.
func Result(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrNoData):
		return "no_data"
	case errors.Is(err, domain.ErrInvalidArgument):
		return "invalid_argument"
	case errors.Is(err, domain.ErrNotAllowed):
		return "not_allowed"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrRateLimited):
		return "throttled"
	default:
		return "error"
	}
}
