// Package metrics defines the custom Prometheus metrics for the accounts API.
// It is the single source of truth for metric names, labels, and help strings.
//
// Metrics register themselves with the default registry at init time via
// promauto; the /metrics endpoint exposes them.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "accounts"

// SignupsTotal counts successfully created user accounts.
var SignupsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "signups_total",
		Help:      "Total number of successful signups.",
	},
)

// LoginsTotal counts login attempts that reached credential verification.
// Label:
//   - result: "success", "incorrect_email" or "incorrect_password"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, labelled by result.",
	},
	[]string{"result"},
)

// TokensIssuedTotal counts bearer tokens signed after signup or login.
var TokensIssuedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "tokens_issued_total",
		Help:      "Total number of bearer tokens issued.",
	},
)

// PasswordChangesTotal counts completed password rotations.
var PasswordChangesTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "password_changes_total",
		Help:      "Total number of completed password changes.",
	},
)

// PasswordHashDuration measures bcrypt hashing time. Useful for sizing the
// cost factor: hashing is the one intentionally expensive step per request.
var PasswordHashDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "password_hash_duration_seconds",
		Help:      "Duration of bcrypt password hashing.",
		Buckets:   prometheus.DefBuckets,
	},
)

// UserListCacheTotal counts lookups against the cached user listing.
// Label:
//   - result: "hit" or "miss"
var UserListCacheTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "user_list_cache_total",
		Help:      "Total number of user list cache lookups, labelled by result.",
	},
	[]string{"result"},
)
