package sessionkit

import (
	internalmetrics "github.com/daon-network/sessionkit/internal/metrics"
)

// MetricID identifies a specific counter in the in-process metrics system.
type MetricID = internalmetrics.MetricID

const (
	// MetricLinkRequested counts magic-link issuance requests.
	MetricLinkRequested = internalmetrics.MetricLinkRequested
	// MetricLinkRequestFailed counts rejected magic-link requests.
	MetricLinkRequestFailed = internalmetrics.MetricLinkRequestFailed
	// MetricLinkVerified counts accepted link-token exchanges.
	MetricLinkVerified = internalmetrics.MetricLinkVerified
	// MetricLinkRejected counts invalid or expired link tokens.
	MetricLinkRejected = internalmetrics.MetricLinkRejected
	// MetricSecondFactorRequired counts verifications demanding a code.
	MetricSecondFactorRequired = internalmetrics.MetricSecondFactorRequired
	// MetricSecondFactorSetupRequired counts verifications demanding enrollment.
	MetricSecondFactorSetupRequired = internalmetrics.MetricSecondFactorSetupRequired
	// MetricSecondFactorSuccess counts completed second-factor exchanges.
	MetricSecondFactorSuccess = internalmetrics.MetricSecondFactorSuccess
	// MetricSecondFactorFailure counts rejected second-factor codes.
	MetricSecondFactorFailure = internalmetrics.MetricSecondFactorFailure
	// MetricLoginSuccess counts sessions reaching the authenticated state
	// through a flow (not through restore or broadcast).
	MetricLoginSuccess = internalmetrics.MetricLoginSuccess
	// MetricRefreshSuccess counts successful refresh round-trips.
	MetricRefreshSuccess = internalmetrics.MetricRefreshSuccess
	// MetricRefreshFailure counts refreshes that forced a logout.
	MetricRefreshFailure = internalmetrics.MetricRefreshFailure
	// MetricRefreshCoalesced counts callers that attached to an in-flight
	// refresh instead of issuing their own call.
	MetricRefreshCoalesced = internalmetrics.MetricRefreshCoalesced
	// MetricRefreshRotated counts refreshes where the server rotated the
	// refresh credential.
	MetricRefreshRotated = internalmetrics.MetricRefreshRotated
	// MetricRestoreSuccess counts startups that revived a persisted session.
	MetricRestoreSuccess = internalmetrics.MetricRestoreSuccess
	// MetricRestoreFailure counts startups whose persisted session was
	// rejected; the outcome is a normal "not logged in".
	MetricRestoreFailure = internalmetrics.MetricRestoreFailure
	// MetricLogout counts local logouts, voluntary or forced.
	MetricLogout = internalmetrics.MetricLogout
	// MetricRevokeFailed counts swallowed server-side revocation failures.
	MetricRevokeFailed = internalmetrics.MetricRevokeFailed
	// MetricBroadcastPublished counts messages fanned out to siblings.
	MetricBroadcastPublished = internalmetrics.MetricBroadcastPublished
	// MetricBroadcastPublishFailed counts swallowed publish failures.
	MetricBroadcastPublishFailed = internalmetrics.MetricBroadcastPublishFailed
	// MetricBroadcastApplied counts sibling messages applied to local state.
	MetricBroadcastApplied = internalmetrics.MetricBroadcastApplied
	// MetricBroadcastIgnored counts self-originated or unknown messages.
	MetricBroadcastIgnored = internalmetrics.MetricBroadcastIgnored
)

// Metrics holds the coordinator's atomic counters.
type Metrics = internalmetrics.Metrics

// MetricsSnapshot is a point-in-time deep copy of all counters.
type MetricsSnapshot = internalmetrics.Snapshot

// NewMetrics creates a [Metrics] instance configured by cfg. When Enabled is
// false, all operations are no-ops.
func NewMetrics(cfg MetricsConfig) *Metrics {
	return internalmetrics.New(internalmetrics.Config{Enabled: cfg.Enabled})
}
