package metrics

import "time"

// Recorder is the instrumentation surface used by the services and
// handlers. Both the Prometheus implementation and the noop recorder
// satisfy it, so callers never branch on whether metrics are enabled.
type Recorder interface {
	// Token lifecycle
	RecordTokenIssued(category, grantType string, duration time.Duration)
	RecordTokenRefresh(success bool)
	RecordTokenRevoked(category, reason string)
	RecordTokenValidation(result string, duration time.Duration)

	// Authorization endpoint
	RecordAuthorizationRequest(result string)

	// Sign-in surface
	RecordLogin(method string, success bool)
	RecordLogout()

	// UserInfo endpoint
	RecordUserInfoRequest(result string)

	// Background jobs
	RecordArtifactsPurged(count int64)
	RecordHRISSync(success bool, duration time.Duration)

	// Gauges refreshed by the periodic updater
	SetActiveArtifacts(kind string, count int64)
}
