package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	resultSuccess = "success"
	resultError   = "error"
	resultFailure = "failure"
)

// RecordTokenIssued records one minted token
func (m *Metrics) RecordTokenIssued(category, grantType string, duration time.Duration) {
	m.TokensIssuedTotal.WithLabelValues(category, grantType).Inc()
	m.TokenIssuanceDuration.WithLabelValues(grantType).Observe(duration.Seconds())
}

// RecordTokenRefresh records one refresh grant attempt
func (m *Metrics) RecordTokenRefresh(success bool) {
	result := resultSuccess
	if !success {
		result = resultError
	}
	m.TokensRefreshedTotal.WithLabelValues(result).Inc()
}

// RecordTokenRevoked records a revocation by category and reason
func (m *Metrics) RecordTokenRevoked(category, reason string) {
	m.TokensRevokedTotal.WithLabelValues(category, reason).Inc()
}

// RecordTokenValidation records an access token validation outcome
func (m *Metrics) RecordTokenValidation(result string, duration time.Duration) {
	m.TokenValidationTotal.WithLabelValues(result).Inc()
	m.TokenValidationDuration.Observe(duration.Seconds())
}

// RecordAuthorizationRequest records an authorization endpoint outcome
func (m *Metrics) RecordAuthorizationRequest(result string) {
	m.AuthorizationRequestsTotal.WithLabelValues(result).Inc()
}

// RecordLogin records a sign-in attempt by method
func (m *Metrics) RecordLogin(method string, success bool) {
	result := resultSuccess
	if !success {
		result = resultFailure
	}
	m.LoginTotal.WithLabelValues(method, result).Inc()
}

// RecordLogout records a session sign-out
func (m *Metrics) RecordLogout() {
	m.LogoutTotal.Inc()
}

// RecordUserInfoRequest records a UserInfo endpoint outcome
func (m *Metrics) RecordUserInfoRequest(result string) {
	m.UserInfoRequestsTotal.WithLabelValues(result).Inc()
}

// RecordArtifactsPurged records a purge sweep's removal count
func (m *Metrics) RecordArtifactsPurged(count int64) {
	m.ArtifactsPurgedTotal.Add(float64(count))
}

// RecordHRISSync records one roster sync run
func (m *Metrics) RecordHRISSync(success bool, duration time.Duration) {
	result := resultSuccess
	if !success {
		result = resultError
	}
	m.HRISSyncTotal.WithLabelValues(result).Inc()
	m.HRISSyncDuration.Observe(duration.Seconds())
}

// SetActiveArtifacts sets the live artifact gauge for one kind
func (m *Metrics) SetActiveArtifacts(kind string, count int64) {
	m.ArtifactsActive.WithLabelValues(kind).Set(float64(count))
}

// HTTPMetricsMiddleware records request counts, latency, and in-flight
// gauge per route pattern.
func HTTPMetricsMiddleware(m Recorder) gin.HandlerFunc {
	metrics, ok := m.(*Metrics)
	if !ok {
		return func(c *gin.Context) {
			c.Next()
		}
	}

	return func(c *gin.Context) {
		// Skip the metrics endpoint itself
		if c.Request.URL.Path == "/metrics" {
			c.Next()
			return
		}

		start := time.Now()

		metrics.HTTPRequestsInFlight.Inc()
		defer metrics.HTTPRequestsInFlight.Dec()

		c.Next()

		// Use the route pattern, not the raw path, to bound cardinality
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}

		status := strconv.Itoa(c.Writer.Status())
		metrics.HTTPRequestsTotal.WithLabelValues(c.Request.Method, path, status).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(c.Request.Method, path).
			Observe(time.Since(start).Seconds())
	}
}
