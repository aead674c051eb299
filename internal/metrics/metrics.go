package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var _ Recorder = (*Metrics)(nil)

// Metrics holds all Prometheus collectors for the application
type Metrics struct {
	// Token lifecycle
	TokensIssuedTotal       *prometheus.CounterVec
	TokensRevokedTotal      *prometheus.CounterVec
	TokensRefreshedTotal    *prometheus.CounterVec
	TokenValidationTotal    *prometheus.CounterVec
	TokenIssuanceDuration   *prometheus.HistogramVec
	TokenValidationDuration prometheus.Histogram

	// Authorization endpoint
	AuthorizationRequestsTotal *prometheus.CounterVec

	// Sign-in surface
	LoginTotal  *prometheus.CounterVec
	LogoutTotal prometheus.Counter

	// UserInfo endpoint
	UserInfoRequestsTotal *prometheus.CounterVec

	// Grant artifact store
	ArtifactsActive      *prometheus.GaugeVec
	ArtifactsPurgedTotal prometheus.Counter

	// HRIS sync
	HRISSyncTotal    *prometheus.CounterVec
	HRISSyncDuration prometheus.Histogram

	// HTTP
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge
}

var (
	defaultMetrics *Metrics
	once           sync.Once
)

// Init returns the process-wide recorder. Prometheus collectors may
// only be registered once, so the concrete instance is a singleton;
// disabled metrics get the noop recorder instead.
func Init(enabled bool) Recorder {
	if !enabled {
		return NewNoopRecorder()
	}

	once.Do(func() {
		defaultMetrics = initMetrics()
	})
	return defaultMetrics
}

func initMetrics() *Metrics {
	return &Metrics{
		TokensIssuedTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "oidc_tokens_issued_total",
				Help: "Total number of tokens issued",
			},
			[]string{"category", "grant_type"}, // category: access, refresh; grant_type: authorization_code, refresh_token
		),
		TokensRevokedTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "oidc_tokens_revoked_total",
				Help: "Total number of tokens revoked",
			},
			[]string{"category", "reason"},
		),
		TokensRefreshedTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "oidc_token_refresh_total",
				Help: "Total number of refresh grant attempts",
			},
			[]string{"result"}, // success, error
		),
		TokenValidationTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "oidc_token_validation_total",
				Help: "Total number of access token validations",
			},
			[]string{"result"}, // valid, invalid, expired
		),
		TokenIssuanceDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "oidc_token_issuance_duration_seconds",
				Help:    "Time taken to mint tokens",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"grant_type"},
		),
		TokenValidationDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "oidc_token_validation_duration_seconds",
				Help:    "Time taken to validate access tokens",
				Buckets: prometheus.DefBuckets,
			},
		),

		AuthorizationRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "oidc_authorization_requests_total",
				Help: "Total number of authorization endpoint requests",
			},
			[]string{"result"}, // issued, denied, access_denied, error
		),

		LoginTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "auth_login_total",
				Help: "Total number of login attempts",
			},
			[]string{"method", "result"}, // method: local, github
		),
		LogoutTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "auth_logout_total",
				Help: "Total number of logouts",
			},
		),

		UserInfoRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "oidc_userinfo_requests_total",
				Help: "Total number of UserInfo requests",
			},
			[]string{"result"}, // success, invalid_token, user_disabled
		),

		ArtifactsActive: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "grant_artifacts_active",
				Help: "Current number of live grant artifacts by kind",
			},
			[]string{"kind"},
		),
		ArtifactsPurgedTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "grant_artifacts_purged_total",
				Help: "Total number of expired grant artifacts removed by the purge sweep",
			},
		),

		HRISSyncTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hris_sync_total",
				Help: "Total number of HRIS roster sync runs",
			},
			[]string{"result"}, // success, error
		),
		HRISSyncDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "hris_sync_duration_seconds",
				Help:    "Duration of HRIS roster sync runs",
				Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120},
			},
		),

		HTTPRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "http_request_duration_seconds",
				Help: "HTTP request latency in seconds",
				Buckets: []float64{
					0.001, 0.005, 0.010, 0.025, 0.050,
					0.100, 0.250, 0.500, 1.0, 2.5, 5.0, 10.0,
				},
			},
			[]string{"method", "path"},
		),
		HTTPRequestsInFlight: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Current number of HTTP requests being served",
			},
		),
	}
}
