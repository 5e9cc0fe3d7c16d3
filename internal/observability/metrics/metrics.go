package metrics

import "github.com/prometheus/client_golang/prometheus"

const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	AuthRegistrationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_registrations_total",
			Help: "Total number of registration attempts.",
		},
		[]string{"result"},
	)

	AuthLoginsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_logins_total",
			Help: "Total number of login attempts.",
		},
		[]string{"result"},
	)

	// flow: temporary, full or refresh.
	TokensIssuedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_tokens_issued_total",
			Help: "Total number of access tokens issued.",
		},
		[]string{"flow", "result"},
	)

	// method: totp, email or recovery.
	MfaVerificationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_mfa_verifications_total",
			Help: "Total number of second factor verification attempts.",
		},
		[]string{"method", "result"},
	)

	// kind: verification, password_reset or mfa_code.
	NotificationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_notifications_total",
			Help: "Total number of outbound emails.",
		},
		[]string{"kind", "result"},
	)
)

func collectors() []prometheus.Collector {
	return []prometheus.Collector{
		HTTPRequestsTotal,
		HTTPRequestDurationSeconds,
		AuthRegistrationsTotal,
		AuthLoginsTotal,
		TokensIssuedTotal,
		MfaVerificationsTotal,
		NotificationsTotal,
	}
}

// MustRegister registers every collector on reg with a constant service label.
func MustRegister(reg prometheus.Registerer, serviceName string) {
	prometheus.WrapRegistererWith(prometheus.Labels{"service": serviceName}, reg).
		MustRegister(collectors()...)
}

func Result(err error) string {
	if err != nil {
		return ResultFailure
	}
	return ResultSuccess
}
