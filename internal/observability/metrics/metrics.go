package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"service", "method", "path", "status"},
	)

	AuthRegistrationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "iam_registrations_total",
			Help: "Total number of registration attempts.",
		},
		[]string{"service", "result"},
	)

	AuthLoginsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "iam_logins_total",
			Help: "Total number of login attempts.",
		},
		[]string{"service", "result"},
	)

	TokensIssuedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "iam_tokens_issued_total",
			Help: "Total number of token pairs issued or refreshed.",
		},
		[]string{"service", "flow", "result"},
	)

	OtpGeneratedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "iam_otp_generated_total",
			Help: "Total number of OTP codes generated.",
		},
		[]string{"service", "type", "result"},
	)

	OtpVerifiedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "iam_otp_verified_total",
			Help: "Total number of OTP verification attempts.",
		},
		[]string{"service", "result"},
	)

	PrivilegeChecksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "iam_privilege_checks_total",
			Help: "Total number of privilege check decisions.",
		},
		[]string{"service", "result"},
	)
)

func MustRegister(serviceName string) {
	HTTPRequestsTotal = HTTPRequestsTotal.MustCurryWith(prometheus.Labels{"service": serviceName})
	AuthRegistrationsTotal = AuthRegistrationsTotal.MustCurryWith(prometheus.Labels{"service": serviceName})
	AuthLoginsTotal = AuthLoginsTotal.MustCurryWith(prometheus.Labels{"service": serviceName})
	TokensIssuedTotal = TokensIssuedTotal.MustCurryWith(prometheus.Labels{"service": serviceName})
	OtpGeneratedTotal = OtpGeneratedTotal.MustCurryWith(prometheus.Labels{"service": serviceName})
	OtpVerifiedTotal = OtpVerifiedTotal.MustCurryWith(prometheus.Labels{"service": serviceName})
	PrivilegeChecksTotal = PrivilegeChecksTotal.MustCurryWith(prometheus.Labels{"service": serviceName})

	prometheus.MustRegister(
		HTTPRequestsTotal,
		AuthRegistrationsTotal,
		AuthLoginsTotal,
		TokensIssuedTotal,
		OtpGeneratedTotal,
		OtpVerifiedTotal,
		PrivilegeChecksTotal,
	)
}
