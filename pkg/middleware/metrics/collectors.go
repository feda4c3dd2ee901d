package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	responseTime = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "webhook_http_response_time_seconds",
			Help:    "http response time.",
			Buckets: []float64{0.05, 0.1, 0.5, 1, 5, 10, 30, 60},
		},
	)

	totalHttpRequestsFromIssuer = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "webhook_http_requests_from_issuer_total", Help: "http requests by token issuer"},
		[]string{"issuer"},
	)

	totalHttpRequestsToUri = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "webhook_http_requests_to_uri_total", Help: "http requests to uri"},
		[]string{"code", "uri", "method"},
	)

	totalHttpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "webhook_http_requests_total", Help: "http requests by code, and method"},
		[]string{"code", "method"},
	)

	handlerInvocations = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "webhook_handler_invocations_total", Help: "handler invocations by route, function and result"},
		[]string{"route", "function", "result"},
	)

	handlerDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "webhook_handler_duration_seconds",
			Help:    "handler invocation time.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "function"},
	)

	handlersInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{Name: "webhook_handlers_in_flight", Help: "handler invocations currently running"},
	)

	unmatchedRequests = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "webhook_unmatched_requests_total", Help: "requests no function was bound to"},
	)
)

func init() {
	prometheus.MustRegister(
		responseTime,
		totalHttpRequestsFromIssuer,
		totalHttpRequestsToUri,
		totalHttpRequests,
		handlerInvocations,
		handlerDuration,
		handlersInFlight,
		unmatchedRequests,
	)
}
