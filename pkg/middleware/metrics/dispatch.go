package metrics

import (
	"context"
	"time"
)

// Handler result labels.
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)

// ObserveDispatch marks a handler invocation as started.
func ObserveDispatch(context.Context, string, string) {
	handlersInFlight.Inc()
}

// ObserveSuccess records a handler that returned without error.
func ObserveSuccess(_ context.Context, route, function string, _ int, d time.Duration) {
	observeDone(route, function, ResultSuccess, d)
}

// ObserveFailure records a handler that failed, panicked or timed out.
func ObserveFailure(_ context.Context, route, function string, _ error, d time.Duration) {
	observeDone(route, function, ResultFailure, d)
}

// ObserveNoHandler counts a request that matched no function.
func ObserveNoHandler(context.Context, string) {
	unmatchedRequests.Inc()
}

func observeDone(route, function, result string, d time.Duration) {
	if route == "" {
		route = "*"
	}
	handlersInFlight.Dec()
	handlerInvocations.WithLabelValues(route, function, result).Inc()
	handlerDuration.WithLabelValues(route, function).Observe(d.Seconds())
}
