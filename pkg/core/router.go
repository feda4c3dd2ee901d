// core/router.go
package core

import (
	"net/http"

	chimd "github.com/go-chi/chi/v5/middleware"

	"github.com/joeydtaylor/steeze-webhooks/pkg/manifest"
	"github.com/joeydtaylor/steeze-webhooks/pkg/middleware/auth"
	"github.com/joeydtaylor/steeze-webhooks/pkg/middleware/logger"
	hmetrics "github.com/joeydtaylor/steeze-webhooks/pkg/middleware/metrics"
	httpx "github.com/joeydtaylor/steeze-webhooks/pkg/transport/httpx"
)

type BuildDeps struct {
	Auth       *auth.Middleware
	LogMW      *logger.Middleware
	Metrics    http.Handler
	Router     httpx.Router
	Dispatcher *Dispatcher
}

// BuildRouter mounts the dispatcher under the manifest base path behind the
// shared middleware stack.
func BuildRouter(cfg manifest.Config, d BuildDeps) http.Handler {
	r := d.Router
	r.Use(chimd.RequestID, chimd.Recoverer, chimd.Heartbeat("/ping"))

	if d.Auth != nil {
		r.Use(d.Auth.Middleware())
	}
	if d.LogMW != nil {
		r.Use(d.LogMW.Middleware(d.Auth))
	}
	r.Use(hmetrics.Collect(d.Auth))

	if d.Metrics != nil {
		r.Get("/metrics", d.Metrics)
	}

	var h http.Handler = d.Dispatcher
	if cfg.Server.RequireAuth {
		h = withGuard(h, d.Auth)
	}
	r.Mount(cfg.Server.BasePath, h)
	return r.Mux()
}

// MetricsHooks feeds dispatcher events into the Prometheus collectors.
func MetricsHooks() []Option {
	return []Option{
		WithOnDispatch(hmetrics.ObserveDispatch),
		WithOnSuccess(hmetrics.ObserveSuccess),
		WithOnFailure(hmetrics.ObserveFailure),
		WithOnNoHandler(hmetrics.ObserveNoHandler),
	}
}
