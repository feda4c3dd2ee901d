package logger

import (
	"bytes"
	"io"
	"net/http"
	"time"

	chimd "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/joeydtaylor/steeze-webhooks/pkg/middleware/auth"
)

// Middleware writes one access log line per request.
type Middleware struct {
	log *zap.Logger
}

// NewMiddleware logs to l, or to the shared access log when l is nil.
func NewMiddleware(l *zap.Logger) *Middleware { return &Middleware{log: l} }

func (m *Middleware) logger() *zap.Logger {
	if m.log != nil {
		return m.log
	}
	return accessLogger()
}

func (m *Middleware) Middleware(ca *auth.Middleware) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := chimd.NewWrapResponseWriter(w, r.ProtoMajor)

			// Read and restore the body so the dispatcher can still consume it.
			var body []byte
			if shouldCaptureBody(r) {
				if b, err := io.ReadAll(io.LimitReader(r.Body, maxLoggedBody)); err == nil {
					body = b
				}
				r.Body = io.NopCloser(io.MultiReader(bytes.NewReader(body), r.Body))
			}

			scheme := "http"
			if r.TLS != nil {
				scheme = "https"
			}

			start := time.Now()
			defer func() {
				isAuth := false
				var caller auth.Caller
				if ca != nil {
					isAuth = ca.IsAuthenticated(r.Context())
					caller = ca.GetCaller(r.Context())
				}

				log := m.logger().With(
					zap.String("requestId", chimd.GetReqID(r.Context())),
					zap.String("dispatchId", ww.Header().Get("X-Webhook-Dispatch-Id")),
					zap.String("httpScheme", scheme),
					zap.Bool("isAuthenticated", isAuth),
					zap.String("caller", caller.Subject),
					zap.String("issuer", caller.Issuer),
					zap.String("httpProto", r.Proto),
					zap.String("httpMethod", r.Method),
					zap.String("remoteAddr", r.RemoteAddr),
					zap.String("uri", r.URL.Path),
					zap.Duration("lat", time.Since(start)),
					zap.Int("responseSize", ww.BytesWritten()),
					zap.Int("status", ww.Status()),
				)
				if len(body) > 0 {
					log.Info("webhook request", zap.ByteString("requestData", body))
					return
				}
				log.Info("webhook request")
			}()

			next.ServeHTTP(ww, r)
		})
	}
}
