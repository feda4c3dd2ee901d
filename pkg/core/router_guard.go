package core

import (
	"net/http"

	goerrors "github.com/goliatone/go-errors"

	"github.com/joeydtaylor/steeze-webhooks/pkg/middleware/auth"
)

// withGuard rejects unauthenticated callers. Without an auth middleware
// every request is rejected.
func withGuard(next http.Handler, a *auth.Middleware) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if a == nil || !a.IsAuthenticated(r.Context()) {
			writeServiceError(w, unauthorizedError())
			return
		}
		next.ServeHTTP(w, r)
	})
}

func unauthorizedError() *goerrors.Error {
	return goerrors.New("webhook: caller is not authenticated", goerrors.CategoryAuth).
		WithCode(http.StatusUnauthorized).
		WithTextCode(TextCodeUnauthorized)
}
