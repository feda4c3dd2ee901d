package auth

import "net/http"

// Dev-only caller injection via headers when AUTH_DEV_BYPASS=true
func devCallerFromHeaders(r *http.Request) Caller {
	sub := r.Header.Get("X-Dev-Caller")
	if sub == "" {
		return Caller{}
	}
	return Caller{
		Subject: sub,
		Issuer:  r.Header.Get("X-Dev-Issuer"),
		Scopes:  splitScopes(r.Header.Get("X-Dev-Scopes")),
		Source:  "dev",
	}
}
