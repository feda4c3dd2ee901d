// middleware/auth/auth.go
package auth

import (
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/fx"
)

// Middleware verifies signed bearer tokens presented by webhook senders.
type Middleware struct {
	secret    []byte
	issuer    string
	audience  string
	leeway    time.Duration
	devBypass bool
	// queryParam is an alternate token carrier for senders that cannot set headers.
	queryParam string
}

type Option func(*Middleware)

func WithIssuer(iss string) Option      { return func(m *Middleware) { m.issuer = iss } }
func WithAudience(aud string) Option    { return func(m *Middleware) { m.audience = aud } }
func WithLeeway(d time.Duration) Option { return func(m *Middleware) { m.leeway = d } }
func WithQueryParam(name string) Option { return func(m *Middleware) { m.queryParam = name } }
func WithDevBypass(enabled bool) Option { return func(m *Middleware) { m.devBypass = enabled } }

// New returns a Middleware verifying HS256 tokens signed with secret.
// An empty secret rejects every token.
func New(secret []byte, opts ...Option) *Middleware {
	m := &Middleware{
		secret:     secret,
		leeway:     60 * time.Second,
		queryParam: "code",
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

// ProvideAuthentication wires the middleware from the environment.
func ProvideAuthentication() *Middleware {
	leeway := 60 * time.Second
	if v := strings.TrimSpace(os.Getenv("ASSERTION_LEEWAY_SECONDS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			leeway = time.Duration(n) * time.Second
		}
	}
	return New(
		[]byte(os.Getenv("WEBHOOK_SIGNING_SECRET")),
		WithIssuer(strings.TrimSpace(os.Getenv("WEBHOOK_TOKEN_ISSUER"))),
		WithAudience(strings.TrimSpace(os.Getenv("WEBHOOK_TOKEN_AUDIENCE"))),
		WithLeeway(leeway),
		WithDevBypass(os.Getenv("AUTH_DEV_BYPASS") == "true"),
	)
}

var Module = fx.Options(
	fx.Provide(ProvideAuthentication),
)
