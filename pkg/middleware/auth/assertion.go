package auth

import (
	"errors"
	"slices"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrNoSecret     = errors.New("auth: signing secret not configured")
	ErrInvalidToken = errors.New("auth: invalid token")
)

type tokenClaims struct {
	jwt.RegisteredClaims
	Scopes []string `json:"scopes"`
	Scope  string   `json:"scope"`
}

func (m *Middleware) validateToken(raw string) (Caller, error) {
	if len(m.secret) == 0 {
		return Caller{}, ErrNoSecret
	}
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuedAt(),
		jwt.WithLeeway(m.leeway),
	}
	if m.issuer != "" {
		opts = append(opts, jwt.WithIssuer(m.issuer))
	}
	if m.audience != "" {
		opts = append(opts, jwt.WithAudience(m.audience))
	}

	var claims tokenClaims
	tok, err := jwt.NewParser(opts...).ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return m.secret, nil
	})
	if err != nil {
		return Caller{}, errors.Join(ErrInvalidToken, err)
	}
	if !tok.Valid {
		return Caller{}, ErrInvalidToken
	}
	if claims.Subject == "" {
		return Caller{}, errors.Join(ErrInvalidToken, errors.New("missing sub"))
	}

	scopes := slices.Clone(claims.Scopes)
	if claims.Scope != "" {
		scopes = append(scopes, splitScopes(claims.Scope)...)
	}
	return Caller{
		Subject: claims.Subject,
		Issuer:  claims.Issuer,
		Scopes:  scopes,
		Source:  "token",
	}, nil
}
