package auth

import (
	"context"
	"slices"
	"strings"
)

func (m *Middleware) GetCaller(ctx context.Context) Caller {
	if c, ok := ctx.Value(callerCtxKey).(Caller); ok {
		return c
	}
	return Caller{}
}

func (m *Middleware) IsAuthenticated(ctx context.Context) bool {
	c, ok := ctx.Value(callerCtxKey).(Caller)
	return ok && c.Subject != ""
}

func (m *Middleware) HasScope(ctx context.Context, scope string) bool {
	return slices.Contains(m.GetCaller(ctx).Scopes, scope)
}

func splitScopes(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool { return r == ' ' || r == ',' })
}
