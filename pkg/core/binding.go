package core

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/joeydtaylor/steeze-webhooks/pkg/core/transform"
)

// MaxRouteSegments bounds the number of '/'-separated route segments.
const MaxRouteSegments = 2

// TriggerConfig is the declarative webhook trigger attached to a function.
type TriggerConfig struct {
	// Route is empty for a global handler.
	Route string
	// FromURI fills user-type fields from query parameters.
	FromURI bool
	// Transformers run in order on a decoded user type.
	Transformers []string
	// Timeout overrides the dispatcher's handler timeout when > 0.
	Timeout time.Duration
}

// Binding is the immutable outcome of resolving a trigger.
type Binding struct {
	kind         ParamKind
	typeName     string
	fromURI      bool
	route        string
	transformers []string
	timeout      time.Duration
	userType     *TypeBinding
}

func (b Binding) Kind() ParamKind        { return b.kind }
func (b Binding) TypeName() string       { return b.typeName }
func (b Binding) FromURI() bool          { return b.fromURI }
func (b Binding) Route() string          { return b.route }
func (b Binding) Timeout() time.Duration { return b.timeout }
func (b Binding) Transformers() []string { return slices.Clone(b.transformers) }
func (b Binding) Param() ParamType       { return ParamType{Kind: b.kind, TypeName: b.typeName} }
func (b Binding) IsGlobal() bool         { return b.route == "" }

// Describe renders a short human summary of the binding.
func (b Binding) Describe() string {
	route := b.route
	if route == "" {
		route = "*"
	}
	s := fmt.Sprintf("webhook(route=%s, param=%s", route, b.Param())
	if b.fromURI {
		s += ", from_uri"
	}
	if len(b.transformers) > 0 {
		s += ", transformers=" + strings.Join(b.transformers, "|")
	}
	return s + ")"
}

// Reason is the trigger reason recorded for an invocation.
func (b Binding) Reason(path string) string {
	return fmt.Sprintf("Webhook request to '%s'", path)
}

// NormalizeRoute validates a configured route and returns its lookup key.
// Segments are counted on the raw route, so a leading '/' counts as an
// empty first segment. Matching is case-insensitive.
func NormalizeRoute(route string) (string, error) {
	r := strings.TrimSpace(route)
	if len(strings.Split(r, "/")) > MaxRouteSegments {
		return "", fmt.Errorf("webhook routes can only have a maximum of %d segments", MaxRouteSegments)
	}
	return routeKey(r), nil
}

// routeKey maps a request path onto the registry key space.
func routeKey(path string) string {
	return strings.ToLower(strings.Trim(path, "/"))
}

// ResolveBinding decides whether a function's parameter and trigger
// configuration form a valid webhook binding. It has no side effects.
func ResolveBinding(types *TypeRegistry, fn string, param ParamType, cfg TriggerConfig) (Binding, error) {
	b := Binding{kind: param.Kind, fromURI: cfg.FromURI, timeout: cfg.Timeout}

	switch {
	case param.Kind.builtin():
	case param.Kind == KindUser:
		if types == nil {
			return Binding{}, registrationError(fn, ErrInvalidParameterType, "no type registry for %q", param.TypeName)
		}
		tb, err := types.userType(param.TypeName)
		if err != nil {
			return Binding{}, registrationError(fn, ErrInvalidParameterType, "%v", err)
		}
		b.typeName = tb.Name
		b.userType = &tb
	default:
		return Binding{}, registrationError(fn, ErrInvalidParameterType, "unsupported parameter type %q", param)
	}

	if cfg.FromURI && b.kind != KindUser {
		return Binding{}, registrationError(fn, ErrInvalidConfiguration, "'FromURI' can only be set to true when binding to custom types")
	}
	if len(cfg.Transformers) > 0 {
		if b.kind != KindUser {
			return Binding{}, registrationError(fn, ErrInvalidConfiguration, "transformers can only be applied to custom types")
		}
		elem, err := transform.ResolveWithType(b.typeName, cfg.Transformers)
		if err != nil {
			return Binding{}, registrationError(fn, ErrInvalidConfiguration, "%v", err)
		}
		if elem != b.userType.Type {
			return Binding{}, registrationError(fn, ErrInvalidConfiguration, "transformers operate on %v, not %v", elem, b.userType.Type)
		}
		b.transformers = slices.Clone(cfg.Transformers)
	}
	if cfg.Timeout < 0 {
		return Binding{}, registrationError(fn, ErrInvalidConfiguration, "timeout must be >= 0")
	}

	route, err := NormalizeRoute(cfg.Route)
	if err != nil {
		return Binding{}, registrationError(fn, ErrInvalidRoute, "%v", err)
	}
	b.route = route
	return b, nil
}
