// core/types_registry.go
package core

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"sync"

	"github.com/joeydtaylor/steeze-webhooks/pkg/codec"
)

// TypeBinding describes a registered user type.
type TypeBinding struct {
	Name string
	Type reflect.Type
	// Codec overrides the default JSON decoder when set.
	Codec codec.Codec
	// Zero returns a pointer to a fresh zero value.
	Zero func() any
}

// TypeRegistry maps symbolic names to Go types that functions may bind to.
type TypeRegistry struct {
	mu    sync.RWMutex
	types map[string]TypeBinding
}

func NewTypeRegistry() *TypeRegistry {
	return &TypeRegistry{types: map[string]TypeBinding{}}
}

var defaultTypes = NewTypeRegistry()

// Types returns the process-wide registry used by the fx wiring.
func Types() *TypeRegistry { return defaultTypes }

// RegisterType binds T to name. c may be nil to use content negotiation.
func RegisterType[T any](reg *TypeRegistry, name string, c codec.Codec) error {
	if reg == nil || name == "" {
		return errors.New("type registry and name required")
	}
	if ParseParamType(name).Kind.builtin() {
		return fmt.Errorf("type name %q is reserved", name)
	}
	reg.mu.Lock()
	defer reg.mu.Unlock()
	if _, ok := reg.types[name]; ok {
		return fmt.Errorf("type %q already registered", name)
	}
	reg.types[name] = TypeBinding{
		Name:  name,
		Type:  reflect.TypeFor[T](),
		Codec: c,
		Zero:  func() any { var x T; return &x },
	}
	return nil
}

func MustRegisterType[T any](reg *TypeRegistry, name string, c codec.Codec) {
	if err := RegisterType[T](reg, name, c); err != nil {
		panic(err)
	}
}

// Lookup returns the binding registered under name.
func (r *TypeRegistry) Lookup(name string) (TypeBinding, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.types[name]
	return b, ok
}

// Names lists registered type names, sorted.
func (r *TypeRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.types))
	for n := range r.types {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// userType resolves name to a binding usable as a function parameter:
// registered and backed by a plain struct.
func (r *TypeRegistry) userType(name string) (TypeBinding, error) {
	b, ok := r.Lookup(name)
	if !ok {
		return TypeBinding{}, fmt.Errorf("type %q is not registered", name)
	}
	if b.Type.Kind() != reflect.Struct {
		return TypeBinding{}, fmt.Errorf("type %q is a %s, not a struct", name, b.Type.Kind())
	}
	return b, nil
}
