// Package transform holds named value transformers applied to decoded
// webhook payloads before they reach a function.
package transform

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"sync"
)

// Transformer rewrites a decoded payload of type T.
type Transformer[T any] func(T) (T, error)

var (
	ErrUnknownType        = errors.New("transform: no transformers for type")
	ErrUnknownTransformer = errors.New("transform: transformer not found")
	ErrTypeMismatch       = errors.New("transform: type mismatch")
)

var (
	mu  sync.RWMutex
	reg = map[string]map[string]entry{} // type name -> transformer name -> entry
)

type entry struct {
	elem reflect.Type
	fn   reflect.Value
}

// Register binds a named transformer under a registered type name.
func Register[T any](typeName, name string, fn Transformer[T]) error {
	if typeName == "" || name == "" || fn == nil {
		return errors.New("transform: type name, name and fn required")
	}
	mu.Lock()
	defer mu.Unlock()
	m, ok := reg[typeName]
	if !ok {
		m = make(map[string]entry)
		reg[typeName] = m
	}
	if _, dup := m[name]; dup {
		return fmt.Errorf("transform: duplicate %s/%s", typeName, name)
	}
	m[name] = entry{elem: reflect.TypeFor[T](), fn: reflect.ValueOf(fn)}
	return nil
}

// MustRegister is Register that panics on error, for init-time wiring.
func MustRegister[T any](typeName, name string, fn Transformer[T]) {
	if err := Register(typeName, name, fn); err != nil {
		panic(err)
	}
}

// Names lists the transformers registered for typeName, sorted.
func Names(typeName string) []string {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]string, 0, len(reg[typeName]))
	for n := range reg[typeName] {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

func lookup(typeName string, names []string) ([]entry, error) {
	m, ok := reg[typeName]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownType, typeName)
	}
	out := make([]entry, 0, len(names))
	for _, n := range names {
		e, ok := m[n]
		if !ok {
			return nil, fmt.Errorf("%w: %q in %q", ErrUnknownTransformer, n, typeName)
		}
		out = append(out, e)
	}
	return out, nil
}
