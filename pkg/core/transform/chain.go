package transform

import (
	"fmt"
	"reflect"
)

// ResolveWithType checks that every named transformer exists for typeName and
// that they all operate on the same element type, which it returns.
func ResolveWithType(typeName string, names []string) (reflect.Type, error) {
	if len(names) == 0 {
		return nil, fmt.Errorf("transform: empty chain for %q", typeName)
	}
	mu.RLock()
	defer mu.RUnlock()
	chain, err := lookup(typeName, names)
	if err != nil {
		return nil, err
	}
	elem := chain[0].elem
	for i, e := range chain[1:] {
		if e.elem != elem {
			return nil, fmt.Errorf("%w: %q works on %v, chain expects %v", ErrTypeMismatch, names[i+1], e.elem, elem)
		}
	}
	return elem, nil
}

// ApplyDynamic runs the named transformers in order. v must be the exact
// element type, not a pointer to it.
func ApplyDynamic(typeName string, v any, names []string) (any, error) {
	if len(names) == 0 {
		return v, nil
	}
	mu.RLock()
	chain, err := lookup(typeName, names)
	mu.RUnlock()
	if err != nil {
		return nil, err
	}
	cur := reflect.ValueOf(v)
	for i, e := range chain {
		if !cur.IsValid() || cur.Type() != e.elem {
			return nil, fmt.Errorf("%w: %q expects %v, got %T", ErrTypeMismatch, names[i], e.elem, v)
		}
		out := e.fn.Call([]reflect.Value{cur})
		if errv := out[1]; !errv.IsNil() {
			return nil, fmt.Errorf("transform %q: %w", names[i], errv.Interface().(error))
		}
		cur = out[0]
	}
	return cur.Interface(), nil
}
