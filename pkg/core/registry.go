package core

import (
	"maps"
	"slices"
	"sync"
	"sync/atomic"
)

// Registration is one function listening on one route.
type Registration struct {
	Function string
	Binding  Binding
	Handler  Handler
	Executor Executor
}

// RouteRegistry maps routes to registrations. Readers work on an immutable
// snapshot; writers serialize on mu and publish a new snapshot.
type RouteRegistry struct {
	mu   sync.Mutex
	snap atomic.Pointer[routeTable]
}

type routeTable struct {
	routes map[string][]*Registration // "" holds global handlers
	size   int
}

func NewRouteRegistry() *RouteRegistry {
	r := &RouteRegistry{}
	r.snap.Store(&routeTable{routes: map[string][]*Registration{}})
	return r
}

// Register adds reg under its binding's route. Registrations for one route
// keep their insertion order.
func (r *RouteRegistry) Register(reg *Registration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur := r.snap.Load()
	next := cur.clone()
	key := reg.Binding.Route()
	next.routes[key] = append(slices.Clone(cur.routes[key]), reg)
	next.size++
	r.snap.Store(next)
}

// Unregister removes function from route. It reports whether anything was removed.
func (r *RouteRegistry) Unregister(route, function string) bool {
	key := routeKey(route)
	r.mu.Lock()
	defer r.mu.Unlock()
	cur := r.snap.Load()
	regs := cur.routes[key]
	kept := slices.DeleteFunc(slices.Clone(regs), func(reg *Registration) bool {
		return reg.Function == function
	})
	if len(kept) == len(regs) {
		return false
	}
	next := cur.clone()
	if len(kept) == 0 {
		delete(next.routes, key)
	} else {
		next.routes[key] = kept
	}
	next.size -= len(regs) - len(kept)
	r.snap.Store(next)
	return true
}

// Resolve returns the registrations serving path: exact route matches,
// or the global handlers when no route matches.
func (r *RouteRegistry) Resolve(path string) []*Registration {
	t := r.snap.Load()
	if key := routeKey(path); key != "" {
		if regs := t.routes[key]; len(regs) > 0 {
			return slices.Clone(regs)
		}
	}
	return slices.Clone(t.routes[""])
}

// Len is the total number of registrations.
func (r *RouteRegistry) Len() int { return r.snap.Load().size }

func (t *routeTable) clone() *routeTable {
	return &routeTable{routes: maps.Clone(t.routes), size: t.size}
}
