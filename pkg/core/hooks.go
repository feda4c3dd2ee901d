package core

import (
	"context"
	"time"
)

// OnDispatchFunc runs before a handler is scheduled.
type OnDispatchFunc func(ctx context.Context, route, function string)

// OnSuccessFunc runs after a handler returns without error.
type OnSuccessFunc func(ctx context.Context, route, function string, status int, d time.Duration)

// OnFailureFunc runs after a handler fails, times out or panics.
type OnFailureFunc func(ctx context.Context, route, function string, err error, d time.Duration)

// OnNoHandlerFunc runs when a request matches no registration.
type OnNoHandlerFunc func(ctx context.Context, path string)

type hooks struct {
	onDispatch  []OnDispatchFunc
	onSuccess   []OnSuccessFunc
	onFailure   []OnFailureFunc
	onNoHandler []OnNoHandlerFunc
}

// WithOnDispatch adds a hook called before each handler invocation.
func WithOnDispatch(fn OnDispatchFunc) Option {
	return func(d *Dispatcher) { d.hooks.onDispatch = append(d.hooks.onDispatch, fn) }
}

// WithOnSuccess adds a hook called after each successful invocation.
func WithOnSuccess(fn OnSuccessFunc) Option {
	return func(d *Dispatcher) { d.hooks.onSuccess = append(d.hooks.onSuccess, fn) }
}

// WithOnFailure adds a hook called after each failed invocation.
func WithOnFailure(fn OnFailureFunc) Option {
	return func(d *Dispatcher) { d.hooks.onFailure = append(d.hooks.onFailure, fn) }
}

// WithOnNoHandler adds a hook called when nothing is bound to a path.
func WithOnNoHandler(fn OnNoHandlerFunc) Option {
	return func(d *Dispatcher) { d.hooks.onNoHandler = append(d.hooks.onNoHandler, fn) }
}

func (h *hooks) dispatch(ctx context.Context, route, function string) {
	for _, fn := range h.onDispatch {
		fn(ctx, route, function)
	}
}

func (h *hooks) success(ctx context.Context, route, function string, status int, d time.Duration) {
	for _, fn := range h.onSuccess {
		fn(ctx, route, function, status, d)
	}
}

func (h *hooks) failure(ctx context.Context, route, function string, err error, d time.Duration) {
	for _, fn := range h.onFailure {
		fn(ctx, route, function, err, d)
	}
}

func (h *hooks) noHandler(ctx context.Context, path string) {
	for _, fn := range h.onNoHandler {
		fn(ctx, path)
	}
}
