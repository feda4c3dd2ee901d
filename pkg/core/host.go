package core

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/joeydtaylor/steeze-webhooks/pkg/manifest"
)

// Host owns the dispatcher and one listener per manifest trigger.
type Host struct {
	provider  *Provider
	listeners []Listener
	bindings  []*TriggerBinding
	log       *zap.Logger

	mu       sync.Mutex
	disposed bool
}

// DispatcherOptions translates manifest settings into dispatcher options.
func DispatcherOptions(cfg manifest.Config) ([]Option, error) {
	policy, err := MergePolicyByName(cfg.Dispatcher.MergePolicy)
	if err != nil {
		return nil, err
	}
	timeout := time.Duration(cfg.Dispatcher.HandlerTimeoutMS) * time.Millisecond
	if cfg.Dispatcher.HandlerTimeoutMS == manifest.NoHandlerTimeout {
		timeout = 0
	}
	return []Option{
		WithMergePolicy(policy),
		WithBasePath(cfg.Server.BasePath),
		WithMaxBodyBytes(cfg.Server.MaxBodyBytes),
		WithHandlerTimeout(timeout),
		WithGracePeriod(time.Duration(cfg.Dispatcher.GraceMS) * time.Millisecond),
	}, nil
}

// NewHost resolves every trigger in cfg against the catalog. Any trigger
// that fails to resolve aborts construction; all failures are reported.
// opts are applied after the manifest-derived options.
func NewHost(cfg manifest.Config, catalog *Catalog, types *TypeRegistry, log *zap.Logger, opts ...Option) (*Host, error) {
	if catalog == nil {
		catalog = Functions()
	}
	if log == nil {
		log = zap.NewNop()
	}
	base, err := DispatcherOptions(cfg)
	if err != nil {
		return nil, err
	}
	d := NewDispatcher(append(append(base, WithLogger(log)), opts...)...)
	p := NewProvider(d, types)

	var exec Executor = GoExecutor
	if n := cfg.Dispatcher.Concurrency; n > 0 {
		exec = NewPoolExecutor(n)
	}

	h := &Host{provider: p, log: log}
	var errs []error
	for _, t := range cfg.Triggers {
		fn, ok := catalog.Lookup(t.Function)
		if !ok {
			errs = append(errs, registrationError(t.Function, ErrInvalidConfiguration, "function is not registered"))
			continue
		}
		tb, err := p.TryCreate(fn, &TriggerConfig{
			Route:        t.Route,
			FromURI:      t.FromURI,
			Transformers: t.Transformers,
			Timeout:      time.Duration(t.TimeoutMS) * time.Millisecond,
		})
		if err != nil {
			errs = append(errs, err)
			continue
		}
		h.bindings = append(h.bindings, tb)
		h.listeners = append(h.listeners, tb.CreateListener(exec))
		log.Info("webhook trigger bound",
			zap.String("function", fn.Name),
			zap.String("binding", tb.Binding().Describe()),
			zap.Strings("tags", t.Tags),
		)
	}
	if len(errs) > 0 {
		_ = d.Dispose()
		return nil, errors.Join(errs...)
	}
	return h, nil
}

func (h *Host) Dispatcher() *Dispatcher { return h.provider.Dispatcher() }

// Bindings lists the resolved triggers in manifest order.
func (h *Host) Bindings() []*TriggerBinding { return h.bindings }

// Start registers every listener and opens the dispatcher. If a listener
// fails, the ones already started are stopped again before returning.
func (h *Host) Start(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.disposed {
		return ErrDisposed
	}
	for i, l := range h.listeners {
		if err := l.Start(ctx); err != nil {
			errs := []error{err}
			for j := i - 1; j >= 0; j-- {
				errs = append(errs, h.listeners[j].Stop(context.WithoutCancel(ctx)))
			}
			return errors.Join(errs...)
		}
	}
	h.Dispatcher().Open()
	h.log.Info("webhook host started", zap.Int("registrations", h.Dispatcher().Registry().Len()))
	return nil
}

// Stop closes the dispatcher, waits for in-flight requests within ctx and
// unregisters every listener.
func (h *Host) Stop(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.stopLocked(ctx)
}

func (h *Host) stopLocked(ctx context.Context) error {
	d := h.Dispatcher()
	d.Close()
	errs := []error{d.Wait(ctx)}
	for _, l := range h.listeners {
		errs = append(errs, l.Stop(ctx))
	}
	h.log.Info("webhook host stopped")
	return errors.Join(errs...)
}

// Dispose stops the host if needed and releases every listener and the
// shared dispatcher.
func (h *Host) Dispose() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.disposed {
		return nil
	}
	h.disposed = true
	var errs []error
	for _, l := range h.listeners {
		errs = append(errs, l.Dispose())
	}
	errs = append(errs, h.provider.Dispose())
	return errors.Join(errs...)
}
