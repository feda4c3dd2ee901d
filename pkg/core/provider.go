package core

import "sync/atomic"

// TriggerBindingResolver turns a function plus its trigger configuration
// into a binding the dispatcher can serve.
type TriggerBindingResolver interface {
	Resolve(fn Function, cfg TriggerConfig) (*TriggerBinding, error)
}

// Provider resolves webhook triggers against one shared dispatcher.
type Provider struct {
	dispatcher *Dispatcher
	types      *TypeRegistry
	disposed   atomic.Bool
}

var _ TriggerBindingResolver = (*Provider)(nil)

func NewProvider(d *Dispatcher, types *TypeRegistry) *Provider {
	if types == nil {
		types = Types()
	}
	return &Provider{dispatcher: d, types: types}
}

// TryCreate returns (nil, nil) when the function carries no webhook trigger.
func (p *Provider) TryCreate(fn Function, cfg *TriggerConfig) (*TriggerBinding, error) {
	if cfg == nil {
		return nil, nil
	}
	return p.Resolve(fn, *cfg)
}

// Resolve validates the trigger and pairs the binding with the function.
func (p *Provider) Resolve(fn Function, cfg TriggerConfig) (*TriggerBinding, error) {
	if p.disposed.Load() {
		return nil, ErrDisposed
	}
	if fn.Name == "" || fn.Handler == nil {
		return nil, registrationError(fn.Name, ErrInvalidConfiguration, "function name and handler are required")
	}
	b, err := ResolveBinding(p.types, fn.Name, fn.Param, cfg)
	if err != nil {
		return nil, err
	}
	return &TriggerBinding{fn: fn, binding: b, dispatcher: p.dispatcher}, nil
}

// Dispatcher returns the dispatcher shared by every binding of this provider.
func (p *Provider) Dispatcher() *Dispatcher { return p.dispatcher }

// Dispose releases the shared dispatcher. Further resolution fails with ErrDisposed.
func (p *Provider) Dispose() error {
	if !p.disposed.CompareAndSwap(false, true) {
		return nil
	}
	if p.dispatcher == nil {
		return nil
	}
	return p.dispatcher.Dispose()
}

// TriggerBinding is a resolved trigger ready to be listened on.
type TriggerBinding struct {
	fn         Function
	binding    Binding
	dispatcher *Dispatcher
}

func (tb *TriggerBinding) Function() string { return tb.fn.Name }
func (tb *TriggerBinding) Binding() Binding { return tb.binding }

// CreateListener returns a listener that registers this binding on Start.
// A nil exec runs handlers on fresh goroutines.
func (tb *TriggerBinding) CreateListener(exec Executor) Listener {
	if exec == nil {
		exec = GoExecutor
	}
	return &webhookListener{
		dispatcher: tb.dispatcher,
		reg: &Registration{
			Function: tb.fn.Name,
			Binding:  tb.binding,
			Handler:  tb.fn.Handler,
			Executor: exec,
		},
	}
}
