package core

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Listener connects one binding to the dispatcher for as long as it runs.
type Listener interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	Dispose() error
}

type webhookListener struct {
	mu         sync.Mutex
	dispatcher *Dispatcher
	reg        *Registration
	started    bool
	disposed   bool
}

func (l *webhookListener) Start(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.disposed {
		return ErrDisposed
	}
	if l.started {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	l.dispatcher.Registry().Register(l.reg)
	l.started = true
	l.dispatcher.logger().Debug("webhook listener started",
		zap.String("function", l.reg.Function),
		zap.String("binding", l.reg.Binding.Describe()),
	)
	return nil
}

func (l *webhookListener) Stop(context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.stopLocked()
	return nil
}

func (l *webhookListener) stopLocked() {
	if !l.started {
		return
	}
	l.dispatcher.Registry().Unregister(l.reg.Binding.Route(), l.reg.Function)
	l.started = false
	l.dispatcher.logger().Debug("webhook listener stopped", zap.String("function", l.reg.Function))
}

// Dispose stops the listener if needed; a disposed listener cannot restart.
func (l *webhookListener) Dispose() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.stopLocked()
	l.disposed = true
	return nil
}
