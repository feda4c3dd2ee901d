package core

import (
	"context"
	"fmt"
)

// Executor schedules handler invocations. Execute must not block on the
// task itself; it may block until capacity is available or ctx is done.
type Executor interface {
	Execute(ctx context.Context, task func(context.Context)) error
}

// ExecutorFunc adapts a function to Executor.
type ExecutorFunc func(ctx context.Context, task func(context.Context)) error

func (f ExecutorFunc) Execute(ctx context.Context, task func(context.Context)) error {
	return f(ctx, task)
}

// GoExecutor runs every task on its own goroutine.
var GoExecutor Executor = ExecutorFunc(func(ctx context.Context, task func(context.Context)) error {
	go task(ctx)
	return nil
})

// PoolExecutor bounds the number of concurrently running tasks.
type PoolExecutor struct {
	slots chan struct{}
}

func NewPoolExecutor(n int) *PoolExecutor {
	if n <= 0 {
		n = 1
	}
	return &PoolExecutor{slots: make(chan struct{}, n)}
}

func (p *PoolExecutor) Execute(ctx context.Context, task func(context.Context)) error {
	select {
	case p.slots <- struct{}{}:
	case <-ctx.Done():
		return fmt.Errorf("webhook: waiting for executor capacity: %w", ctx.Err())
	}
	go func() {
		defer func() { <-p.slots }()
		task(ctx)
	}()
	return nil
}

// InFlight reports the number of running tasks.
func (p *PoolExecutor) InFlight() int { return len(p.slots) }
