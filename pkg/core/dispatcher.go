package core

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
)

// Outcome summarizes a dispatch across all handlers.
type Outcome int

const (
	OutcomeNoHandler Outcome = iota
	OutcomeSuccess
	OutcomePartial
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomePartial:
		return "partial"
	case OutcomeFailed:
		return "failed"
	default:
		return "no_handler"
	}
}

// HandlerResult is the outcome of one handler for one request.
type HandlerResult struct {
	Function string
	Route    string
	Response *Response
	Err      error
	Duration time.Duration
}

// Status is the HTTP status this result stands for on its own.
func (r HandlerResult) Status() int {
	if r.Err != nil {
		return statusIf(ServiceError(r.Err).Code, http.StatusInternalServerError)
	}
	if r.Response != nil {
		return statusIf(r.Response.Status, http.StatusOK)
	}
	return http.StatusAccepted
}

// DispatchContext carries one inbound request through dispatch.
type DispatchContext struct {
	ID      string
	Request *http.Request
	// Path is the request path with the base path removed.
	Path     string
	Results  []HandlerResult
	Response *Response
	Started  time.Time
}

func (dc *DispatchContext) Outcome() Outcome {
	if len(dc.Results) == 0 {
		return OutcomeNoHandler
	}
	failed := 0
	for _, r := range dc.Results {
		if r.Err != nil {
			failed++
		}
	}
	switch failed {
	case 0:
		return OutcomeSuccess
	case len(dc.Results):
		return OutcomeFailed
	default:
		return OutcomePartial
	}
}

// FirstError returns the first failure in registration order.
func (dc *DispatchContext) FirstError() error {
	for _, r := range dc.Results {
		if r.Err != nil {
			return r.Err
		}
	}
	return nil
}

// Invocation describes the handler call a context belongs to.
type Invocation struct {
	DispatchID string
	Function   string
	Route      string
	Reason     string
}

type invocationKey struct{}

// InvocationFromContext returns the invocation a handler is running for.
func InvocationFromContext(ctx context.Context) (Invocation, bool) {
	inv, ok := ctx.Value(invocationKey{}).(Invocation)
	return inv, ok
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

func WithMergePolicy(p MergePolicy) Option { return func(d *Dispatcher) { d.policy = p } }

// WithBasePath sets the prefix stripped from request paths before matching.
func WithBasePath(p string) Option {
	return func(d *Dispatcher) { d.basePath = strings.TrimRight(p, "/") }
}

// WithMaxBodyBytes caps request bodies; n <= 0 disables the cap.
func WithMaxBodyBytes(n int64) Option { return func(d *Dispatcher) { d.maxBody = n } }

// WithHandlerTimeout bounds each handler; 0 disables the default deadline.
func WithHandlerTimeout(t time.Duration) Option { return func(d *Dispatcher) { d.timeout = t } }

// WithGracePeriod is how long a cancelled handler may take to return.
func WithGracePeriod(t time.Duration) Option { return func(d *Dispatcher) { d.grace = t } }

func WithLogger(l *zap.Logger) Option { return func(d *Dispatcher) { d.log = l } }

func WithConverter(c ValueConverter) Option { return func(d *Dispatcher) { d.converter = c } }

func WithRegistry(r *RouteRegistry) Option { return func(d *Dispatcher) { d.registry = r } }

// Dispatcher routes webhook requests to registered handlers.
type Dispatcher struct {
	registry  *RouteRegistry
	converter ValueConverter
	policy    MergePolicy
	basePath  string
	maxBody   int64
	timeout   time.Duration
	grace     time.Duration
	log       *zap.Logger
	hooks     hooks

	ctx       context.Context
	cancel    context.CancelFunc
	accepting atomic.Bool
	disposed  atomic.Bool
	inflight  gate
}

func NewDispatcher(opts ...Option) *Dispatcher {
	d := &Dispatcher{
		converter: BodyConverter{},
		policy:    FirstResponse,
		timeout:   30 * time.Second,
		grace:     2 * time.Second,
	}
	for _, o := range opts {
		o(d)
	}
	if d.registry == nil {
		d.registry = NewRouteRegistry()
	}
	if d.log == nil {
		d.log = zap.NewNop()
	}
	if d.policy == nil {
		d.policy = FirstResponse
	}
	d.ctx, d.cancel = context.WithCancel(context.Background())
	return d
}

func (d *Dispatcher) Registry() *RouteRegistry { return d.registry }

func (d *Dispatcher) logger() *zap.Logger { return d.log }

// Open makes ServeHTTP accept requests.
func (d *Dispatcher) Open() {
	if !d.disposed.Load() {
		d.accepting.Store(true)
	}
}

// Close makes ServeHTTP answer 503 without touching in-flight requests.
func (d *Dispatcher) Close() { d.accepting.Store(false) }

func (d *Dispatcher) Accepting() bool { return d.accepting.Load() }

// Wait blocks until in-flight dispatches finish or ctx is done.
func (d *Dispatcher) Wait(ctx context.Context) error { return d.inflight.wait(ctx) }

// Dispose stops accepting and cancels every in-flight handler.
func (d *Dispatcher) Dispose() error {
	if !d.disposed.CompareAndSwap(false, true) {
		return nil
	}
	d.accepting.Store(false)
	d.cancel()
	return nil
}

// Dispatch invokes every handler bound to r's path and merges their results.
// Handler failures are recorded in the DispatchContext; the returned error
// is reserved for requests that could not be dispatched at all.
func (d *Dispatcher) Dispatch(ctx context.Context, r *http.Request) (*DispatchContext, error) {
	if d.disposed.Load() {
		return nil, ErrDisposed
	}
	d.inflight.enter()
	defer d.inflight.leave()

	dc := &DispatchContext{ID: ulid.Make().String(), Request: r, Started: time.Now()}
	path, ok := d.stripBase(r.URL.Path)
	dc.Path = path
	var regs []*Registration
	if ok {
		regs = d.registry.Resolve(path)
	}
	if len(regs) == 0 {
		d.hooks.noHandler(ctx, r.URL.Path)
		d.log.Debug("no webhook handler", zap.String("dispatch_id", dc.ID), zap.String("path", r.URL.Path))
		return dc, nil
	}

	payload, err := ReadPayload(r, d.maxBody)
	if err != nil {
		return dc, err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(d.ctx, cancel)
	defer stop()

	results := make([]HandlerResult, len(regs))
	var wg sync.WaitGroup
	for i, reg := range regs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = d.invoke(ctx, dc, reg, payload)
		}()
	}
	wg.Wait()

	dc.Results = results
	dc.Response = d.policy.Merge(results)
	d.log.Info("webhook dispatched",
		zap.String("dispatch_id", dc.ID),
		zap.String("path", dc.Path),
		zap.Int("handlers", len(results)),
		zap.Stringer("outcome", dc.Outcome()),
		zap.Duration("elapsed", time.Since(dc.Started)),
	)
	return dc, nil
}

func (d *Dispatcher) stripBase(p string) (string, bool) {
	if d.basePath == "" {
		return p, true
	}
	if strings.EqualFold(p, d.basePath) {
		return "", true
	}
	if len(p) > len(d.basePath) && strings.EqualFold(p[:len(d.basePath)], d.basePath) && p[len(d.basePath)] == '/' {
		return p[len(d.basePath):], true
	}
	return "", false
}

// invoke runs one handler in isolation. Failures, panics and timeouts end
// up in the returned result and never affect other handlers.
func (d *Dispatcher) invoke(ctx context.Context, dc *DispatchContext, reg *Registration, p *Payload) HandlerResult {
	res := HandlerResult{Function: reg.Function, Route: reg.Binding.Route()}
	start := time.Now()

	timeout := reg.Binding.Timeout()
	if timeout == 0 {
		timeout = d.timeout
	}
	hctx, cancel := ctx, context.CancelFunc(func() {})
	if timeout > 0 {
		hctx, cancel = context.WithTimeout(ctx, timeout)
	}
	defer cancel()
	hctx = context.WithValue(hctx, invocationKey{}, Invocation{
		DispatchID: dc.ID,
		Function:   reg.Function,
		Route:      reg.Binding.Route(),
		Reason:     reg.Binding.Reason(dc.Path),
	})

	d.hooks.dispatch(hctx, res.Route, res.Function)

	type outcome struct {
		resp *Response
		err  error
	}
	done := make(chan outcome, 1)
	exec := reg.Executor
	if exec == nil {
		exec = GoExecutor
	}
	err := exec.Execute(hctx, func(tctx context.Context) {
		resp, err := d.run(tctx, reg, p)
		done <- outcome{resp, err}
	})
	if err != nil {
		res.Err = err
	} else {
		select {
		case out := <-done:
			res.Response, res.Err = out.resp, out.err
		case <-hctx.Done():
			grace := time.NewTimer(d.grace)
			select {
			case out := <-done:
				res.Response, res.Err = out.resp, out.err
			case <-grace.C:
				res.Err = &HandlerTimeoutError{Function: reg.Function, After: time.Since(start)}
			}
			grace.Stop()
		}
	}
	res.Duration = time.Since(start)

	if res.Err != nil {
		d.hooks.failure(hctx, res.Route, res.Function, res.Err, res.Duration)
		d.log.Warn("webhook handler failed",
			zap.String("dispatch_id", dc.ID),
			zap.String("function", res.Function),
			zap.Error(res.Err),
			zap.Duration("elapsed", res.Duration),
		)
		return res
	}
	d.hooks.success(hctx, res.Route, res.Function, res.Status(), res.Duration)
	return res
}

func (d *Dispatcher) run(ctx context.Context, reg *Registration, p *Payload) (resp *Response, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			resp, err = nil, fmt.Errorf("%w: %s: %v", ErrHandlerPanic, reg.Function, rec)
		}
	}()
	value, err := d.converter.Convert(ctx, p, reg.Binding)
	if err != nil {
		return nil, &BindingConversionError{Function: reg.Function, Kind: reg.Binding.Kind(), Err: err}
	}
	return reg.Handler.Invoke(ctx, value)
}

// gate counts in-flight dispatches; idle is closed whenever the count drops to zero.
type gate struct {
	mu   sync.Mutex
	n    int
	idle chan struct{}
}

func (g *gate) enter() {
	g.mu.Lock()
	if g.n == 0 {
		g.idle = make(chan struct{})
	}
	g.n++
	g.mu.Unlock()
}

func (g *gate) leave() {
	g.mu.Lock()
	g.n--
	if g.n == 0 {
		close(g.idle)
	}
	g.mu.Unlock()
}

func (g *gate) wait(ctx context.Context) error {
	g.mu.Lock()
	if g.n == 0 {
		g.mu.Unlock()
		return nil
	}
	idle := g.idle
	g.mu.Unlock()
	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
