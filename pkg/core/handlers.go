// core/handlers.go
package core

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"sync"

	"github.com/joeydtaylor/steeze-webhooks/pkg/codec"
)

// Response is what a function hands back to the webhook caller.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// JSONResponse encodes v as the response body.
func JSONResponse(status int, v any) (*Response, error) {
	b, err := codec.JSON.Marshal(v)
	if err != nil {
		return nil, err
	}
	h := http.Header{}
	h.Set("Content-Type", codec.JSONContentType)
	return &Response{Status: status, Header: h, Body: b}, nil
}

// TextResponse returns a plain-text body.
func TextResponse(status int, s string) *Response {
	h := http.Header{}
	h.Set("Content-Type", codec.TextContentType+"; charset=utf-8")
	return &Response{Status: status, Header: h, Body: []byte(s)}
}

// Handler is an in-process function invoked with the converted parameter.
// A nil Response with a nil error means the request was accepted.
type Handler interface {
	Invoke(ctx context.Context, value any) (*Response, error)
}

// HandlerFunc adapts an untyped function to Handler.
type HandlerFunc func(ctx context.Context, value any) (*Response, error)

func (f HandlerFunc) Invoke(ctx context.Context, value any) (*Response, error) { return f(ctx, value) }

// Func adapts a typed function. T must match the parameter the function is
// registered with: io.ReadCloser, string, []byte, *bufio.Reader,
// *http.Request, or the registered user type.
func Func[T any](fn func(ctx context.Context, in T) (*Response, error)) Handler {
	return HandlerFunc(func(ctx context.Context, value any) (*Response, error) {
		in, ok := value.(T)
		if !ok {
			var zero T
			return nil, fmt.Errorf("webhook: handler expects %T, got %T", zero, value)
		}
		return fn(ctx, in)
	})
}

// Proc adapts a typed function that only acknowledges.
func Proc[T any](fn func(ctx context.Context, in T) error) Handler {
	return Func(func(ctx context.Context, in T) (*Response, error) {
		return nil, fn(ctx, in)
	})
}

// Function is a named handler plus the parameter type it declares.
type Function struct {
	Name    string
	Param   ParamType
	Handler Handler
}

// Catalog is a set of functions addressable by name from the manifest.
type Catalog struct {
	mu  sync.RWMutex
	fns map[string]Function
}

func NewCatalog() *Catalog { return &Catalog{fns: map[string]Function{}} }

// Add registers fn; names are unique.
func (c *Catalog) Add(fn Function) error {
	if fn.Name == "" || fn.Handler == nil {
		return registrationError(fn.Name, ErrInvalidConfiguration, "function name and handler are required")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, dup := c.fns[fn.Name]; dup {
		return registrationError(fn.Name, ErrInvalidConfiguration, "function already registered")
	}
	c.fns[fn.Name] = fn
	return nil
}

// Lookup retrieves a function by name.
func (c *Catalog) Lookup(name string) (Function, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	fn, ok := c.fns[name]
	return fn, ok
}

func (c *Catalog) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, 0, len(c.fns))
	for n := range c.fns {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

var functions = NewCatalog()

// Functions returns the process-wide catalog used by the fx wiring.
func Functions() *Catalog { return functions }

// Register makes a function available under a name referenced in the manifest.
func Register(name string, param ParamType, h Handler) error {
	return functions.Add(Function{Name: name, Param: param, Handler: h})
}

// Lookup retrieves a function from the process-wide catalog.
func Lookup(name string) (Function, bool) { return functions.Lookup(name) }
