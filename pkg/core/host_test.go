package core

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/suite"
	"go.uber.org/zap/zaptest"
)

const hostManifest = `
[server]
base_path = "/hooks"

[dispatcher]
merge_policy = "last"

[[trigger]]
function = "orders.audit"
route = "orders"

[[trigger]]
function = "orders.accept"
route = "orders"
from_uri = true
transformers = ["upper-id"]
tags = ["billing"]
`

type HostSuite struct {
	suite.Suite
	catalog *Catalog
	audited *record
}

func TestHostSuite(t *testing.T) {
	suite.Run(t, new(HostSuite))
}

func (s *HostSuite) SetupTest() {
	s.catalog = NewCatalog()
	s.audited = newRecord()
	s.Require().NoError(s.catalog.Add(Function{Name: "orders.audit", Param: StringParam, Handler: s.audited}))
	s.Require().NoError(s.catalog.Add(Function{
		Name:  "orders.accept",
		Param: UserParam(orderType),
		Handler: Func(func(_ context.Context, o order) (*Response, error) {
			return JSONResponse(http.StatusCreated, o)
		}),
	}))
}

func (s *HostSuite) newHost(manifestText string) (*Host, error) {
	cfg, err := ParseConfig([]byte(manifestText), ".toml")
	s.Require().NoError(err)
	return NewHost(cfg, s.catalog, newTestTypes(), zaptest.NewLogger(s.T()))
}

func (s *HostSuite) post(h *Host, target, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.Dispatcher().ServeHTTP(rec, newRequest(http.MethodPost, target, "application/json", body))
	return rec
}

func (s *HostSuite) TestLifecycle() {
	h, err := s.newHost(hostManifest)
	s.Require().NoError(err)
	defer h.Dispose()

	s.Require().Len(h.Bindings(), 2)
	s.Equal("webhook(route=orders, param=test.order, from_uri, transformers=upper-id)", h.Bindings()[1].Binding().Describe())
	s.Zero(h.Dispatcher().Registry().Len())
	s.Equal(http.StatusServiceUnavailable, s.post(h, "/hooks/orders", `{}`).Code)

	ctx := context.Background()
	s.Require().NoError(h.Start(ctx))
	s.Require().NoError(h.Start(ctx))
	s.Equal(2, h.Dispatcher().Registry().Len())

	rec := s.post(h, "/hooks/orders?amount=12", `{"id":"o-7"}`)
	s.Equal(http.StatusCreated, rec.Code)
	s.JSONEq(`{"id":"O-7","amount":12,"currency":"","tags":null}`, rec.Body.String())
	s.Equal(`{"id":"o-7"}`, <-s.audited.values)

	s.Require().NoError(h.Stop(ctx))
	s.Zero(h.Dispatcher().Registry().Len())
	s.Equal(http.StatusServiceUnavailable, s.post(h, "/hooks/orders", `{}`).Code)

	s.Require().NoError(h.Start(ctx))
	s.Equal(2, h.Dispatcher().Registry().Len())

	s.Require().NoError(h.Dispose())
	s.NoError(h.Dispose())
	s.ErrorIs(h.Start(ctx), ErrDisposed)
	s.Zero(h.Dispatcher().Registry().Len())
}

func (s *HostSuite) TestReportsEveryBadTrigger() {
	s.Require().NoError(s.catalog.Add(Function{Name: "unknown.type", Param: UserParam("nope"), Handler: newRecord()}))

	_, err := s.newHost(`
[[trigger]]
function = "missing"

[[trigger]]
function = "unknown.type"

[[trigger]]
function = "orders.audit"
from_uri = true

[[trigger]]
function = "orders.accept"
route = "a/b/c"
`)

	s.Require().Error(err)
	s.ErrorIs(err, ErrInvalidConfiguration)
	s.ErrorIs(err, ErrInvalidParameterType)
	s.ErrorIs(err, ErrInvalidRoute)
	s.Contains(err.Error(), `"missing"`)

	var reg *RegistrationError
	s.Require().True(errors.As(err, &reg))
	s.Equal("missing", reg.Function)
}

func (s *HostSuite) TestConcurrencyUsesPool() {
	h, err := s.newHost(`
[dispatcher]
concurrency = 1

[[trigger]]
function = "orders.audit"
route = "orders"
`)
	s.Require().NoError(err)
	defer h.Dispose()
	s.Require().NoError(h.Start(context.Background()))

	s.Equal(http.StatusAccepted, s.post(h, "/orders", `{}`).Code)
	regs := h.Dispatcher().Registry().Resolve("orders")
	s.Require().Len(regs, 1)
	s.IsType(&PoolExecutor{}, regs[0].Executor)
}

func (s *HostSuite) TestListenerRejectsStartAfterDispose() {
	p := NewProvider(NewDispatcher(), newTestTypes())
	defer p.Dispose()
	fn, _ := s.catalog.Lookup("orders.audit")
	tb, err := p.TryCreate(fn, &TriggerConfig{Route: "orders"})
	s.Require().NoError(err)

	l := tb.CreateListener(nil)
	ctx := context.Background()
	s.Require().NoError(l.Start(ctx))
	s.Equal(1, p.Dispatcher().Registry().Len())
	s.Require().NoError(l.Stop(ctx))
	s.Require().NoError(l.Stop(ctx))
	s.Zero(p.Dispatcher().Registry().Len())

	s.Require().NoError(l.Dispose())
	s.ErrorIs(l.Start(ctx), ErrDisposed)
	s.Zero(p.Dispatcher().Registry().Len())
}

func (s *HostSuite) TestFailedStartRollsBackListeners() {
	h, err := s.newHost(hostManifest)
	s.Require().NoError(err)
	defer h.Dispose()
	s.Require().NoError(h.listeners[1].Dispose())

	err = h.Start(context.Background())
	s.ErrorIs(err, ErrDisposed)
	s.Zero(h.Dispatcher().Registry().Len())
	s.False(h.Dispatcher().Accepting())
	s.Equal(http.StatusServiceUnavailable, s.post(h, "/hooks/orders", `{}`).Code)
}

func (s *HostSuite) TestHandlerTimeoutSentinel() {
	cfg, err := ParseConfig([]byte(`
[dispatcher]
handler_timeout_ms = -1

[[trigger]]
function = "orders.audit"
`), ".toml")
	s.Require().NoError(err)
	s.Equal(-1, cfg.Dispatcher.HandlerTimeoutMS)

	h, err := NewHost(cfg, s.catalog, newTestTypes(), zaptest.NewLogger(s.T()))
	s.Require().NoError(err)
	defer h.Dispose()
	s.Zero(h.Dispatcher().timeout)
}
