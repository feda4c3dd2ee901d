package core

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joeydtaylor/steeze-webhooks/pkg/codec"
	"github.com/joeydtaylor/steeze-webhooks/pkg/core/transform"
)

type order struct {
	ID       string   `json:"id"`
	Amount   int      `json:"amount"`
	Currency string   `json:"currency"`
	Tags     []string `json:"tags"`
}

type label string

const (
	orderType  = "test.order"
	strictType = "test.strict"
	labelType  = "test.label"
)

var errNegative = errors.New("negative amount")

func init() {
	transform.MustRegister(orderType, "upper-id", func(o order) (order, error) {
		o.ID = strings.ToUpper(o.ID)
		return o, nil
	})
	transform.MustRegister(orderType, "reject-negative", func(o order) (order, error) {
		if o.Amount < 0 {
			return o, errNegative
		}
		return o, nil
	})
	transform.MustRegister(orderType, "on-strings", func(s string) (string, error) { return s, nil })
}

func newTestTypes() *TypeRegistry {
	r := NewTypeRegistry()
	MustRegisterType[order](r, orderType, nil)
	MustRegisterType[order](r, strictType, codec.JSONStrict)
	MustRegisterType[label](r, labelType, nil)
	return r
}

func bind(t testing.TB, types *TypeRegistry, p ParamType, cfg TriggerConfig) Binding {
	t.Helper()
	b, err := ResolveBinding(types, "test", p, cfg)
	require.NoError(t, err)
	return b
}

func newRequest(method, target, contentType, body string) *http.Request {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	return req
}

// reply returns a handler answering status with body, ignoring its input.
func reply(status int, body string) Handler {
	return HandlerFunc(func(context.Context, any) (*Response, error) {
		return TextResponse(status, body), nil
	})
}

// record captures the values a handler receives.
type record struct {
	values chan any
}

func newRecord() *record { return &record{values: make(chan any, 16)} }

func (r *record) Invoke(_ context.Context, v any) (*Response, error) {
	r.values <- v
	return nil, nil
}
