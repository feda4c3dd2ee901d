package core

import (
	"fmt"
	"net/http"

	"github.com/joeydtaylor/steeze-webhooks/pkg/manifest"
)

// MergePolicy picks the HTTP response when several handlers share a route.
// Results arrive in registration order. A nil return leaves the status to
// the dispatcher's fallback rules.
type MergePolicy interface {
	Merge(results []HandlerResult) *Response
}

// MergeFunc adapts a function to MergePolicy.
type MergeFunc func(results []HandlerResult) *Response

func (f MergeFunc) Merge(results []HandlerResult) *Response { return f(results) }

var (
	// FirstResponse returns the first successful handler's response.
	FirstResponse MergePolicy = MergeFunc(func(results []HandlerResult) *Response {
		for _, r := range results {
			if r.Err == nil && r.Response != nil {
				return r.Response
			}
		}
		return nil
	})

	// LastResponse returns the last successful handler's response.
	LastResponse MergePolicy = MergeFunc(func(results []HandlerResult) *Response {
		for i := len(results) - 1; i >= 0; i-- {
			if results[i].Err == nil && results[i].Response != nil {
				return results[i].Response
			}
		}
		return nil
	})

	// AggregateResponses reports every handler as a 207 JSON array. A single
	// handler is answered as FirstResponse would.
	AggregateResponses MergePolicy = MergeFunc(aggregate)
)

// MergePolicyByName maps a manifest merge_policy to a MergePolicy.
func MergePolicyByName(name string) (MergePolicy, error) {
	switch name {
	case "", manifest.MergeFirst:
		return FirstResponse, nil
	case manifest.MergeLast:
		return LastResponse, nil
	case manifest.MergeAggregate:
		return AggregateResponses, nil
	default:
		return nil, fmt.Errorf("%w: unknown merge policy %q", ErrInvalidConfiguration, name)
	}
}

type aggregateEntry struct {
	Function string `json:"function"`
	Status   int    `json:"status"`
	Body     string `json:"body,omitempty"`
	Error    string `json:"error,omitempty"`
}

func aggregate(results []HandlerResult) *Response {
	if len(results) <= 1 {
		return FirstResponse.Merge(results)
	}
	entries := make([]aggregateEntry, 0, len(results))
	for _, r := range results {
		e := aggregateEntry{Function: r.Function, Status: r.Status()}
		if r.Err != nil {
			e.Error = r.Err.Error()
		} else if r.Response != nil {
			e.Body = string(r.Response.Body)
		}
		entries = append(entries, e)
	}
	resp, err := JSONResponse(http.StatusMultiStatus, entries)
	if err != nil {
		return TextResponse(http.StatusInternalServerError, err.Error())
	}
	return resp
}
