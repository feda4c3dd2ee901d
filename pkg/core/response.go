package core

import (
	"net/http"

	goerrors "github.com/goliatone/go-errors"
	"go.uber.org/zap"

	"github.com/joeydtaylor/steeze-webhooks/pkg/codec"
)

// DispatchIDHeader echoes the dispatch id back to the caller.
const DispatchIDHeader = "X-Webhook-Dispatch-Id"

// ServeHTTP dispatches r and writes the merged outcome.
func (d *Dispatcher) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !d.Accepting() {
		writeServiceError(w, unavailableError())
		return
	}
	dc, err := d.Dispatch(r.Context(), r)
	if err != nil {
		if dc != nil {
			w.Header().Set(DispatchIDHeader, dc.ID)
		}
		d.log.Warn("webhook request rejected", zap.String("path", r.URL.Path), zap.Error(err))
		writeServiceError(w, ServiceError(err))
		return
	}
	w.Header().Set(DispatchIDHeader, dc.ID)
	writeOutcome(w, dc)
}

// writeOutcome applies the fallback rules when the merge policy produced
// no response: 404 for no handler, 202 if anything succeeded, otherwise
// the first failure's envelope.
func writeOutcome(w http.ResponseWriter, dc *DispatchContext) {
	switch {
	case dc.Outcome() == OutcomeNoHandler:
		writeServiceError(w, noHandlerError(dc.Request.URL.Path))
	case dc.Response != nil:
		writeResponse(w, dc.Response)
	case dc.Outcome() == OutcomeFailed:
		writeServiceError(w, ServiceError(dc.FirstError()))
	default:
		w.WriteHeader(http.StatusAccepted)
	}
}

func writeResponse(w http.ResponseWriter, resp *Response) {
	for k, vs := range resp.Header {
		for _, v := range vs {
			w.Header().Add(k, v)
		}
	}
	w.WriteHeader(statusIf(resp.Status, http.StatusOK))
	if len(resp.Body) > 0 {
		_, _ = w.Write(resp.Body)
	}
}

// WriteError renders err as the JSON error envelope.
func WriteError(w http.ResponseWriter, err error) {
	writeServiceError(w, ServiceError(err))
}

// errorEnvelope is the wire form of a go-errors value; locations and
// stack traces stay server-side.
type errorEnvelope struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Message  string         `json:"message"`
	Category string         `json:"category"`
	TextCode string         `json:"text_code,omitempty"`
	Code     int            `json:"code"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

func writeServiceError(w http.ResponseWriter, rich *goerrors.Error) {
	status := statusIf(rich.Code, http.StatusInternalServerError)
	payload, err := codec.JSON.Marshal(errorEnvelope{Error: errorBody{
		Message:  rich.Message,
		Category: rich.Category.String(),
		TextCode: rich.TextCode,
		Code:     status,
		Metadata: rich.Metadata,
	}})
	if err != nil {
		payload = nil
	}
	writeJSON(w, payload, status)
}

func writeJSON(w http.ResponseWriter, payload []byte, status int) {
	w.Header().Set("Content-Type", codec.JSONContentType)
	w.WriteHeader(status)
	if len(payload) > 0 {
		_, _ = w.Write(payload)
		return
	}
	_, _ = w.Write([]byte(`{}`))
}

func statusIf(s, def int) int {
	if s > 0 {
		return s
	}
	return def
}
