package core

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

var (
	ErrInvalidParameterType = errors.New("webhook: invalid parameter type")
	ErrInvalidConfiguration = errors.New("webhook: invalid configuration")
	ErrInvalidRoute         = errors.New("webhook: invalid route")
	ErrBindingConversion    = errors.New("webhook: binding conversion failed")
	ErrHandlerTimeout       = errors.New("webhook: handler timed out")
	ErrHandlerPanic         = errors.New("webhook: handler panicked")
	ErrDisposed             = errors.New("webhook: disposed")
	ErrUnsupportedMediaType = errors.New("webhook: unsupported media type")
	ErrBodyTooLarge         = errors.New("webhook: request body too large")
)

// Text codes carried in error envelopes.
const (
	TextCodeInvalidBinding   = "INVALID_BINDING"
	TextCodeBindingFailed    = "BINDING_CONVERSION_FAILED"
	TextCodeUnsupportedMedia = "UNSUPPORTED_MEDIA_TYPE"
	TextCodeBodyTooLarge     = "BODY_TOO_LARGE"
	TextCodeBadRequest       = "BAD_REQUEST"
	TextCodeHandlerTimeout   = "HANDLER_TIMEOUT"
	TextCodeHandlerFailed    = "HANDLER_FAILED"
	TextCodeNoHandler        = "NO_HANDLER_MATCHED"
	TextCodeUnavailable      = "DISPATCHER_UNAVAILABLE"
	TextCodeUnauthorized     = "UNAUTHORIZED"
)

// RegistrationError reports a trigger that could not be bound to a function.
// Kind is one of ErrInvalidParameterType, ErrInvalidConfiguration or ErrInvalidRoute.
type RegistrationError struct {
	Function string
	Kind     error
	Reason   string
}

func (e *RegistrationError) Error() string {
	return fmt.Sprintf("%v: function %q: %s", e.Kind, e.Function, e.Reason)
}

func (e *RegistrationError) Unwrap() error { return e.Kind }

func (e *RegistrationError) ToServiceError() *goerrors.Error {
	return goerrors.Wrap(e, goerrors.CategoryValidation, e.Error()).
		WithCode(http.StatusInternalServerError).
		WithTextCode(TextCodeInvalidBinding).
		WithMetadata(map[string]any{"function": e.Function})
}

func registrationError(fn string, kind error, format string, args ...any) *RegistrationError {
	return &RegistrationError{Function: fn, Kind: kind, Reason: fmt.Sprintf(format, args...)}
}

// BindingConversionError wraps a failure to turn a request body into a
// function's declared parameter. It matches both ErrBindingConversion and
// the underlying parse error.
type BindingConversionError struct {
	Function string
	Kind     ParamKind
	Err      error
}

func (e *BindingConversionError) Error() string {
	return fmt.Sprintf("webhook: function %q: convert body to %s: %v", e.Function, e.Kind, e.Err)
}

func (e *BindingConversionError) Unwrap() []error { return []error{ErrBindingConversion, e.Err} }

func (e *BindingConversionError) ToServiceError() *goerrors.Error {
	code, text := http.StatusBadRequest, TextCodeBindingFailed
	if errors.Is(e.Err, ErrUnsupportedMediaType) {
		code, text = http.StatusUnsupportedMediaType, TextCodeUnsupportedMedia
	}
	return goerrors.Wrap(e, goerrors.CategoryBadInput, e.Error()).
		WithCode(code).
		WithTextCode(text).
		WithMetadata(map[string]any{"function": e.Function, "param": e.Kind.String()})
}

// HandlerTimeoutError is recorded when a handler keeps running past its
// deadline plus the grace period.
type HandlerTimeoutError struct {
	Function string
	After    time.Duration
}

func (e *HandlerTimeoutError) Error() string {
	return fmt.Sprintf("webhook: function %q did not finish within %s", e.Function, e.After.Round(time.Millisecond))
}

func (e *HandlerTimeoutError) Unwrap() error { return ErrHandlerTimeout }

func (e *HandlerTimeoutError) ToServiceError() *goerrors.Error {
	return goerrors.Wrap(e, goerrors.CategoryOperation, e.Error()).
		WithCode(http.StatusGatewayTimeout).
		WithTextCode(TextCodeHandlerTimeout).
		WithMetadata(map[string]any{"function": e.Function})
}

type serviceErrorer interface {
	ToServiceError() *goerrors.Error
}

// ServiceError maps any dispatch error onto the go-errors envelope used on the wire.
func ServiceError(err error) *goerrors.Error {
	if err == nil {
		return nil
	}
	var se serviceErrorer
	if errors.As(err, &se) {
		return se.ToServiceError()
	}
	var rich *goerrors.Error
	if goerrors.As(err, &rich) {
		return rich
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) || errors.Is(err, ErrBodyTooLarge) {
		return goerrors.Wrap(err, goerrors.CategoryBadInput, "webhook: request body too large").
			WithCode(http.StatusRequestEntityTooLarge).
			WithTextCode(TextCodeBodyTooLarge)
	}
	return goerrors.Wrap(err, goerrors.CategoryInternal, "webhook: handler failed").
		WithCode(http.StatusInternalServerError).
		WithTextCode(TextCodeHandlerFailed)
}

func noHandlerError(path string) *goerrors.Error {
	return goerrors.New(fmt.Sprintf("webhook: no function bound to %q", path), goerrors.CategoryNotFound).
		WithCode(http.StatusNotFound).
		WithTextCode(TextCodeNoHandler)
}

func unavailableError() *goerrors.Error {
	return goerrors.New("webhook: dispatcher is not accepting requests", goerrors.CategoryOperation).
		WithCode(http.StatusServiceUnavailable).
		WithTextCode(TextCodeUnavailable)
}
