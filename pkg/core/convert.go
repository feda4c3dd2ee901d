package core

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"reflect"
	"strings"

	"github.com/tidwall/gjson"
	"golang.org/x/text/encoding/htmlindex"
	xtransform "golang.org/x/text/transform"

	"github.com/joeydtaylor/steeze-webhooks/pkg/codec"
	"github.com/joeydtaylor/steeze-webhooks/pkg/core/transform"
)

var ErrInvalidJSON = errors.New("webhook: invalid JSON body")

// Payload is a request snapshot shared by every handler on a route. The
// body is read once; conversions never consume it.
type Payload struct {
	Body    []byte
	Header  http.Header
	URL     *url.URL
	Request *http.Request
}

// ReadPayload buffers r's body. limit <= 0 disables the cap.
func ReadPayload(r *http.Request, limit int64) (*Payload, error) {
	p := &Payload{Header: r.Header.Clone(), URL: r.URL, Request: r}
	if p.Header == nil {
		p.Header = http.Header{}
	}
	if r.Body == nil || r.Body == http.NoBody {
		return p, nil
	}
	var body io.Reader = r.Body
	if limit > 0 {
		body = io.LimitReader(r.Body, limit+1)
	}
	b, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("webhook: read body: %w", err)
	}
	if limit > 0 && int64(len(b)) > limit {
		return nil, fmt.Errorf("%w: limit is %d bytes", ErrBodyTooLarge, limit)
	}
	p.Body = b
	return p, nil
}

func (p *Payload) contentType() string { return p.Header.Get("Content-Type") }

func (p *Payload) query() url.Values {
	if p.URL == nil {
		return url.Values{}
	}
	return p.URL.Query()
}

// ValueConverter builds the value passed to a handler.
type ValueConverter interface {
	Convert(ctx context.Context, p *Payload, b Binding) (any, error)
}

// BodyConverter is the default ValueConverter.
type BodyConverter struct{}

func (BodyConverter) Convert(ctx context.Context, p *Payload, b Binding) (any, error) {
	switch b.kind {
	case KindStream:
		return io.NopCloser(bytes.NewReader(p.Body)), nil
	case KindBytes:
		return bytes.Clone(p.Body), nil
	case KindString:
		return decodeText(p.Body, p.contentType())
	case KindReader:
		s, err := decodeText(p.Body, p.contentType())
		if err != nil {
			return nil, err
		}
		return bufio.NewReader(strings.NewReader(s)), nil
	case KindRequest:
		return cloneRequest(ctx, p), nil
	case KindUser:
		return decodeUser(p, b)
	default:
		return nil, fmt.Errorf("%w: %s", ErrInvalidParameterType, b.kind)
	}
}

// decodeText honours the charset parameter; UTF-8 is assumed when absent.
func decodeText(body []byte, contentType string) (string, error) {
	cs := codec.Charset(contentType)
	switch cs {
	case "", "utf-8", "utf8", "us-ascii":
		return string(body), nil
	}
	enc, err := htmlindex.Get(cs)
	if err != nil {
		return "", fmt.Errorf("%w: charset %q", ErrUnsupportedMediaType, cs)
	}
	out, _, err := xtransform.Bytes(enc.NewDecoder(), body)
	if err != nil {
		return "", fmt.Errorf("decode %s body: %w", cs, err)
	}
	return string(out), nil
}

func cloneRequest(ctx context.Context, p *Payload) *http.Request {
	if p.Request == nil {
		req, _ := http.NewRequestWithContext(ctx, http.MethodPost, p.URL.String(), bytes.NewReader(p.Body))
		req.Header = p.Header.Clone()
		return req
	}
	req := p.Request.Clone(ctx)
	req.Body = io.NopCloser(bytes.NewReader(p.Body))
	req.ContentLength = int64(len(p.Body))
	req.GetBody = func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(p.Body)), nil
	}
	return req
}

// decodeUser fills a fresh value of the bound type. Body fields win over
// query parameters; query parameters fill fields the body left out.
func decodeUser(p *Payload, b Binding) (any, error) {
	tb := b.userType
	dst := tb.Zero()
	present := map[string]struct{}{}

	if len(bytes.TrimSpace(p.Body)) > 0 {
		ct := p.contentType()
		dec, ok := codec.ForContentType(ct)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnsupportedMediaType, codec.MediaType(ct))
		}
		if codec.IsForm(ct) {
			values, err := url.ParseQuery(string(p.Body))
			if err != nil {
				return nil, err
			}
			for k := range values {
				present[strings.ToLower(k)] = struct{}{}
			}
		} else {
			if !gjson.ValidBytes(p.Body) {
				return nil, ErrInvalidJSON
			}
			jsonKeys(p.Body, present)
			if tb.Codec != nil {
				dec = tb.Codec
			}
		}
		if err := dec.Unmarshal(p.Body, dst); err != nil {
			return nil, err
		}
	}

	if b.fromURI {
		q := p.query()
		for k := range q {
			if _, ok := present[strings.ToLower(k)]; ok {
				delete(q, k)
			}
		}
		if err := codec.Assign(dst, q); err != nil {
			return nil, err
		}
	}

	val := reflect.ValueOf(dst).Elem().Interface()
	if len(b.transformers) > 0 {
		return transform.ApplyDynamic(b.typeName, val, b.transformers)
	}
	return val, nil
}

// jsonKeys records the lowercased top-level keys that carry a non-null value.
func jsonKeys(body []byte, into map[string]struct{}) {
	res := gjson.ParseBytes(body)
	if !res.IsObject() {
		return
	}
	res.ForEach(func(k, v gjson.Result) bool {
		if v.Type != gjson.Null {
			into[strings.ToLower(k.String())] = struct{}{}
		}
		return true
	})
}
