package core

import (
	"bufio"
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/joeydtaylor/steeze-webhooks/pkg/codec"
)

type ConvertSuite struct {
	suite.Suite
	types *TypeRegistry
	conv  BodyConverter
}

func TestConvertSuite(t *testing.T) {
	suite.Run(t, new(ConvertSuite))
}

func (s *ConvertSuite) SetupTest() {
	s.types = newTestTypes()
}

func (s *ConvertSuite) convert(req *http.Request, p ParamType, cfg TriggerConfig) (any, error) {
	payload, err := ReadPayload(req, 0)
	s.Require().NoError(err)
	return s.conv.Convert(context.Background(), payload, bind(s.T(), s.types, p, cfg))
}

func (s *ConvertSuite) TestStreamReplaysBody() {
	req := newRequest(http.MethodPost, "/x", "", "hello")
	payload, err := ReadPayload(req, 0)
	s.Require().NoError(err)
	b := bind(s.T(), s.types, StreamParam, TriggerConfig{})

	for range 2 {
		v, err := s.conv.Convert(context.Background(), payload, b)
		s.Require().NoError(err)
		rc := v.(io.ReadCloser)
		got, _ := io.ReadAll(rc)
		s.Equal("hello", string(got))
		s.NoError(rc.Close())
	}
}

func (s *ConvertSuite) TestBytesAreACopy() {
	req := newRequest(http.MethodPost, "/x", "", "abc")
	payload, err := ReadPayload(req, 0)
	s.Require().NoError(err)

	v, err := s.conv.Convert(context.Background(), payload, bind(s.T(), s.types, BytesParam, TriggerConfig{}))
	s.Require().NoError(err)
	v.([]byte)[0] = 'z'
	s.Equal("abc", string(payload.Body))
}

func (s *ConvertSuite) TestStringDecodesCharset() {
	v, err := s.convert(newRequest(http.MethodPost, "/x", "text/plain; charset=ISO-8859-1", "caf\xe9"), StringParam, TriggerConfig{})
	s.Require().NoError(err)
	s.Equal("café", v)

	v, err = s.convert(newRequest(http.MethodPost, "/x", "text/plain", "plain"), StringParam, TriggerConfig{})
	s.Require().NoError(err)
	s.Equal("plain", v)
}

func (s *ConvertSuite) TestStringRejectsUnknownCharset() {
	_, err := s.convert(newRequest(http.MethodPost, "/x", "text/plain; charset=klingon", "x"), StringParam, TriggerConfig{})
	s.ErrorIs(err, ErrUnsupportedMediaType)
}

func (s *ConvertSuite) TestReader() {
	v, err := s.convert(newRequest(http.MethodPost, "/x", "", "line one\nline two"), ReaderParam, TriggerConfig{})
	s.Require().NoError(err)
	line, err := v.(*bufio.Reader).ReadString('\n')
	s.Require().NoError(err)
	s.Equal("line one\n", line)
}

func (s *ConvertSuite) TestRequestCarriesFreshBody() {
	req := newRequest(http.MethodPut, "/hooks/x?a=1", "application/json", `{"k":1}`)
	req.Header.Set("X-Sig", "abc")

	v, err := s.convert(req, RequestParam, TriggerConfig{})
	s.Require().NoError(err)
	out := v.(*http.Request)
	s.Equal(http.MethodPut, out.Method)
	s.Equal("abc", out.Header.Get("X-Sig"))
	s.Equal("1", out.URL.Query().Get("a"))
	body, _ := io.ReadAll(out.Body)
	s.Equal(`{"k":1}`, string(body))

	again, err := out.GetBody()
	s.Require().NoError(err)
	body, _ = io.ReadAll(again)
	s.Equal(`{"k":1}`, string(body))
}

func (s *ConvertSuite) TestUserFromJSON() {
	v, err := s.convert(newRequest(http.MethodPost, "/x", "application/json",
		`{"id":"o-1","amount":5,"tags":["a"],"unknown":true}`), UserParam(orderType), TriggerConfig{})
	s.Require().NoError(err)
	s.Equal(order{ID: "o-1", Amount: 5, Tags: []string{"a"}}, v)
}

func (s *ConvertSuite) TestUserWithoutContentTypeIsJSON() {
	v, err := s.convert(newRequest(http.MethodPost, "/x", "", `{"id":"o-2"}`), UserParam(orderType), TriggerConfig{})
	s.Require().NoError(err)
	s.Equal(order{ID: "o-2"}, v)
}

func (s *ConvertSuite) TestUserFromForm() {
	v, err := s.convert(newRequest(http.MethodPost, "/x", "application/x-www-form-urlencoded",
		"id=o-3&amount=7&tags=a&tags=b"), UserParam(orderType), TriggerConfig{})
	s.Require().NoError(err)
	s.Equal(order{ID: "o-3", Amount: 7, Tags: []string{"a", "b"}}, v)
}

func (s *ConvertSuite) TestUserEmptyBodyIsZeroValue() {
	v, err := s.convert(newRequest(http.MethodPost, "/x", "application/json", ""), UserParam(orderType), TriggerConfig{})
	s.Require().NoError(err)
	s.Equal(order{}, v)
}

func (s *ConvertSuite) TestUserConversionFailures() {
	tests := map[string]struct {
		ct, body string
		want     error
	}{
		"invalid json":     {"application/json", `{"id":`, ErrInvalidJSON},
		"xml body":         {"application/xml", `<order/>`, ErrUnsupportedMediaType},
		"wrong field type": {"application/json", `{"amount":"lots"}`, nil},
	}
	for name, tc := range tests {
		s.Run(name, func() {
			_, err := s.convert(newRequest(http.MethodPost, "/x", tc.ct, tc.body), UserParam(orderType), TriggerConfig{})
			s.Require().Error(err)
			if tc.want != nil {
				s.ErrorIs(err, tc.want)
			}
		})
	}
}

func (s *ConvertSuite) TestRegisteredCodecOverridesJSON() {
	_, err := s.convert(newRequest(http.MethodPost, "/x", "application/json", `{"id":"a","extra":1}`), UserParam(strictType), TriggerConfig{})
	s.Error(err)
}

func (s *ConvertSuite) TestFromURIFillsMissingFields() {
	req := newRequest(http.MethodPost, "/x?currency=EUR&tags=q1&tags=q2&Amount=9", "application/json", `{"id":"o-4","amount":3}`)

	v, err := s.convert(req, UserParam(orderType), TriggerConfig{FromURI: true})
	s.Require().NoError(err)
	s.Equal(order{ID: "o-4", Amount: 3, Currency: "EUR", Tags: []string{"q1", "q2"}}, v)
}

func (s *ConvertSuite) TestFromURINullBodyFieldLosesToQuery() {
	req := newRequest(http.MethodPost, "/x?currency=EUR", "application/json", `{"id":"o-5","currency":null}`)

	v, err := s.convert(req, UserParam(orderType), TriggerConfig{FromURI: true})
	s.Require().NoError(err)
	s.Equal("EUR", v.(order).Currency)
}

func (s *ConvertSuite) TestFromURIWithoutBody() {
	v, err := s.convert(newRequest(http.MethodGet, "/x?id=o-6&amount=2", "", ""), UserParam(orderType), TriggerConfig{FromURI: true})
	s.Require().NoError(err)
	s.Equal(order{ID: "o-6", Amount: 2}, v)
}

func (s *ConvertSuite) TestFromURIBadQueryValue() {
	_, err := s.convert(newRequest(http.MethodGet, "/x?amount=many", "", ""), UserParam(orderType), TriggerConfig{FromURI: true})

	var fe *codec.FieldError
	s.Require().ErrorAs(err, &fe)
	s.Equal("amount", fe.Field)
	s.Equal("many", fe.Value)
}

func (s *ConvertSuite) TestQueryIgnoredWithoutFromURI() {
	v, err := s.convert(newRequest(http.MethodPost, "/x?currency=EUR", "application/json", `{"id":"o-7"}`), UserParam(orderType), TriggerConfig{})
	s.Require().NoError(err)
	s.Empty(v.(order).Currency)
}

func (s *ConvertSuite) TestTransformersRunInOrder() {
	cfg := TriggerConfig{Transformers: []string{"reject-negative", "upper-id"}}

	v, err := s.convert(newRequest(http.MethodPost, "/x", "application/json", `{"id":"abc","amount":1}`), UserParam(orderType), cfg)
	s.Require().NoError(err)
	s.Equal("ABC", v.(order).ID)

	_, err = s.convert(newRequest(http.MethodPost, "/x", "application/json", `{"id":"abc","amount":-1}`), UserParam(orderType), cfg)
	s.True(errors.Is(err, errNegative))
}

func (s *ConvertSuite) TestReadPayloadLimit() {
	_, err := ReadPayload(newRequest(http.MethodPost, "/x", "", strings.Repeat("a", 11)), 10)
	s.ErrorIs(err, ErrBodyTooLarge)

	p, err := ReadPayload(newRequest(http.MethodPost, "/x", "", strings.Repeat("a", 10)), 10)
	s.Require().NoError(err)
	s.Len(p.Body, 10)
}
