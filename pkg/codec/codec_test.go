package codec

import (
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type Base struct {
	Region string
}

type target struct {
	Base
	ID       int               `json:"id"`
	Name     string            `json:"display_name"`
	Active   bool
	Ratio    float64
	Tags     []string
	Limit    *uint16
	Wait     time.Duration
	At       time.Time
	Secret   string            `json:"-"`
	Meta     map[string]string // not assignable from a query value
	internal string
}

type AssignSuite struct {
	suite.Suite
}

func TestAssignSuite(t *testing.T) {
	suite.Run(t, new(AssignSuite))
}

func (s *AssignSuite) TestMatchesNamesCaseInsensitively() {
	var dst target
	err := Assign(&dst, url.Values{
		"ID":           {"42"},
		"DISPLAY_NAME": {"hook"},
		"active":       {"true"},
		"ratio":        {"0.5"},
		"region":       {"eu"},
	})

	s.Require().NoError(err)
	s.Equal(42, dst.ID)
	s.Equal("hook", dst.Name)
	s.True(dst.Active)
	s.Equal(0.5, dst.Ratio)
	s.Equal("eu", dst.Region)
}

func (s *AssignSuite) TestSlicesPointersDurationsAndText() {
	var dst target
	err := Assign(&dst, url.Values{
		"tags":  {"a", "b"},
		"limit": {"7"},
		"wait":  {"1500ms"},
		"at":    {"2024-01-02T03:04:05Z"},
	})

	s.Require().NoError(err)
	s.Equal([]string{"a", "b"}, dst.Tags)
	s.Require().NotNil(dst.Limit)
	s.Equal(uint16(7), *dst.Limit)
	s.Equal(1500*time.Millisecond, dst.Wait)
	s.Equal(2024, dst.At.Year())
}

func (s *AssignSuite) TestSingleValueFillsSliceAndFirstValueFillsScalar() {
	var dst target
	err := Assign(&dst, url.Values{
		"tags": {"only"},
		"id":   {"3", "4"},
	})

	s.Require().NoError(err)
	s.Equal([]string{"only"}, dst.Tags)
	s.Equal(3, dst.ID)
}

func (s *AssignSuite) TestIgnoresUnknownHiddenAndUnexported() {
	var dst target
	err := Assign(&dst, url.Values{
		"nope":     {"x"},
		"secret":   {"x"},
		"internal": {"x"},
	})

	s.Require().NoError(err)
	s.Empty(dst.Secret)
	s.Empty(dst.internal)
}

func (s *AssignSuite) TestLeavesMissingFieldsUntouched() {
	dst := target{ID: 1, Name: "kept"}
	err := Assign(&dst, url.Values{"ratio": {"2"}})

	s.Require().NoError(err)
	s.Equal(1, dst.ID)
	s.Equal("kept", dst.Name)
	s.Equal(2.0, dst.Ratio)
}

func (s *AssignSuite) TestReportsFieldErrors() {
	var dst target
	err := Assign(&dst, url.Values{"id": {"abc"}})

	var fe *FieldError
	s.Require().ErrorAs(err, &fe)
	s.Equal("id", fe.Field)
	s.Equal("abc", fe.Value)
}

func (s *AssignSuite) TestUnassignableField() {
	var dst target
	err := Assign(&dst, url.Values{"meta": {"x"}})

	var fe *FieldError
	s.Require().ErrorAs(err, &fe)
	s.Equal("meta", fe.Field)
}

func (s *AssignSuite) TestRejectsNonStructPointer() {
	var n int
	s.ErrorIs(Assign(&n, url.Values{}), ErrNotStructPointer)
	s.ErrorIs(Assign(target{}, url.Values{}), ErrNotStructPointer)
}

type ContentTypeSuite struct {
	suite.Suite
}

func TestContentTypeSuite(t *testing.T) {
	suite.Run(t, new(ContentTypeSuite))
}

func (s *ContentTypeSuite) TestClassification() {
	s.True(IsJSON("application/json; charset=utf-8"))
	s.True(IsJSON("application/cloudevents+json"))
	s.False(IsJSON("text/plain"))
	s.True(IsForm("application/x-www-form-urlencoded"))
	s.True(IsText("text/csv"))
	s.True(IsText("application/xml"))
	s.True(IsBinary("application/octet-stream"))
}

func (s *ContentTypeSuite) TestCharset() {
	s.Equal("iso-8859-1", Charset(`text/plain; charset="ISO-8859-1"`))
	s.Equal("", Charset("text/plain"))
	s.Equal("", Charset(""))
}

func (s *ContentTypeSuite) TestForContentType() {
	d, ok := ForContentType("")
	s.True(ok)
	s.Equal(JSONContentType, d.ContentType())

	d, ok = ForContentType("application/x-www-form-urlencoded")
	s.True(ok)
	s.Equal(FormContentType, d.ContentType())

	_, ok = ForContentType("application/xml")
	s.False(ok)
}

type CodecSuite struct {
	suite.Suite
}

func TestCodecSuite(t *testing.T) {
	suite.Run(t, new(CodecSuite))
}

func (s *CodecSuite) TestLenientJSONAcceptsUnknownFields() {
	var dst struct {
		ID int `json:"id"`
	}
	s.Require().NoError(JSON.Unmarshal([]byte(`{"id":3,"extra":true}`), &dst))
	s.Equal(3, dst.ID)
}

func (s *CodecSuite) TestStrictJSONRejectsUnknownAndTrailing() {
	var dst struct {
		ID int `json:"id"`
	}
	s.Error(JSONStrict.Unmarshal([]byte(`{"id":3,"extra":true}`), &dst))
	s.Error(JSONStrict.Unmarshal([]byte(`{"id":3} {}`), &dst))
}

func (s *CodecSuite) TestMarshalDoesNotEscapeHTML() {
	out, err := JSON.Marshal(map[string]string{"a": "<b>"})
	s.Require().NoError(err)
	s.Equal(`{"a":"<b>"}`, string(out))
}

func (s *CodecSuite) TestFormDecode() {
	var dst target
	s.Require().NoError(Form.Unmarshal([]byte("id=9&display_name=x%20y"), &dst))
	s.Equal(9, dst.ID)
	s.Equal("x y", dst.Name)

	s.Error(Form.Unmarshal([]byte("id=zz"), &dst))
}
