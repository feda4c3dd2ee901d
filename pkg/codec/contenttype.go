package codec

import (
	"mime"
	"strings"
)

const (
	JSONContentType   = "application/json"
	FormContentType   = "application/x-www-form-urlencoded"
	BinaryContentType = "application/octet-stream"
	TextContentType   = "text/plain"
)

// MediaType returns the lower-cased media type without parameters.
func MediaType(contentType string) string {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	if i := strings.Index(ct, ";"); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	return ct
}

// Charset returns the charset parameter of a Content-Type header, or "" when absent.
func Charset(contentType string) string {
	if strings.TrimSpace(contentType) == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ""
	}
	return strings.ToLower(strings.Trim(params["charset"], `"`))
}

// IsJSON matches application/json and structured suffixes such as application/cloudevents+json.
func IsJSON(contentType string) bool {
	mt := MediaType(contentType)
	return mt == JSONContentType || strings.HasSuffix(mt, "+json")
}

func IsForm(contentType string) bool {
	return MediaType(contentType) == FormContentType
}

// IsText reports text/* and application/xml bodies.
func IsText(contentType string) bool {
	mt := MediaType(contentType)
	return strings.HasPrefix(mt, "text/") || mt == "application/xml"
}

func IsBinary(contentType string) bool {
	return MediaType(contentType) == BinaryContentType
}

// ForContentType picks the decoder used for structured bodies.
// An empty content type is treated as JSON.
func ForContentType(contentType string) (Decoder, bool) {
	switch {
	case strings.TrimSpace(contentType) == "", IsJSON(contentType):
		return JSON, true
	case IsForm(contentType):
		return Form, true
	default:
		return nil, false
	}
}
