package codec

import (
	"fmt"
	"net/url"
)

type form struct{}

// Form decodes application/x-www-form-urlencoded bodies onto struct fields.
var Form Decoder = form{}

func (form) Unmarshal(data []byte, v any) error {
	values, err := url.ParseQuery(string(data))
	if err != nil {
		return fmt.Errorf("form decode: %w", err)
	}
	if err := Assign(v, values); err != nil {
		return fmt.Errorf("form decode: %w", err)
	}
	return nil
}

func (form) ContentType() string { return FormContentType }
