package codec

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// Decoder turns a request body into a Go value.
type Decoder interface {
	Unmarshal(data []byte, v any) error
	ContentType() string
}

// Codec is a Decoder that can also encode responses.
type Codec interface {
	Decoder
	Marshal(v any) ([]byte, error)
}

type jsonLenient struct{}

type jsonStrict struct{}

// JSON ignores unknown fields.
var JSON Codec = jsonLenient{}

// JSONStrict rejects unknown fields and trailing content.
var JSONStrict Codec = jsonStrict{}

func marshalJSON(v any) ([]byte, error) {
	buf := &bytes.Buffer{}
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func (jsonLenient) Marshal(v any) ([]byte, error) { return marshalJSON(v) }

func (jsonLenient) Unmarshal(data []byte, v any) error {
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("json decode: %w", err)
	}
	return nil
}

func (jsonLenient) ContentType() string { return JSONContentType }

func (jsonStrict) Marshal(v any) ([]byte, error) { return marshalJSON(v) }

func (jsonStrict) Unmarshal(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("json decode: %w", err)
	}
	// Probe for trailing data (must be EOF)
	var extra any
	if err := dec.Decode(&extra); err != io.EOF {
		return fmt.Errorf("json trailing content")
	}
	return nil
}

func (jsonStrict) ContentType() string { return JSONContentType }
