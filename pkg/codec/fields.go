package codec

import (
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"strings"

	"github.com/go-viper/mapstructure/v2"
)

var ErrNotStructPointer = errors.New("codec: destination must be a non-nil pointer to a struct")

// FieldError reports a value that could not be assigned to a struct field.
type FieldError struct {
	Field string
	Value string
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("field %q: cannot assign %q: %v", e.Field, e.Value, e.Err)
}

func (e *FieldError) Unwrap() error { return e.Err }

// Assign copies url values onto the struct pointed to by dst. Keys match field
// names or json tag names case-insensitively; unknown keys are ignored and
// fields without a key keep their value. Repeated keys fill slice fields;
// scalar fields take the first value.
func Assign(dst any, values url.Values) error {
	rv := reflect.ValueOf(dst)
	if rv.Kind() != reflect.Ptr || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		return ErrNotStructPointer
	}
	input := make(map[string]any, len(values))
	for k, vs := range values {
		if len(vs) > 0 {
			input[k] = vs
		}
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			firstValueHook,
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.TextUnmarshallerHookFunc(),
		),
		WeaklyTypedInput: true,
		Squash:           true,
		TagName:          "json",
		MatchName:        strings.EqualFold,
		Result:           dst,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(input); err != nil {
		return fieldError(values, err)
	}
	return nil
}

// firstValueHook hands scalar fields the first of a key's values.
func firstValueHook(_ reflect.Type, to reflect.Type, data any) (any, error) {
	vals, ok := data.([]string)
	if !ok || len(vals) == 0 {
		return data, nil
	}
	switch to.Kind() {
	case reflect.Slice, reflect.Array:
		return data, nil
	}
	return vals[0], nil
}

func fieldError(values url.Values, err error) error {
	var de *mapstructure.DecodeError
	if !errors.As(err, &de) {
		return err
	}
	name, _, _ := strings.Cut(de.Name(), "[")
	fe := &FieldError{Field: name, Err: de.Unwrap()}
	for k, vs := range values {
		if strings.EqualFold(k, name) {
			fe.Value = strings.Join(vs, ",")
			break
		}
	}
	return fe
}
