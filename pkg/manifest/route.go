package manifest

import (
	"errors"
	"strings"
)

// Trigger declares one function bound to the webhook surface.
type Trigger struct {
	Function     string   `toml:"function" yaml:"function"`
	Route        string   `toml:"route" yaml:"route"`
	FromURI      bool     `toml:"from_uri" yaml:"from_uri"`
	Transformers []string `toml:"transformers" yaml:"transformers"`
	TimeoutMS    int      `toml:"timeout_ms" yaml:"timeout_ms"`
	Tags         []string `toml:"tags" yaml:"tags"`
}

func (t *Trigger) normalize() error {
	t.Function = strings.TrimSpace(t.Function)
	t.Route = strings.TrimSpace(t.Route)
	for i := range t.Transformers {
		t.Transformers[i] = strings.TrimSpace(t.Transformers[i])
	}
	return nil
}

// validate fields that are independent of registered functions and types.
func (t *Trigger) validate() error {
	if t.Function == "" {
		return errors.New("function is required")
	}
	if t.TimeoutMS < 0 {
		return errors.New("timeout_ms must be >= 0")
	}
	for _, n := range t.Transformers {
		if n == "" {
			return errors.New("transformers must not contain empty names")
		}
	}
	return nil
}
