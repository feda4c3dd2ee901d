package manifest

import (
	"errors"
	"fmt"
	"path"
	"strings"
)

const (
	DefaultMaxBodyBytes     = 4 << 20
	DefaultHandlerTimeoutMS = 30_000
	DefaultGraceMS          = 2_000

	// NoHandlerTimeout as handler_timeout_ms runs handlers without a deadline.
	NoHandlerTimeout = -1
)

// Config is the top-level webhook manifest.
type Config struct {
	Server     Server     `toml:"server" yaml:"server"`
	Dispatcher Dispatcher `toml:"dispatcher" yaml:"dispatcher"`
	Triggers   []Trigger  `toml:"trigger" yaml:"triggers"`
}

// Server shapes the HTTP surface in front of the dispatcher.
type Server struct {
	// BasePath is stripped from request paths before route matching.
	BasePath     string `toml:"base_path" yaml:"base_path"`
	MaxBodyBytes int64  `toml:"max_body_bytes" yaml:"max_body_bytes"`
	RequireAuth  bool   `toml:"require_auth" yaml:"require_auth"`
}

// Dispatcher holds invocation policy shared by all triggers.
type Dispatcher struct {
	MergePolicy string `toml:"merge_policy" yaml:"merge_policy"`
	// HandlerTimeoutMS of 0 selects DefaultHandlerTimeoutMS; NoHandlerTimeout
	// disables the per-handler deadline.
	HandlerTimeoutMS int `toml:"handler_timeout_ms" yaml:"handler_timeout_ms"`
	GraceMS          int `toml:"grace_ms" yaml:"grace_ms"`
	// Concurrency bounds handler invocations across requests; 0 means unbounded.
	Concurrency int `toml:"concurrency" yaml:"concurrency"`
}

// Validate normalizes the manifest in place and applies defaults.
// Route syntax and parameter types are checked later, when bindings are resolved.
func (c *Config) Validate() error {
	if err := c.Server.normalize(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := c.Dispatcher.normalize(); err != nil {
		return fmt.Errorf("dispatcher: %w", err)
	}
	if len(c.Triggers) == 0 {
		return errors.New("no triggers defined")
	}
	return c.validateTriggers()
}

func (s *Server) normalize() error {
	bp := strings.TrimSpace(s.BasePath)
	if bp == "" {
		bp = "/"
	}
	if !strings.HasPrefix(bp, "/") {
		bp = "/" + bp
	}
	s.BasePath = path.Clean(bp)
	if s.MaxBodyBytes == 0 {
		s.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if s.MaxBodyBytes < 0 {
		return errors.New("max_body_bytes must be >= 0")
	}
	return nil
}

func (d *Dispatcher) normalize() error {
	d.MergePolicy = strings.ToLower(strings.TrimSpace(d.MergePolicy))
	switch d.MergePolicy {
	case "":
		d.MergePolicy = MergeFirst
	case MergeFirst, MergeLast, MergeAggregate:
	default:
		return fmt.Errorf("merge_policy %q invalid", d.MergePolicy)
	}
	if d.HandlerTimeoutMS == 0 {
		d.HandlerTimeoutMS = DefaultHandlerTimeoutMS
	}
	if d.HandlerTimeoutMS < NoHandlerTimeout {
		return errors.New("handler_timeout_ms must be >= 0, or -1 to disable")
	}
	if d.GraceMS == 0 {
		d.GraceMS = DefaultGraceMS
	}
	if d.GraceMS < 0 {
		return errors.New("grace_ms must be >= 0")
	}
	if d.Concurrency < 0 {
		return errors.New("concurrency must be >= 0")
	}
	return nil
}
