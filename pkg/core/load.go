// pkg/core/load.go
package core

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/joeydtaylor/steeze-webhooks/pkg/manifest"
)

// LoadConfig reads a TOML or YAML manifest, chosen by file extension, and validates it.
func LoadConfig(path string) (manifest.Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return manifest.Config{}, err
	}
	return ParseConfig(b, filepath.Ext(path))
}

// ParseConfig decodes a manifest. ext is ".toml", ".yaml" or ".yml"; empty means TOML.
func ParseConfig(b []byte, ext string) (manifest.Config, error) {
	var cfg manifest.Config
	switch strings.ToLower(ext) {
	case "", ".toml":
		if err := toml.Unmarshal(b, &cfg); err != nil {
			return manifest.Config{}, fmt.Errorf("manifest: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return manifest.Config{}, fmt.Errorf("manifest: %w", err)
		}
	default:
		return manifest.Config{}, fmt.Errorf("manifest: unsupported extension %q", ext)
	}
	if err := cfg.Validate(); err != nil {
		return manifest.Config{}, fmt.Errorf("manifest: %w", err)
	}
	return cfg, nil
}
