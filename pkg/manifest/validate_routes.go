package manifest

import (
	"fmt"
	"strings"
)

// validateTriggers runs per-trigger checks and rejects a function bound twice to one route.
func (c *Config) validateTriggers() error {
	seen := map[string]int{}
	for i := range c.Triggers {
		if err := c.Triggers[i].normalize(); err != nil {
			return fmt.Errorf("trigger %d: %w", i, err)
		}
		if err := c.Triggers[i].validate(); err != nil {
			return fmt.Errorf("trigger %d (%s): %w", i, c.Triggers[i].Function, err)
		}
		key := c.Triggers[i].Function + "\x00" + strings.ToLower(strings.Trim(c.Triggers[i].Route, "/"))
		if j, dup := seen[key]; dup {
			return fmt.Errorf("trigger %d (%s): duplicates trigger %d", i, c.Triggers[i].Function, j)
		}
		seen[key] = i
	}
	return nil
}
