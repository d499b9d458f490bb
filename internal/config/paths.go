package config

import (
	"path/filepath"
	"strings"
)

// ResolveRuntimePath resolves a configured path against base (the config file's
// directory). Absolute paths are only cleaned.
func ResolveRuntimePath(base, raw, fallback string) string {
	target := strings.TrimSpace(raw)
	if target == "" {
		target = strings.TrimSpace(fallback)
	}
	if target == "" {
		return filepath.Clean(base)
	}
	if filepath.IsAbs(target) {
		return filepath.Clean(target)
	}
	if strings.TrimSpace(base) == "" {
		base = "."
	}
	return filepath.Clean(filepath.Join(base, target))
}
