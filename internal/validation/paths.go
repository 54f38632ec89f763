package validation

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// OutputPathValidator checks files the CLI is asked to write.
type OutputPathValidator struct {
	// Extensions lists accepted suffixes, lowercase with the dot
	Extensions []string
	// CreateParents makes missing parent directories
	CreateParents bool
	// MaxPathLength is the maximum allowed path length
	MaxPathLength int
}

// NewPNGPathValidator accepts .png targets and creates their directory.
func NewPNGPathValidator() *OutputPathValidator {
	return &OutputPathValidator{
		Extensions:    []string{".png"},
		CreateParents: true,
		MaxPathLength: 4096,
	}
}

// Validate expands ~, makes path absolute and checks it.
func (v *OutputPathValidator) Validate(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", fmt.Errorf("path cannot be empty")
	}
	if v.MaxPathLength > 0 && len(path) > v.MaxPathLength {
		return "", fmt.Errorf("path too long (max %d characters)", v.MaxPathLength)
	}
	for _, r := range path {
		if r == 0 || (r < 32 && r != '\t') {
			return "", fmt.Errorf("path contains control characters")
		}
	}
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if part == ".." {
			return "", fmt.Errorf("path contains directory traversal")
		}
	}

	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("cannot determine home directory: %w", err)
		}
		path = filepath.Join(home, path[2:])
	} else if strings.HasPrefix(path, "~") {
		return "", fmt.Errorf("invalid tilde usage in %q", path)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("cannot make path absolute: %w", err)
	}

	if len(v.Extensions) > 0 && !hasExtension(abs, v.Extensions) {
		return "", fmt.Errorf("file must end in one of %s", strings.Join(v.Extensions, ", "))
	}

	if info, err := os.Stat(abs); err == nil && info.IsDir() {
		return "", fmt.Errorf("%s is a directory", abs)
	}

	if v.CreateParents {
		if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
			return "", fmt.Errorf("failed to create directory: %w", err)
		}
	}
	return abs, nil
}

func hasExtension(path string, exts []string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range exts {
		if ext == e {
			return true
		}
	}
	return false
}
