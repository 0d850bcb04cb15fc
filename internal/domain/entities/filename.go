package entities

import (
	"fmt"
	"strings"
)

// CleanFilename returns the client-supplied upload filename if it is safe to
// use as a single path element, or ErrInvalidFilename.
func CleanFilename(filename string) (string, error) {
	name := strings.TrimSpace(filename)

	switch {
	case name == "", name == ".", name == "..":
		return "", fmt.Errorf("%w: %q", ErrInvalidFilename, filename)
	case strings.ContainsAny(name, `/\`):
		return "", fmt.Errorf("%w: %q contains a path separator", ErrInvalidFilename, filename)
	case strings.Contains(name, ".."):
		return "", fmt.Errorf("%w: %q contains '..'", ErrInvalidFilename, filename)
	case strings.ContainsRune(name, 0):
		return "", fmt.Errorf("%w: %q contains a NUL byte", ErrInvalidFilename, filename)
	}

	return name, nil
}
