package errors

import (
	"strings"
	"unicode"
)

// ValidatePartRef validates a part reference (bare part number or explicit
// file path) for safety and correctness. Server mode accepts references from
// untrusted callers, so the rules are intentionally conservative:
//   - No empty references
//   - No control characters or null bytes
//   - No path traversal sequences
//   - Maximum length of 256 characters
func ValidatePartRef(ref string) error {
	if ref == "" {
		return New(ErrCodeInvalidInput, "part reference cannot be empty")
	}

	if len(ref) > 256 {
		return New(ErrCodeInvalidInput, "part reference too long (max 256 characters)")
	}

	for _, r := range ref {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "part reference contains invalid control characters")
		}
	}

	if strings.Contains(ref, "..") {
		return New(ErrCodeInvalidInput, "part reference cannot contain path traversal sequences (..)")
	}

	if strings.Contains(ref, "\\") {
		return New(ErrCodeInvalidInput, "part reference cannot contain backslashes")
	}

	return nil
}

// ValidateOutputPath validates a destination file path.
// Unlike part references, output paths may be absolute; they only need to be
// well-formed and free of control characters.
func ValidateOutputPath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "output path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "output path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "output path contains invalid characters")
		}
	}

	return nil
}
