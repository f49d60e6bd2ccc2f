package errors

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// MaxScriptSize bounds the size of a script accepted from untrusted input.
const MaxScriptSize = 1 << 20

// ValidateScript checks that script text is safe to parse: valid UTF-8, not
// oversized, and free of control characters other than tab, CR and LF.
//
// Syntax is checked separately by pkg/script.
func ValidateScript(text string) error {
	if strings.TrimSpace(text) == "" {
		return New(ErrCodeInvalidScript, "script is empty")
	}

	if len(text) > MaxScriptSize {
		return New(ErrCodeInvalidScript, "script too large (max %d bytes)", MaxScriptSize)
	}

	if !utf8.ValidString(text) {
		return New(ErrCodeInvalidScript, "script is not valid UTF-8")
	}

	for _, r := range text {
		if unicode.IsControl(r) && r != '\n' && r != '\r' && r != '\t' {
			return New(ErrCodeInvalidScript, "script contains control character %U", r)
		}
	}

	return nil
}

// carrierNameRegex matches carrier names as they appear in a Carriers header.
var carrierNameRegex = regexp.MustCompile(`^[A-Za-z0-9_.-]{1,16}$`)

// ValidateCarrierName validates a yarn carrier name.
func ValidateCarrierName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidScript, "carrier name cannot be empty")
	}

	if !carrierNameRegex.MatchString(name) {
		return New(ErrCodeInvalidScript, "invalid carrier name: %q", name)
	}

	return nil
}

// ValidatePath validates an output path for safety.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No path traversal sequences (..)
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidInput, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidInput, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "path contains invalid characters")
		}
	}

	for _, part := range strings.Split(path, "/") {
		if part == ".." {
			return New(ErrCodeInvalidInput, "path cannot contain path traversal sequences (..)")
		}
	}

	return nil
}
