package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// crateNameRegex matches crate names accepted by cargo.
var crateNameRegex = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_-]*$`)

// ValidateCrateName validates a crate name before it is used to build
// filesystem paths or GN labels.
//
// The validation rules are intentionally conservative:
//   - No empty names
//   - No control characters
//   - No path separators or traversal sequences
//   - Maximum length of 64 characters (the crates.io limit)
//   - Must match cargo's identifier grammar
func ValidateCrateName(name string) error {
	if name == "" {
		return New(ErrCodeMalformedManifest, "crate name cannot be empty")
	}

	if len(name) > 64 {
		return New(ErrCodeMalformedManifest, "crate name too long (max 64 characters): %q", name)
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeMalformedManifest, "crate name contains invalid control characters: %q", name)
		}
	}

	for _, pattern := range []string{"..", "/", "\\", "\x00"} {
		if strings.Contains(name, pattern) {
			return New(ErrCodeMalformedManifest, "crate name contains invalid characters %q: %q", pattern, name)
		}
	}

	if !crateNameRegex.MatchString(name) {
		return New(ErrCodeMalformedManifest, "invalid crate name: %q", name)
	}

	return nil
}

// ValidateOutputName validates a build script output file name declared in
// the manifest. Outputs are written below the crate's generated directory,
// so they must be plain relative paths.
func ValidateOutputName(name string) error {
	if name == "" {
		return New(ErrCodeMalformedManifest, "build script output cannot be empty")
	}

	for _, r := range name {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeMalformedManifest, "build script output contains invalid characters: %q", name)
		}
	}

	if strings.HasPrefix(name, "/") {
		return New(ErrCodeMalformedManifest, "build script output must be relative: %q", name)
	}

	if strings.Contains(name, "..") {
		return New(ErrCodeMalformedManifest, "build script output cannot contain path traversal sequences: %q", name)
	}

	if strings.Contains(name, "\\") {
		return New(ErrCodeMalformedManifest, "build script output cannot contain backslashes: %q", name)
	}

	return nil
}
