// Package validation checks request input before it reaches the services.
package validation

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

// maxIdentifierLength bounds job, content and owner identifiers.
const maxIdentifierLength = 128

var ErrInvalidIdentifier = errors.New("invalid identifier")

// disallowedChars break out of cache keys, URL paths or log lines.
var disallowedChars = map[rune]bool{
	'/':  true,
	'\\': true,
	':':  true, // cache key namespace separator
	'"':  true,
	'?':  true,
	'#':  true,
	'%':  true,
	' ':  true,
}

// ValidateIdentifier rejects empty, oversized or non-printable identifiers.
// field names the value in the returned error.
func ValidateIdentifier(field, id string) error {
	if id == "" {
		return fmt.Errorf("%w: %s is required", ErrInvalidIdentifier, field)
	}
	if len(id) > maxIdentifierLength {
		return fmt.Errorf("%w: %s exceeds %d bytes", ErrInvalidIdentifier, field, maxIdentifierLength)
	}
	if !utf8.ValidString(id) {
		return fmt.Errorf("%w: %s is not valid UTF-8", ErrInvalidIdentifier, field)
	}
	for _, r := range id {
		if shouldReject(r) {
			return fmt.Errorf("%w: %s contains %q", ErrInvalidIdentifier, field, r)
		}
	}
	return nil
}

func shouldReject(r rune) bool {
	// Control characters (< 32 and DEL 127)
	if r < 32 || r == 127 {
		return true
	}
	return disallowedChars[r]
}
