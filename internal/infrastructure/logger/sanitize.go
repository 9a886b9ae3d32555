package logger

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// maxValueLen bounds how much of an externally supplied value reaches the log.
const maxValueLen = 200

// SanitizeForLog escapes control characters so provider ids, callback
// fields and error strings cannot forge log lines or drive the terminal.
// Printable Unicode is kept. Values longer than maxValueLen runes are cut
// and suffixed with "...".
func SanitizeForLog(s string) string {
	var result strings.Builder
	result.Grow(len(s))

	n := 0
	for _, r := range s {
		if n == maxValueLen {
			result.WriteString("...")
			break
		}
		n++

		switch r {
		case '\n':
			result.WriteString("\\n")
		case '\r':
			result.WriteString("\\r")
		case '\t':
			result.WriteString("\\t")
		case utf8.RuneError:
			result.WriteString("\\ufffd")
		default:
			if r < 32 || r == 127 {
				result.WriteString(fmt.Sprintf("\\x%02x", r))
			} else {
				result.WriteRune(r)
			}
		}
	}
	return result.String()
}

// SanitizeErr is SanitizeForLog applied to err's message. A nil error
// yields an empty string.
func SanitizeErr(err error) string {
	if err == nil {
		return ""
	}
	return SanitizeForLog(err.Error())
}
