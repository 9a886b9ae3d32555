package validation

import (
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"
)

// ErrDisallowedAudioURL is returned when an audio URL cannot be handed to
// the provider.
var ErrDisallowedAudioURL = errors.New("audio url not allowed")

const maxAudioURLLength = 2048

// allowedExtensions lists the containers the provider transcribes. URLs
// without an extension are accepted since signed storage links often omit
// one.
var allowedExtensions = map[string]bool{
	".mp3":  true,
	".wav":  true,
	".flac": true,
	".ogg":  true,
	".opus": true,
	".m4a":  true,
	".mp4":  true,
	".webm": true,
	".aac":  true,
}

// ValidateAudioURL checks that raw is an absolute http(s) URL with a host
// and, when the path names a file, a known audio or video extension.
func ValidateAudioURL(raw string) (*url.URL, error) {
	if raw == "" {
		return nil, fmt.Errorf("%w: audioUrl is required", ErrDisallowedAudioURL)
	}
	if len(raw) > maxAudioURLLength {
		return nil, fmt.Errorf("%w: longer than %d bytes", ErrDisallowedAudioURL, maxAudioURLLength)
	}

	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDisallowedAudioURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("%w: scheme %q", ErrDisallowedAudioURL, u.Scheme)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("%w: missing host", ErrDisallowedAudioURL)
	}
	if u.User != nil {
		return nil, fmt.Errorf("%w: credentials in url", ErrDisallowedAudioURL)
	}

	if ext := strings.ToLower(path.Ext(u.Path)); ext != "" && !allowedExtensions[ext] {
		return nil, fmt.Errorf("%w: extension %s", ErrDisallowedAudioURL, ext)
	}
	return u, nil
}
