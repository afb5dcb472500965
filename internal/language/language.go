// Package language defines the fixed set of target languages supported by
// the translation cache and validates user-supplied language lists.
package language

import (
	"fmt"
	"strings"
)

// Code identifies one supported target language.
type Code string

const (
	Hindi   Code = "hindi"
	Marathi Code = "marathi"
	Bengali Code = "bengali"
	Tamil   Code = "tamil"
	Telugu  Code = "telugu"
)

var supported = []Code{Hindi, Marathi, Bengali, Tamil, Telugu}

// ISO 639-1 codes used when talking to translation providers.
var isoCodes = map[Code]string{
	Hindi:   "hi",
	Marathi: "mr",
	Bengali: "bn",
	Tamil:   "ta",
	Telugu:  "te",
}

// Supported returns the full supported language set in canonical order.
func Supported() []Code {
	out := make([]Code, len(supported))
	copy(out, supported)
	return out
}

// SupportedStrings returns the supported set as plain strings for error
// messages and API payloads.
func SupportedStrings() []string {
	out := make([]string, len(supported))
	for i, code := range supported {
		out[i] = string(code)
	}
	return out
}

// IsSupported reports whether code names a supported language.
func IsSupported(code Code) bool {
	_, ok := isoCodes[code]
	return ok
}

// ISO returns the ISO 639-1 code for a supported language, or "" otherwise.
func ISO(code Code) string {
	return isoCodes[code]
}

// UnsupportedError reports requested language tokens outside the supported set.
type UnsupportedError struct {
	Unsupported []string
	Supported   []string
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf(
		"unsupported language(s): %s (supported: %s)",
		strings.Join(e.Unsupported, ", "),
		strings.Join(e.Supported, ", "),
	)
}

// ParseList splits a comma-separated language list into validated codes.
// Tokens are trimmed and lowercased, empty tokens are dropped and duplicates
// are kept. A blank input yields an empty list. Any unknown token fails the
// whole parse with *UnsupportedError naming every offender.
func ParseList(raw string) ([]Code, error) {
	if strings.TrimSpace(raw) == "" {
		return []Code{}, nil
	}

	parts := strings.Split(raw, ",")
	codes := make([]Code, 0, len(parts))
	var unknown []string
	for _, part := range parts {
		token := strings.ToLower(strings.TrimSpace(part))
		if token == "" {
			continue
		}
		code := Code(token)
		if !IsSupported(code) {
			unknown = append(unknown, token)
			continue
		}
		codes = append(codes, code)
	}

	if len(unknown) > 0 {
		return nil, &UnsupportedError{
			Unsupported: unknown,
			Supported:   SupportedStrings(),
		}
	}
	return codes, nil
}
