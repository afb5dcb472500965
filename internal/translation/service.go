package translation

import (
	"context"
	"fmt"

	"kalaghar.in/lokakala/internal/language"
)

// Provider translates English text into one supported target language.
type Provider interface {
	Translate(ctx context.Context, req TranslateRequest) (*TranslateResponse, error)
	Name() string
	SupportedLanguages() []language.Code
}

// TranslateRequest describes one translation request.
type TranslateRequest struct {
	Text       string
	TargetLang language.Code
}

// TranslateResponse contains translated text and provider metadata.
type TranslateResponse struct {
	Text         string
	TargetLang   language.Code
	ProviderName string
	LatencyMs    int64
}

// ProviderError reports a failed provider call for one target language.
// A failure for one language never aborts the other languages of the same
// resolution.
type ProviderError struct {
	Lang     language.Code
	Provider string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("translate to %s via %s: %v", e.Lang, e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}
