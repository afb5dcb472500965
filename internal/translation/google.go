package translation

import (
	"context"
	"fmt"

	"kalaghar.in/lokakala/internal/language"
)

// GoogleProvider is a placeholder for Google Cloud Translation API integration.
type GoogleProvider struct{}

func NewGoogleProvider() *GoogleProvider {
	return &GoogleProvider{}
}

func (p *GoogleProvider) Name() string {
	return "google"
}

func (p *GoogleProvider) SupportedLanguages() []language.Code {
	return []language.Code{}
}

func (p *GoogleProvider) Translate(ctx context.Context, req TranslateRequest) (*TranslateResponse, error) {
	_ = ctx
	_ = req
	return nil, fmt.Errorf("google translation provider is not implemented")
}
