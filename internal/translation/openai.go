package translation

import (
	"context"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"kalaghar.in/lokakala/internal/language"
)

// DefaultOpenAIModel is used when no translation model is configured.
const DefaultOpenAIModel = "gpt-4o-mini"

var languageLabels = map[language.Code]string{
	language.Hindi:   "Hindi",
	language.Marathi: "Marathi",
	language.Bengali: "Bengali",
	language.Tamil:   "Tamil",
	language.Telugu:  "Telugu",
}

// OpenAIProvider translates text through an OpenAI-compatible chat endpoint.
// The client is constructed once at process start and shared; the provider
// itself is stateless.
type OpenAIProvider struct {
	client  *openai.Client
	model   string
	timeout time.Duration
}

func NewOpenAIProvider(client *openai.Client, model string, timeout time.Duration) *OpenAIProvider {
	trimmedModel := strings.TrimSpace(model)
	if trimmedModel == "" {
		trimmedModel = DefaultOpenAIModel
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &OpenAIProvider{
		client:  client,
		model:   trimmedModel,
		timeout: timeout,
	}
}

func (p *OpenAIProvider) Name() string {
	return "openai"
}

// ModelName returns the configured model identifier.
func (p *OpenAIProvider) ModelName() string {
	if p == nil {
		return ""
	}
	return p.model
}

func (p *OpenAIProvider) SupportedLanguages() []language.Code {
	return language.Supported()
}

func (p *OpenAIProvider) Translate(ctx context.Context, req TranslateRequest) (*TranslateResponse, error) {
	if p == nil || p.client == nil {
		return nil, fmt.Errorf("openai provider is not initialized")
	}
	if strings.TrimSpace(req.Text) == "" {
		return nil, fmt.Errorf("text is required")
	}
	label, ok := languageLabels[req.TargetLang]
	if !ok {
		return nil, fmt.Errorf("unsupported target language %q", req.TargetLang)
	}

	callCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	start := time.Now()
	resp, err := p.client.CreateChatCompletion(callCtx, openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleSystem,
				Content: fmt.Sprintf(
					"You are a professional translator. Translate the user's English text into %s. Respond with only the translation, nothing else.",
					label,
				),
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: req.Text,
			},
		},
		Temperature: 0.3,
	})
	if err != nil {
		return nil, fmt.Errorf("openai chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("openai returned no choices")
	}

	translated := strings.TrimSpace(resp.Choices[0].Message.Content)
	if translated == "" {
		return nil, fmt.Errorf("openai returned an empty translation")
	}

	return &TranslateResponse{
		Text:         translated,
		TargetLang:   req.TargetLang,
		ProviderName: p.Name(),
		LatencyMs:    time.Since(start).Milliseconds(),
	}, nil
}
