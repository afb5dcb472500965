// Package vision wraps the external vision-capable language model that turns
// an uploaded artwork image into structured English text. The rest of the
// system treats it as an opaque collaborator behind the Describer interface.
package vision

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sony/gobreaker"

	"kalaghar.in/lokakala/internal/langdetect"
)

// ErrTimeout reports a vision-model call that exceeded its bound. Clients
// may retry.
var ErrTimeout = errors.New("vision model call timed out")

// DefaultModel is used when no vision model is configured.
const DefaultModel = "gpt-4o-mini"

// Image is one decoded-enough upload: raw bytes plus the sniffed MIME type.
type Image struct {
	Bytes       []byte
	ContentType string
}

// Describer produces structured descriptions of artwork images. Handlers
// depend on this interface so tests can substitute a double.
type Describer interface {
	DescribeCreator(ctx context.Context, img Image, params CreatorParams) (Description, error)
	DescribeScholar(ctx context.Context, img Image, question string) (Description, error)
}

// Options configures a Client.
type Options struct {
	Model         string
	Timeout       time.Duration
	VerifyEnglish bool
}

// Client calls an OpenAI-compatible vision endpoint. Calls run behind a
// circuit breaker so a failing upstream sheds load quickly instead of tying
// up the worker pool for the full timeout.
type Client struct {
	client        *openai.Client
	model         string
	timeout       time.Duration
	verifyEnglish bool
	breaker       *gobreaker.CircuitBreaker
}

func NewClient(client *openai.Client, opts Options) *Client {
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = DefaultModel
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 90 * time.Second
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "vision-model",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
	})

	return &Client{
		client:        client,
		model:         model,
		timeout:       timeout,
		verifyEnglish: opts.VerifyEnglish,
		breaker:       breaker,
	}
}

// DescribeCreator identifies the art form and writes a description shaped by
// length, audience and tone.
func (c *Client) DescribeCreator(ctx context.Context, img Image, params CreatorParams) (Description, error) {
	desc, err := c.describe(ctx, img, creatorPrompt(params))
	if err != nil {
		return Description{}, err
	}
	return desc, nil
}

// DescribeScholar answers a historical or cultural question about the
// artwork. The request question always wins over whatever the model echoes
// back.
func (c *Client) DescribeScholar(ctx context.Context, img Image, question string) (Description, error) {
	trimmed := strings.TrimSpace(question)
	if trimmed == "" {
		trimmed = DefaultQuestion
	}

	desc, err := c.describe(ctx, img, scholarPrompt(trimmed))
	if err != nil {
		return Description{}, err
	}
	desc.Question = trimmed
	return desc, nil
}

func (c *Client) describe(ctx context.Context, img Image, prompt string) (Description, error) {
	if c == nil || c.client == nil {
		return Description{}, fmt.Errorf("vision client is not initialized")
	}
	if len(img.Bytes) == 0 {
		return Description{}, fmt.Errorf("image bytes are required")
	}

	contentType := strings.TrimSpace(img.ContentType)
	if contentType == "" {
		contentType = "image/jpeg"
	}
	dataURL := fmt.Sprintf("data:%s;base64,%s", contentType, base64.StdEncoding.EncodeToString(img.Bytes))

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	raw, err := c.breaker.Execute(func() (any, error) {
		resp, callErr := c.client.CreateChatCompletion(callCtx, openai.ChatCompletionRequest{
			Model: c.model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role: openai.ChatMessageRoleUser,
					MultiContent: []openai.ChatMessagePart{
						{
							Type: openai.ChatMessagePartTypeText,
							Text: prompt,
						},
						{
							Type: openai.ChatMessagePartTypeImageURL,
							ImageURL: &openai.ChatMessageImageURL{
								URL:    dataURL,
								Detail: openai.ImageURLDetailAuto,
							},
						},
					},
				},
			},
			Temperature: 0.4,
		})
		if callErr != nil {
			return nil, callErr
		}
		if len(resp.Choices) == 0 {
			return nil, fmt.Errorf("vision model returned no choices")
		}
		return resp.Choices[0].Message.Content, nil
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			return Description{}, fmt.Errorf("%w after %s", ErrTimeout, c.timeout)
		}
		return Description{}, fmt.Errorf("vision model call: %w", err)
	}

	content, ok := raw.(string)
	if !ok {
		return Description{}, fmt.Errorf("unexpected breaker result type %T", raw)
	}

	desc, err := parseDescription(content)
	if err != nil {
		return Description{}, err
	}

	if c.verifyEnglish && !langdetect.LooksEnglish(desc.English) {
		return Description{}, &ParseError{
			Reason: "generated text is not English",
			Raw:    desc.English,
		}
	}

	return desc, nil
}
