package analyzer

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/anime-shed/ui-critic-go/internal/logger"
	"github.com/anime-shed/ui-critic-go/pkg/models"

	"github.com/sashabaranov/go-openai"
	"github.com/sirupsen/logrus"
)

// Generation settings sent with every critique request
const (
	temperature = 0.4
	topP        = 1.0
	maxTokens   = 4096
)

// OpenAICritic talks to any OpenAI-compatible chat completions endpoint.
// With the default base URL that is Gemini's compatibility layer.
type OpenAICritic struct {
	client *openai.Client
	model  string
}

// OpenAICriticOptions configures NewOpenAICritic
type OpenAICriticOptions struct {
	APIKey     string
	BaseURL    string
	Model      string
	HTTPClient *http.Client
}

// NewOpenAICritic creates a critic. A nil HTTPClient uses the tuned default.
func NewOpenAICritic(opts OpenAICriticOptions) *OpenAICritic {
	cfg := openai.DefaultConfig(opts.APIKey)
	if opts.BaseURL != "" {
		cfg.BaseURL = strings.TrimRight(opts.BaseURL, "/")
	}
	if opts.HTTPClient != nil {
		cfg.HTTPClient = opts.HTTPClient
	} else {
		cfg.HTTPClient = newModelHTTPClient()
	}

	return &OpenAICritic{
		client: openai.NewClientWithConfig(cfg),
		model:  opts.Model,
	}
}

// Critique sends the image and the critique prompt and parses the JSON reply
func (c *OpenAICritic) Critique(ctx context.Context, img Image) (*models.AnalysisResult, error) {
	req := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{
						Type: openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{
							URL:    dataURL(img),
							Detail: openai.ImageURLDetailHigh,
						},
					},
					{
						Type: openai.ChatMessagePartTypeText,
						Text: CritiquePrompt,
					},
				},
			},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Temperature: temperature,
		TopP:        topP,
		MaxTokens:   maxTokens,
	}

	start := time.Now()
	resp, err := c.client.CreateChatCompletion(ctx, req)
	fields := logrus.Fields{
		"model":       c.model,
		"mime_type":   img.MIMEType,
		"image_bytes": len(img.Data),
		"duration_ms": time.Since(start).Milliseconds(),
	}
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			fields["status_code"] = apiErr.HTTPStatusCode
		}
		logger.WithError(err).WithFields(fields).Error("Model request failed")
		return nil, fmt.Errorf("failed to create chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		logger.WithFields(fields).Error("Model returned no choices")
		return nil, fmt.Errorf("model returned no choices")
	}

	fields["finish_reason"] = resp.Choices[0].FinishReason
	fields["total_tokens"] = resp.Usage.TotalTokens
	logger.WithFields(fields).Debug("Received model reply")

	return ParseReply(resp.Choices[0].Message.Content)
}

func dataURL(img Image) string {
	return "data:" + img.MIMEType + ";base64," + base64.StdEncoding.EncodeToString(img.Data)
}
