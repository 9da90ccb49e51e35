// Package openai runs news analysis prompts against the OpenAI chat API.
package openai

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/deusflow/newslens/internal/apperr"
	"github.com/deusflow/newslens/internal/logger"
	"github.com/sashabaranov/go-openai"
)

const service = "openai"

const systemPrompt = "You are a news analyst. Reply with a single JSON object and nothing else."

type Config struct {
	APIKey      string
	Model       string
	BaseURL     string
	Temperature float32
	MaxTokens   int
}

// Analyzer sends prompts to an OpenAI chat model in JSON-object mode.
type Analyzer struct {
	client *openai.Client
	cfg    Config
	log    *slog.Logger
}

func New(cfg Config, log *slog.Logger) *Analyzer {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	if cfg.Model == "" {
		cfg.Model = openai.GPT4oMini
	}
	return &Analyzer{
		client: openai.NewClientWithConfig(clientCfg),
		cfg:    cfg,
		log:    logger.OrDefault(log),
	}
}

func (a *Analyzer) Name() string { return service }

func (a *Analyzer) Analyze(ctx context.Context, prompt string) (string, error) {
	a.log.Debug("Calling external API", "service", service, "model", a.cfg.Model, "prompt_length", len(prompt))

	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: a.cfg.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: a.cfg.Temperature,
		MaxTokens:   a.cfg.MaxTokens,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return "", wrapError(err)
	}
	if len(resp.Choices) == 0 {
		return "", apperr.NewExternal(service, 0, errors.New("no choices in response"))
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", apperr.NewExternal(service, 0, errors.New("empty response from OpenAI"))
	}
	return text, nil
}

// HealthCheck lists models, which verifies the key without generating.
func (a *Analyzer) HealthCheck(ctx context.Context) error {
	if _, err := a.client.ListModels(ctx); err != nil {
		return wrapError(err)
	}
	return nil
}

func wrapError(err error) error {
	return apperr.NewExternal(service, statusCode(err), err)
}

func statusCode(err error) int {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode
	}
	return 0
}
