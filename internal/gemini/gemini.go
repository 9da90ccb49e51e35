// Package gemini runs news analysis prompts against Google Gemini.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/deusflow/newslens/internal/apperr"
	"github.com/deusflow/newslens/internal/logger"
	"github.com/google/generative-ai-go/genai"
	"github.com/googleapis/gax-go/v2/apierror"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
)

const service = "gemini"

type Config struct {
	APIKey      string
	Model       string
	Temperature float32
	MaxTokens   int32
}

// Analyzer sends prompts to a Gemini model configured for JSON output.
type Analyzer struct {
	client    *genai.Client
	model     *genai.GenerativeModel
	modelName string
	log       *slog.Logger
}

func New(ctx context.Context, cfg Config, log *slog.Logger) (*Analyzer, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	name := cfg.Model
	if name == "" {
		name = "gemini-2.0-flash"
	}
	model := client.GenerativeModel(name)
	model.SetTemperature(cfg.Temperature)
	model.SetTopK(40)
	model.SetTopP(0.95)
	model.SetMaxOutputTokens(cfg.MaxTokens)
	model.ResponseMIMEType = "application/json"
	model.SafetySettings = safetySettings()

	log = logger.OrDefault(log)
	log.Info("Gemini client initialized", "model", name)
	return &Analyzer{client: client, model: model, modelName: name, log: log}, nil
}

func safetySettings() []*genai.SafetySetting {
	categories := []genai.HarmCategory{
		genai.HarmCategoryHarassment,
		genai.HarmCategoryHateSpeech,
		genai.HarmCategorySexuallyExplicit,
		genai.HarmCategoryDangerousContent,
	}
	settings := make([]*genai.SafetySetting, len(categories))
	for i, c := range categories {
		settings[i] = &genai.SafetySetting{Category: c, Threshold: genai.HarmBlockMediumAndAbove}
	}
	return settings
}

func (a *Analyzer) Name() string { return service }

// Analyze returns the raw model text for prompt.
func (a *Analyzer) Analyze(ctx context.Context, prompt string) (string, error) {
	a.log.Debug("Calling external API", "service", service, "model", a.modelName, "prompt_length", len(prompt))

	resp, err := a.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", wrapError(err)
	}

	text := responseText(resp)
	if text == "" {
		return "", apperr.NewExternal(service, 0, errors.New("empty response from Gemini"))
	}
	a.log.Debug("Gemini response received", "response_length", len(text))
	return text, nil
}

// HealthCheck counts tokens for a fixed string, which touches the API
// without spending generation quota.
func (a *Analyzer) HealthCheck(ctx context.Context) error {
	if _, err := a.model.CountTokens(ctx, genai.Text("health check")); err != nil {
		return wrapError(err)
	}
	return nil
}

func (a *Analyzer) Close() error {
	if a.client == nil {
		return nil
	}
	return a.client.Close()
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	var b strings.Builder
	for _, cand := range resp.Candidates {
		if cand == nil || cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if t, ok := part.(genai.Text); ok {
				b.WriteString(string(t))
			}
		}
		if b.Len() > 0 {
			break
		}
	}
	return strings.TrimSpace(b.String())
}

func wrapError(err error) error {
	return apperr.NewExternal(service, statusCode(err), err)
}

// statusCode recovers an HTTP status from the error shapes the Gemini client
// returns. Zero means unknown.
func statusCode(err error) int {
	var blocked *genai.BlockedError
	if errors.As(err, &blocked) {
		return http.StatusUnprocessableEntity
	}
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return gerr.Code
	}
	var aerr *apierror.APIError
	if errors.As(err, &aerr) {
		if code := aerr.HTTPCode(); code > 0 {
			return code
		}
		if st := aerr.GRPCStatus(); st != nil {
			return grpcToHTTP(st.Code())
		}
	}
	return 0
}

func grpcToHTTP(c codes.Code) int {
	switch c {
	case codes.InvalidArgument, codes.FailedPrecondition, codes.OutOfRange:
		return http.StatusBadRequest
	case codes.Unauthenticated:
		return http.StatusUnauthorized
	case codes.PermissionDenied:
		return http.StatusForbidden
	case codes.NotFound:
		return http.StatusNotFound
	case codes.ResourceExhausted:
		return http.StatusTooManyRequests
	case codes.DeadlineExceeded:
		return http.StatusGatewayTimeout
	case codes.Unavailable:
		return http.StatusServiceUnavailable
	case codes.Internal, codes.Unknown, codes.DataLoss:
		return http.StatusInternalServerError
	default:
		return 0
	}
}
