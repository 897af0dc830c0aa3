// Package openai implements the analysis capability interface against any
// OpenAI-compatible chat completion API.
package openai

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/soycharroup/memoryreel/internal/domain"
)

// Analyzer is an analysis provider using the OpenAI-compatible API.
// One instance per configured provider kind; the base URL selects the backend.
type Analyzer struct {
	client   *openai.Client
	model    string
	provider string
	logger   *zap.Logger
}

// Config holds the analysis provider settings.
type Config struct {
	APIKey   string
	BaseURL  string
	Model    string
	Provider string
	Logger   *zap.Logger
}

// NewAnalyzer creates an OpenAI-compatible analysis provider client.
func NewAnalyzer(cfg *Config) *Analyzer {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	return &Analyzer{
		client:   openai.NewClientWithConfig(clientCfg),
		model:    cfg.Model,
		provider: cfg.Provider,
		logger:   cfg.Logger,
	}
}

const interpretationPrompt = `You interpret photo library search queries.
Given the user's query, extract searchable concepts and filters.
Respond with JSON only, in this shape:
{"entities":[{"name":"...","confidence":0.0}],` +
	`"filters":{"date_from":"RFC3339 or empty","date_to":"RFC3339 or empty",` +
	`"content_type":"photo|video or empty","people":["..."]},"confidence":0.0}`

const imageAnalysisPrompt = `You tag photos for a personal media library.
List the scenes and objects visible in the image.
Respond with JSON only: {"tags":[{"name":"...","confidence":0.0}],"confidence":0.0}`

const faceDetectionPrompt = `You detect faces in photos.
Report each face with a normalized bounding box (values in [0,1]).
Respond with JSON only: {"faces":[{"left":0.0,"top":0.0,"width":0.0,` +
	`"height":0.0,"confidence":0.0}],"confidence":0.0}`

// Analyze implements analysis.Client.
func (a *Analyzer) Analyze(ctx context.Context, req domain.AnalysisRequest) (domain.AnalysisResult, error) {
	switch req.Capability() {
	case domain.CapabilityQueryInterpretation:
		return a.interpretQuery(ctx, req.Text())
	case domain.CapabilityImageAnalysis:
		return a.analyzeImage(ctx, req.Image(), domain.CapabilityImageAnalysis, imageAnalysisPrompt)
	case domain.CapabilityFaceDetection:
		return a.analyzeImage(ctx, req.Image(), domain.CapabilityFaceDetection, faceDetectionPrompt)
	}
	return domain.AnalysisResult{}, fmt.Errorf("unsupported capability %q", req.Capability())
}

func (a *Analyzer) interpretQuery(ctx context.Context, text string) (domain.AnalysisResult, error) {
	resp, err := a.complete(ctx, []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: interpretationPrompt},
		{Role: openai.ChatMessageRoleUser, Content: text},
	})
	if err != nil {
		return domain.AnalysisResult{}, err
	}

	interp, err := parseInterpretation(resp)
	if err != nil {
		return domain.AnalysisResult{}, fmt.Errorf("parse interpretation: %w", err)
	}

	return domain.AnalysisResult{
		Provider:   a.provider,
		Capability: domain.CapabilityQueryInterpretation,
		Query:      interp,
	}, nil
}

func (a *Analyzer) analyzeImage(
	ctx context.Context, image []byte, capability domain.Capability, prompt string,
) (domain.AnalysisResult, error) {
	dataURL := "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(image)

	resp, err := a.complete(ctx, []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: prompt},
		{
			Role: openai.ChatMessageRoleUser,
			MultiContent: []openai.ChatMessagePart{
				{
					Type:     openai.ChatMessagePartTypeImageURL,
					ImageURL: &openai.ChatMessageImageURL{URL: dataURL},
				},
			},
		},
	})
	if err != nil {
		return domain.AnalysisResult{}, err
	}

	img, err := parseImageAnalysis(resp)
	if err != nil {
		return domain.AnalysisResult{}, fmt.Errorf("parse image analysis: %w", err)
	}

	return domain.AnalysisResult{
		Provider:   a.provider,
		Capability: capability,
		Image:      img,
	}, nil
}

// complete issues one chat completion with a JSON response format and
// returns the first choice's content.
func (a *Analyzer) complete(ctx context.Context, messages []openai.ChatCompletionMessage) (string, error) {
	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    a.model,
		Messages: messages,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return "", parseAPIError(err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("empty completion response")
	}
	return resp.Choices[0].Message.Content, nil
}

// Status implements analysis.Client via ListModels (free endpoint).
func (a *Analyzer) Status(ctx context.Context) (domain.ProviderStatus, error) {
	if _, err := a.client.ListModels(ctx); err != nil {
		return domain.ProviderStatus{}, fmt.Errorf("list models: %w", err)
	}
	return domain.ProviderStatus{}, nil
}

// parseAPIError extracts a human-readable error from the API response.
func parseAPIError(err error) error {
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return fmt.Errorf("analysis API error %d: %s", reqErr.HTTPStatusCode, string(reqErr.Body))
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("analysis API error %d: %s", apiErr.HTTPStatusCode, apiErr.Message)
	}

	return fmt.Errorf("analysis request failed: %w", err)
}
