package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// GenAIGenerator goes through the official Gemini SDK instead of raw REST.
type GenAIGenerator struct {
	model  string
	client *genai.Client
	policy runtimePolicy
}

func NewGenAIGenerator(ctx context.Context, settings Settings) (*GenAIGenerator, error) {
	apiKey := strings.TrimSpace(settings.APIKey)
	if apiKey == "" {
		return nil, errors.New("GEMINI_API_KEY (or GOOGLE_API_KEY) is required")
	}

	model := strings.TrimSpace(settings.Model)
	if model == "" {
		model = defaultGeminiModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize gemini client: %w", err)
	}

	return &GenAIGenerator{
		model:  model,
		client: client,
		policy: loadRuntimePolicyFromEnv(),
	}, nil
}

func (g *GenAIGenerator) Name() string {
	return "genai"
}

func (g *GenAIGenerator) Model() string {
	return g.model
}

func (g *GenAIGenerator) Generate(ctx context.Context, req Request) (string, error) {
	return observeGeneration(ctx, g.Name(), req.Command, func() (string, error) {
		callCtx, cancel := context.WithTimeout(ctx, g.policy.timeoutFor(req.TimeoutClass))
		defer cancel()

		response, err := g.client.Models.GenerateContent(
			callCtx,
			g.model,
			genai.Text(req.Instruction),
			genaiConfig(req),
		)
		if err != nil {
			return "", g.classify(err)
		}

		text := response.Text()
		if strings.TrimSpace(text) == "" {
			return "", missingField(g.Name(), "candidates[0].content.parts[0].text")
		}
		return Finalize(text, req), nil
	})
}

func genaiConfig(req Request) *genai.GenerateContentConfig {
	config := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(float32(req.Params.Temperature)),
		MaxOutputTokens: int32(req.Params.MaxOutputTokens),
	}
	if req.Params.TopP > 0 {
		config.TopP = genai.Ptr(float32(req.Params.TopP))
	}
	if req.Params.TopK > 0 {
		config.TopK = genai.Ptr(float32(req.Params.TopK))
	}
	return config
}

func (g *GenAIGenerator) classify(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return g.statusError(apiErr, err)
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return g.statusError(*apiErrPtr, err)
	}
	return transportError(g.Name(), err)
}

func (g *GenAIGenerator) statusError(apiErr genai.APIError, cause error) *GenerationError {
	return &GenerationError{
		Provider:   g.Name(),
		Kind:       KindHTTPStatus,
		StatusCode: apiErr.Code,
		Detail:     apiErr.Message,
		Err:        cause,
	}
}
