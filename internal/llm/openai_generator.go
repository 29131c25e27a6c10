package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
)

const defaultOpenAIBaseURL = "https://api.openai.com/v1"

// OpenAIGenerator speaks the chat completions protocol. It exists for hosts
// that route the keyboard through an OpenAI-compatible gateway.
type OpenAIGenerator struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
	policy  runtimePolicy
}

func NewOpenAIGenerator(settings Settings) (*OpenAIGenerator, error) {
	apiKey := strings.TrimSpace(settings.OpenAIKey)
	if apiKey == "" {
		return nil, errors.New("OPENAI_API_KEY is required")
	}
	model := strings.TrimSpace(settings.OpenAIModel)
	if model == "" {
		model = "gpt-4o-mini"
	}
	baseURL := strings.TrimRight(strings.TrimSpace(settings.OpenAIBaseURL), "/")
	if baseURL == "" {
		baseURL = defaultOpenAIBaseURL
	}

	return &OpenAIGenerator{
		apiKey:  apiKey,
		model:   model,
		baseURL: baseURL,
		client:  http.DefaultClient,
		policy:  loadRuntimePolicyFromEnv(),
	}, nil
}

func (o *OpenAIGenerator) Name() string {
	return "openai"
}

func (o *OpenAIGenerator) Model() string {
	return o.model
}

func (o *OpenAIGenerator) Generate(ctx context.Context, req Request) (string, error) {
	return observeGeneration(ctx, o.Name(), req.Command, func() (string, error) {
		text, err := o.call(ctx, req)
		if err != nil {
			return "", err
		}
		return Finalize(text, req), nil
	})
}

func (o *OpenAIGenerator) call(ctx context.Context, req Request) (string, error) {
	payload := map[string]any{
		"model": o.model,
		"messages": []map[string]string{
			{"role": "user", "content": req.Instruction},
		},
		"temperature": req.Params.Temperature,
		"max_tokens":  req.Params.MaxOutputTokens,
	}
	if req.Params.TopP > 0 {
		payload["top_p"] = req.Params.TopP
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", transportError(o.Name(), err)
	}

	callCtx, cancel := context.WithTimeout(ctx, o.policy.timeoutFor(req.TimeoutClass))
	defer cancel()

	request, err := http.NewRequestWithContext(callCtx, http.MethodPost, o.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", transportError(o.Name(), err)
	}
	request.Header.Set("Content-Type", "application/json")
	request.Header.Set("Authorization", "Bearer "+o.apiKey)

	response, err := o.client.Do(request)
	if err != nil {
		return "", transportError(o.Name(), err)
	}
	defer response.Body.Close()

	responseBytes, err := io.ReadAll(io.LimitReader(response.Body, maxResponseBytes))
	if err != nil {
		return "", transportError(o.Name(), err)
	}
	if response.StatusCode != http.StatusOK {
		return "", &GenerationError{
			Provider:   o.Name(),
			Kind:       KindHTTPStatus,
			StatusCode: response.StatusCode,
			Detail:     strings.TrimSpace(snippet(responseBytes)),
		}
	}

	var parsed struct {
		Choices []struct {
			Message *struct {
				Content *string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(responseBytes, &parsed); err != nil {
		return "", &GenerationError{Provider: o.Name(), Kind: KindMalformedBody, Err: err}
	}
	if len(parsed.Choices) == 0 {
		return "", missingField(o.Name(), "choices[0]")
	}
	if parsed.Choices[0].Message == nil || parsed.Choices[0].Message.Content == nil {
		return "", missingField(o.Name(), "choices[0].message.content")
	}
	return *parsed.Choices[0].Message.Content, nil
}
