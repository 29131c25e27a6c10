package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

const (
	defaultGeminiModel    = "gemini-2.5-flash"
	geminiEndpointPattern = "https://generativelanguage.googleapis.com/v1beta/models/%s:generateContent"
	maxResponseBytes      = 4 << 20
)

// GeminiClient calls the generateContent REST endpoint directly. The endpoint
// and API key are fixed at construction.
type GeminiClient struct {
	endpoint string
	apiKey   string
	model    string
	client   *http.Client
	policy   runtimePolicy
}

func NewGeminiClient(settings Settings) (*GeminiClient, error) {
	apiKey := strings.TrimSpace(settings.APIKey)
	if apiKey == "" {
		return nil, errors.New("GEMINI_API_KEY (or GOOGLE_API_KEY) is required")
	}

	model := strings.TrimSpace(settings.Model)
	if model == "" {
		model = defaultGeminiModel
	}
	endpoint := strings.TrimSpace(settings.Endpoint)
	if endpoint == "" {
		endpoint = fmt.Sprintf(geminiEndpointPattern, model)
	}
	if _, err := url.Parse(endpoint); err != nil {
		return nil, fmt.Errorf("invalid gemini endpoint: %w", err)
	}

	return &GeminiClient{
		endpoint: endpoint,
		apiKey:   apiKey,
		model:    model,
		client:   http.DefaultClient,
		policy:   loadRuntimePolicyFromEnv(),
	}, nil
}

func (g *GeminiClient) Name() string {
	return "gemini"
}

func (g *GeminiClient) Model() string {
	return g.model
}

func (g *GeminiClient) Generate(ctx context.Context, req Request) (string, error) {
	return observeGeneration(ctx, g.Name(), req.Command, func() (string, error) {
		text, err := g.call(ctx, req)
		if err != nil {
			return "", err
		}
		return Finalize(text, req), nil
	})
}

func (g *GeminiClient) call(ctx context.Context, req Request) (string, error) {
	body, err := json.Marshal(newGenerateRequest(req))
	if err != nil {
		return "", transportError(g.Name(), err)
	}

	callCtx, cancel := context.WithTimeout(ctx, g.policy.timeoutFor(req.TimeoutClass))
	defer cancel()

	request, err := http.NewRequestWithContext(callCtx, http.MethodPost, g.requestURL(), bytes.NewReader(body))
	if err != nil {
		return "", transportError(g.Name(), err)
	}
	request.Header.Set("Content-Type", "application/json")

	response, err := g.client.Do(request)
	if err != nil {
		return "", transportError(g.Name(), redactKey(err, g.apiKey))
	}
	defer response.Body.Close()

	responseBytes, err := io.ReadAll(io.LimitReader(response.Body, maxResponseBytes))
	if err != nil {
		return "", transportError(g.Name(), err)
	}

	if response.StatusCode != http.StatusOK {
		return "", &GenerationError{
			Provider:   g.Name(),
			Kind:       KindHTTPStatus,
			StatusCode: response.StatusCode,
			Detail:     strings.TrimSpace(snippet(responseBytes)),
		}
	}

	return extractText(g.Name(), responseBytes)
}

func (g *GeminiClient) requestURL() string {
	parsed, err := url.Parse(g.endpoint)
	if err != nil {
		return g.endpoint
	}
	query := parsed.Query()
	query.Set("key", g.apiKey)
	parsed.RawQuery = query.Encode()
	return parsed.String()
}

// redactKey keeps the API key out of logged transport errors, which embed the
// request URL.
func redactKey(err error, apiKey string) error {
	var urlErr *url.Error
	if apiKey == "" || !errors.As(err, &urlErr) {
		return err
	}
	return &url.Error{
		Op:  urlErr.Op,
		URL: strings.ReplaceAll(urlErr.URL, apiKey, "REDACTED"),
		Err: urlErr.Err,
	}
}
