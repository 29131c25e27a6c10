package llm

import (
	"encoding/json"
	"errors"
)

type generateRequest struct {
	Contents         []requestContent `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type requestContent struct {
	Parts []requestPart `json:"parts"`
}

type requestPart struct {
	Text string `json:"text"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature"`
	TopP            float64 `json:"topP,omitempty"`
	TopK            int     `json:"topK,omitempty"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

func newGenerateRequest(req Request) generateRequest {
	return generateRequest{
		Contents: []requestContent{{Parts: []requestPart{{Text: req.Instruction}}}},
		GenerationConfig: generationConfig{
			Temperature:     req.Params.Temperature,
			TopP:            req.Params.TopP,
			TopK:            req.Params.TopK,
			MaxOutputTokens: req.Params.MaxOutputTokens,
		},
	}
}

// The response side uses pointers so an absent object is distinguishable
// from an empty one.
type generateResponse struct {
	Candidates []responseCandidate `json:"candidates"`
}

type responseCandidate struct {
	Content *responseContent `json:"content"`
}

type responseContent struct {
	Parts []responsePart `json:"parts"`
}

type responsePart struct {
	Text *string `json:"text"`
}

// extractText walks candidates[0].content.parts[0].text. Each missing level
// is reported with its own field path.
func extractText(provider string, body []byte) (string, error) {
	if !json.Valid(body) {
		return "", &GenerationError{Provider: provider, Kind: KindMalformedBody, Detail: snippet(body)}
	}

	var envelope generateResponse
	if err := json.Unmarshal(body, &envelope); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return "", &GenerationError{Provider: provider, Kind: KindMissingField, Field: typeErr.Field, Err: err}
		}
		return "", &GenerationError{Provider: provider, Kind: KindMalformedBody, Err: err}
	}

	switch {
	case len(envelope.Candidates) == 0:
		return "", missingField(provider, "candidates[0]")
	case envelope.Candidates[0].Content == nil:
		return "", missingField(provider, "candidates[0].content")
	case len(envelope.Candidates[0].Content.Parts) == 0:
		return "", missingField(provider, "candidates[0].content.parts[0]")
	case envelope.Candidates[0].Content.Parts[0].Text == nil:
		return "", missingField(provider, "candidates[0].content.parts[0].text")
	}
	return *envelope.Candidates[0].Content.Parts[0].Text, nil
}

func missingField(provider string, field string) *GenerationError {
	return &GenerationError{Provider: provider, Kind: KindMissingField, Field: field}
}

func snippet(body []byte) string {
	const limit = 200
	if len(body) > limit {
		return string(body[:limit]) + "…"
	}
	return string(body)
}
