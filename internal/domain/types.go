package domain

import "fmt"

type Tone string

const (
	TonePositive Tone = "positive"
	ToneNeutral  Tone = "neutral"
	ToneFormal   Tone = "formal"
	ToneFriendly Tone = "friendly"
)

// ReplyTones is the fixed tone order used for labeled parsing and the
// cyclic fallback.
var ReplyTones = [4]Tone{TonePositive, ToneNeutral, ToneFormal, ToneFriendly}

type ReplyCandidate struct {
	ID   string `json:"id"`
	Text string `json:"text"`
	Tone Tone   `json:"tone"`
}

// Surface names an independent UI surface. Each surface owns its own
// processing state.
type Surface string

const (
	SurfaceToolbar Surface = "toolbar"
	SurfaceMenu    Surface = "menu"
	SurfaceSheet   Surface = "sheet"
)

func ParseSurface(raw string) (Surface, error) {
	switch s := Surface(raw); s {
	case SurfaceToolbar, SurfaceMenu, SurfaceSheet:
		return s, nil
	default:
		return "", fmt.Errorf("unknown surface %q", raw)
	}
}

type ExecutionRequest struct {
	Command        Command
	SourceText     string
	TargetLanguage string
	SourceLanguage string
	ErrorContext   string
}

type GenerationResult struct {
	RawText string
}

type ProcessingState struct {
	Busy    bool
	Command Command
}

func (s ProcessingState) String() string {
	if !s.Busy {
		return "idle"
	}
	return "busy(" + s.Command.String() + ")"
}

type DocumentState struct {
	TextBeforeCursor string `json:"textBeforeCursor"`
	SelectedText     string `json:"selectedText,omitempty"`
	TextAfterCursor  string `json:"textAfterCursor,omitempty"`
}

type ExecuteRequest struct {
	Command        string        `json:"command"`
	Document       DocumentState `json:"document"`
	TargetLanguage string        `json:"targetLanguage,omitempty"`
	SourceLanguage string        `json:"sourceLanguage,omitempty"`
	ErrorContext   string        `json:"errorContext,omitempty"`
}

type EditSummary struct {
	Deleted  int    `json:"deleted"`
	Inserted string `json:"inserted"`
}

type ExecuteResponse struct {
	Command  string           `json:"command"`
	Surface  Surface          `json:"surface"`
	Result   string           `json:"result"`
	Edit     EditSummary      `json:"edit"`
	Replies  []ReplyCandidate `json:"replies,omitempty"`
	Document DocumentState    `json:"document"`
	Metadata Metadata         `json:"metadata"`
}

type RepliesRequest struct {
	Message string `json:"message"`
}

type RepliesResponse struct {
	Source   string           `json:"source"`
	Replies  []ReplyCandidate `json:"replies"`
	Metadata Metadata         `json:"metadata"`
}

type CommandDescriptor struct {
	Slug    string        `json:"slug"`
	Label   string        `json:"label"`
	LabelAr string        `json:"labelAr"`
	Family  CommandFamily `json:"family"`
	Icon    string        `json:"icon"`
	Color   string        `json:"color"`
}

type Metadata struct {
	Provider        string `json:"provider"`
	ExecutionTimeMs int64  `json:"executionTimeMs"`
	RequestID       string `json:"requestId,omitempty"`
}

type CapabilitiesResponse struct {
	Runtime  RuntimeCapabilities `json:"runtime"`
	Features FeatureFlags        `json:"features"`
}

type RuntimeCapabilities struct {
	RequestedProvider string `json:"requestedProvider"`
	ActiveProvider    string `json:"activeProvider"`
	ProviderFallback  bool   `json:"providerFallback"`
	Model             string `json:"model,omitempty"`
}

type FeatureFlags struct {
	AI         bool `json:"ai"`
	SmartReply bool `json:"smartReply"`
	CodeTools  bool `json:"codeTools"`
}

type SettingsResponse struct {
	HasAPIKey        bool   `json:"hasApiKey"`
	SelectedTheme    string `json:"selectedTheme"`
	SelectedLanguage string `json:"selectedLanguage"`
	IsProEnabled     bool   `json:"isProEnabled"`
	MaxTextLength    int    `json:"maxTextLength"`
}

type SettingUpdateRequest struct {
	Value string `json:"value"`
}

type APIError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"requestId,omitempty"`
}

type APIErrorResponse struct {
	Error APIError `json:"error"`
}
