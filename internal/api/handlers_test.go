package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alanmaizon/qalam/internal/domain"
	"github.com/alanmaizon/qalam/internal/executor"
	"github.com/alanmaizon/qalam/internal/llm"
	"github.com/alanmaizon/qalam/internal/metrics"
	"github.com/alanmaizon/qalam/internal/middleware"
	"github.com/alanmaizon/qalam/internal/settings"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type errorEnvelope struct {
	Error struct {
		Code      string `json:"code"`
		Message   string `json:"message"`
		RequestID string `json:"requestId"`
	} `json:"error"`
}

func testRouter(t *testing.T, generator llm.Generator) *gin.Engine {
	t.Helper()
	t.Setenv("AI_RATE_LIMIT_PER_MINUTE", "0")

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(middleware.RequestID())
	RegisterRoutes(router, Dependencies{
		Executors: executor.NewRegistry(executor.Options{
			Generator: generator,
			Policy:    executor.DefaultPolicy,
		}),
		Settings: settings.NewMemoryStore(settings.Values{}),
	})
	return router
}

func do(router *gin.Engine, method string, path string, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for key, value := range headers {
		req.Header.Set(key, value)
	}
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	return recorder
}

func decodeError(t *testing.T, recorder *httptest.ResponseRecorder) errorEnvelope {
	t.Helper()
	var envelope errorEnvelope
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &envelope))
	return envelope
}

func TestHealth(t *testing.T) {
	router := testRouter(t, &llm.StubGenerator{})
	recorder := do(router, http.MethodGet, "/api/health", "", nil)
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.JSONEq(t, `{"ok":true}`, recorder.Body.String())
}

func TestCommandsCatalog(t *testing.T) {
	router := testRouter(t, &llm.StubGenerator{})

	var all struct {
		Commands []domain.CommandDescriptor `json:"commands"`
	}
	recorder := do(router, http.MethodGet, "/api/commands", "", nil)
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &all))
	assert.Len(t, all.Commands, int(domain.CommandCount))
	assert.Equal(t, "proofread", all.Commands[0].Slug)

	var code struct {
		Commands []domain.CommandDescriptor `json:"commands"`
	}
	recorder = do(router, http.MethodGet, "/api/commands?family=code", "", nil)
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &code))
	assert.Len(t, code.Commands, 10)
}

func TestExecuteProofreadReplacesSentence(t *testing.T) {
	router := testRouter(t, &llm.StubGenerator{Text: "World!"})

	recorder := do(router, http.MethodPost, "/api/surfaces/toolbar/execute",
		`{"command":"proofread","document":{"textBeforeCursor":"Hello. wrld","textAfterCursor":" tail"}}`, nil)
	require.Equal(t, http.StatusOK, recorder.Code, recorder.Body.String())

	var response domain.ExecuteResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))
	assert.Equal(t, "proofread", response.Command)
	assert.Equal(t, domain.SurfaceToolbar, response.Surface)
	assert.Equal(t, domain.EditSummary{Deleted: 4, Inserted: "World!"}, response.Edit)
	assert.Equal(t, domain.DocumentState{TextBeforeCursor: "Hello. World!", TextAfterCursor: " tail"}, response.Document)
	assert.Equal(t, "stub", response.Metadata.Provider)
	assert.NotEmpty(t, response.Metadata.RequestID)
}

func TestExecuteFixStripsFence(t *testing.T) {
	router := testRouter(t, &llm.StubGenerator{Text: "```swift\nlet x = 1\n```"})

	recorder := do(router, http.MethodPost, "/api/surfaces/menu/execute",
		`{"command":"fix","document":{"textBeforeCursor":"let x = = 1"},"errorContext":"expected expression"}`, nil)
	require.Equal(t, http.StatusOK, recorder.Code, recorder.Body.String())

	var response domain.ExecuteResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))
	assert.Equal(t, "let x = 1", response.Document.TextBeforeCursor)
}

func TestExecuteValidation(t *testing.T) {
	router := testRouter(t, &llm.StubGenerator{Text: "x"})

	tests := []struct {
		name   string
		path   string
		body   string
		status int
		code   string
	}{
		{name: "unknown surface", path: "/api/surfaces/dock/execute", body: `{"command":"fix"}`, status: http.StatusBadRequest, code: "unknown_surface"},
		{name: "bad json", path: "/api/surfaces/toolbar/execute", body: `{`, status: http.StatusBadRequest, code: "invalid_payload"},
		{name: "unknown command", path: "/api/surfaces/toolbar/execute", body: `{"command":"teleport"}`, status: http.StatusBadRequest, code: "unknown_command"},
		{name: "empty input", path: "/api/surfaces/toolbar/execute", body: `{"command":"improve","document":{"textBeforeCursor":"  "}}`, status: http.StatusUnprocessableEntity, code: "input_empty"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := do(router, http.MethodPost, tt.path, tt.body, nil)
			assert.Equal(t, tt.status, recorder.Code)
			assert.Equal(t, tt.code, decodeError(t, recorder).Error.Code)
		})
	}
}

func TestExecuteGenerationFailureIs502(t *testing.T) {
	router := testRouter(t, &llm.StubGenerator{Err: &llm.GenerationError{Provider: "stub", Kind: llm.KindMalformedBody}})

	recorder := do(router, http.MethodPost, "/api/surfaces/toolbar/execute",
		`{"command":"improve","document":{"textBeforeCursor":"some text"}}`, nil)
	assert.Equal(t, http.StatusBadGateway, recorder.Code)

	envelope := decodeError(t, recorder)
	assert.Equal(t, "generation_failed", envelope.Error.Code)
	assert.Equal(t, "The AI service sent an unreadable response.", envelope.Error.Message)
}

func TestExecuteBusySurfaceIs409(t *testing.T) {
	stub := &llm.StubGenerator{Text: "done", Block: make(chan struct{})}
	router := testRouter(t, stub)
	body := `{"command":"improve","document":{"textBeforeCursor":"some text"}}`
	headers := map[string]string{"X-Keyboard-Session": "phone-1"}

	first := make(chan int, 1)
	go func() {
		first <- do(router, http.MethodPost, "/api/surfaces/toolbar/execute", body, headers).Code
	}()
	require.Eventually(t, func() bool { return stub.Calls() == 1 }, time.Second, 5*time.Millisecond)

	second := do(router, http.MethodPost, "/api/surfaces/toolbar/execute", body, headers)
	assert.Equal(t, http.StatusConflict, second.Code)
	assert.Equal(t, "surface_busy", decodeError(t, second).Error.Code)

	otherSession := make(chan int, 1)
	go func() {
		otherSession <- do(router, http.MethodPost, "/api/surfaces/toolbar/execute", body, map[string]string{"X-Keyboard-Session": "phone-2"}).Code
	}()
	require.Eventually(t, func() bool { return stub.Calls() == 2 }, time.Second, 5*time.Millisecond)

	close(stub.Block)
	assert.Equal(t, http.StatusOK, <-first)
	assert.Equal(t, http.StatusOK, <-otherSession)
}

func TestRepliesQuickAndGenerated(t *testing.T) {
	router := testRouter(t, &llm.StubGenerator{Text: "1. Yes\n2. Maybe"})

	recorder := do(router, http.MethodPost, "/api/replies", `{"message":"مرحبا"}`, nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	var quick domain.RepliesResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &quick))
	assert.Equal(t, "quick", quick.Source)
	assert.Len(t, quick.Replies, 3)

	recorder = do(router, http.MethodPost, "/api/replies", `{"message":"Lunch at noon?"}`, nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	var generated domain.RepliesResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &generated))
	assert.Equal(t, "generated", generated.Source)
	require.Len(t, generated.Replies, 2)
	assert.Equal(t, domain.TonePositive, generated.Replies[0].Tone)
	assert.Equal(t, "Yes", generated.Replies[0].Text)
}

func TestRepliesServeQuickTableWithoutAI(t *testing.T) {
	t.Setenv("AI_RATE_LIMIT_PER_MINUTE", "0")
	gin.SetMode(gin.TestMode)
	stub := &llm.StubGenerator{Text: "unused"}
	router := gin.New()
	router.Use(middleware.RequestID())
	RegisterRoutes(router, Dependencies{
		Executors: executor.NewRegistry(executor.Options{
			Generator: stub,
			Policy:    func() executor.Policy { return executor.Policy{AIEnabled: false} },
		}),
		Settings: settings.NewMemoryStore(settings.Values{}),
	})

	recorder := do(router, http.MethodPost, "/api/replies", `{"message":"مرحبا"}`, nil)
	require.Equal(t, http.StatusOK, recorder.Code, recorder.Body.String())
	var quick domain.RepliesResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &quick))
	assert.Equal(t, "quick", quick.Source)
	assert.Len(t, quick.Replies, 3)

	recorder = do(router, http.MethodPost, "/api/replies", `{"message":"Lunch at noon?"}`, nil)
	assert.Equal(t, http.StatusServiceUnavailable, recorder.Code)
	assert.Equal(t, "ai_disabled", decodeError(t, recorder).Error.Code)
	assert.Equal(t, 0, stub.Calls())
}

func TestRepliesValidationAndEmpty(t *testing.T) {
	router := testRouter(t, &llm.StubGenerator{Text: ""})

	recorder := do(router, http.MethodPost, "/api/replies", `{"message":"  "}`, nil)
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Equal(t, "missing_message", decodeError(t, recorder).Error.Code)

	recorder = do(router, http.MethodPost, "/api/replies", `{"message":"Lunch at noon?"}`, nil)
	assert.Equal(t, http.StatusNotFound, recorder.Code)
	assert.Equal(t, "no_replies", decodeError(t, recorder).Error.Code)
}

func TestQuickRepliesNeverCallGenerator(t *testing.T) {
	stub := &llm.StubGenerator{Text: "POSITIVE: unused"}
	router := testRouter(t, stub)

	recorder := do(router, http.MethodPost, "/api/replies/quick", `{"message":"Lunch at noon?"}`, nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.JSONEq(t, `[]`, mustField(t, recorder.Body.Bytes(), "replies"))
	assert.Equal(t, 0, stub.Calls())
}

func TestSettingsRoundTrip(t *testing.T) {
	router := testRouter(t, &llm.StubGenerator{})

	recorder := do(router, http.MethodPut, "/api/settings/max_text_length", `{"value":"700"}`, nil)
	require.Equal(t, http.StatusOK, recorder.Code, recorder.Body.String())

	recorder = do(router, http.MethodPut, "/api/settings/gemini_api_key", `{"value":"secret"}`, nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.NotContains(t, recorder.Body.String(), "secret")

	var current domain.SettingsResponse
	recorder = do(router, http.MethodGet, "/api/settings", "", nil)
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &current))
	assert.Equal(t, 700, current.MaxTextLength)
	assert.True(t, current.HasAPIKey)

	recorder = do(router, http.MethodPut, "/api/settings/is_pro_enabled", `{"value":"sometimes"}`, nil)
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Equal(t, "invalid_setting", decodeError(t, recorder).Error.Code)
}

func TestCapabilitiesReportsFallback(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "gemini")
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("GOOGLE_API_KEY", "")
	previous := llm.CurrentGenerator()
	llm.SetGenerator(llm.NewMockGenerator())
	t.Cleanup(func() { llm.SetGenerator(previous) })

	router := testRouter(t, nil)
	var response domain.CapabilitiesResponse
	recorder := do(router, http.MethodGet, "/api/capabilities", "", nil)
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))

	assert.Equal(t, "gemini", response.Runtime.RequestedProvider)
	assert.Equal(t, "mock", response.Runtime.ActiveProvider)
	assert.True(t, response.Runtime.ProviderFallback)
	assert.False(t, response.Features.AI)
}

func TestMetricsEndpointCountsExecutions(t *testing.T) {
	metrics.ResetForTests()
	router := testRouter(t, &llm.StubGenerator{Text: "ok"})

	do(router, http.MethodPost, "/api/surfaces/sheet/execute", `{"command":"improve","document":{"textBeforeCursor":"x"}}`, nil)
	recorder := do(router, http.MethodGet, "/metrics", "", nil)

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), `qalam_command_executions_total{command="improve",outcome="success",surface="sheet"} 1`)
}

func mustField(t *testing.T, body []byte, field string) string {
	t.Helper()
	var fields map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(body, &fields))
	return string(fields[field])
}
