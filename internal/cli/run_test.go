package cli

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestRunHealthSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/api/health" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	var stdout strings.Builder
	var stderr strings.Builder

	exitCode := Run([]string{"-base-url", server.URL, "health"}, &stdout, &stderr)
	if exitCode != 0 {
		t.Fatalf("expected exit code 0, got %d stdout=%s stderr=%s", exitCode, stdout.String(), stderr.String())
	}

	if !strings.Contains(stdout.String(), `"ok": true`) {
		t.Fatalf("expected health response in output, got %s", stdout.String())
	}
}

func TestRunExecuteSendsDocumentAndSession(t *testing.T) {
	var received map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/surfaces/menu/execute" {
			http.NotFound(w, r)
			return
		}
		if r.Header.Get("X-Keyboard-Session") != "phone-1" {
			t.Errorf("expected session header, got %q", r.Header.Get("X-Keyboard-Session"))
		}
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &received)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"command":"fix","result":"let x = 1"}`))
	}))
	defer server.Close()

	var stdout strings.Builder
	var stderr strings.Builder
	exitCode := Run([]string{
		"-base-url", server.URL, "-session", "phone-1",
		"execute", "-surface", "menu", "-command", "fix", "-before", "let x = = 1", "-error", "expected expression",
	}, &stdout, &stderr)
	if exitCode != 0 {
		t.Fatalf("expected exit code 0, got %d stdout=%s", exitCode, stdout.String())
	}

	if received["command"] != "fix" || received["errorContext"] != "expected expression" {
		t.Fatalf("unexpected payload %v", received)
	}
	document, _ := received["document"].(map[string]any)
	if document["textBeforeCursor"] != "let x = = 1" {
		t.Fatalf("unexpected document %v", document)
	}
}

func TestRunExecuteSuggestsCommand(t *testing.T) {
	var stdout strings.Builder
	var stderr strings.Builder

	exitCode := Run([]string{"execute", "-command", "profread", "-before", "x"}, &stdout, &stderr)
	if exitCode != 2 {
		t.Fatalf("expected exit code 2, got %d", exitCode)
	}
	if !strings.Contains(stdout.String(), `did you mean \"proofread\"?`) {
		t.Fatalf("expected suggestion, got %s", stdout.String())
	}
}

func TestRunUnknownSubcommandSuggests(t *testing.T) {
	var stdout strings.Builder
	var stderr strings.Builder

	exitCode := Run([]string{"helth"}, &stdout, &stderr)
	if exitCode != 2 {
		t.Fatalf("expected exit code 2, got %d", exitCode)
	}
	if !strings.Contains(stdout.String(), `did you mean \"health\"?`) {
		t.Fatalf("expected suggestion, got %s", stdout.String())
	}
}

func TestRunRepliesMissingMessage(t *testing.T) {
	var stdout strings.Builder
	var stderr strings.Builder

	exitCode := Run([]string{"replies"}, &stdout, &stderr)
	if exitCode != 2 {
		t.Fatalf("expected exit code 2, got %d", exitCode)
	}
	if !strings.Contains(stdout.String(), `"code": "missing_message"`) {
		t.Fatalf("expected missing_message error, got %s", stdout.String())
	}
}

func TestRunExecuteAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"error":{"code":"surface_busy","message":"Please wait for the current request to finish.","requestId":"req-1"}}`))
	}))
	defer server.Close()

	var stdout strings.Builder
	var stderr strings.Builder

	exitCode := Run([]string{"-base-url", server.URL, "execute", "-command", "improve", "-before", "text"}, &stdout, &stderr)
	if exitCode != 1 {
		t.Fatalf("expected exit code 1, got %d", exitCode)
	}

	var payload map[string]map[string]any
	if err := json.Unmarshal([]byte(stdout.String()), &payload); err != nil {
		t.Fatalf("expected JSON output, got %s", stdout.String())
	}
	if payload["error"]["code"] != "surface_busy" {
		t.Fatalf("expected surface_busy, got %v", payload["error"]["code"])
	}
	if payload["error"]["status"] != float64(http.StatusConflict) {
		t.Fatalf("expected status 409, got %v", payload["error"]["status"])
	}
}

func TestRunSetSetting(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut || r.URL.Path != "/api/settings/max_text_length" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"maxTextLength":900}`))
	}))
	defer server.Close()

	var stdout strings.Builder
	var stderr strings.Builder
	exitCode := Run([]string{"-base-url", server.URL, "set", "-key", "max_text_length", "-value", "900"}, &stdout, &stderr)
	if exitCode != 0 {
		t.Fatalf("expected exit code 0, got %d stdout=%s", exitCode, stdout.String())
	}
}
