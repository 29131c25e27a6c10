package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/alanmaizon/qalam/internal/domain"
	"github.com/sahilm/fuzzy"
)

var subcommands = []string{"health", "capabilities", "commands", "execute", "replies", "quick-replies", "settings", "set"}

type apiClient struct {
	baseURL    string
	session    string
	httpClient *http.Client
}

type apiError struct {
	Status    int
	Code      string
	Message   string
	RequestID string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("api error status=%d code=%s message=%s", e.Status, e.Code, e.Message)
}

func Run(args []string, stdout io.Writer, stderr io.Writer) int {
	root := flag.NewFlagSet("qalam", flag.ContinueOnError)
	root.SetOutput(stderr)

	baseURL := root.String("base-url", envOrDefault("QALAM_BASE_URL", "http://localhost:8080"), "Qalam API base URL")
	session := root.String("session", strings.TrimSpace(os.Getenv("QALAM_SESSION")), "Keyboard session for X-Keyboard-Session header")
	timeout := root.Duration("timeout", 45*time.Second, "HTTP timeout, e.g. 45s")

	if err := root.Parse(args); err != nil {
		writeCLIError(stdout, "invalid_arguments", err.Error(), 0)
		return 2
	}

	remaining := root.Args()
	if len(remaining) == 0 {
		writeCLIError(stdout, "missing_command", usageText(), 0)
		return 2
	}

	client := &apiClient{
		baseURL: strings.TrimRight(strings.TrimSpace(*baseURL), "/"),
		session: strings.TrimSpace(*session),
		httpClient: &http.Client{
			Timeout: *timeout,
		},
	}

	command := remaining[0]
	commandArgs := remaining[1:]
	ctx := context.Background()

	switch command {
	case "health":
		return runRequest(ctx, client, stdout, http.MethodGet, "/api/health", nil)
	case "capabilities":
		return runRequest(ctx, client, stdout, http.MethodGet, "/api/capabilities", nil)
	case "commands":
		return runCommands(ctx, client, stdout, stderr, commandArgs)
	case "execute":
		return runExecute(ctx, client, stdout, stderr, commandArgs)
	case "replies":
		return runReplies(ctx, client, stdout, stderr, commandArgs, "/api/replies")
	case "quick-replies":
		return runReplies(ctx, client, stdout, stderr, commandArgs, "/api/replies/quick")
	case "settings":
		return runRequest(ctx, client, stdout, http.MethodGet, "/api/settings", nil)
	case "set":
		return runSet(ctx, client, stdout, stderr, commandArgs)
	default:
		writeCLIError(stdout, "unknown_command", fmt.Sprintf("unknown command %q%s\n%s", command, didYouMean(command, subcommands), usageText()), 0)
		return 2
	}
}

func runCommands(ctx context.Context, client *apiClient, stdout io.Writer, stderr io.Writer, args []string) int {
	fs := flag.NewFlagSet("commands", flag.ContinueOnError)
	fs.SetOutput(stderr)

	family := fs.String("family", "", "Filter by family: text or code")
	if err := fs.Parse(args); err != nil {
		writeCLIError(stdout, "invalid_arguments", err.Error(), 0)
		return 2
	}

	path := "/api/commands"
	if trimmed := strings.TrimSpace(*family); trimmed != "" {
		path += "?family=" + url.QueryEscape(trimmed)
	}
	return runRequest(ctx, client, stdout, http.MethodGet, path, nil)
}

func runExecute(ctx context.Context, client *apiClient, stdout io.Writer, stderr io.Writer, args []string) int {
	fs := flag.NewFlagSet("execute", flag.ContinueOnError)
	fs.SetOutput(stderr)

	surface := fs.String("surface", string(domain.SurfaceToolbar), "Surface: toolbar, menu or sheet")
	command := fs.String("command", "", "Command slug, e.g. proofread or fix")
	before := fs.String("before", "", "Text before the cursor")
	selected := fs.String("selected", "", "Selected text")
	after := fs.String("after", "", "Text after the cursor")
	target := fs.String("target", "", "Target language")
	source := fs.String("source", "", "Source programming language")
	errorContext := fs.String("error", "", "Compiler or runtime error for fix")

	if err := fs.Parse(args); err != nil {
		writeCLIError(stdout, "invalid_arguments", err.Error(), 0)
		return 2
	}

	slug := strings.TrimSpace(*command)
	if slug == "" {
		writeCLIError(stdout, "missing_command", "execute requires -command", 0)
		return 2
	}
	if _, ok := domain.ParseCommand(slug); !ok {
		writeCLIError(stdout, "unknown_command", fmt.Sprintf("unknown command %q%s", slug, didYouMean(slug, commandSlugs())), 0)
		return 2
	}
	if *before == "" && *selected == "" {
		writeCLIError(stdout, "missing_text", "execute requires -before or -selected", 0)
		return 2
	}

	payload := domain.ExecuteRequest{
		Command: slug,
		Document: domain.DocumentState{
			TextBeforeCursor: *before,
			SelectedText:     *selected,
			TextAfterCursor:  *after,
		},
		TargetLanguage: strings.TrimSpace(*target),
		SourceLanguage: strings.TrimSpace(*source),
		ErrorContext:   strings.TrimSpace(*errorContext),
	}
	path := "/api/surfaces/" + url.PathEscape(strings.TrimSpace(*surface)) + "/execute"
	return runRequest(ctx, client, stdout, http.MethodPost, path, payload)
}

func runReplies(ctx context.Context, client *apiClient, stdout io.Writer, stderr io.Writer, args []string, path string) int {
	fs := flag.NewFlagSet("replies", flag.ContinueOnError)
	fs.SetOutput(stderr)

	message := fs.String("message", "", "Incoming message to reply to")
	if err := fs.Parse(args); err != nil {
		writeCLIError(stdout, "invalid_arguments", err.Error(), 0)
		return 2
	}
	if strings.TrimSpace(*message) == "" {
		writeCLIError(stdout, "missing_message", "replies requires -message", 0)
		return 2
	}

	return runRequest(ctx, client, stdout, http.MethodPost, path, domain.RepliesRequest{Message: *message})
}

func runSet(ctx context.Context, client *apiClient, stdout io.Writer, stderr io.Writer, args []string) int {
	fs := flag.NewFlagSet("set", flag.ContinueOnError)
	fs.SetOutput(stderr)

	key := fs.String("key", "", "Settings key, e.g. max_text_length")
	value := fs.String("value", "", "New value")
	if err := fs.Parse(args); err != nil {
		writeCLIError(stdout, "invalid_arguments", err.Error(), 0)
		return 2
	}
	if strings.TrimSpace(*key) == "" {
		writeCLIError(stdout, "missing_key", "set requires -key", 0)
		return 2
	}

	path := "/api/settings/" + url.PathEscape(strings.TrimSpace(*key))
	return runRequest(ctx, client, stdout, http.MethodPut, path, domain.SettingUpdateRequest{Value: *value})
}

func runRequest(ctx context.Context, client *apiClient, stdout io.Writer, method string, path string, payload any) int {
	responseBody, err := client.request(ctx, method, path, payload)
	if err != nil {
		var apiErr *apiError
		if errors.As(err, &apiErr) {
			writeCLIError(stdout, apiErr.Code, apiErr.Message, apiErr.Status)
			return 1
		}
		writeCLIError(stdout, "request_failed", err.Error(), 0)
		return 1
	}

	if err := writeStructuredJSON(stdout, responseBody); err != nil {
		writeCLIError(stdout, "invalid_response", err.Error(), 0)
		return 1
	}
	return 0
}

func (c *apiClient) request(ctx context.Context, method string, path string, payload any) ([]byte, error) {
	requestURL, err := c.resolveURL(path)
	if err != nil {
		return nil, err
	}

	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, requestURL, body)
	if err != nil {
		return nil, err
	}

	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if c.session != "" {
		req.Header.Set("X-Keyboard-Session", c.session)
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	responseBody, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, err
	}

	if res.StatusCode >= 400 {
		apiErr := &apiError{
			Status:  res.StatusCode,
			Code:    "http_error",
			Message: strings.TrimSpace(string(responseBody)),
		}

		var envelope domain.APIErrorResponse
		if err := json.Unmarshal(responseBody, &envelope); err == nil && envelope.Error.Code != "" {
			apiErr.Code = envelope.Error.Code
			apiErr.Message = envelope.Error.Message
			apiErr.RequestID = envelope.Error.RequestID
		}

		return nil, apiErr
	}

	return responseBody, nil
}

func (c *apiClient) resolveURL(path string) (string, error) {
	base := strings.TrimSpace(c.baseURL)
	if base == "" {
		return "", errors.New("base URL is required")
	}

	baseURL, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	pathURL, err := url.Parse(path)
	if err != nil {
		return "", err
	}

	return baseURL.ResolveReference(pathURL).String(), nil
}

// didYouMean returns a ", did you mean X?" suffix for the closest candidate,
// or nothing when no candidate matches at all.
func didYouMean(input string, candidates []string) string {
	matches := fuzzy.Find(strings.ToLower(strings.TrimSpace(input)), candidates)
	if len(matches) == 0 {
		return ""
	}
	return fmt.Sprintf(", did you mean %q?", matches[0].Str)
}

func commandSlugs() []string {
	slugs := make([]string, 0, domain.CommandCount)
	for _, command := range domain.Commands() {
		slugs = append(slugs, command.String())
	}
	return slugs
}

func writeStructuredJSON(output io.Writer, body []byte) error {
	var data any
	if err := json.Unmarshal(body, &data); err != nil {
		return err
	}

	encoder := json.NewEncoder(output)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

func writeCLIError(output io.Writer, code string, message string, status int) {
	payload := map[string]any{
		"error": map[string]any{
			"code":    code,
			"message": message,
		},
	}
	if status > 0 {
		payload["error"].(map[string]any)["status"] = status
	}

	encoder := json.NewEncoder(output)
	encoder.SetIndent("", "  ")
	_ = encoder.Encode(payload)
}

func usageText() string {
	return strings.Join([]string{
		"usage: qalam [global flags] <command> [command flags]",
		"commands: " + strings.Join(subcommands, ", "),
		"global flags: -base-url -session -timeout",
	}, "\n")
}

func envOrDefault(key string, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}
