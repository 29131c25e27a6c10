package api

import (
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/alanmaizon/qalam/internal/config"
	"github.com/alanmaizon/qalam/internal/document"
	"github.com/alanmaizon/qalam/internal/domain"
	"github.com/alanmaizon/qalam/internal/executor"
	"github.com/alanmaizon/qalam/internal/llm"
	"github.com/alanmaizon/qalam/internal/metrics"
	"github.com/alanmaizon/qalam/internal/middleware"
	"github.com/alanmaizon/qalam/internal/replies"
	"github.com/alanmaizon/qalam/internal/settings"
	"github.com/gin-gonic/gin"
)

const defaultSession = "default"

type Dependencies struct {
	Executors *executor.Registry
	Settings  settings.Store
}

func RegisterRoutes(router *gin.Engine, deps Dependencies) {
	if deps.Settings == nil {
		deps.Settings = settings.NewMemoryStore(settings.Default())
	}
	if deps.Executors == nil {
		deps.Executors = executor.NewRegistry(executor.Options{Policy: config.PolicySource(deps.Settings)})
	}
	aiRateLimiter := newAIRateLimiter(config.Load(deps.Settings).AIRateLimitPerMinute)

	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	router.GET("/metrics", func(c *gin.Context) {
		c.Data(http.StatusOK, "text/plain; version=0.0.4; charset=utf-8", []byte(metrics.PrometheusText()))
	})

	router.GET("/api/capabilities", func(c *gin.Context) {
		cfg := config.Load(deps.Settings)
		requestedProvider := cfg.LLM.RequestedProvider()
		generator := llm.CurrentGenerator()

		runtime := domain.RuntimeCapabilities{
			RequestedProvider: requestedProvider,
			ActiveProvider:    generator.Name(),
			ProviderFallback:  requestedProvider != generator.Name(),
		}
		if modeled, ok := generator.(interface{ Model() string }); ok {
			runtime.Model = modeled.Model()
		}

		c.JSON(http.StatusOK, domain.CapabilitiesResponse{
			Runtime: runtime,
			Features: domain.FeatureFlags{
				AI:         cfg.AIEnabled(),
				SmartReply: true,
				CodeTools:  cfg.AIEnabled(),
			},
		})
	})

	router.GET("/api/commands", func(c *gin.Context) {
		family := strings.TrimSpace(c.Query("family"))
		descriptors := make([]domain.CommandDescriptor, 0, domain.CommandCount)
		for _, command := range domain.Commands() {
			info := command.Info()
			if family != "" && string(info.Family) != family {
				continue
			}
			descriptors = append(descriptors, domain.CommandDescriptor{
				Slug:    info.Slug,
				Label:   info.Label,
				LabelAr: info.LabelAr,
				Family:  info.Family,
				Icon:    info.Icon,
				Color:   info.Color,
			})
		}
		c.JSON(http.StatusOK, gin.H{"commands": descriptors})
	})

	router.GET("/api/settings", func(c *gin.Context) {
		c.JSON(http.StatusOK, settingsResponse(deps.Settings.Values()))
	})

	router.PUT("/api/settings/:key", func(c *gin.Context) {
		var req domain.SettingUpdateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			writeError(c, http.StatusBadRequest, "invalid_payload", "invalid settings payload")
			return
		}
		if err := deps.Settings.Set(settings.Key(c.Param("key")), req.Value); err != nil {
			writeError(c, http.StatusBadRequest, "invalid_setting", err.Error())
			return
		}
		c.JSON(http.StatusOK, settingsResponse(deps.Settings.Values()))
	})

	router.POST("/api/surfaces/:surface/execute", func(c *gin.Context) {
		surface, err := domain.ParseSurface(c.Param("surface"))
		if err != nil {
			writeError(c, http.StatusBadRequest, "unknown_surface", err.Error())
			return
		}

		var req domain.ExecuteRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			writeError(c, http.StatusBadRequest, "invalid_payload", "invalid execute payload")
			return
		}
		command, ok := domain.ParseCommand(req.Command)
		if !ok {
			writeError(c, http.StatusBadRequest, "unknown_command", "unknown command "+strings.TrimSpace(req.Command))
			return
		}
		if !enforceAIRateLimit(c, aiRateLimiter) {
			return
		}

		started := time.Now()
		doc := document.FromState(req.Document)
		outcome, err := deps.Executors.Get(sessionFromRequest(c), surface).Execute(c.Request.Context(), doc, executor.Invocation{
			Command:        command,
			TargetLanguage: req.TargetLanguage,
			SourceLanguage: req.SourceLanguage,
			ErrorContext:   req.ErrorContext,
		})
		if err != nil {
			writeExecutorError(c, err, outcome)
			return
		}

		c.JSON(http.StatusOK, domain.ExecuteResponse{
			Command:  command.String(),
			Surface:  surface,
			Result:   outcome.Result,
			Edit:     outcome.Edit,
			Replies:  outcome.Replies,
			Document: doc.Snapshot(),
			Metadata: metadata(c, outcome.Provider, started),
		})
	})

	router.POST("/api/replies", func(c *gin.Context) {
		var req domain.RepliesRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			writeError(c, http.StatusBadRequest, "invalid_payload", "invalid replies payload")
			return
		}
		if strings.TrimSpace(req.Message) == "" {
			writeError(c, http.StatusBadRequest, "missing_message", "message is required")
			return
		}
		if !enforceAIRateLimit(c, aiRateLimiter) {
			return
		}

		started := time.Now()
		outcome, err := deps.Executors.Get(sessionFromRequest(c), domain.SurfaceSheet).SuggestReplies(c.Request.Context(), req.Message)
		if err != nil {
			writeExecutorError(c, err, outcome)
			return
		}

		source := "generated"
		if outcome.Provider == "quick" {
			source = "quick"
		}
		c.JSON(http.StatusOK, domain.RepliesResponse{
			Source:   source,
			Replies:  outcome.Replies,
			Metadata: metadata(c, outcome.Provider, started),
		})
	})

	router.POST("/api/replies/quick", func(c *gin.Context) {
		var req domain.RepliesRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			writeError(c, http.StatusBadRequest, "invalid_payload", "invalid replies payload")
			return
		}

		started := time.Now()
		matched := replies.MatchQuick(req.Message)
		if matched == nil {
			matched = []domain.ReplyCandidate{}
		}
		c.JSON(http.StatusOK, domain.RepliesResponse{
			Source:   "quick",
			Replies:  matched,
			Metadata: metadata(c, "quick", started),
		})
	})
}

func sessionFromRequest(c *gin.Context) string {
	if session := strings.TrimSpace(c.GetHeader("X-Keyboard-Session")); session != "" {
		return session
	}
	return defaultSession
}

func metadata(c *gin.Context, provider string, started time.Time) domain.Metadata {
	return domain.Metadata{
		Provider:        provider,
		ExecutionTimeMs: time.Since(started).Milliseconds(),
		RequestID:       middleware.GetRequestID(c),
	}
}

func settingsResponse(values settings.Values) domain.SettingsResponse {
	return domain.SettingsResponse{
		HasAPIKey:        values.GeminiAPIKey != "",
		SelectedTheme:    values.SelectedTheme,
		SelectedLanguage: values.SelectedLanguage,
		IsProEnabled:     values.IsProEnabled,
		MaxTextLength:    values.MaxTextLength,
	}
}

func writeExecutorError(c *gin.Context, err error, outcome executor.Outcome) {
	status, code := executorErrorStatus(err)
	message := outcome.Message
	if message == "" {
		message = err.Error()
	}
	if status >= http.StatusInternalServerError {
		log.Printf(
			"request_id=%s component=http path=%s status=%d error_code=%s err=%v",
			middleware.GetRequestID(c),
			c.FullPath(),
			status,
			code,
			err,
		)
	}
	writeError(c, status, code, message)
}

func executorErrorStatus(err error) (status int, code string) {
	switch {
	case errors.Is(err, executor.ErrBusy):
		return http.StatusConflict, "surface_busy"
	case errors.Is(err, executor.ErrInputEmpty):
		return http.StatusUnprocessableEntity, "input_empty"
	case errors.Is(err, executor.ErrInputTooLong):
		return http.StatusUnprocessableEntity, "input_too_long"
	case errors.Is(err, executor.ErrAIDisabled):
		return http.StatusServiceUnavailable, "ai_disabled"
	case errors.Is(err, executor.ErrNoReplies):
		return http.StatusNotFound, "no_replies"
	case errors.Is(err, executor.ErrUnknownCommand):
		return http.StatusBadRequest, "unknown_command"
	case errors.Is(err, executor.ErrGenerationFailed):
		return http.StatusBadGateway, "generation_failed"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

func writeError(c *gin.Context, status int, code string, message string) {
	c.JSON(status, domain.APIErrorResponse{
		Error: domain.APIError{
			Code:      code,
			Message:   message,
			RequestID: middleware.GetRequestID(c),
		},
	})
}
