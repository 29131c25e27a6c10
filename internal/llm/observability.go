package llm

import (
	"context"
	"log"
	"time"

	"github.com/alanmaizon/qalam/internal/domain"
	"github.com/alanmaizon/qalam/internal/metrics"
	"github.com/alanmaizon/qalam/internal/middleware"
)

func observeGeneration(ctx context.Context, provider string, command domain.Command, call func() (string, error)) (string, error) {
	started := time.Now()
	requestID := middleware.GetRequestIDFromContext(ctx)

	log.Printf(
		"request_id=%s component=provider provider=%s command=%s event=start",
		requestID,
		provider,
		command,
	)

	result, err := call()

	status := "success"
	errorCategory := ErrorCategory(err)
	if err != nil {
		status = "error"
	}

	duration := time.Since(started)
	metrics.RecordGeneration(provider, command.String(), status, errorCategory, duration)
	log.Printf(
		"request_id=%s component=provider provider=%s command=%s status=%s error_category=%s duration_ms=%d",
		requestID,
		provider,
		command,
		status,
		errorCategory,
		duration.Milliseconds(),
	)

	return result, err
}
