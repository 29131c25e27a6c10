package llm

import (
	"testing"
	"time"

	"github.com/alanmaizon/qalam/internal/domain"
)

func TestRuntimePolicyUsesClassDefaults(t *testing.T) {
	t.Setenv("LLM_TIMEOUT_MS", "")

	policy := loadRuntimePolicyFromEnv()
	if got := policy.timeoutFor(domain.TimeoutText); got != 15*time.Second {
		t.Fatalf("expected text timeout 15s, got %s", got)
	}
	if got := policy.timeoutFor(domain.TimeoutReply); got != 20*time.Second {
		t.Fatalf("expected reply timeout 20s, got %s", got)
	}
	if got := policy.timeoutFor(domain.TimeoutCode); got != 30*time.Second {
		t.Fatalf("expected code timeout 30s, got %s", got)
	}
}

func TestRuntimePolicyOverrideAndBounds(t *testing.T) {
	t.Setenv("LLM_TIMEOUT_MS", "8000")
	policy := loadRuntimePolicyFromEnv()
	if got := policy.timeoutFor(domain.TimeoutCode); got != 8*time.Second {
		t.Fatalf("expected override 8s, got %s", got)
	}

	t.Setenv("LLM_TIMEOUT_MS", "99999999")
	policy = loadRuntimePolicyFromEnv()
	if got := policy.timeoutFor(domain.TimeoutText); got != maxLLMTimeout {
		t.Fatalf("expected override capped at %s, got %s", maxLLMTimeout, got)
	}

	t.Setenv("LLM_TIMEOUT_MS", "not-a-number")
	policy = loadRuntimePolicyFromEnv()
	if got := policy.timeoutFor(domain.TimeoutText); got != 15*time.Second {
		t.Fatalf("expected invalid override to be ignored, got %s", got)
	}
}
