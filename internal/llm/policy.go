package llm

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/alanmaizon/qalam/internal/domain"
)

const maxLLMTimeout = 2 * time.Minute

type runtimePolicy struct {
	override time.Duration
}

func loadRuntimePolicyFromEnv() runtimePolicy {
	policy := runtimePolicy{}
	if raw := strings.TrimSpace(os.Getenv("LLM_TIMEOUT_MS")); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			policy.override = time.Duration(parsed) * time.Millisecond
		}
	}
	if policy.override > maxLLMTimeout {
		policy.override = maxLLMTimeout
	}
	return policy
}

// timeoutFor returns the deadline for one call of the given class.
func (p runtimePolicy) timeoutFor(class domain.TimeoutClass) time.Duration {
	if p.override > 0 {
		return p.override
	}
	return domain.DefaultTimeout(class)
}
