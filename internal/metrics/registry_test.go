package metrics

import (
	"strings"
	"testing"
	"time"
)

func TestPrometheusTextContainsGenerationAndExecutionSeries(t *testing.T) {
	ResetForTests()

	RecordGeneration("gemini", "proofread", "success", "none", 250*time.Millisecond)
	RecordGeneration("gemini", "fix", "error", "timeout", 30*time.Second)
	RecordCommandExecution("toolbar", "proofread", "success")
	RecordCommandExecution("toolbar", "proofread", "busy")
	RecordCommandExecution("toolbar", "proofread", "busy")

	output := PrometheusText()

	expectedSubstrings := []string{
		"# HELP qalam_generation_requests_total",
		"qalam_generation_requests_total{command=\"proofread\",error_category=\"none\",provider=\"gemini\",status=\"success\"} 1",
		"qalam_generation_requests_total{command=\"fix\",error_category=\"timeout\",provider=\"gemini\",status=\"error\"} 1",
		"# TYPE qalam_generation_request_duration_seconds histogram",
		"qalam_generation_request_duration_seconds_bucket{command=\"proofread\",error_category=\"none\",provider=\"gemini\",status=\"success\",le=\"0.25\"} 1",
		"qalam_generation_request_duration_seconds_bucket{command=\"fix\",error_category=\"timeout\",provider=\"gemini\",status=\"error\",le=\"20\"} 0",
		"qalam_generation_request_duration_seconds_count{command=\"fix\",error_category=\"timeout\",provider=\"gemini\",status=\"error\"} 1",
		"qalam_command_executions_total{command=\"proofread\",outcome=\"busy\",surface=\"toolbar\"} 2",
		"qalam_command_executions_total{command=\"proofread\",outcome=\"success\",surface=\"toolbar\"} 1",
	}

	for _, substring := range expectedSubstrings {
		if !strings.Contains(output, substring) {
			t.Fatalf("expected metrics output to contain %q\noutput:\n%s", substring, output)
		}
	}
}

func TestResetForTestsClearsSeries(t *testing.T) {
	RecordCommandExecution("menu", "fix", "failed")
	ResetForTests()

	if strings.Contains(PrometheusText(), "surface=\"menu\"") {
		t.Fatalf("expected reset registry to be empty")
	}
}
