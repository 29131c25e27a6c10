package replies

import (
	"regexp"
	"strings"

	"github.com/alanmaizon/qalam/internal/domain"
	"github.com/google/uuid"
)

// MaxCandidates bounds every reply list.
const MaxCandidates = 4

var toneLabels = []struct {
	prefix string
	tone   domain.Tone
}{
	{prefix: "POSITIVE:", tone: domain.TonePositive},
	{prefix: "NEUTRAL:", tone: domain.ToneNeutral},
	{prefix: "FORMAL:", tone: domain.ToneFormal},
	{prefix: "FRIENDLY:", tone: domain.ToneFriendly},
}

var listMarker = regexp.MustCompile(`^(\d+\.\s*|-\s*)`)

// Parse turns raw model output into reply candidates. Labeled lines are
// preferred; when none are found the first non-empty lines are used with
// list markers removed and tones assigned in ReplyTones order.
func Parse(raw string) []domain.ReplyCandidate {
	lines := strings.Split(strings.ReplaceAll(raw, "\r\n", "\n"), "\n")

	candidates := parseLabeled(lines)
	if len(candidates) == 0 {
		candidates = parseUnlabeled(lines)
	}
	return candidates
}

func parseLabeled(lines []string) []domain.ReplyCandidate {
	var candidates []domain.ReplyCandidate
	for _, line := range lines {
		if len(candidates) == MaxCandidates {
			break
		}
		trimmed := strings.TrimSpace(line)
		for _, label := range toneLabels {
			if !strings.HasPrefix(trimmed, label.prefix) {
				continue
			}
			if text := strings.TrimSpace(strings.TrimPrefix(trimmed, label.prefix)); text != "" {
				candidates = append(candidates, newCandidate(text, label.tone))
			}
			break
		}
	}
	return candidates
}

func parseUnlabeled(lines []string) []domain.ReplyCandidate {
	nonEmpty := make([]string, 0, MaxCandidates)
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		nonEmpty = append(nonEmpty, line)
		if len(nonEmpty) == MaxCandidates {
			break
		}
	}

	var candidates []domain.ReplyCandidate
	for index, line := range nonEmpty {
		text := strings.TrimSpace(listMarker.ReplaceAllString(strings.TrimSpace(line), ""))
		if text == "" {
			continue
		}
		candidates = append(candidates, newCandidate(text, domain.ReplyTones[index%len(domain.ReplyTones)]))
	}
	return candidates
}

func newCandidate(text string, tone domain.Tone) domain.ReplyCandidate {
	return domain.ReplyCandidate{ID: uuid.NewString(), Text: text, Tone: tone}
}
