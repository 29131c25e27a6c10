package replies

import (
	"strings"

	"github.com/alanmaizon/qalam/internal/domain"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

type quickEntry struct {
	trigger string
	replies []string
}

// quickTable is scanned in order and the first match wins, so broader
// triggers must stay below the specific ones that contain them.
var quickTable = []quickEntry{
	// greetings
	{"السلام عليكم", []string{"وعليكم السلام ورحمة الله", "وعليكم السلام", "أهلاً وسهلاً"}},
	{"مرحبا", []string{"أهلاً بك", "مرحباً", "هلا والله"}},
	{"صباح الخير", []string{"صباح النور", "صباح الورد", "صباح السعادة"}},
	{"مساء الخير", []string{"مساء النور", "مساء الورد", "مساء السعادة"}},

	// thanks
	{"شكراً", []string{"العفو", "لا شكر على واجب", "تسلم"}},
	{"جزاك الله خير", []string{"وإياك", "آمين وإياك", "الله يجزاك خير"}},

	// common questions
	{"كيف حالك", []string{"الحمد لله بخير", "تمام الحمد لله", "بخير الله يسلمك"}},
	{"شو أخبارك", []string{"الحمد لله تمام", "كله تمام", "ماشي الحال"}},
	{"وين أنت", []string{"في البيت", "في الشغل", "في الطريق"}},

	// requests
	{"تقدر تساعدني", []string{"طبعاً", "أكيد، تفضل", "إن شاء الله"}},
	{"ممكن", []string{"طبعاً ممكن", "أكيد", "إن شاء الله"}},

	// farewells
	{"مع السلامة", []string{"الله يسلمك", "في أمان الله", "باي"}},
	{"باي", []string{"باي", "يلا مع السلامة", "الله يحفظك"}},
}

var folder = cases.Lower(language.Und)

func normalize(text string) string {
	return folder.String(norm.NFC.String(strings.TrimSpace(text)))
}

// MatchQuick looks message up in the canned table. Matching is a loose
// substring test in either direction. Tones follow position: formal, then
// neutral, then friendly for the rest. An empty result means the caller
// should ask the model.
func MatchQuick(message string) []domain.ReplyCandidate {
	normalized := normalize(message)
	if normalized == "" {
		return nil
	}

	for _, entry := range quickTable {
		trigger := normalize(entry.trigger)
		if !strings.Contains(normalized, trigger) && !strings.Contains(trigger, normalized) {
			continue
		}
		candidates := make([]domain.ReplyCandidate, 0, len(entry.replies))
		for index, text := range entry.replies {
			candidates = append(candidates, newCandidate(text, quickTone(index)))
		}
		return candidates
	}
	return nil
}

func quickTone(index int) domain.Tone {
	switch index {
	case 0:
		return domain.ToneFormal
	case 1:
		return domain.ToneNeutral
	default:
		return domain.ToneFriendly
	}
}

// Triggers lists the quick table triggers in scan order.
func Triggers() []string {
	triggers := make([]string, 0, len(quickTable))
	for _, entry := range quickTable {
		triggers = append(triggers, entry.trigger)
	}
	return triggers
}
