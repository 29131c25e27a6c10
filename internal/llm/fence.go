package llm

import "strings"

const codeFence = "```"

// StripCodeFence removes a leading fence line and a trailing fence. The two
// ends are checked independently. Unfenced input is returned trimmed.
func StripCodeFence(text string) string {
	cleaned := strings.TrimSpace(text)
	if strings.HasPrefix(cleaned, codeFence) {
		if newline := strings.IndexByte(cleaned, '\n'); newline >= 0 {
			cleaned = cleaned[newline+1:]
		}
	}
	if strings.HasSuffix(cleaned, codeFence) {
		cleaned = strings.TrimSuffix(cleaned, codeFence)
	}
	return strings.TrimSpace(cleaned)
}

// Finalize applies the success post-processing every generator shares.
func Finalize(text string, req Request) string {
	if req.StripCodeFence {
		return StripCodeFence(text)
	}
	return strings.TrimSpace(text)
}
