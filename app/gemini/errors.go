package gemini

import (
	"fmt"
	"regexp"
	"strings"
)

// maxErrorLength bounds how much raw API detail may reach a client.
const maxErrorLength = 200

var retryHintRe = regexp.MustCompile(`(?i)retry[_ ]?(?:in|delay)?[:\s]*(\d+)`)

// ParseAPIError converts a raw Gemini failure into a short, user-facing
// message. Rules are checked in order; the first match wins.
func ParseAPIError(err error, modelID string) string {
	text := err.Error()
	lower := strings.ToLower(text)

	switch {
	case strings.Contains(text, "429") || strings.Contains(lower, "quota"):
		wait := "60"
		if m := retryHintRe.FindStringSubmatch(text); m != nil {
			wait = m[1]
		}
		return fmt.Sprintf("Rate limit reached for %s. Wait ~%ss or switch model.", modelID, wait)

	case strings.Contains(text, "401") || strings.Contains(lower, "api_key"):
		return "Invalid API Key. Check your key in Settings."

	case strings.Contains(text, "403") || strings.Contains(lower, "permission"):
		return "Permission denied. Your API key may not have access to this model."

	case strings.Contains(text, "404") || strings.Contains(lower, "not found"):
		return fmt.Sprintf("Model '%s' not found. Select a different model.", modelID)

	case strings.Contains(lower, "safety") || strings.Contains(lower, "blocked"):
		return "Content blocked by safety filters. Try a different video."
	}

	if len(text) > maxErrorLength {
		return text[:maxErrorLength]
	}
	return text
}

// IsNotFound reports whether err looks like a model-not-found failure,
// which is the only failure worth retrying against the fallback model.
func IsNotFound(err error) bool {
	text := strings.ToLower(err.Error())
	return strings.Contains(text, "not found") || strings.Contains(text, "404")
}
