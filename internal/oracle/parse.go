package oracle

import (
	"encoding/json"
	"fmt"
	"strings"
)

// StripFences removes one layer of markdown code fencing and an optional
// leading "json" language tag from an oracle response. Unfenced input is
// returned trimmed but otherwise untouched.
//
// The oracle is asked for bare JSON but routinely wraps it anyway; this is
// the single tolerated deviation from the response contract.
func StripFences(s string) string {
	t := strings.TrimSpace(s)
	if !strings.HasPrefix(t, "```") {
		return t
	}

	t = strings.TrimPrefix(t, "```")
	if idx := strings.Index(t, "```"); idx >= 0 {
		t = t[:idx]
	}
	t = strings.TrimPrefix(t, "json")

	return strings.TrimSpace(t)
}

// Decode strips fencing and unmarshals the response into out. Any decode
// failure is returned for the caller to map onto its stage fallback.
func Decode(raw string, out any) error {
	cleaned := StripFences(raw)
	if cleaned == "" {
		return fmt.Errorf("empty oracle response")
	}
	if err := json.Unmarshal([]byte(cleaned), out); err != nil {
		return fmt.Errorf("malformed oracle JSON: %w", err)
	}
	return nil
}
