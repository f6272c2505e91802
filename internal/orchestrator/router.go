package orchestrator

import "strings"

// Keyword sets for content-based expert routing. Scored by counting which
// keywords appear in the issue description.
var (
	cssKeywords  = []string{"color", "contrast", "focus", "outline", "font", "size", "visible", "display"}
	jsKeywords   = []string{"click", "event", "keyboard", "focus", "dynamic", "interactive", "listener"}
	htmlKeywords = []string{"alt", "aria", "label", "heading", "semantic", "role", "landmark", "form"}
)

// SelectExpert routes an issue to a fixer persona. Pure and deterministic:
// no oracle call is involved.
//
// Priority: file extension first (.css is CSS; .js/.jsx/.ts/.tsx is
// JavaScript), then keyword scoring over the description with tie-break
// order CSS over JavaScript over HTML, defaulting to HTML when every score
// is zero.
func SelectExpert(file, description string) Persona {
	path := strings.ToLower(file)

	if strings.HasSuffix(path, ".css") {
		return PersonaCSS
	}
	for _, ext := range []string{".js", ".jsx", ".ts", ".tsx"} {
		if strings.HasSuffix(path, ext) {
			return PersonaJavaScript
		}
	}

	desc := strings.ToLower(description)
	cssScore := keywordScore(desc, cssKeywords)
	jsScore := keywordScore(desc, jsKeywords)
	htmlScore := keywordScore(desc, htmlKeywords)

	switch {
	case cssScore >= jsScore && cssScore >= htmlScore && cssScore > 0:
		return PersonaCSS
	case jsScore >= htmlScore && jsScore > 0:
		return PersonaJavaScript
	default:
		return PersonaHTML
	}
}

func keywordScore(desc string, keywords []string) int {
	score := 0
	for _, kw := range keywords {
		if strings.Contains(desc, kw) {
			score++
		}
	}
	return score
}
