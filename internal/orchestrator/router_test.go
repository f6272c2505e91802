package orchestrator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSelectExpert_ExtensionWins(t *testing.T) {
	// Extension routing ignores the description entirely.
	assert.Equal(t, PersonaCSS, SelectExpert("styles/main.css", "missing alt attribute on image"))
	assert.Equal(t, PersonaJavaScript, SelectExpert("app.js", "missing alt attribute"))
	assert.Equal(t, PersonaJavaScript, SelectExpert("components/Nav.jsx", ""))
	assert.Equal(t, PersonaJavaScript, SelectExpert("src/util.ts", ""))
	assert.Equal(t, PersonaJavaScript, SelectExpert("src/App.tsx", ""))
	assert.Equal(t, PersonaCSS, SelectExpert("THEME.CSS", ""), "extension match is case-insensitive")
}

func TestSelectExpert_KeywordScoring(t *testing.T) {
	tests := []struct {
		name string
		desc string
		want Persona
	}{
		{"contrast routes to css", "insufficient color contrast on buttons", PersonaCSS},
		{"keyboard routes to js", "dropdown not reachable via keyboard event listener", PersonaJavaScript},
		{"aria routes to html", "missing aria label on form landmark", PersonaHTML},
		{"no keywords defaults to html", "something vague and unclassifiable", PersonaHTML},
		{"empty description defaults to html", "", PersonaHTML},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SelectExpert("index.html", tt.desc))
		})
	}
}

func TestSelectExpert_TieBreaks(t *testing.T) {
	// "focus" is in both the css and js keyword sets; a tie goes to css.
	assert.Equal(t, PersonaCSS, SelectExpert("page.html", "focus"))

	// One js keyword versus one html keyword: js wins the tie-break order.
	assert.Equal(t, PersonaJavaScript, SelectExpert("page.html", "click the label"))
}

func TestSelectExpert_Deterministic(t *testing.T) {
	first := SelectExpert("page.html", "low contrast interactive heading")
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, SelectExpert("page.html", "low contrast interactive heading"))
	}
}
