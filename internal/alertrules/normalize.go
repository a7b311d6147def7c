package alertrules

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// NormalizeQuestion canonicalizes question text so that seed data and
// admin-edited rows compare equal. Output only contains [a-z0-9_] and single
// spaces, which makes the function idempotent.
func NormalizeQuestion(question string) string {
	if question == "" {
		return ""
	}

	// combining marks are removed after NFD so "ç" becomes "c", "ã" becomes "a"
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)))
	stripped, _, err := transform.String(t, strings.ToLower(question))
	if err != nil {
		stripped = strings.ToLower(question)
	}

	var b strings.Builder
	b.Grow(len(stripped))
	space := false
	for _, r := range stripped {
		switch {
		case r == '/' || unicode.IsSpace(r):
			space = true
		case isASCIIWord(r):
			if space && b.Len() > 0 {
				b.WriteByte(' ')
			}
			space = false
			b.WriteRune(unicode.ToLower(r))
		}
		// everything else is punctuation and dropped without breaking the word
	}
	return b.String()
}

func isASCIIWord(r rune) bool {
	return r == '_' ||
		(r >= 'a' && r <= 'z') ||
		(r >= 'A' && r <= 'Z') ||
		(r >= '0' && r <= '9')
}

var answerReplacer = strings.NewReplacer(
	"ã", "a", "â", "a", "á", "a", "à", "a",
	"ê", "e", "é", "e", "è", "e",
	"í", "i", "ì", "i", "î", "i",
	"õ", "o", "ô", "o", "ó", "o", "ò", "o",
	"ú", "u", "ù", "u", "ü", "u",
	"ç", "c",
)

// NormalizeAnswer folds the handful of Portuguese accents that show up in
// "Sim"/"Não" answers. It is intentionally narrower than NormalizeQuestion.
func NormalizeAnswer(answer string) string {
	return answerReplacer.Replace(strings.ToLower(strings.TrimSpace(answer)))
}
