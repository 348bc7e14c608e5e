package engine

import (
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// User-facing rejection messages, kept in Gujarati.
const (
	msgSayWord     = "કૃપા કરીને શબ્દ બોલો"
	msgWrongLetter = "શબ્દ \"%s\" થી શરૂ થવો જોઈએ (તમે \"%s\" થી શરૂ થતો શબ્દ બોલ્યા)"
	msgDuplicate   = "આ શબ્દ પહેલેથી વપરાયેલ છે"
)

// Validation is the frozen outcome of checking one submission. A rejection is
// normal game data, not an error: the word is still recorded, just unscored.
type Validation struct {
	IsValid     bool
	IsDuplicate bool
	Message     string
}

// baseCharacter reduces the leading grapheme of s to its bare consonant. In
// NFC a vowel sign is its own combining rune after the consonant it marks
// (કે is ક + ે), so the first rune alone is already the matra-stripped base.
func baseCharacter(s string) string {
	runes := []rune(norm.NFC.String(s))
	if len(runes) == 0 {
		return ""
	}
	return string(runes[0])
}

func canonicalLetter(s string) string {
	base := baseCharacter(s)
	if eq, ok := equivalents[base]; ok {
		return eq
	}
	return base
}

// Validate decides whether word is acceptable for a team whose assigned
// letter is required, given every word already played by either team. Pure:
// the caller supplies the history snapshot and owns recording the outcome.
func Validate(word, required string, existing []string) Validation {
	trimmed := strings.TrimSpace(word)
	if trimmed == "" {
		return Validation{Message: msgSayWord}
	}

	if canonicalLetter(trimmed) != canonicalLetter(required) {
		first := string([]rune(trimmed)[0])
		return Validation{Message: fmt.Sprintf(msgWrongLetter, required, first)}
	}

	lowered := strings.ToLower(trimmed)
	for _, w := range existing {
		if strings.ToLower(strings.TrimSpace(w)) == lowered {
			return Validation{IsDuplicate: true, Message: msgDuplicate}
		}
	}

	return Validation{IsValid: true}
}
