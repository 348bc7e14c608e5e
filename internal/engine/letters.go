package engine

// Gujarati script tables used by word validation and by clients offering a
// letter picker. The matra set covers the vowel signs that can trail a
// consonant in the first grapheme of a word.

var GujaratiMatras = []rune{
	'ા', 'િ', 'ી', 'ુ', 'ૂ', 'ે', 'ૈ', 'ો', 'ૌ', 'ં', 'ઃ', 'ઁ',
}

var GujaratiVowels = []string{
	"અ", "આ", "ઇ", "ઈ", "ઉ", "ઊ", "એ", "ઐ", "ઓ", "ઔ",
}

var GujaratiConsonants = []string{
	"ક", "ખ", "ગ", "ઘ", "ઙ",
	"ચ", "છ", "જ", "ઝ", "ઞ",
	"ટ", "ઠ", "ડ", "ઢ", "ણ",
	"ત", "થ", "દ", "ધ", "ન",
	"પ", "ફ", "બ", "ભ", "મ",
	"ય", "ર", "લ", "ળ", "વ",
	"શ", "ષ", "સ", "હ",
}

// equivalents collapses consonant pairs that are historically interchangeable
// in Gujarati, so ણ compares equal to ન and ળ to લ.
var equivalents = map[string]string{
	"ણ": "ન",
	"ળ": "લ",
}

// GameLetters returns the letters a team may be assigned.
func GameLetters() []string {
	letters := make([]string, 0, len(GujaratiConsonants)+len(GujaratiVowels))
	letters = append(letters, GujaratiConsonants...)
	letters = append(letters, GujaratiVowels...)
	return letters
}
