package citation

import (
	"strings"
	"unicode"
)

// SplitSentences splits text after '.' or '?' followed by whitespace. A split is
// suppressed after dotted abbreviations ("e.g. ", "i.e. "), after capitalised
// two-letter titles ("Mr. ", "Dr. ") and after a single-capital initial that
// starts a name ("K. Sharma"). An initial labelling a reference ("Section A. ")
// still ends the sentence. Pieces are trimmed and empty pieces dropped. The heuristic is approximate.
func SplitSentences(text string) []string {
	runes := []rune(text)
	var out []string
	start := 0

	for i, r := range runes {
		if !unicode.IsSpace(r) || !isBoundary(runes, i) {
			continue
		}
		if s := strings.TrimSpace(string(runes[start:i])); s != "" {
			out = append(out, s)
		}
		start = i + 1
	}
	if s := strings.TrimSpace(string(runes[start:])); s != "" {
		out = append(out, s)
	}
	return out
}

// isBoundary reports whether the whitespace at i ends a sentence.
func isBoundary(runes []rune, i int) bool {
	if i == 0 {
		return false
	}
	prev := runes[i-1]
	if prev != '.' && prev != '?' {
		return false
	}

	// "e.g." style: word char, dot, word char, any char.
	if i >= 4 && isWord(runes[i-4]) && runes[i-3] == '.' && isWord(runes[i-2]) {
		return false
	}

	if prev != '.' {
		return true
	}

	// "Mr." style title.
	if i >= 3 && isUpperASCII(runes[i-3]) && isLowerASCII(runes[i-2]) {
		return false
	}

	// Single capital initial: "J." at the start of text or after a non-letter,
	// followed by a capitalised word and not naming a section or form.
	if i >= 2 && unicode.IsUpper(runes[i-2]) && (i == 2 || !unicode.IsLetter(runes[i-3])) &&
		nextIsUpper(runes, i) && !referenceNouns[strings.ToLower(wordBefore(runes, i-2))] {
		return false
	}

	return true
}

// referenceNouns label lettered parts of a circular ("Section A", "Form B").
var referenceNouns = map[string]bool{
	"annexure": true, "appendix": true, "chapter": true, "clause": true,
	"exhibit": true, "form": true, "para": true, "part": true, "schedule": true,
	"section": true, "table": true, "category": true, "plan": true, "option": true,
}

// wordBefore returns the letters of the word ending before the whitespace that
// precedes runes[end].
func wordBefore(runes []rune, end int) string {
	j := end - 1
	for j >= 0 && unicode.IsSpace(runes[j]) {
		j--
	}
	k := j
	for k >= 0 && unicode.IsLetter(runes[k]) {
		k--
	}
	return string(runes[k+1 : j+1])
}

func nextIsUpper(runes []rune, i int) bool {
	for _, r := range runes[i:] {
		if !unicode.IsSpace(r) {
			return unicode.IsUpper(r)
		}
	}
	return false
}

func isWord(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func isUpperASCII(r rune) bool { return r >= 'A' && r <= 'Z' }

func isLowerASCII(r rune) bool { return r >= 'a' && r <= 'z' }
