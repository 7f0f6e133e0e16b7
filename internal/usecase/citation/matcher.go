package citation

import (
	"strings"
	"unicode"
)

// Matcher decides whether an answer sentence reproduces a chunk sentence.
type Matcher interface {
	Match(chunkSentence, answerSentence string) bool
}

// SubstringMatcher matches when the chunk sentence appears verbatim inside the answer sentence.
type SubstringMatcher struct{}

// Match implements Matcher.
func (SubstringMatcher) Match(chunkSentence, answerSentence string) bool {
	return strings.Contains(answerSentence, chunkSentence)
}

// TokenOverlapMatcher matches when at least Threshold of the chunk sentence's
// distinct lowercase words also occur in the answer sentence.
type TokenOverlapMatcher struct {
	Threshold float64
}

// Match implements Matcher.
func (m TokenOverlapMatcher) Match(chunkSentence, answerSentence string) bool {
	chunkTokens := tokenSet(chunkSentence)
	if len(chunkTokens) == 0 {
		return false
	}
	answerTokens := tokenSet(answerSentence)

	shared := 0
	for tok := range chunkTokens {
		if _, ok := answerTokens[tok]; ok {
			shared++
		}
	}
	return float64(shared)/float64(len(chunkTokens)) >= m.Threshold
}

func tokenSet(s string) map[string]struct{} {
	words := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}
