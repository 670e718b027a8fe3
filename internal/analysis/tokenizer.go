package analysis

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// MinTokenRunes is the shortest token kept by the tokenizer.
const MinTokenRunes = 2

// Tokenizer splits folded text into word tokens.
type Tokenizer struct {
	stopWords map[string]struct{}
}

// NewTokenizer creates a tokenizer that drops the given stop words.
// A nil map disables stop-word filtering.
func NewTokenizer(stopWords map[string]struct{}) *Tokenizer {
	return &Tokenizer{stopWords: stopWords}
}

// Tokenize folds text and splits it on every rune that is neither a letter
// nor a digit. Stop words and tokens shorter than MinTokenRunes are dropped.
//
// Tokenize is idempotent: tokenizing the space-joined output again returns
// the same tokens.
func (t *Tokenizer) Tokenize(text string) []string {
	folded := Fold(text)

	var tokens []string
	var current strings.Builder

	flush := func() {
		if current.Len() == 0 {
			return
		}
		token := current.String()
		current.Reset()
		if t.isValidToken(token) {
			tokens = append(tokens, token)
		}
	}

	for _, r := range folded {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			current.WriteRune(r)
			continue
		}
		flush()
	}
	flush()

	return tokens
}

// isValidToken checks if a token should be kept.
func (t *Tokenizer) isValidToken(token string) bool {
	if utf8.RuneCountInString(token) < MinTokenRunes {
		return false
	}
	if _, isStop := t.stopWords[token]; isStop {
		return false
	}
	return true
}

// IsStopWord reports whether the folded token is a stop word.
func (t *Tokenizer) IsStopWord(token string) bool {
	_, ok := t.stopWords[Fold(token)]
	return ok
}
