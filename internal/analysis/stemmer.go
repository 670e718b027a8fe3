package analysis

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/kljensen/snowball"
)

// Stemmer kinds accepted by NewStemmer.
const (
	StemmerLight    = "light"
	StemmerSnowball = "snowball"
	StemmerNone     = "none"
)

// MinStemRunes is the shortest stem a suffix rule may leave behind.
const MinStemRunes = 2

// Stemmer maps a token to its stem. Implementations must be deterministic
// and total: every token maps to exactly one non-empty stem.
type Stemmer interface {
	Stem(token string) string
}

// suffixRule strips Suffix and appends Replacement.
type suffixRule struct {
	Suffix      string
	Replacement string
}

// spanishLightRules are applied group by group. Inside a group the first
// matching suffix wins, so longer endings are listed first.
var spanishLightRules = [][]suffixRule{
	// derivational
	{{"ciones", ""}, {"mente", ""}, {"cion", ""}},
	// nominal / adjectival
	{{"idades", ""}, {"idad", ""}, {"osos", ""}, {"osas", ""}, {"oso", ""}, {"osa", ""}},
	// verbal
	{{"iendo", ""}, {"ando", ""}, {"ados", ""}, {"idas", ""}, {"ado", ""}, {"ida", ""}},
	// plural
	{{"es", ""}, {"s", ""}},
}

// LightStemmer is a small, lossy suffix stripper for Spanish. Unrelated
// words may collide; recall matters more than precision here.
type LightStemmer struct {
	rules [][]suffixRule
}

// NewLightStemmer creates the Spanish light stemmer.
func NewLightStemmer() *LightStemmer {
	return &LightStemmer{rules: spanishLightRules}
}

// Stem applies each rule group once, in order. A group is skipped when its
// matching suffix would leave fewer than MinStemRunes runes.
func (s *LightStemmer) Stem(token string) string {
	stem := token
	for _, group := range s.rules {
		for _, rule := range group {
			if !strings.HasSuffix(stem, rule.Suffix) {
				continue
			}
			base := stem[:len(stem)-len(rule.Suffix)]
			if utf8.RuneCountInString(base) >= MinStemRunes {
				stem = base + rule.Replacement
			}
			break
		}
	}
	return stem
}

// SnowballStemmer delegates to the Snowball algorithms for a language.
type SnowballStemmer struct {
	language string
}

// NewSnowballStemmer creates a Snowball stemmer and checks the language is supported.
func NewSnowballStemmer(language string) (*SnowballStemmer, error) {
	language = Fold(strings.TrimSpace(language))
	if _, err := snowball.Stem("probando", language, true); err != nil {
		return nil, fmt.Errorf("snowball stemmer: %w", err)
	}
	return &SnowballStemmer{language: language}, nil
}

// Stem returns the Snowball stem, or the token itself if stemming fails.
func (s *SnowballStemmer) Stem(token string) string {
	stemmed, err := snowball.Stem(token, s.language, true)
	if err != nil || stemmed == "" {
		return token
	}
	return stemmed
}

// IdentityStemmer returns tokens unchanged.
type IdentityStemmer struct{}

// Stem returns token.
func (IdentityStemmer) Stem(token string) string { return token }

// NewStemmer builds a stemmer by kind ("light", "snowball" or "none").
// The light rules are Spanish; language only affects Snowball.
func NewStemmer(kind, language string) (Stemmer, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "", StemmerLight:
		return NewLightStemmer(), nil
	case StemmerSnowball:
		return NewSnowballStemmer(language)
	case StemmerNone:
		return IdentityStemmer{}, nil
	default:
		return nil, fmt.Errorf("unknown stemmer %q (supported: light, snowball, none)", kind)
	}
}
