package analysis

// Analyzer chains tokenization and stemming. Index and query sides must use
// the same Analyzer so their stems line up.
type Analyzer struct {
	tokenizer *Tokenizer
	stemmer   Stemmer
}

// NewAnalyzer creates an analyzer. A nil stemmer leaves tokens unchanged.
func NewAnalyzer(tokenizer *Tokenizer, stemmer Stemmer) *Analyzer {
	if stemmer == nil {
		stemmer = IdentityStemmer{}
	}
	return &Analyzer{tokenizer: tokenizer, stemmer: stemmer}
}

// NewDefaultAnalyzer returns the Spanish analyzer: Spanish stop words and
// the light stemmer.
func NewDefaultAnalyzer() *Analyzer {
	return NewAnalyzer(
		NewTokenizer(BuildStopWordMap(SpanishStopWords)),
		NewLightStemmer(),
	)
}

// Terms tokenizes text and stems every token, preserving order and duplicates.
func (a *Analyzer) Terms(text string) []string {
	tokens := a.tokenizer.Tokenize(text)
	for i, tok := range tokens {
		tokens[i] = a.stemmer.Stem(tok)
	}
	return tokens
}

// Stem folds and stems a single term.
func (a *Analyzer) Stem(term string) string {
	folded := Fold(term)
	if folded == "" {
		return ""
	}
	return a.stemmer.Stem(folded)
}

// Stemmer returns the configured stemmer.
func (a *Analyzer) Stemmer() Stemmer {
	return a.stemmer
}

// Tokenizer returns the configured tokenizer.
func (a *Analyzer) Tokenizer() *Tokenizer {
	return a.tokenizer
}
