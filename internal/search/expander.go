package search

import (
	"context"
	"log/slog"
	"strings"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/Aman-CERP/lexrag/internal/analysis"
	"github.com/Aman-CERP/lexrag/internal/index"
)

// Expander defaults.
const (
	DefaultMaxEditDistance    = 2
	DefaultExpansionCacheSize = 1024

	// ctxCheckInterval is how many vocabulary terms the fuzzy scan visits
	// between context checks.
	ctxCheckInterval = 256
)

// QueryExpander turns a query into the stems of its lexical neighborhood:
// the query's own stems, synonyms, singular/plural variants, folded forms,
// and the closest vocabulary term within a bounded edit distance.
//
// The fuzzy scan costs O(query stems x vocabulary x edit distance). It is
// fine for small and medium vocabularies; a context deadline bounds it on
// larger ones.
type QueryExpander struct {
	analyzer    *analysis.Analyzer
	synonyms    *SynonymTable
	maxDistance int
	cache       *lru.Cache[expansionKey, []string]
	logger      *slog.Logger

	vocab atomic.Pointer[runeVocabulary]
}

// runeVocabulary is a snapshot's vocabulary decoded to runes once per
// generation.
type runeVocabulary struct {
	generation uint64
	terms      [][]rune
}

type expansionKey struct {
	generation uint64
	query      string
}

// ExpanderOption configures a QueryExpander.
type ExpanderOption func(*QueryExpander)

// WithSynonyms replaces the synonym table.
func WithSynonyms(t *SynonymTable) ExpanderOption {
	return func(e *QueryExpander) {
		if t != nil {
			e.synonyms = t
		}
	}
}

// WithMaxEditDistance sets the largest edit distance fuzzy correction accepts.
// Zero disables fuzzy correction.
func WithMaxEditDistance(d int) ExpanderOption {
	return func(e *QueryExpander) {
		if d >= 0 {
			e.maxDistance = d
		}
	}
}

// WithExpansionCacheSize sets how many expansions are memoized. Zero
// disables the cache.
func WithExpansionCacheSize(n int) ExpanderOption {
	return func(e *QueryExpander) {
		if n <= 0 {
			e.cache = nil
			return
		}
		e.cache, _ = lru.New[expansionKey, []string](n)
	}
}

// WithExpanderLogger sets the logger.
func WithExpanderLogger(logger *slog.Logger) ExpanderOption {
	return func(e *QueryExpander) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewQueryExpander creates an expander using the default synonym table.
func NewQueryExpander(analyzer *analysis.Analyzer, opts ...ExpanderOption) *QueryExpander {
	cache, _ := lru.New[expansionKey, []string](DefaultExpansionCacheSize)
	e := &QueryExpander{
		analyzer:    analyzer,
		maxDistance: DefaultMaxEditDistance,
		cache:       cache,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.synonyms == nil {
		e.synonyms = NewSynonymTable(DefaultSynonyms, analyzer.Stemmer())
	}
	return e
}

// Expand returns the deduplicated expansion of query against snap's
// vocabulary, in a stable order. snap may be nil, which skips fuzzy
// correction. Callers must not modify the returned slice.
//
// If ctx ends during fuzzy correction, the terms gathered so far are
// returned and the result is not cached.
func (e *QueryExpander) Expand(ctx context.Context, query string, snap *index.Snapshot) []string {
	key := expansionKey{query: query}
	if snap != nil {
		key.generation = snap.Generation()
	}
	if e.cache != nil {
		if terms, ok := e.cache.Get(key); ok {
			return terms
		}
	}

	stems := e.analyzer.Terms(query)
	set := newTermSet(len(stems) * 4)
	stemmer := e.analyzer.Stemmer()

	var vocab [][]rune
	if snap != nil && e.maxDistance > 0 {
		vocab = e.vocabulary(snap)
	}

	truncated := false
	for _, stem := range stems {
		set.add(stem)

		for _, syn := range e.synonyms.Lookup(stem) {
			set.add(syn)
		}

		if strings.HasSuffix(stem, "s") {
			set.add(stemmer.Stem(strings.TrimSuffix(stem, "s")))
		} else {
			set.add(stemmer.Stem(stem + "s"))
		}

		set.add(analysis.Fold(stem))

		if truncated || len(vocab) == 0 {
			continue
		}
		best, ok, err := e.nearest(ctx, stem, snap.Terms(), vocab)
		if err != nil {
			truncated = true
			e.logger.Warn("fuzzy_correction_truncated",
				slog.String("query", query),
				slog.Int("terms_so_far", set.size()),
				slog.String("reason", err.Error()))
			continue
		}
		if ok {
			set.add(best)
		}
	}

	terms := set.terms
	if e.cache != nil && !truncated {
		e.cache.Add(key, terms)
	}
	return terms
}

// nearest finds the first vocabulary term with the smallest edit distance
// to stem, if that distance is within maxDistance.
func (e *QueryExpander) nearest(ctx context.Context, stem string, terms []string, vocab [][]rune) (string, bool, error) {
	target := []rune(analysis.Fold(stem))
	best, bestDist := -1, e.maxDistance+1

	for i, v := range vocab {
		if i%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return "", false, err
			}
		}
		d := boundedRunes(target, v, bestDist-1)
		if d < bestDist {
			best, bestDist = i, d
			if d == 0 {
				break
			}
		}
	}
	if best < 0 {
		return "", false, nil
	}
	return terms[best], true, nil
}

func (e *QueryExpander) vocabulary(snap *index.Snapshot) [][]rune {
	if v := e.vocab.Load(); v != nil && v.generation == snap.Generation() {
		return v.terms
	}
	terms := make([][]rune, len(snap.Terms()))
	for i, t := range snap.Terms() {
		terms[i] = []rune(t)
	}
	e.vocab.Store(&runeVocabulary{generation: snap.Generation(), terms: terms})
	return terms
}

// termSet is an insertion-ordered set of non-empty terms.
type termSet struct {
	seen  map[string]struct{}
	terms []string
}

func newTermSet(capacity int) *termSet {
	return &termSet{seen: make(map[string]struct{}, capacity)}
}

func (s *termSet) add(term string) {
	if term == "" {
		return
	}
	if _, ok := s.seen[term]; ok {
		return
	}
	s.seen[term] = struct{}{}
	s.terms = append(s.terms, term)
}

func (s *termSet) size() int {
	return len(s.terms)
}
