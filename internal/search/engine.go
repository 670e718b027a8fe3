package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Aman-CERP/lexrag/internal/corpus"
	lexerrors "github.com/Aman-CERP/lexrag/internal/errors"
	"github.com/Aman-CERP/lexrag/internal/index"
)

// ErrNilDependency is returned when a required dependency is nil.
var ErrNilDependency = errors.New("nil dependency")

// phase names the controller states, for logging.
type phase string

const (
	phaseExpanding phase = "expanding"
	phaseScoring   phase = "scoring"
	phaseFiltering phase = "filtering"
	phaseDone      phase = "done"
)

// Engine owns a corpus and its current index snapshot and answers searches.
//
// Snapshots are swapped atomically, so searches never see a partial build.
// Builds are serialized by a single-writer lock. Any corpus mutation makes
// the snapshot stale and the next search rebuilds it.
type Engine struct {
	corpus   *corpus.Corpus
	builder  *index.Builder
	expander *QueryExpander
	scorer   *HybridScorer
	config   Config
	logger   *slog.Logger

	snapshot atomic.Pointer[index.Snapshot]
	buildMu  sync.Mutex
}

// EngineOption configures the engine.
type EngineOption func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewEngine creates an engine over c. The index is built lazily on the
// first search.
func NewEngine(
	c *corpus.Corpus,
	builder *index.Builder,
	expander *QueryExpander,
	scorer *HybridScorer,
	config Config,
	opts ...EngineOption,
) (*Engine, error) {
	if c == nil {
		return nil, fmt.Errorf("%w: corpus is required", ErrNilDependency)
	}
	if builder == nil {
		return nil, fmt.Errorf("%w: index builder is required", ErrNilDependency)
	}
	if expander == nil {
		return nil, fmt.Errorf("%w: query expander is required", ErrNilDependency)
	}
	if scorer == nil {
		return nil, fmt.Errorf("%w: scorer is required", ErrNilDependency)
	}

	e := &Engine{
		corpus:   c,
		builder:  builder,
		expander: expander,
		scorer:   scorer,
		config:   config,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Config returns the controller configuration.
func (e *Engine) Config() Config {
	return e.config
}

// Corpus returns the engine's document set.
func (e *Engine) Corpus() *corpus.Corpus {
	return e.corpus
}

// BuildIndex replaces the document set with docs and rebuilds the index.
// Chunks of documents whose text is unchanged are reused.
func (e *Engine) BuildIndex(ctx context.Context, docs []corpus.Document) (*index.Snapshot, error) {
	if err := e.corpus.Replace(docs); err != nil {
		return nil, err
	}
	return e.Rebuild(ctx)
}

// Rebuild builds a fresh snapshot of the current corpus and swaps it in.
func (e *Engine) Rebuild(ctx context.Context) (*index.Snapshot, error) {
	e.buildMu.Lock()
	defer e.buildMu.Unlock()
	return e.rebuildLocked(ctx)
}

func (e *Engine) rebuildLocked(ctx context.Context) (*index.Snapshot, error) {
	snap, err := e.builder.Build(ctx, e.corpus)
	if err != nil {
		return nil, err
	}
	e.snapshot.Store(snap)
	return snap, nil
}

// current returns an up-to-date snapshot, building one if there is none or
// the corpus changed since the last build.
func (e *Engine) current(ctx context.Context) (*index.Snapshot, error) {
	if snap := e.snapshot.Load(); snap != nil && snap.SourceVersion() == e.corpus.Version() {
		return snap, nil
	}

	e.buildMu.Lock()
	defer e.buildMu.Unlock()
	if snap := e.snapshot.Load(); snap != nil && snap.SourceVersion() == e.corpus.Version() {
		return snap, nil
	}
	return e.rebuildLocked(ctx)
}

// Snapshot returns the current snapshot, or nil before the first build.
// It may be stale.
func (e *Engine) Snapshot() *index.Snapshot {
	return e.snapshot.Load()
}

// Stats returns statistics for an up-to-date index, building it if needed.
func (e *Engine) Stats(ctx context.Context) (index.Stats, error) {
	snap, err := e.current(ctx)
	if err != nil {
		return index.Stats{}, err
	}
	return snap.Stats(), nil
}

// Expand returns the expanded term set of query against the current index.
func (e *Engine) Expand(ctx context.Context, query string) ([]string, error) {
	snap, err := e.current(ctx)
	if err != nil {
		return nil, err
	}
	return slices.Clone(e.expander.Expand(ctx, query, snap)), nil
}

// Search returns up to k hits scoring at least threshold, best first. Ties
// keep document and chunk order.
//
// Chunks sharing no term with the expanded query score 0 and are never
// returned, even at threshold 0.
//
// When the first pass finds nothing, one degraded pass runs with a lower
// threshold and k raised to at least DegradeMinK. A stricter threshold can
// therefore return more hits than a looser one when k < DegradeMinK, so
// raising the threshold only narrows first-pass results. An empty result
// is returned only when the degraded pass finds nothing too; it is not an
// error. Only k < 1 and a threshold outside [0, 1] are rejected.
func (e *Engine) Search(ctx context.Context, query string, k int, threshold float64) ([]Hit, error) {
	if err := validateSearch(k, threshold); err != nil {
		return nil, err
	}

	snap, err := e.current(ctx)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	hits := []Hit{}
	var candidates []Candidate

	limit, thr := k, threshold
	for attempt := 0; attempt < 2; attempt++ {
		degraded := attempt > 0
		if degraded {
			thr = max(e.config.DegradeFloor, threshold*e.config.DegradeFactor)
			limit = max(k, e.config.DegradeMinK)
			e.logger.Debug("search_degraded",
				slog.String("query", query),
				slog.Float64("threshold", thr),
				slog.Int("k", limit))
		}

		// Expansion and raw scores do not depend on the threshold, so the
		// degraded pass reuses them.
		if candidates == nil {
			e.logPhase(phaseExpanding, query)
			terms := e.expander.Expand(ctx, query, snap)
			e.logger.Debug("query_expanded",
				slog.String("query", query),
				slog.Int("terms", len(terms)))

			// A query of only stop words or short tokens has nothing to
			// score.
			candidates = []Candidate{}
			if len(terms) > 0 {
				e.logPhase(phaseScoring, query)
				candidates = e.scorer.Score(terms, snap)
			}
		}

		e.logPhase(phaseFiltering, query)
		hits = filterAndRank(candidates, thr, limit, degraded)
		if len(hits) > 0 || len(candidates) == 0 {
			break
		}
	}

	e.logPhase(phaseDone, query)
	e.logger.Debug("search_completed",
		slog.String("query", query),
		slog.Int("hits", len(hits)),
		slog.Uint64("generation", snap.Generation()),
		slog.Duration("duration", time.Since(start)))
	return hits, nil
}

func (e *Engine) logPhase(p phase, query string) {
	e.logger.Debug("search_phase", slog.String("phase", string(p)), slog.String("query", query))
}

// filterAndRank keeps candidates with a positive score of at least
// threshold and returns the best limit of them. The sort is stable over
// snapshot order.
func filterAndRank(candidates []Candidate, threshold float64, limit int, degraded bool) []Hit {
	kept := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		if c.Score > 0 && c.Score >= threshold {
			kept = append(kept, c)
		}
	}
	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].Score > kept[j].Score
	})
	if len(kept) > limit {
		kept = kept[:limit]
	}

	hits := make([]Hit, len(kept))
	for i, c := range kept {
		hits[i] = Hit{
			Chunk:    c.Entry.Chunk,
			Document: c.Entry.Doc,
			Score:    c.Score,
			Cosine:   c.Cosine,
			Jaccard:  c.Jaccard,
			BM25:     c.BM25,
			BM25Norm: c.BM25Norm,
			Degraded: degraded,
		}
	}
	return hits
}

func validateSearch(k int, threshold float64) error {
	if k < 1 {
		return lexerrors.New(lexerrors.ErrCodeInvalidLimit, fmt.Sprintf("k must be at least 1, got %d", k), nil).
			WithSuggestion("Request one or more results")
	}
	if math.IsNaN(threshold) || threshold < 0 || threshold > 1 {
		return lexerrors.New(lexerrors.ErrCodeInvalidThreshold, fmt.Sprintf("threshold must be within [0, 1], got %v", threshold), nil).
			WithSuggestion("Use a relevance threshold between 0 and 1, such as 0.15")
	}
	return nil
}

// Add inserts a document. The index is rebuilt on the next search.
func (e *Engine) Add(doc corpus.Document) error {
	return e.corpus.Add(doc)
}

// Upsert inserts or replaces a document.
func (e *Engine) Upsert(doc corpus.Document) (bool, error) {
	return e.corpus.Upsert(doc)
}

// Remove deletes a document.
func (e *Engine) Remove(id string) bool {
	return e.corpus.Remove(id)
}

// RemoveSource deletes every document from a source.
func (e *Engine) RemoveSource(sourceID string) int {
	return e.corpus.RemoveSource(sourceID)
}

// Reset removes every document.
func (e *Engine) Reset() {
	e.corpus.Reset()
}

// SetProfile replaces the profile meta-document.
func (e *Engine) SetProfile(p corpus.Profile) {
	e.corpus.SetProfile(p)
}
