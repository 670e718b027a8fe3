package search

import (
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/Aman-CERP/lexrag/internal/index"
)

// DefaultUnseenTermWeight is the IDF given to query terms missing from the
// vocabulary. They are real words, just absent from the corpus.
const DefaultUnseenTermWeight = 0.5

// Weights blends the three relevance signals:
//
//	score = Lexical*(Cosine*cos + Jaccard*jac) + BM25*bm25norm
//
// Each pair is normalized to sum to 1, so scores stay within [0, 1].
type Weights struct {
	Cosine  float64 `yaml:"cosine" json:"cosine"`
	Jaccard float64 `yaml:"jaccard" json:"jaccard"`
	Lexical float64 `yaml:"lexical" json:"lexical"`
	BM25    float64 `yaml:"bm25" json:"bm25"`
}

// DefaultWeights returns the default blend.
func DefaultWeights() Weights {
	return Weights{
		Cosine:  0.7,
		Jaccard: 0.3,
		Lexical: 0.55,
		BM25:    0.45,
	}
}

func (w Weights) normalized() Weights {
	if sum := w.Cosine + w.Jaccard; sum > 0 {
		w.Cosine, w.Jaccard = w.Cosine/sum, w.Jaccard/sum
	}
	if sum := w.Lexical + w.BM25; sum > 0 {
		w.Lexical, w.BM25 = w.Lexical/sum, w.BM25/sum
	}
	return w
}

// Candidate is one scored chunk. Position is the entry's index in the
// snapshot and serves as the stable tie-breaker.
type Candidate struct {
	Entry    *index.Entry
	Position int
	Cosine   float64
	Jaccard  float64
	BM25     float64
	BM25Norm float64
	Score    float64
}

// HybridScorer scores every chunk of a snapshot against an expanded query.
type HybridScorer struct {
	weights      Weights
	unseenWeight float64
	workers      int
}

// ScorerOption configures a HybridScorer.
type ScorerOption func(*HybridScorer)

// WithWeights sets the blend weights.
func WithWeights(w Weights) ScorerOption {
	return func(s *HybridScorer) {
		s.weights = w
	}
}

// WithUnseenTermWeight sets the IDF used for terms outside the vocabulary.
func WithUnseenTermWeight(w float64) ScorerOption {
	return func(s *HybridScorer) {
		if w >= 0 {
			s.unseenWeight = w
		}
	}
}

// WithScoringWorkers bounds scoring parallelism.
func WithScoringWorkers(n int) ScorerOption {
	return func(s *HybridScorer) {
		if n > 0 {
			s.workers = n
		}
	}
}

// NewHybridScorer creates a scorer.
func NewHybridScorer(opts ...ScorerOption) *HybridScorer {
	s := &HybridScorer{
		weights:      DefaultWeights(),
		unseenWeight: DefaultUnseenTermWeight,
		workers:      runtime.NumCPU(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.weights = s.weights.normalized()
	return s
}

// queryVector holds the weighted expanded query.
type queryVector struct {
	terms   []string
	weights map[string]float64
	norm    float64
}

// vectorize weights each distinct term by (count/len(terms)) * idf, with
// the unseen weight standing in for terms missing from the vocabulary.
func (s *HybridScorer) vectorize(terms []string, snap *index.Snapshot) queryVector {
	counts := make(map[string]int, len(terms))
	var distinct []string
	for _, t := range terms {
		if counts[t] == 0 {
			distinct = append(distinct, t)
		}
		counts[t]++
	}

	n := max(1, len(terms))
	weights := make(map[string]float64, len(distinct))
	for _, t := range distinct {
		idf, ok := snap.IDF(t)
		if !ok {
			idf = s.unseenWeight
		}
		weights[t] = float64(counts[t]) / float64(n) * idf
	}
	return queryVector{
		terms:   distinct,
		weights: weights,
		norm:    index.Norm(distinct, weights),
	}
}

// Score returns one candidate per snapshot entry, in snapshot order.
// Raw signals are computed in parallel; BM25 min-max normalization runs
// once all of them are known.
func (s *HybridScorer) Score(terms []string, snap *index.Snapshot) []Candidate {
	entries := snap.Entries()
	if len(entries) == 0 {
		return nil
	}

	q := s.vectorize(terms, snap)
	bm := snap.BM25()
	candidates := make([]Candidate, len(entries))

	var g errgroup.Group
	workers := min(s.workers, len(entries))
	per := (len(entries) + workers - 1) / workers
	for lo := 0; lo < len(entries); lo += per {
		hi := min(lo+per, len(entries))
		g.Go(func() error {
			for i := lo; i < hi; i++ {
				e := &entries[i]
				candidates[i] = Candidate{
					Entry:    e,
					Position: i,
					Cosine:   cosine(q, e),
					Jaccard:  jaccard(q.terms, e),
					BM25:     bm25(q.terms, e, snap, &bm),
				}
			}
			return nil
		})
	}
	_ = g.Wait()

	lo, hi := candidates[0].BM25, candidates[0].BM25
	for _, c := range candidates[1:] {
		lo = min(lo, c.BM25)
		hi = max(hi, c.BM25)
	}

	w := s.weights
	for i := range candidates {
		c := &candidates[i]
		c.BM25Norm = minMax(c.BM25, lo, hi)
		c.Score = w.Lexical*(w.Cosine*c.Cosine+w.Jaccard*c.Jaccard) + w.BM25*c.BM25Norm
	}
	return candidates
}

func cosine(q queryVector, e *index.Entry) float64 {
	if q.norm == 0 || e.Norm == 0 {
		return 0
	}
	var dot float64
	for _, t := range q.terms {
		dot += q.weights[t] * e.Vector[t]
	}
	return dot / (q.norm * e.Norm)
}

// jaccard compares the distinct query terms with the chunk's stem set.
func jaccard(terms []string, e *index.Entry) float64 {
	inter := 0
	for _, t := range terms {
		if e.Chunk.Has(t) {
			inter++
		}
	}
	union := len(terms) + len(e.Chunk.Terms) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

func bm25(terms []string, e *index.Entry, snap *index.Snapshot, bm *index.BM25) float64 {
	var score float64
	for _, t := range terms {
		tf := e.Chunk.TermFreqs[t]
		if tf == 0 {
			continue
		}
		score += bm.Score(tf, snap.BM25IDF(t), e.Chunk.Length)
	}
	return score
}

// minMax rescales x into [0, 1]. A flat range maps to 1 when every chunk
// scored, and to 0 when none did.
func minMax(x, lo, hi float64) float64 {
	switch {
	case hi > lo:
		return (x - lo) / (hi - lo)
	case hi > 0:
		return 1
	default:
		return 0
	}
}
