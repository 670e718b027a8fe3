// Package index builds immutable, versioned retrieval snapshots from a corpus.
package index

import (
	"context"
	"log/slog"
	"runtime"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Aman-CERP/lexrag/internal/analysis"
	"github.com/Aman-CERP/lexrag/internal/chunk"
	"github.com/Aman-CERP/lexrag/internal/corpus"
	lexerrors "github.com/Aman-CERP/lexrag/internal/errors"
)

// Source is the document set a snapshot is built from. *corpus.Corpus
// implements it.
type Source interface {
	Version() uint64
	Documents() []corpus.Document
	CachedChunks(id string) ([]*chunk.Chunk, bool)
	CacheChunks(id, text string, chunks []*chunk.Chunk)
}

// Builder turns a Source into Snapshots. It is safe for concurrent use,
// though callers normally serialize builds.
type Builder struct {
	chunker  *chunk.WordChunker
	analyzer *analysis.Analyzer
	k1, b    float64
	workers  int
	logger   *slog.Logger

	generation atomic.Uint64
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// WithWorkers bounds build parallelism.
func WithWorkers(n int) BuilderOption {
	return func(b *Builder) {
		if n > 0 {
			b.workers = n
		}
	}
}

// WithBM25Params sets the BM25 k1 and b parameters.
func WithBM25Params(k1, b float64) BuilderOption {
	return func(bl *Builder) {
		bl.k1 = k1
		bl.b = b
	}
}

// WithLogger sets the logger for build events.
func WithLogger(logger *slog.Logger) BuilderOption {
	return func(b *Builder) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// NewBuilder creates a Builder.
func NewBuilder(chunker *chunk.WordChunker, analyzer *analysis.Analyzer, opts ...BuilderOption) *Builder {
	b := &Builder{
		chunker:  chunker,
		analyzer: analyzer,
		k1:       DefaultK1,
		b:        DefaultB,
		workers:  runtime.NumCPU(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build produces a new snapshot from every document in src. Documents
// without cached chunks are chunked and analyzed, and the result is cached
// back into src. An empty source yields an empty, valid snapshot.
func (b *Builder) Build(ctx context.Context, src Source) (*Snapshot, error) {
	start := time.Now()
	version := src.Version()
	docs := src.Documents()

	perDoc, fresh, err := b.chunkAll(ctx, src, docs)
	if err != nil {
		return nil, lexerrors.New(lexerrors.ErrCodeIndexFailed, "chunking failed", err)
	}
	for i, d := range docs {
		if fresh[i] {
			src.CacheChunks(d.ID, d.Text, perDoc[i])
		}
	}

	snap := &Snapshot{
		sourceVersion: version,
		documents:     len(docs),
		df:            make(map[string]int),
	}

	// Document frequency counts a stem once per chunk. The loop is
	// sequential so vocabulary order depends only on document order.
	totalLen := 0
	for i := range docs {
		doc := &docs[i]
		for _, c := range perDoc[i] {
			snap.entries = append(snap.entries, Entry{Chunk: c, Doc: doc})
			totalLen += c.Length
			for _, term := range c.Terms {
				if snap.df[term] == 0 {
					snap.terms = append(snap.terms, term)
				}
				snap.df[term]++
			}
		}
	}

	var avgdl float64
	if len(snap.entries) > 0 {
		avgdl = float64(totalLen) / float64(len(snap.entries))
	}
	snap.bm25 = *NewBM25(b.k1, b.b, len(snap.entries), avgdl)

	n := max(1, len(snap.entries))
	snap.idf = make(map[string]float64, len(snap.df))
	snap.bm25IDF = make(map[string]float64, len(snap.df))
	for term, df := range snap.df {
		snap.idf[term] = SmoothedIDF(n, df)
		snap.bm25IDF[term] = snap.bm25.IDF(df)
	}

	if err := b.vectorize(ctx, snap); err != nil {
		return nil, lexerrors.New(lexerrors.ErrCodeIndexFailed, "vectorizing failed", err)
	}

	snap.generation = b.generation.Add(1)
	snap.builtAt = time.Now()
	snap.duration = time.Since(start)

	b.logger.Info("index_built",
		slog.Uint64("generation", snap.generation),
		slog.Int("documents", snap.documents),
		slog.Int("chunks", len(snap.entries)),
		slog.Int("terms", len(snap.terms)),
		slog.Float64("avg_chunk_length", avgdl),
		slog.Duration("duration", snap.duration))

	return snap, nil
}

// chunkAll returns each document's chunks and whether they were newly built.
func (b *Builder) chunkAll(ctx context.Context, src Source, docs []corpus.Document) ([][]*chunk.Chunk, []bool, error) {
	perDoc := make([][]*chunk.Chunk, len(docs))
	fresh := make([]bool, len(docs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.workers)
	for i := range docs {
		if cached, ok := src.CachedChunks(docs[i].ID); ok {
			perDoc[i] = cached
			continue
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			perDoc[i] = b.chunkDocument(docs[i])
			fresh[i] = true
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return perDoc, fresh, nil
}

func (b *Builder) chunkDocument(doc corpus.Document) []*chunk.Chunk {
	spans := b.chunker.Split(doc.Text)
	chunks := make([]*chunk.Chunk, 0, len(spans))
	for _, span := range spans {
		chunks = append(chunks, chunk.New(doc.ID, span, b.analyzer.Terms(span.Text)))
	}
	return chunks
}

// vectorize fills each entry's TF-IDF vector and norm. Entries are written
// by index, so workers never share a slot.
func (b *Builder) vectorize(ctx context.Context, snap *Snapshot) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.workers)
	for i := range snap.entries {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			e := &snap.entries[i]
			vec := make(map[string]float64, len(e.Chunk.Terms))
			for _, term := range e.Chunk.Terms {
				vec[term] = Weight(e.Chunk.TermFreqs[term], e.Chunk.Length, snap.idf[term])
			}
			e.Vector = vec
			e.Norm = Norm(e.Chunk.Terms, vec)
			return nil
		})
	}
	return g.Wait()
}
