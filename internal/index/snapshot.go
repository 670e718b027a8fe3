package index

import (
	"time"

	"github.com/Aman-CERP/lexrag/internal/chunk"
	"github.com/Aman-CERP/lexrag/internal/corpus"
)

// Entry is a chunk together with its owning document and its TF-IDF vector
// for one index generation.
type Entry struct {
	Chunk  *chunk.Chunk
	Doc    *corpus.Document
	Vector map[string]float64
	Norm   float64
}

// Stats summarizes a snapshot.
type Stats struct {
	Generation     uint64        `json:"generation"`
	Documents      int           `json:"documents"`
	Chunks         int           `json:"chunks"`
	Terms          int           `json:"terms"`
	AvgChunkLength float64       `json:"avg_chunk_length"`
	BuiltAt        time.Time     `json:"built_at"`
	Duration       time.Duration `json:"duration"`
}

// Snapshot is one immutable generation of the index. Vocabulary, both IDF
// tables, corpus statistics and chunk vectors are built together and never
// change afterwards, so readers need no locking.
type Snapshot struct {
	generation    uint64
	sourceVersion uint64
	documents     int

	entries []Entry
	terms   []string // vocabulary in first-seen order
	df      map[string]int
	idf     map[string]float64
	bm25IDF map[string]float64
	bm25    BM25

	builtAt  time.Time
	duration time.Duration
}

// Generation identifies the build that produced the snapshot.
func (s *Snapshot) Generation() uint64 { return s.generation }

// SourceVersion is the corpus version the snapshot was built from.
func (s *Snapshot) SourceVersion() uint64 { return s.sourceVersion }

// Entries returns the chunks in document order, then chunk order.
// Callers must not modify the returned slice.
func (s *Snapshot) Entries() []Entry { return s.entries }

// Len returns the number of chunks.
func (s *Snapshot) Len() int { return len(s.entries) }

// Terms returns the vocabulary in first-seen order. Callers must not modify it.
func (s *Snapshot) Terms() []string { return s.terms }

// DocFreq returns how many chunks contain term.
func (s *Snapshot) DocFreq(term string) int { return s.df[term] }

// IDF returns the smoothed TF-IDF weight of a known term.
func (s *Snapshot) IDF(term string) (float64, bool) {
	w, ok := s.idf[term]
	return w, ok
}

// BM25IDF returns the BM25 weight of term, 0 for unknown terms.
func (s *Snapshot) BM25IDF(term string) float64 { return s.bm25IDF[term] }

// BM25 returns the scorer parameterized with this snapshot's statistics.
func (s *Snapshot) BM25() BM25 { return s.bm25 }

// AvgChunkLength returns the mean chunk length, 0 when there are no chunks.
func (s *Snapshot) AvgChunkLength() float64 { return s.bm25.AvgDL }

// Stats summarizes the snapshot.
func (s *Snapshot) Stats() Stats {
	return Stats{
		Generation:     s.generation,
		Documents:      s.documents,
		Chunks:         len(s.entries),
		Terms:          len(s.terms),
		AvgChunkLength: s.bm25.AvgDL,
		BuiltAt:        s.builtAt,
		Duration:       s.duration,
	}
}
