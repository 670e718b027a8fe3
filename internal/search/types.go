// Package search implements query expansion, hybrid scoring and the
// adaptive-threshold search loop over index snapshots.
package search

import (
	"github.com/Aman-CERP/lexrag/internal/chunk"
	"github.com/Aman-CERP/lexrag/internal/corpus"
)

// Hit is one search result with the signals that produced its score.
type Hit struct {
	Chunk    *chunk.Chunk
	Document *corpus.Document
	Score    float64

	Cosine   float64
	Jaccard  float64
	BM25     float64 // raw, before normalization
	BM25Norm float64

	// Degraded is set when the hit came from the relaxed second pass.
	Degraded bool
}

// Config holds the controller's defaults and its degradation policy.
type Config struct {
	// TopK and Threshold are used by callers that have no value of their own.
	TopK      int
	Threshold float64

	// The degraded pass uses max(DegradeFloor, threshold*DegradeFactor)
	// and max(k, DegradeMinK).
	DegradeFactor float64
	DegradeFloor  float64
	DegradeMinK   int
}

// DefaultConfig returns the controller defaults.
func DefaultConfig() Config {
	return Config{
		TopK:          5,
		Threshold:     0.15,
		DegradeFactor: 0.66,
		DegradeFloor:  0.08,
		DegradeMinK:   8,
	}
}
