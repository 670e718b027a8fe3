package index

import "math"

// DefaultK1 is the default term frequency saturation parameter.
const DefaultK1 = 1.2

// DefaultB is the default chunk length normalization parameter.
// B=0 disables normalization, B=1 normalizes fully.
const DefaultB = 0.75

// BM25 holds the ranking parameters and the corpus statistics they need.
type BM25 struct {
	K1       float64 // Term frequency saturation
	B        float64 // Length normalization
	AvgDL    float64 // Average chunk length, 0 for an empty corpus
	DocCount int     // Chunk count, floored at 1
}

// NewBM25 creates a scorer with the given parameters and corpus statistics.
func NewBM25(k1, b float64, docCount int, avgDL float64) *BM25 {
	return &BM25{
		K1:       k1,
		B:        b,
		AvgDL:    avgDL,
		DocCount: max(1, docCount),
	}
}

// IDF is the probabilistic inverse document frequency, in the variant that
// never goes negative:
//
//	IDF(t) = ln((N - df + 0.5) / (df + 0.5) + 1)
func (bm *BM25) IDF(docFreq int) float64 {
	n := float64(max(1, bm.DocCount))
	df := float64(docFreq)
	return math.Log((n-df+0.5)/(df+0.5) + 1)
}

// Score is one term's contribution for a chunk of length docLen.
func (bm *BM25) Score(tf int, idf float64, docLen int) float64 {
	if tf <= 0 {
		return 0
	}

	lengthNorm := 1.0
	if bm.AvgDL > 0 {
		lengthNorm = 1 - bm.B + bm.B*(float64(docLen)/bm.AvgDL)
	}

	tfFloat := float64(tf)
	return idf * (tfFloat * (bm.K1 + 1)) / (tfFloat + bm.K1*lengthNorm)
}
