package index

import "math"

// SmoothedIDF is the TF-IDF inverse document frequency:
//
//	IDF(t) = ln((N + 1) / (df + 1)) + 1
//
// n is floored at 1 so an empty corpus stays finite.
func SmoothedIDF(n, df int) float64 {
	n = max(1, n)
	return math.Log(float64(n+1)/float64(df+1)) + 1
}

// Weight is the normalized term frequency scaled by idf. Empty chunks
// weigh nothing.
func Weight(tf, length int, idf float64) float64 {
	if length <= 0 {
		return 0
	}
	return float64(tf) / float64(length) * idf
}

// Norm returns the L2 norm of the sparse vector v, summing in the order
// of terms so repeated calls agree bit for bit.
func Norm(terms []string, v map[string]float64) float64 {
	var sum float64
	for _, t := range terms {
		w := v[t]
		sum += w * w
	}
	return math.Sqrt(sum)
}
