// Package chunk splits document text into overlapping word windows.
package chunk

import "fmt"

// Chunking defaults, in words.
const (
	DefaultChunkSize = 1200
	DefaultOverlap   = 120
	DefaultMinChars  = 40
)

// Span is a contiguous window of a document's words.
type Span struct {
	Index     int    // Position among the kept spans of the document
	Text      string // Words joined by single spaces
	StartWord int    // Index of the first word, inclusive
	EndWord   int    // Index of the last word, exclusive
}

// Chunk is the unit of retrieval. It is immutable once built; index-wide
// weights live in the index snapshot, not here.
type Chunk struct {
	ID         string         // "{documentID}#{index}"
	DocumentID string
	Index      int
	Text       string
	StartWord  int
	EndWord    int
	Terms      []string       // Distinct stems in order of first occurrence
	TermFreqs  map[string]int // Raw stem frequencies
	Length     int            // Stem count, duplicates included
}

// ID builds a chunk identifier from its document and position.
func ID(documentID string, index int) string {
	return fmt.Sprintf("%s#%d", documentID, index)
}

// New builds a chunk from a span and the analyzed terms of its text.
func New(documentID string, span Span, terms []string) *Chunk {
	tf := make(map[string]int, len(terms))
	var distinct []string
	for _, t := range terms {
		if tf[t] == 0 {
			distinct = append(distinct, t)
		}
		tf[t]++
	}
	return &Chunk{
		ID:         ID(documentID, span.Index),
		DocumentID: documentID,
		Index:      span.Index,
		Text:       span.Text,
		StartWord:  span.StartWord,
		EndWord:    span.EndWord,
		Terms:      distinct,
		TermFreqs:  tf,
		Length:     len(terms),
	}
}

// Has reports whether the chunk contains the stem.
func (c *Chunk) Has(term string) bool {
	_, ok := c.TermFreqs[term]
	return ok
}
