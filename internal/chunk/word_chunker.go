package chunk

import (
	"strings"
	"unicode/utf8"
)

// WordChunker splits text into overlapping fixed-size word windows.
type WordChunker struct {
	size     int
	overlap  int
	minChars int
}

// Option configures a WordChunker.
type Option func(*WordChunker)

// WithChunkSize sets the window size in words.
func WithChunkSize(size int) Option {
	return func(c *WordChunker) {
		if size > 0 {
			c.size = size
		}
	}
}

// WithOverlap sets how many words consecutive windows share.
func WithOverlap(overlap int) Option {
	return func(c *WordChunker) {
		if overlap >= 0 {
			c.overlap = overlap
		}
	}
}

// WithMinChars sets the minimum window length in characters. Shorter
// windows are discarded.
func WithMinChars(n int) Option {
	return func(c *WordChunker) {
		if n >= 0 {
			c.minChars = n
		}
	}
}

// NewWordChunker creates a chunker with the given options.
func NewWordChunker(opts ...Option) *WordChunker {
	c := &WordChunker{
		size:     DefaultChunkSize,
		overlap:  DefaultOverlap,
		minChars: DefaultMinChars,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Step returns how far each window advances. It is never below 1, so an
// overlap as large as the window still makes progress.
func (c *WordChunker) Step() int {
	return max(1, c.size-c.overlap)
}

// Split returns the kept windows of text, in order. Empty text yields no spans.
func (c *WordChunker) Split(text string) []Span {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	step := c.Step()
	spans := make([]Span, 0, len(words)/step+1)
	for start := 0; start < len(words); start += step {
		end := min(start+c.size, len(words))
		part := strings.Join(words[start:end], " ")
		if utf8.RuneCountInString(part) < c.minChars {
			continue
		}
		spans = append(spans, Span{
			Index:     len(spans),
			Text:      part,
			StartWord: start,
			EndWord:   end,
		})
	}
	return spans
}
