package chunk

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func words(n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = fmt.Sprintf("palabra%03d", i)
	}
	return strings.Join(parts, " ")
}

func TestWordChunker_Defaults(t *testing.T) {
	c := NewWordChunker()
	assert.Equal(t, DefaultChunkSize-DefaultOverlap, c.Step())
}

func TestWordChunker_Split_Empty(t *testing.T) {
	c := NewWordChunker()

	assert.Empty(t, c.Split(""))
	assert.Empty(t, c.Split("   \n\t "))
}

func TestWordChunker_Split_DropsShortWindows(t *testing.T) {
	c := NewWordChunker()

	assert.Empty(t, c.Split("demasiado corto"))

	spans := c.Split("Nuestro horario es de lunes a viernes de 9am a 6pm.")
	require.Len(t, spans, 1)
	assert.Equal(t, "Nuestro horario es de lunes a viernes de 9am a 6pm.", spans[0].Text)
}

func TestWordChunker_Split_Overlap(t *testing.T) {
	// Given 25 words, windows of 10 with an overlap of 3
	c := NewWordChunker(WithChunkSize(10), WithOverlap(3), WithMinChars(0))

	// When
	spans := c.Split(words(25))

	// Then windows start every 7 words and share 3 words
	require.Len(t, spans, 4)
	for i, s := range spans {
		assert.Equal(t, i, s.Index)
		assert.Equal(t, i*7, s.StartWord)
	}
	assert.Equal(t, 10, spans[0].EndWord)
	assert.Equal(t, 25, spans[3].EndWord)

	first := strings.Fields(spans[0].Text)
	second := strings.Fields(spans[1].Text)
	assert.Equal(t, first[7:], second[:3])
}

func TestWordChunker_Split_OverlapNotBelowSize(t *testing.T) {
	// An overlap equal to the size would give step 0; it must still advance.
	c := NewWordChunker(WithChunkSize(4), WithOverlap(4), WithMinChars(0))

	spans := c.Split(words(6))

	require.Len(t, spans, 6)
	assert.Equal(t, 1, c.Step())
	assert.Equal(t, 5, spans[5].StartWord)
}

func TestWordChunker_Split_Coverage(t *testing.T) {
	c := NewWordChunker(WithChunkSize(8), WithOverlap(2), WithMinChars(0))
	text := words(50)

	covered := make(map[string]bool)
	for _, s := range c.Split(text) {
		for _, w := range strings.Fields(s.Text) {
			covered[w] = true
		}
	}

	for _, w := range strings.Fields(text) {
		assert.True(t, covered[w], "word %q not covered by any chunk", w)
	}
}

func TestWordChunker_Split_Deterministic(t *testing.T) {
	c := NewWordChunker(WithChunkSize(5), WithOverlap(1), WithMinChars(0))
	text := words(17)

	assert.Equal(t, c.Split(text), c.Split(text))
}

func TestWordChunker_InvalidOptionsIgnored(t *testing.T) {
	c := NewWordChunker(WithChunkSize(0), WithOverlap(-1), WithMinChars(-5))
	assert.Equal(t, DefaultChunkSize-DefaultOverlap, c.Step())
}

func TestNew(t *testing.T) {
	span := Span{Index: 2, Text: "horario horario lunes", StartWord: 10, EndWord: 13}

	c := New("faq", span, []string{"horario", "horario", "lun"})

	assert.Equal(t, "faq#2", c.ID)
	assert.Equal(t, "faq", c.DocumentID)
	assert.Equal(t, 3, c.Length)
	assert.Equal(t, map[string]int{"horario": 2, "lun": 1}, c.TermFreqs)
	assert.Equal(t, []string{"horario", "lun"}, c.Terms)
	assert.True(t, c.Has("lun"))
	assert.False(t, c.Has("viernes"))
}
