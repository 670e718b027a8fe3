package search

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/lexrag/internal/analysis"
	"github.com/Aman-CERP/lexrag/internal/chunk"
	"github.com/Aman-CERP/lexrag/internal/corpus"
	"github.com/Aman-CERP/lexrag/internal/index"
)

const horarioText = "Nuestro horario es de lunes a viernes de 9am a 6pm."

func newTestCorpus(t testing.TB, docs ...corpus.Document) *corpus.Corpus {
	t.Helper()
	c := corpus.New()
	for _, d := range docs {
		require.NoError(t, c.Add(d))
	}
	return c
}

func buildSnapshot(t testing.TB, docs ...corpus.Document) *index.Snapshot {
	t.Helper()
	b := index.NewBuilder(chunk.NewWordChunker(), analysis.NewDefaultAnalyzer())
	snap, err := b.Build(context.Background(), newTestCorpus(t, docs...))
	require.NoError(t, err)
	return snap
}

func newTestEngine(t testing.TB, docs ...corpus.Document) *Engine {
	t.Helper()
	analyzer := analysis.NewDefaultAnalyzer()
	e, err := NewEngine(
		newTestCorpus(t, docs...),
		index.NewBuilder(chunk.NewWordChunker(), analyzer),
		NewQueryExpander(analyzer),
		NewHybridScorer(),
		DefaultConfig(),
	)
	require.NoError(t, err)
	return e
}

func hitIDs(hits []Hit) []string {
	ids := make([]string, len(hits))
	for i, h := range hits {
		ids[i] = h.Chunk.ID
	}
	return ids
}
