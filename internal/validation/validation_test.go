package validation

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/Aman-CERP/lexrag/internal/chunk"
	"github.com/Aman-CERP/lexrag/internal/corpus"
	"github.com/Aman-CERP/lexrag/internal/search"
	"github.com/Aman-CERP/lexrag/pkg/retriever"
)

// newSampleValidator indexes testdata/faq.yaml with the default settings.
func newSampleValidator(t *testing.T) *Validator {
	t.Helper()

	data, err := os.ReadFile(filepath.Join("testdata", "faq.yaml"))
	require.NoError(t, err)
	var docs []corpus.Document
	require.NoError(t, yaml.Unmarshal(data, &docs))

	eng, err := retriever.New(nil)
	require.NoError(t, err)
	_, err = eng.BuildIndex(context.Background(), docs)
	require.NoError(t, err)

	d := eng.Config()
	v, err := NewValidator(eng, 3, d.Threshold)
	require.NoError(t, err)
	return v
}

func loadSampleQueries(t *testing.T) *QueryConfig {
	t.Helper()
	cfg, err := LoadQueries(filepath.Join("testdata", "queries.yaml"))
	require.NoError(t, err)
	return cfg
}

func TestLoadQueries_SetsTiers(t *testing.T) {
	cfg := loadSampleQueries(t)

	require.NotEmpty(t, cfg.Tier1)
	require.NotEmpty(t, cfg.Tier2)
	require.NotEmpty(t, cfg.Negative)
	assert.Equal(t, Tier1, cfg.Tier1[0].Tier)
	assert.Equal(t, Tier2, cfg.Tier2[0].Tier)
	assert.Equal(t, TierNegative, cfg.Negative[0].Tier)
	assert.Equal(t, len(cfg.Tier1)+len(cfg.Tier2)+len(cfg.Negative), cfg.Len())
}

func TestLoadQueries_SampleFileFields(t *testing.T) {
	// Given: the shipped sample queries
	cfg := loadSampleQueries(t)

	// Then: every entry is read, including quoted notes
	assert.Len(t, cfg.Tier1, 4)
	assert.Len(t, cfg.Tier2, 5)
	assert.Len(t, cfg.Negative, 2)
	assert.Equal(t, "T2-Q2", cfg.Tier2[1].ID)
	assert.Equal(t, `"cuanto" only expands to price words, the match comes from envio`, cfg.Tier2[1].Notes)
	for _, q := range append(append(cfg.Tier1, cfg.Tier2...), cfg.Negative...) {
		assert.NotEmpty(t, q.Query, q.ID)
	}
}

func TestLoadQueries_Errors(t *testing.T) {
	_, err := LoadQueries(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("tier1: [unclosed"), 0o644))
	_, err = LoadQueries(path)
	assert.Error(t, err)
}

func TestNewValidator_Validation(t *testing.T) {
	_, err := NewValidator(nil, 3, 0.15)
	assert.ErrorIs(t, err, search.ErrNilDependency)

	_, err = NewValidator(&fakeSearcher{}, 0, 0.15)
	assert.Error(t, err)
}

func TestTier1_All(t *testing.T) {
	v := newSampleValidator(t)

	for _, spec := range loadSampleQueries(t).Tier1 {
		t.Run(spec.ID+"_"+spec.Name, func(t *testing.T) {
			result := v.RunQuery(context.Background(), spec)

			require.Empty(t, result.Error)
			assert.True(t, result.Passed, "expected %v in %v", spec.Expected, result.TopResults)
			assert.Equal(t, 0, result.MatchedAt, "literal queries rank their answer first")
			assert.False(t, result.Degraded)
		})
	}
}

func TestTier2_All(t *testing.T) {
	v := newSampleValidator(t)

	for _, spec := range loadSampleQueries(t).Tier2 {
		t.Run(spec.ID+"_"+spec.Name, func(t *testing.T) {
			result := v.RunQuery(context.Background(), spec)

			require.Empty(t, result.Error)
			assert.True(t, result.Passed, "expected %v in %v", spec.Expected, result.TopResults)
		})
	}
}

func TestNegative_All(t *testing.T) {
	v := newSampleValidator(t)

	for _, spec := range loadSampleQueries(t).Negative {
		t.Run(spec.ID+"_"+spec.Name, func(t *testing.T) {
			result := v.RunQuery(context.Background(), spec)

			require.Empty(t, result.Error)
			assert.True(t, result.Passed, "unexpected first-pass hits %v", result.TopResults)
		})
	}
}

func TestRunAll(t *testing.T) {
	// Given: the sample corpus and queries
	v := newSampleValidator(t)
	cfg := loadSampleQueries(t)

	// When: running every query
	result, err := v.RunAll(context.Background(), cfg)

	// Then: every tier is counted and passes
	require.NoError(t, err)
	assert.Equal(t, len(cfg.Tier1), result.Tier1.Total)
	assert.Equal(t, len(cfg.Tier2), result.Tier2.Total)
	assert.Equal(t, len(cfg.Negative), result.Negative.Total)
	assert.True(t, result.Passed(), "failures: %v %v %v",
		result.Tier1.Failed(), result.Tier2.Failed(), result.Negative.Failed())
	assert.Equal(t, 3, result.Limit)
}

// fakeSearcher returns canned hits or an error.
type fakeSearcher struct {
	hits []search.Hit
	err  error
}

func (f *fakeSearcher) Search(context.Context, string, int, float64) ([]search.Hit, error) {
	return f.hits, f.err
}

func fakeHit(docID string, degraded bool) search.Hit {
	return search.Hit{
		Chunk:    chunk.New(docID, chunk.Span{Text: "texto"}, nil),
		Document: &corpus.Document{ID: docID},
		Degraded: degraded,
	}
}

func TestRunQuery_Outcomes(t *testing.T) {
	positive := QuerySpec{ID: "P", Query: "q", Expected: []string{"b"}, Tier: Tier1}
	negative := QuerySpec{ID: "N", Query: "q", Tier: TierNegative}

	tests := []struct {
		name      string
		searcher  *fakeSearcher
		spec      QuerySpec
		passed    bool
		matchedAt int
	}{
		{"expected at rank two", &fakeSearcher{hits: []search.Hit{fakeHit("a", false), fakeHit("b", false)}}, positive, true, 1},
		{"expected missing", &fakeSearcher{hits: []search.Hit{fakeHit("a", false)}}, positive, false, -1},
		{"expected from degraded pass", &fakeSearcher{hits: []search.Hit{fakeHit("b", true)}}, positive, true, 0},
		{"negative empty", &fakeSearcher{hits: []search.Hit{}}, negative, true, -1},
		{"negative degraded only", &fakeSearcher{hits: []search.Hit{fakeHit("a", true)}}, negative, true, -1},
		{"negative first pass hit", &fakeSearcher{hits: []search.Hit{fakeHit("a", false)}}, negative, false, -1},
		{"search error", &fakeSearcher{err: errors.New("boom")}, positive, false, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := NewValidator(tt.searcher, 5, 0.15)
			require.NoError(t, err)

			result := v.RunQuery(context.Background(), tt.spec)

			assert.Equal(t, tt.passed, result.Passed)
			assert.Equal(t, tt.matchedAt, result.MatchedAt)
		})
	}
}

func TestRunAll_StopsOnCanceledContext(t *testing.T) {
	v, err := NewValidator(&fakeSearcher{}, 5, 0.15)
	require.NoError(t, err)
	ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()
	<-ctx.Done()

	result, err := v.RunAll(ctx, &QueryConfig{Tier1: []QuerySpec{{ID: "x", Query: "q"}}})

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 0, result.Tier1.Total)
}
