// Package validation runs data-driven relevance checks against an engine.
//
// Queries live in a YAML file with three sections. Tier 1 holds literal
// questions whose expected document must be returned. Tier 2 holds the
// same intents phrased the way customers type them, with missing accents,
// plurals, typos and synonyms. Negative queries have nothing to do with
// the corpus and pass when the first pass returns nothing, so they guard
// the relevance threshold.
package validation

import (
	"context"
	"fmt"
	"os"
	"slices"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Aman-CERP/lexrag/internal/search"
)

// Tier identifies a query section.
type Tier int

// Query tiers.
const (
	TierNegative Tier = 0
	Tier1        Tier = 1
	Tier2        Tier = 2
)

// QuerySpec defines a query with the documents expected to answer it.
type QuerySpec struct {
	ID       string   `yaml:"id" json:"id"`
	Name     string   `yaml:"name" json:"name"`
	Query    string   `yaml:"query" json:"query"`
	Expected []string `yaml:"expected" json:"expected,omitempty"` // document IDs
	Notes    string   `yaml:"notes" json:"notes,omitempty"`
	Tier     Tier     `yaml:"-" json:"tier"`
}

// QueryConfig holds every query loaded from a file.
type QueryConfig struct {
	Tier1    []QuerySpec `yaml:"tier1"`
	Tier2    []QuerySpec `yaml:"tier2"`
	Negative []QuerySpec `yaml:"negative"`
}

// LoadQueries reads a query file and sets each spec's tier.
func LoadQueries(path string) (*QueryConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read queries file %s: %w", path, err)
	}

	var cfg QueryConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse queries YAML: %w", err)
	}

	for i := range cfg.Tier1 {
		cfg.Tier1[i].Tier = Tier1
	}
	for i := range cfg.Tier2 {
		cfg.Tier2[i].Tier = Tier2
	}
	for i := range cfg.Negative {
		cfg.Negative[i].Tier = TierNegative
	}
	return &cfg, nil
}

// Len returns the number of queries.
func (c *QueryConfig) Len() int {
	return len(c.Tier1) + len(c.Tier2) + len(c.Negative)
}

// Searcher is the engine surface the validator needs.
type Searcher interface {
	Search(ctx context.Context, query string, k int, threshold float64) ([]search.Hit, error)
}

// TestResult captures the outcome of a single query.
type TestResult struct {
	Spec       QuerySpec     `json:"spec"`
	Passed     bool          `json:"passed"`
	Duration   time.Duration `json:"duration_ns"`
	TopResults []string      `json:"top_results"` // document IDs, best first
	MatchedAt  int           `json:"matched_at"`  // rank of the first expected document, -1 if absent
	Degraded   bool          `json:"degraded"`
	Error      string        `json:"error,omitempty"`
}

// TierResult aggregates the results of one tier.
type TierResult struct {
	Results []TestResult `json:"results"`
	Pass    int          `json:"pass"`
	Total   int          `json:"total"`
}

func (t *TierResult) add(r TestResult) {
	t.Results = append(t.Results, r)
	t.Total++
	if r.Passed {
		t.Pass++
	}
}

// Failed returns the results that did not pass.
func (t *TierResult) Failed() []TestResult {
	var out []TestResult
	for _, r := range t.Results {
		if !r.Passed {
			out = append(out, r)
		}
	}
	return out
}

// Result captures a full validation run.
type Result struct {
	Timestamp time.Time  `json:"timestamp"`
	Limit     int        `json:"limit"`
	Threshold float64    `json:"threshold"`
	Tier1     TierResult `json:"tier1"`
	Tier2     TierResult `json:"tier2"`
	Negative  TierResult `json:"negative"`
}

// Passed reports whether every query passed.
func (r *Result) Passed() bool {
	return r.Failures() == 0
}

// Failures returns the number of failed queries.
func (r *Result) Failures() int {
	return r.Tier1.Total - r.Tier1.Pass +
		r.Tier2.Total - r.Tier2.Pass +
		r.Negative.Total - r.Negative.Pass
}

// Validator runs query specs against a Searcher.
type Validator struct {
	searcher  Searcher
	limit     int
	threshold float64
}

// NewValidator creates a validator that requests limit hits per query
// with the given threshold.
func NewValidator(s Searcher, limit int, threshold float64) (*Validator, error) {
	if s == nil {
		return nil, fmt.Errorf("%w: searcher is required", search.ErrNilDependency)
	}
	if limit < 1 {
		return nil, fmt.Errorf("limit must be at least 1, got %d", limit)
	}
	return &Validator{searcher: s, limit: limit, threshold: threshold}, nil
}

// RunQuery executes a single query.
//
// A positive spec passes when one of its expected documents is among the
// hits. A negative spec passes when the first pass returns nothing, so
// only an empty or fully degraded result is accepted.
func (v *Validator) RunQuery(ctx context.Context, spec QuerySpec) TestResult {
	result := TestResult{Spec: spec, MatchedAt: -1}

	start := time.Now()
	hits, err := v.searcher.Search(ctx, spec.Query, v.limit, v.threshold)
	result.Duration = time.Since(start)
	if err != nil {
		result.Error = err.Error()
		return result
	}

	result.TopResults = make([]string, 0, len(hits))
	firstPass := 0
	for _, h := range hits {
		result.TopResults = append(result.TopResults, h.Document.ID)
		if h.Degraded {
			result.Degraded = true
		} else {
			firstPass++
		}
	}

	if spec.Tier == TierNegative || len(spec.Expected) == 0 {
		result.Passed = firstPass == 0
		return result
	}

	result.MatchedAt = matchExpected(result.TopResults, spec.Expected)
	result.Passed = result.MatchedAt >= 0
	return result
}

// RunAll executes every query in cfg, stopping early if ctx ends.
func (v *Validator) RunAll(ctx context.Context, cfg *QueryConfig) (*Result, error) {
	result := &Result{
		Timestamp: time.Now(),
		Limit:     v.limit,
		Threshold: v.threshold,
	}

	sections := []struct {
		specs []QuerySpec
		into  *TierResult
	}{
		{cfg.Tier1, &result.Tier1},
		{cfg.Tier2, &result.Tier2},
		{cfg.Negative, &result.Negative},
	}
	for _, sec := range sections {
		for _, spec := range sec.specs {
			if err := ctx.Err(); err != nil {
				return result, err
			}
			sec.into.add(v.RunQuery(ctx, spec))
		}
	}
	return result, nil
}

// matchExpected returns the rank of the first result that is an expected
// document, or -1.
func matchExpected(results, expected []string) int {
	for i, id := range results {
		if slices.Contains(expected, id) {
			return i
		}
	}
	return -1
}
