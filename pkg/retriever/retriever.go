package retriever

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Aman-CERP/lexrag/internal/analysis"
	"github.com/Aman-CERP/lexrag/internal/chunk"
	"github.com/Aman-CERP/lexrag/internal/config"
	"github.com/Aman-CERP/lexrag/internal/corpus"
	lexerrors "github.com/Aman-CERP/lexrag/internal/errors"
	"github.com/Aman-CERP/lexrag/internal/index"
	"github.com/Aman-CERP/lexrag/internal/search"
)

// Re-exported types so callers outside this module can name them.
type (
	Config   = config.Config
	Document = corpus.Document
	Profile  = corpus.Profile
	Hit      = search.Hit
	Stats    = index.Stats
)

// NewConfig returns the default configuration.
func NewConfig() *Config {
	return config.NewConfig()
}

// LoadConfig loads configuration for the project rooted at dir.
func LoadConfig(dir string) (*Config, error) {
	return config.Load(dir)
}

// Engine indexes documents and answers hybrid lexical queries.
type Engine struct {
	*search.Engine

	cfg *Config
}

type options struct {
	logger   *slog.Logger
	synonyms map[string][]string
}

// Option configures New.
type Option func(*options)

// WithLogger sets the logger shared by every component.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithSynonyms merges extra synonym groups into the built-in table, on top
// of any file named by the configuration.
func WithSynonyms(extra map[string][]string) Option {
	return func(o *options) {
		o.synonyms = search.MergeSynonyms(o.synonyms, extra)
	}
}

// New builds an engine from cfg. A nil cfg uses the defaults. The configured
// profile, if any, is added as a meta-document.
func New(cfg *Config, opts ...Option) (*Engine, error) {
	if cfg == nil {
		cfg = config.NewConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, lexerrors.ConfigError("invalid configuration", err).
			WithSuggestion("Check .lexrag.yaml and LEXRAG_* environment variables")
	}

	o := options{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}

	stemmer, err := analysis.NewStemmer(cfg.Analysis.Stemmer, cfg.Analysis.Language)
	if err != nil {
		return nil, lexerrors.ConfigError("invalid stemmer", err)
	}
	stopWords := analysis.BuildStopWordMap(analysis.StopWordsFor(cfg.Analysis.Language), cfg.Analysis.ExtraStopWords)
	analyzer := analysis.NewAnalyzer(analysis.NewTokenizer(stopWords), stemmer)

	raw := search.DefaultSynonyms
	if cfg.Analysis.SynonymsFile != "" {
		fromFile, err := search.LoadSynonymsFile(cfg.Analysis.SynonymsFile)
		if err != nil {
			return nil, lexerrors.New(lexerrors.ErrCodeFileNotFound, "failed to load synonyms", err).
				WithDetail("path", cfg.Analysis.SynonymsFile)
		}
		raw = search.MergeSynonyms(raw, fromFile)
	}
	if len(o.synonyms) > 0 {
		raw = search.MergeSynonyms(raw, o.synonyms)
	}
	synonyms := search.NewSynonymTable(raw, stemmer)

	chunker := chunk.NewWordChunker(
		chunk.WithChunkSize(cfg.Chunking.Size),
		chunk.WithOverlap(cfg.Chunking.Overlap),
		chunk.WithMinChars(cfg.Chunking.MinChars),
	)
	builder := index.NewBuilder(chunker, analyzer,
		index.WithWorkers(cfg.Performance.Workers),
		index.WithBM25Params(cfg.Search.BM25.K1, cfg.Search.BM25.B),
		index.WithLogger(o.logger),
	)
	expander := search.NewQueryExpander(analyzer,
		search.WithSynonyms(synonyms),
		search.WithMaxEditDistance(cfg.Search.MaxEditDistance),
		search.WithExpansionCacheSize(cfg.Search.ExpansionCacheSize),
		search.WithExpanderLogger(o.logger),
	)
	scorer := search.NewHybridScorer(
		search.WithWeights(cfg.Search.Weights),
		search.WithUnseenTermWeight(cfg.Search.UnseenTermWeight),
		search.WithScoringWorkers(cfg.Performance.Workers),
	)

	eng, err := search.NewEngine(corpus.New(), builder, expander, scorer, cfg.SearchDefaults(),
		search.WithLogger(o.logger))
	if err != nil {
		return nil, fmt.Errorf("failed to create engine: %w", err)
	}
	if !cfg.Profile.IsEmpty() {
		eng.SetProfile(cfg.Profile)
	}

	o.logger.Debug("retriever_created",
		slog.String("language", cfg.Analysis.Language),
		slog.String("stemmer", cfg.Analysis.Stemmer),
		slog.Int("synonym_groups", synonyms.Len()))

	return &Engine{Engine: eng, cfg: cfg}, nil
}

// Settings returns the configuration the engine was built from.
func (e *Engine) Settings() *Config {
	return e.cfg
}

// SearchDefault searches with the configured top-k and threshold.
func (e *Engine) SearchDefault(ctx context.Context, query string) ([]Hit, error) {
	d := e.Engine.Config()
	return e.Search(ctx, query, d.TopK, d.Threshold)
}
