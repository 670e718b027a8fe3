package config

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Aman-CERP/lexrag/internal/analysis"
	"github.com/Aman-CERP/lexrag/internal/chunk"
	"github.com/Aman-CERP/lexrag/internal/corpus"
	"github.com/Aman-CERP/lexrag/internal/index"
	"github.com/Aman-CERP/lexrag/internal/search"
)

// Project config file names, in lookup order.
const (
	ProjectConfigYAML = ".lexrag.yaml"
	ProjectConfigYML  = ".lexrag.yml"
)

// Config holds all lexrag configuration.
type Config struct {
	Version     int               `yaml:"version"`
	Analysis    AnalysisConfig    `yaml:"analysis"`
	Chunking    ChunkingConfig    `yaml:"chunking"`
	Search      SearchConfig      `yaml:"search"`
	Performance PerformanceConfig `yaml:"performance"`
	Profile     corpus.Profile    `yaml:"profile"`
	Logging     LoggingConfig     `yaml:"logging"`
}

// AnalysisConfig selects the language pipeline applied to documents and queries.
type AnalysisConfig struct {
	Language       string   `yaml:"language"`
	Stemmer        string   `yaml:"stemmer"`
	ExtraStopWords []string `yaml:"extra_stop_words,omitempty"`
	// SynonymsFile is a YAML map of key to synonyms merged into the built-in table.
	SynonymsFile string `yaml:"synonyms_file,omitempty"`
}

// ChunkingConfig sizes the word windows, in words except MinChars.
type ChunkingConfig struct {
	Size     int `yaml:"size"`
	Overlap  int `yaml:"overlap"`
	MinChars int `yaml:"min_chars"`
}

// SearchConfig configures query expansion, scoring and result selection.
type SearchConfig struct {
	TopK               int            `yaml:"top_k"`
	Threshold          float64        `yaml:"threshold"`
	MaxEditDistance    int            `yaml:"max_edit_distance"`
	UnseenTermWeight   float64        `yaml:"unseen_term_weight"`
	ExpansionCacheSize int            `yaml:"expansion_cache_size"`
	Degrade            DegradeConfig  `yaml:"degrade"`
	Weights            search.Weights `yaml:"weights"`
	BM25               BM25Config     `yaml:"bm25"`
}

// DegradeConfig controls the relaxed second pass run when nothing clears the threshold.
type DegradeConfig struct {
	Factor float64 `yaml:"factor"`
	Floor  float64 `yaml:"floor"`
	MinK   int     `yaml:"min_k"`
}

// BM25Config holds the Okapi BM25 parameters.
type BM25Config struct {
	K1 float64 `yaml:"k1"`
	B  float64 `yaml:"b"`
}

// PerformanceConfig bounds the parallelism of index builds and scoring.
type PerformanceConfig struct {
	Workers int `yaml:"workers"`
}

// LoggingConfig configures the file log written next to stderr output.
type LoggingConfig struct {
	Level     string `yaml:"level"`
	FilePath  string `yaml:"file_path,omitempty"`
	MaxSizeMB int    `yaml:"max_size_mb"`
	MaxFiles  int    `yaml:"max_files"`
}

// NewConfig creates a new Config with sensible defaults.
func NewConfig() *Config {
	sc := search.DefaultConfig()
	return &Config{
		Version: 1,
		Analysis: AnalysisConfig{
			Language: "spanish",
			Stemmer:  analysis.StemmerLight,
		},
		Chunking: ChunkingConfig{
			Size:     chunk.DefaultChunkSize,
			Overlap:  chunk.DefaultOverlap,
			MinChars: chunk.DefaultMinChars,
		},
		Search: SearchConfig{
			TopK:               sc.TopK,
			Threshold:          sc.Threshold,
			MaxEditDistance:    search.DefaultMaxEditDistance,
			UnseenTermWeight:   search.DefaultUnseenTermWeight,
			ExpansionCacheSize: search.DefaultExpansionCacheSize,
			Degrade: DegradeConfig{
				Factor: sc.DegradeFactor,
				Floor:  sc.DegradeFloor,
				MinK:   sc.DegradeMinK,
			},
			Weights: search.DefaultWeights(),
			BM25: BM25Config{
				K1: index.DefaultK1,
				B:  index.DefaultB,
			},
		},
		Performance: PerformanceConfig{
			Workers: runtime.NumCPU(),
		},
		Logging: LoggingConfig{
			Level:     "info",
			MaxSizeMB: 10,
			MaxFiles:  5,
		},
	}
}

// SearchDefaults converts the search section into engine defaults.
func (c *Config) SearchDefaults() search.Config {
	return search.Config{
		TopK:          c.Search.TopK,
		Threshold:     c.Search.Threshold,
		DegradeFactor: c.Search.Degrade.Factor,
		DegradeFloor:  c.Search.Degrade.Floor,
		DegradeMinK:   c.Search.Degrade.MinK,
	}
}

// GetUserConfigPath returns the path to the user configuration file:
//   - $XDG_CONFIG_HOME/lexrag/config.yaml (if XDG_CONFIG_HOME is set)
//   - ~/.config/lexrag/config.yaml (default)
func GetUserConfigPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "lexrag", "config.yaml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".config", "lexrag", "config.yaml")
	}
	return filepath.Join(home, ".config", "lexrag", "config.yaml")
}

// UserConfigExists returns true if the user configuration file exists.
func UserConfigExists() bool {
	return fileExists(GetUserConfigPath())
}

// Load loads configuration for the project in dir.
// It applies configuration in order of increasing precedence:
//  1. Hardcoded defaults
//  2. User config (~/.config/lexrag/config.yaml)
//  3. Project config (.lexrag.yaml in dir)
//  4. Environment variables (LEXRAG_*)
func Load(dir string) (*Config, error) {
	cfg := NewConfig()

	if path := GetUserConfigPath(); fileExists(path) {
		if err := cfg.loadYAML(path); err != nil {
			return nil, fmt.Errorf("failed to load user config: %w", err)
		}
	}

	if err := cfg.loadFromFile(dir); err != nil {
		return nil, err
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// LoadFile loads defaults overlaid with a single explicit config file.
// Environment overrides still apply.
func LoadFile(path string) (*Config, error) {
	if !fileExists(path) {
		return nil, fmt.Errorf("config file not found: %s", path)
	}
	cfg := NewConfig()
	if err := cfg.loadYAML(path); err != nil {
		return nil, err
	}
	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// loadFromFile loads .lexrag.yaml or, failing that, .lexrag.yml from dir.
func (c *Config) loadFromFile(dir string) error {
	for _, name := range []string{ProjectConfigYAML, ProjectConfigYML} {
		path := filepath.Join(dir, name)
		if fileExists(path) {
			return c.loadYAML(path)
		}
	}
	return nil
}

// loadYAML decodes path over the current values. Keys absent from the file
// keep their value, so explicit zeros (a weight of 0) are honoured.
func (c *Config) loadYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	parsed := *c
	parsed.Analysis.ExtraStopWords = append([]string(nil), c.Analysis.ExtraStopWords...)
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	*c = parsed
	return nil
}

// applyEnvOverrides applies LEXRAG_* environment variable overrides.
// Unparseable numbers are reported rather than ignored.
func (c *Config) applyEnvOverrides() error {
	if v := os.Getenv("LEXRAG_TOP_K"); v != "" {
		k, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("LEXRAG_TOP_K: %w", err)
		}
		c.Search.TopK = k
	}
	if v := os.Getenv("LEXRAG_THRESHOLD"); v != "" {
		t, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return fmt.Errorf("LEXRAG_THRESHOLD: %w", err)
		}
		c.Search.Threshold = t
	}
	if v := os.Getenv("LEXRAG_CHUNK_SIZE"); v != "" {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("LEXRAG_CHUNK_SIZE: %w", err)
		}
		c.Chunking.Size = n
	}
	if v := os.Getenv("LEXRAG_CHUNK_OVERLAP"); v != "" {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("LEXRAG_CHUNK_OVERLAP: %w", err)
		}
		c.Chunking.Overlap = n
	}
	if v := os.Getenv("LEXRAG_LANGUAGE"); v != "" {
		c.Analysis.Language = strings.ToLower(v)
	}
	if v := os.Getenv("LEXRAG_STEMMER"); v != "" {
		c.Analysis.Stemmer = strings.ToLower(v)
	}
	if v := os.Getenv("LEXRAG_LOG_LEVEL"); v != "" {
		c.Logging.Level = strings.ToLower(v)
	}
	return nil
}

// FindProjectRoot walks up from startDir looking for a project config file
// or a .git directory. It returns startDir (made absolute) when neither is found.
func FindProjectRoot(startDir string) (string, error) {
	absDir, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute path: %w", err)
	}

	current := absDir
	for {
		if fileExists(filepath.Join(current, ProjectConfigYAML)) ||
			fileExists(filepath.Join(current, ProjectConfigYML)) ||
			dirExists(filepath.Join(current, ".git")) {
			return current, nil
		}
		parent := filepath.Dir(current)
		if parent == current {
			return absDir, nil
		}
		current = parent
	}
}

// Validate validates the configuration and returns an error if invalid.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Analysis.Stemmer) {
	case analysis.StemmerLight, analysis.StemmerSnowball, analysis.StemmerNone, "":
	default:
		return fmt.Errorf("analysis.stemmer must be 'light', 'snowball' or 'none', got %s", c.Analysis.Stemmer)
	}

	if c.Chunking.Size < 1 {
		return fmt.Errorf("chunking.size must be at least 1, got %d", c.Chunking.Size)
	}
	if c.Chunking.Overlap < 0 {
		return fmt.Errorf("chunking.overlap must be non-negative, got %d", c.Chunking.Overlap)
	}
	if c.Chunking.MinChars < 0 {
		return fmt.Errorf("chunking.min_chars must be non-negative, got %d", c.Chunking.MinChars)
	}

	s := c.Search
	if s.TopK < 1 {
		return fmt.Errorf("search.top_k must be at least 1, got %d", s.TopK)
	}
	if !inUnit(s.Threshold) {
		return fmt.Errorf("search.threshold must be between 0 and 1, got %v", s.Threshold)
	}
	if s.MaxEditDistance < 0 {
		return fmt.Errorf("search.max_edit_distance must be non-negative, got %d", s.MaxEditDistance)
	}
	if s.UnseenTermWeight < 0 {
		return fmt.Errorf("search.unseen_term_weight must be non-negative, got %v", s.UnseenTermWeight)
	}
	if s.Degrade.Factor <= 0 || s.Degrade.Factor > 1 || math.IsNaN(s.Degrade.Factor) {
		return fmt.Errorf("search.degrade.factor must be in (0,1], got %v", s.Degrade.Factor)
	}
	if !inUnit(s.Degrade.Floor) {
		return fmt.Errorf("search.degrade.floor must be between 0 and 1, got %v", s.Degrade.Floor)
	}
	if s.Degrade.MinK < 0 {
		return fmt.Errorf("search.degrade.min_k must be non-negative, got %d", s.Degrade.MinK)
	}

	w := s.Weights
	if w.Cosine < 0 || w.Jaccard < 0 || w.Lexical < 0 || w.BM25 < 0 {
		return fmt.Errorf("search.weights must be non-negative, got %+v", w)
	}
	if w.Cosine+w.Jaccard <= 0 {
		return fmt.Errorf("search.weights: cosine + jaccard must be positive")
	}
	if w.Lexical+w.BM25 <= 0 {
		return fmt.Errorf("search.weights: lexical + bm25 must be positive")
	}

	if s.BM25.K1 < 0 {
		return fmt.Errorf("search.bm25.k1 must be non-negative, got %v", s.BM25.K1)
	}
	if !inUnit(s.BM25.B) {
		return fmt.Errorf("search.bm25.b must be between 0 and 1, got %v", s.BM25.B)
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		return fmt.Errorf("logging.level must be 'debug', 'info', 'warn', or 'error', got %s", c.Logging.Level)
	}

	return nil
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

func inUnit(v float64) bool {
	return !math.IsNaN(v) && v >= 0 && v <= 1
}

// fileExists checks if a file exists and is not a directory.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// dirExists checks if a directory exists.
func dirExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}
