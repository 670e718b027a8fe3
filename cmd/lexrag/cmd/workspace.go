package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/Aman-CERP/lexrag/internal/config"
	"github.com/Aman-CERP/lexrag/internal/logging"
	"github.com/Aman-CERP/lexrag/pkg/retriever"
)

// workspace is an indexed document directory with its configuration.
type workspace struct {
	cfg    *config.Config
	engine *retriever.Engine
	docs   int
	// files maps each loaded file to the documents it produced.
	files []loadedFile
}

// loadConfig resolves configuration from --config, or from the project
// that contains the documents.
func loadConfig(opts *globalOptions) (*config.Config, string, error) {
	docsDir, err := filepath.Abs(opts.docsDir)
	if err != nil {
		return nil, "", fmt.Errorf("failed to resolve path: %w", err)
	}

	root, err := config.FindProjectRoot(docsDir)
	if err != nil {
		root = docsDir
	}

	var cfg *config.Config
	if opts.configPath != "" {
		cfg, err = config.LoadFile(opts.configPath)
	} else {
		cfg, err = config.Load(root)
	}
	if err != nil {
		return nil, "", err
	}
	return cfg, root, nil
}

// commandLogger returns the slog default under --debug, otherwise a logger
// built from the logging section of cfg. Without a file_path it discards.
func commandLogger(opts *globalOptions, cfg *config.Config) (*slog.Logger, func(), error) {
	if opts.debug {
		return slog.Default(), func() {}, nil
	}
	return logging.Setup(logging.Config{
		Level:     cfg.Logging.Level,
		FilePath:  cfg.Logging.FilePath,
		MaxSizeMB: cfg.Logging.MaxSizeMB,
		MaxFiles:  cfg.Logging.MaxFiles,
	})
}

// openWorkspace loads the documents and builds the index.
func openWorkspace(ctx context.Context, opts *globalOptions, cfg *config.Config, logger *slog.Logger) (*workspace, error) {
	files, err := loadTree(opts.docsDir)
	if err != nil {
		return nil, err
	}
	docs := documentsOf(files)

	eng, err := retriever.New(cfg, retriever.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	if _, err := eng.BuildIndex(ctx, docs); err != nil {
		return nil, err
	}

	logger.Info("workspace_loaded",
		slog.String("docs", opts.docsDir),
		slog.Int("documents", len(docs)))

	return &workspace{cfg: cfg, engine: eng, docs: len(docs), files: files}, nil
}
