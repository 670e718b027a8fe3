package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/lexrag/internal/logging"
	"github.com/Aman-CERP/lexrag/internal/mcp"
	"github.com/Aman-CERP/lexrag/internal/watcher"
)

type serveOptions struct {
	watch    bool
	debounce time.Duration
}

func newServeCmd(global *globalOptions) *cobra.Command {
	opts := &serveOptions{}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server on stdio",
		Long: `Index the documents and serve them to MCP clients over stdio.

Tools:
  search_documents  hybrid search with optional limit, threshold and explain
  index_status      document, chunk and term counts

Files added, edited or removed under --docs are picked up while serving
unless --watch=false.

Logs go to ~/.lexrag/logs/lexrag.log; stdout carries only protocol messages.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), global, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.watch, "watch", true, "Reindex when documents change")
	cmd.Flags().DurationVar(&opts.debounce, "debounce", watcher.DefaultOptions().DebounceWindow,
		"Quiet period before a burst of file changes is applied")

	return cmd
}

func runServe(ctx context.Context, global *globalOptions, opts *serveOptions) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, _, err := loadConfig(global)
	if err != nil {
		return err
	}

	level := cfg.Logging.Level
	if global.debug {
		level = "debug"
	}
	logCfg := logging.ServerConfig(level)
	if cfg.Logging.FilePath != "" {
		logCfg.FilePath = cfg.Logging.FilePath
	}
	logCfg.MaxSizeMB = cfg.Logging.MaxSizeMB
	logCfg.MaxFiles = cfg.Logging.MaxFiles

	logger, cleanup, err := logging.Setup(logCfg)
	if err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}
	defer cleanup()

	ws, err := openWorkspace(ctx, global, cfg, logger)
	if err != nil {
		logger.Error("workspace_load_failed", slog.String("error", err.Error()))
		return err
	}

	if opts.watch {
		stopWatch, err := watchDocuments(ctx, global.docsDir, ws, opts.debounce, logger)
		if err != nil {
			logger.Warn("watch_disabled", slog.String("error", err.Error()))
		} else {
			defer stopWatch()
		}
	}

	srv, err := mcp.NewServer(ws.engine, cfg.SearchDefaults(), mcp.WithLogger(logger))
	if err != nil {
		return err
	}
	return srv.Serve(ctx)
}

// watchDocuments keeps ws in step with the files under docsPath until ctx is
// canceled or the returned stop function is called.
func watchDocuments(ctx context.Context, docsPath string, ws *workspace, debounce time.Duration, logger *slog.Logger) (func(), error) {
	root, only, err := docsRoot(docsPath)
	if err != nil {
		return nil, err
	}
	syncer := newDocSync(root, only, ws.engine, ws.files, logger)

	w, err := watcher.New(watcher.Options{
		DebounceWindow: debounce,
		Include:        syncer.include,
	}, logger)
	if err != nil {
		return nil, err
	}

	go func() {
		if err := w.Start(ctx, root); err != nil {
			logger.Error("watch_failed", slog.String("error", err.Error()))
		}
	}()
	go syncer.run(ctx, w)

	return func() { _ = w.Stop() }, nil
}
