package cmd

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/lexrag/internal/output"
)

// searchOptions holds CLI flags for search.
type searchOptions struct {
	limit     int
	threshold float64
	format    string // "text", "json"
	explain   bool
}

func newSearchCmd(global *globalOptions) *cobra.Command {
	var opts searchOptions

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search the documents",
		Long: `Search the documents with hybrid lexical scoring.

The query is expanded with synonyms, plural variants and typo corrections.
When nothing clears the threshold, one relaxed pass returns the closest
matches, marked as such.

Examples:
  lexrag search "horarios de atencion"
  lexrag search "cuanto cuesta el envio" --limit 3
  lexrag search "metodos de pago" --docs ./faq --format json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")
			return runSearch(cmd.Context(), cmd, global, query, opts)
		},
	}

	cmd.Flags().IntVarP(&opts.limit, "limit", "n", 0, "Maximum number of results (default from config)")
	cmd.Flags().Float64Var(&opts.threshold, "threshold", -1, "Minimum score in [0, 1] (default from config)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "text", "Output format: text, json")
	cmd.Flags().BoolVar(&opts.explain, "explain", false, "Show the expanded query terms")

	return cmd
}

func runSearch(ctx context.Context, cmd *cobra.Command, global *globalOptions, query string, opts searchOptions) error {
	format, err := output.ParseFormat(opts.format)
	if err != nil {
		return err
	}

	cfg, _, err := loadConfig(global)
	if err != nil {
		return err
	}
	logger, cleanup, err := commandLogger(global, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	ws, err := openWorkspace(ctx, global, cfg, logger)
	if err != nil {
		return err
	}

	limit := opts.limit
	if !cmd.Flags().Changed("limit") {
		limit = cfg.Search.TopK
	}
	threshold := opts.threshold
	if !cmd.Flags().Changed("threshold") {
		threshold = cfg.Search.Threshold
	}

	start := time.Now()
	hits, err := ws.engine.Search(ctx, query, limit, threshold)
	if err != nil {
		return err
	}

	var terms []string
	if opts.explain {
		if terms, err = ws.engine.Expand(ctx, query); err != nil {
			return err
		}
	}

	logger.Info("search_complete",
		slog.String("query", query),
		slog.Int("results", len(hits)),
		slog.Duration("duration", time.Since(start)))

	return output.New(cmd.OutOrStdout()).Hits(format, query, terms, hits)
}
