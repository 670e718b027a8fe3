package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/lexrag/internal/output"
)

func newIndexCmd(global *globalOptions) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "index",
		Short: "Build the index and show its statistics",
		Long: `Load the documents, build the index and report how many documents,
chunks and terms it holds. Useful to check chunking and stop word settings
before serving.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runIndex(cmd.Context(), cmd, global, format)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "text", "Output format: text, json")

	return cmd
}

func runIndex(ctx context.Context, cmd *cobra.Command, global *globalOptions, formatName string) error {
	format, err := output.ParseFormat(formatName)
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

	out := output.New(cmd.OutOrStdout())
	if ws.docs == 0 && format == output.FormatText {
		out.Warning("No documents found. Supported: .txt .md .html .yaml .json")
	}

	st, err := ws.engine.Stats(ctx)
	if err != nil {
		return err
	}
	return out.Stats(format, st)
}
