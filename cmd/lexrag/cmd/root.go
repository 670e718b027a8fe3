// Package cmd provides the CLI commands for lexrag.
package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	lexerrors "github.com/Aman-CERP/lexrag/internal/errors"
	"github.com/Aman-CERP/lexrag/internal/logging"
	"github.com/Aman-CERP/lexrag/internal/profiling"
	"github.com/Aman-CERP/lexrag/pkg/version"
)

// globalOptions holds persistent flags shared by every command.
type globalOptions struct {
	debug      bool
	configPath string
	docsDir    string
	profile    profiling.Options
}

// NewRootCmd creates the root command for the lexrag CLI.
func NewRootCmd() *cobra.Command {
	var opts globalOptions
	var loggingCleanup func()
	var profiler *profiling.Session

	cmd := &cobra.Command{
		Use:   "lexrag",
		Short: "Hybrid lexical search over FAQ and support documents",
		Long: `lexrag indexes plain text, Markdown and HTML documents and answers
natural-language questions with a blend of TF-IDF cosine, Jaccard overlap
and BM25 scores. Queries are expanded with synonyms, plural variants and
typo corrections, so "orarios de atencion" still finds "Horario".

Run 'lexrag search <query>' in a directory of documents to get started,
or 'lexrag serve' to expose the index to MCP clients.`,
		Version:       version.Get().Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			if opts.debug {
				logger, cleanup, err := logging.Setup(logging.DebugConfig())
				if err != nil {
					return fmt.Errorf("failed to setup debug logging: %w", err)
				}
				loggingCleanup = cleanup
				slog.SetDefault(logger)
				slog.Debug("debug_logging_enabled", slog.String("log_file", logging.DefaultLogPath()))
			}

			if opts.profile.Enabled() {
				s, err := profiling.Start(opts.profile)
				if err != nil {
					return err
				}
				profiler = s
			}
			return nil
		},
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			var err error
			if profiler != nil {
				err = profiler.Stop()
				profiler = nil
			}
			if loggingCleanup != nil {
				loggingCleanup()
				loggingCleanup = nil
			}
			return err
		},
	}

	cmd.SetVersionTemplate("lexrag version {{.Version}}\n")

	cmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "Enable debug logging to ~/.lexrag/logs/")
	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "Config file (default: .lexrag.yaml in the project)")
	cmd.PersistentFlags().StringVarP(&opts.docsDir, "docs", "d", ".", "Directory or file with the documents to index")

	cmd.PersistentFlags().StringVar(&opts.profile.CPU, "profile-cpu", "", "Write CPU profile to file")
	cmd.PersistentFlags().StringVar(&opts.profile.Heap, "profile-mem", "", "Write memory profile to file")
	cmd.PersistentFlags().StringVar(&opts.profile.Trace, "profile-trace", "", "Write execution trace to file")

	cmd.AddCommand(newSearchCmd(&opts))
	cmd.AddCommand(newIndexCmd(&opts))
	cmd.AddCommand(newServeCmd(&opts))
	cmd.AddCommand(newValidateCmd(&opts))
	cmd.AddCommand(newInitCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// Execute runs the root command and prints any error for the user.
func Execute() error {
	root := NewRootCmd()
	err := root.Execute()
	if err != nil {
		root.PrintErrln(lexerrors.FormatForUser(err))
	}
	return err
}
