package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/lexrag/internal/output"
	"github.com/Aman-CERP/lexrag/internal/validation"
)

func newValidateCmd(global *globalOptions) *cobra.Command {
	var (
		limit  int
		format string
	)

	cmd := &cobra.Command{
		Use:   "validate <queries.yaml>",
		Short: "Check search relevance against a query file",
		Long: `Run the queries in a YAML file against the documents and report which
ones returned their expected documents.

The file has three sections. tier1 and tier2 entries list the document IDs
expected among the results. negative entries must return nothing from the
first pass. The command fails when any query fails, so it can gate CI.

Example queries.yaml:
  tier1:
    - id: T1-Q1
      query: horario de atención
      expected: [horario]
  negative:
    - id: N-Q1
      query: astrofotografía`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd.Context(), cmd, global, args[0], limit, format)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 3, "Results checked per query")
	cmd.Flags().StringVarP(&format, "format", "f", "text", "Output format: text, json")

	return cmd
}

func runValidate(ctx context.Context, cmd *cobra.Command, global *globalOptions, queriesPath string, limit int, formatName string) error {
	format, err := output.ParseFormat(formatName)
	if err != nil {
		return err
	}
	queries, err := validation.LoadQueries(queriesPath)
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

	v, err := validation.NewValidator(ws.engine, limit, cfg.Search.Threshold)
	if err != nil {
		return err
	}
	result, err := v.RunAll(ctx, queries)
	if err != nil {
		return err
	}

	if format == output.FormatJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			return err
		}
	} else {
		printValidation(output.New(cmd.OutOrStdout()), result)
	}

	if n := result.Failures(); n > 0 {
		return fmt.Errorf("validation failed: %d of %d queries", n, queries.Len())
	}
	return nil
}

func printValidation(out *output.Writer, result *validation.Result) {
	tiers := []struct {
		name string
		tier *validation.TierResult
	}{
		{"Tier 1", &result.Tier1},
		{"Tier 2", &result.Tier2},
		{"Negative", &result.Negative},
	}
	for _, t := range tiers {
		if t.tier.Total == 0 {
			continue
		}
		for _, r := range t.tier.Results {
			line := fmt.Sprintf("%s %q -> %v", r.Spec.ID, r.Spec.Query, r.TopResults)
			switch {
			case r.Error != "":
				out.Error(line + ": " + r.Error)
			case r.Passed:
				out.Success(line)
			default:
				out.Error(line)
			}
		}
		out.Status("", fmt.Sprintf("%s: %d/%d passed", t.name, t.tier.Pass, t.tier.Total))
	}
}
