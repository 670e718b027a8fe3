package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/lexrag/pkg/version"
)

func newVersionCmd() *cobra.Command {
	var jsonOutput, shortOutput, depsOutput bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long: `Print the lexrag version, commit, build date and platform.

--deps adds the versions of the stemmer, text normalization and MCP
libraries, which change ranking or the protocol between releases.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			info := version.Get()

			switch {
			case shortOutput:
				_, err := fmt.Fprintln(out, info.Version)
				return err
			case jsonOutput:
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(info)
			}

			if _, err := fmt.Fprintln(out, info.String()); err != nil {
				return err
			}
			if depsOutput {
				return writeDeps(out, info.Deps)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output version info as JSON")
	cmd.Flags().BoolVar(&shortOutput, "short", false, "Output only the version number")
	cmd.Flags().BoolVar(&depsOutput, "deps", false, "Also list ranking and protocol library versions")

	return cmd
}

func writeDeps(w io.Writer, deps map[string]string) error {
	for _, path := range version.Tracked {
		v, ok := deps[path]
		if !ok {
			v = "(not linked)"
		}
		if _, err := fmt.Fprintf(w, "  %-40s %s\n", path, v); err != nil {
			return err
		}
	}
	return nil
}
