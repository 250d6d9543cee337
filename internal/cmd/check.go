package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func checkCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{ //nolint:exhaustruct
		Use:   "check [flags] [filename]",
		Short: "Report unbalanced marker delimiters",
		Args:  checkargs,
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := load(cmd, opts, source(args), false)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()

			for _, w := range doc.report.Warnings {
				fmt.Fprintf(out, "%s: %s\n", doc.name, w)
			}

			if n := len(doc.report.Warnings); n > 0 {
				return fmt.Errorf("%s: %w: %d", doc.name, errUnbalanced, n)
			}

			fmt.Fprintf(out, "%s: ok, %d span(s)\n", doc.name, doc.report.Spans)

			return nil
		},

		DisableAutoGenTag: true,
	}

	return cmd
}
