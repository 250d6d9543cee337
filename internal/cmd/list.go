package cmd

import (
	"strconv"
	"strings"

	"github.com/rodaine/table"
	"github.com/spf13/cobra"

	"github.com/ezerfernandes/mdspan/internal/codespan"
	"github.com/ezerfernandes/mdspan/internal/embed"
)

const previewWidth = 40

func listCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{ //nolint:exhaustruct
		Use:     "list [flags] [filename]",
		Aliases: []string{"ls"},
		Short:   "List code blocks after transformation",
		Args:    checkargs,
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := load(cmd, opts, source(args), false)
			if err != nil {
				return err
			}

			spans, err := walk(doc.tree, opts.filter)
			if err != nil {
				return err
			}

			tbl := table.New("#", "LANG", "LINE", "FILE", "CODE").WithWriter(cmd.OutOrStdout())

			for i, span := range spans {
				tbl.AddRow(i, langLabel(span), lineLabel(span), span.Meta.Get(embed.MetaFile), preview(span.Code))
			}

			tbl.Print()

			return nil
		},

		DisableAutoGenTag: true,
	}

	filterFlags(cmd, opts)

	return cmd
}

func langLabel(span *codespan.Span) string {
	if span.Lang == "" {
		return "-"
	}

	return span.Lang
}

func lineLabel(span *codespan.Span) string {
	if span.Line == 0 {
		return "-"
	}

	return strconv.Itoa(span.Line)
}

// preview returns the first line of code, shortened to previewWidth runes.
func preview(code string) string {
	line, _, _ := strings.Cut(strings.TrimLeft(code, "\n"), "\n")

	runes := []rune(line)
	if len(runes) > previewWidth {
		return string(runes[:previewWidth-1]) + "…"
	}

	return line
}
