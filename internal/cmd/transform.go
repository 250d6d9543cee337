package cmd

import (
	_ "embed"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/ezerfernandes/mdspan/internal/highlight"
	"github.com/ezerfernandes/mdspan/internal/mdast"
)

//go:embed help/transform.md
var transformHelp string

func transformCmd(opts *options) *cobra.Command {
	var (
		to        string
		output    string
		withEmbed bool
		css       bool
	)

	cmd := &cobra.Command{ //nolint:exhaustruct
		Use:     "transform [flags] [filename]",
		Aliases: []string{"t"},
		Short:   "Replace marker spans with code blocks",
		Long:    transformHelp,
		Args:    checkargs,
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := load(cmd, opts, source(args), withEmbed)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()

			if output != "" {
				file, err := os.OpenFile(output, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, fileMode)
				if err != nil {
					return err
				}

				defer file.Close()

				out = file
			}

			return write(out, doc.tree, to, opts.cfg.Style, css)
		},

		DisableAutoGenTag: true,
	}

	cmd.Flags().StringVarP(&to, "to", "t", formatMarkdown, "output format: markdown, json or html")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to file instead of stdout")
	cmd.Flags().BoolVarP(&withEmbed, "embed", "e", false, "fill code naming a file=... with the file content")
	cmd.Flags().BoolVar(&css, "css", false, "prepend the highlighting style sheet to html output")

	return cmd
}

func write(w io.Writer, tree mdast.Node, format, style string, css bool) error {
	switch format {
	case formatMarkdown, "md":
		return mdast.WriteMarkdown(w, tree)
	case formatJSON:
		return mdast.Encode(w, tree)
	case formatHTML:
		renderer := highlight.NewRenderer(style)

		if css {
			if _, err := io.WriteString(w, "<style>\n"); err != nil {
				return err
			}

			if err := renderer.WriteCSS(w); err != nil {
				return err
			}

			if _, err := io.WriteString(w, "</style>\n"); err != nil {
				return err
			}
		}

		return renderer.Render(w, tree)
	}

	return fmt.Errorf("%w: %q", errUnknownFormat, format)
}
