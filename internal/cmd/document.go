package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ezerfernandes/mdspan/internal/codespan"
	"github.com/ezerfernandes/mdspan/internal/embed"
	"github.com/ezerfernandes/mdspan/internal/mdast"
)

const (
	formatMarkdown = "markdown"
	formatJSON     = "json"
	formatHTML     = "html"
)

var (
	errTooManyArgs    = errors.New("too many arguments")
	errUnknownFormat  = errors.New("unknown format")
	errMissingCommand = errors.New("command is required after '--'")
	errUnbalanced     = errors.New("unbalanced delimiters")
)

// document is a parsed and transformed input file.
type document struct {
	name   string
	tree   mdast.Node
	report *codespan.Report
}

func readSource(cmd *cobra.Command, filename string) ([]byte, error) {
	if filename == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}

	return os.ReadFile(filename)
}

func inputFormat(from, filename string) (string, error) {
	switch strings.ToLower(from) {
	case "":
		if strings.EqualFold(filepath.Ext(filename), ".json") {
			return formatJSON, nil
		}

		return formatMarkdown, nil
	case formatMarkdown, "md":
		return formatMarkdown, nil
	case formatJSON:
		return formatJSON, nil
	}

	return "", fmt.Errorf("%w: %q", errUnknownFormat, from)
}

func parse(data []byte, format, delimiter string) (mdast.Node, error) {
	if format == formatJSON {
		return mdast.Decode(bytes.NewReader(data))
	}

	return mdast.FromMarkdown(data, mdast.WithMarkerDelimiter(delimiter))
}

// load reads, parses and transforms filename ("-" for stdin). Unbalanced
// delimiters are logged as warnings. With withEmbed set, code naming a
// file is filled from the embed root.
func load(cmd *cobra.Command, opts *options, filename string, withEmbed bool) (*document, error) {
	logger := loggerFromContext(cmd.Context())
	prog := newProgress(logger)

	data, err := readSource(cmd, filename)
	if err != nil {
		return nil, err
	}

	format, err := inputFormat(opts.from, filename)
	if err != nil {
		return nil, err
	}

	tree, err := parse(data, format, opts.cfg.Delimiter)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}

	tr, err := opts.transformer()
	if err != nil {
		return nil, err
	}

	out, report, err := tr.Transform(tree)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}

	for _, w := range report.Warnings {
		logger.Warn(w.Message, "file", filename, "path", w.Path, "line", w.Pos.Line)
	}

	if withEmbed {
		var filled int

		out, filled, err = embed.Resolve(out, os.DirFS(opts.cfg.EmbedRoot))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filename, err)
		}

		logger.Debug("embedded files", "file", filename, "count", filled)
	}

	prog.done("transformed", "file", filename, "format", format, "spans", report.Spans)

	return &document{name: filename, tree: out, report: report}, nil
}
