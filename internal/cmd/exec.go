package cmd

import (
	"context"
	_ "embed"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"

	"github.com/ezerfernandes/mdspan/internal/codespan"
	"github.com/ezerfernandes/mdspan/internal/embed"
)

//go:embed help/exec.md
var execHelp string

type spanInfo struct {
	index    int
	lang     string
	file     string
	tempPath string
	line     int
}

func execCmd(opts *options) *cobra.Command {
	var (
		batch     bool
		withEmbed bool
	)

	cmd := &cobra.Command{ //nolint:exhaustruct
		Use:     "exec [flags] [filename] [-- command]",
		Aliases: []string{"x"},
		Short:   "Execute shell commands on individual code blocks",
		Long:    execHelp,
		Args:    execArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.createStatus(cmd.ErrOrStderr())

			scr, args := script(cmd, args)
			if len(scr) == 0 {
				return errMissingCommand
			}

			if !cmd.Flag("dir").Changed {
				dir, err := os.MkdirTemp("", "mdspan-exec-")
				if err != nil {
					return err
				}

				opts.dir = dir

				if !opts.keep {
					defer os.RemoveAll(dir)
				}
			}

			doc, err := load(cmd, opts, source(args), withEmbed)
			if err != nil {
				return err
			}

			spans, err := walk(doc.tree, opts.filter)
			if err != nil {
				return err
			}

			dir, err := filepath.Abs(opts.dir)
			if err != nil {
				return err
			}

			x := &executor{
				ctx:    cmd.Context(),
				dir:    dir,
				stdout: cmd.OutOrStdout(),
				stderr: cmd.ErrOrStderr(),
				status: opts.status,
			}

			if batch {
				return x.batch(spans, scr)
			}

			return x.perSpan(doc.name, spans, scr)
		},

		DisableAutoGenTag: true,
	}

	filterFlags(cmd, opts)
	dirFlag(cmd, opts)
	quietFlag(cmd, opts)

	cmd.Flags().BoolVar(&batch, "batch", false, "run command once for all files instead of once per block")
	cmd.Flags().BoolVarP(&opts.keep, "keep", "k", false, "don't remove temporary directory")
	cmd.Flags().BoolVarP(&withEmbed, "embed", "e", false, "fill code naming a file=... with the file content")

	return cmd
}

func execArgs(cmd *cobra.Command, args []string) error {
	if dash := cmd.ArgsLenAtDash(); dash >= 0 {
		args = args[:dash]
	}

	return checkargs(cmd, args)
}

// script returns the command after "--" and the arguments before it.
func script(cmd *cobra.Command, args []string) (string, []string) {
	dash := cmd.ArgsLenAtDash()
	if dash < 0 {
		return "", args
	}

	return strings.Join(args[dash:], " "), args[:dash]
}

type executor struct {
	ctx    context.Context //nolint:containedctx
	dir    string
	stdout io.Writer
	stderr io.Writer
	status statusFunc
}

func (x *executor) perSpan(filename string, spans codespan.Spans, scr string) error {
	var failures int

	for index, span := range spans {
		info := x.writeTemp(span, index)
		if info == nil {
			continue
		}

		x.status("--- block %d (%s%s) : L%d : %s ---\n",
			info.index, info.lang, fileLabel(info.file), info.line, filepath.Base(filename))

		exitCode, err := x.run(expandCommand(scr, info, x.dir))
		if err != nil {
			return err
		}

		if exitCode != 0 {
			failures++
		}
	}

	if failures > 0 {
		return fmt.Errorf("%d block(s) failed", failures)
	}

	return nil
}

func (x *executor) batch(spans codespan.Spans, scr string) error {
	paths := make([]string, 0, len(spans))

	for index, span := range spans {
		if info := x.writeTemp(span, index); info != nil {
			paths = append(paths, info.tempPath)
		}
	}

	if len(paths) == 0 {
		return nil
	}

	expanded := strings.ReplaceAll(scr, "{}", strings.Join(paths, " "))
	expanded = strings.ReplaceAll(expanded, "{dir}", x.dir)

	x.status("--- batch (%d blocks) ---\n", len(paths))

	exitCode, err := x.run(expanded)
	if err != nil {
		return err
	}

	if exitCode != 0 {
		return fmt.Errorf("command exited with %d", exitCode)
	}

	return nil
}

func (x *executor) writeTemp(span *codespan.Span, index int) *spanInfo {
	info := &spanInfo{
		index: index,
		lang:  span.Lang,
		file:  span.Meta.Get(embed.MetaFile),
		line:  span.Line,
	}

	info.tempPath = filepath.Join(x.dir, tempFilename(span, index))

	if err := os.MkdirAll(filepath.Dir(info.tempPath), dirMode); err != nil {
		x.status("warning: failed to create directory for block %d: %v\n", index, err)

		return nil
	}

	if err := os.WriteFile(info.tempPath, []byte(span.Code), fileMode); err != nil {
		x.status("warning: failed to write block %d: %v\n", index, err)

		return nil
	}

	return info
}

func tempFilename(span *codespan.Span, index int) string {
	if file := span.Meta.Get(embed.MetaFile); len(file) != 0 {
		return fmt.Sprintf("%d_%s", index, filepath.Base(filepath.FromSlash(file)))
	}

	return fmt.Sprintf("block_%d%s", index, langExtension(span.Lang))
}

func langExtension(lang string) string {
	if len(lang) > 0 {
		return "." + strings.ToLower(lang)
	}

	return ".txt"
}

func expandCommand(scr string, info *spanInfo, dir string) string {
	expanded := strings.ReplaceAll(scr, "{}", info.tempPath)
	expanded = strings.ReplaceAll(expanded, "{lang}", info.lang)
	expanded = strings.ReplaceAll(expanded, "{index}", fmt.Sprint(info.index))
	expanded = strings.ReplaceAll(expanded, "{dir}", dir)

	return expanded
}

func (x *executor) run(command string) (int, error) {
	file, err := syntax.NewParser().Parse(strings.NewReader(command), "")
	if err != nil {
		return -1, err
	}

	runner, err := interp.New(interp.Dir(x.dir), interp.StdIO(nil, x.stdout, x.stderr))
	if err != nil {
		return -1, err
	}

	err = runner.Run(x.ctx, file)
	if err != nil {
		if status, ok := interp.IsExitStatus(err); ok {
			return int(status), nil
		}

		return -1, err
	}

	return 0, nil
}

func fileLabel(file string) string {
	if len(file) != 0 {
		return ", file=" + file
	}

	return ""
}
