// Package cmd implements the mdspan command line interface.
package cmd

import (
	"context"
	_ "embed"
	"fmt"
	"io"
	"os"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/ezerfernandes/mdspan/internal/codespan"
	"github.com/ezerfernandes/mdspan/internal/config"
	"github.com/ezerfernandes/mdspan/internal/highlight"
)

//go:embed help/root.md
var rootHelp string

const (
	dirMode  = 0o750
	fileMode = 0o600
)

type statusFunc func(format string, args ...interface{})

type options struct {
	configFile  string
	verbose     bool
	quiet       bool
	delimiter   string
	defaultLang string
	detect      bool
	from        string

	lang   []string
	meta   map[string]string
	filter filterFunc

	dir  string
	keep bool

	cfg    *config.Config
	status statusFunc
}

// Execute runs the mdspan command line with args and exits the process
// with status 1 on failure.
func Execute(args []string, stdout, stderr io.Writer) {
	if err := run(args, stdout, stderr); err != nil {
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	root := rootCmd()

	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	return root.ExecuteContext(context.Background())
}

func rootCmd() *cobra.Command {
	opts := &options{filter: acceptAll}

	root := &cobra.Command{ //nolint:exhaustruct
		Use:          "mdspan",
		Short:        "Promote $$-marked text in Markdown to code blocks",
		Long:         rootHelp,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			level := charmlog.InfoLevel
			if opts.verbose {
				level = charmlog.DebugLevel
			}

			cmd.SetContext(withLogger(cmd.Context(), newLogger(cmd.ErrOrStderr(), level)))

			return opts.configure(cmd)
		},

		DisableAutoGenTag: true,
	}

	flags := root.PersistentFlags()

	flags.StringVar(&opts.configFile, "config", "", "config file (default "+config.DefaultFile+" if present)")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")
	flags.StringVar(&opts.delimiter, "delimiter", codespan.DefaultDelimiter, "marker span delimiter")
	flags.StringVar(&opts.defaultLang, "lang-default", "", "language of spans without a language tag")
	flags.BoolVar(&opts.detect, "detect", false, "detect the language of untagged spans")
	flags.StringVar(&opts.from, "from", "", "input format: markdown or json (default by file extension)")

	root.AddCommand(transformCmd(opts))
	root.AddCommand(listCmd(opts))
	root.AddCommand(execCmd(opts))
	root.AddCommand(checkCmd(opts))

	return root
}

// configure loads the config file and applies explicitly set flags on top.
func (opts *options) configure(cmd *cobra.Command) error {
	cfg, err := config.Load(opts.configFile)
	if err != nil {
		return err
	}

	if cmd.Flags().Changed("delimiter") {
		cfg.Delimiter = opts.delimiter
	}

	if cmd.Flags().Changed("lang-default") {
		cfg.DefaultLang = opts.defaultLang
	}

	if cmd.Flags().Changed("detect") {
		cfg.Detect = opts.detect
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	opts.cfg = cfg

	return nil
}

func (opts *options) transformer() (*codespan.Transformer, error) {
	o := opts.cfg.Options()
	if opts.cfg.Detect {
		o.Detect = highlight.Detect
	}

	return codespan.New(o)
}

func (opts *options) createStatus(w io.Writer) {
	if opts.quiet {
		opts.status = func(string, ...interface{}) {}

		return
	}

	opts.status = func(format string, args ...interface{}) {
		fmt.Fprintf(w, format, args...)
	}
}

func langFlag(cmd *cobra.Command, opts *options) {
	cmd.Flags().StringSliceVarP(&opts.lang, "lang", "l", nil, "language glob patterns to accept")
}

func metaFlag(cmd *cobra.Command, opts *options) {
	cmd.Flags().StringToStringVarP(&opts.meta, "meta", "m", nil, "meta key=pattern pairs to accept")
}

func quietFlag(cmd *cobra.Command, opts *options) {
	cmd.Flags().BoolVarP(&opts.quiet, "quiet", "q", false, "suppress status output")
}

func dirFlag(cmd *cobra.Command, opts *options) {
	cmd.Flags().StringVarP(&opts.dir, "dir", "d", "", "working directory (default: a new temporary directory)")
}

// filterFlags builds opts.filter from --lang and --meta before the command runs.
func filterFlags(cmd *cobra.Command, opts *options) {
	langFlag(cmd, opts)
	metaFlag(cmd, opts)

	cmd.PreRunE = func(*cobra.Command, []string) error {
		f, err := filter(opts.lang, opts.meta)
		if err != nil {
			return err
		}

		opts.filter = f

		return nil
	}
}

func source(args []string) string {
	if len(args) == 0 {
		return "-"
	}

	return args[0]
}

func checkargs(_ *cobra.Command, args []string) error {
	if len(args) > 1 {
		return fmt.Errorf("%w: got %d", errTooManyArgs, len(args))
	}

	return nil
}
