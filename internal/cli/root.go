// Package cli implements the mobcsv command line.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/mobcsv/internal/config"
	"github.com/JonMunkholm/mobcsv/internal/core"
	"github.com/JonMunkholm/mobcsv/internal/logging"
)

// Version is overridden at build time with -ldflags "-X ...cli.Version=".
var Version = "dev"

// Run executes mobcsv with args and returns the process exit code.
func Run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetIn(stdin)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(stderr, "mobcsv: %v\n", err)
		if core.IsUserFacing(err) {
			fmt.Fprintln(stderr, core.FormatUserError(err))
		}
		return 1
	}
	return 0
}

// app is the state shared by every command.
type app struct {
	cfg    *config.Config
	logger *slog.Logger

	verbose   int
	quiet     bool
	logFormat string
}

// setup loads configuration and configures logging. Flags override the
// environment.
func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	switch {
	case a.quiet:
		cfg.Logging.Level = "error"
	case a.verbose > 0:
		cfg.Logging.Level = logging.VerbosityLevel(cfg.Logging.Level, a.verbose)
	}
	if cmd.Flags().Changed("log-format") {
		cfg.Logging.Format = a.logFormat
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	a.cfg = cfg
	a.logger = logging.Setup(cmd.ErrOrStderr(), cfg.Logging.Level, cfg.Logging.Format)
	a.logger.Debug("configuration loaded", "config", cfg.String())
	return nil
}

func newRootCmd() *cobra.Command {
	a := &app{}
	var opts normalizeOptions

	cmd := &cobra.Command{
		Use:   "mobcsv [flags] INPUT -o OUTPUT",
		Short: "Normalize and validate mobile numbers in a ph,name,count CSV",
		Long: `mobcsv reads a CSV with a ph,name,count header, cleans up each phone
number, infers the Egyptian (20) or Saudi (966) country code, and writes the
records that pass validation to OUTPUT. Use "-" for stdin or stdout.`,
		Version:       Version,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runNormalize(cmd, args[0], opts)
		},
	}

	pf := cmd.PersistentFlags()
	pf.CountVarP(&a.verbose, "verbose", "v", "raise the log level one step per use (-v debug, -vv trace)")
	pf.BoolVarP(&a.quiet, "quiet", "q", false, "only log errors")
	pf.StringVar(&a.logFormat, "log-format", "text", "log format: text|json")
	cmd.MarkFlagsMutuallyExclusive("verbose", "quiet")

	f := cmd.Flags()
	f.StringVarP(&opts.output, "output", "o", "", "output CSV path (required)")
	f.StringVar(&opts.rule, "rule", core.RuleStrictName, "validation rule: strict|legacy")
	f.StringVar(&opts.rejects, "rejects", "", "write rejected rows to this CSV")
	f.IntVar(&opts.bufferSize, "buffer-size", 64*1024, "I/O buffer size in bytes")
	_ = cmd.MarkFlagRequired("output")

	cmd.AddCommand(serveCmd(a), historyCmd(a), versionCmd())
	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the mobcsv version",
		Args:  cobra.NoArgs,
		// Skip config loading.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "mobcsv %s\n", Version)
		},
	}
}
