package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/mobcsv/internal/config"
	"github.com/JonMunkholm/mobcsv/internal/core"
	"github.com/JonMunkholm/mobcsv/internal/csv"
	"github.com/JonMunkholm/mobcsv/internal/history"
	"github.com/JonMunkholm/mobcsv/internal/logging"
)

// stdio is the path that selects stdin or stdout.
const stdio = "-"

// recordTimeout bounds connecting to and writing run history.
var recordTimeout = 5 * time.Second

type normalizeOptions struct {
	output     string
	rule       string
	rejects    string
	bufferSize int
}

func (a *app) runNormalize(cmd *cobra.Command, input string, opts normalizeOptions) error {
	ruleName := a.cfg.Pipeline.Rule
	if cmd.Flags().Changed("rule") {
		ruleName = opts.rule
	}
	rule, err := core.RuleByName(ruleName)
	if err != nil {
		return err
	}

	if cmd.Flags().Changed("buffer-size") {
		a.cfg.Pipeline.BufferSize = opts.bufferSize
		if err := a.cfg.Validate(); err != nil {
			return err
		}
	}

	if err := checkDistinct(input, opts.output, opts.rejects); err != nil {
		return err
	}

	runID := uuid.New()
	ctx := logging.WithRunID(cmd.Context(), runID.String())
	logger := logging.WithFields(ctx, "input", input, "output", opts.output, "rule", rule.Name)
	logger.Info("run started")

	started := time.Now()
	res, runErr := a.normalizeFile(ctx, cmd, rule, input, opts)
	a.recordRun(ctx, history.NewRun(runID, "cli", input, opts.output, started, res, runErr))
	if runErr != nil {
		if res != nil {
			logger.Error("run failed", "read", res.Read, "accepted", res.Accepted, "error", runErr)
		}
		return runErr
	}

	logger.Info("run complete",
		"read", res.Read,
		"accepted", res.Accepted,
		"rejected", res.Rejected,
		"regions", formatRegions(res.Regions),
		"bytes", res.BytesRead,
		"duration", res.Duration.Round(time.Millisecond),
	)
	return nil
}

// normalizeFile runs the pipeline from input to output. Every opened file is
// flushed and closed before it returns, including on error.
func (a *app) normalizeFile(ctx context.Context, cmd *cobra.Command, rule core.Rule, input string, opts normalizeOptions) (res *core.Result, err error) {
	size := a.cfg.Pipeline.BufferSize

	in, err := openInput(cmd, input)
	if err != nil {
		return nil, err
	}
	defer in.Close()

	// Rejects first, so a bad rejects path fails before the output is
	// truncated.
	p := core.NewPipeline(rule)
	if opts.rejects != "" {
		rej, rerr := openOutput(cmd, opts.rejects, size)
		if rerr != nil {
			return nil, rerr
		}
		defer func() { err = errors.Join(err, rej.Close()) }()
		p.Rejects = csv.NewRejectEncoder(rej)
	}

	out, err := openOutput(cmd, opts.output, size)
	if err != nil {
		return nil, err
	}
	defer func() { err = errors.Join(err, out.Close()) }()

	return p.Run(ctx, csv.NewDecoder(bufio.NewReaderSize(in, size)), csv.NewEncoder(out))
}

// recordRun stores run in history when DATABASE_URL is set. Failures only
// warn; the run result stands.
func (a *app) recordRun(ctx context.Context, run history.Run) {
	if !a.cfg.Database.HistoryEnabled() {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), recordTimeout)
	defer cancel()

	store, closeStore, err := openHistory(ctx, a.cfg.Database)
	if err != nil {
		logging.FromContext(ctx).Warn("run history unavailable", "error", err)
		return
	}
	defer closeStore()

	if err := store.Record(ctx, run); err != nil {
		logging.FromContext(ctx).Warn("failed to record run", "error", err)
	}
}

type runRecorder interface {
	Record(context.Context, history.Run) error
}

// openHistory connects to the history database. Tests replace it.
var openHistory = func(ctx context.Context, cfg config.DatabaseConfig) (runRecorder, func(), error) {
	pool, store, err := history.Connect(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	return store, pool.Close, nil
}

func openInput(cmd *cobra.Command, path string) (io.ReadCloser, error) {
	if path == stdio {
		return io.NopCloser(cmd.InOrStdin()), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, ioError("open", path, err)
	}
	return f, nil
}

// bufferedFile flushes its buffer before closing the underlying file.
type bufferedFile struct {
	*bufio.Writer
	path   string
	closer io.Closer
}

func (f *bufferedFile) Close() error {
	if err := f.Flush(); err != nil {
		f.closer.Close()
		return ioError("flush", f.path, err)
	}
	if err := f.closer.Close(); err != nil {
		return ioError("close", f.path, err)
	}
	return nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

func openOutput(cmd *cobra.Command, path string, size int) (*bufferedFile, error) {
	if path == stdio {
		return &bufferedFile{Writer: bufio.NewWriterSize(cmd.OutOrStdout(), size), path: "stdout", closer: nopCloser{}}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, ioError("create", path, err)
	}
	return &bufferedFile{Writer: bufio.NewWriterSize(f, size), path: path, closer: f}, nil
}

// ioError drops the *fs.PathError wrapper so the path is not printed twice.
func ioError(op, path string, err error) error {
	var pe *fs.PathError
	if errors.As(err, &pe) {
		err = pe.Err
	}
	return &core.IOError{Op: op, Path: path, Err: err}
}

// checkDistinct refuses to truncate the input by writing over it, and to
// send output and rejects to the same place.
func checkDistinct(input, output, rejects string) error {
	if rejects != "" && samePath(output, rejects) {
		return fmt.Errorf("rejects %s would overwrite output %s", rejects, output)
	}
	if input == stdio {
		return nil
	}
	for _, out := range []string{output, rejects} {
		if out != "" && out != stdio && samePath(input, out) {
			return fmt.Errorf("output %s would overwrite input %s", out, input)
		}
	}
	return nil
}

func samePath(a, b string) bool {
	if a == stdio || b == stdio {
		return a == b
	}
	aAbs, err := filepath.Abs(a)
	if err != nil {
		return a == b
	}
	bAbs, err := filepath.Abs(b)
	if err != nil {
		return a == b
	}
	return aAbs == bAbs
}

func formatRegions(c core.RegionCounts) string {
	regions := c.Regions()
	parts := make([]string, 0, len(regions))
	for _, r := range regions {
		parts = append(parts, fmt.Sprintf("%s=%d", r, c[r]))
	}
	return strings.Join(parts, " ")
}
