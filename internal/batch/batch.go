// Package batch converts every supported document in a folder into one
// spreadsheet per document.
//
// Files are processed concurrently by a bounded worker pool. A failing file
// never aborts the run: its error is recorded in the report and the remaining
// files carry on.
package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/JonMunkholm/pdftables/internal/assemble"
	"github.com/JonMunkholm/pdftables/internal/core"
	"github.com/JonMunkholm/pdftables/internal/extract"
	"github.com/JonMunkholm/pdftables/internal/logging"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Defaults applied by New to zero Config fields.
const (
	DefaultWorkers     = 4
	DefaultFileTimeout = 5 * time.Minute
)

// Recorder persists finished runs.
type Recorder interface {
	RecordRun(ctx context.Context, r *Report) error
}

// Config describes one batch run.
type Config struct {
	InputDir  string
	OutputDir string
	Format    assemble.Format
	Layout    assemble.Layout

	// Workers is the number of files converted in parallel.
	Workers int

	// FileTimeout bounds extraction and writing of a single file.
	FileTimeout time.Duration

	// Registry selects extractors by extension. Nil uses the built-in ones.
	Registry *extract.Registry

	// Recorder, if set, receives every finished report.
	Recorder Recorder
}

// Runner executes batch runs.
type Runner struct {
	cfg Config
}

// New returns a runner for cfg, filling in defaults.
func New(cfg Config) *Runner {
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultWorkers
	}
	if cfg.FileTimeout <= 0 {
		cfg.FileTimeout = DefaultFileTimeout
	}
	if cfg.Registry == nil {
		cfg.Registry = extract.DefaultRegistry(extract.DefaultOptions())
	}
	return &Runner{cfg: cfg}
}

// Run converts every supported file directly inside the input folder.
//
// The returned error covers problems with the run as a whole (unreadable
// input folder, output folder not creatable, cancellation). Per-file
// failures are only reported in Report.Files.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	report := &Report{
		RunID:     uuid.New(),
		InputDir:  r.cfg.InputDir,
		OutputDir: r.cfg.OutputDir,
		Format:    r.cfg.Format.String(),
		Layout:    r.cfg.Layout.String(),
		StartedAt: time.Now().UTC(),
	}
	logger := logging.WithFields(ctx, "run_id", report.RunID.String())

	files, err := r.inputFiles()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(r.cfg.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	logger.Info("batch started",
		"input", r.cfg.InputDir,
		"output", r.cfg.OutputDir,
		"files", len(files),
		"workers", r.cfg.Workers,
	)

	outputs := outputNames(files, r.cfg.Format.Ext())
	report.Files = make([]FileResult, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.cfg.Workers)
	for i, path := range files {
		i, path := i, path
		g.Go(func() error {
			res := r.processFile(gctx, path, filepath.Join(r.cfg.OutputDir, outputs[i]))
			logFile(logger, res)
			report.Files[i] = res
			return nil
		})
	}
	_ = g.Wait()

	report.Duration = time.Since(report.StartedAt)

	stats := report.Stats()
	logger.Info("batch finished",
		"files", len(report.Files),
		"failed", report.Failed(),
		"tables", report.Tables(),
		"cells", stats.Cells,
		"duration", report.Duration.Round(time.Millisecond),
	)

	if r.cfg.Recorder != nil {
		// A cancelled run is still recorded.
		recCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
		if err := r.cfg.Recorder.RecordRun(recCtx, report); err != nil {
			logger.Warn("failed to record run", "error", err)
		}
		cancel()
	}

	if err := ctx.Err(); err != nil {
		return report, err
	}
	return report, nil
}

// inputFiles lists supported files in the input folder, sorted by name.
func (r *Runner) inputFiles() ([]string, error) {
	entries, err := os.ReadDir(r.cfg.InputDir)
	if err != nil {
		return nil, fmt.Errorf("read input dir: %w", err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if !r.cfg.Registry.Supported(e.Name()) {
			slog.Debug("skipping unsupported file", "file", e.Name())
			continue
		}
		files = append(files, filepath.Join(r.cfg.InputDir, e.Name()))
	}
	return files, nil
}

// outputNames derives output file names from input base names
// ("report.pdf" -> "report.xlsx"). Inputs sharing a base name keep their
// source extension to stay distinct ("report.pdf" -> "report_pdf.xlsx").
// A name that is still taken gets a counter ("a_pdf_2.xlsx").
func outputNames(files []string, ext string) []string {
	stems := make([]string, len(files))
	seen := make(map[string]int, len(files))
	for i, f := range files {
		base := filepath.Base(f)
		stems[i] = strings.TrimSuffix(base, filepath.Ext(base))
		seen[strings.ToLower(stems[i])]++
	}

	names := make([]string, len(files))
	taken := make(map[string]bool, len(files))
	for i, f := range files {
		stem := stems[i]
		if seen[strings.ToLower(stem)] > 1 {
			stem += "_" + strings.TrimPrefix(strings.ToLower(filepath.Ext(f)), ".")
		}
		name := stem
		for n := 2; taken[strings.ToLower(name)]; n++ {
			name = fmt.Sprintf("%s_%d", stem, n)
		}
		taken[strings.ToLower(name)] = true
		names[i] = name + ext
	}
	return names
}

// processFile converts one file. It never panics and never returns an
// error: failures are stored in the result.
func (r *Runner) processFile(ctx context.Context, path, output string) (res FileResult) {
	res.File = filepath.Base(path)
	start := time.Now()
	defer func() {
		if p := recover(); p != nil {
			res.setErr(fmt.Errorf("%w: panic: %v", core.ErrExtractFailed, p))
		}
		res.Duration = time.Since(start)
	}()

	if err := ctx.Err(); err != nil {
		res.setErr(err)
		return res
	}

	fctx, cancel := context.WithTimeout(ctx, r.cfg.FileTimeout)
	defer cancel()

	conv, err := core.ConvertFile(fctx, r.cfg.Registry, path)
	if err != nil {
		res.setErr(err)
		return res
	}
	res.Tables = len(conv.Tables)
	res.Stats = conv.Stats

	if err := conv.Save(output, r.cfg.Format, r.cfg.Layout); err != nil {
		res.setErr(err)
		return res
	}
	if err := fctx.Err(); err != nil {
		_ = os.Remove(output)
		res.setErr(err)
		return res
	}

	res.Output = output
	return res
}

func logFile(logger *slog.Logger, res FileResult) {
	if res.Err != nil {
		level := slog.LevelError
		if errors.Is(res.Err, extract.ErrNoTables) {
			level = slog.LevelWarn
		}
		logger.Log(context.Background(), level, "file failed",
			"file", res.File,
			"code", res.Code,
			"error", res.Err,
		)
		return
	}
	logger.Info("file converted",
		"file", res.File,
		"output", res.Output,
		"tables", res.Tables,
		"cells", res.Stats.Cells,
		"rewritten", res.Stats.Rewritten,
		"duration", res.Duration.Round(time.Millisecond),
	)
}
