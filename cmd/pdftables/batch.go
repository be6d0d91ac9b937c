package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/JonMunkholm/pdftables/internal/assemble"
	"github.com/JonMunkholm/pdftables/internal/batch"
	"github.com/JonMunkholm/pdftables/internal/config"
	"github.com/JonMunkholm/pdftables/internal/extract"
	"github.com/JonMunkholm/pdftables/internal/history"
	"github.com/spf13/cobra"
)

type batchFlags struct {
	in      string
	out     string
	format  string
	layout  string
	workers int
	report  bool
}

func newBatchCommand(cfg *config.Config) *cobra.Command {
	var flags batchFlags
	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Convert every document in a folder into one spreadsheet each",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			applyBatchFlags(cmd, &flags, &cfg.Batch)
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runBatch(ctx, cfg, flags.report)
		},
	}
	cmd.Flags().StringVar(&flags.in, "in", "", "input folder (default from PDFTABLES_INPUT_DIR)")
	cmd.Flags().StringVar(&flags.out, "out", "", "output folder (default from PDFTABLES_OUTPUT_DIR)")
	cmd.Flags().StringVar(&flags.format, "format", "", "output format: xlsx or csv")
	cmd.Flags().StringVar(&flags.layout, "layout", "", "sheet layout: combined or per-table")
	cmd.Flags().IntVar(&flags.workers, "workers", 0, "files converted in parallel")
	cmd.Flags().BoolVar(&flags.report, "json", false, "print the run report as JSON")
	return cmd
}

// applyBatchFlags overrides environment settings with explicitly set flags.
func applyBatchFlags(cmd *cobra.Command, flags *batchFlags, bc *config.BatchConfig) {
	if cmd.Flags().Changed("in") {
		bc.InputDir = flags.in
	}
	if cmd.Flags().Changed("out") {
		bc.OutputDir = flags.out
	}
	if cmd.Flags().Changed("format") {
		bc.Format = flags.format
	}
	if cmd.Flags().Changed("layout") {
		bc.Layout = flags.layout
	}
	if cmd.Flags().Changed("workers") {
		bc.Workers = flags.workers
	}
}

func runBatch(ctx context.Context, cfg *config.Config, printJSON bool) error {
	format, err := assemble.ParseFormat(cfg.Batch.Format)
	if err != nil {
		return err
	}
	layout, err := assemble.ParseLayout(cfg.Batch.Layout)
	if err != nil {
		return err
	}

	bc := batch.Config{
		InputDir:    cfg.Batch.InputDir,
		OutputDir:   cfg.Batch.OutputDir,
		Format:      format,
		Layout:      layout,
		Workers:     cfg.Batch.Workers,
		FileTimeout: cfg.Batch.FileTimeout,
		Registry:    extract.DefaultRegistry(extractOptions(cfg.Extract)),
	}

	if cfg.Database.Enabled() {
		store, err := openHistory(ctx, cfg.Database)
		if err != nil {
			slog.Warn("run history disabled", "error", err)
		} else {
			defer store.Close()
			bc.Recorder = store
		}
	}

	report, err := batch.New(bc).Run(ctx)
	if report != nil {
		if printJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			if encErr := enc.Encode(report); encErr != nil {
				return encErr
			}
		} else {
			printSummary(report)
		}
	}
	if err != nil {
		return err
	}
	if report.Failed() > 0 {
		return errFilesFailed
	}
	return nil
}

func openHistory(ctx context.Context, dbc config.DatabaseConfig) (*history.Store, error) {
	store, err := history.Open(ctx, dbc)
	if err != nil {
		return nil, err
	}
	if err := store.EnsureSchema(ctx); err != nil {
		store.Close()
		return nil, err
	}
	return store, nil
}

func printSummary(r *batch.Report) {
	for _, f := range r.Files {
		if f.OK() {
			fmt.Printf("ok    %s -> %s (%d tables)\n", f.File, f.Output, f.Tables)
			continue
		}
		fmt.Printf("fail  %s: %s (%s)\n", f.File, f.Message, f.Code)
	}
	fmt.Printf("%d files, %d failed, %d tables\n", len(r.Files), r.Failed(), r.Tables())
}
