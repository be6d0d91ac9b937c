package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/JonMunkholm/pdftables/internal/config"
	"github.com/JonMunkholm/pdftables/internal/ocr"
)

func TestNormalizeCommand_Args(t *testing.T) {
	cmd := newNormalizeCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--explain", "1.234,50", "(99.5)", "Total"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	want := "1234,50\teuropean\n-99,5\tparenthesized\nTotal\topaque\n"
	if out.String() != want {
		t.Errorf("output = %q, want %q", out.String(), want)
	}
}

func TestNormalizeCommand_Stdin(t *testing.T) {
	cmd := newNormalizeCommand()
	var out bytes.Buffer
	cmd.SetIn(strings.NewReader("Item,Amount\nRent,\"$1,234.50\"\n"))
	cmd.SetOut(&out)
	cmd.SetArgs(nil)

	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	want := "Item,Amount\nRent,\"1234,50\"\n"
	if out.String() != want {
		t.Errorf("output = %q, want %q", out.String(), want)
	}
}

func TestApplyBatchFlags(t *testing.T) {
	cmd := newBatchCommand(&config.Config{})
	if err := cmd.ParseFlags([]string{"--in", "scans", "--workers", "8"}); err != nil {
		t.Fatal(err)
	}

	bc := config.BatchConfig{InputDir: "pdfs", OutputDir: "output_tables", Workers: 4, Format: "xlsx"}
	var flags batchFlags
	flags.in, _ = cmd.Flags().GetString("in")
	flags.workers, _ = cmd.Flags().GetInt("workers")
	applyBatchFlags(cmd, &flags, &bc)

	if bc.InputDir != "scans" || bc.Workers != 8 {
		t.Errorf("overridden = %+v", bc)
	}
	if bc.OutputDir != "output_tables" || bc.Format != "xlsx" {
		t.Errorf("unset flags changed config: %+v", bc)
	}
}

func TestRunBatch(t *testing.T) {
	in := t.TempDir()
	out := filepath.Join(t.TempDir(), "tables")
	if err := os.WriteFile(filepath.Join(in, "good.csv"), []byte("a,b\n\"1.5\",x\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := &config.Config{Batch: config.BatchConfig{InputDir: in, OutputDir: out, Format: "csv", Workers: 1}}
	if err := runBatch(context.Background(), cfg, false); err != nil {
		t.Fatalf("runBatch() error = %v", err)
	}
	data, err := os.ReadFile(filepath.Join(out, "good.csv"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"1,5"`) {
		t.Errorf("output = %s", data)
	}

	if err := os.WriteFile(filepath.Join(in, "empty.csv"), []byte("\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := runBatch(context.Background(), cfg, false); !errors.Is(err, errFilesFailed) {
		t.Errorf("runBatch() with failing file error = %v, want errFilesFailed", err)
	}
}

func TestRunBatch_BadFormat(t *testing.T) {
	cfg := &config.Config{Batch: config.BatchConfig{InputDir: t.TempDir(), OutputDir: t.TempDir(), Format: "ods"}}
	if err := runBatch(context.Background(), cfg, false); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestExtractOptions(t *testing.T) {
	opts := extractOptions(config.ExtractConfig{
		RowTolerance:   3,
		ColumnGap:      8,
		MinColumns:     2,
		OCRLanguage:    "eng+deu",
		OCRPageSegMode: 11,
	})

	if opts.PageSegMode != ocr.PSM_SPARSE_TEXT {
		t.Errorf("PageSegMode = %d, want %d", opts.PageSegMode, ocr.PSM_SPARSE_TEXT)
	}
	if opts.OCRLanguage != "eng+deu" || opts.ColumnGap != 8 {
		t.Errorf("options = %+v", opts)
	}
}
