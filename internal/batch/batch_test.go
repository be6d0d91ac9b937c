package batch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/JonMunkholm/pdftables/internal/assemble"
	"github.com/JonMunkholm/pdftables/internal/extract"
	"github.com/JonMunkholm/pdftables/internal/normalize"
)

// fakePDF dispatches on the file name so one folder can exercise every
// outcome.
func fakePDF(ctx context.Context, path string) ([]extract.Table, error) {
	switch filepath.Base(path) {
	case "broken.pdf":
		return nil, errors.New("malformed xref table")
	case "slow.pdf":
		<-ctx.Done()
		return nil, ctx.Err()
	case "panic.pdf":
		panic("nil page dictionary")
	}
	return []extract.Table{{
		Label:  "Stream Table 1",
		Family: extract.FamilyStream,
		Page:   1,
		Header: normalize.Cells("Item", "2019"),
		Rows:   [][]normalize.Cell{normalize.Cells("Revenue", "(1.234,56)")},
	}}, nil
}

func testRegistry() *extract.Registry {
	reg := extract.NewRegistry()
	reg.Register(extract.ExtractorFunc(fakePDF), ".pdf")
	reg.Register(extract.NewCSVExtractor(), ".csv")
	return reg
}

func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600); err != nil {
			t.Fatal(err)
		}
	}
}

type memRecorder struct {
	mu      sync.Mutex
	reports []*Report
}

func (m *memRecorder) RecordRun(ctx context.Context, r *Report) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reports = append(m.reports, r)
	return nil
}

// ----------------------------------------------------------------------------
// Run Tests
// ----------------------------------------------------------------------------

func TestRun_IsolatesFailures(t *testing.T) {
	in := t.TempDir()
	out := filepath.Join(t.TempDir(), "tables")

	writeFiles(t, in, map[string]string{
		"annual.pdf": "%PDF",
		"broken.pdf": "%PDF",
		"empty.csv":  "",
		"ledger.csv": "Item,Amount\nCash,\"1 234,50\"\n",
		"notes.txt":  "ignored",
		"panic.pdf":  "%PDF",
		"slow.pdf":   "%PDF",
	})
	if err := os.Mkdir(filepath.Join(in, "archive.pdf"), 0o755); err != nil {
		t.Fatal(err)
	}

	rec := &memRecorder{}
	runner := New(Config{
		InputDir:    in,
		OutputDir:   out,
		Format:      assemble.FormatXLSX,
		Workers:     3,
		FileTimeout: 50 * time.Millisecond,
		Registry:    testRegistry(),
		Recorder:    rec,
	})

	report, err := runner.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	got := make(map[string]string)
	var names []string
	for _, f := range report.Files {
		names = append(names, f.File)
		got[f.File] = f.Code
	}

	wantNames := []string{"annual.pdf", "broken.pdf", "empty.csv", "ledger.csv", "panic.pdf", "slow.pdf"}
	if !reflect.DeepEqual(names, wantNames) {
		t.Fatalf("files = %q, want %q", names, wantNames)
	}

	wantCodes := map[string]string{
		"annual.pdf": "",
		"broken.pdf": "FILE003",
		"empty.csv":  "FILE001",
		"ledger.csv": "",
		"panic.pdf":  "FILE003",
		"slow.pdf":   "UPL005",
	}
	if !reflect.DeepEqual(got, wantCodes) {
		t.Errorf("codes = %v, want %v", got, wantCodes)
	}

	if report.Failed() != 4 || report.Succeeded() != 2 {
		t.Errorf("failed = %d, succeeded = %d", report.Failed(), report.Succeeded())
	}
	if report.Tables() != 2 {
		t.Errorf("Tables() = %d, want 2", report.Tables())
	}
	if report.Stats().Count(normalize.Parenthesized) != 1 {
		t.Errorf("parenthesized count = %d, want 1", report.Stats().Count(normalize.Parenthesized))
	}

	for _, name := range []string{"annual.xlsx", "ledger.xlsx"} {
		if _, err := os.Stat(filepath.Join(out, name)); err != nil {
			t.Errorf("missing output %s: %v", name, err)
		}
	}
	for _, name := range []string{"broken.xlsx", "empty.xlsx", "slow.xlsx"} {
		if _, err := os.Stat(filepath.Join(out, name)); !os.IsNotExist(err) {
			t.Errorf("unexpected output %s", name)
		}
	}

	if len(rec.reports) != 1 || rec.reports[0].RunID != report.RunID {
		t.Errorf("recorder got %d reports", len(rec.reports))
	}
}

func TestRun_CSVOutput(t *testing.T) {
	in := t.TempDir()
	out := t.TempDir()
	writeFiles(t, in, map[string]string{"q1.pdf": "%PDF"})

	report, err := New(Config{
		InputDir:  in,
		OutputDir: out,
		Format:    assemble.FormatCSV,
		Registry:  testRegistry(),
	}).Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if report.Failed() != 0 {
		t.Fatalf("unexpected failures: %+v", report.Files)
	}

	data, err := os.ReadFile(filepath.Join(out, "q1.csv"))
	if err != nil {
		t.Fatal(err)
	}
	want := "Table Start - Stream Table 1\nItem,2019\nRevenue,\"-1234,56\"\nTable End - Stream Table 1\n\n"
	if string(data) != want {
		t.Errorf("output =\n%q\nwant\n%q", data, want)
	}
}

func TestRun_MissingInputDir(t *testing.T) {
	_, err := New(Config{
		InputDir:  filepath.Join(t.TempDir(), "missing"),
		OutputDir: t.TempDir(),
	}).Run(context.Background())
	if err == nil || !strings.Contains(err.Error(), "read input dir") {
		t.Errorf("error = %v, want input dir error", err)
	}
}

func TestRun_Cancelled(t *testing.T) {
	in := t.TempDir()
	writeFiles(t, in, map[string]string{"a.pdf": "%PDF", "b.pdf": "%PDF"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := New(Config{InputDir: in, OutputDir: t.TempDir(), Registry: testRegistry()}).Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
	if report == nil || report.Failed() != 2 {
		t.Fatalf("report = %+v, want 2 failed files", report)
	}
	if report.Files[0].Code != "UPL004" {
		t.Errorf("code = %q, want UPL004", report.Files[0].Code)
	}
}

func TestNew_Defaults(t *testing.T) {
	r := New(Config{})
	if r.cfg.Workers != DefaultWorkers || r.cfg.FileTimeout != DefaultFileTimeout {
		t.Errorf("defaults not applied: %+v", r.cfg)
	}
	if !r.cfg.Registry.Supported("scan.PDF") {
		t.Error("default registry should support .pdf")
	}
}

// ----------------------------------------------------------------------------
// Output Name Tests
// ----------------------------------------------------------------------------

func TestOutputNames(t *testing.T) {
	tests := []struct {
		name  string
		files []string
		want  []string
	}{
		{
			name:  "shared stems keep source extension",
			files: []string{"in/report.pdf", "in/report.csv", "in/Q1 results.PDF", "in/scan.png"},
			want:  []string{"report_pdf.xlsx", "report_csv.xlsx", "Q1 results.xlsx", "scan.xlsx"},
		},
		{
			name:  "suffixed name collides with a real stem",
			files: []string{"in/a.csv", "in/a.pdf", "in/a_pdf.csv"},
			want:  []string{"a_csv.xlsx", "a_pdf.xlsx", "a_pdf_2.xlsx"},
		},
		{
			name:  "real stem taken before suffixing",
			files: []string{"in/a.csv", "in/a_csv.csv", "in/a.pdf"},
			want:  []string{"a_csv.xlsx", "a_csv_2.xlsx", "a_pdf.xlsx"},
		},
		{
			name:  "case-insensitive collision",
			files: []string{"in/A_PDF.csv", "in/a.csv", "in/a.pdf"},
			want:  []string{"A_PDF.xlsx", "a_csv.xlsx", "a_pdf_2.xlsx"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := outputNames(tt.files, ".xlsx")
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("outputNames() = %q, want %q", got, tt.want)
			}
			seen := make(map[string]bool, len(got))
			for _, name := range got {
				if seen[strings.ToLower(name)] {
					t.Errorf("duplicate output name %q", name)
				}
				seen[strings.ToLower(name)] = true
			}
		})
	}
}
