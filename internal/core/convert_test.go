package core

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/JonMunkholm/pdftables/internal/assemble"
	"github.com/JonMunkholm/pdftables/internal/extract"
	"github.com/JonMunkholm/pdftables/internal/normalize"
)

// fixedExtractor returns canned tables or an error.
func fixedExtractor(tables []extract.Table, err error) extract.Extractor {
	return extract.ExtractorFunc(func(ctx context.Context, path string) ([]extract.Table, error) {
		return tables, err
	})
}

func incomeStatement() extract.Table {
	return extract.Table{
		Label:  "Stream Table 1",
		Family: extract.FamilyStream,
		Page:   1,
		Header: normalize.Cells("Item", "2019"),
		Rows: [][]normalize.Cell{
			normalize.Cells("Revenue", "(1.234,56)"),
			normalize.Cells("Cost", "$99.5"),
			{normalize.Text("Margin"), normalize.Absent()},
			normalize.Cells("Note", "N/A"),
		},
	}
}

// ----------------------------------------------------------------------------
// Convert Tests
// ----------------------------------------------------------------------------

func TestConvert(t *testing.T) {
	conv, err := Convert(context.Background(), fixedExtractor([]extract.Table{incomeStatement()}, nil), "report.pdf")
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}
	if len(conv.Tables) != 1 {
		t.Fatalf("got %d tables, want 1", len(conv.Tables))
	}

	want := [][]string{
		{"Revenue", "-1234,56"},
		{"Cost", "99,5"},
		{"Margin", ""},
		{"Note", "N/A"},
	}
	if got := conv.Tables[0].Rows; !reflect.DeepEqual(got, want) {
		t.Errorf("rows = %q, want %q", got, want)
	}

	if conv.Stats.Cells != 8 {
		t.Errorf("Stats.Cells = %d, want 8", conv.Stats.Cells)
	}
	if got := conv.Stats.Count(normalize.Parenthesized); got != 1 {
		t.Errorf("parenthesized count = %d, want 1", got)
	}
}

func TestConvert_Errors(t *testing.T) {
	tests := []struct {
		name     string
		tables   []extract.Table
		err      error
		wantCode string
	}{
		{name: "no tables returned", wantCode: "FILE001"},
		{name: "no tables error", err: extract.ErrNoTables, wantCode: "FILE001"},
		{name: "broken document", err: errors.New("malformed xref"), wantCode: "FILE003"},
		{name: "timeout", err: context.DeadlineExceeded, wantCode: "UPL005"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Convert(context.Background(), fixedExtractor(tt.tables, tt.err), "x.pdf")
			if err == nil {
				t.Fatal("expected error")
			}
			if got := Code(err); got != tt.wantCode {
				t.Errorf("Code() = %q, want %q (err: %v)", got, tt.wantCode, err)
			}
		})
	}
}

func TestConvertFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "report.csv")
	if err := os.WriteFile(path, []byte("Item,Amount\nRevenue,\"1,234.50\"\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	reg := extract.DefaultRegistry(extract.DefaultOptions())
	conv, err := ConvertFile(context.Background(), reg, path)
	if err != nil {
		t.Fatalf("ConvertFile() error = %v", err)
	}
	if got := conv.Tables[0].Rows[0]; !reflect.DeepEqual(got, []string{"Revenue", "1234,50"}) {
		t.Errorf("row = %q", got)
	}

	_, err = ConvertFile(context.Background(), reg, filepath.Join(dir, "notes.txt"))
	if Code(err) != "FILE002" {
		t.Errorf("unsupported file error = %v", err)
	}
}

func TestConversion_Write(t *testing.T) {
	conv, err := Convert(context.Background(), fixedExtractor([]extract.Table{incomeStatement()}, nil), "report.pdf")
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := conv.Write(&buf, assemble.FormatCSV, assemble.LayoutCombined); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if !strings.Contains(buf.String(), "Revenue,\"-1234,56\"\n") {
		t.Errorf("CSV output missing normalized row:\n%s", buf.String())
	}

	empty := &Conversion{}
	err = empty.Write(&buf, assemble.FormatXLSX, assemble.LayoutCombined)
	if !errors.Is(err, ErrWriteFailed) || Code(err) != "FILE004" {
		t.Errorf("empty Write() error = %v, want FILE004", err)
	}

	bad := filepath.Join(t.TempDir(), "missing", "out.xlsx")
	if err := conv.Save(bad, assemble.FormatXLSX, assemble.LayoutCombined); !errors.Is(err, ErrWriteFailed) {
		t.Errorf("Save() error = %v, want ErrWriteFailed", err)
	}
}
