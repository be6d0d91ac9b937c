package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"github.com/JonMunkholm/pdftables/internal/extract"
	"github.com/JonMunkholm/pdftables/internal/normalize"
	"github.com/spf13/cobra"
)

func newNormalizeCommand() *cobra.Command {
	var explain bool
	cmd := &cobra.Command{
		Use:   "normalize [VALUE...]",
		Short: "Normalize values given as arguments, or a CSV stream from stdin",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return normalizeCSV(cmd.InOrStdin(), cmd.OutOrStdout())
			}
			for _, arg := range args {
				res := normalize.Normalize(normalize.Text(arg))
				if explain {
					fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", res.Value, res.Format)
					continue
				}
				fmt.Fprintln(cmd.OutOrStdout(), res.Value)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&explain, "explain", false, "print the detected format next to each value")
	return cmd
}

// normalizeCSV rewrites every field of a CSV stream, one record at a time.
func normalizeCSV(in io.Reader, out io.Writer) error {
	cr := csv.NewReader(extract.NewSourceReader(in))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cw := csv.NewWriter(out)

	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("read csv: %w", err)
		}
		if err := cw.Write(normalize.Row(normalize.Cells(record...))); err != nil {
			return fmt.Errorf("write csv: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
