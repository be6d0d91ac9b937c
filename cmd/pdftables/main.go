// Command pdftables extracts tables from PDF and scanned documents into
// spreadsheets with normalized numeric cells.
//
// Usage:
//
//	pdftables batch --in pdfs --out output_tables
//	pdftables serve
//	pdftables normalize "1.234,50" "(99.5)"
package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/JonMunkholm/pdftables/internal/config"
	"github.com/JonMunkholm/pdftables/internal/extract"
	"github.com/JonMunkholm/pdftables/internal/logging"
	"github.com/JonMunkholm/pdftables/internal/ocr"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// errFilesFailed signals a batch run that finished with per-file failures.
var errFilesFailed = errors.New("some files failed to convert")

func main() {
	cmd := newRootCommand()
	if err := cmd.Execute(); err != nil {
		if !errors.Is(err, errFilesFailed) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cfg := &config.Config{}

	root := &cobra.Command{
		Use:           "pdftables",
		Short:         "Extract tables from documents into normalized spreadsheets",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			loaded, err := loadConfig()
			if err != nil {
				return err
			}
			*cfg = *loaded
			return nil
		},
	}

	root.AddCommand(
		newBatchCommand(cfg),
		newServeCommand(cfg),
		newNormalizeCommand(),
	)
	return root
}

// loadConfig reads .env, loads the environment configuration and sets up
// logging.
func loadConfig() (*config.Config, error) {
	// Overload lets .env take precedence over the shell environment.
	envLoaded := godotenv.Overload() == nil

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	if envLoaded {
		slog.Debug("loaded .env file (overwriting existing env vars)")
	}
	return cfg, nil
}

func extractOptions(cfg config.ExtractConfig) extract.Options {
	return extract.Options{
		RowTolerance: cfg.RowTolerance,
		ColumnGap:    cfg.ColumnGap,
		MinColumns:   cfg.MinColumns,
		OCRLanguage:  cfg.OCRLanguage,
		PageSegMode:  ocr.PageSegMode(cfg.OCRPageSegMode),
	}
}
