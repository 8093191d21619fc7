// Command importer walks a directory of result sheets and loads every
// supported file into the database, one sheet per file. Row-level problems
// are logged and skipped; a file that fails outright does not stop the
// batch.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/supersonicwisd1/result-processing-system/internal/config"
	"github.com/supersonicwisd1/result-processing-system/internal/extract"
	"github.com/supersonicwisd1/result-processing-system/internal/infrastructure"
	"github.com/supersonicwisd1/result-processing-system/internal/services"
	"github.com/supersonicwisd1/result-processing-system/internal/store"
	"github.com/supersonicwisd1/result-processing-system/pkg/contracts/domain"
)

func main() {
	dir := flag.String("in", "", "directory containing result sheets (.docx, .pdf, .csv, .xlsx)")
	configPath := flag.String("config", "", "path to YAML config file (optional)")
	flag.Parse()

	if *dir == "" {
		fmt.Fprintln(os.Stderr, "usage: importer -in <directory> [-config <file>]")
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger, err := infrastructure.InitLogger(cfg.Logging)
	if err != nil {
		slog.Error("failed to init logger", slog.String("error", err.Error()))
		os.Exit(1)
	}

	st, err := store.Open(cfg.Storage.DatabasePath, logger)
	if err != nil {
		logger.Error("failed to open store", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer st.Close()

	svc := services.NewResultService(st, extract.Options{
		LegacyYearPrefix: cfg.Extract.LegacyYearPrefix,
	}, logger)

	supported := make(map[string]bool)
	for _, ext := range extract.SupportedExtensions() {
		supported[ext] = true
	}

	ctx := context.Background()
	var processed, failed, skippedFiles int

	err = filepath.WalkDir(*dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if !supported[strings.ToLower(filepath.Ext(path))] {
			skippedFiles++
			return nil
		}

		outcome, err := svc.ProcessUpload(ctx, path, domain.UploadMeta{
			OriginalFilename: d.Name(),
			UploadedAt:       time.Now().UTC(),
		})
		if err != nil {
			failed++
			logger.Error("file failed", slog.String("file", path), slog.String("error", err.Error()))
			return nil
		}

		processed++
		logger.Info("file imported",
			slog.String("file", path),
			slog.String("course", outcome.Header.CourseCode),
			slog.Int("stored", outcome.RecordsStored),
			slog.Int("skipped", outcome.RowsSkipped))
		for _, p := range outcome.Problems {
			logger.Warn("row skipped", slog.String("file", path), slog.String("reason", p))
		}
		return nil
	})
	if err != nil {
		logger.Error("walk failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("import finished",
		slog.Int("files_imported", processed),
		slog.Int("files_failed", failed),
		slog.Int("files_ignored", skippedFiles))
	if failed > 0 {
		os.Exit(1)
	}
}
