package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/Veraticus/spendscore/internal/cli"
	"github.com/Veraticus/spendscore/internal/common"
	"github.com/Veraticus/spendscore/internal/config"
	"github.com/Veraticus/spendscore/internal/importer"
	"github.com/Veraticus/spendscore/internal/model"
	"github.com/Veraticus/spendscore/internal/reporting"
	"github.com/Veraticus/spendscore/internal/spendscore"
	"github.com/Veraticus/spendscore/internal/storage"
	"github.com/spf13/viper"
)

func loadSettings() (*config.Settings, error) {
	return config.Load(viper.GetViper())
}

func newEngine(settings *config.Settings) *spendscore.Engine {
	var opts []spendscore.Option
	if settings.EngineParallel {
		opts = append(opts, spendscore.WithParallel())
	}
	return spendscore.NewEngine(opts...)
}

// initStorage opens the configured database and brings its schema up to date.
func initStorage(ctx context.Context, settings *config.Settings) (*storage.SQLiteStorage, error) {
	store, err := storage.Open(ctx, settings.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", settings.DatabasePath, err)
	}
	return store, nil
}

// withService runs fn with a reporting service backed by the configured database.
func withService(ctx context.Context, fn func(*reporting.Service) error) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}
	store, err := initStorage(ctx, settings)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			slog.Warn("Failed to close database", "error", closeErr)
		}
	}()

	return fn(reporting.NewService(store, newEngine(settings), nil))
}

// collectFiles expands glob patterns and directories into the list of files to import.
func collectFiles(args []string) ([]string, error) {
	var paths []string
	for _, pattern := range args {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %s: %w", pattern, err)
		}
		if len(matches) == 0 {
			if _, statErr := os.Stat(pattern); statErr != nil {
				slog.Warn("No files found matching pattern", "pattern", pattern)
				continue
			}
			matches = []string{pattern}
		}
		paths = append(paths, matches...)
	}

	files, err := importer.ExpandPaths(paths)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no files found to import")
	}
	return files, nil
}

// loadTransactions parses files concurrently with a progress bar and merges them in
// argument order.
func loadTransactions(ctx context.Context, settings *config.Settings, files []string, format importer.Format, quiet bool) ([]importer.Result, error) {
	progress := cli.NewProgress(os.Stderr, len(files), "Parsing files", quiet)
	loader := importer.NewLoader(
		importer.WithMaxBytes(settings.MaxUploadBytes),
		importer.WithWorkers(settings.ImportWorkers),
		importer.WithFileCallback(func(importer.Result) { progress.Step() }),
	)

	results, err := loader.LoadFiles(ctx, files, format)
	if err != nil {
		return nil, err
	}
	progress.Finish()

	for _, r := range results {
		common.LogInfo("Parsed file", common.Fields{
			"file":         filepath.Base(r.Path),
			"format":       r.Format,
			"transactions": len(r.Transactions),
		})
	}
	return results, nil
}

// resolveFormat picks the --format flag or the configured default.
func resolveFormat(flag string, settings *config.Settings) (importer.Format, error) {
	if flag == "" {
		flag = settings.ImportFormat
	}
	return importer.ParseFormat(flag)
}

// describeSource summarizes where a batch of results came from, for report metadata.
func describeSource(results []importer.Result) (filename, format string) {
	if len(results) == 1 {
		return filepath.Base(results[0].Path), string(results[0].Format)
	}
	return fmt.Sprintf("%d files", len(results)), "mixed"
}

// parseDateRange resolves --start-date/--end-date/--days into an inclusive range.
func parseDateRange(start, end string, days int, now time.Time) (time.Time, time.Time, error) {
	endDate := model.DateOf(now)
	if end != "" {
		parsed, err := model.ParseDate(end)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid end date %q: %w", end, err)
		}
		endDate = parsed
	}

	startDate := endDate.AddDate(0, 0, -days)
	if start != "" {
		parsed, err := model.ParseDate(start)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid start date %q: %w", start, err)
		}
		startDate = parsed
	}

	if startDate.After(endDate) {
		return time.Time{}, time.Time{}, fmt.Errorf("start date %s is after end date %s",
			startDate.Format(model.DateLayout), endDate.Format(model.DateLayout))
	}
	return startDate, endDate, nil
}
