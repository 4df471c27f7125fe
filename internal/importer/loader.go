package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/Veraticus/spendscore/internal/common"
	"github.com/Veraticus/spendscore/internal/model"
	"github.com/Veraticus/spendscore/internal/ofx"
	"golang.org/x/sync/errgroup"
)

// DefaultMaxBytes caps a single import file.
const DefaultMaxBytes = 16 << 20

// Result is what one file contributed to an import.
type Result struct {
	Path         string
	Format       Format
	Transactions []model.Transaction
}

// Loader reads transaction files from disk or uploads, dispatching on extension.
type Loader struct {
	csv      *CSVParser
	ofx      *ofx.Parser
	logger   *slog.Logger
	onFile   func(Result)
	maxBytes int64
	workers  int
}

// Option configures a Loader.
type Option func(*Loader)

// WithMaxBytes caps the size of each file.
func WithMaxBytes(n int64) Option {
	return func(l *Loader) {
		if n > 0 {
			l.maxBytes = n
		}
	}
}

// WithWorkers sets how many files LoadFiles parses at once.
func WithWorkers(n int) Option {
	return func(l *Loader) {
		if n > 0 {
			l.workers = n
		}
	}
}

// WithFileCallback is called once per parsed file, possibly from several goroutines.
func WithFileCallback(fn func(Result)) Option {
	return func(l *Loader) {
		l.onFile = fn
	}
}

// WithLogger sets the loader's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loader) {
		l.logger = logger
	}
}

// NewLoader creates a Loader.
func NewLoader(opts ...Option) *Loader {
	l := &Loader{
		logger:   slog.Default().With("component", "importer"),
		maxBytes: DefaultMaxBytes,
		workers:  4,
	}
	for _, opt := range opts {
		opt(l)
	}
	l.csv = NewCSVParser(l.logger)
	l.ofx = ofx.NewParser()
	return l
}

// IsOFX reports whether name carries an OFX or QFX extension.
func IsOFX(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".ofx", ".qfx":
		return true
	default:
		return false
	}
}

// Parse reads one file's content. name selects OFX parsing by extension; otherwise
// format picks the CSV dialect.
func (l *Loader) Parse(ctx context.Context, name string, r io.Reader, format Format) (Result, error) {
	result := Result{Path: name}

	data, err := io.ReadAll(io.LimitReader(r, l.maxBytes+1))
	if err != nil {
		return result, fmt.Errorf("failed to read %s: %w", name, err)
	}
	if int64(len(data)) > l.maxBytes {
		return result, fmt.Errorf("%s exceeds %d bytes: %w", name, l.maxBytes, common.ErrFileTooLarge)
	}

	if IsOFX(name) || format == FormatOFX {
		result.Format = FormatOFX
		result.Transactions, err = l.ofx.ParseFile(ctx, strings.NewReader(string(data)))
	} else {
		result.Transactions, result.Format, err = l.csv.Parse(ctx, strings.NewReader(string(data)), format)
	}
	if err != nil {
		return result, fmt.Errorf("failed to parse %s: %w", name, err)
	}
	return result, nil
}

// LoadFile reads one file from disk.
func (l *Loader) LoadFile(ctx context.Context, path string, format Format) (Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return Result{Path: path}, fmt.Errorf("failed to open file: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			l.logger.Warn("Failed to close file", "path", path, "error", closeErr)
		}
	}()

	return l.Parse(ctx, path, f, format)
}

// LoadFiles reads every path concurrently and returns results in path order. The first
// failure cancels the rest.
func (l *Loader) LoadFiles(ctx context.Context, paths []string, format Format) ([]Result, error) {
	if len(paths) == 0 {
		return nil, errors.New("no files to import")
	}

	results := make([]Result, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.workers)

	for i, path := range paths {
		g.Go(func() error {
			result, err := l.LoadFile(gctx, path, format)
			if err != nil {
				return err
			}
			results[i] = result
			l.logger.Debug("Loaded file", "path", path, "format", result.Format, "transactions", len(result.Transactions))
			if l.onFile != nil {
				l.onFile(result)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Merge concatenates the transactions of several results in order.
func Merge(results []Result) []model.Transaction {
	var n int
	for _, r := range results {
		n += len(r.Transactions)
	}
	merged := make([]model.Transaction, 0, n)
	for _, r := range results {
		merged = append(merged, r.Transactions...)
	}
	return merged
}

// ExpandPaths replaces directories with the CSV and OFX files directly inside them.
func ExpandPaths(paths []string) ([]string, error) {
	var out []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("failed to access %s: %w", p, err)
		}
		if !info.IsDir() {
			out = append(out, p)
			continue
		}

		entries, err := os.ReadDir(p)
		if err != nil {
			return nil, fmt.Errorf("failed to read directory %s: %w", p, err)
		}
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			name := e.Name()
			if IsOFX(name) || strings.EqualFold(filepath.Ext(name), ".csv") {
				out = append(out, filepath.Join(p, name))
			}
		}
	}
	return out, nil
}
