package importer

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Veraticus/spendscore/internal/common"
	"github.com/Veraticus/spendscore/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoader_LoadFile(t *testing.T) {
	loader := NewLoader()
	ctx := context.Background()

	t.Run("quickbooks detected from header", func(t *testing.T) {
		result, err := loader.LoadFile(ctx, "testdata/quickbooks.csv", FormatAuto)
		require.NoError(t, err)
		assert.Equal(t, FormatQuickBooks, result.Format)
		require.Len(t, result.Transactions, 3)

		rent := result.Transactions[0]
		assert.Equal(t, model.NewDate(2024, time.February, 1), rent.Date)
		assert.Equal(t, -1200.0, rent.Amount)
		assert.Equal(t, "Rent", rent.Category)
		assert.Equal(t, "Acme Properties", rent.Merchant)
		assert.Equal(t, 2500.0, result.Transactions[1].Amount)
	})

	t.Run("revolut datetime dates", func(t *testing.T) {
		result, err := loader.LoadFile(ctx, "testdata/revolut.csv", FormatAuto)
		require.NoError(t, err)
		assert.Equal(t, FormatRevolut, result.Format)
		require.Len(t, result.Transactions, 2)
		assert.Equal(t, model.NewDate(2024, time.March, 1), result.Transactions[0].Date)
		assert.Equal(t, -12.40, result.Transactions[0].Amount)
	})

	t.Run("ofx by extension", func(t *testing.T) {
		result, err := loader.LoadFile(ctx, "testdata/checking.ofx", FormatAuto)
		require.NoError(t, err)
		assert.Equal(t, FormatOFX, result.Format)
		assert.Len(t, result.Transactions, 4)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := loader.LoadFile(ctx, "testdata/nope.csv", FormatAuto)
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}

func TestLoader_Parse_TooLarge(t *testing.T) {
	loader := NewLoader(WithMaxBytes(16))
	_, err := loader.Parse(context.Background(), "big.csv",
		strings.NewReader("Date,Description,Amount\n2024-01-01,x,1\n"), FormatAuto)
	assert.ErrorIs(t, err, common.ErrFileTooLarge)
}

func TestLoader_LoadFiles(t *testing.T) {
	var (
		mu   sync.Mutex
		seen []string
	)
	loader := NewLoader(WithWorkers(2), WithFileCallback(func(r Result) {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, r.Path)
	}))

	paths := []string{"testdata/revolut.csv", "testdata/checking.ofx", "testdata/quickbooks.csv"}
	results, err := loader.LoadFiles(context.Background(), paths, FormatAuto)
	require.NoError(t, err)

	require.Len(t, results, 3)
	for i, p := range paths {
		assert.Equal(t, p, results[i].Path, "results keep path order")
	}
	assert.ElementsMatch(t, paths, seen)

	merged := Merge(results)
	assert.Len(t, merged, 2+4+3)
	assert.Equal(t, "Uber Trip", merged[0].Description)
}

func TestLoader_LoadFiles_Errors(t *testing.T) {
	loader := NewLoader()

	_, err := loader.LoadFiles(context.Background(), nil, FormatAuto)
	assert.Error(t, err)

	_, err = loader.LoadFiles(context.Background(), []string{"testdata/quickbooks.csv", "testdata/missing.csv"}, FormatAuto)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestExpandPaths(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.csv", "b.QFX", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o600))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o750))

	got, err := ExpandPaths([]string{dir, "testdata/revolut.csv"})
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a.csv"),
		filepath.Join(dir, "b.QFX"),
		"testdata/revolut.csv",
	}, got)

	_, err = ExpandPaths([]string{filepath.Join(dir, "missing")})
	assert.Error(t, err)
}
