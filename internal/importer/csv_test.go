package importer

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/Veraticus/spendscore/internal/common"
	"github.com/Veraticus/spendscore/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseCSV(t *testing.T, content string, format Format) ([]model.Transaction, Format, error) {
	t.Helper()
	return NewCSVParser(nil).Parse(context.Background(), strings.NewReader(content), format)
}

func TestCSVParser_Dialects(t *testing.T) {
	tests := []struct {
		name       string
		content    string
		format     Format
		wantFormat Format
		want       []model.Transaction
	}{
		{
			name:       "wave",
			format:     FormatWave,
			wantFormat: FormatWave,
			content:    "Date,Description,Amount,Category\n2024-01-02,Hosting,-20.00,Software\n",
			want: []model.Transaction{
				{Date: model.NewDate(2024, time.January, 2), Description: "Hosting", Amount: -20, Category: "Software"},
			},
		},
		{
			name:       "xero maps account to category",
			wantFormat: FormatXero,
			content:    "Date,Description,Amount,Account,Reference\n02/01/2024,Stationery,-8.5,Office Expenses,INV-7\n",
			want: []model.Transaction{
				{Date: model.NewDate(2024, time.February, 1), Description: "Stationery", Amount: -8.5, Category: "Office Expenses", Reference: "INV-7"},
			},
		},
		{
			name:       "generic aliases and lowercase category",
			wantFormat: FormatGeneric,
			content:    "transaction_date,desc,value,category\n2024-01-05,Lunch,-11.00,Food\n2024-01-06,,-3.00,Food\n",
			want: []model.Transaction{
				{Date: model.NewDate(2024, time.January, 5), Description: "Lunch", Amount: -11, Category: "Food"},
			},
		},
		{
			name:       "bom and windows-1252",
			wantFormat: FormatGeneric,
			content:    "\xEF\xBB\xBFDate,Description,Amount\n2024-01-07,Caf\xe9,-4.20\n",
			want: []model.Transaction{
				{Date: model.NewDate(2024, time.January, 7), Description: "Café", Amount: -4.2},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			format := tt.format
			if format == "" {
				format = FormatAuto
			}
			got, used, err := parseCSV(t, tt.content, format)
			require.NoError(t, err)
			assert.Equal(t, tt.wantFormat, used)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCSVParser_SkipsBadRows(t *testing.T) {
	content := "Date,Description,Amount\n" +
		"2024-01-01,Good,-1.00\n" +
		"someday,Bad date,-2.00\n" +
		"2024-01-03,Bad amount,lots\n" +
		"2024-01-03,coffee overflow,-1e400\n" +
		"2024-01-03,coffee huge,-1e308\n" +
		",,\n" +
		"2024-01-04,Also good,(3.00)\n"

	got, _, err := parseCSV(t, content, FormatWave)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Good", got[0].Description)
	assert.Equal(t, -3.0, got[1].Amount)
}

func TestCSVParser_Errors(t *testing.T) {
	t.Run("missing columns", func(t *testing.T) {
		_, _, err := parseCSV(t, "Date,Memo\n2024-01-01,x\n", FormatQuickBooks)
		var missing *MissingColumnsError
		require.True(t, errors.As(err, &missing))
		assert.Equal(t, FormatQuickBooks, missing.Format)
		assert.Contains(t, err.Error(), "found: Date, Memo")
	})

	t.Run("empty file", func(t *testing.T) {
		_, _, err := parseCSV(t, "", FormatAuto)
		assert.ErrorIs(t, err, common.ErrNoTransactions)
	})

	t.Run("header only", func(t *testing.T) {
		_, _, err := parseCSV(t, "Date,Description,Amount\n", FormatAuto)
		assert.ErrorIs(t, err, common.ErrNoTransactions)
	})

	t.Run("every row bad", func(t *testing.T) {
		_, _, err := parseCSV(t, "Date,Description,Amount\nnope,x,y\n", FormatAuto)
		assert.ErrorIs(t, err, common.ErrNoTransactions)
	})

	t.Run("ofx is not a csv dialect", func(t *testing.T) {
		_, _, err := parseCSV(t, "Date,Description,Amount\n2024-01-01,x,1\n", FormatOFX)
		assert.ErrorIs(t, err, common.ErrUnsupportedFormat)
	})
}

func TestSupportedFormats(t *testing.T) {
	infos := SupportedFormats()
	require.Len(t, infos, len(Formats())-1)

	byID := make(map[Format]FormatInfo, len(infos))
	for _, info := range infos {
		assert.NotEqual(t, FormatAuto, info.ID)
		assert.NotEmpty(t, info.Name)
		byID[info.ID] = info
	}

	assert.Equal(t, []string{"Started Date"}, byID[FormatRevolut].Required["date"])
	assert.Equal(t, []string{"Reference"}, byID[FormatRevolut].Optional["reference"])
	assert.Equal(t, []string{"Vendor"}, byID[FormatQuickBooks].Optional["merchant"])
	assert.Contains(t, byID[FormatGeneric].Required["amount"], "value")
	assert.Nil(t, byID[FormatOFX].Required)
}
