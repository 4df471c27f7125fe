package importer

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Veraticus/spendscore/internal/model"
	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Decode returns data as UTF-8. Input that is not valid UTF-8 is read as Windows-1252,
// the usual encoding of spreadsheet exports.
func Decode(data []byte) ([]byte, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if utf8.Valid(data) {
		return data, nil
	}
	decoded, err := charmap.Windows1252.NewDecoder().Bytes(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode input: %w", err)
	}
	return decoded, nil
}

var (
	errEmptyAmount      = errors.New("empty amount")
	errAmountOutOfRange = errors.New("amount out of range")
)

var amountReplacer = strings.NewReplacer(
	"$", "", "€", "", "£", "", "¥", "",
	",", "", " ", "", "\u00a0", "",
)

// ParseAmount reads a monetary amount. Currency symbols and thousands separators are
// ignored and accounting parentheses, as in (12.50), mean a negative amount. Amounts
// beyond model.MaxAbsAmount are rejected.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = s[1 : len(s)-1]
	}
	s = amountReplacer.Replace(s)
	if s == "" {
		return decimal.Zero, errEmptyAmount
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	if negative {
		d = d.Neg()
	}
	if !model.ValidAmount(d.InexactFloat64()) {
		return decimal.Zero, fmt.Errorf("amount %q: %w", s, errAmountOutOfRange)
	}
	return d, nil
}

var dateLayouts = []string{
	model.DateLayout,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006/01/02",
	"01/02/2006",
	"1/2/2006",
	"01/02/06",
	"1/2/06",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
	"02 Jan 2006",
	"2-Jan-2006",
	"02-Jan-06",
}

// ParseDate reads a calendar date in any of the layouts common to bank exports.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return model.DateOf(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}
