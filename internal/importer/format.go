// Package importer turns bank and accounting exports into transactions.
package importer

import (
	"fmt"
	"slices"
	"strings"

	"github.com/Veraticus/spendscore/internal/common"
)

// Format names a CSV dialect.
type Format string

// Supported CSV dialects.
const (
	FormatAuto       Format = "auto"
	FormatQuickBooks Format = "quickbooks"
	FormatWave       Format = "wave"
	FormatRevolut    Format = "revolut"
	FormatXero       Format = "xero"
	FormatGeneric    Format = "generic"
	// FormatOFX is chosen from the file extension, never from headers.
	FormatOFX Format = "ofx"
)

// Formats lists the names accepted by ParseFormat.
func Formats() []Format {
	return []Format{FormatAuto, FormatQuickBooks, FormatWave, FormatRevolut, FormatXero, FormatGeneric, FormatOFX}
}

// ParseFormat resolves a user supplied format name. An empty name means auto.
func ParseFormat(name string) (Format, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return FormatAuto, nil
	}
	f := Format(name)
	if !slices.Contains(Formats(), f) {
		return "", fmt.Errorf("%w: %q (want one of %v)", common.ErrUnsupportedFormat, name, Formats())
	}
	return f, nil
}

// FormatInfo describes a supported import format and the columns it reads.
type FormatInfo struct {
	ID          Format              `json:"id"`
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Required    map[string][]string `json:"required_columns,omitempty"`
	Optional    map[string][]string `json:"optional_columns,omitempty"`
}

var formatDescriptions = []struct {
	format      Format
	name        string
	description string
}{
	{FormatQuickBooks, "QuickBooks CSV", "Standard QuickBooks transaction export"},
	{FormatWave, "Wave Accounting CSV", "Wave accounting transaction export"},
	{FormatRevolut, "Revolut CSV", "Revolut transaction history export"},
	{FormatXero, "Xero CSV", "Xero accounting transaction export"},
	{FormatGeneric, "Generic CSV", "Any CSV with date, description and amount columns"},
	{FormatOFX, "OFX/QFX", "Open Financial Exchange bank or credit card statement, chosen by .ofx or .qfx extension"},
}

// SupportedFormats lists every concrete import format with the header names each field
// is read from. Auto detection is not included.
func SupportedFormats() []FormatInfo {
	infos := make([]FormatInfo, 0, len(formatDescriptions))
	for _, d := range formatDescriptions {
		info := FormatInfo{ID: d.format, Name: d.name, Description: d.description}
		if l, ok := layouts[d.format]; ok {
			info.Required = map[string][]string{"date": l.date, "description": l.desc, "amount": l.amount}
			info.Optional = map[string][]string{}
			for field, names := range map[string][]string{"category": l.category, "merchant": l.merchant, "reference": l.reference} {
				if len(names) > 0 {
					info.Optional[field] = names
				}
			}
		}
		infos = append(infos, info)
	}
	return infos
}

// layout lists the header names each field may appear under, in preference order.
type layout struct {
	date      []string
	desc      []string
	amount    []string
	category  []string
	merchant  []string
	reference []string
	// skipBlank drops rows with an empty date, description or amount instead of warning.
	skipBlank bool
}

var layouts = map[Format]layout{
	FormatQuickBooks: {
		date:     []string{"Date"},
		desc:     []string{"Description"},
		amount:   []string{"Amount"},
		category: []string{"Category"},
		merchant: []string{"Vendor"},
	},
	FormatWave: {
		date:     []string{"Date"},
		desc:     []string{"Description"},
		amount:   []string{"Amount"},
		category: []string{"Category"},
	},
	FormatRevolut: {
		date:      []string{"Started Date"},
		desc:      []string{"Description"},
		amount:    []string{"Amount"},
		category:  []string{"Category"},
		reference: []string{"Reference"},
	},
	FormatXero: {
		date:      []string{"Date"},
		desc:      []string{"Description"},
		amount:    []string{"Amount"},
		category:  []string{"Account"},
		reference: []string{"Reference"},
	},
	FormatGeneric: {
		date:      []string{"date", "Date", "DATE", "transaction_date", "Transaction Date"},
		desc:      []string{"description", "Description", "DESCRIPTION", "desc", "Desc"},
		amount:    []string{"amount", "Amount", "AMOUNT", "value", "Value", "total", "Total"},
		category:  []string{"category", "Category"},
		skipBlank: true,
	},
}

// DetectFormat picks a dialect from a header row.
func DetectFormat(header []string) Format {
	has := func(name string) bool { return slices.Contains(header, name) }
	switch {
	case has("Started Date"):
		return FormatRevolut
	case has("Account") && has("Date"):
		return FormatXero
	case has("Vendor") && has("Date"):
		return FormatQuickBooks
	default:
		return FormatGeneric
	}
}

// columns maps a layout onto header positions; -1 means absent.
type columns struct {
	date, desc, amount, category, merchant, reference int
}

func findColumn(header, names []string) int {
	for _, name := range names {
		if i := slices.Index(header, name); i >= 0 {
			return i
		}
	}
	return -1
}

func (l layout) resolve(format Format, header []string) (columns, error) {
	c := columns{
		date:      findColumn(header, l.date),
		desc:      findColumn(header, l.desc),
		amount:    findColumn(header, l.amount),
		category:  findColumn(header, l.category),
		merchant:  findColumn(header, l.merchant),
		reference: findColumn(header, l.reference),
	}
	if c.date < 0 || c.desc < 0 || c.amount < 0 {
		return c, &MissingColumnsError{Format: format, Found: header}
	}
	return c, nil
}

// MissingColumnsError reports a header that lacks a date, description or amount column.
type MissingColumnsError struct {
	Format Format
	Found  []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("%s CSV must have date, description, and amount columns; found: %s",
		e.Format, strings.Join(e.Found, ", "))
}
