// Package sheets exports SpendScore reports to Google Sheets.
package sheets

import (
	"errors"
	"fmt"
	"time"

	"github.com/Veraticus/spendscore/internal/common"
)

// Config holds the configuration for the Google Sheets writer.
type Config struct {
	ClientID           string
	ClientSecret       string
	RefreshToken       string
	ServiceAccountPath string
	SpreadsheetID      string
	SpreadsheetName    string
	TimeZone           string
	BatchSize          int
	RetryAttempts      int
	RetryDelay         time.Duration
	EnableFormatting   bool
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		SpreadsheetName:  "SpendScore Report",
		EnableFormatting: true,
		TimeZone:         "UTC",
		BatchSize:        1000,
		RetryAttempts:    3,
		RetryDelay:       time.Second,
	}
}

// Validate checks that exactly one authentication method is configured.
func (c *Config) Validate() error {
	hasOAuth := c.ClientID != "" && c.ClientSecret != "" && c.RefreshToken != ""
	hasServiceAccount := c.ServiceAccountPath != ""

	switch {
	case !hasOAuth && !hasServiceAccount:
		return fmt.Errorf("%w: no Google Sheets authentication method configured", common.ErrMissingConfig)
	case hasOAuth && hasServiceAccount:
		return fmt.Errorf("%w: multiple authentication methods configured; use either OAuth2 or service account",
			common.ErrInvalidConfig)
	}

	var errs []error
	if c.BatchSize <= 0 {
		errs = append(errs, errors.New("batch size must be positive"))
	}
	if c.RetryAttempts < 0 {
		errs = append(errs, errors.New("retry attempts cannot be negative"))
	}
	if c.RetryDelay < 0 {
		errs = append(errs, errors.New("retry delay cannot be negative"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", common.ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}
