package config

import (
	"os"

	"github.com/Veraticus/spendscore/internal/plaid"
	"github.com/Veraticus/spendscore/internal/sheets"
	"github.com/Veraticus/spendscore/internal/simplefin"
	"github.com/spf13/viper"
)

// LoadSheetsConfig reads sheets.* keys, falling back to GOOGLE_SHEETS_* variables.
func LoadSheetsConfig(v *viper.Viper) (*sheets.Config, error) {
	cfg := sheets.DefaultConfig()

	cfg.ServiceAccountPath = ExpandPath(firstNonEmpty(
		v.GetString("sheets.service_account_path"), os.Getenv("GOOGLE_SHEETS_SERVICE_ACCOUNT_PATH")))
	cfg.ClientID = firstNonEmpty(v.GetString("sheets.client_id"), os.Getenv("GOOGLE_SHEETS_CLIENT_ID"))
	cfg.ClientSecret = firstNonEmpty(v.GetString("sheets.client_secret"), os.Getenv("GOOGLE_SHEETS_CLIENT_SECRET"))
	cfg.RefreshToken = firstNonEmpty(v.GetString("sheets.refresh_token"), os.Getenv("GOOGLE_SHEETS_REFRESH_TOKEN"))
	cfg.SpreadsheetID = firstNonEmpty(v.GetString("sheets.spreadsheet_id"), os.Getenv("GOOGLE_SHEETS_SPREADSHEET_ID"))
	cfg.SpreadsheetName = firstNonEmpty(os.Getenv("GOOGLE_SHEETS_SPREADSHEET_NAME"),
		v.GetString("sheets.spreadsheet_name"), cfg.SpreadsheetName)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadPlaidConfig reads plaid.* keys, falling back to PLAID_* variables.
func LoadPlaidConfig(v *viper.Viper) (plaid.Config, error) {
	cfg := plaid.Config{
		ClientID:    firstNonEmpty(v.GetString("plaid.client_id"), os.Getenv("PLAID_CLIENT_ID")),
		Secret:      firstNonEmpty(v.GetString("plaid.secret"), os.Getenv("PLAID_SECRET")),
		AccessToken: firstNonEmpty(v.GetString("plaid.access_token"), os.Getenv("PLAID_ACCESS_TOKEN")),
		Environment: firstNonEmpty(os.Getenv("PLAID_ENV"), v.GetString("plaid.environment")),
	}
	return cfg, cfg.Validate()
}

// LoadSimpleFINConfig reads simplefin.* keys, falling back to SIMPLEFIN_* variables.
// Credentials are checked when the client is created, since a saved claim may stand in
// for both.
func LoadSimpleFINConfig(v *viper.Viper) simplefin.Config {
	return simplefin.Config{
		Token:     firstNonEmpty(v.GetString("simplefin.token"), os.Getenv("SIMPLEFIN_TOKEN")),
		AccessURL: firstNonEmpty(v.GetString("simplefin.access_url"), os.Getenv("SIMPLEFIN_ACCESS_URL")),
		StatePath: ExpandPath(v.GetString("simplefin.state_file")),
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
