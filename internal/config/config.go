package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/Veraticus/spendscore/internal/common"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Viper keys.
const (
	KeyDatabasePath   = "database.path"
	KeyLogLevel       = "logging.level"
	KeyLogFormat      = "logging.format"
	KeyServerAddr     = "server.addr"
	KeyServerMode     = "server.mode"
	KeyImportFormat   = "import.format"
	KeyImportMaxBytes = "import.max_bytes"
	KeyImportWorkers  = "import.workers"
	KeyEngineParallel = "engine.parallel"
)

// EnvPrefix is prepended to every environment override, e.g. SPENDSCORE_DATABASE_PATH.
const EnvPrefix = "SPENDSCORE"

// Settings is the resolved runtime configuration shared by the CLI and the HTTP server.
type Settings struct {
	DatabasePath   string
	LogLevel       string
	LogFormat      string
	ServerAddr     string
	ServerMode     string
	ImportFormat   string
	MaxUploadBytes int64
	ImportWorkers  int
	EngineParallel bool
}

// SetDefaults registers every default on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyDatabasePath, "$HOME/.local/share/spendscore/spendscore.db")
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "console")
	v.SetDefault(KeyServerAddr, ":8000")
	v.SetDefault(KeyServerMode, "release")
	v.SetDefault(KeyImportFormat, "auto")
	v.SetDefault(KeyImportMaxBytes, 16<<20)
	v.SetDefault(KeyImportWorkers, 4)
	v.SetDefault(KeyEngineParallel, false)
	v.SetDefault("plaid.environment", "sandbox")
	v.SetDefault("sheets.spreadsheet_name", "SpendScore Report")
}

// BindEnv makes every key overridable from SPENDSCORE_* environment variables.
func BindEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// LoadDotEnv loads KEY=value pairs from the given files (".env" when none are given)
// into the process environment. Missing files are ignored; existing variables win.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", f, err)
		}
	}
	return nil
}

// Load resolves Settings from v and validates them.
func Load(v *viper.Viper) (*Settings, error) {
	s := &Settings{
		DatabasePath:   ExpandPath(v.GetString(KeyDatabasePath)),
		LogLevel:       v.GetString(KeyLogLevel),
		LogFormat:      v.GetString(KeyLogFormat),
		ServerAddr:     v.GetString(KeyServerAddr),
		ServerMode:     v.GetString(KeyServerMode),
		ImportFormat:   v.GetString(KeyImportFormat),
		MaxUploadBytes: v.GetInt64(KeyImportMaxBytes),
		ImportWorkers:  v.GetInt(KeyImportWorkers),
		EngineParallel: v.GetBool(KeyEngineParallel),
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate reports every invalid setting at once.
func (s *Settings) Validate() error {
	var problems []string

	if s.DatabasePath == "" {
		problems = append(problems, "database.path must be set")
	}
	switch s.LogFormat {
	case "console", "text", "json":
	default:
		problems = append(problems, fmt.Sprintf("logging.format %q must be console or json", s.LogFormat))
	}
	switch s.ServerMode {
	case "debug", "release", "test":
	default:
		problems = append(problems, fmt.Sprintf("server.mode %q must be debug, release or test", s.ServerMode))
	}
	if s.MaxUploadBytes <= 0 {
		problems = append(problems, "import.max_bytes must be positive")
	}
	if s.ImportWorkers <= 0 {
		problems = append(problems, "import.workers must be positive")
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", common.ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}
