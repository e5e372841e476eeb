// Package config resolves teachsync settings from flags, TEACHSYNC_*
// environment variables (including a ./.env file) and an optional config
// file, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/roach88/teachsync/internal/logging"
	"github.com/roach88/teachsync/internal/store"
)

// EnvPrefix prefixes every environment variable, e.g. TEACHSYNC_DOCUMENT.
const EnvPrefix = "TEACHSYNC"

// DotEnvFile is loaded into the environment, when present, before any
// other source is read. Variables already set are left alone.
const DotEnvFile = ".env"

// Keys.
const (
	KeyDocument    = "document"
	KeyWorkbook    = "workbook"
	KeyBackupDir   = "backup_dir"
	KeyActor       = "actor"
	KeyLockTimeout = "lock_timeout"
	KeyLogLevel    = "log.level"
	KeyLogFormat   = "log.format"
	KeyMetricsFile = "metrics_file"
)

// Defaults.
const (
	DefaultDocument = "teaching_software.yml"
	DefaultWorkbook = "teaching_software.xlsx"
)

// Settings is the resolved configuration.
type Settings struct {
	Document    string
	Workbook    string
	BackupDir   string
	Actor       string
	LockTimeout time.Duration
	Log         logging.Config
	MetricsFile string

	// ConfigFile is the file that was read, if any.
	ConfigFile string
}

// StoreConfig converts the settings into a store configuration. Logger,
// clock and metrics are left for the caller.
func (s Settings) StoreConfig() store.Config {
	return store.Config{
		DocumentPath: s.Document,
		WorkbookPath: s.Workbook,
		BackupDir:    s.BackupDir,
		Actor:        s.Actor,
		LockTimeout:  s.LockTimeout,
	}
}

// New returns a viper instance with defaults and environment binding.
func New() *viper.Viper {
	v := viper.New()
	v.SetDefault(KeyDocument, DefaultDocument)
	v.SetDefault(KeyWorkbook, DefaultWorkbook)
	v.SetDefault(KeyBackupDir, "")
	v.SetDefault(KeyActor, store.DefaultActor)
	v.SetDefault(KeyLockTimeout, store.DefaultLockTimeout)
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, logging.FormatConsole)
	v.SetDefault(KeyMetricsFile, "")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// BindFlags binds flags to keys. Only flags that exist in fs are bound, and
// an unset flag never overrides the environment or the config file.
func BindFlags(v *viper.Viper, fs *pflag.FlagSet, flagToKey map[string]string) error {
	for name, key := range flagToKey {
		f := fs.Lookup(name)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("bind flag --%s: %w", name, err)
		}
	}
	return nil
}

// Load reads configFile (if non-empty) and resolves the settings. Without an
// explicit file, ./teachsync.yaml is read when present.
func Load(v *viper.Viper, configFile string) (Settings, error) {
	if err := godotenv.Load(DotEnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Settings{}, fmt.Errorf("read %s: %w", DotEnvFile, err)
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return Settings{}, fmt.Errorf("read config %s: %w", configFile, err)
		}
	} else {
		v.SetConfigName("teachsync")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Settings{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	s := Settings{
		Document:    strings.TrimSpace(v.GetString(KeyDocument)),
		Workbook:    strings.TrimSpace(v.GetString(KeyWorkbook)),
		BackupDir:   strings.TrimSpace(v.GetString(KeyBackupDir)),
		Actor:       strings.TrimSpace(v.GetString(KeyActor)),
		LockTimeout: v.GetDuration(KeyLockTimeout),
		Log: logging.Config{
			Level:  v.GetString(KeyLogLevel),
			Format: v.GetString(KeyLogFormat),
		},
		MetricsFile: strings.TrimSpace(v.GetString(KeyMetricsFile)),
		ConfigFile:  v.ConfigFileUsed(),
	}

	if s.Document == "" {
		return Settings{}, errors.New("document path must not be empty")
	}
	if s.LockTimeout < 0 {
		return Settings{}, fmt.Errorf("lock_timeout must not be negative, got %s", s.LockTimeout)
	}
	if _, err := logging.ParseLevel(s.Log.Level); err != nil {
		return Settings{}, err
	}
	return s, nil
}
