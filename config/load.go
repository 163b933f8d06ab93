package config

import (
	"errors"
	"os"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

const (
	defaultListenAddr    = "127.0.0.1:8000"
	defaultStorePath     = "pinak.db"
	defaultBackupDir     = "backups"
	defaultBackupPrefix  = "backup"
	defaultRetentionKeep = 10
)

// LoadFromFile reads the server configuration from a YAML file, applying
// PINAK_* environment overrides and built-in defaults. A missing file is not
// an error; defaults are used.
func LoadFromFile(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix("PINAK")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	v.SetDefault("listen-addr", defaultListenAddr)
	v.SetDefault("store-path", defaultStorePath)
	v.SetDefault("backup-dir", defaultBackupDir)
	v.SetDefault("logs-dir", "")
	v.SetDefault("seed-demo-data", true)
	v.SetDefault("backup-schedule", "")
	v.SetDefault("backup-prefix", defaultBackupPrefix)
	v.SetDefault("retention-keep", defaultRetentionKeep)
	// Registered so PINAK_MAX_ARCHIVE_SIZE is visible to Unmarshal; "0"
	// parses to unlimited.
	v.SetDefault("max-archive-size", "0")

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("pinak")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return nil, err
		}
	}

	cfg := &Config{}
	err := v.Unmarshal(cfg, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.TextUnmarshallerHookFunc(),
	)))
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}
