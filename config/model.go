package config

import (
	"fmt"

	"github.com/rs/zerolog"
)

// Roles known to the role gate. Any other role string is accepted for a user
// but grants no backup privileges.
const (
	RoleAdmin   = "admin"
	RoleManager = "manager"
	RoleCashier = "cashier"
)

type Config struct {
	ListenAddr     string       `mapstructure:"listen-addr"`
	StorePath      string       `mapstructure:"store-path"`
	BackupDir      string       `mapstructure:"backup-dir"`
	LogsDir        string       `mapstructure:"logs-dir"`
	SeedDemoData   bool         `mapstructure:"seed-demo-data"`
	BackupSchedule string       `mapstructure:"backup-schedule"`
	BackupPrefix   string       `mapstructure:"backup-prefix"`
	RetentionKeep  int          `mapstructure:"retention-keep"`
	MaxArchiveSize SizeArgument `mapstructure:"max-archive-size"`
	Users          []User       `mapstructure:"users"`
}

// User maps an API token to a named caller and its role.
type User struct {
	Name  string `mapstructure:"name"`
	Token string `mapstructure:"token"`
	Role  string `mapstructure:"role"`
}

func (u User) MarshalZerologObject(e *zerolog.Event) {
	e.Str("name", u.Name)
	e.Str("role", u.Role)
}

func (c *Config) Validate() error {
	if c.StorePath == "" {
		return fmt.Errorf("store-path must be set")
	}
	if c.BackupDir == "" {
		return fmt.Errorf("backup-dir must be set")
	}
	if c.RetentionKeep < 0 {
		return fmt.Errorf("retention-keep must not be negative")
	}
	seen := map[string]struct{}{}
	for _, u := range c.Users {
		if u.Token == "" {
			return fmt.Errorf("user %q has no token", u.Name)
		}
		if _, ok := seen[u.Token]; ok {
			return fmt.Errorf("duplicate token for user %q", u.Name)
		}
		seen[u.Token] = struct{}{}
	}
	return nil
}
