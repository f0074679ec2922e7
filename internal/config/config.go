package config

import (
	"fmt"
	"os"
	"os/user"
	"path/filepath"

	"github.com/caarlos0/env/v11"
)

// Config holds environment-driven configuration.
type Config struct {
	Store struct {
		// Backend selects the persistence adapter: sqlite (default) or mysql.
		Backend string `env:"TASKERY_STORE" envDefault:"sqlite"`
		// SQLitePath defaults to $XDG_DATA_HOME/taskery/taskery.db.
		SQLitePath string `env:"TASKERY_SQLITE_PATH"`
		// MySQLDSN e.g. user:pass@tcp(host:3306)/dbname?parseTime=true&multiStatements=true
		MySQLDSN string `env:"TASKERY_MYSQL_DSN"`
	}
	User struct {
		// ID identifies the timer owner; defaults to the OS username.
		ID string `env:"TASKERY_USER_ID"`
	}
	HTTP struct {
		Addr string `env:"TASKERY_HTTP_ADDR" envDefault:":8090"`
	}
	Timezone string `env:"TASKERY_TZ" envDefault:"UTC"`
}

// Load reads configuration from environment variables and fills in the
// local-use defaults.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}

	switch cfg.Store.Backend {
	case "sqlite":
		if cfg.Store.SQLitePath == "" {
			dir, err := dataDir()
			if err != nil {
				return cfg, fmt.Errorf("resolving data directory: %w", err)
			}
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return cfg, fmt.Errorf("creating data directory: %w", err)
			}
			cfg.Store.SQLitePath = filepath.Join(dir, "taskery.db")
		}
	case "mysql":
		if cfg.Store.MySQLDSN == "" {
			return cfg, fmt.Errorf("TASKERY_MYSQL_DSN is required when TASKERY_STORE=mysql")
		}
	default:
		return cfg, fmt.Errorf("unknown TASKERY_STORE %q (want sqlite or mysql)", cfg.Store.Backend)
	}

	if cfg.User.ID == "" {
		if u, err := user.Current(); err == nil {
			cfg.User.ID = u.Username
		}
	}

	return cfg, nil
}

// dataDir returns the taskery-specific XDG data directory.
// Path: $XDG_DATA_HOME/taskery or ~/.local/share/taskery
func dataDir() (string, error) {
	base := os.Getenv("XDG_DATA_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(base, "taskery"), nil
}
