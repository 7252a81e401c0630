package config

import (
	"fmt"
	"strings"

	"github.com/ilyakaznacheev/cleanenv"
)

// Load reads the YAML file at path (if any) and applies CRIME_* environment
// overrides on top of the defaults.
func Load(path string) (*AppConfig, error) {
	var cfg AppConfig
	if strings.TrimSpace(path) != "" {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("read env config: %w", err)
	}
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *AppConfig) normalize() error {
	c.DBDriver = strings.ToLower(strings.TrimSpace(c.DBDriver))
	switch c.DBDriver {
	case "", "sqlite3":
		c.DBDriver = DriverSQLite
	case "pg", "pgx", "postgresql":
		c.DBDriver = DriverPostgres
	}
	switch c.DBDriver {
	case DriverSQLite:
		if strings.TrimSpace(c.DBPath) == "" {
			return fmt.Errorf("db_path is required for the sqlite driver")
		}
	case DriverPostgres:
		if strings.TrimSpace(c.DBURL) == "" {
			return fmt.Errorf("db_url is required for the postgres driver")
		}
	default:
		return fmt.Errorf("unsupported db_driver %q", c.DBDriver)
	}
	if strings.TrimSpace(c.ListenAddr) == "" {
		c.ListenAddr = "0.0.0.0:8000"
	}
	if c.Incidents.DefaultLimit <= 0 {
		c.Incidents.DefaultLimit = defaultIncidentLimit
	}
	if c.Incidents.MaxLimit <= 0 {
		c.Incidents.MaxLimit = defaultMaxLimit
	}
	if c.Incidents.DefaultLimit > c.Incidents.MaxLimit {
		return fmt.Errorf("incidents.default_limit %d exceeds incidents.max_limit %d", c.Incidents.DefaultLimit, c.Incidents.MaxLimit)
	}
	return nil
}
