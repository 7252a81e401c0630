package config

import "time"

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type AppConfig struct {
	DBDriver        string            `yaml:"db_driver" env:"CRIME_DB_DRIVER" env-default:"sqlite"`
	DBPath          string            `yaml:"db_path" env:"CRIME_DB_PATH" env-default:"db/stpaul_crime.sqlite3"`
	DBURL           string            `yaml:"db_url" env:"CRIME_DB_URL"`
	DBMaxOpenConns  int               `yaml:"db_max_open_conns" env:"CRIME_DB_MAX_OPEN_CONNS" env-default:"10"`
	DBBusyTimeoutMS int               `yaml:"db_busy_timeout_ms" env:"CRIME_DB_BUSY_TIMEOUT_MS" env-default:"5000"`
	ListenAddr      string            `yaml:"listen_addr" env:"CRIME_LISTEN_ADDR" env-default:"0.0.0.0:8000"`
	AppEnv          string            `yaml:"app_env" env:"CRIME_APP_ENV"`
	Log             LogConfig         `yaml:"log"`
	Server          ServerConfig      `yaml:"server"`
	Incidents       IncidentsConfig   `yaml:"incidents"`
	Maintenance     MaintenanceConfig `yaml:"maintenance"`
}

type LogConfig struct {
	Level  string `yaml:"level" env:"CRIME_LOG_LEVEL" env-default:"info"`
	Format string `yaml:"format" env:"CRIME_LOG_FORMAT" env-default:"text"`
}

type ServerConfig struct {
	ReadTimeout     time.Duration `yaml:"read_timeout" env:"CRIME_SERVER_READ_TIMEOUT" env-default:"15s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env:"CRIME_SERVER_WRITE_TIMEOUT" env-default:"30s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"CRIME_SERVER_SHUTDOWN_TIMEOUT" env-default:"10s"`
	MaxBodyBytes    int64         `yaml:"max_body_bytes" env:"CRIME_SERVER_MAX_BODY_BYTES" env-default:"65536"`
	MetricsEnabled  bool          `yaml:"metrics_enabled" env:"CRIME_SERVER_METRICS_ENABLED" env-default:"true"`
}

type IncidentsConfig struct {
	DefaultLimit int `yaml:"default_limit" env:"CRIME_INCIDENTS_DEFAULT_LIMIT"`
	MaxLimit     int `yaml:"max_limit" env:"CRIME_INCIDENTS_MAX_LIMIT"`
}

type MaintenanceConfig struct {
	Enabled  bool   `yaml:"enabled" env:"CRIME_MAINTENANCE_ENABLED" env-default:"true"`
	Schedule string `yaml:"schedule" env:"CRIME_MAINTENANCE_SCHEDULE" env-default:"@daily"`
}

func (c *AppConfig) IsPostgres() bool {
	if c == nil {
		return false
	}
	return c.DBDriver == DriverPostgres
}

// Limits applied when incidents.default_limit / incidents.max_limit are
// unset.
const (
	defaultIncidentLimit = 500
	defaultMaxLimit      = 10000
)

// EffectiveLimit resolves the row limit for an incidents query. Zero means
// the caller supplied none.
func (c *IncidentsConfig) EffectiveLimit(requested int) int {
	def := defaultIncidentLimit
	max := defaultMaxLimit
	if c != nil {
		if c.DefaultLimit > 0 {
			def = c.DefaultLimit
		}
		if c.MaxLimit > 0 {
			max = c.MaxLimit
		}
	}
	limit := requested
	if limit <= 0 {
		limit = def
	}
	if limit > max {
		return max
	}
	return limit
}
