// internal/common/config/config.go
package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App        AppConfig        `mapstructure:"app"`
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Catalog    CatalogConfig    `mapstructure:"catalog"`
	Engine     EngineConfig     `mapstructure:"engine"`
	RequestLog RequestLogConfig `mapstructure:"request_log"`
	Scenarios  ScenariosConfig  `mapstructure:"scenarios"`
	Alerts     AlertsConfig     `mapstructure:"alerts"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type ServerConfig struct {
	Port        int `mapstructure:"port"`
	MetricsPort int `mapstructure:"metrics_port"`
	Timeout     int `mapstructure:"timeout"` // milliseconds
}

type DatabaseConfig struct {
	Postgres      PostgresConfig      `mapstructure:"postgres"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	Redis         RedisConfig         `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type ElasticsearchConfig struct {
	Addresses []string `mapstructure:"addresses"`
	Username  string   `mapstructure:"username"`
	Password  string   `mapstructure:"password"`
	Index     string   `mapstructure:"index"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// CatalogConfig selects and tunes the catalog backend.
type CatalogConfig struct {
	Backend  string `mapstructure:"backend"`   // "postgres" or "elasticsearch"
	CacheTTL int    `mapstructure:"cache_ttl"` // milliseconds, redis cache-aside
}

// EngineConfig is the tunable scoring surface. Weights must sum to 100 so a
// candidate satisfying every soft preference scores exactly 100.
type EngineConfig struct {
	TypeWeight       float64 `mapstructure:"type_weight"`
	ThemeWeight      float64 `mapstructure:"theme_weight"`
	BudgetWeight     float64 `mapstructure:"budget_weight"`
	DurationWeight   float64 `mapstructure:"duration_weight"`
	DifficultyWeight float64 `mapstructure:"difficulty_weight"`

	BudgetTolerance   float64 `mapstructure:"budget_tolerance"`    // fraction over budget before credit hits zero
	DurationTolerance int     `mapstructure:"duration_tolerance"`  // days outside the window before credit hits zero
	HighThreshold     float64 `mapstructure:"high_threshold"`
	MidThreshold      float64 `mapstructure:"mid_threshold"`
	MinViableResults  int     `mapstructure:"min_viable_results"`
	MaxResults        int     `mapstructure:"max_results"`
}

type RequestLogConfig struct {
	Enabled   bool `mapstructure:"enabled"`
	QueueSize int  `mapstructure:"queue_size"`
	Timeout   int  `mapstructure:"timeout"` // milliseconds per log write
}

type ScenariosConfig struct {
	Path             string  `mapstructure:"path"`
	BaselinePassRate float64 `mapstructure:"baseline_pass_rate"`
}

// AlertsConfig holds settings for the operational alert channel.
type AlertsConfig struct {
	AWS struct {
		Region string `mapstructure:"region"`
	} `mapstructure:"aws"`
	SNS struct {
		Enabled  bool   `mapstructure:"enabled"`
		TopicARN string `mapstructure:"topic_arn"`
	} `mapstructure:"sns"`
	SES struct {
		Enabled   bool   `mapstructure:"enabled"`
		FromEmail string `mapstructure:"from_email"`
		ToEmail   string `mapstructure:"to_email"`
	} `mapstructure:"ses"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}
