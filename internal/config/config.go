package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Geocode   GeocodeConfig   `yaml:"geocode" mapstructure:"geocode"`
	Warehouse WarehouseConfig `yaml:"warehouse" mapstructure:"warehouse"`
	Anthropic AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
	Analyzers AnalyzersConfig `yaml:"analyzers" mapstructure:"analyzers"`
	Batch     BatchConfig     `yaml:"batch" mapstructure:"batch"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the run-audit database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	SQLitePath  string `yaml:"sqlite_path" mapstructure:"sqlite_path"`
}

// GeocodeConfig holds geocoding API settings.
type GeocodeConfig struct {
	GoogleKey     string  `yaml:"google_key" mapstructure:"google_key"`
	RateLimit     float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
	CacheTTLDays  int     `yaml:"cache_ttl_days" mapstructure:"cache_ttl_days"`
	CacheDisabled bool    `yaml:"cache_disabled" mapstructure:"cache_disabled"`
}

// WarehouseConfig holds BigQuery settings. Project and dataset identify
// where the provisioned tables live; MaxRows caps result sets the same
// way the warehouse-side insight tooling does.
type WarehouseConfig struct {
	ProjectID string `yaml:"project_id" mapstructure:"project_id"`
	Dataset   string `yaml:"dataset" mapstructure:"dataset"`
	MaxRows   int    `yaml:"max_rows" mapstructure:"max_rows"`
}

// AnthropicConfig holds Anthropic API settings. QueryModel drives SQL
// generation when GenerateSQL is true; Model writes report narratives.
type AnthropicConfig struct {
	Key         string `yaml:"key" mapstructure:"key"`
	Model       string `yaml:"model" mapstructure:"model"`
	QueryModel  string `yaml:"query_model" mapstructure:"query_model"`
	MaxTokens   int64  `yaml:"max_tokens" mapstructure:"max_tokens"`
	GenerateSQL bool   `yaml:"generate_sql" mapstructure:"generate_sql"`
}

// AnalyzersConfig holds the radius/limit policy for the three analyzers.
// Values may be overridden by a policy file (see analyzer.LoadPolicy).
type AnalyzersConfig struct {
	DemographicRadiusM float64 `yaml:"demographic_radius_m" mapstructure:"demographic_radius_m"`
	CompetitionRadiusM float64 `yaml:"competition_radius_m" mapstructure:"competition_radius_m"`
	GapRadiusM         float64 `yaml:"gap_radius_m" mapstructure:"gap_radius_m"`
	ResultLimit        int     `yaml:"result_limit" mapstructure:"result_limit"`
	GridTiles          int     `yaml:"grid_tiles" mapstructure:"grid_tiles"`
	PolicyFile         string  `yaml:"policy_file" mapstructure:"policy_file"`
}

// BatchConfig configures batch analysis.
type BatchConfig struct {
	MaxConcurrent int `yaml:"max_concurrent" mapstructure:"max_concurrent"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("SITEIQ")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.sqlite_path", "siteiq.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("batch.max_concurrent", 5)
	v.SetDefault("geocode.rate_limit", 10)
	v.SetDefault("geocode.cache_ttl_days", 30)
	v.SetDefault("warehouse.dataset", "geo_intent")
	v.SetDefault("warehouse.max_rows", 80)
	v.SetDefault("anthropic.model", "claude-sonnet-4-5-20250929")
	v.SetDefault("anthropic.query_model", "claude-haiku-4-5-20251001")
	v.SetDefault("anthropic.max_tokens", 2048)
	v.SetDefault("analyzers.demographic_radius_m", 5000)
	v.SetDefault("analyzers.competition_radius_m", 2000)
	v.SetDefault("analyzers.gap_radius_m", 3000)
	v.SetDefault("analyzers.result_limit", 10)
	v.SetDefault("analyzers.grid_tiles", 16)

	// Keys without defaults are invisible to AutomaticEnv until bound.
	for _, key := range []string{
		"store.database_url",
		"geocode.google_key",
		"geocode.cache_disabled",
		"warehouse.project_id",
		"anthropic.key",
		"anthropic.generate_sql",
		"analyzers.policy_file",
	} {
		if err := v.BindEnv(key); err != nil {
			return nil, eris.Wrapf(err, "config: bind env %s", key)
		}
	}

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
