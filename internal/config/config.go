package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"auto_service_backend/pkg/utils"
)

type Config struct {
	Server struct {
		Port               int      `mapstructure:"port"`
		CorsAllowedOrigins []string `mapstructure:"cors_allowed_origins"`
		GinMode            string   `mapstructure:"gin_mode"`
	} `mapstructure:"server"`

	Database struct {
		Host        string `mapstructure:"host"`
		Port        int    `mapstructure:"port"`
		User        string `mapstructure:"user"`
		Password    string `mapstructure:"password"`
		Name        string `mapstructure:"name"`
		SSLMode     string `mapstructure:"sslmode"`
		ApplySchema bool   `mapstructure:"apply_schema"`
	} `mapstructure:"database"`

	Auth struct {
		JWTSecret string `mapstructure:"jwt_secret"`
	} `mapstructure:"auth"`

	Log struct {
		Level   string `mapstructure:"level"`
		Console bool   `mapstructure:"console"`
	} `mapstructure:"log"`

	Shop struct {
		Timezone string `mapstructure:"timezone"`
		Name     string `mapstructure:"name"`
		Slogan   string `mapstructure:"slogan"`
		Address  string `mapstructure:"address"`
		Phone    string `mapstructure:"phone"`
	} `mapstructure:"shop"`

	Lifts struct {
		Backend    string `mapstructure:"backend"` // sqlite | redis | memory
		SQLitePath string `mapstructure:"sqlite_path"`
		Redis      struct {
			Addr     string `mapstructure:"addr"`
			Password string `mapstructure:"password"`
			DB       int    `mapstructure:"db"`
		} `mapstructure:"redis"`
	} `mapstructure:"lifts"`

	Maintenance struct {
		Enabled      bool          `mapstructure:"enabled"`
		Interval     time.Duration `mapstructure:"interval"`
		RunOnStartup bool          `mapstructure:"run_on_startup"`
	} `mapstructure:"maintenance"`

	Storage struct {
		S3 struct {
			Enabled   bool   `mapstructure:"enabled"`
			Bucket    string `mapstructure:"bucket"`
			Endpoint  string `mapstructure:"endpoint"`
			Region    string `mapstructure:"region"`
			AccessKey string `mapstructure:"access_key"`
			SecretKey string `mapstructure:"secret_key"`
			Prefix    string `mapstructure:"prefix"`
		} `mapstructure:"s3"`
	} `mapstructure:"storage"`
}

// envBindings maps flat environment variable names onto nested keys.
var envBindings = map[string]string{
	"server.port":                 "PORT",
	"server.cors_allowed_origins": "CORS_ALLOWED_ORIGINS",
	"server.gin_mode":             "GIN_MODE",
	"database.host":               "DB_HOST",
	"database.port":               "DB_PORT",
	"database.user":               "DB_USER",
	"database.password":           "DB_PASSWORD",
	"database.name":               "DB_NAME",
	"database.sslmode":            "DB_SSLMODE",
	"database.apply_schema":       "DB_APPLY_SCHEMA",
	"auth.jwt_secret":             "AUTH_JWT_SECRET",
	"log.level":                   "LOG_LEVEL",
	"log.console":                 "LOG_CONSOLE",
	"shop.timezone":               "SHOP_TIMEZONE",
	"lifts.backend":               "LIFTS_BACKEND",
	"lifts.sqlite_path":           "LIFTS_SQLITE_PATH",
	"lifts.redis.addr":            "REDIS_ADDR",
	"lifts.redis.password":        "REDIS_PASSWORD",
	"lifts.redis.db":              "REDIS_DB",
	"maintenance.enabled":         "MAINTENANCE_ENABLED",
	"maintenance.interval":        "MAINTENANCE_INTERVAL",
	"maintenance.run_on_startup":  "MAINTENANCE_RUN_ON_STARTUP",
	"storage.s3.enabled":          "S3_ENABLED",
	"storage.s3.bucket":           "S3_BUCKET",
	"storage.s3.endpoint":         "S3_ENDPOINT",
	"storage.s3.region":           "S3_REGION",
	"storage.s3.access_key":       "S3_ACCESS_KEY",
	"storage.s3.secret_key":       "S3_SECRET_KEY",
	"storage.s3.prefix":           "S3_PREFIX",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.cors_allowed_origins", []string{"http://localhost:3000", "http://localhost:5173"})
	v.SetDefault("server.gin_mode", "release")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "autoservice")
	v.SetDefault("database.name", "autoservice")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.apply_schema", true)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.console", true)
	v.SetDefault("shop.timezone", "Europe/Belgrade")
	v.SetDefault("shop.name", "AUTO SERVICE BASHKIMI")
	v.SetDefault("shop.slogan", "CHIPTUNING")
	v.SetDefault("shop.address", "Livoq i Poshtëm, Gjilan")
	v.SetDefault("shop.phone", "+383 44 955 389 / 044 577 311")
	v.SetDefault("lifts.backend", "sqlite")
	v.SetDefault("lifts.sqlite_path", "data/lifts.db")
	v.SetDefault("lifts.redis.addr", "localhost:6379")
	v.SetDefault("maintenance.enabled", true)
	v.SetDefault("maintenance.interval", time.Hour)
	v.SetDefault("maintenance.run_on_startup", true)
	v.SetDefault("storage.s3.region", "auto")
	v.SetDefault("storage.s3.prefix", "daily-reports/")
}

// Load reads configs/config.yaml (optional), .env (optional) and the environment.
// The binary runs on defaults alone.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetConfigFile(utils.Getenv("CONFIG_FILE", "configs/config.yaml"))
	v.AutomaticEnv()
	setDefaults(v)

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("binding %s: %w", env, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		utils.LogInfo("No config file found, using defaults and environment", map[string]interface{}{"file": v.ConfigFileUsed()})
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config unmarshal error: %w", err)
	}

	// Comma separated lists from the environment may carry blanks around entries.
	cfg.Server.CorsAllowedOrigins = splitList(strings.Join(cfg.Server.CorsAllowedOrigins, ","))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects configurations the server cannot start with.
func (c *Config) Validate() error {
	switch c.Lifts.Backend {
	case "sqlite", "redis", "memory":
	default:
		return fmt.Errorf("unknown lifts backend %q", c.Lifts.Backend)
	}
	if c.Maintenance.Interval <= 0 {
		return fmt.Errorf("maintenance interval must be positive, got %s", c.Maintenance.Interval)
	}
	if c.Storage.S3.Enabled && c.Storage.S3.Bucket == "" {
		return fmt.Errorf("storage.s3.bucket is required when S3 export is enabled")
	}
	return nil
}

// DSN builds the lib/pq connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host, c.Database.Port, c.Database.User, c.Database.Password, c.Database.Name, c.Database.SSLMode)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
