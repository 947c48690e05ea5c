package app

import (
	"errors"
	"fmt"
	"strings"
	"time"

	mapstructure "github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

// Config represents the runtime configuration for the answer-board backend.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Sheets   SheetsConfig   `mapstructure:"sheets"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Board    BoardConfig    `mapstructure:"board"`
	Audit    AuditConfig    `mapstructure:"audit"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port     int    `mapstructure:"port"`
	LogLevel string `mapstructure:"log_level"`
}

// DatabaseConfig describes connection options for the supported databases.
// The relational database backs cache entries and audit logs; the record of
// truth for accounts and answers lives in the remote spreadsheet.
type DatabaseConfig struct {
	Driver   string       `mapstructure:"driver"`
	Path     string       `mapstructure:"path"`
	DSN      string       `mapstructure:"dsn"`
	Postgres DBAuthConfig `mapstructure:"postgres"`
	MySQL    DBAuthConfig `mapstructure:"mysql"`
}

// DBAuthConfig represents host based database parameters.
type DBAuthConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Database string `mapstructure:"database"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

// CacheConfig selects and configures the cache backend shared by the tiered
// cache and the rate limiter.
type CacheConfig struct {
	Backend string           `mapstructure:"backend"`
	Redis   RedisCacheConfig `mapstructure:"redis"`
}

// RedisCacheConfig holds Redis connection options.
type RedisCacheConfig struct {
	Address  string        `mapstructure:"address"`
	Username string        `mapstructure:"username"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TLS      bool          `mapstructure:"tls"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// SheetsConfig describes the remote spreadsheet values API.
type SheetsConfig struct {
	BaseURL       string        `mapstructure:"base_url"`
	SpreadsheetID string        `mapstructure:"spreadsheet_id"`
	Token         string        `mapstructure:"token"`
	Timeout       time.Duration `mapstructure:"timeout"`
	UsersSheet    string        `mapstructure:"users_sheet"`
	AnswersSheet  string        `mapstructure:"answers_sheet"`
}

// AuthConfig captures authentication settings.
type AuthConfig struct {
	JWT   JWTSettings   `mapstructure:"jwt"`
	Admin AdminSettings `mapstructure:"admin"`
}

// JWTSettings configures JWT access tokens.
type JWTSettings struct {
	Secret string        `mapstructure:"secret"`
	Issuer string        `mapstructure:"issuer"`
	TTL    time.Duration `mapstructure:"access_token_ttl"`
}

// AdminSettings configures the built-in admin login.
type AdminSettings struct {
	Email        string `mapstructure:"email"`
	PasswordHash string `mapstructure:"password_hash"`
}

// BoardConfig tunes the public answer board.
type BoardConfig struct {
	MaxAnswerLength  int           `mapstructure:"max_answer_length"`
	SubmitRateLimit  int           `mapstructure:"submit_rate_limit"`
	SubmitRateWindow time.Duration `mapstructure:"submit_rate_window"`
}

// AuditConfig controls audit log retention.
type AuditConfig struct {
	Retention time.Duration `mapstructure:"retention"`
}

// LoadConfig initialises application configuration using Viper with sensible defaults.
func LoadConfig(paths ...string) (*Config, error) {
	v := viper.NewWithOptions(viper.ExperimentalBindStruct())
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.AddConfigPath("./config")
	for _, path := range paths {
		v.AddConfigPath(path)
	}

	setDefaults(v)

	v.SetEnvPrefix("ANSWERBOARD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var cfgErr viper.ConfigFileNotFoundError
		if !errors.As(err, &cfgErr) {
			return nil, fmt.Errorf("config: read file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config, decodeHook()); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.log_level", "info")

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "./data/answerboard.sqlite")

	v.SetDefault("cache.backend", "memory")
	v.SetDefault("cache.redis.address", "127.0.0.1:6379")
	v.SetDefault("cache.redis.username", "")
	v.SetDefault("cache.redis.password", "")
	v.SetDefault("cache.redis.db", 0)
	v.SetDefault("cache.redis.tls", false)
	v.SetDefault("cache.redis.timeout", "5s")

	v.SetDefault("sheets.base_url", "")
	v.SetDefault("sheets.spreadsheet_id", "")
	v.SetDefault("sheets.timeout", "10s")
	v.SetDefault("sheets.users_sheet", "users")
	v.SetDefault("sheets.answers_sheet", "answers")

	v.SetDefault("auth.jwt.issuer", "answerboard")
	v.SetDefault("auth.jwt.access_token_ttl", "15m")

	v.SetDefault("board.max_answer_length", 500)
	v.SetDefault("board.submit_rate_limit", 30)
	v.SetDefault("board.submit_rate_window", "1m")

	v.SetDefault("audit.retention", "2160h") // 90 days
}

func decodeHook() viper.DecoderConfigOption {
	return func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}
}
