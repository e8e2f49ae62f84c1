package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type Config struct {
	Mode          string          `mapstructure:"mode"`
	HTTPPort      int             `mapstructure:"http_port"`
	LogLevel      string          `mapstructure:"log_level"`
	StorageDriver string          `mapstructure:"storage_driver"`
	DB            DatabaseConfig  `mapstructure:"db"`
	Redis         RedisConfig     `mapstructure:"redis"`
	JWT           JWTConfig       `mapstructure:"jwt"`
	QRoom         RoomCodeConfig  `mapstructure:"qroom"`
	RateLimit     RateLimitConfig `mapstructure:"rate_limit"`
	Sweeper       SweeperConfig   `mapstructure:"sweeper"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
}

// DSN returns the Postgres connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type JWTConfig struct {
	AccessSecret  string        `mapstructure:"access_secret"`
	RefreshSecret string        `mapstructure:"refresh_secret"`
	AccessTTL     time.Duration `mapstructure:"access_ttl"`
	RefreshTTL    time.Duration `mapstructure:"refresh_ttl"`
	// GuestTTL of zero issues guest tokens without expiry.
	GuestTTL time.Duration `mapstructure:"guest_ttl"`
}

type RoomCodeConfig struct {
	CodeLength      int    `mapstructure:"code_length"`
	CodeAlphabet    string `mapstructure:"code_alphabet"`
	CodeMaxAttempts int    `mapstructure:"code_max_attempts"`
}

type RateLimitConfig struct {
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
}

type SweeperConfig struct {
	Schedule string        `mapstructure:"schedule"`
	Grace    time.Duration `mapstructure:"grace"`
}

const (
	ModeDebug   = "debug"
	ModeRelease = "release"

	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

func (c *Config) Debug() bool { return c.Mode == ModeDebug }

// Logger пишет в w: человекочитаемо в debug-режиме, JSON в release.
func (c *Config) Logger(w io.Writer) zerolog.Logger {
	if c.Debug() {
		w = zerolog.ConsoleWriter{Out: w}
	}
	logger := zerolog.New(w).With().Timestamp().Logger()
	if level, err := zerolog.ParseLevel(c.LogLevel); err == nil && level != zerolog.NoLevel {
		logger = logger.Level(level)
	}
	return logger
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("mode", ModeRelease)
	v.SetDefault("http_port", 8080)
	v.SetDefault("log_level", "info")
	v.SetDefault("storage_driver", DriverPostgres)

	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", "5432")
	v.SetDefault("db.user", "postgres")
	v.SetDefault("db.password", "")
	v.SetDefault("db.name", "queueroom")
	v.SetDefault("db.sslmode", "disable")

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("jwt.access_secret", "")
	v.SetDefault("jwt.refresh_secret", "")
	v.SetDefault("jwt.access_ttl", "15m")
	v.SetDefault("jwt.refresh_ttl", "168h")
	v.SetDefault("jwt.guest_ttl", "72h")

	v.SetDefault("qroom.code_length", 5)
	v.SetDefault("qroom.code_alphabet", "0123456789")
	v.SetDefault("qroom.code_max_attempts", 16)

	v.SetDefault("rate_limit.requests", 30)
	v.SetDefault("rate_limit.window", "1m")

	v.SetDefault("sweeper.schedule", "0 */10 * * * *")
	v.SetDefault("sweeper.grace", "10m")
}

// Load reads .env (unless ENV_CHEK is set) and maps the environment onto
// Config. DB_HOST sets db.host, JWT_ACCESS_TTL sets jwt.access_ttl and so on.
func Load() (*Config, error) {
	if os.Getenv("ENV_CHEK") == "" {
		if err := godotenv.Load(); err != nil {
			log.Warn().Str("module", "config").Msg(".env not found, using environment")
		} else {
			log.Info().Str("module", "config").Msg("loaded .env")
		}
	}

	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	log.Info().Str("module", "config").
		Str("mode", cfg.Mode).
		Int("port", cfg.HTTPPort).
		Str("storage", cfg.StorageDriver).
		Msg("configuration loaded")
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Mode != ModeDebug && c.Mode != ModeRelease {
		return fmt.Errorf("config: unknown mode %q", c.Mode)
	}
	if c.StorageDriver != DriverPostgres && c.StorageDriver != DriverMemory {
		return fmt.Errorf("config: unknown storage driver %q", c.StorageDriver)
	}
	if c.JWT.AccessSecret == "" || c.JWT.RefreshSecret == "" {
		if !c.Debug() {
			return errors.New("config: JWT_ACCESS_SECRET and JWT_REFRESH_SECRET are required in release mode")
		}
		log.Warn().Str("module", "config").Msg("JWT secrets are not set, using development secrets")
		if c.JWT.AccessSecret == "" {
			c.JWT.AccessSecret = "dev-access-secret"
		}
		if c.JWT.RefreshSecret == "" {
			c.JWT.RefreshSecret = "dev-refresh-secret"
		}
	}
	if c.QRoom.CodeLength <= 0 || len(c.QRoom.CodeAlphabet) < 2 {
		return errors.New("config: room code length and alphabet must be set")
	}
	if c.QRoom.CodeMaxAttempts <= 0 {
		return errors.New("config: QROOM_CODE_MAX_ATTEMPTS must be positive")
	}
	if c.RateLimit.Requests <= 0 || c.RateLimit.Window <= 0 {
		return errors.New("config: rate limit requests and window must be positive")
	}
	return nil
}
