package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Port         string        `yaml:"port"`
	LogLevel     slog.Level    `yaml:"-"`
	StoreBackend string        `yaml:"store_backend"`
	DataDir      string        `yaml:"data_dir"`
	Redis        RedisConfig   `yaml:"redis"`
	Schedule     Schedule      `yaml:"schedule"`
	SinkURL      string        `yaml:"sink_url"`
	SinkSecret   string        `yaml:"sink_secret"`
	HTTPTimeout  time.Duration `yaml:"-"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Prefix   string `yaml:"prefix"`
}

type Schedule struct {
	Timezone  string `yaml:"timezone"`
	SlotHour  int    `yaml:"slot_hour"`
	MaxPerDay int    `yaml:"max_per_day"`
}

func defaults() Config {
	return Config{
		Port:         "8080",
		LogLevel:     slog.LevelInfo,
		StoreBackend: "file",
		DataDir:      "./data",
		Redis:        RedisConfig{Prefix: "cowork"},
		Schedule:     Schedule{Timezone: "UTC", SlotHour: 10},
		HTTPTimeout:  15 * time.Second,
	}
}

// Load reads .env files, then the YAML file named by CONFIG_FILE (if any),
// then applies environment overrides.
func Load() (Config, error) {
	if err := loadEnvFiles(); err != nil {
		return Config{}, err
	}
	cfg := defaults()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}
	applyEnv(&cfg)
	return cfg, cfg.Validate()
}

// FromEnv builds a config from defaults and environment variables only.
func FromEnv() Config {
	cfg := defaults()
	applyEnv(&cfg)
	return cfg
}

func loadEnvFiles() error {
	if f := os.Getenv("ENV_FILE"); f != "" {
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("load env file %s: %w", f, err)
		}
		return nil
	}
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}
	return nil
}

func applyEnv(c *Config) {
	if v := os.Getenv("HTTP_TIMEOUT_SECONDS"); v != "" {
		if d, err := time.ParseDuration(v + "s"); err == nil {
			c.HTTPTimeout = d
		}
	}
	switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
	case "debug":
		c.LogLevel = slog.LevelDebug
	case "warn":
		c.LogLevel = slog.LevelWarn
	case "error":
		c.LogLevel = slog.LevelError
	case "info":
		c.LogLevel = slog.LevelInfo
	}
	c.Port = envOr("PORT", c.Port)
	c.StoreBackend = envOr("STORE_BACKEND", c.StoreBackend)
	c.DataDir = envOr("DATA_DIR", c.DataDir)
	c.Redis.Addr = envOr("REDIS_ADDR", c.Redis.Addr)
	c.Redis.Password = envOr("REDIS_PASSWORD", c.Redis.Password)
	c.Redis.DB = envInt("REDIS_DB", c.Redis.DB)
	c.Redis.Prefix = envOr("REDIS_PREFIX", c.Redis.Prefix)
	c.Schedule.Timezone = envOr("SCHEDULE_TZ", c.Schedule.Timezone)
	c.Schedule.SlotHour = envInt("SLOT_HOUR", c.Schedule.SlotHour)
	c.Schedule.MaxPerDay = envInt("MAX_PER_DAY", c.Schedule.MaxPerDay)
	c.SinkURL = envOr("SINK_URL", c.SinkURL)
	c.SinkSecret = envOr("SINK_SECRET", c.SinkSecret)
}

func (c Config) Validate() error {
	switch c.StoreBackend {
	case "file", "memory":
	case "redis":
		if c.Redis.Addr == "" {
			return errors.New("REDIS_ADDR is required for the redis store")
		}
	default:
		return fmt.Errorf("unknown store backend %q", c.StoreBackend)
	}
	if c.Schedule.SlotHour < 0 || c.Schedule.SlotHour > 23 {
		return fmt.Errorf("slot hour %d out of range", c.Schedule.SlotHour)
	}
	if c.Schedule.MaxPerDay < 0 {
		return fmt.Errorf("max per day %d must not be negative", c.Schedule.MaxPerDay)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location resolves the scheduling time zone.
func (c Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Schedule.Timezone)
	if err != nil {
		return nil, fmt.Errorf("schedule timezone %q: %w", c.Schedule.Timezone, err)
	}
	return loc, nil
}

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func envInt(k string, def int) int {
	v, err := strconv.Atoi(os.Getenv(k))
	if err != nil {
		return def
	}
	return v
}
