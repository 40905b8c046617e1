package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ErrMissingBackend is returned when BACKEND_BASE_URL is not set.
var ErrMissingBackend = errors.New("config: BACKEND_BASE_URL required")

// Config is the console gateway configuration.
type Config struct {
	HTTPAddr string

	BackendBaseURL string
	BackendToken   string
	BackendTimeout time.Duration

	JWTSecret   string
	DatabaseURL string

	RedisAddr       string
	RedisPassword   string
	RedisDB         int
	SummaryCacheTTL time.Duration

	TimeZone string
	Location *time.Location

	LogLevel  string
	LogFormat string

	File FileConfig
}

// FileConfig is the optional YAML file named by CONSOLE_CONFIG.
type FileConfig struct {
	Units       map[string]string `yaml:"units"`
	Refresh     RefreshConfig     `yaml:"refresh"`
	CORSOrigins []string          `yaml:"cors_origins"`
	ViewState   ViewStateConfig   `yaml:"view_state"`
}

// RefreshConfig holds cron specs for the background refresh jobs. An empty
// spec disables the job; in the file, "off" does the same.
type RefreshConfig struct {
	Dashboard string `yaml:"dashboard"`
	Alarms    string `yaml:"alarms"`
	Schedules string `yaml:"schedules"`
}

// ViewStateConfig holds the sidebar defaults.
type ViewStateConfig struct {
	SmallBreakpoint int `yaml:"small_breakpoint"`
}

// Load reads .env (when present), the environment and the optional YAML file.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("config: load .env: %w", err)
	}

	cfg := Config{
		HTTPAddr:        getenvDefault("HTTP_ADDR", ":8080"),
		BackendBaseURL:  strings.TrimSpace(os.Getenv("BACKEND_BASE_URL")),
		BackendToken:    os.Getenv("BACKEND_TOKEN"),
		BackendTimeout:  getenvDuration("BACKEND_TIMEOUT", 10*time.Second),
		JWTSecret:       getenvDefault("AUTH_JWT_SECRET", getenvDefault("JWT_SECRET", "")),
		DatabaseURL:     getenvDefault("DATABASE_URL", getenvDefault("PG_DSN", "")),
		RedisAddr:       os.Getenv("REDIS_ADDR"),
		RedisPassword:   os.Getenv("REDIS_PASSWORD"),
		RedisDB:         getenvIntDefault("REDIS_DB", 0),
		SummaryCacheTTL: getenvDuration("SUMMARY_CACHE_TTL", 30*time.Second),
		TimeZone:        getenvDefault("TIME_ZONE", "UTC"),
		LogLevel:        getenvDefault("LOG_LEVEL", "info"),
		LogFormat:       getenvDefault("LOG_FORMAT", "json"),
		File: FileConfig{
			Refresh: RefreshConfig{
				Dashboard: getenvSet("REFRESH_DASHBOARD", "@every 1m"),
				Alarms:    os.Getenv("REFRESH_ALARMS"),
				Schedules: os.Getenv("REFRESH_SCHEDULES"),
			},
		},
	}

	if path := os.Getenv("CONSOLE_CONFIG"); path != "" {
		file, err := LoadFile(path)
		if err != nil {
			return cfg, err
		}
		cfg.File = mergeFile(cfg.File, file)
	}

	if cfg.BackendBaseURL == "" {
		return cfg, ErrMissingBackend
	}
	loc, err := time.LoadLocation(cfg.TimeZone)
	if err != nil {
		return cfg, fmt.Errorf("config: TIME_ZONE %q: %w", cfg.TimeZone, err)
	}
	cfg.Location = loc
	return cfg, nil
}

// LoadFile parses a YAML config file.
func LoadFile(path string) (FileConfig, error) {
	var file FileConfig
	data, err := os.ReadFile(path)
	if err != nil {
		return file, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &file); err != nil {
		return file, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return file, nil
}

// mergeFile overlays the non-empty fields of file onto base.
func mergeFile(base, file FileConfig) FileConfig {
	if len(file.Units) > 0 {
		base.Units = file.Units
	}
	if file.Refresh.Dashboard != "" {
		base.Refresh.Dashboard = refreshSpec(file.Refresh.Dashboard)
	}
	if file.Refresh.Alarms != "" {
		base.Refresh.Alarms = refreshSpec(file.Refresh.Alarms)
	}
	if file.Refresh.Schedules != "" {
		base.Refresh.Schedules = refreshSpec(file.Refresh.Schedules)
	}
	if len(file.CORSOrigins) > 0 {
		base.CORSOrigins = file.CORSOrigins
	}
	if file.ViewState.SmallBreakpoint > 0 {
		base.ViewState.SmallBreakpoint = file.ViewState.SmallBreakpoint
	}
	return base
}

func getenvDefault(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

func refreshSpec(spec string) string {
	if strings.EqualFold(strings.TrimSpace(spec), "off") {
		return ""
	}
	return spec
}

// getenvSet returns fallback only when key is unset; an empty value is kept.
func getenvSet(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return strings.TrimSpace(value)
	}
	return fallback
}

func getenvIntDefault(key string, fallback int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}
