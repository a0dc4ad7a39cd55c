package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/attendance"
	attendanceService "github.com/cmlabs-hris/attendance-engine/internal/service/attendance"
	"github.com/joho/godotenv"
)

type Config struct {
	Database DatabaseConfig
	App      AppConfig
	Engine   EngineConfig
	Cache    CacheConfig
	Cron     CronConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
	MaxConns int32
	MinConns int32
}

// AppConfig holds application configuration
type AppConfig struct {
	Name           string
	Version        string
	Port           int
	Env            string
	LogLevel       string
	AllowedOrigins []string
}

// EngineConfig holds the reconciliation pipeline knobs
type EngineConfig struct {
	DuplicateThreshold time.Duration
	EnableCancellation bool
	BreakSequenceMode  string
	WorkCodeTable      string
	CorrectionTable    string
	Timezone           string
	WeekendDays        []string
	ReferenceFile      string
	NormalizeGrace     int
	NormalizeEarly     int
	NormalizeLate      int
	BatchLimit         int
}

type CacheConfig struct {
	MaxPeriods int
}

type CronConfig struct {
	Enabled         bool
	RefreshInterval time.Duration
	PruneInterval   time.Duration
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	config := &Config{}

	// Database configuration
	dbPort, err := getEnvInt("DB_PORT", 5432)
	if err != nil {
		return nil, err
	}
	maxConns, err := getEnvInt("DB_MAX_CONNS", 25)
	if err != nil {
		return nil, err
	}
	minConns, err := getEnvInt("DB_MIN_CONNS", 5)
	if err != nil {
		return nil, err
	}

	config.Database = DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     dbPort,
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "attendance"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
		MaxConns: int32(maxConns),
		MinConns: int32(minConns),
	}

	// Application configuration
	appPort, err := getEnvInt("APP_PORT", 8080)
	if err != nil {
		return nil, err
	}

	config.App = AppConfig{
		Name:           getEnv("APP_NAME", "attendance-engine"),
		Version:        getEnv("APP_VERSION", "dev"),
		Port:           appPort,
		Env:            getEnv("APP_ENV", "development"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		AllowedOrigins: getEnvSlice("ALLOWED_ORIGINS"),
	}
	if len(config.App.AllowedOrigins) == 0 {
		config.App.AllowedOrigins = []string{"*"}
	}

	// Engine configuration
	threshold, err := getEnvDuration("DUPLICATE_THRESHOLD", 0)
	if err != nil {
		return nil, err
	}
	cancellation, err := getEnvBool("ENABLE_CANCELLATION", true)
	if err != nil {
		return nil, err
	}
	grace, err := getEnvInt("NORMALIZE_GRACE", 10)
	if err != nil {
		return nil, err
	}
	early, err := getEnvInt("NORMALIZE_EARLY", 20)
	if err != nil {
		return nil, err
	}
	late, err := getEnvInt("NORMALIZE_LATE", 20)
	if err != nil {
		return nil, err
	}
	batchLimit, err := getEnvInt("BATCH_LIMIT", attendanceService.DefaultBatchLimit)
	if err != nil {
		return nil, err
	}
	weekend := getEnvSlice("WEEKEND_DAYS")
	if len(weekend) == 0 {
		weekend = []string{"Friday", "Saturday"}
	}

	config.Engine = EngineConfig{
		DuplicateThreshold: threshold,
		EnableCancellation: cancellation,
		BreakSequenceMode:  getEnv("BREAK_SEQUENCE_MODE", string(attendanceService.BreakSequenceStrict)),
		WorkCodeTable:      getEnv("WORKCODE_TABLE", "v2"),
		CorrectionTable:    getEnv("CORRECTION_TABLE", "v2"),
		Timezone:           getEnv("TIMEZONE", "UTC"),
		WeekendDays:        weekend,
		ReferenceFile:      getEnv("REFERENCE_FILE", ""),
		NormalizeGrace:     grace,
		NormalizeEarly:     early,
		NormalizeLate:      late,
		BatchLimit:         batchLimit,
	}

	// Cache configuration
	maxPeriods, err := getEnvInt("CACHE_MAX_PERIODS", 24)
	if err != nil {
		return nil, err
	}
	config.Cache = CacheConfig{MaxPeriods: maxPeriods}

	// Cron configuration
	cronEnabled, err := getEnvBool("CRON_ENABLED", true)
	if err != nil {
		return nil, err
	}
	refresh, err := getEnvDuration("CRON_REFRESH_INTERVAL", time.Hour)
	if err != nil {
		return nil, err
	}
	prune, err := getEnvDuration("CRON_PRUNE_INTERVAL", 24*time.Hour)
	if err != nil {
		return nil, err
	}
	config.Cron = CronConfig{
		Enabled:         cronEnabled,
		RefreshInterval: refresh,
		PruneInterval:   prune,
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	slog.Debug("Configuration loaded", "env", config.App.Env, "timezone", config.Engine.Timezone)
	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.Engine.DuplicateThreshold < 0 {
		return fmt.Errorf("DUPLICATE_THRESHOLD must not be negative")
	}
	if c.Engine.BatchLimit <= 0 {
		return fmt.Errorf("BATCH_LIMIT must be positive")
	}
	if c.Cache.MaxPeriods <= 0 {
		return fmt.Errorf("CACHE_MAX_PERIODS must be positive")
	}
	// Building the options runs every table, mode and timezone lookup
	if _, err := c.EngineOptions(); err != nil {
		return err
	}
	return nil
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// EngineOptions resolves the engine settings into pipeline options.
func (c *Config) EngineOptions() (attendanceService.Options, error) {
	e := c.Engine

	mode, err := attendanceService.ParseBreakSequenceMode(e.BreakSequenceMode)
	if err != nil {
		return attendanceService.Options{}, fmt.Errorf("invalid BREAK_SEQUENCE_MODE: %w", err)
	}
	workCodes, err := attendance.WorkCodeTableByVersion(e.WorkCodeTable)
	if err != nil {
		return attendanceService.Options{}, fmt.Errorf("invalid WORKCODE_TABLE: %w", err)
	}
	corrections, err := attendance.CorrectionTableByVersion(e.CorrectionTable)
	if err != nil {
		return attendanceService.Options{}, fmt.Errorf("invalid CORRECTION_TABLE: %w", err)
	}
	loc, err := time.LoadLocation(e.Timezone)
	if err != nil {
		return attendanceService.Options{}, fmt.Errorf("invalid TIMEZONE: %w", err)
	}
	weekend, err := ParseWeekdays(e.WeekendDays)
	if err != nil {
		return attendanceService.Options{}, fmt.Errorf("invalid WEEKEND_DAYS: %w", err)
	}

	return attendanceService.Options{
		DuplicateThreshold: e.DuplicateThreshold,
		EnableCancellation: e.EnableCancellation,
		BreakMode:          mode,
		Windows: attendanceService.NormalizeWindows{
			Grace: e.NormalizeGrace,
			Early: e.NormalizeEarly,
			Late:  e.NormalizeLate,
		},
		WorkCodes:   workCodes,
		Corrections: corrections,
		Location:    loc,
		Weekend:     weekend,
	}, nil
}

// ParseWeekdays parses full or three-letter English weekday names, case-insensitive.
func ParseWeekdays(names []string) ([]time.Weekday, error) {
	days := make([]time.Weekday, 0, len(names))
	for _, name := range names {
		n := strings.ToLower(strings.TrimSpace(name))
		if n == "" {
			continue
		}
		found := false
		for d := time.Sunday; d <= time.Saturday; d++ {
			full := strings.ToLower(d.String())
			if n == full || n == full[:3] {
				days = append(days, d)
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("unknown weekday %q", name)
		}
	}
	return days, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	value := getEnv(key, "")
	if value == "" {
		return fallback, nil
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return i, nil
}

func getEnvBool(key string, fallback bool) (bool, error) {
	value := getEnv(key, "")
	if value == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}

// getEnvDuration accepts Go durations ("90s", "1m") or a bare number of seconds.
func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	value := getEnv(key, "")
	if value == "" {
		return fallback, nil
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func getEnvSlice(env string) []string {
	value := getEnv(env, "")
	if value == "" {
		return []string{}
	}
	var result []string
	for _, v := range strings.Split(value, ",") {
		if v = strings.TrimSpace(v); v != "" {
			result = append(result, v)
		}
	}
	return result
}
