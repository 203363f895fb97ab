package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/nconklindev/mealroute/internal/types"

	"github.com/joho/godotenv"
)

const (
	DateLayout              = "2006-01-02"
	DefaultExcludeSubstring = "COPO"
	DefaultMaxRoutes        = 14
)

type Config struct {
	WeekStart        time.Time
	DefaultDelivered bool
	ExcludeCOPO      bool
	ExcludeSubstring string
	MaxRoutes        int
	OutputDir        string
	LogFile          string
	LogLevel         string
}

// Default returns the configuration used when nothing is set in the
// environment.
func Default() Config {
	return Config{
		WeekStart:        MondayOf(time.Now()),
		DefaultDelivered: true,
		ExcludeCOPO:      true,
		ExcludeSubstring: DefaultExcludeSubstring,
		MaxRoutes:        DefaultMaxRoutes,
		OutputDir:        ".",
		LogFile:          "mealroute.log",
		LogLevel:         "info",
	}
}

// Load reads an optional .env file and then the MEALROUTE_* environment.
func Load() (Config, error) {
	_ = godotenv.Load()
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from a lookup function so tests can avoid touching
// the process environment.
func FromEnv(getenv func(string) string) (Config, error) {
	cfg := Default()

	if v := strings.TrimSpace(getenv("MEALROUTE_WEEK_START")); v != "" {
		t, err := ParseWeekStart(v)
		if err != nil {
			return cfg, fmt.Errorf("MEALROUTE_WEEK_START: %w", err)
		}
		cfg.WeekStart = t
	}

	var err error
	if cfg.DefaultDelivered, err = envBool(getenv, "MEALROUTE_DEFAULT_DELIVERED", cfg.DefaultDelivered); err != nil {
		return cfg, err
	}
	if cfg.ExcludeCOPO, err = envBool(getenv, "MEALROUTE_EXCLUDE_COPO", cfg.ExcludeCOPO); err != nil {
		return cfg, err
	}

	if v := strings.TrimSpace(getenv("MEALROUTE_EXCLUDE_SUBSTRING")); v != "" {
		cfg.ExcludeSubstring = v
	}

	if v := strings.TrimSpace(getenv("MEALROUTE_MAX_ROUTES")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return cfg, fmt.Errorf("MEALROUTE_MAX_ROUTES: expected a positive integer, got %q", v)
		}
		cfg.MaxRoutes = n
	}

	if v := strings.TrimSpace(getenv("MEALROUTE_OUTPUT_DIR")); v != "" {
		cfg.OutputDir = v
	}
	if v := strings.TrimSpace(getenv("MEALROUTE_LOG_FILE")); v != "" {
		cfg.LogFile = v
	}
	if v := strings.TrimSpace(getenv("MEALROUTE_LOG_LEVEL")); v != "" {
		cfg.LogLevel = strings.ToLower(v)
	}

	return cfg, nil
}

// ParseWeekStart parses a YYYY-MM-DD date and snaps it back to its Monday.
func ParseWeekStart(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, strings.TrimSpace(s), time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("expected YYYY-MM-DD, got %q", s)
	}
	return MondayOf(t), nil
}

// MondayOf returns midnight of the Monday on or before t.
func MondayOf(t time.Time) time.Time {
	offset := (int(t.Weekday()) + 6) % 7
	y, m, d := t.AddDate(0, 0, -offset).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// DayDate returns the calendar date of a weekday in the configured week.
func (c Config) DayDate(day types.Weekday) time.Time {
	return c.WeekStart.AddDate(0, 0, int(day))
}

func envBool(getenv func(string) string, key string, fallback bool) (bool, error) {
	v := strings.TrimSpace(getenv(key))
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback, fmt.Errorf("%s: expected a boolean, got %q", key, v)
	}
	return b, nil
}
