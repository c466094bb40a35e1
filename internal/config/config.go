package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"github.com/username/remote-work-bot/internal/calendar"
)

// Config represents application configuration
type Config struct {
	Absence    AbsenceConfig    `mapstructure:"absence"`
	RemoteWork RemoteWorkConfig `mapstructure:"remote_work"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

// AbsenceConfig represents absence.io API configuration
type AbsenceConfig struct {
	APIEndpoint string `mapstructure:"api_endpoint"`
	APIKeyID    string `mapstructure:"api_key_id"`
	APIKey      string `mapstructure:"api_key"`
	Timeout     string `mapstructure:"timeout"`
	Retries     int    `mapstructure:"retries"` // lookup attempts, 0 or 1 disables retrying; creation is never retried
}

// RemoteWorkConfig describes whose calendar is reconciled and on which weekdays
type RemoteWorkConfig struct {
	Email         string          `mapstructure:"email"`
	Reason        string          `mapstructure:"reason"`
	ReferenceZone string          `mapstructure:"reference_zone"` // zone absences are sent in
	LocalZone     string          `mapstructure:"local_zone"`     // empty means time.Local
	Workdays      map[string]bool `mapstructure:"workdays"`
}

// LoggingConfig represents log output configuration
type LoggingConfig struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

// ErrNoWeekdays is returned when no remote weekday is enabled
var ErrNoWeekdays = errors.New("no remote weekdays enabled in remote_work.workdays")

var weekdayNames = map[string]time.Weekday{
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
}

// Load loads configuration from file. A .env file next to the config, if any,
// is loaded into the environment first so credentials can stay out of the YAML.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
		loadDotEnv(filepath.Join(filepath.Dir(configPath), ".env"))
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.remote-work-bot")
		v.AddConfigPath("/etc/remote-work-bot")
		loadDotEnv(".env")
	}

	v.SetDefault("absence.api_endpoint", "https://app.absence.io/api/v2")
	v.SetDefault("absence.timeout", "30s")
	v.SetDefault("absence.retries", 3)
	v.SetDefault("remote_work.reason", "Remote Work")
	v.SetDefault("remote_work.reference_zone", "Europe/Berlin")
	v.SetDefault("logging.level", "info")

	// ABSENCE_API_KEY overrides absence.api_key and so on
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	config.ExpandEnvVars()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

// loadDotEnv never overrides variables that are already set
func loadDotEnv(path string) {
	if _, err := os.Stat(path); err != nil {
		return
	}
	_ = godotenv.Load(path)
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Absence.APIEndpoint == "" {
		return fmt.Errorf("absence.api_endpoint is required")
	}
	if c.Absence.APIKeyID == "" {
		return fmt.Errorf("absence.api_key_id is required")
	}
	if c.Absence.APIKey == "" {
		return fmt.Errorf("absence.api_key is required")
	}
	if c.Absence.Retries < 0 {
		return fmt.Errorf("absence.retries must not be negative")
	}
	if c.Absence.Timeout != "" {
		if _, err := time.ParseDuration(c.Absence.Timeout); err != nil {
			return fmt.Errorf("absence.timeout: %w", err)
		}
	}

	if c.RemoteWork.Email == "" {
		return fmt.Errorf("remote_work.email is required")
	}
	if _, err := c.Weekdays(); err != nil {
		return err
	}
	if _, err := c.ReferenceLocation(); err != nil {
		return err
	}
	if _, err := c.LocalLocation(); err != nil {
		return err
	}

	return nil
}

// Weekdays returns the enabled remote weekdays
func (c *Config) Weekdays() (calendar.Weekdays, error) {
	names := make([]string, 0, len(c.RemoteWork.Workdays))
	for name := range c.RemoteWork.Workdays {
		names = append(names, name)
	}
	sort.Strings(names)

	var days []time.Weekday
	for _, name := range names {
		day, ok := weekdayNames[strings.ToLower(name)]
		if !ok {
			return calendar.Weekdays{}, fmt.Errorf("remote_work.workdays: unknown weekday %q, expected monday..friday", name)
		}
		if c.RemoteWork.Workdays[name] {
			days = append(days, day)
		}
	}

	weekdays, err := calendar.NewWeekdays(days...)
	if err != nil {
		return calendar.Weekdays{}, fmt.Errorf("remote_work.workdays: %w", err)
	}
	return weekdays, nil
}

// ReferenceLocation returns the zone absence start and end are expressed in
func (c *Config) ReferenceLocation() (*time.Location, error) {
	if c.RemoteWork.ReferenceZone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(c.RemoteWork.ReferenceZone)
	if err != nil {
		return nil, fmt.Errorf("remote_work.reference_zone: %w", err)
	}
	return loc, nil
}

// LocalLocation returns the zone remote days are computed in
func (c *Config) LocalLocation() (*time.Location, error) {
	if c.RemoteWork.LocalZone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.RemoteWork.LocalZone)
	if err != nil {
		return nil, fmt.Errorf("remote_work.local_zone: %w", err)
	}
	return loc, nil
}

// GetTimeout returns the HTTP timeout
func (c *AbsenceConfig) GetTimeout() time.Duration {
	if c.Timeout == "" {
		return 30 * time.Second
	}
	duration, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return duration
}

// ExpandEnvVars expands environment variables in config strings
func (c *Config) ExpandEnvVars() {
	c.Absence.APIKeyID = os.ExpandEnv(c.Absence.APIKeyID)
	c.Absence.APIKey = os.ExpandEnv(c.Absence.APIKey)
	c.RemoteWork.Email = os.ExpandEnv(c.RemoteWork.Email)
}
