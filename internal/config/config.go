package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/teambition/rrule-go"
	"gopkg.in/yaml.v3"

	"github.com/jakechorley/camp-signup/pkg/core/allocator"
)

const (
	defaultServerAddr   = ":8080"
	defaultSeasideTitle = "Seaside"
)

// Environment variables that override secrets from the YAML file
const (
	EnvDatabaseURL = "CAMP_DATABASE_URL"
	EnvJWTSecret   = "CAMP_JWT_SECRET"
	EnvAdminToken  = "CAMP_ADMIN_TOKEN"
)

// CampConfig describes the camp calendar
type CampConfig struct {
	// Days are the day labels in calendar order
	Days []string `yaml:"days" validate:"required,min=1,unique,dive,required"`

	// Calendar is an optional RRULE giving each day label a date, one occurrence per day
	Calendar string `yaml:"calendar,omitempty"`
}

// AllocationConfig tunes the batch pass and the exclusion rules
type AllocationConfig struct {
	MaxPerPerson             *int     `yaml:"maxPerPerson,omitempty" validate:"omitempty,min=0"`
	MinorAgeThreshold        *int     `yaml:"minorAgeThreshold,omitempty" validate:"omitempty,min=1"`
	LanguageRestrictedGroups []string `yaml:"languageRestrictedGroups,omitempty" validate:"dive,required"`
	Seed                     *int64   `yaml:"seed,omitempty"`
}

// AdmissionConfig tunes interactive admissions
type AdmissionConfig struct {
	StrictRules *bool `yaml:"strictRules,omitempty"`
}

// ServerConfig configures the HTTP boundary
type ServerConfig struct {
	Addr            string `yaml:"addr,omitempty"`
	JWTSecret       string `yaml:"jwtSecret,omitempty" validate:"omitempty,min=16"`
	AdminToken      string `yaml:"adminToken,omitempty" validate:"omitempty,min=8"`
	TrailBackfillAt string `yaml:"trailBackfillAt,omitempty" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
}

// SeasideConfig holds the text of the synthetic seaside assignment
type SeasideConfig struct {
	Title       string `yaml:"title,omitempty"`
	Description string `yaml:"description,omitempty"`
}

// SheetsConfig configures roster publishing
type SheetsConfig struct {
	RosterSheetID   string `yaml:"rosterSheetID,omitempty"`
	CredentialsFile string `yaml:"credentialsFile,omitempty" validate:"required_with=RosterSheetID"`
}

// Config represents the application configuration
type Config struct {
	DatabaseURL string           `yaml:"databaseURL" validate:"required"`
	Camp        CampConfig       `yaml:"camp"`
	Allocation  AllocationConfig `yaml:"allocation,omitempty"`
	Admission   AdmissionConfig  `yaml:"admission,omitempty"`
	Server      ServerConfig     `yaml:"server,omitempty"`
	Seaside     SeasideConfig    `yaml:"seaside,omitempty"`
	Sheets      SheetsConfig     `yaml:"sheets,omitempty"`
}

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// LoadWithEnv loads and validates camp_config.<env>.yaml
// It looks for the config file in the current directory first, then in the user's home directory.
// A .env.<env> file next to it, if present, is loaded into the process environment first.
func LoadWithEnv(env string) (*Config, error) {
	if err := loadDotEnv(fmt.Sprintf(".env.%s", env)); err != nil {
		return nil, err
	}

	configPath, err := findConfigFile(fmt.Sprintf("camp_config.%s.yaml", env))
	if err != nil {
		return nil, fmt.Errorf("failed to find config file: %w", err)
	}

	return LoadFromPath(configPath)
}

// LoadFromPath loads and validates the configuration from a specific path
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	applyEnvOverrides(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// loadDotEnv loads variables from a dotenv file without overriding ones already set
func loadDotEnv(name string) error {
	if _, err := os.Stat(name); err != nil {
		return nil
	}
	if err := godotenv.Load(name); err != nil {
		return fmt.Errorf("failed to load %s: %w", name, err)
	}
	return nil
}

// applyEnvOverrides replaces secrets with their environment values when set
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv(EnvDatabaseURL); v != "" {
		cfg.DatabaseURL = v
	}
	if v := os.Getenv(EnvJWTSecret); v != "" {
		cfg.Server.JWTSecret = v
	}
	if v := os.Getenv(EnvAdminToken); v != "" {
		cfg.Server.AdminToken = v
	}
}

// Validate validates the configuration struct and checks the calendar rrule
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	if cfg.Camp.Calendar != "" {
		if _, err := cfg.DayDates(); err != nil {
			return err
		}
	}

	return nil
}

// DayDates maps each day label to its calendar date. Returns nil without a calendar.
func (c *Config) DayDates() (map[string]time.Time, error) {
	if c.Camp.Calendar == "" {
		return nil, nil
	}

	rule, err := rrule.StrToRRule(c.Camp.Calendar)
	if err != nil {
		return nil, fmt.Errorf("invalid rrule in camp.calendar: %w", err)
	}

	// Bound the expansion so an unbounded rule can't run forever
	dates := make([]time.Time, 0, len(c.Camp.Days))
	iter := rule.Iterator()
	for len(dates) <= len(c.Camp.Days) {
		next, ok := iter()
		if !ok {
			break
		}
		dates = append(dates, next)
	}
	if len(dates) != len(c.Camp.Days) {
		return nil, fmt.Errorf("camp.calendar must yield exactly %d dates, one per day", len(c.Camp.Days))
	}

	byDay := make(map[string]time.Time, len(dates))
	for i, day := range c.Camp.Days {
		byDay[day] = dates[i]
	}
	return byDay, nil
}

// MaxPerPerson returns the configured afternoon quota or the default
func (c *Config) MaxPerPerson() int {
	if c.Allocation.MaxPerPerson == nil {
		return allocator.DefaultMaxPerPerson
	}
	return *c.Allocation.MaxPerPerson
}

// Policy returns the exclusion rule settings
func (c *Config) Policy() allocator.Policy {
	policy := allocator.DefaultPolicy()
	policy.LanguageRestrictedGroups = c.Allocation.LanguageRestrictedGroups
	if c.Allocation.MinorAgeThreshold != nil {
		policy.MinorAgeThreshold = *c.Allocation.MinorAgeThreshold
	}
	return policy
}

// Seed returns the fixed allocation seed, falling back to the current time
func (c *Config) Seed() int64 {
	if c.Allocation.Seed != nil {
		return *c.Allocation.Seed
	}
	return time.Now().UnixNano()
}

// StrictRules reports whether admissions re-run the exclusion rules (default true)
func (c *Config) StrictRules() bool {
	if c.Admission.StrictRules == nil {
		return true
	}
	return *c.Admission.StrictRules
}

// ServerAddr returns the listen address
func (c *Config) ServerAddr() string {
	if c.Server.Addr == "" {
		return defaultServerAddr
	}
	return c.Server.Addr
}

// TrailBackfillAt returns the armed trail backfill time, if any
func (c *Config) TrailBackfillAt() (time.Time, bool) {
	if c.Server.TrailBackfillAt == "" {
		return time.Time{}, false
	}
	at, err := time.Parse(time.RFC3339, c.Server.TrailBackfillAt)
	if err != nil {
		return time.Time{}, false
	}
	return at, true
}

// SeasideTitle returns the title shown for a seaside day
func (c *Config) SeasideTitle() string {
	if c.Seaside.Title == "" {
		return defaultSeasideTitle
	}
	return c.Seaside.Title
}

// findConfigFile searches for the config file in current directory and home directory
func findConfigFile(configFileName string) (string, error) {
	if _, err := os.Stat(configFileName); err == nil {
		return configFileName, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	homeConfigPath := filepath.Join(homeDir, configFileName)
	if _, err := os.Stat(homeConfigPath); err == nil {
		return homeConfigPath, nil
	}

	return "", fmt.Errorf("config file %s not found in current directory or home directory", configFileName)
}
