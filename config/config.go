package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"sjsage522/partsfinder/internal/listing"
	"sjsage522/partsfinder/logger"
	scrapeerrors "sjsage522/partsfinder/pkg/errors"
)

const defaultSections = "277:Wheels:Wheels;182::E9x M3 Parts"

// Config represents the application configuration
type Config struct {
	// Search configuration
	SearchInterval time.Duration
	Keywords       []string
	UserAgent      string

	// Forum configuration
	ForumPages      int
	Sections        []listing.Section
	SectionCacheTTL time.Duration
	HTTPTimeout     time.Duration
	DetailTimeout   time.Duration
	PageDelay       time.Duration
	ThreadDelay     time.Duration
	SourceDelay     time.Duration

	// Store configuration
	DBDriver string
	DBDSN    string

	// Memcache configuration; empty means the in-process cache
	MemcacheAddr string

	// Redis configuration; empty address disables the stream sink
	RedisAddr         string
	RedisDB           int
	RedisStream       string
	RedisStreamMaxLen int64

	// eBay Browse API
	EbayClientID     string
	EbayClientSecret string
	EbayEnvironment  string

	// Twilio SMS
	TwilioAccountSID string
	TwilioAuthToken  string
	TwilioFromPhone  string
	AlertPhone       string

	// Notification sinks
	StdoutEnabled bool
	SMSEnabled    bool
	RedisEnabled  bool

	// Dashboard
	WebAddr string

	// Environment
	Environment string
}

// fileConfig is the YAML layout accepted by LoadFile
type fileConfig struct {
	Parts          []string          `yaml:"parts"`
	SearchInterval *int              `yaml:"search_interval"`
	UserAgent      string            `yaml:"user_agent"`
	ForumPages     *int              `yaml:"forum_pages"`
	Sections       []listing.Section `yaml:"sections"`
	Notifications  struct {
		StdoutEnabled *bool `yaml:"stdout_enabled"`
		SMSEnabled    *bool `yaml:"sms_enabled"`
		RedisEnabled  *bool `yaml:"redis_enabled"`
	} `yaml:"notifications"`
}

// LoadConfig loads the configuration from environment variables with defaults.
// A .env file in the working directory is read first if present.
func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logger.Warn("Failed to read .env file: %v", err)
	}

	sections, err := ParseSections(getEnv("FORUM_SECTIONS", defaultSections))
	if err != nil {
		logger.Warn("Ignoring FORUM_SECTIONS: %v", err)
		sections, _ = ParseSections(defaultSections)
	}

	redisAddr := getEnv("REDIS_ADDR", "")

	return &Config{
		SearchInterval:    time.Duration(getEnvInt("SEARCH_INTERVAL_SECONDS", 1800)) * time.Second,
		Keywords:          getEnvList("PARTS_KEYWORDS", nil),
		UserAgent:         getEnv("USER_AGENT", "Mozilla/5.0"),
		ForumPages:        getEnvInt("FORUM_PAGES", 3),
		Sections:          sections,
		SectionCacheTTL:   time.Duration(getEnvInt("SECTION_CACHE_TTL_SECONDS", 300)) * time.Second,
		HTTPTimeout:       time.Duration(getEnvInt("HTTP_TIMEOUT_SECONDS", 15)) * time.Second,
		DetailTimeout:     time.Duration(getEnvInt("DETAIL_TIMEOUT_SECONDS", 10)) * time.Second,
		PageDelay:         time.Duration(getEnvInt("PAGE_DELAY_MS", 500)) * time.Millisecond,
		ThreadDelay:       time.Duration(getEnvInt("THREAD_DELAY_MS", 300)) * time.Millisecond,
		SourceDelay:       time.Duration(getEnvInt("SOURCE_DELAY_MS", 500)) * time.Millisecond,
		DBDriver:          getEnv("DB_DRIVER", "sqlite3"),
		DBDSN:             getEnv("DB_DSN", "parts.db"),
		MemcacheAddr:      getEnv("MEMCACHE_ADDR", ""),
		RedisAddr:         redisAddr,
		RedisDB:           getEnvInt("REDIS_DB", 0),
		RedisStream:       getEnv("REDIS_STREAM", "partsfinder"),
		RedisStreamMaxLen: int64(getEnvInt("REDIS_STREAM_MAX_LENGTH", 1000)),
		EbayClientID:      getEnv("EBAY_CLIENT_ID", ""),
		EbayClientSecret:  getEnv("EBAY_CLIENT_SECRET", ""),
		EbayEnvironment:   strings.ToUpper(getEnv("EBAY_ENVIRONMENT", "PRODUCTION")),
		TwilioAccountSID:  getEnv("TWILIO_ACCOUNT_SID", ""),
		TwilioAuthToken:   getEnv("TWILIO_AUTH_TOKEN", ""),
		TwilioFromPhone:   getEnv("TWILIO_FROM_PHONE", ""),
		AlertPhone:        getEnv("ALERT_PHONE", ""),
		StdoutEnabled:     getEnvBool("STDOUT_ENABLED", true),
		SMSEnabled:        getEnvBool("SMS_ENABLED", false),
		RedisEnabled:      redisAddr != "",
		WebAddr:           getEnv("WEB_ADDR", "127.0.0.1:5000"),
		Environment:       getEnv("PARTS_ENVIRONMENT", "development"),
	}
}

// Load reads the environment and overlays the YAML file at path, if any
func Load(path string) (*Config, error) {
	cfg := LoadConfig()
	if path == "" {
		path = os.Getenv("CONFIG_FILE")
	}
	if path != "" {
		if err := cfg.LoadFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile overlays the settings found in a YAML file
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return scrapeerrors.NewConfiguration(fmt.Sprintf("failed to read %s", path), err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return scrapeerrors.NewConfiguration(fmt.Sprintf("failed to parse %s", path), err)
	}

	if len(fc.Parts) > 0 {
		c.Keywords = fc.Parts
	}
	if fc.SearchInterval != nil {
		c.SearchInterval = time.Duration(*fc.SearchInterval) * time.Second
	}
	if fc.UserAgent != "" {
		c.UserAgent = fc.UserAgent
	}
	if fc.ForumPages != nil {
		c.ForumPages = *fc.ForumPages
	}
	if len(fc.Sections) > 0 {
		c.Sections = fc.Sections
	}
	if v := fc.Notifications.StdoutEnabled; v != nil {
		c.StdoutEnabled = *v
	}
	if v := fc.Notifications.SMSEnabled; v != nil {
		c.SMSEnabled = *v
	}
	if v := fc.Notifications.RedisEnabled; v != nil {
		c.RedisEnabled = *v && c.RedisAddr != ""
	}

	logger.Info("Loaded config from %s", path)
	return nil
}

// Validate rejects settings the agent cannot run with
func (c *Config) Validate() error {
	if c.SearchInterval <= 0 {
		return scrapeerrors.NewConfiguration("search interval must be positive", nil)
	}
	if c.ForumPages <= 0 {
		return scrapeerrors.NewConfiguration("forum pages must be positive", nil)
	}
	switch c.DBDriver {
	case "sqlite3", "pgx":
	default:
		return scrapeerrors.NewConfiguration(fmt.Sprintf("unsupported DB_DRIVER %q", c.DBDriver), nil)
	}
	for _, s := range c.Sections {
		if s.ForumID <= 0 {
			return scrapeerrors.NewConfiguration(fmt.Sprintf("invalid forum id %d", s.ForumID), nil)
		}
	}

	if len(c.Sections) == 0 && len(c.Keywords) == 0 {
		logger.Warn("No forum sections or part keywords configured; runs will find nothing")
	}
	return nil
}

// IsProduction reports whether the agent runs in production
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// ParseSections parses "id:category:label" entries separated by semicolons.
// Category and label may be empty.
func ParseSections(raw string) ([]listing.Section, error) {
	var sections []listing.Section
	for _, entry := range strings.Split(raw, ";") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		parts := strings.SplitN(entry, ":", 3)
		id, err := strconv.Atoi(strings.TrimSpace(parts[0]))
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("invalid forum id in %q", entry)
		}
		section := listing.Section{ForumID: id}
		if len(parts) > 1 {
			section.Category = strings.TrimSpace(parts[1])
		}
		if len(parts) > 2 {
			section.Label = strings.TrimSpace(parts[2])
		}
		sections = append(sections, section)
	}
	return sections, nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvBool(key string, defaultValue bool) bool {
	value, err := strconv.ParseBool(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvList splits a comma separated variable, dropping blanks
func getEnvList(key string, defaultValue []string) []string {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue
	}
	var out []string
	for _, v := range strings.Split(raw, ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
