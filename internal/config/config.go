package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds the bot application configuration
type Config struct {
	TelegramToken   string
	SheetsWebAppURL string
	SheetsAPIKey    string
	DatabasePath    string
	LogLevel        string
	Locale          string

	// RequireConsent controls whether the signup flow starts with an
	// explicit consent step or goes straight to the name question.
	RequireConsent bool

	// Pick geometry: how many distinct numbers a weekly pick needs and
	// the inclusive range they must fall into.
	PickCount int
	PickMin   int
	PickMax   int

	// GuardRetentionWeeks is how many weeks of submission-guard rows are
	// kept before pruning at startup.
	GuardRetentionWeeks int

	// HTTPTimeout bounds each request to the sheets web app.
	HTTPTimeout time.Duration
}

// Load loads bot configuration from environment variables
func Load() (*Config, error) {
	token := os.Getenv("TELEGRAM_TOKEN")
	if token == "" {
		return nil, fmt.Errorf("TELEGRAM_TOKEN environment variable is required")
	}

	webAppURL := os.Getenv("SHEETS_WEBAPP_URL")
	if webAppURL == "" {
		return nil, fmt.Errorf("SHEETS_WEBAPP_URL environment variable is required")
	}

	apiKey := os.Getenv("SHEETS_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("SHEETS_API_KEY environment variable is required")
	}

	cfg := &Config{
		TelegramToken:   token,
		SheetsWebAppURL: webAppURL,
		SheetsAPIKey:    apiKey,
	}

	cfg.DatabasePath = cfg.LookupEnvOrString("DATABASE_PATH", "./data/bot.db")
	cfg.LogLevel = cfg.LookupEnvOrString("LOG_LEVEL", "INFO")
	cfg.Locale = cfg.LookupEnvOrString("LOCALE", "pt")
	cfg.RequireConsent = cfg.LookupEnvOrBool("REQUIRE_CONSENT", true)
	cfg.HTTPTimeout = cfg.LookupEnvOrDuration("HTTP_TIMEOUT", 10*time.Second)

	var err error
	if cfg.PickCount, err = requirePositiveInt("PICK_COUNT", 6); err != nil {
		return nil, err
	}
	if cfg.PickMin, err = requirePositiveInt("PICK_MIN", 1); err != nil {
		return nil, err
	}
	if cfg.PickMax, err = requirePositiveInt("PICK_MAX", 60); err != nil {
		return nil, err
	}
	if cfg.PickMax-cfg.PickMin+1 < cfg.PickCount {
		return nil, fmt.Errorf("pick range [%d,%d] cannot hold %d distinct numbers", cfg.PickMin, cfg.PickMax, cfg.PickCount)
	}
	if cfg.GuardRetentionWeeks, err = requirePositiveInt("GUARD_RETENTION_WEEKS", 8); err != nil {
		return nil, err
	}

	return cfg, nil
}

// requirePositiveInt reads an env var as a positive integer, using
// defaultVal when unset. An unparsable or non-positive value is an error.
func requirePositiveInt(key string, defaultVal int) (int, error) {
	val, ok := os.LookupEnv(key)
	if !ok || val == "" {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("invalid %s '%s': must be a valid integer", key, val)
	}
	if n <= 0 {
		return 0, fmt.Errorf("invalid %s '%d': must be positive", key, n)
	}
	return n, nil
}

// SheetdConfig holds configuration for the sheet server binary
type SheetdConfig struct {
	Bind         string
	APIKey       string
	DatabasePath string
	LogLevel     string
}

// LoadSheetd loads sheet server configuration from environment variables.
// An empty SHEETS_API_KEY is allowed here on purpose: the server answers
// 500 on writes until the key is configured, mirroring the web app contract.
func LoadSheetd() (*SheetdConfig, error) {
	cfg := &Config{}

	return &SheetdConfig{
		Bind:         cfg.LookupEnvOrString("SHEETD_BIND", ":8090"),
		APIKey:       cfg.LookupEnvOrString("SHEETS_API_KEY", ""),
		DatabasePath: cfg.LookupEnvOrString("SHEETD_DATABASE_PATH", "./data/sheets.db"),
		LogLevel:     cfg.LookupEnvOrString("LOG_LEVEL", "INFO"),
	}, nil
}
