package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"moneytracker/internal/core"
	"moneytracker/internal/i18n"
)

type Config struct {
	// Backend API
	APIURL      string
	HTTPTimeout time.Duration

	// Client state
	StatePath string
	Lang      string
	LogLevel  string

	// Dashboard
	BudgetDangerPercent  int
	BudgetWarningPercent int

	// AMQP ledger events; empty URL disables publishing
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Journal worker
	JournalBackend  string
	JournalDedupMax int
	JournalDedupTTL time.Duration

	// Google Sheets
	GoogleSpreadsheetID      string
	GoogleSheetName          string
	GoogleExportSheetName    string
	GoogleServiceAccountJSON string
	GoogleServiceAccountFile string

	// Development backend
	MockAPIPort       string
	MockAPIUsername   string
	MockAPIPassword   string
	MockAPIJWTSecret  string
	MockAPITokenTTL   time.Duration
	MockAPILoginLimit int
}

func Load() *Config {
	cfg := &Config{
		APIURL:      getEnv("MONEYTRACKER_API_URL", "http://localhost:8787"),
		HTTPTimeout: getEnvDuration("MONEYTRACKER_HTTP_TIMEOUT", 15*time.Second),

		StatePath: getEnv("MONEYTRACKER_STATE_PATH", "./data/moneytracker.db"),
		Lang:      getEnv("MONEYTRACKER_LANG", string(i18n.Default)),
		LogLevel:  getEnv("LOG_LEVEL", "warn"),

		BudgetDangerPercent:  getEnvInt("BUDGET_DANGER_PERCENT", 20),
		BudgetWarningPercent: getEnvInt("BUDGET_WARNING_PERCENT", 50),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "moneytracker"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "ledger_events"),

		JournalBackend:  getEnv("JOURNAL_BACKEND", "memory"),
		JournalDedupMax: getEnvInt("JOURNAL_DEDUP_SIZE", 10000),
		JournalDedupTTL: getEnvDuration("JOURNAL_DEDUP_TTL", 24*time.Hour),

		GoogleSpreadsheetID:      getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleSheetName:          getEnv("GOOGLE_SHEET_NAME", "Journal"),
		GoogleExportSheetName:    getEnv("GOOGLE_EXPORT_SHEET_NAME", "Transactions"),
		GoogleServiceAccountJSON: getEnv("GOOGLE_SERVICE_ACCOUNT_JSON", ""),
		GoogleServiceAccountFile: getEnv("GOOGLE_SERVICE_ACCOUNT_FILE", ""),

		MockAPIPort:       getEnv("MOCKAPI_PORT", "8787"),
		MockAPIUsername:   getEnv("MOCKAPI_USERNAME", "demo"),
		MockAPIPassword:   getEnv("MOCKAPI_PASSWORD", "demo"),
		MockAPIJWTSecret:  getEnv("MOCKAPI_JWT_SECRET", "dev-secret-change-me"),
		MockAPITokenTTL:   getEnvDuration("MOCKAPI_TOKEN_TTL", 24*time.Hour),
		MockAPILoginLimit: getEnvInt("MOCKAPI_LOGIN_LIMIT", 10),
	}

	return cfg
}

// Thresholds returns the dashboard color cut-offs.
func (c *Config) Thresholds() core.BudgetThresholds {
	return core.BudgetThresholds{
		Danger:  int64(c.BudgetDangerPercent),
		Warning: int64(c.BudgetWarningPercent),
	}
}

// Language returns the configured language, falling back to the default.
func (c *Config) Language() i18n.Lang {
	l, _ := i18n.ParseLang(c.Lang)
	return l
}

// HasSheets reports whether a spreadsheet and credentials are configured.
func (c *Config) HasSheets() bool {
	return c.GoogleSpreadsheetID != "" &&
		(c.GoogleServiceAccountJSON != "" || c.GoogleServiceAccountFile != "")
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	// Validate API URL
	if parsedURL, err := url.Parse(c.APIURL); err != nil || c.APIURL == "" {
		errors = append(errors, fmt.Sprintf("invalid API URL '%s'", c.APIURL))
	} else if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		errors = append(errors, fmt.Sprintf("invalid API URL scheme '%s': must be 'http' or 'https'", parsedURL.Scheme))
	}

	if c.HTTPTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("invalid HTTP timeout %v: must be positive", c.HTTPTimeout))
	}

	if _, ok := i18n.ParseLang(c.Lang); !ok {
		errors = append(errors, fmt.Sprintf("invalid language '%s': must be 'zh' or 'en'", c.Lang))
	}

	// Validate state path
	if c.StatePath == "" {
		errors = append(errors, "state database path cannot be empty")
	} else {
		dir := filepath.Dir(c.StatePath)
		if dir != "." && dir != "" {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				if err := os.MkdirAll(dir, 0755); err != nil {
					errors = append(errors, fmt.Sprintf("cannot create state directory '%s': %v", dir, err))
				}
			}
		}
	}

	// Validate budget thresholds
	if c.BudgetDangerPercent < 0 || c.BudgetDangerPercent > 100 {
		errors = append(errors, fmt.Sprintf("invalid danger threshold %d: must be between 0 and 100", c.BudgetDangerPercent))
	}
	if c.BudgetWarningPercent < 0 || c.BudgetWarningPercent > 100 {
		errors = append(errors, fmt.Sprintf("invalid warning threshold %d: must be between 0 and 100", c.BudgetWarningPercent))
	}
	if c.BudgetDangerPercent > c.BudgetWarningPercent {
		errors = append(errors, fmt.Sprintf("danger threshold %d must not exceed warning threshold %d", c.BudgetDangerPercent, c.BudgetWarningPercent))
	}

	// Validate AMQP URL if provided
	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	// Validate journal backend
	validBackends := []string{"memory", "sheets"}
	isValidBackend := false
	for _, backend := range validBackends {
		if c.JournalBackend == backend {
			isValidBackend = true
			break
		}
	}
	if !isValidBackend {
		errors = append(errors, fmt.Sprintf("invalid journal backend '%s': must be one of %v", c.JournalBackend, validBackends))
	}
	if c.JournalBackend == "sheets" {
		errors = append(errors, c.sheetsErrors()...)
	}

	if c.JournalDedupMax < 1 {
		errors = append(errors, fmt.Sprintf("invalid journal dedup size %d: must be at least 1", c.JournalDedupMax))
	}
	if c.JournalDedupTTL < time.Minute {
		errors = append(errors, fmt.Sprintf("invalid journal dedup TTL %v: must be at least 1 minute", c.JournalDedupTTL))
	}

	// Validate development backend
	if port, err := strconv.Atoi(c.MockAPIPort); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.MockAPIPort))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}
	if c.MockAPITokenTTL < time.Minute {
		errors = append(errors, fmt.Sprintf("invalid token TTL %v: must be at least 1 minute", c.MockAPITokenTTL))
	}

	// Return combined errors
	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

// ValidateWorker adds the checks the journal worker needs on top of Validate.
func (c *Config) ValidateWorker() error {
	var errors []string
	if err := c.Validate(); err != nil {
		errors = append(errors, strings.TrimPrefix(err.Error(), "configuration validation failed:\n- "))
	}
	if c.AMQPURL == "" {
		errors = append(errors, "AMQP URL is required for the journal worker")
	}
	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}
	return nil
}

// SheetsError reports why the Google Sheets settings are unusable, or nil.
func (c *Config) SheetsError() error {
	if errs := c.sheetsErrors(); len(errs) > 0 {
		return fmt.Errorf("google sheets not configured:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}

func (c *Config) sheetsErrors() []string {
	var errors []string
	if c.GoogleSpreadsheetID == "" {
		errors = append(errors, "Google Spreadsheet ID is required when using sheets")
	}
	if c.GoogleSheetName == "" {
		errors = append(errors, "Google Sheet name is required when using sheets")
	}

	hasFile := c.GoogleServiceAccountFile != ""
	hasJSON := c.GoogleServiceAccountJSON != ""
	if !hasFile && !hasJSON {
		errors = append(errors, "either GOOGLE_SERVICE_ACCOUNT_FILE or GOOGLE_SERVICE_ACCOUNT_JSON must be provided for sheets")
	}
	if hasFile {
		if _, err := os.Stat(c.GoogleServiceAccountFile); os.IsNotExist(err) {
			errors = append(errors, fmt.Sprintf("Google service account file does not exist: %s", c.GoogleServiceAccountFile))
		}
	}
	return errors
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
