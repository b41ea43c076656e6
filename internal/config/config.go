package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Storage drivers.
const (
	StorageSQLite  = "sqlite"
	StorageMongoDB = "mongodb"
	StorageMemory  = "memory"
)

// Config represents the full application configuration surface.
type Config struct {
	Server   ServerConfig
	Storage  StorageConfig
	AI       AIConfig
	Schedule ScheduleConfig
	Sheets   SheetsConfig
	WhatsApp WhatsAppConfig
}

// ServerConfig holds HTTP server related options.
type ServerConfig struct {
	Port     string
	Timezone string
	LogLevel string
}

// StorageConfig selects and configures the collection store.
type StorageConfig struct {
	Driver     string
	SQLitePath string
	MongoDB    MongoDBConfig
}

// MongoDBConfig holds settings for MongoDB.
type MongoDBConfig struct {
	URI    string
	DBName string
}

// AIConfig holds settings for LLM providers.
type AIConfig struct {
	AnthropicKey string
	BaseURL      string
	Model        string
	Timeout      time.Duration
}

// ScheduleConfig holds scheduler-related settings.
type ScheduleConfig struct {
	AnalysisCron string
}

// SheetsConfig contains configuration required to export to Google Sheets.
// Export is disabled when both fields are empty.
type SheetsConfig struct {
	CredentialsPath string
	SpreadsheetID   string
}

// Enabled reports whether the Sheets export is configured.
func (s SheetsConfig) Enabled() bool {
	return s.CredentialsPath != "" && s.SpreadsheetID != ""
}

// WhatsAppConfig contains credentials for the Meta WhatsApp Cloud API used by
// the nightly summary notification. Notifications are off when unset.
type WhatsAppConfig struct {
	AccessToken   string
	PhoneNumberID string
	Recipient     string
	BaseURL       string
	APIVersion    string
}

// Enabled reports whether WhatsApp notifications are configured.
func (w WhatsAppConfig) Enabled() bool {
	return w.AccessToken != "" && w.PhoneNumberID != "" && w.Recipient != ""
}

// Load reads environment variables (optionally from the provided file) and
// materializes a Config instance.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed loading env file %s: %w", envFile, err)
			}
		}
	} else {
		// Ignore the returned error here; missing .env files are acceptable when
		// configuration comes from the environment directly.
		_ = godotenv.Load()
	}

	timeout, err := getenvDuration("AI_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:     getenvWithDefault("APP_PORT", "8080"),
			Timezone: getenvWithDefault("TIMEZONE", "UTC"),
			LogLevel: getenvWithDefault("LOG_LEVEL", "info"),
		},
		Storage: StorageConfig{
			Driver:     getenvWithDefault("STORAGE_DRIVER", StorageSQLite),
			SQLitePath: getenvWithDefault("SQLITE_PATH", "./data/platelog.db"),
			MongoDB: MongoDBConfig{
				URI:    os.Getenv("MONGODB_URI"),
				DBName: getenvWithDefault("MONGODB_DB_NAME", "platelog"),
			},
		},
		AI: AIConfig{
			AnthropicKey: os.Getenv("ANTHROPIC_API_KEY"),
			BaseURL:      getenvWithDefault("ANTHROPIC_BASE_URL", "https://api.anthropic.com"),
			Model:        getenvWithDefault("ANTHROPIC_MODEL", "claude-3-5-haiku-latest"),
			Timeout:      timeout,
		},
		Schedule: ScheduleConfig{
			AnalysisCron: getenvWithDefault("ANALYSIS_CRON_SCHEDULE", "55 23 * * *"),
		},
		Sheets: SheetsConfig{
			CredentialsPath: os.Getenv("GOOGLE_SHEETS_CREDENTIALS_PATH"),
			SpreadsheetID:   os.Getenv("GOOGLE_SHEET_DATABASE_ID"),
		},
		WhatsApp: WhatsAppConfig{
			AccessToken:   os.Getenv("WHATSAPP_TOKEN"),
			PhoneNumberID: os.Getenv("WHATSAPP_PHONE_NUMBER_ID"),
			Recipient:     os.Getenv("WHATSAPP_RECIPIENT"),
			BaseURL:       getenvWithDefault("WHATSAPP_BASE_URL", "https://graph.facebook.com"),
			APIVersion:    getenvWithDefault("WHATSAPP_API_VERSION", "v20.0"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures that required configuration fields are populated.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	if c.Server.Port == "" {
		return errors.New("APP_PORT must be provided")
	}

	if _, err := time.LoadLocation(c.Server.Timezone); err != nil {
		return fmt.Errorf("TIMEZONE is invalid: %w", err)
	}

	switch c.Storage.Driver {
	case StorageSQLite:
		if c.Storage.SQLitePath == "" {
			return errors.New("SQLITE_PATH must be provided")
		}
	case StorageMongoDB:
		if c.Storage.MongoDB.URI == "" {
			return errors.New("MONGODB_URI must be provided")
		}
		if c.Storage.MongoDB.DBName == "" {
			return errors.New("MONGODB_DB_NAME must not be empty")
		}
	case StorageMemory:
	default:
		return fmt.Errorf("unsupported STORAGE_DRIVER %q", c.Storage.Driver)
	}

	if c.AI.AnthropicKey == "" {
		return errors.New("ANTHROPIC_API_KEY must be provided")
	}

	if c.AI.Timeout <= 0 {
		return errors.New("AI_TIMEOUT must be positive")
	}

	if c.Schedule.AnalysisCron == "" {
		return errors.New("ANALYSIS_CRON_SCHEDULE must be provided")
	}

	if (c.Sheets.CredentialsPath == "") != (c.Sheets.SpreadsheetID == "") {
		return errors.New("GOOGLE_SHEETS_CREDENTIALS_PATH and GOOGLE_SHEET_DATABASE_ID must be set together")
	}

	wa := c.WhatsApp
	if (wa.AccessToken != "" || wa.PhoneNumberID != "" || wa.Recipient != "") && !wa.Enabled() {
		return errors.New("WHATSAPP_TOKEN, WHATSAPP_PHONE_NUMBER_ID and WHATSAPP_RECIPIENT must be set together")
	}

	return nil
}

// Location resolves the configured timezone.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Server.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getenvDuration(key string, fallback time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s is invalid: %w", key, err)
	}
	return d, nil
}
