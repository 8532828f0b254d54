package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config represents the full application configuration surface.
type Config struct {
	Server    ServerConfig
	Business  BusinessConfig
	Log       LogConfig
	WhatsApp  WhatsAppConfig
	Sheets    SheetsConfig
	Reporting ReportingConfig
	MongoDB   MongoDBConfig
}

// ServerConfig holds HTTP server related options.
type ServerConfig struct {
	Port           string
	AllowedOrigins []string
	RateLimit      string
}

// BusinessConfig names the business shown in the UI and in export file names.
type BusinessConfig struct {
	Name     string
	Subtitle string
}

// LogConfig holds the zap level name.
type LogConfig struct {
	Level string
}

// WhatsAppConfig contains credentials and options for the Meta WhatsApp Cloud API.
type WhatsAppConfig struct {
	AccessToken    string
	PhoneNumberID  string
	VerifyToken    string
	BaseURL        string
	APIVersion     string
	AlertRecipient string
}

// Enabled reports whether the WhatsApp channel has credentials.
func (c WhatsAppConfig) Enabled() bool {
	return c.AccessToken != "" && c.PhoneNumberID != ""
}

// SheetsConfig contains configuration required to interact with Google Sheets.
type SheetsConfig struct {
	CredentialsPath string
	SpreadsheetID   string
}

// Enabled reports whether the Google Sheets mirror is configured.
func (c SheetsConfig) Enabled() bool {
	return c.CredentialsPath != "" && c.SpreadsheetID != ""
}

// ReportingConfig holds scheduler-related settings.
type ReportingConfig struct {
	CronSchedule string
	Timezone     string
}

// Location resolves the configured timezone.
func (c ReportingConfig) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}

// MongoDBConfig holds settings for MongoDB.
type MongoDBConfig struct {
	URI    string
	DBName string
}

// Enabled reports whether the report archive is configured.
func (c MongoDBConfig) Enabled() bool {
	return c.URI != ""
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
		// Missing .env files are fine when configuration comes from the environment.
		_ = godotenv.Load()
	}

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	cfg := &Config{
		Server: ServerConfig{
			Port:           v.GetString("APP_PORT"),
			AllowedOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
			RateLimit:      v.GetString("RATE_LIMIT"),
		},
		Business: BusinessConfig{
			Name:     v.GetString("BUSINESS_NAME"),
			Subtitle: v.GetString("BUSINESS_SUBTITLE"),
		},
		Log: LogConfig{
			Level: v.GetString("LOG_LEVEL"),
		},
		WhatsApp: WhatsAppConfig{
			AccessToken:    v.GetString("WHATSAPP_TOKEN"),
			PhoneNumberID:  v.GetString("WHATSAPP_PHONE_NUMBER_ID"),
			VerifyToken:    v.GetString("META_VERIFY_TOKEN"),
			BaseURL:        v.GetString("WHATSAPP_BASE_URL"),
			APIVersion:     v.GetString("WHATSAPP_API_VERSION"),
			AlertRecipient: v.GetString("WHATSAPP_ALERT_RECIPIENT"),
		},
		Sheets: SheetsConfig{
			CredentialsPath: v.GetString("GOOGLE_SHEETS_CREDENTIALS_PATH"),
			SpreadsheetID:   v.GetString("GOOGLE_SHEET_DATABASE_ID"),
		},
		Reporting: ReportingConfig{
			CronSchedule: v.GetString("REPORT_CRON_SCHEDULE"),
			Timezone:     v.GetString("TIMEZONE"),
		},
		MongoDB: MongoDBConfig{
			URI:    v.GetString("MONGODB_URI"),
			DBName: v.GetString("MONGODB_DB_NAME"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", "8080")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	v.SetDefault("RATE_LIMIT", "60-M")
	v.SetDefault("BUSINESS_NAME", "Omah Gorden")
	v.SetDefault("BUSINESS_SUBTITLE", "Sistem Inventory Kain")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("WHATSAPP_BASE_URL", "https://graph.facebook.com")
	v.SetDefault("WHATSAPP_API_VERSION", "v20.0")
	v.SetDefault("REPORT_CRON_SCHEDULE", "0 20 * * *")
	v.SetDefault("TIMEZONE", "Asia/Jakarta")
	v.SetDefault("MONGODB_DB_NAME", "kain")

	for _, key := range []string{
		"WHATSAPP_TOKEN", "WHATSAPP_PHONE_NUMBER_ID", "META_VERIFY_TOKEN", "WHATSAPP_ALERT_RECIPIENT",
		"GOOGLE_SHEETS_CREDENTIALS_PATH", "GOOGLE_SHEET_DATABASE_ID", "MONGODB_URI",
	} {
		v.SetDefault(key, "")
	}
}

// Validate ensures that required configuration fields are populated.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	if c.Server.Port == "" {
		return errors.New("APP_PORT must be provided")
	}

	if c.Server.RateLimit == "" {
		return errors.New("RATE_LIMIT must not be empty")
	}

	if c.Business.Name == "" {
		return errors.New("BUSINESS_NAME must be provided")
	}

	if c.WhatsApp.Enabled() {
		switch {
		case c.WhatsApp.VerifyToken == "":
			return errors.New("META_VERIFY_TOKEN must be provided when WhatsApp is enabled")
		case c.WhatsApp.BaseURL == "":
			return errors.New("WHATSAPP_BASE_URL must not be empty")
		case c.WhatsApp.APIVersion == "":
			return errors.New("WHATSAPP_API_VERSION must not be empty")
		}
	}

	if (c.Sheets.CredentialsPath == "") != (c.Sheets.SpreadsheetID == "") {
		return errors.New("GOOGLE_SHEETS_CREDENTIALS_PATH and GOOGLE_SHEET_DATABASE_ID must be provided together")
	}

	if c.Reporting.CronSchedule == "" {
		return errors.New("REPORT_CRON_SCHEDULE must be provided")
	}

	if _, err := c.Reporting.Location(); err != nil {
		return fmt.Errorf("TIMEZONE is invalid: %w", err)
	}

	if c.MongoDB.Enabled() && c.MongoDB.DBName == "" {
		return errors.New("MONGODB_DB_NAME must be provided")
	}

	return nil
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
