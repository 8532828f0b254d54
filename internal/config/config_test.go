package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_PORT", "")
	t.Setenv("BUSINESS_NAME", "")
	t.Setenv("TIMEZONE", "")
	t.Setenv("CORS_ALLOWED_ORIGINS", "")
	t.Setenv("WHATSAPP_TOKEN", "")
	t.Setenv("GOOGLE_SHEETS_CREDENTIALS_PATH", "")
	t.Setenv("GOOGLE_SHEET_DATABASE_ID", "")
	t.Setenv("MONGODB_URI", "")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, []string{"*"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, "Omah Gorden", cfg.Business.Name)
	assert.Equal(t, "Asia/Jakarta", cfg.Reporting.Timezone)
	assert.False(t, cfg.WhatsApp.Enabled())
	assert.False(t, cfg.Sheets.Enabled())
	assert.False(t, cfg.MongoDB.Enabled())
}

func TestLoadFromEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	content := "APP_PORT=9090\nBUSINESS_NAME=Toko Kain\nCORS_ALLOWED_ORIGINS=http://a.test, http://b.test\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	// godotenv never overrides variables that are already set.
	for _, key := range []string{"APP_PORT", "BUSINESS_NAME", "CORS_ALLOWED_ORIGINS"} {
		if prev, ok := os.LookupEnv(key); ok {
			require.NoError(t, os.Unsetenv(key))
			t.Cleanup(func() { _ = os.Setenv(key, prev) })
		} else {
			t.Cleanup(func() { _ = os.Unsetenv(key) })
		}
	}

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "Toko Kain", cfg.Business.Name)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.Server.AllowedOrigins)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Server:    ServerConfig{Port: "8080", RateLimit: "60-M"},
			Business:  BusinessConfig{Name: "Omah Gorden"},
			WhatsApp:  WhatsAppConfig{BaseURL: "https://graph.facebook.com", APIVersion: "v20.0"},
			Reporting: ReportingConfig{CronSchedule: "0 20 * * *", Timezone: "UTC"},
		}
	}

	require.NoError(t, valid().Validate())

	cfg := valid()
	cfg.Server.Port = ""
	assert.EqualError(t, cfg.Validate(), "APP_PORT must be provided")

	cfg = valid()
	cfg.WhatsApp.AccessToken = "token"
	cfg.WhatsApp.PhoneNumberID = "123"
	assert.Error(t, cfg.Validate())
	cfg.WhatsApp.VerifyToken = "verify"
	assert.NoError(t, cfg.Validate())

	cfg = valid()
	cfg.Sheets.SpreadsheetID = "sheet"
	assert.Error(t, cfg.Validate())

	cfg = valid()
	cfg.Reporting.Timezone = "Mars/Olympus"
	assert.Error(t, cfg.Validate())

	var nilCfg *Config
	assert.Error(t, nilCfg.Validate())
}
