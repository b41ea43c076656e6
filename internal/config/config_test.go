package config

import (
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func setEnv(t *testing.T, values map[string]string) {
	t.Helper()
	for _, key := range []string{
		"APP_PORT", "TIMEZONE", "STORAGE_DRIVER", "SQLITE_PATH", "MONGODB_URI", "MONGODB_DB_NAME",
		"ANTHROPIC_API_KEY", "ANTHROPIC_BASE_URL", "ANTHROPIC_MODEL", "AI_TIMEOUT",
		"ANALYSIS_CRON_SCHEDULE", "GOOGLE_SHEETS_CREDENTIALS_PATH", "GOOGLE_SHEET_DATABASE_ID",
		"LOG_LEVEL", "WHATSAPP_TOKEN", "WHATSAPP_PHONE_NUMBER_ID", "WHATSAPP_RECIPIENT",
	} {
		t.Setenv(key, values[key])
	}
}

func missingEnvFile(t *testing.T) string {
	return filepath.Join(t.TempDir(), "absent.env")
}

func TestLoadDefaults(t *testing.T) {
	setEnv(t, map[string]string{"ANTHROPIC_API_KEY": "key"})

	cfg, err := Load(missingEnvFile(t))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != "8080" {
		t.Errorf("Port = %q", cfg.Server.Port)
	}
	if cfg.Storage.Driver != StorageSQLite {
		t.Errorf("Driver = %q", cfg.Storage.Driver)
	}
	if cfg.AI.Timeout != 30*time.Second {
		t.Errorf("Timeout = %v", cfg.AI.Timeout)
	}
	if cfg.Sheets.Enabled() {
		t.Error("sheets export should be disabled by default")
	}
	if cfg.WhatsApp.Enabled() {
		t.Error("whatsapp notifications should be disabled by default")
	}
	if cfg.Server.LogLevel != "info" {
		t.Errorf("LogLevel = %q", cfg.Server.LogLevel)
	}
	if cfg.Location() != time.UTC {
		t.Errorf("Location() = %v", cfg.Location())
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	cases := map[string]struct {
		env  map[string]string
		want string
	}{
		"missing api key": {
			env:  map[string]string{},
			want: "ANTHROPIC_API_KEY",
		},
		"unknown driver": {
			env:  map[string]string{"ANTHROPIC_API_KEY": "k", "STORAGE_DRIVER": "redis"},
			want: "STORAGE_DRIVER",
		},
		"mongodb without uri": {
			env:  map[string]string{"ANTHROPIC_API_KEY": "k", "STORAGE_DRIVER": "mongodb"},
			want: "MONGODB_URI",
		},
		"bad timeout": {
			env:  map[string]string{"ANTHROPIC_API_KEY": "k", "AI_TIMEOUT": "soon"},
			want: "AI_TIMEOUT",
		},
		"bad timezone": {
			env:  map[string]string{"ANTHROPIC_API_KEY": "k", "TIMEZONE": "Mars/Olympus"},
			want: "TIMEZONE",
		},
		"half configured sheets": {
			env:  map[string]string{"ANTHROPIC_API_KEY": "k", "GOOGLE_SHEET_DATABASE_ID": "abc"},
			want: "GOOGLE_SHEETS_CREDENTIALS_PATH",
		},
		"whatsapp without recipient": {
			env:  map[string]string{"ANTHROPIC_API_KEY": "k", "WHATSAPP_TOKEN": "t", "WHATSAPP_PHONE_NUMBER_ID": "123"},
			want: "WHATSAPP_RECIPIENT",
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			setEnv(t, tc.env)
			_, err := Load(missingEnvFile(t))
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("Load() error = %v, want mention of %s", err, tc.want)
			}
		})
	}
}

func TestLoadWhatsApp(t *testing.T) {
	setEnv(t, map[string]string{
		"ANTHROPIC_API_KEY":        "k",
		"WHATSAPP_TOKEN":           "t",
		"WHATSAPP_PHONE_NUMBER_ID": "123",
		"WHATSAPP_RECIPIENT":       "224600000000",
		"LOG_LEVEL":                "debug",
	})

	cfg, err := Load(missingEnvFile(t))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !cfg.WhatsApp.Enabled() {
		t.Fatal("whatsapp should be enabled")
	}
	if cfg.WhatsApp.AccessToken != "t" || cfg.WhatsApp.PhoneNumberID != "123" || cfg.WhatsApp.Recipient != "224600000000" {
		t.Errorf("WhatsApp = %+v", cfg.WhatsApp)
	}
	if cfg.Server.LogLevel != "debug" {
		t.Errorf("LogLevel = %q", cfg.Server.LogLevel)
	}
	if cfg.WhatsApp.BaseURL != "https://graph.facebook.com" || cfg.WhatsApp.APIVersion != "v20.0" {
		t.Errorf("WhatsApp = %+v", cfg.WhatsApp)
	}
}
