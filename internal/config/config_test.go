package config

import (
	"os"
	"path/filepath"
	"testing"

	"zaimka/internal/models"
)

func TestLoadConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
app:
  name: "zaimka"
database:
  path: "test.db"
cabins:
  - slug: "lesnaya"
    name: "Lesnaya"
    company_slug: "taiga"
    half_day_enabled: true
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0o644); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.App.Name != "zaimka" {
		t.Errorf("expected app name zaimka, got %s", cfg.App.Name)
	}

	if len(cfg.Cabins) != 1 || cfg.Cabins[0].Slug != "lesnaya" {
		t.Errorf("expected 1 cabin with slug lesnaya")
	}
	if !cfg.Cabins[0].HalfDayEnabled {
		t.Errorf("expected half_day_enabled to be parsed")
	}
	if cfg.Cabins[0].CompanySlug != "taiga" {
		t.Errorf("expected company_slug taiga, got %q", cfg.Cabins[0].CompanySlug)
	}
}

func TestLoadConfig_EnvExpansion(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	t.Setenv("ZAIMKA_DB_PATH", "from_env.db")

	yamlContent := `
database:
  path: "${ZAIMKA_DB_PATH}"
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0o644); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Database.Path != "from_env.db" {
		t.Errorf("expected env-expanded path, got %s", cfg.Database.Path)
	}
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{
			name: "valid config",
			cfg: Config{
				Database: DatabaseConfig{Path: "path"},
				Cabins:   []models.Cabin{{Slug: "lesnaya", Name: "Lesnaya"}},
			},
			wantErr: false,
		},
		{
			name:    "missing database path",
			cfg:     Config{},
			wantErr: true,
		},
		{
			name: "duplicate cabin slug",
			cfg: Config{
				Database: DatabaseConfig{Path: "path"},
				Cabins: []models.Cabin{
					{Slug: "lesnaya", Name: "Lesnaya"},
					{Slug: "lesnaya", Name: "Other"},
				},
			},
			wantErr: true,
		},
		{
			name: "empty cabin slug",
			cfg: Config{
				Database: DatabaseConfig{Path: "path"},
				Cabins:   []models.Cabin{{Name: "No slug"}},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{Database: DatabaseConfig{Path: "path"}}
	cfg.applyDefaults()

	if cfg.HTTP.Port != 8080 {
		t.Errorf("expected default http port 8080, got %d", cfg.HTTP.Port)
	}
	if cfg.Auth.SessionTTLSeconds != models.DefaultSessionTTL {
		t.Errorf("expected default session ttl, got %d", cfg.Auth.SessionTTLSeconds)
	}
	if cfg.RateLimit.RPS <= 0 {
		t.Errorf("expected default rate limit rps, got %f", cfg.RateLimit.RPS)
	}
	if cfg.Booking.MaxBookingDays != models.MaxBookingDays {
		t.Errorf("expected default max booking days, got %d", cfg.Booking.MaxBookingDays)
	}
}
