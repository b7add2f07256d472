package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("JWT_SECRET", "")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "5000" || cfg.StorageDriver != DriverMemory || !cfg.SeedClinics {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if cfg.SessionTTL != 24*time.Hour || cfg.QRCodeTTL != 0 {
		t.Errorf("ttl defaults = %v / %v", cfg.SessionTTL, cfg.QRCodeTTL)
	}
	if cfg.JWTSecret != developmentSecret {
		t.Errorf("development secret not applied: %q", cfg.JWTSecret)
	}
	if len(cfg.CORSOrigins) != 1 || cfg.CORSOrigins[0] != "*" {
		t.Errorf("cors = %v", cfg.CORSOrigins)
	}
}

func TestLoadRequiresSecretInProduction(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_SECRET", "")

	if _, err := Load(""); err == nil {
		t.Fatal("expected error without JWT_SECRET")
	}
}

func TestLoadFileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := "port: \"8080\"\njwt_secret: from-file\nsession_ttl: 2h\nqr_code_ttl: 30m\nrate_limit_per_second: 5\n"
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_SECRET", "from-env")
	t.Setenv("SEED_CLINICS", "false")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "8080" {
		t.Errorf("port = %q", cfg.Port)
	}
	if cfg.JWTSecret != "from-env" {
		t.Errorf("env should override file, got %q", cfg.JWTSecret)
	}
	if cfg.SessionTTL != 2*time.Hour || cfg.QRCodeTTL != 30*time.Minute {
		t.Errorf("durations = %v / %v", cfg.SessionTTL, cfg.QRCodeTTL)
	}
	if cfg.RateLimitPerSecond != 5 {
		t.Errorf("rate = %v", cfg.RateLimitPerSecond)
	}
	if cfg.SeedClinics {
		t.Error("SEED_CLINICS=false not applied")
	}
}

func TestValidateRejectsUnknownDriver(t *testing.T) {
	cfg := DefaultConfig()
	cfg.JWTSecret = "x"
	cfg.StorageDriver = "redis"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unknown driver")
	}
}
