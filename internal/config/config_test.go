package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("APP_PORT", "")
	t.Setenv("POSTGRES_PASSWORD", "")
	t.Setenv("POSTGRES_MAX_CONNS", "")
	t.Setenv("JWT_SECRET", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Port != "8080" {
		t.Errorf("port: got %q, want 8080", cfg.Port)
	}
	if cfg.DBMaxConns != 25 {
		t.Errorf("max conns: got %d, want 25", cfg.DBMaxConns)
	}
	if cfg.Addr() != "0.0.0.0:8080" {
		t.Errorf("addr: got %q", cfg.Addr())
	}
	if !cfg.IsDev() {
		t.Error("expected development mode")
	}
}

func TestLoadProductionRequiresSecrets(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("POSTGRES_PASSWORD", "")
	t.Setenv("JWT_SECRET", "")

	if _, err := Load(); err == nil {
		t.Error("expected error for default DB password in production")
	}

	t.Setenv("POSTGRES_PASSWORD", "supersecret")
	if _, err := Load(); err == nil {
		t.Error("expected error for default JWT secret in production")
	}

	t.Setenv("JWT_SECRET", "signing-key")
	if _, err := Load(); err != nil {
		t.Errorf("Load with production secrets: %v", err)
	}
}

func TestMaxConnsIgnoresGarbage(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("POSTGRES_MAX_CONNS", "many")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DBMaxConns != 25 {
		t.Errorf("unparseable max conns should fall back to 25, got %d", cfg.DBMaxConns)
	}
}

func TestDSN(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("POSTGRES_USER", "blog")
	t.Setenv("POSTGRES_PASSWORD", "pw")
	t.Setenv("POSTGRES_HOST", "db")
	t.Setenv("POSTGRES_PORT", "5433")
	t.Setenv("POSTGRES_DB", "blogdb")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	want := "postgres://blog:pw@db:5433/blogdb?sslmode=disable"
	if cfg.DSN() != want {
		t.Errorf("DSN: got %q, want %q", cfg.DSN(), want)
	}
}
