package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadDefaultsAndEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("DATABASE_URL", "postgres://localhost/inventory")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("INVENTORY_HTTP_ADDR", ":9090")
	t.Setenv("INVENTORY_INVENTORY_LOW_STOCK_THRESHOLD", "7")

	c, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.HTTP.Addr != ":9090" {
		t.Errorf("expected addr override, got %q", c.HTTP.Addr)
	}
	if c.Postgres.DSN != "postgres://localhost/inventory" {
		t.Errorf("expected DATABASE_URL to be honoured, got %q", c.Postgres.DSN)
	}
	if c.Inventory.LowStockThreshold != 7 {
		t.Errorf("expected threshold 7, got %d", c.Inventory.LowStockThreshold)
	}
	if c.Auth.TokenTTL != 12*time.Hour || c.Storage.Driver != "postgres" || !c.Metrics.Enabled {
		t.Errorf("unexpected defaults %+v", c)
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	path := filepath.Join(dir, "config.yaml")
	yaml := strings.Join([]string{
		"app:",
		"  env: dev",
		"storage:",
		"  driver: memory",
		"auth:",
		"  jwt_secret: from-file",
		"  token_ttl: 30m",
		"rate_limit:",
		"  rps: 5",
		"  burst: 10",
	}, "\n")
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}

	c, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.App.Env != "dev" || c.Storage.Driver != "memory" || c.Auth.TokenTTL != 30*time.Minute {
		t.Errorf("unexpected config %+v", c)
	}
	if c.RateLimit.RPS != 5 || c.RateLimit.Burst != 10 {
		t.Errorf("unexpected rate limit %+v", c.RateLimit)
	}
}

func TestValidate(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("INVENTORY_STORAGE_DRIVER", "sqlite")
	t.Setenv("JWT_SECRET", "")

	_, err := Load("")
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, want := range []string{"storage.driver", "jwt_secret"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %s", err, want)
		}
	}
}
