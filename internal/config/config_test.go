package config

import "testing"

func TestLoadDoesNotInjectWeakAuthDefaults(t *testing.T) {
	t.Setenv("AUTH_SECRET", "")
	t.Setenv("SUPER_ADMIN_PIN", "")

	cfg := Load()
	if cfg.AuthSecret != "" {
		t.Fatalf("expected empty AUTH_SECRET when unset, got %q", cfg.AuthSecret)
	}
	if cfg.SuperAdminPIN != "" {
		t.Fatalf("expected empty SUPER_ADMIN_PIN when unset, got %q", cfg.SuperAdminPIN)
	}
}

func TestLoadDevelopmentLoggerDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("LOG_ENCODING", "")

	cfg := Load()
	if cfg.Logger.Level != "debug" || cfg.Logger.Encoding != "console" {
		t.Fatalf("expected debug/console logger in development, got %s/%s", cfg.Logger.Level, cfg.Logger.Encoding)
	}
}

func TestLoadFallsBackOnInvalidNumbers(t *testing.T) {
	t.Setenv("TOP_PRODUCTS", "-3")
	t.Setenv("ACCESS_TOKEN_TTL_MINUTES", "soon")
	t.Setenv("REDIS_DB", "2")

	cfg := Load()
	if cfg.TopProducts != 5 {
		t.Fatalf("expected TOP_PRODUCTS fallback 5, got %d", cfg.TopProducts)
	}
	if cfg.AccessTokenTTLMinutes != 720 {
		t.Fatalf("expected token TTL fallback 720, got %d", cfg.AccessTokenTTLMinutes)
	}
	if cfg.Redis.DB != 2 {
		t.Fatalf("expected redis db 2, got %d", cfg.Redis.DB)
	}
}
