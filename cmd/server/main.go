package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"shopos/backend/internal/config"
	"shopos/backend/internal/export"
	"shopos/backend/internal/httpapi"
	"shopos/backend/internal/logger"
	"shopos/backend/internal/service"
	"shopos/backend/internal/store"
	"shopos/backend/internal/store/memory"
	pgstore "shopos/backend/internal/store/postgres"
	"shopos/backend/internal/store/redisstore"
)

func main() {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	cfg := config.Load()
	if err := validateSecurityConfig(cfg); err != nil {
		log.Fatalf("invalid security configuration: %v", err)
	}

	zl, err := logger.New(cfg.Logger, cfg.AppEnv == "development")
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	docs, closers := openStore(ctx, cfg, zl)

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		zl.Warn("unknown shop timezone, using UTC", zap.String("timezone", cfg.Timezone), zap.Error(err))
		loc = time.UTC
	}

	svc := service.New(docs, zl, service.WithLocation(loc), service.WithTopProducts(cfg.TopProducts))
	svc.Load(ctx)

	auth := httpapi.NewAuthManager(cfg.AuthSecret, time.Duration(cfg.AccessTokenTTLMinutes)*time.Minute, cfg.SuperAdminPIN)
	api := httpapi.New(svc, auth, zl, httpapi.Options{
		AllowedOrigin: cfg.AllowedOrigin,
		Meta:          export.Meta{ShopName: cfg.ShopName, Location: loc},
	})

	server := &http.Server{
		Addr:              cfg.Address(),
		Handler:           api.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      35 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		zl.Info("ShopOS backend listening", zap.String("addr", cfg.Address()), zap.String("shop", cfg.ShopName))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zl.Fatal("server error", zap.Error(err))
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 8*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		zl.Warn("shutdown error", zap.Error(err))
	}

	for _, closeFn := range closers {
		if err := closeFn(); err != nil {
			zl.Warn("close error", zap.Error(err))
		}
	}

	zl.Info("server stopped")
}

// openStore picks the document backend. Postgres is authoritative when
// configured; an unreachable Redis degrades to the in-memory store.
func openStore(ctx context.Context, cfg config.Config, zl *zap.Logger) (store.DocumentStore, []func() error) {
	if cfg.DatabaseURL != "" {
		pg, err := pgstore.New(ctx, cfg.DatabaseURL)
		if err != nil {
			zl.Fatal("postgres unavailable and DATABASE_URL is set; refusing to start with in-memory fallback", zap.Error(err))
		}
		zl.Info("document store: postgres")
		return pg, []func() error{pg.Close}
	}

	if cfg.Redis.Addr != "" {
		rs := redisstore.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.Prefix)
		if err := rs.Ping(ctx); err != nil {
			zl.Warn("redis unavailable, using in-memory store", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
			_ = rs.Close()
		} else {
			zl.Info("document store: redis", zap.String("addr", cfg.Redis.Addr))
			return rs, []func() error{rs.Close}
		}
	}

	zl.Info("document store: in-memory")
	return memory.NewSeeded(), nil
}

func validateSecurityConfig(cfg config.Config) error {
	if len(cfg.AuthSecret) < 32 {
		return fmt.Errorf("AUTH_SECRET must be set and at least 32 characters")
	}
	if len(cfg.SuperAdminPIN) < 6 {
		return fmt.Errorf("SUPER_ADMIN_PIN must be set and at least 6 digits")
	}
	for _, r := range cfg.SuperAdminPIN {
		if r < '0' || r > '9' {
			return fmt.Errorf("SUPER_ADMIN_PIN must contain digits only")
		}
	}
	if err := validatePINStrength(cfg.SuperAdminPIN); err != nil {
		return fmt.Errorf("SUPER_ADMIN_PIN is too weak: %w", err)
	}
	return nil
}

// validatePINStrength rejects PINs that are all the same digit,
// sequential (ascending or descending), or from a known-weak list.
func validatePINStrength(pin string) error {
	known := map[string]bool{
		"123456": true, "654321": true, "000000": true, "111111": true,
		"121212": true, "112233": true, "123123": true, "159753": true,
		"696969": true, "102030": true,
	}
	if known[pin] {
		return fmt.Errorf("common PIN not allowed")
	}

	allSame := true
	for i := 1; i < len(pin); i++ {
		if pin[i] != pin[0] {
			allSame = false
			break
		}
	}
	if allSame {
		return fmt.Errorf("all-same-digit PIN not allowed")
	}

	ascending, descending := true, true
	for i := 1; i < len(pin); i++ {
		diff := int(pin[i]) - int(pin[i-1])
		if diff != 1 {
			ascending = false
		}
		if diff != -1 {
			descending = false
		}
	}
	if ascending || descending {
		return fmt.Errorf("sequential PIN not allowed")
	}

	return nil
}
