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

	"github.com/joho/godotenv"

	"aminashop/backend/internal/cache"
	"aminashop/backend/internal/config"
	"aminashop/backend/internal/httpapi"
	"aminashop/backend/internal/persist"
	"aminashop/backend/internal/report"
	"aminashop/backend/internal/service"
	"aminashop/backend/internal/state"
	"aminashop/backend/internal/store/backend"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using process environment")
	}
	cfg := config.Load()
	if err := validateSecurityConfig(cfg); err != nil {
		log.Fatalf("invalid security configuration: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	closers := make([]func() error, 0, 2)

	docs, err := backend.Open(ctx, cfg)
	if err != nil {
		log.Fatalf("document store: %v", err)
	}
	closers = append(closers, docs.Close)
	log.Printf("document store: %s", docs.Name)

	seed, err := state.SeedDocument(state.SeedOptions{AdminPIN: cfg.SeedAdminPIN, Demo: cfg.SeedDemo})
	if err != nil {
		log.Fatalf("seed document: %v", err)
	}
	st := state.New(seed)
	gateway := persist.New(docs.Store, st, cfg.SaveDebounce)
	if err := gateway.Load(ctx); err != nil {
		log.Fatalf("load document: %v", err)
	}

	cacheStore := cache.ReportCache(cache.NewMemoryReportCache())
	if cfg.RedisAddr != "" {
		redisCache := cache.NewRedisReportCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err := redisCache.Ping(ctx); err != nil {
			log.Printf("redis unavailable (%v), using in-process report cache", err)
		} else {
			cacheStore = redisCache
			closers = append(closers, redisCache.Close)
			log.Println("report cache: redis")
		}
	} else {
		log.Println("report cache: memory")
	}

	reports := report.NewEngine(cacheStore, time.Duration(cfg.ReportCacheTTLSeconds)*time.Second)
	svc := service.New(st, reports)
	if svc.BackupDue(time.Now().UTC()) {
		log.Println("backup is due: export one from Settings")
	}

	runCtx, stop := context.WithCancel(context.Background())
	defer stop()

	hub := httpapi.NewHub()
	go hub.Run(runCtx)
	unsubscribe := st.Subscribe(hub.Publish)
	defer unsubscribe()

	gatewayDone := make(chan struct{})
	go func() {
		gateway.Run(runCtx)
		close(gatewayDone)
	}()

	auth := httpapi.NewAuthManager(cfg.AuthSecret, time.Duration(cfg.AccessTokenTTLMinutes)*time.Minute)
	api := httpapi.New(svc, auth, gateway, hub, cfg.AllowedOrigin)

	server := &http.Server{
		Addr:              cfg.Address(),
		Handler:           api.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Printf("AminaShop backend listening on %s", cfg.Address())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 8*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown error: %v", err)
	}

	// Stopping the gateway flushes unsaved changes before the store closes.
	stop()
	<-gatewayDone

	for _, closeFn := range closers {
		if err := closeFn(); err != nil {
			log.Printf("close error: %v", err)
		}
	}

	log.Println("server stopped")
}

func validateSecurityConfig(cfg config.Config) error {
	if len(cfg.AuthSecret) < 32 {
		return fmt.Errorf("AUTH_SECRET must be set and at least 32 characters")
	}
	if cfg.SeedAdminPIN == "" {
		return nil
	}
	if len(cfg.SeedAdminPIN) < 6 {
		return fmt.Errorf("SEED_ADMIN_PIN must be at least 6 digits")
	}
	if err := service.ValidatePINStrength(cfg.SeedAdminPIN); err != nil {
		return fmt.Errorf("SEED_ADMIN_PIN is too weak: %w", err)
	}
	return nil
}
