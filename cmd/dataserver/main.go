// Command dataserver exposes a document store as the GET/POST /data
// persistence endpoint used by the remote backend.
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

	"aminashop/backend/internal/config"
	"aminashop/backend/internal/httpapi"
	"aminashop/backend/internal/store/backend"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using process environment")
	}
	cfg := config.Load()
	if err := validateDataConfig(cfg); err != nil {
		log.Fatalf("invalid data server configuration: %v", err)
	}
	if cfg.DataAPIKey == "" {
		log.Println("WARNING: DATA_API_KEY is empty, /data accepts unauthenticated writes")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	docs, err := backend.Open(ctx, cfg)
	if err != nil {
		log.Fatalf("document store: %v", err)
	}
	log.Printf("document store: %s", docs.Name)

	server := &http.Server{
		Addr:              cfg.DataAddress(),
		Handler:           httpapi.NewDataHandler(docs.Store, cfg.DataAPIKey),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Printf("data endpoint listening on %s", cfg.DataAddress())
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
	if err := docs.Close(); err != nil {
		log.Printf("close error: %v", err)
	}
	log.Println("data server stopped")
}

// validateDataConfig refuses to serve a remote backend, which would point the
// endpoint at another endpoint.
func validateDataConfig(cfg config.Config) error {
	if cfg.DataBackend == config.BackendRemote {
		return fmt.Errorf("DATA_BACKEND=remote cannot back the data endpoint")
	}
	return nil
}
