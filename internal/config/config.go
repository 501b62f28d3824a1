package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Backend names accepted by DATA_BACKEND.
const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
	BackendSQLite   = "sqlite"
	BackendRemote   = "remote"
)

type Config struct {
	Port                  string
	DataPort              string
	AllowedOrigin         string
	DataBackend           string
	DatabaseURL           string
	RedisAddr             string
	RedisPassword         string
	RedisDB               int
	SQLitePath            string
	RemoteDataURL         string
	DataAPIKey            string
	DocumentKey           string
	SaveDebounce          time.Duration
	ReportCacheTTLSeconds int
	AuthSecret            string
	AccessTokenTTLMinutes int
	SeedAdminPIN          string
	SeedDemo              bool
}

func Load() Config {
	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	reportTTL, err := strconv.Atoi(getEnv("REPORT_CACHE_TTL_SECONDS", "60"))
	if err != nil || reportTTL < 1 {
		reportTTL = 60
	}
	tokenTTL, err := strconv.Atoi(getEnv("ACCESS_TOKEN_TTL_MINUTES", "480"))
	if err != nil || tokenTTL < 1 {
		tokenTTL = 480
	}
	debounceMS, err := strconv.Atoi(getEnv("SAVE_DEBOUNCE_MS", "1000"))
	if err != nil || debounceMS < 1 {
		debounceMS = 1000
	}
	seedDemo, err := strconv.ParseBool(getEnv("SEED_DEMO", "false"))
	if err != nil {
		seedDemo = false
	}

	cfg := Config{
		Port:                  getEnv("PORT", "8080"),
		DataPort:              getEnv("DATA_PORT", "8090"),
		AllowedOrigin:         getEnv("ALLOWED_ORIGIN", "http://127.0.0.1:3000"),
		DataBackend:           strings.ToLower(strings.TrimSpace(os.Getenv("DATA_BACKEND"))),
		DatabaseURL:           os.Getenv("DATABASE_URL"),
		RedisAddr:             os.Getenv("REDIS_ADDR"),
		RedisPassword:         os.Getenv("REDIS_PASSWORD"),
		RedisDB:               redisDB,
		SQLitePath:            getEnv("SQLITE_PATH", "aminashop.db"),
		RemoteDataURL:         strings.TrimSpace(os.Getenv("REMOTE_DATA_URL")),
		DataAPIKey:            strings.TrimSpace(os.Getenv("DATA_API_KEY")),
		DocumentKey:           getEnv("DOCUMENT_KEY", "appState"),
		SaveDebounce:          time.Duration(debounceMS) * time.Millisecond,
		ReportCacheTTLSeconds: reportTTL,
		AuthSecret:            strings.TrimSpace(os.Getenv("AUTH_SECRET")),
		AccessTokenTTLMinutes: tokenTTL,
		SeedAdminPIN:          strings.TrimSpace(os.Getenv("SEED_ADMIN_PIN")),
		SeedDemo:              seedDemo,
	}
	if cfg.DataBackend == "" {
		cfg.DataBackend = defaultBackend(cfg)
	}

	return cfg
}

// defaultBackend keeps the older behaviour where DATABASE_URL alone selects
// postgres.
func defaultBackend(cfg Config) string {
	switch {
	case cfg.DatabaseURL != "":
		return BackendPostgres
	case cfg.RemoteDataURL != "":
		return BackendRemote
	default:
		return BackendMemory
	}
}

func (c Config) Address() string {
	return fmt.Sprintf(":%s", c.Port)
}

func (c Config) DataAddress() string {
	return fmt.Sprintf(":%s", c.DataPort)
}

func getEnv(key string, fallback string) string {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	return val
}
