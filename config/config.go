package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server      ServerConfig
	Database    DatabaseConfig
	JWT         JWTConfig
	MercadoPago MercadoPagoConfig
	Backend     BackendConfig
	Reconcile   ReconcileConfig
	RateLimit   RateLimitConfig
}

type ServerConfig struct {
	Port         string
	Env          string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	// PublicURL is where the processor can reach this service; the webhook
	// notification_url is built from it.
	PublicURL string
}

// DatabaseConfig is for the local webhook event log. An empty DSN disables it.
type DatabaseConfig struct {
	DSN             string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

type JWTConfig struct {
	AccessSecret string
	AccessExpiry time.Duration
	Issuer       string
}

type MercadoPagoConfig struct {
	BaseURL       string
	AccessToken   string // server-only; never sent to the browser
	WebhookSecret string
	Timeout       time.Duration
	// FrontendURL is the storefront base used for the success/failure/pending back-urls.
	FrontendURL string
	Currency    string
}

// BackendConfig points at the gym backend Payments API.
type BackendConfig struct {
	BaseURL      string
	Timeout      time.Duration
	TokenURL     string // OAuth2 client-credentials; empty means unauthenticated
	ClientID     string
	ClientSecret string
	Scopes       []string
}

type ReconcileConfig struct {
	MembershipPeriod time.Duration
	SweepInterval    time.Duration // 0 disables the in-process sweep loop
}

type RateLimitConfig struct {
	Requests int
	Window   time.Duration
}

// Load builds the configuration once at startup: defaults first, then .env, then
// the process environment.
func Load() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("[config] .env not loaded: %v", err)
	}
	return &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "8080"),
			Env:          getEnv("APP_ENV", "development"),
			ReadTimeout:  getDuration("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout: getDuration("SERVER_WRITE_TIMEOUT", 10*time.Second),
			PublicURL:    strings.TrimRight(getEnv("PUBLIC_URL", "http://localhost:8080"), "/"),
		},
		Database: DatabaseConfig{
			DSN:             getEnv("DATABASE_DSN", ""),
			MaxIdleConns:    getInt("DATABASE_MAX_IDLE_CONNS", 5),
			MaxOpenConns:    getInt("DATABASE_MAX_OPEN_CONNS", 20),
			ConnMaxLifetime: getDuration("DATABASE_CONN_MAX_LIFETIME", time.Hour),
		},
		JWT: JWTConfig{
			AccessSecret: getEnv("JWT_ACCESS_SECRET", "change-me-in-production"),
			AccessExpiry: getDuration("JWT_ACCESS_EXPIRY", 15*time.Minute),
			Issuer:       getEnv("JWT_ISSUER", "gym"),
		},
		MercadoPago: MercadoPagoConfig{
			BaseURL:       strings.TrimRight(getEnv("MERCADOPAGO_BASE_URL", "https://api.mercadopago.com"), "/"),
			AccessToken:   getEnv("MERCADOPAGO_ACCESS_TOKEN", ""),
			WebhookSecret: getEnv("MERCADOPAGO_WEBHOOK_SECRET", ""),
			Timeout:       getDuration("MERCADOPAGO_TIMEOUT", 30*time.Second),
			FrontendURL:   strings.TrimRight(getEnv("FRONTEND_URL", "http://localhost:3000"), "/"),
			Currency:      getEnv("MERCADOPAGO_CURRENCY", "ARS"),
		},
		Backend: BackendConfig{
			BaseURL:      strings.TrimRight(getEnv("BACKEND_URL", "http://localhost:8081"), "/"),
			Timeout:      getDuration("BACKEND_TIMEOUT", 30*time.Second),
			TokenURL:     getEnv("BACKEND_TOKEN_URL", ""),
			ClientID:     getEnv("BACKEND_CLIENT_ID", ""),
			ClientSecret: getEnv("BACKEND_CLIENT_SECRET", ""),
			Scopes:       splitList(getEnv("BACKEND_SCOPES", "")),
		},
		Reconcile: ReconcileConfig{
			MembershipPeriod: getDuration("MEMBERSHIP_PERIOD", 30*24*time.Hour),
			SweepInterval:    getDuration("SWEEP_INTERVAL", 0),
		},
		RateLimit: RateLimitConfig{
			Requests: getInt("RATE_LIMIT_REQUESTS", 100),
			Window:   getDuration("RATE_LIMIT_WINDOW", time.Minute),
		},
	}
}

func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return def
}

func getInt(key string, def int) int {
	v, ok := os.LookupEnv(key)
	if !ok {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("[config] invalid int for %s, using %d: %v", key, def, err)
		return def
	}
	return i
}

func getDuration(key string, def time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Printf("[config] invalid duration for %s, using %s: %v", key, def, err)
		return def
	}
	return d
}

func splitList(raw string) []string {
	var out []string
	for _, s := range strings.Split(raw, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
