package config

import (
	"os"
	"strings"
	"time"
)

type Config struct {
	HTTPAddr  string
	PublicURL string

	DBDriver string
	DBDSN    string

	AuthSecret string
	TokenTTL   time.Duration
	AdminEmail string
	AdminPass  string // plaintext, hashed at seed time; dev convenience
	AdminName  string

	CORSOrigins []string

	// Login rate limiting (per client IP).
	LoginMaxAttempts int
	LoginWindow      time.Duration

	// Bulk import: rows at or above this similarity percent are
	// pre-excluded unless the operator overrides the threshold.
	ImportAutoExclude int
}

func FromEnv() Config {
	addr := os.Getenv("HTTP_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	return Config{
		HTTPAddr:          addr,
		PublicURL:         os.Getenv("PUBLIC_URL"),
		DBDriver:          envOr("DB_DRIVER", "sqlite"),
		DBDSN:             envOr("DB_DSN", ""),
		AuthSecret:        envOr("AUTH_HMAC_SECRET", "supersecret-dev-key"),
		TokenTTL:          envDuration("TOKEN_TTL", 8*time.Hour),
		AdminEmail:        envOr("ADMIN_EMAIL", "admin@galien.local"),
		AdminPass:         envOr("ADMIN_PASS", "admin"),
		AdminName:         envOr("ADMIN_NAME", "Admin"),
		CORSOrigins:       csvOr("CORS_ORIGINS", "http://localhost:3000,http://localhost:5173"),
		LoginMaxAttempts:  envInt("LOGIN_MAX_ATTEMPTS", 10),
		LoginWindow:       envDuration("LOGIN_WINDOW", 15*time.Minute),
		ImportAutoExclude: envInt("IMPORT_AUTO_EXCLUDE", 80),
	}
}

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func envInt(k string, def int) int {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	n := 0
	for _, r := range v {
		if r < '0' || r > '9' {
			return def
		}
		n = n*10 + int(r-'0')
	}
	return n
}

func envDuration(k string, def time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

func csvOr(k, def string) []string {
	v := envOr(k, def)
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
