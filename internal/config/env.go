package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Env struct {
	AppAddr string
	GinMode string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBTimeout  time.Duration

	JWTSecret     string
	TokenTTL      time.Duration
	CORSOrigins   []string
	AuditInterval time.Duration
	TicketDir     string
	LogLevel      string
	Store         string
	SeedTrains    bool

	AdminUsername string
	AdminPassword string

	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	SMTPFrom     string
}

// LoadEnv reads configuration from the process environment. A .env file in the
// working directory is applied first when present; real env vars win.
func LoadEnv() Env {
	_ = godotenv.Load()

	return Env{
		AppAddr: getEnv("APP_ADDR", ":8080"),
		GinMode: getEnv("GIN_MODE", ""),

		DBHost:     getEnv("DB_HOST", "127.0.0.1"),
		DBPort:     getEnv("DB_PORT", "3306"),
		DBUser:     getEnv("DB_USER", "root"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "railway_reservation"),
		DBTimeout:  getDuration("DB_TIMEOUT", 5*time.Second),

		JWTSecret:     getEnv("JWT_SECRET", "change-me-railway-secret"),
		TokenTTL:      getDuration("TOKEN_TTL", 12*time.Hour),
		CORSOrigins:   splitList(getEnv("CORS_ALLOWED_ORIGINS", "")),
		AuditInterval: getDuration("AUDIT_INTERVAL", 0),
		TicketDir:     getEnv("TICKET_DIR", "tickets"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		Store:         strings.ToLower(getEnv("STORE", "mysql")),
		SeedTrains:    getBool("SEED_SAMPLE_TRAINS", true),

		AdminUsername: getEnv("ADMIN_USERNAME", ""),
		AdminPassword: getEnv("ADMIN_PASSWORD", ""),

		SMTPHost:     getEnv("SMTP_HOST", ""),
		SMTPPort:     getInt("SMTP_PORT", 587),
		SMTPUser:     getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		SMTPFrom:     getEnv("SMTP_FROM", "reservations@railway.local"),
	}
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	n, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return fallback
	}
	return n
}

func getBool(key string, fallback bool) bool {
	b, err := strconv.ParseBool(getEnv(key, ""))
	if err != nil {
		return fallback
	}
	return b
}

func getDuration(key string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(getEnv(key, ""))
	if err != nil {
		return fallback
	}
	return d
}

func splitList(raw string) []string {
	out := []string{}
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
