package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoadEnvDefaults(t *testing.T) {
	for _, k := range []string{"APP_ADDR", "DB_PORT", "STORE", "AUDIT_INTERVAL", "SEED_SAMPLE_TRAINS", "CORS_ALLOWED_ORIGINS", "SMTP_PORT"} {
		t.Setenv(k, "")
	}
	env := LoadEnv()
	if env.AppAddr != ":8080" || env.DBPort != "3306" {
		t.Fatalf("unexpected defaults: %+v", env)
	}
	if env.Store != "mysql" || !env.SeedTrains || env.AuditInterval != 0 {
		t.Fatalf("unexpected defaults: store=%q seed=%v audit=%v", env.Store, env.SeedTrains, env.AuditInterval)
	}
	if len(env.CORSOrigins) != 0 || env.SMTPPort != 587 {
		t.Fatalf("unexpected defaults: cors=%v smtp=%d", env.CORSOrigins, env.SMTPPort)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("STORE", " Memory ")
	t.Setenv("AUDIT_INTERVAL", "90s")
	t.Setenv("SEED_SAMPLE_TRAINS", "false")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.test, ,http://b.test")
	t.Setenv("SMTP_PORT", "not-a-number")

	env := LoadEnv()
	if env.Store != "memory" {
		t.Fatalf("store = %q", env.Store)
	}
	if env.AuditInterval != 90*time.Second || env.SeedTrains {
		t.Fatalf("audit=%v seed=%v", env.AuditInterval, env.SeedTrains)
	}
	if strings.Join(env.CORSOrigins, "|") != "http://a.test|http://b.test" {
		t.Fatalf("cors = %v", env.CORSOrigins)
	}
	if env.SMTPPort != 587 {
		t.Fatalf("smtp port fallback = %d", env.SMTPPort)
	}
}

func TestDSNCarriesTimeouts(t *testing.T) {
	env := Env{DBUser: "app", DBPassword: "pw", DBHost: "db", DBPort: "3307", DBName: "rail", DBTimeout: 2 * time.Second}
	dsn := env.DSN()
	for _, want := range []string{"app:pw@tcp(db:3307)/rail", "parseTime=true", "timeout=2s", "readTimeout=12s", "charset=utf8mb4"} {
		if !strings.Contains(dsn, want) {
			t.Fatalf("dsn %q missing %q", dsn, want)
		}
	}
}
