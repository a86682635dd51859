package config

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
)

// DSN builds the MySQL data source name. Reads and writes share DBTimeout so storage
// calls fail within a bounded time instead of hanging.
func (e Env) DSN() string {
	cfg := mysql.NewConfig()
	cfg.User = e.DBUser
	cfg.Passwd = e.DBPassword
	cfg.Net = "tcp"
	cfg.Addr = e.DBHost + ":" + e.DBPort
	cfg.DBName = e.DBName
	cfg.ParseTime = true
	cfg.Loc = time.Local
	cfg.Timeout = e.DBTimeout
	cfg.ReadTimeout = 6 * e.DBTimeout
	cfg.WriteTimeout = 6 * e.DBTimeout
	cfg.Params = map[string]string{"charset": "utf8mb4"}
	return cfg.FormatDSN()
}

// OpenDB opens and pings the MySQL pool.
func OpenDB(env Env) (*sql.DB, error) {
	db, err := sql.Open("mysql", env.DSN())
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(10 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	return db, nil
}

// EnsureDB pings an existing pool so callers can fail fast when the connection is gone.
func EnsureDB(ctx context.Context, db *sql.DB) error {
	if db == nil {
		return fmt.Errorf("db not connected")
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return db.PingContext(ctx)
}
