package db

import (
	"context"
	"database/sql"
	"fmt"
)

// Execer is satisfied by *sql.DB and *sql.Tx.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

var ddl = []struct {
	table string
	stmt  string
}{
	{"trains", `
CREATE TABLE IF NOT EXISTS trains (
	train_id INT AUTO_INCREMENT PRIMARY KEY,
	train_name VARCHAR(100) NOT NULL,
	source VARCHAR(100) NOT NULL,
	destination VARCHAR(100) NOT NULL,
	departure_time VARCHAR(10) NOT NULL,
	arrival_time VARCHAR(10) NOT NULL,
	total_seats INT NOT NULL,
	available_seats INT NOT NULL,
	fare DECIMAL(10,2) NOT NULL,
	KEY idx_route (source, destination),
	CONSTRAINT chk_seats CHECK (available_seats >= 0 AND available_seats <= total_seats)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;
`},
	{"tickets", `
CREATE TABLE IF NOT EXISTS tickets (
	ticket_id INT AUTO_INCREMENT PRIMARY KEY,
	train_id INT NOT NULL,
	passenger_name VARCHAR(100) NOT NULL,
	passenger_email VARCHAR(100) NOT NULL,
	passenger_phone VARCHAR(20),
	passenger_age INT,
	passenger_gender VARCHAR(1),
	id_proof_type VARCHAR(20),
	id_proof_number VARCHAR(30),
	seat_number VARCHAR(10) NOT NULL,
	coach_number VARCHAR(5),
	berth_type VARCHAR(12),
	ticket_class VARCHAR(12),
	base_fare DECIMAL(10,2),
	taxes DECIMAL(10,2),
	total_fare DECIMAL(10,2),
	fare DECIMAL(10,2) NOT NULL,
	booking_time DATETIME NOT NULL,
	journey_date DATE,
	status VARCHAR(12) NOT NULL DEFAULT 'BOOKED',
	pnr_number VARCHAR(10),
	booking_source VARCHAR(12),
	payment_mode VARCHAR(12),
	transaction_id VARCHAR(40),
	UNIQUE KEY uniq_pnr (pnr_number),
	KEY idx_train_status (train_id, status),
	KEY idx_email (passenger_email),
	CONSTRAINT fk_ticket_train FOREIGN KEY (train_id) REFERENCES trains(train_id)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;
`},
	{"operators", `
CREATE TABLE IF NOT EXISTS operators (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	username VARCHAR(60) NOT NULL,
	name VARCHAR(100) NOT NULL DEFAULT '',
	password_hash VARCHAR(100) NOT NULL,
	role VARCHAR(20) NOT NULL DEFAULT 'clerk',
	status VARCHAR(20) NOT NULL DEFAULT 'active',
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	UNIQUE KEY uniq_username (username)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;
`},
}

// Migrate creates the trains, tickets and operators tables when they are missing.
// Existing tables are left untouched, so a legacy tickets table keeps its shape.
func Migrate(ctx context.Context, conn Execer) error {
	for _, d := range ddl {
		if _, err := conn.ExecContext(ctx, d.stmt); err != nil {
			return fmt.Errorf("create table %s: %w", d.table, err)
		}
	}
	return nil
}
