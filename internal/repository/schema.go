package repository

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS tenants (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL,
	house_number TEXT NOT NULL,
	contact TEXT NOT NULL DEFAULT '',
	nok1_name TEXT NOT NULL DEFAULT '',
	nok1_contact TEXT NOT NULL DEFAULT '',
	nok2_name TEXT NOT NULL DEFAULT '',
	nok2_contact TEXT NOT NULL DEFAULT '',
	monthly_rent INTEGER NOT NULL CHECK (monthly_rent >= 0),
	last_payment_date TEXT NOT NULL,
	payment_status TEXT NOT NULL DEFAULT 'unpaid' CHECK (payment_status IN ('unpaid', 'paid'))
)`

const postgresSchema = `
CREATE TABLE IF NOT EXISTS tenants (
	id BIGSERIAL PRIMARY KEY,
	name TEXT NOT NULL,
	house_number TEXT NOT NULL,
	contact TEXT NOT NULL DEFAULT '',
	nok1_name TEXT NOT NULL DEFAULT '',
	nok1_contact TEXT NOT NULL DEFAULT '',
	nok2_name TEXT NOT NULL DEFAULT '',
	nok2_contact TEXT NOT NULL DEFAULT '',
	monthly_rent BIGINT NOT NULL CHECK (monthly_rent >= 0),
	last_payment_date TEXT NOT NULL,
	payment_status TEXT NOT NULL DEFAULT 'unpaid' CHECK (payment_status IN ('unpaid', 'paid'))
)`

func schemaFor(driver string) (string, error) {
	switch driver {
	case "sqlite3":
		return sqliteSchema, nil
	case "postgres":
		return postgresSchema, nil
	default:
		return "", fmt.Errorf("unsupported database driver %q", driver)
	}
}

// Open opens a database handle for the given driver and verifies the connection
func Open(ctx context.Context, driver, dsn string) (*sql.DB, error) {
	if _, err := schemaFor(driver); err != nil {
		return nil, err
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}
