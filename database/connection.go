package database

import (
	"database/sql"
	"fmt"
	"time"

	"Kinolog/config"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// Connect opens and pings the database. The handle is constructed once in
// main and injected into the services; there is no package-level singleton.
func Connect(cfg *config.Config) (*sql.DB, error) {
	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err = db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// Pool limits to prevent "too many clients" errors from PostgreSQL
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	return db, nil
}
