package database

import (
	"database/sql"
	"fmt"
)

func RunMigrations(db *sql.DB) error {
	usersSQL := `
	CREATE TABLE IF NOT EXISTS users (
		id SERIAL PRIMARY KEY,
		username VARCHAR(255) UNIQUE NOT NULL,
		email VARCHAR(255) UNIQUE NOT NULL,
		password_hash VARCHAR(255) NOT NULL,
		is_admin BOOLEAN DEFAULT FALSE,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	`
	if _, err := db.Exec(usersSQL); err != nil {
		return fmt.Errorf("failed to run users migration: %w", err)
	}

	contributorsSQL := `
	CREATE TABLE IF NOT EXISTS contributors (
		id SERIAL PRIMARY KEY,
		username VARCHAR(255) UNIQUE NOT NULL,
		password VARCHAR(255) NOT NULL,
		display_name VARCHAR(255) NOT NULL DEFAULT '',
		active BOOLEAN DEFAULT TRUE,
		seen_guide BOOLEAN DEFAULT FALSE,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	`
	if _, err := db.Exec(contributorsSQL); err != nil {
		return fmt.Errorf("failed to run contributors migration: %w", err)
	}

	moviesSQL := `
	CREATE TABLE IF NOT EXISTS movies (
		id SERIAL PRIMARY KEY,
		title VARCHAR(255) NOT NULL,
		year INTEGER DEFAULT 0,
		director VARCHAR(255) DEFAULT '',
		plot TEXT DEFAULT '',
		notes TEXT DEFAULT '',
		genres TEXT DEFAULT '',
		poster_path VARCHAR(255) DEFAULT '',
		backdrop_path VARCHAR(255) DEFAULT '',
		links JSONB,
		rating_sum BIGINT DEFAULT 0,
		rating_count BIGINT DEFAULT 0,
		visibility VARCHAR(20) DEFAULT 'visible',
		quarantine_reason TEXT,
		visibility_updated_at TIMESTAMP,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_movies_visibility ON movies (visibility);
	`
	if _, err := db.Exec(moviesSQL); err != nil {
		return fmt.Errorf("failed to run movies migration: %w", err)
	}

	pendingSQL := `
	CREATE TABLE IF NOT EXISTS pending_changes (
		id SERIAL PRIMARY KEY,
		kind VARCHAR(20) NOT NULL, -- 'create', 'update' or 'delete'
		movie_id INTEGER REFERENCES movies(id) ON DELETE SET NULL,
		movie_data JSONB NOT NULL,
		previous_data JSONB,
		contributor_id INTEGER REFERENCES contributors(id) ON DELETE SET NULL,
		contributor_name VARCHAR(255) NOT NULL DEFAULT '',
		status VARCHAR(20) DEFAULT 'pending',
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		reviewed_by VARCHAR(255),
		reviewed_at TIMESTAMP,
		review_note TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_pending_changes_status ON pending_changes (status);
	`
	if _, err := db.Exec(pendingSQL); err != nil {
		return fmt.Errorf("failed to run pending_changes migration: %w", err)
	}

	return nil
}
