// Package store provides Postgres persistence for connected apps,
// realtime metrics, daily snapshots, tracking links, clicks and install
// attributions.
package store

import (
	"database/sql"

	_ "github.com/lib/pq"
)

// Store provides database operations for all analytics entities.
type Store struct {
	db *sql.DB
}

// New creates a store around an open database handle.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Open connects to Postgres and verifies the connection.
func Open(databaseURL string) (*sql.DB, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}
