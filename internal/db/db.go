package db

import (
	"database/sql"
	"fmt"

	// Registers the "libsql" driver with database/sql. Handles remote URLs
	// (libsql://, https://, wss://) and delegates file: URLs to the pure-Go
	// SQLite driver below.
	_ "github.com/tursodatabase/libsql-client-go/libsql"

	_ "modernc.org/sqlite"
)

// driverName is the database/sql driver to use. Package-level for tests;
// production always uses "libsql".
var driverName = "libsql"

// Connect opens the quill database (knowledge base + archive) and verifies it
// with a ping.
//
// Supported URL schemes:
//
//	Local file:   "file:quill.db"
//	Remote Turso: "libsql://[db-name].turso.io?authToken=[token]"
func Connect(dbURL string) (*sql.DB, error) {
	if dbURL == "" {
		return nil, fmt.Errorf("database URL must not be empty")
	}

	conn, err := sql.Open(driverName, dbURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open libsql: %w", err)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return conn, nil
}
