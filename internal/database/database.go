package database

import (
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// Connect opens the SQLite database at path. ":memory:" gives a private
// in-process database, which the tests rely on.
func Connect(path string) *sqlx.DB {
	dsn := fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_txlock=immediate", path)
	db, err := sqlx.Connect("sqlite", dsn)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	// SQLite allows a single writer; one pooled connection avoids
	// SQLITE_BUSY and keeps :memory: databases on the same handle.
	db.SetMaxOpenConns(1)
	return db
}
