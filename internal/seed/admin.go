package seed

import (
	"log"
	"time"

	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"
)

// EnsureAdmin creates the bootstrap admin account when the users table is
// empty, so a fresh install can log in.
func EnsureAdmin(db *sqlx.DB, email, password string) {
	var count int64
	if err := db.Get(&count, `SELECT COUNT(*) FROM users`); err != nil {
		log.Printf("unable to inspect users table: %v", err)
		return
	}
	if count > 0 {
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("unable to hash bootstrap admin password: %v", err)
		return
	}

	_, err = db.Exec(`INSERT INTO users (username, email, password, role, created_at) VALUES (?, ?, ?, ?, ?)`,
		"admin", email, hashed, "admin", time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		log.Printf("unable to seed admin account: %v", err)
		return
	}
	log.Printf("seeded bootstrap admin account %s", email)
}
