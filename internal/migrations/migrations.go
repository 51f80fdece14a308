package migrations

import (
	"log"

	"github.com/jmoiron/sqlx"
)

// Run creates the database schema required for the shop backend.
func Run(db *sqlx.DB) {
	schema := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			username TEXT NOT NULL,
			email TEXT NOT NULL UNIQUE,
			password TEXT NOT NULL,
			role TEXT NOT NULL,
			created_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS customers (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			email TEXT UNIQUE,
			cpf TEXT UNIQUE,
			phone TEXT,
			birth_date TEXT,
			address TEXT,
			notes TEXT,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS products (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			sku TEXT UNIQUE,
			category TEXT NOT NULL,
			description TEXT,
			stock_quantity INTEGER NOT NULL DEFAULT 0 CHECK (stock_quantity >= 0),
			cost_price REAL,
			sale_price REAL,
			lens_type TEXT,
			lens_material TEXT,
			contact_brand TEXT,
			contact_base_curve REAL,
			contact_diameter REAL,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS prescriptions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			customer_id INTEGER NOT NULL REFERENCES customers(id) ON DELETE CASCADE,
			issue_date TEXT,
			od_sphere REAL,
			od_cylinder REAL,
			od_axis REAL,
			os_sphere REAL,
			os_cylinder REAL,
			os_axis REAL,
			addition REAL,
			pd REAL,
			notes TEXT,
			created_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS appointments (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			customer_id INTEGER NOT NULL REFERENCES customers(id),
			date TEXT NOT NULL,
			time TEXT NOT NULL,
			type TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'scheduled',
			notes TEXT,
			created_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS sales (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			customer_id INTEGER NOT NULL REFERENCES customers(id),
			receipt_number TEXT NOT NULL UNIQUE,
			payment_status TEXT NOT NULL DEFAULT 'pending',
			payment_method TEXT,
			total_amount REAL NOT NULL,
			notes TEXT,
			created_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS sale_items (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			sale_id INTEGER NOT NULL REFERENCES sales(id) ON DELETE CASCADE,
			product_id INTEGER NOT NULL REFERENCES products(id),
			quantity INTEGER NOT NULL CHECK (quantity > 0),
			unit_price REAL NOT NULL,
			subtotal REAL NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_sales_created_at ON sales(created_at);`,
		`CREATE INDEX IF NOT EXISTS idx_sale_items_sale_id ON sale_items(sale_id);`,
		`CREATE INDEX IF NOT EXISTS idx_appointments_date ON appointments(date);`,
	}

	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			log.Fatalf("migration failed: %v", err)
		}
	}
}
