package migrations

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// schema is written in the subset of DDL shared by SQLite and PostgreSQL.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS employees (
            employee_id TEXT PRIMARY KEY,
            username TEXT NOT NULL UNIQUE,
            password TEXT NOT NULL,
            fullname TEXT NOT NULL DEFAULT '',
            address TEXT NOT NULL DEFAULT '',
            phone_number TEXT NOT NULL DEFAULT '',
            role TEXT NOT NULL CHECK (role IN ('admin', 'staff')),
            is_locked BOOLEAN NOT NULL DEFAULT FALSE,
            created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
            updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
        )`,
	`CREATE TABLE IF NOT EXISTS customers (
            customer_id TEXT PRIMARY KEY,
            name TEXT NOT NULL,
            phone TEXT NOT NULL,
            address TEXT NOT NULL
        )`,
	`CREATE TABLE IF NOT EXISTS suppliers (
            supplier_id TEXT PRIMARY KEY,
            name TEXT NOT NULL,
            address TEXT NOT NULL,
            representative TEXT NOT NULL
        )`,
	`CREATE TABLE IF NOT EXISTS manufacturers (
            manufacturer_id TEXT PRIMARY KEY,
            name TEXT NOT NULL,
            nation TEXT NOT NULL
        )`,
	`CREATE TABLE IF NOT EXISTS medicine_categories (
            category_id TEXT PRIMARY KEY,
            name TEXT NOT NULL,
            description TEXT NOT NULL
        )`,
	`CREATE TABLE IF NOT EXISTS medicines (
            medicine_id TEXT PRIMARY KEY,
            name TEXT NOT NULL,
            manufacturer_id TEXT NOT NULL REFERENCES manufacturers(manufacturer_id),
            supplier_id TEXT NOT NULL REFERENCES suppliers(supplier_id),
            category_id TEXT NOT NULL REFERENCES medicine_categories(category_id),
            effects TEXT NOT NULL DEFAULT '',
            quantity INTEGER NOT NULL DEFAULT 0 CHECK (quantity >= 0),
            price NUMERIC(14, 2) NOT NULL DEFAULT 0 CHECK (price >= 0)
        )`,
	`CREATE TABLE IF NOT EXISTS received_notes (
            received_note_id TEXT PRIMARY KEY,
            employee_id TEXT NOT NULL REFERENCES employees(employee_id),
            supplier_id TEXT NOT NULL REFERENCES suppliers(supplier_id),
            received_date TIMESTAMP NOT NULL
        )`,
	`CREATE TABLE IF NOT EXISTS received_note_details (
            received_note_id TEXT NOT NULL REFERENCES received_notes(received_note_id) ON DELETE CASCADE,
            medicine_id TEXT NOT NULL REFERENCES medicines(medicine_id),
            quantity INTEGER NOT NULL CHECK (quantity > 0),
            price NUMERIC(14, 2) NOT NULL CHECK (price >= 0),
            PRIMARY KEY (received_note_id, medicine_id)
        )`,
	`CREATE TABLE IF NOT EXISTS delivery_notes (
            delivery_note_id TEXT PRIMARY KEY,
            employee_id TEXT NOT NULL REFERENCES employees(employee_id),
            customer_id TEXT NOT NULL REFERENCES customers(customer_id),
            delivery_date TIMESTAMP NOT NULL
        )`,
	`CREATE TABLE IF NOT EXISTS delivery_note_details (
            delivery_note_id TEXT NOT NULL REFERENCES delivery_notes(delivery_note_id) ON DELETE CASCADE,
            medicine_id TEXT NOT NULL REFERENCES medicines(medicine_id),
            quantity INTEGER NOT NULL CHECK (quantity > 0),
            price NUMERIC(14, 2) NOT NULL CHECK (price >= 0),
            PRIMARY KEY (delivery_note_id, medicine_id)
        )`,
	`CREATE INDEX IF NOT EXISTS idx_received_notes_date ON received_notes (received_date)`,
	`CREATE INDEX IF NOT EXISTS idx_delivery_notes_date ON delivery_notes (delivery_date)`,
}

// Run creates the database schema. It is safe to call on every start.
func Run(ctx context.Context, db *sqlx.DB) error {
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
