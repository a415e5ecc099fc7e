// Package testutil builds in-memory databases for tests.
package testutil

import (
	"context"
	"testing"

	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"

	"pharmacy/m/internal/database"
	"pharmacy/m/internal/migrations"
)

// NewDB opens an in-memory SQLite database with foreign keys enabled and the
// full schema applied. It is closed when the test ends.
func NewDB(t *testing.T) *sqlx.DB {
	t.Helper()
	ctx := context.Background()
	db, err := database.Connect(ctx, ":memory:", database.PoolOptions{})
	if err != nil {
		t.Fatalf("Failed to open test DB: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := migrations.Run(ctx, db); err != nil {
		t.Fatalf("Failed to migrate test DB: %v", err)
	}
	return db
}

// Exec runs fixture statements and fails the test on the first error.
func Exec(t *testing.T, db *sqlx.DB, stmts ...string) {
	t.Helper()
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("fixture %q: %v", stmt, err)
		}
	}
}

// AddEmployee inserts an account with a cheap bcrypt hash of password.
func AddEmployee(t *testing.T, db *sqlx.DB, id, username, password, role string, locked bool) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	_, err = db.Exec(`INSERT INTO employees (employee_id, username, password, fullname, address, phone_number, role, is_locked)
                VALUES (?, ?, ?, ?, 'Hanoi', '0912345678', ?, ?)`, id, username, string(hash), username, role, locked)
	if err != nil {
		t.Fatalf("insert employee %s: %v", id, err)
	}
}

// SeedCatalog adds one supplier, manufacturer, category and customer plus
// two medicines: S1, M1, C1, KH01, MD1 and MD2.
func SeedCatalog(t *testing.T, db *sqlx.DB) {
	t.Helper()
	Exec(t, db,
		`INSERT INTO suppliers VALUES ('S1', 'Phuong Dong', '12 Le Loi', 'Nguyen An')`,
		`INSERT INTO manufacturers VALUES ('M1', 'Traphaco', 'Vietnam')`,
		`INSERT INTO medicine_categories VALUES ('C1', 'Pain relief', 'Analgesics')`,
		`INSERT INTO customers VALUES ('KH01', 'Tran Binh', '0987654321', '5 Hang Bai')`,
		`INSERT INTO medicines VALUES ('MD1', 'Paracetamol', 'M1', 'S1', 'C1', 'Fever', 100, 2.5)`,
		`INSERT INTO medicines VALUES ('MD2', 'Ibuprofen', 'M1', 'S1', 'C1', 'Inflammation', 50, 4)`,
	)
}
