// Package store holds the SQL repositories. Every exported method runs its
// reads and writes in one transaction taken from the pool.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"pharmacy/m/internal/database"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrConflict  = errors.New("already exists")
	ErrForbidden = errors.New("forbidden")
)

// Store bundles the repositories over one connection pool.
type Store struct {
	db *sqlx.DB

	Customers     *Customers
	Suppliers     *Suppliers
	Manufacturers *Manufacturers
	Categories    *Categories
	Medicines     *Medicines
	ReceivedNotes *Notes
	DeliveryNotes *Notes
	Users         *Users
	Statistics    *Statistics
}

func New(db *sqlx.DB) *Store {
	s := &Store{db: db}
	s.Customers = &Customers{s}
	s.Suppliers = &Suppliers{s}
	s.Manufacturers = &Manufacturers{s}
	s.Categories = &Categories{s}
	s.Medicines = &Medicines{s}
	s.ReceivedNotes = &Notes{s, receivedNotes}
	s.DeliveryNotes = &Notes{s, deliveryNotes}
	s.Users = &Users{s}
	s.Statistics = &Statistics{s}
	return s
}

// DB exposes the pool for health checks.
func (s *Store) DB() *sqlx.DB { return s.db }

func (s *Store) tx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	return database.WithTx(ctx, s.db, fn)
}

// The helpers below take queries written with ? placeholders and rebind them
// for the active driver.

func get(ctx context.Context, tx *sqlx.Tx, dest any, query string, args ...any) error {
	err := tx.GetContext(ctx, dest, tx.Rebind(query), args...)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func sel(ctx context.Context, tx *sqlx.Tx, dest any, query string, args ...any) error {
	return tx.SelectContext(ctx, dest, tx.Rebind(query), args...)
}

func exec(ctx context.Context, tx *sqlx.Tx, query string, args ...any) (int64, error) {
	res, err := tx.ExecContext(ctx, tx.Rebind(query), args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func exists(ctx context.Context, tx *sqlx.Tx, table, column, id string) (bool, error) {
	var n int
	err := tx.GetContext(ctx, &n, tx.Rebind("SELECT COUNT(*) FROM "+table+" WHERE "+column+" = ?"), id)
	return n > 0, err
}

// deleteByID removes one row and reports ErrNotFound when nothing matched.
func deleteByID(ctx context.Context, tx *sqlx.Tx, table, column, id string) error {
	n, err := exec(ctx, tx, "DELETE FROM "+table+" WHERE "+column+" = ?", id)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// insertUnique rejects a client supplied id that is already taken.
func insertUnique(ctx context.Context, tx *sqlx.Tx, table, column, id, query string, args ...any) error {
	taken, err := exists(ctx, tx, table, column, id)
	if err != nil {
		return err
	}
	if taken {
		return fmt.Errorf("%s %s: %w", column, id, ErrConflict)
	}
	_, err = exec(ctx, tx, query, args...)
	return err
}

var timeNow = time.Now
