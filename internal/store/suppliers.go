package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"pharmacy/m/domain"
	"pharmacy/m/internal/validation"
)

type Suppliers struct{ s *Store }

const supplierColumns = `supplier_id, name, address, representative`

func validateSupplier(sp domain.Supplier, withID bool) error {
	var v validation.Errors
	if withID {
		v.Require("supplier_id", sp.ID)
	}
	v.Require("name", sp.Name)
	v.Require("address", sp.Address)
	v.Require("representative", sp.Representative)
	return v.Err()
}

func (r *Suppliers) List(ctx context.Context) ([]domain.Supplier, error) {
	suppliers := []domain.Supplier{}
	err := r.s.tx(ctx, func(tx *sqlx.Tx) error {
		return sel(ctx, tx, &suppliers, `SELECT `+supplierColumns+` FROM suppliers ORDER BY supplier_id`)
	})
	if err != nil {
		return nil, fmt.Errorf("list suppliers: %w", err)
	}
	return suppliers, nil
}

func (r *Suppliers) Get(ctx context.Context, id string) (domain.Supplier, error) {
	var sp domain.Supplier
	err := r.s.tx(ctx, func(tx *sqlx.Tx) error {
		return get(ctx, tx, &sp, `SELECT `+supplierColumns+` FROM suppliers WHERE supplier_id = ?`, id)
	})
	if err != nil {
		return domain.Supplier{}, fmt.Errorf("get supplier %s: %w", id, err)
	}
	return sp, nil
}

func (r *Suppliers) Create(ctx context.Context, sp domain.Supplier) (domain.Supplier, error) {
	sp.ID = strings.TrimSpace(sp.ID)
	if err := validateSupplier(sp, true); err != nil {
		return domain.Supplier{}, err
	}
	var created domain.Supplier
	err := r.s.tx(ctx, func(tx *sqlx.Tx) error {
		err := insertUnique(ctx, tx, "suppliers", "supplier_id", sp.ID,
			`INSERT INTO suppliers (supplier_id, name, address, representative) VALUES (?, ?, ?, ?)`,
			sp.ID, sp.Name, sp.Address, sp.Representative)
		if err != nil {
			return err
		}
		return get(ctx, tx, &created, `SELECT `+supplierColumns+` FROM suppliers WHERE supplier_id = ?`, sp.ID)
	})
	if err != nil {
		return domain.Supplier{}, fmt.Errorf("create supplier: %w", err)
	}
	return created, nil
}

func (r *Suppliers) Update(ctx context.Context, id string, sp domain.Supplier) (domain.Supplier, error) {
	if err := validateSupplier(sp, false); err != nil {
		return domain.Supplier{}, err
	}
	var updated domain.Supplier
	err := r.s.tx(ctx, func(tx *sqlx.Tx) error {
		n, err := exec(ctx, tx, `UPDATE suppliers SET name = ?, address = ?, representative = ? WHERE supplier_id = ?`,
			sp.Name, sp.Address, sp.Representative, id)
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrNotFound
		}
		return get(ctx, tx, &updated, `SELECT `+supplierColumns+` FROM suppliers WHERE supplier_id = ?`, id)
	})
	if err != nil {
		return domain.Supplier{}, fmt.Errorf("update supplier %s: %w", id, err)
	}
	return updated, nil
}

func (r *Suppliers) Delete(ctx context.Context, id string) error {
	err := r.s.tx(ctx, func(tx *sqlx.Tx) error {
		return deleteByID(ctx, tx, "suppliers", "supplier_id", id)
	})
	if err != nil {
		return fmt.Errorf("delete supplier %s: %w", id, err)
	}
	return nil
}
