package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"pharmacy/m/domain"
	"pharmacy/m/internal/validation"
)

type Customers struct{ s *Store }

const customerColumns = `customer_id, name, phone, address`

func validateCustomer(c domain.Customer) error {
	var v validation.Errors
	v.Require("name", c.Name)
	v.Require("phone", c.Phone)
	v.Require("address", c.Address)
	v.Phone("phone", c.Phone)
	return v.Err()
}

func (r *Customers) List(ctx context.Context) ([]domain.Customer, error) {
	customers := []domain.Customer{}
	err := r.s.tx(ctx, func(tx *sqlx.Tx) error {
		return sel(ctx, tx, &customers, `SELECT `+customerColumns+` FROM customers ORDER BY customer_id`)
	})
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	return customers, nil
}

func (r *Customers) Get(ctx context.Context, id string) (domain.Customer, error) {
	var c domain.Customer
	err := r.s.tx(ctx, func(tx *sqlx.Tx) error {
		return get(ctx, tx, &c, `SELECT `+customerColumns+` FROM customers WHERE customer_id = ?`, id)
	})
	if err != nil {
		return domain.Customer{}, fmt.Errorf("get customer %s: %w", id, err)
	}
	return c, nil
}

// Create stores c under the next KH id.
func (r *Customers) Create(ctx context.Context, c domain.Customer) (domain.Customer, error) {
	c.Name, c.Phone, c.Address = strings.TrimSpace(c.Name), strings.TrimSpace(c.Phone), strings.TrimSpace(c.Address)
	if err := validateCustomer(c); err != nil {
		return domain.Customer{}, err
	}
	var created domain.Customer
	err := r.s.tx(ctx, func(tx *sqlx.Tx) error {
		id, err := nextID(ctx, tx, "customers", "customer_id", prefixCustomer)
		if err != nil {
			return err
		}
		if _, err := exec(ctx, tx, `INSERT INTO customers (customer_id, name, phone, address) VALUES (?, ?, ?, ?)`,
			id, c.Name, c.Phone, c.Address); err != nil {
			return err
		}
		return get(ctx, tx, &created, `SELECT `+customerColumns+` FROM customers WHERE customer_id = ?`, id)
	})
	if err != nil {
		return domain.Customer{}, fmt.Errorf("create customer: %w", err)
	}
	return created, nil
}

func (r *Customers) Update(ctx context.Context, id string, c domain.Customer) (domain.Customer, error) {
	c.Name, c.Phone, c.Address = strings.TrimSpace(c.Name), strings.TrimSpace(c.Phone), strings.TrimSpace(c.Address)
	if err := validateCustomer(c); err != nil {
		return domain.Customer{}, err
	}
	var updated domain.Customer
	err := r.s.tx(ctx, func(tx *sqlx.Tx) error {
		n, err := exec(ctx, tx, `UPDATE customers SET name = ?, phone = ?, address = ? WHERE customer_id = ?`,
			c.Name, c.Phone, c.Address, id)
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrNotFound
		}
		return get(ctx, tx, &updated, `SELECT `+customerColumns+` FROM customers WHERE customer_id = ?`, id)
	})
	if err != nil {
		return domain.Customer{}, fmt.Errorf("update customer %s: %w", id, err)
	}
	return updated, nil
}

func (r *Customers) Delete(ctx context.Context, id string) error {
	err := r.s.tx(ctx, func(tx *sqlx.Tx) error {
		return deleteByID(ctx, tx, "customers", "customer_id", id)
	})
	if err != nil {
		return fmt.Errorf("delete customer %s: %w", id, err)
	}
	return nil
}
