package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"pharmacy/m/domain"
	"pharmacy/m/internal/validation"
)

type Manufacturers struct{ s *Store }

const manufacturerColumns = `manufacturer_id, name, nation`

func validateManufacturer(m domain.Manufacturer, withID bool) error {
	var v validation.Errors
	if withID {
		v.Require("manufacturer_id", m.ID)
	}
	v.Require("name", m.Name)
	v.Require("nation", m.Nation)
	return v.Err()
}

func (r *Manufacturers) List(ctx context.Context) ([]domain.Manufacturer, error) {
	manufacturers := []domain.Manufacturer{}
	err := r.s.tx(ctx, func(tx *sqlx.Tx) error {
		return sel(ctx, tx, &manufacturers, `SELECT `+manufacturerColumns+` FROM manufacturers ORDER BY manufacturer_id`)
	})
	if err != nil {
		return nil, fmt.Errorf("list manufacturers: %w", err)
	}
	return manufacturers, nil
}

func (r *Manufacturers) Get(ctx context.Context, id string) (domain.Manufacturer, error) {
	var m domain.Manufacturer
	err := r.s.tx(ctx, func(tx *sqlx.Tx) error {
		return get(ctx, tx, &m, `SELECT `+manufacturerColumns+` FROM manufacturers WHERE manufacturer_id = ?`, id)
	})
	if err != nil {
		return domain.Manufacturer{}, fmt.Errorf("get manufacturer %s: %w", id, err)
	}
	return m, nil
}

func (r *Manufacturers) Create(ctx context.Context, m domain.Manufacturer) (domain.Manufacturer, error) {
	m.ID = strings.TrimSpace(m.ID)
	if err := validateManufacturer(m, true); err != nil {
		return domain.Manufacturer{}, err
	}
	var created domain.Manufacturer
	err := r.s.tx(ctx, func(tx *sqlx.Tx) error {
		err := insertUnique(ctx, tx, "manufacturers", "manufacturer_id", m.ID,
			`INSERT INTO manufacturers (manufacturer_id, name, nation) VALUES (?, ?, ?)`, m.ID, m.Name, m.Nation)
		if err != nil {
			return err
		}
		return get(ctx, tx, &created, `SELECT `+manufacturerColumns+` FROM manufacturers WHERE manufacturer_id = ?`, m.ID)
	})
	if err != nil {
		return domain.Manufacturer{}, fmt.Errorf("create manufacturer: %w", err)
	}
	return created, nil
}

func (r *Manufacturers) Update(ctx context.Context, id string, m domain.Manufacturer) (domain.Manufacturer, error) {
	if err := validateManufacturer(m, false); err != nil {
		return domain.Manufacturer{}, err
	}
	var updated domain.Manufacturer
	err := r.s.tx(ctx, func(tx *sqlx.Tx) error {
		n, err := exec(ctx, tx, `UPDATE manufacturers SET name = ?, nation = ? WHERE manufacturer_id = ?`, m.Name, m.Nation, id)
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrNotFound
		}
		return get(ctx, tx, &updated, `SELECT `+manufacturerColumns+` FROM manufacturers WHERE manufacturer_id = ?`, id)
	})
	if err != nil {
		return domain.Manufacturer{}, fmt.Errorf("update manufacturer %s: %w", id, err)
	}
	return updated, nil
}

func (r *Manufacturers) Delete(ctx context.Context, id string) error {
	err := r.s.tx(ctx, func(tx *sqlx.Tx) error {
		return deleteByID(ctx, tx, "manufacturers", "manufacturer_id", id)
	})
	if err != nil {
		return fmt.Errorf("delete manufacturer %s: %w", id, err)
	}
	return nil
}
