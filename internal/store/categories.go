package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"pharmacy/m/domain"
	"pharmacy/m/internal/validation"
)

type Categories struct{ s *Store }

const categoryColumns = `category_id, name, description`

func validateCategory(c domain.Category, withID bool) error {
	var v validation.Errors
	if withID {
		v.Require("category_id", c.ID)
	}
	v.Require("name", c.Name)
	v.Require("description", c.Description)
	return v.Err()
}

func (r *Categories) List(ctx context.Context) ([]domain.Category, error) {
	categories := []domain.Category{}
	err := r.s.tx(ctx, func(tx *sqlx.Tx) error {
		return sel(ctx, tx, &categories, `SELECT `+categoryColumns+` FROM medicine_categories ORDER BY category_id`)
	})
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

func (r *Categories) Get(ctx context.Context, id string) (domain.Category, error) {
	var c domain.Category
	err := r.s.tx(ctx, func(tx *sqlx.Tx) error {
		return get(ctx, tx, &c, `SELECT `+categoryColumns+` FROM medicine_categories WHERE category_id = ?`, id)
	})
	if err != nil {
		return domain.Category{}, fmt.Errorf("get category %s: %w", id, err)
	}
	return c, nil
}

func (r *Categories) Create(ctx context.Context, c domain.Category) (domain.Category, error) {
	c.ID = strings.TrimSpace(c.ID)
	if err := validateCategory(c, true); err != nil {
		return domain.Category{}, err
	}
	var created domain.Category
	err := r.s.tx(ctx, func(tx *sqlx.Tx) error {
		err := insertUnique(ctx, tx, "medicine_categories", "category_id", c.ID,
			`INSERT INTO medicine_categories (category_id, name, description) VALUES (?, ?, ?)`, c.ID, c.Name, c.Description)
		if err != nil {
			return err
		}
		return get(ctx, tx, &created, `SELECT `+categoryColumns+` FROM medicine_categories WHERE category_id = ?`, c.ID)
	})
	if err != nil {
		return domain.Category{}, fmt.Errorf("create category: %w", err)
	}
	return created, nil
}

func (r *Categories) Update(ctx context.Context, id string, c domain.Category) (domain.Category, error) {
	if err := validateCategory(c, false); err != nil {
		return domain.Category{}, err
	}
	var updated domain.Category
	err := r.s.tx(ctx, func(tx *sqlx.Tx) error {
		n, err := exec(ctx, tx, `UPDATE medicine_categories SET name = ?, description = ? WHERE category_id = ?`,
			c.Name, c.Description, id)
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrNotFound
		}
		return get(ctx, tx, &updated, `SELECT `+categoryColumns+` FROM medicine_categories WHERE category_id = ?`, id)
	})
	if err != nil {
		return domain.Category{}, fmt.Errorf("update category %s: %w", id, err)
	}
	return updated, nil
}

func (r *Categories) Delete(ctx context.Context, id string) error {
	err := r.s.tx(ctx, func(tx *sqlx.Tx) error {
		return deleteByID(ctx, tx, "medicine_categories", "category_id", id)
	})
	if err != nil {
		return fmt.Errorf("delete category %s: %w", id, err)
	}
	return nil
}
