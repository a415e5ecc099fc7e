package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"pharmacy/m/domain"
	"pharmacy/m/internal/validation"
)

type Medicines struct{ s *Store }

const medicineColumns = `medicine_id, name, manufacturer_id, supplier_id, category_id, effects, quantity, price`

func validateMedicine(m domain.Medicine, withID bool) error {
	var v validation.Errors
	if withID {
		v.Require("medicine_id", m.ID)
	}
	v.Require("name", m.Name)
	v.Require("manufacturer_id", m.ManufacturerID)
	v.Require("supplier_id", m.SupplierID)
	v.Require("category_id", m.CategoryID)
	if m.Quantity < 0 {
		v.Add("quantity", "must not be negative")
	}
	v.NonNegative("price", m.Price)
	return v.Err()
}

// checkMedicineRefs turns missing foreign rows into a validation error
// instead of a constraint failure.
func checkMedicineRefs(ctx context.Context, tx *sqlx.Tx, m domain.Medicine) error {
	refs := []struct{ field, table, column, id string }{
		{"manufacturer_id", "manufacturers", "manufacturer_id", m.ManufacturerID},
		{"supplier_id", "suppliers", "supplier_id", m.SupplierID},
		{"category_id", "medicine_categories", "category_id", m.CategoryID},
	}
	var v validation.Errors
	for _, ref := range refs {
		ok, err := exists(ctx, tx, ref.table, ref.column, ref.id)
		if err != nil {
			return err
		}
		if !ok {
			v.Add(ref.field, "does not exist")
		}
	}
	return v.Err()
}

// List returns all medicines, or those whose name contains search.
func (r *Medicines) List(ctx context.Context, search string) ([]domain.Medicine, error) {
	medicines := []domain.Medicine{}
	search = strings.TrimSpace(search)
	err := r.s.tx(ctx, func(tx *sqlx.Tx) error {
		if search == "" {
			return sel(ctx, tx, &medicines, `SELECT `+medicineColumns+` FROM medicines ORDER BY medicine_id`)
		}
		return sel(ctx, tx, &medicines, `SELECT `+medicineColumns+` FROM medicines WHERE LOWER(name) LIKE ? ESCAPE '\' ORDER BY name`,
			"%"+likeEscaper.Replace(strings.ToLower(search))+"%")
	})
	if err != nil {
		return nil, fmt.Errorf("list medicines: %w", err)
	}
	return medicines, nil
}

func (r *Medicines) Get(ctx context.Context, id string) (domain.Medicine, error) {
	var m domain.Medicine
	err := r.s.tx(ctx, func(tx *sqlx.Tx) error {
		return get(ctx, tx, &m, `SELECT `+medicineColumns+` FROM medicines WHERE medicine_id = ?`, id)
	})
	if err != nil {
		return domain.Medicine{}, fmt.Errorf("get medicine %s: %w", id, err)
	}
	return m, nil
}

func (r *Medicines) Create(ctx context.Context, m domain.Medicine) (domain.Medicine, error) {
	m.ID = strings.TrimSpace(m.ID)
	if err := validateMedicine(m, true); err != nil {
		return domain.Medicine{}, err
	}
	var created domain.Medicine
	err := r.s.tx(ctx, func(tx *sqlx.Tx) error {
		if err := checkMedicineRefs(ctx, tx, m); err != nil {
			return err
		}
		err := insertUnique(ctx, tx, "medicines", "medicine_id", m.ID,
			`INSERT INTO medicines (`+medicineColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			m.ID, m.Name, m.ManufacturerID, m.SupplierID, m.CategoryID, m.Effects, m.Quantity, m.Price)
		if err != nil {
			return err
		}
		return get(ctx, tx, &created, `SELECT `+medicineColumns+` FROM medicines WHERE medicine_id = ?`, m.ID)
	})
	if err != nil {
		return domain.Medicine{}, fmt.Errorf("create medicine: %w", err)
	}
	return created, nil
}

func (r *Medicines) Update(ctx context.Context, id string, m domain.Medicine) (domain.Medicine, error) {
	if err := validateMedicine(m, false); err != nil {
		return domain.Medicine{}, err
	}
	var updated domain.Medicine
	err := r.s.tx(ctx, func(tx *sqlx.Tx) error {
		found, err := exists(ctx, tx, "medicines", "medicine_id", id)
		if err != nil {
			return err
		}
		if !found {
			return ErrNotFound
		}
		if err := checkMedicineRefs(ctx, tx, m); err != nil {
			return err
		}
		_, err = exec(ctx, tx, `UPDATE medicines SET name = ?, manufacturer_id = ?, supplier_id = ?, category_id = ?,
                effects = ?, quantity = ?, price = ? WHERE medicine_id = ?`,
			m.Name, m.ManufacturerID, m.SupplierID, m.CategoryID, m.Effects, m.Quantity, m.Price, id)
		if err != nil {
			return err
		}
		return get(ctx, tx, &updated, `SELECT `+medicineColumns+` FROM medicines WHERE medicine_id = ?`, id)
	})
	if err != nil {
		return domain.Medicine{}, fmt.Errorf("update medicine %s: %w", id, err)
	}
	return updated, nil
}

func (r *Medicines) Delete(ctx context.Context, id string) error {
	err := r.s.tx(ctx, func(tx *sqlx.Tx) error {
		return deleteByID(ctx, tx, "medicines", "medicine_id", id)
	})
	if err != nil {
		return fmt.Errorf("delete medicine %s: %w", id, err)
	}
	return nil
}
