package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"pharmacy/m/domain"
	"pharmacy/m/internal/validation"
)

// noteSchema names the tables and columns of one kind of note. Received and
// delivery notes share every query through it.
type noteSchema struct {
	kind         string
	table        string
	idCol        string
	partnerCol   string
	partnerTable string
	dateCol      string
	detailTable  string
	prefix       string
}

var (
	receivedNotes = noteSchema{
		kind:         "received note",
		table:        "received_notes",
		idCol:        "received_note_id",
		partnerCol:   "supplier_id",
		partnerTable: "suppliers",
		dateCol:      "received_date",
		detailTable:  "received_note_details",
		prefix:       prefixReceived,
	}
	deliveryNotes = noteSchema{
		kind:         "delivery note",
		table:        "delivery_notes",
		idCol:        "delivery_note_id",
		partnerCol:   "customer_id",
		partnerTable: "customers",
		dateCol:      "delivery_date",
		detailTable:  "delivery_note_details",
		prefix:       prefixDelivery,
	}
)

func (n noteSchema) headerQuery() string {
	return fmt.Sprintf(`SELECT n.%[1]s AS note_id, n.employee_id, n.%[2]s AS partner_id, n.%[3]s AS note_date
                FROM %[4]s n`, n.idCol, n.partnerCol, n.dateCol, n.table)
}

func (n noteSchema) detailQuery() string {
	return fmt.Sprintf(`SELECT d.%[1]s AS note_id, d.medicine_id, COALESCE(m.name, '') AS medicine_name, d.quantity, d.price
                FROM %[2]s d
                LEFT JOIN medicines m ON m.medicine_id = d.medicine_id`, n.idCol, n.detailTable)
}

// NoteInput is the payload of a new note. EmployeeID defaults to the caller.
type NoteInput struct {
	EmployeeID string
	PartnerID  string
	Date       domain.Timestamp
	Details    []DetailInput
}

type DetailInput struct {
	NoteID     string
	MedicineID string
	Quantity   int64
	Price      decimal.Decimal
}

func validateDetail(v *validation.Errors, prefix string, d DetailInput) {
	v.Require(prefix+"medicine_id", d.MedicineID)
	v.Positive(prefix+"quantity", d.Quantity)
	v.NonNegative(prefix+"price", d.Price)
}

type Notes struct {
	s      *Store
	schema noteSchema
}

func (r *Notes) List(ctx context.Context) ([]domain.Note, error) {
	notes := []domain.Note{}
	q := r.schema.headerQuery() + " ORDER BY n." + r.schema.idCol
	err := r.s.tx(ctx, func(tx *sqlx.Tx) error {
		if err := sel(ctx, tx, &notes, q); err != nil {
			return err
		}
		var details []domain.NoteDetail
		if err := sel(ctx, tx, &details, r.schema.detailQuery()); err != nil {
			return err
		}
		byNote := make(map[string][]domain.NoteDetail, len(notes))
		for _, d := range details {
			byNote[d.NoteID] = append(byNote[d.NoteID], d)
		}
		for i := range notes {
			notes[i].TotalPrice = domain.SumLines(byNote[notes[i].ID])
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list %ss: %w", r.schema.kind, err)
	}
	return notes, nil
}

// Get returns the note header with its total and detail lines.
func (r *Notes) Get(ctx context.Context, id string) (domain.Note, error) {
	var note domain.Note
	err := r.s.tx(ctx, func(tx *sqlx.Tx) error {
		var err error
		note, err = r.get(ctx, tx, id)
		return err
	})
	if err != nil {
		return domain.Note{}, fmt.Errorf("get %s %s: %w", r.schema.kind, id, err)
	}
	return note, nil
}

func (r *Notes) get(ctx context.Context, tx *sqlx.Tx, id string) (domain.Note, error) {
	var note domain.Note
	q := r.schema.headerQuery() + " WHERE n." + r.schema.idCol + " = ?"
	if err := get(ctx, tx, &note, q, id); err != nil {
		return domain.Note{}, err
	}
	note.Details = []domain.NoteDetail{}
	dq := r.schema.detailQuery() + " WHERE d." + r.schema.idCol + " = ? ORDER BY d.medicine_id"
	if err := sel(ctx, tx, &note.Details, dq, id); err != nil {
		return domain.Note{}, err
	}
	note.TotalPrice = domain.SumLines(note.Details)
	return note, nil
}

// Create stores a note under the next sequential id together with any
// detail lines supplied.
func (r *Notes) Create(ctx context.Context, in NoteInput) (domain.Note, error) {
	in.PartnerID = strings.TrimSpace(in.PartnerID)
	var v validation.Errors
	v.Require("employee_id", in.EmployeeID)
	v.Require(r.schema.partnerCol, in.PartnerID)
	seen := map[string]bool{}
	for i, d := range in.Details {
		prefix := fmt.Sprintf("details[%d].", i)
		validateDetail(&v, prefix, d)
		if seen[d.MedicineID] {
			v.Add(prefix+"medicine_id", "is listed twice")
		}
		seen[d.MedicineID] = true
	}
	if err := v.Err(); err != nil {
		return domain.Note{}, err
	}
	if in.Date.IsZero() {
		in.Date = domain.NewTimestamp(time.Now())
	}

	var created domain.Note
	err := r.s.tx(ctx, func(tx *sqlx.Tx) error {
		if err := r.checkRefs(ctx, tx, in); err != nil {
			return err
		}
		id, err := nextID(ctx, tx, r.schema.table, r.schema.idCol, r.schema.prefix)
		if err != nil {
			return err
		}
		insert := fmt.Sprintf(`INSERT INTO %s (%s, employee_id, %s, %s) VALUES (?, ?, ?, ?)`,
			r.schema.table, r.schema.idCol, r.schema.partnerCol, r.schema.dateCol)
		if _, err := exec(ctx, tx, insert, id, in.EmployeeID, in.PartnerID, in.Date); err != nil {
			return err
		}
		for _, d := range in.Details {
			d.NoteID = id
			if err := r.insertDetail(ctx, tx, d); err != nil {
				return err
			}
		}
		created, err = r.get(ctx, tx, id)
		return err
	})
	if err != nil {
		return domain.Note{}, fmt.Errorf("create %s: %w", r.schema.kind, err)
	}
	return created, nil
}

func (r *Notes) checkRefs(ctx context.Context, tx *sqlx.Tx, in NoteInput) error {
	var v validation.Errors
	ok, err := exists(ctx, tx, "employees", "employee_id", in.EmployeeID)
	if err != nil {
		return err
	}
	if !ok {
		v.Add("employee_id", "does not exist")
	}
	if ok, err = exists(ctx, tx, r.schema.partnerTable, r.schema.partnerCol, in.PartnerID); err != nil {
		return err
	}
	if !ok {
		v.Add(r.schema.partnerCol, "does not exist")
	}
	for i, d := range in.Details {
		if ok, err = exists(ctx, tx, "medicines", "medicine_id", d.MedicineID); err != nil {
			return err
		}
		if !ok {
			v.Add(fmt.Sprintf("details[%d].medicine_id", i), "does not exist")
		}
	}
	return v.Err()
}

// Delete removes the note and its detail lines.
func (r *Notes) Delete(ctx context.Context, id string) error {
	err := r.s.tx(ctx, func(tx *sqlx.Tx) error {
		if _, err := exec(ctx, tx, "DELETE FROM "+r.schema.detailTable+" WHERE "+r.schema.idCol+" = ?", id); err != nil {
			return err
		}
		return deleteByID(ctx, tx, r.schema.table, r.schema.idCol, id)
	})
	if err != nil {
		return fmt.Errorf("delete %s %s: %w", r.schema.kind, id, err)
	}
	return nil
}

// ListDetails returns every detail line of this note kind.
func (r *Notes) ListDetails(ctx context.Context) ([]domain.NoteDetail, error) {
	details := []domain.NoteDetail{}
	q := r.schema.detailQuery() + " ORDER BY d." + r.schema.idCol + ", d.medicine_id"
	err := r.s.tx(ctx, func(tx *sqlx.Tx) error {
		return sel(ctx, tx, &details, q)
	})
	if err != nil {
		return nil, fmt.Errorf("list %s details: %w", r.schema.kind, err)
	}
	return details, nil
}

// DetailsOf returns the lines of one note, or ErrNotFound when it has none.
func (r *Notes) DetailsOf(ctx context.Context, noteID string) ([]domain.NoteDetail, error) {
	details := []domain.NoteDetail{}
	q := r.schema.detailQuery() + " WHERE d." + r.schema.idCol + " = ? ORDER BY d.medicine_id"
	err := r.s.tx(ctx, func(tx *sqlx.Tx) error {
		if err := sel(ctx, tx, &details, q, noteID); err != nil {
			return err
		}
		if len(details) == 0 {
			return ErrNotFound
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("details of %s %s: %w", r.schema.kind, noteID, err)
	}
	return details, nil
}

func (r *Notes) getDetail(ctx context.Context, tx *sqlx.Tx, noteID, medicineID string) (domain.NoteDetail, error) {
	var d domain.NoteDetail
	q := r.schema.detailQuery() + " WHERE d." + r.schema.idCol + " = ? AND d.medicine_id = ?"
	err := get(ctx, tx, &d, q, noteID, medicineID)
	return d, err
}

func (r *Notes) insertDetail(ctx context.Context, tx *sqlx.Tx, d DetailInput) error {
	_, err := r.getDetail(ctx, tx, d.NoteID, d.MedicineID)
	switch {
	case err == nil:
		return fmt.Errorf("medicine %s on %s %s: %w", d.MedicineID, r.schema.kind, d.NoteID, ErrConflict)
	case !errors.Is(err, ErrNotFound):
		return err
	}
	insert := fmt.Sprintf(`INSERT INTO %s (%s, medicine_id, quantity, price) VALUES (?, ?, ?, ?)`, r.schema.detailTable, r.schema.idCol)
	_, err = exec(ctx, tx, insert, d.NoteID, d.MedicineID, d.Quantity, d.Price)
	return err
}

// AddDetail adds a medicine line to an existing note.
func (r *Notes) AddDetail(ctx context.Context, d DetailInput) (domain.NoteDetail, error) {
	d.NoteID, d.MedicineID = strings.TrimSpace(d.NoteID), strings.TrimSpace(d.MedicineID)
	var v validation.Errors
	v.Require("note_id", d.NoteID)
	validateDetail(&v, "", d)
	if err := v.Err(); err != nil {
		return domain.NoteDetail{}, err
	}
	var created domain.NoteDetail
	err := r.s.tx(ctx, func(tx *sqlx.Tx) error {
		var v validation.Errors
		ok, err := exists(ctx, tx, r.schema.table, r.schema.idCol, d.NoteID)
		if err != nil {
			return err
		}
		if !ok {
			v.Add("note_id", "does not exist")
		}
		if ok, err = exists(ctx, tx, "medicines", "medicine_id", d.MedicineID); err != nil {
			return err
		}
		if !ok {
			v.Add("medicine_id", "does not exist")
		}
		if err := v.Err(); err != nil {
			return err
		}
		if err := r.insertDetail(ctx, tx, d); err != nil {
			return err
		}
		created, err = r.getDetail(ctx, tx, d.NoteID, d.MedicineID)
		return err
	})
	if err != nil {
		return domain.NoteDetail{}, fmt.Errorf("add %s detail: %w", r.schema.kind, err)
	}
	return created, nil
}

// UpdateDetail replaces the quantity and price of one line.
func (r *Notes) UpdateDetail(ctx context.Context, d DetailInput) (domain.NoteDetail, error) {
	var v validation.Errors
	v.Positive("quantity", d.Quantity)
	v.NonNegative("price", d.Price)
	if err := v.Err(); err != nil {
		return domain.NoteDetail{}, err
	}
	var updated domain.NoteDetail
	err := r.s.tx(ctx, func(tx *sqlx.Tx) error {
		q := fmt.Sprintf(`UPDATE %s SET quantity = ?, price = ? WHERE %s = ? AND medicine_id = ?`, r.schema.detailTable, r.schema.idCol)
		n, err := exec(ctx, tx, q, d.Quantity, d.Price, d.NoteID, d.MedicineID)
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrNotFound
		}
		updated, err = r.getDetail(ctx, tx, d.NoteID, d.MedicineID)
		return err
	})
	if err != nil {
		return domain.NoteDetail{}, fmt.Errorf("update %s detail: %w", r.schema.kind, err)
	}
	return updated, nil
}

func (r *Notes) DeleteDetail(ctx context.Context, noteID, medicineID string) error {
	err := r.s.tx(ctx, func(tx *sqlx.Tx) error {
		q := fmt.Sprintf(`DELETE FROM %s WHERE %s = ? AND medicine_id = ?`, r.schema.detailTable, r.schema.idCol)
		n, err := exec(ctx, tx, q, noteID, medicineID)
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrNotFound
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete %s detail: %w", r.schema.kind, err)
	}
	return nil
}
