package domain

import "github.com/shopspring/decimal"

// Note is the header of a goods movement. PartnerID is the supplier of a
// received note or the customer of a delivery note.
type Note struct {
	ID         string          `db:"note_id" json:"note_id"`
	EmployeeID string          `db:"employee_id" json:"employee_id"`
	PartnerID  string          `db:"partner_id" json:"partner_id"`
	Date       Timestamp       `db:"note_date" json:"date"`
	TotalPrice decimal.Decimal `db:"total_price" json:"total_price"`
	Details    []NoteDetail    `db:"-" json:"details,omitempty"`
}

// NoteDetail is one medicine line of a note. The line total is Quantity*Price.
type NoteDetail struct {
	NoteID       string          `db:"note_id" json:"note_id"`
	MedicineID   string          `db:"medicine_id" json:"medicine_id"`
	MedicineName string          `db:"medicine_name" json:"medicine_name,omitempty"`
	Quantity     int64           `db:"quantity" json:"quantity"`
	Price        decimal.Decimal `db:"price" json:"price"`
}

func (d NoteDetail) LineTotal() decimal.Decimal {
	return d.Price.Mul(decimal.NewFromInt(d.Quantity))
}

// SumLines totals the lines of a note in exact decimal arithmetic.
func SumLines(details []NoteDetail) decimal.Decimal {
	total := decimal.Zero
	for _, d := range details {
		total = total.Add(d.LineTotal())
	}
	return total
}

// StatisticRow is a note header flattened with one of its detail lines.
type StatisticRow struct {
	NoteID     string          `db:"note_id" json:"note_id"`
	EmployeeID string          `db:"employee_id" json:"employee_id"`
	PartnerID  string          `db:"partner_id" json:"partner_id"`
	Date       Timestamp       `db:"note_date" json:"date"`
	MedicineID string          `db:"medicine_id" json:"medicine_id"`
	Quantity   int64           `db:"quantity" json:"quantity"`
	Price      decimal.Decimal `db:"price" json:"price"`
}
