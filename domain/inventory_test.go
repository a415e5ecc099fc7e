package domain

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestSumLines(t *testing.T) {
	lines := []NoteDetail{
		{MedicineID: "MD1", Quantity: 3, Price: decimal.RequireFromString("0.1")},
		{MedicineID: "MD2", Quantity: 7, Price: decimal.RequireFromString("1.15")},
	}
	if got := SumLines(lines); got.String() != "8.35" {
		t.Errorf("SumLines = %s, want 8.35", got)
	}
	if got := SumLines(nil); !got.IsZero() {
		t.Errorf("SumLines(nil) = %s", got)
	}
}
