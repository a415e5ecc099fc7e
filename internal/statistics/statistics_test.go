package statistics

import (
	"errors"
	"net/url"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"pharmacy/m/domain"
	"pharmacy/m/internal/validation"
)

func row(note string, price int64) domain.StatisticRow {
	return domain.StatisticRow{NoteID: note, MedicineID: "MD1", Quantity: 1, Price: decimal.NewFromInt(price)}
}

func TestSummarize(t *testing.T) {
	input := []domain.StatisticRow{row("RN01", 100), row("RN02", 200)}
	output := []domain.StatisticRow{row("DN01", 50)}
	s := Summarize(input, output)

	checks := []struct {
		name string
		got  decimal.Decimal
		want int64
	}{
		{"totalPriceInput", s.TotalPriceInput, 300},
		{"totalPriceOutput", s.TotalPriceOutput, 50},
		{"totalProfit", s.TotalProfit, 250},
		{"avgPriceInput", s.AvgPriceInput, 150},
		{"avgPriceOutput", s.AvgPriceOutput, 50},
	}
	for _, c := range checks {
		if !c.got.Equal(decimal.NewFromInt(c.want)) {
			t.Errorf("%s = %s, want %d", c.name, c.got, c.want)
		}
	}
	if s.MaxPriceRowInput.NoteID != "RN02" || s.MinPriceRowInput.NoteID != "RN01" {
		t.Errorf("max/min input = %s/%s", s.MaxPriceRowInput.NoteID, s.MinPriceRowInput.NoteID)
	}
	if s.MaxPriceRowOutput.NoteID != "DN01" || s.MinPriceRowOutput.NoteID != "DN01" {
		t.Errorf("max/min output = %s/%s", s.MaxPriceRowOutput.NoteID, s.MinPriceRowOutput.NoteID)
	}
}

func TestSummarizeTiesKeepFirst(t *testing.T) {
	s := Summarize([]domain.StatisticRow{row("A", 10), row("B", 10), row("C", 10)}, nil)
	if s.MaxPriceRowInput.NoteID != "A" || s.MinPriceRowInput.NoteID != "A" {
		t.Errorf("tie break picked %s/%s", s.MaxPriceRowInput.NoteID, s.MinPriceRowInput.NoteID)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil, nil)
	for name, v := range map[string]decimal.Decimal{
		"avgPriceInput": s.AvgPriceInput, "avgPriceOutput": s.AvgPriceOutput,
		"totalPriceInput": s.TotalPriceInput, "totalProfit": s.TotalProfit,
		"maxPriceRowInput.price": s.MaxPriceRowInput.Price,
	} {
		if !v.IsZero() {
			t.Errorf("%s = %s, want 0", name, v)
		}
	}
	if s.ResultsInput == nil || s.ResultsOutput == nil {
		t.Error("results must be empty slices, not nil")
	}
}

func TestPeriods(t *testing.T) {
	date := func(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }
	tests := []struct {
		kind     string
		query    url.Values
		from, to time.Time
	}{
		{"day", url.Values{"startDate": {"2024-03-01"}, "endDate": {"2024-03-05"}}, date(2024, 3, 1), date(2024, 3, 6)},
		{"day", url.Values{"startDate": {"2024-03-01"}, "endDate": {"2024-03-01"}}, date(2024, 3, 1), date(2024, 3, 2)},
		{"quarter", url.Values{"quarter": {"2"}, "year": {"2024"}}, date(2024, 4, 1), date(2024, 7, 1)},
		{"quarter", url.Values{"quarter": {"4"}, "year": {"2023"}}, date(2023, 10, 1), date(2024, 1, 1)},
		{"month", url.Values{"month": {"2"}, "year": {"2024"}}, date(2024, 2, 1), date(2024, 3, 1)},
		{"year", url.Values{"year": {"2024"}}, date(2024, 1, 1), date(2025, 1, 1)},
	}
	for _, tt := range tests {
		t.Run(tt.kind+"?"+tt.query.Encode(), func(t *testing.T) {
			p, err := ParsePeriod(tt.kind, tt.query)
			if err != nil {
				t.Fatalf("ParsePeriod: %v", err)
			}
			if !p.From.Equal(tt.from) || !p.To.Equal(tt.to) {
				t.Errorf("got [%v, %v), want [%v, %v)", p.From, p.To, tt.from, tt.to)
			}
		})
	}
}

func TestPeriodValidation(t *testing.T) {
	tests := []struct {
		kind  string
		query url.Values
	}{
		{"day", url.Values{}},
		{"day", url.Values{"startDate": {"2024-03-05"}, "endDate": {"2024-03-01"}}},
		{"day", url.Values{"startDate": {"March"}, "endDate": {"2024-03-01"}}},
		{"quarter", url.Values{"year": {"2024"}}},
		{"quarter", url.Values{"quarter": {"5"}, "year": {"2024"}}},
		{"month", url.Values{"month": {"13"}, "year": {"2024"}}},
		{"month", url.Values{"month": {"1"}}},
		{"year", url.Values{"year": {"soon"}}},
		{"week", url.Values{}},
	}
	for _, tt := range tests {
		t.Run(tt.kind+"?"+tt.query.Encode(), func(t *testing.T) {
			_, err := ParsePeriod(tt.kind, tt.query)
			var v *validation.Errors
			if !errors.As(err, &v) {
				t.Fatalf("err = %v, want validation error", err)
			}
		})
	}
}

func TestWorkbook(t *testing.T) {
	p, _ := Year(2024)
	s := Summarize([]domain.StatisticRow{row("RN01", 100), row("RN02", 200)}, []domain.StatisticRow{row("DN01", 50)})
	f, err := Workbook(p, s)
	if err != nil {
		t.Fatalf("Workbook: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) != 3 || sheets[0] != "Summary" {
		t.Fatalf("sheets = %v", sheets)
	}
	profit, err := f.GetCellValue("Summary", "B13")
	if err != nil || profit != "250" {
		t.Errorf("profit cell = %q, %v", profit, err)
	}
	note, _ := f.GetCellValue("Input", "A3")
	if note != "RN02" {
		t.Errorf("Input!A3 = %q", note)
	}
	rows, _ := f.GetRows("Output")
	if len(rows) != 2 {
		t.Errorf("output rows = %d", len(rows))
	}
}
