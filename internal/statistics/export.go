package statistics

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"pharmacy/m/domain"
)

var rowHeaders = []string{"Note", "Employee", "Partner", "Date", "Medicine", "Quantity", "Price"}

// Workbook renders a summary as an xlsx file with Summary, Input and Output
// sheets. The caller closes the file.
func Workbook(p Period, s Summary) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", "Summary"); err != nil {
		f.Close()
		return nil, err
	}
	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#D3D3D3"}, Pattern: 1},
	})
	if err != nil {
		f.Close()
		return nil, err
	}

	summary := [][]any{
		{"Period", p.Name},
		{"From", p.From.Format("2006-01-02")},
		{"To (exclusive)", p.To.Format("2006-01-02")},
		{"Total price input", s.TotalPriceInput.InexactFloat64()},
		{"Average price input", s.AvgPriceInput.InexactFloat64()},
		{"Max price input", s.MaxPriceRowInput.Price.InexactFloat64()},
		{"Min price input", s.MinPriceRowInput.Price.InexactFloat64()},
		{"Total price output", s.TotalPriceOutput.InexactFloat64()},
		{"Average price output", s.AvgPriceOutput.InexactFloat64()},
		{"Max price output", s.MaxPriceRowOutput.Price.InexactFloat64()},
		{"Min price output", s.MinPriceRowOutput.Price.InexactFloat64()},
		{"Total profit", s.TotalProfit.InexactFloat64()},
	}
	if err := writeRows(f, "Summary", []string{"Metric", "Value"}, summary, header); err != nil {
		f.Close()
		return nil, err
	}

	for _, sheet := range []struct {
		name string
		rows []domain.StatisticRow
	}{
		{"Input", s.ResultsInput},
		{"Output", s.ResultsOutput},
	} {
		if _, err := f.NewSheet(sheet.name); err != nil {
			f.Close()
			return nil, err
		}
		data := make([][]any, len(sheet.rows))
		for i, row := range sheet.rows {
			data[i] = []any{row.NoteID, row.EmployeeID, row.PartnerID, row.Date.Format("2006-01-02 15:04:05"),
				row.MedicineID, row.Quantity, row.Price.InexactFloat64()}
		}
		if err := writeRows(f, sheet.name, rowHeaders, data, header); err != nil {
			f.Close()
			return nil, err
		}
	}
	f.SetActiveSheet(0)
	return f, nil
}

func writeRows(f *excelize.File, sheet string, headers []string, data [][]any, style int) error {
	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, cell, cell, style); err != nil {
			return err
		}
	}
	for r, row := range data {
		for c, value := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return fmt.Errorf("%s!%s: %w", sheet, cell, err)
			}
		}
	}
	last, err := excelize.ColumnNumberToName(len(headers))
	if err != nil {
		return err
	}
	return f.SetColWidth(sheet, "A", last, 15)
}
