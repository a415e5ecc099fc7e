package statistics

import (
	"github.com/shopspring/decimal"

	"pharmacy/m/domain"
)

// Summary is the statistics payload. Field names are what existing clients
// read.
type Summary struct {
	ResultsInput     []domain.StatisticRow `json:"resultsInput"`
	MaxPriceRowInput domain.StatisticRow   `json:"maxPriceRowInput"`
	MinPriceRowInput domain.StatisticRow   `json:"minPriceRowInput"`
	AvgPriceInput    decimal.Decimal       `json:"avgPriceInput"`

	ResultsOutput     []domain.StatisticRow `json:"resultsOutput"`
	MaxPriceRowOutput domain.StatisticRow   `json:"maxPriceRowOutput"`
	MinPriceRowOutput domain.StatisticRow   `json:"minPriceRowOutput"`
	AvgPriceOutput    decimal.Decimal       `json:"avgPriceOutput"`

	TotalPriceInput  decimal.Decimal `json:"totalPriceInput"`
	TotalPriceOutput decimal.Decimal `json:"totalPriceOutput"`
	TotalProfit      decimal.Decimal `json:"totalProfit"`
}

type stream struct {
	max, min domain.StatisticRow
	total    decimal.Decimal
	avg      decimal.Decimal
}

// reduce keeps the first row on price ties. An empty set yields zero rows
// and a zero average.
func reduce(rows []domain.StatisticRow) stream {
	var s stream
	if len(rows) == 0 {
		return s
	}
	s.max, s.min = rows[0], rows[0]
	for _, row := range rows {
		if row.Price.GreaterThan(s.max.Price) {
			s.max = row
		}
		if row.Price.LessThan(s.min.Price) {
			s.min = row
		}
		s.total = s.total.Add(row.Price)
	}
	s.avg = s.total.Div(decimal.NewFromInt(int64(len(rows))))
	return s
}

// Summarize computes max, min, total and average price of each stream and
// the profit figure totalPriceInput - totalPriceOutput.
func Summarize(input, output []domain.StatisticRow) Summary {
	if input == nil {
		input = []domain.StatisticRow{}
	}
	if output == nil {
		output = []domain.StatisticRow{}
	}
	in, out := reduce(input), reduce(output)
	return Summary{
		ResultsInput:      input,
		MaxPriceRowInput:  in.max,
		MinPriceRowInput:  in.min,
		AvgPriceInput:     in.avg,
		ResultsOutput:     output,
		MaxPriceRowOutput: out.max,
		MinPriceRowOutput: out.min,
		AvgPriceOutput:    out.avg,
		TotalPriceInput:   in.total,
		TotalPriceOutput:  out.total,
		TotalProfit:       in.total.Sub(out.total),
	}
}
