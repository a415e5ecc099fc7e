// Package statistics turns note lines of a period into summary figures.
package statistics

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"pharmacy/m/domain"
	"pharmacy/m/internal/validation"
)

// Period is a half-open UTC range [From, To).
type Period struct {
	Name string
	From time.Time
	To   time.Time
}

// Days covers start through end inclusive, by calendar day.
func Days(start, end time.Time) (Period, error) {
	from := truncateDay(start)
	to := truncateDay(end)
	if from.After(to) {
		return Period{}, validation.New("startDate", "must not be after endDate")
	}
	return Period{Name: "day", From: from, To: to.AddDate(0, 0, 1)}, nil
}

func Quarter(quarter, year int) (Period, error) {
	var v validation.Errors
	if quarter < 1 || quarter > 4 {
		v.Add("quarter", "must be between 1 and 4")
	}
	checkYear(&v, year)
	if err := v.Err(); err != nil {
		return Period{}, err
	}
	from := time.Date(year, time.Month((quarter-1)*3+1), 1, 0, 0, 0, 0, time.UTC)
	return Period{Name: "quarter", From: from, To: from.AddDate(0, 3, 0)}, nil
}

func Month(month, year int) (Period, error) {
	var v validation.Errors
	if month < 1 || month > 12 {
		v.Add("month", "must be between 1 and 12")
	}
	checkYear(&v, year)
	if err := v.Err(); err != nil {
		return Period{}, err
	}
	from := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	return Period{Name: "month", From: from, To: from.AddDate(0, 1, 0)}, nil
}

func Year(year int) (Period, error) {
	var v validation.Errors
	checkYear(&v, year)
	if err := v.Err(); err != nil {
		return Period{}, err
	}
	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	return Period{Name: "year", From: from, To: from.AddDate(1, 0, 0)}, nil
}

func checkYear(v *validation.Errors, year int) {
	if year < 1 || year > 9999 {
		v.Add("year", "must be between 1 and 9999")
	}
}

func truncateDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Query is the subset of url.Values the parser reads.
type Query interface {
	Get(key string) string
}

// ParsePeriod reads the parameters of the named period kind: startDate and
// endDate for day, quarter and year, month and year, or year alone.
func ParsePeriod(kind string, q Query) (Period, error) {
	var v validation.Errors
	switch kind {
	case "day":
		start := requireDate(&v, q, "startDate")
		end := requireDate(&v, q, "endDate")
		if err := v.Err(); err != nil {
			return Period{}, err
		}
		return Days(start, end)
	case "quarter":
		quarter := requireInt(&v, q, "quarter")
		year := requireInt(&v, q, "year")
		if err := v.Err(); err != nil {
			return Period{}, err
		}
		return Quarter(quarter, year)
	case "month":
		month := requireInt(&v, q, "month")
		year := requireInt(&v, q, "year")
		if err := v.Err(); err != nil {
			return Period{}, err
		}
		return Month(month, year)
	case "year":
		year := requireInt(&v, q, "year")
		if err := v.Err(); err != nil {
			return Period{}, err
		}
		return Year(year)
	}
	return Period{}, validation.New("period", fmt.Sprintf("unknown period %q", kind))
}

func requireDate(v *validation.Errors, q Query, key string) time.Time {
	raw := strings.TrimSpace(q.Get(key))
	if raw == "" {
		v.Add(key, "is required")
		return time.Time{}
	}
	ts, err := domain.ParseTimestamp(raw)
	if err != nil {
		v.Add(key, "must be a valid date (YYYY-MM-DD)")
	}
	return ts.Time
}

func requireInt(v *validation.Errors, q Query, key string) int {
	raw := strings.TrimSpace(q.Get(key))
	if raw == "" {
		v.Add(key, "is required")
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		v.Add(key, "must be a number")
	}
	return n
}
