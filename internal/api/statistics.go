package api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"pharmacy/m/internal/statistics"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type statisticsResponse struct {
	Success bool `json:"success"`
	statistics.Summary
}

func (h *Handler) summarize(r *http.Request) (statistics.Period, statistics.Summary, error) {
	period, err := statistics.ParsePeriod(chi.URLParam(r, "period"), r.URL.Query())
	if err != nil {
		return statistics.Period{}, statistics.Summary{}, err
	}
	input, output, err := h.store.Statistics.Rows(r.Context(), period.From, period.To)
	if err != nil {
		return statistics.Period{}, statistics.Summary{}, err
	}
	return period, statistics.Summarize(input, output), nil
}

func (h *Handler) statistics(w http.ResponseWriter, r *http.Request) {
	_, summary, err := h.summarize(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, statisticsResponse{Success: true, Summary: summary})
}

func (h *Handler) exportStatistics(w http.ResponseWriter, r *http.Request) {
	period, summary, err := h.summarize(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	book, err := statistics.Workbook(period, summary)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	defer book.Close()

	filename := fmt.Sprintf("statistics-%s-%s.xlsx", period.Name, period.From.Format("20060102"))
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	if err := book.Write(w); err != nil {
		h.log.Error("write workbook", "error", err)
	}
}
