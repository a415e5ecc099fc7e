package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"pharmacy/m/internal/store"
	"pharmacy/m/internal/validation"
)

type envelope struct {
	Success bool                    `json:"success"`
	Message string                  `json:"message,omitempty"`
	Data    any                     `json:"data,omitempty"`
	Errors  []validation.FieldError `json:"errors,omitempty"`
	Error   string                  `json:"error,omitempty"`
}

func decodeJSON(r *http.Request, dest interface{}) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dest); err != nil {
		return validation.New("body", fmt.Sprintf("invalid JSON: %v", err))
	}
	return nil
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	encoder := json.NewEncoder(w)
	encoder.SetEscapeHTML(false)
	_ = encoder.Encode(payload)
}

func respondData(w http.ResponseWriter, status int, data any) {
	respondJSON(w, status, envelope{Success: true, Data: data})
}

func respondMessage(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, envelope{Success: true, Message: message})
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, envelope{Success: false, Message: message})
}

// fail maps a repository error onto the status taxonomy of the API.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	var verr *validation.Errors
	switch {
	case errors.As(err, &verr):
		respondJSON(w, http.StatusBadRequest, envelope{Message: "Validation failed", Errors: verr.Fields})
	case errors.Is(err, store.ErrNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, store.ErrConflict):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, store.ErrForbidden):
		respondError(w, http.StatusForbidden, err.Error())
	default:
		h.log.Error("request failed",
			slog.String("request_id", middleware.GetReqID(r.Context())),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Any("error", err),
		)
		body := envelope{Message: "Internal server error"}
		if h.opts.ExposeErrorDetail {
			body.Error = err.Error()
		}
		respondJSON(w, http.StatusInternalServerError, body)
	}
}
