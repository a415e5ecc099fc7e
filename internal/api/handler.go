package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"pharmacy/m/internal/auth"
	"pharmacy/m/internal/store"
)

// Options carries the HTTP level settings of the API.
type Options struct {
	CORSOrigins          []string
	CookieSecure         bool
	ExposeErrorDetail    bool
	DefaultStaffPassword string
}

// Handler bundles dependencies for HTTP handlers.
type Handler struct {
	store  *store.Store
	tokens *auth.Tokens
	policy auth.Policy
	log    *slog.Logger
	opts   Options
}

// New constructs a Handler using the default route policy.
func New(st *store.Store, tokens *auth.Tokens, logger *slog.Logger, opts Options) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{store: st, tokens: tokens, policy: auth.DefaultPolicy(), log: logger, opts: opts}
}

// Router wires up the HTTP API.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   h.opts.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}))
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(instrument)

	r.Get("/", h.welcome)
	r.Get("/health", h.health)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Route("/user", h.userRoutes)

		r.Group(func(pr chi.Router) {
			pr.Use(h.authenticate)

			pr.Route("/customers", func(r chi.Router) {
				r.With(h.allow("customers:read")).Get("/", h.listCustomers)
				r.With(h.allow("customers:read")).Get("/{id}", h.getCustomer)
				r.With(h.allow("customers:write")).Post("/", h.createCustomer)
				r.With(h.allow("customers:write")).Put("/{id}", h.updateCustomer)
				r.With(h.allow("customers:write")).Delete("/{id}", h.deleteCustomer)
			})
			pr.Route("/suppliers", func(r chi.Router) {
				r.With(h.allow("suppliers:read")).Get("/", h.listSuppliers)
				r.With(h.allow("suppliers:read")).Get("/{id}", h.getSupplier)
				r.With(h.allow("suppliers:write")).Post("/", h.createSupplier)
				r.With(h.allow("suppliers:write")).Put("/{id}", h.updateSupplier)
				r.With(h.allow("suppliers:write")).Delete("/{id}", h.deleteSupplier)
			})
			pr.Route("/manufacturers", func(r chi.Router) {
				r.With(h.allow("manufacturers:read")).Get("/", h.listManufacturers)
				r.With(h.allow("manufacturers:read")).Get("/{id}", h.getManufacturer)
				r.With(h.allow("manufacturers:write")).Post("/", h.createManufacturer)
				r.With(h.allow("manufacturers:write")).Put("/{id}", h.updateManufacturer)
				r.With(h.allow("manufacturers:write")).Delete("/{id}", h.deleteManufacturer)
			})
			pr.Route("/medicine-categories", func(r chi.Router) {
				r.With(h.allow("categories:read")).Get("/", h.listCategories)
				r.With(h.allow("categories:read")).Get("/{id}", h.getCategory)
				r.With(h.allow("categories:write")).Post("/", h.createCategory)
				r.With(h.allow("categories:write")).Put("/{id}", h.updateCategory)
				r.With(h.allow("categories:write")).Delete("/{id}", h.deleteCategory)
			})
			pr.Route("/medicines", func(r chi.Router) {
				r.With(h.allow("medicines:read")).Get("/", h.listMedicines)
				r.With(h.allow("medicines:read")).Get("/{id}", h.getMedicine)
				r.With(h.allow("medicines:write")).Post("/", h.createMedicine)
				r.With(h.allow("medicines:write")).Put("/{id}", h.updateMedicine)
				r.With(h.allow("medicines:write")).Delete("/{id}", h.deleteMedicine)
			})

			received := notesAPI{h: h, repo: h.store.ReceivedNotes, kind: receivedKind}
			delivery := notesAPI{h: h, repo: h.store.DeliveryNotes, kind: deliveryKind}
			pr.Route("/receivednotes", received.noteRoutes)
			pr.Route("/delivery-notes", delivery.noteRoutes)
			pr.Route("/received-note-details", received.detailRoutes)
			pr.Route("/delivery-note-details", delivery.detailRoutes)

			pr.Route("/statistic", func(r chi.Router) {
				r.Use(h.allow("statistics:read"))
				r.Get("/{period:day|quarter|month|year}", h.statistics)
				r.With(h.allow("statistics:export")).Get("/{period:day|quarter|month|year}/export", h.exportStatistics)
			})
		})
	})

	return r
}

func (h *Handler) welcome(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "Success", "message": "Welcome to our application."})
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DB().PingContext(r.Context()); err != nil {
		respondJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
