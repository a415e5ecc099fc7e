package api

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"pharmacy/m/domain"
)

// Customer handlers

type customerRequest struct {
	CustomerID   string `json:"customer_id"`
	Name         string `json:"name"`
	CustomerName string `json:"customer_name"`
	Phone        string `json:"phone"`
	Address      string `json:"address"`
}

func (req customerRequest) customer() domain.Customer {
	name := req.Name
	if strings.TrimSpace(name) == "" {
		name = req.CustomerName
	}
	return domain.Customer{Name: name, Phone: req.Phone, Address: req.Address}
}

func (h *Handler) listCustomers(w http.ResponseWriter, r *http.Request) {
	customers, err := h.store.Customers.List(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondData(w, http.StatusOK, customers)
}

func (h *Handler) getCustomer(w http.ResponseWriter, r *http.Request) {
	customer, err := h.store.Customers.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondData(w, http.StatusOK, customer)
}

func (h *Handler) createCustomer(w http.ResponseWriter, r *http.Request) {
	var req customerRequest
	if err := decodeJSON(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	customer, err := h.store.Customers.Create(r.Context(), req.customer())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, envelope{Success: true, Message: "Customer created", Data: customer})
}

func (h *Handler) updateCustomer(w http.ResponseWriter, r *http.Request) {
	var req customerRequest
	if err := decodeJSON(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	customer, err := h.store.Customers.Update(r.Context(), chi.URLParam(r, "id"), req.customer())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondData(w, http.StatusOK, customer)
}

func (h *Handler) deleteCustomer(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Customers.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.fail(w, r, err)
		return
	}
	respondMessage(w, http.StatusOK, "Customer deleted")
}

// Supplier handlers

func (h *Handler) listSuppliers(w http.ResponseWriter, r *http.Request) {
	suppliers, err := h.store.Suppliers.List(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondData(w, http.StatusOK, suppliers)
}

func (h *Handler) getSupplier(w http.ResponseWriter, r *http.Request) {
	supplier, err := h.store.Suppliers.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondData(w, http.StatusOK, supplier)
}

func (h *Handler) createSupplier(w http.ResponseWriter, r *http.Request) {
	var req domain.Supplier
	if err := decodeJSON(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	supplier, err := h.store.Suppliers.Create(r.Context(), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, envelope{Success: true, Message: "Supplier created", Data: supplier})
}

func (h *Handler) updateSupplier(w http.ResponseWriter, r *http.Request) {
	var req domain.Supplier
	if err := decodeJSON(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	supplier, err := h.store.Suppliers.Update(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondData(w, http.StatusOK, supplier)
}

func (h *Handler) deleteSupplier(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Suppliers.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.fail(w, r, err)
		return
	}
	respondMessage(w, http.StatusOK, "Supplier deleted")
}

// Manufacturer handlers

func (h *Handler) listManufacturers(w http.ResponseWriter, r *http.Request) {
	manufacturers, err := h.store.Manufacturers.List(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondData(w, http.StatusOK, manufacturers)
}

func (h *Handler) getManufacturer(w http.ResponseWriter, r *http.Request) {
	manufacturer, err := h.store.Manufacturers.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondData(w, http.StatusOK, manufacturer)
}

func (h *Handler) createManufacturer(w http.ResponseWriter, r *http.Request) {
	var req domain.Manufacturer
	if err := decodeJSON(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	manufacturer, err := h.store.Manufacturers.Create(r.Context(), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, envelope{Success: true, Message: "Manufacturer created", Data: manufacturer})
}

func (h *Handler) updateManufacturer(w http.ResponseWriter, r *http.Request) {
	var req domain.Manufacturer
	if err := decodeJSON(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	manufacturer, err := h.store.Manufacturers.Update(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondData(w, http.StatusOK, manufacturer)
}

func (h *Handler) deleteManufacturer(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Manufacturers.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.fail(w, r, err)
		return
	}
	respondMessage(w, http.StatusOK, "Manufacturer deleted")
}

// Category handlers

func (h *Handler) listCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.store.Categories.List(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondData(w, http.StatusOK, categories)
}

func (h *Handler) getCategory(w http.ResponseWriter, r *http.Request) {
	category, err := h.store.Categories.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondData(w, http.StatusOK, category)
}

func (h *Handler) createCategory(w http.ResponseWriter, r *http.Request) {
	var req domain.Category
	if err := decodeJSON(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	category, err := h.store.Categories.Create(r.Context(), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, envelope{Success: true, Message: "Category created", Data: category})
}

func (h *Handler) updateCategory(w http.ResponseWriter, r *http.Request) {
	var req domain.Category
	if err := decodeJSON(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	category, err := h.store.Categories.Update(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondData(w, http.StatusOK, category)
}

func (h *Handler) deleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Categories.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.fail(w, r, err)
		return
	}
	respondMessage(w, http.StatusOK, "Category deleted")
}

// Medicine handlers

func (h *Handler) listMedicines(w http.ResponseWriter, r *http.Request) {
	medicines, err := h.store.Medicines.List(r.Context(), r.URL.Query().Get("search"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondData(w, http.StatusOK, medicines)
}

func (h *Handler) getMedicine(w http.ResponseWriter, r *http.Request) {
	medicine, err := h.store.Medicines.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondData(w, http.StatusOK, medicine)
}

func (h *Handler) createMedicine(w http.ResponseWriter, r *http.Request) {
	var req domain.Medicine
	if err := decodeJSON(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	medicine, err := h.store.Medicines.Create(r.Context(), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, envelope{Success: true, Message: "Medicine created", Data: medicine})
}

func (h *Handler) updateMedicine(w http.ResponseWriter, r *http.Request) {
	var req domain.Medicine
	if err := decodeJSON(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	medicine, err := h.store.Medicines.Update(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondData(w, http.StatusOK, medicine)
}

func (h *Handler) deleteMedicine(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Medicines.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.fail(w, r, err)
		return
	}
	respondMessage(w, http.StatusOK, "Medicine deleted")
}
