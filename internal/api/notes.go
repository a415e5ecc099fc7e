package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"pharmacy/m/domain"
	"pharmacy/m/internal/store"
)

// noteKind holds the JSON names and policy resources of one kind of note.
type noteKind struct {
	label          string
	noteResource   string
	detailResource string
	viewNote       func(domain.Note) any
	viewDetail     func(domain.NoteDetail) any
}

type receivedNoteView struct {
	ReceivedNoteID string               `json:"received_note_id"`
	EmployeeID     string               `json:"employee_id"`
	SupplierID     string               `json:"supplier_id"`
	ReceivedDate   domain.Timestamp     `json:"received_date"`
	TotalPrice     decimal.Decimal      `json:"total_price"`
	Details        []receivedDetailView `json:"details,omitempty"`
}

type receivedDetailView struct {
	ReceivedNoteID string          `json:"received_note_id"`
	MedicineID     string          `json:"medicine_id"`
	MedicineName   string          `json:"medicine_name,omitempty"`
	Quantity       int64           `json:"quantity"`
	Price          decimal.Decimal `json:"price"`
}

type deliveryNoteView struct {
	DeliveryNoteID string               `json:"delivery_note_id"`
	EmployeeID     string               `json:"employee_id"`
	CustomerID     string               `json:"customer_id"`
	DeliveryDate   domain.Timestamp     `json:"delivery_date"`
	TotalPrice     decimal.Decimal      `json:"total_price"`
	Details        []deliveryDetailView `json:"details,omitempty"`
}

type deliveryDetailView struct {
	DeliveryNoteID string          `json:"delivery_note_id"`
	MedicineID     string          `json:"medicine_id"`
	MedicineName   string          `json:"medicine_name,omitempty"`
	Quantity       int64           `json:"quantity"`
	Price          decimal.Decimal `json:"price"`
}

func viewReceivedDetail(d domain.NoteDetail) receivedDetailView {
	return receivedDetailView{d.NoteID, d.MedicineID, d.MedicineName, d.Quantity, d.Price}
}

func viewDeliveryDetail(d domain.NoteDetail) deliveryDetailView {
	return deliveryDetailView{d.NoteID, d.MedicineID, d.MedicineName, d.Quantity, d.Price}
}

var (
	receivedKind = noteKind{
		label:          "Received note",
		noteResource:   "received-notes",
		detailResource: "received-note-details",
		viewNote: func(n domain.Note) any {
			v := receivedNoteView{n.ID, n.EmployeeID, n.PartnerID, n.Date, n.TotalPrice, nil}
			for _, d := range n.Details {
				v.Details = append(v.Details, viewReceivedDetail(d))
			}
			return v
		},
		viewDetail: func(d domain.NoteDetail) any { return viewReceivedDetail(d) },
	}
	deliveryKind = noteKind{
		label:          "Delivery note",
		noteResource:   "delivery-notes",
		detailResource: "delivery-note-details",
		viewNote: func(n domain.Note) any {
			v := deliveryNoteView{n.ID, n.EmployeeID, n.PartnerID, n.Date, n.TotalPrice, nil}
			for _, d := range n.Details {
				v.Details = append(v.Details, viewDeliveryDetail(d))
			}
			return v
		},
		viewDetail: func(d domain.NoteDetail) any { return viewDeliveryDetail(d) },
	}
)

// noteRequest accepts either kind's field names; the partner and date keys
// that do not belong to the kind are ignored.
type noteRequest struct {
	EmployeeID   string           `json:"employee_id"`
	SupplierID   string           `json:"supplier_id"`
	CustomerID   string           `json:"customer_id"`
	ReceivedDate domain.Timestamp `json:"received_date"`
	DeliveryDate domain.Timestamp `json:"delivery_date"`
	Details      []detailRequest  `json:"details"`
}

type detailRequest struct {
	ReceivedNoteID string          `json:"received_note_id"`
	DeliveryNoteID string          `json:"delivery_note_id"`
	MedicineID     string          `json:"medicine_id"`
	Quantity       int64           `json:"quantity"`
	Price          decimal.Decimal `json:"price"`
}

type notesAPI struct {
	h    *Handler
	repo *store.Notes
	kind noteKind
}

func (a notesAPI) received() bool { return a.kind.noteResource == receivedKind.noteResource }

func (a notesAPI) noteRoutes(r chi.Router) {
	read, write := a.h.allow(a.kind.noteResource+":read"), a.h.allow(a.kind.noteResource+":write")
	r.With(read).Get("/", a.list)
	r.With(read).Get("/{id}", a.get)
	r.With(write).Post("/", a.create)
	r.With(write).Delete("/{id}", a.delete)
}

func (a notesAPI) detailRoutes(r chi.Router) {
	read, write := a.h.allow(a.kind.detailResource+":read"), a.h.allow(a.kind.detailResource+":write")
	r.With(read).Get("/", a.listDetails)
	r.With(read).Get("/{noteID}", a.detailsOf)
	r.With(write).Post("/", a.addDetail)
	r.With(write).Put("/{noteID}/{medicineID}", a.updateDetail)
	r.With(write).Delete("/{noteID}/{medicineID}", a.deleteDetail)
}

func (a notesAPI) list(w http.ResponseWriter, r *http.Request) {
	notes, err := a.repo.List(r.Context())
	if err != nil {
		a.h.fail(w, r, err)
		return
	}
	views := make([]any, len(notes))
	for i, n := range notes {
		views[i] = a.kind.viewNote(n)
	}
	respondData(w, http.StatusOK, views)
}

func (a notesAPI) get(w http.ResponseWriter, r *http.Request) {
	note, err := a.repo.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		a.h.fail(w, r, err)
		return
	}
	respondData(w, http.StatusOK, a.kind.viewNote(note))
}

func (a notesAPI) create(w http.ResponseWriter, r *http.Request) {
	var req noteRequest
	if err := decodeJSON(r, &req); err != nil {
		a.h.fail(w, r, err)
		return
	}
	in := store.NoteInput{EmployeeID: req.EmployeeID}
	if in.EmployeeID == "" {
		in.EmployeeID = identityOf(r).ID
	}
	if a.received() {
		in.PartnerID, in.Date = req.SupplierID, req.ReceivedDate
	} else {
		in.PartnerID, in.Date = req.CustomerID, req.DeliveryDate
	}
	for _, d := range req.Details {
		in.Details = append(in.Details, store.DetailInput{MedicineID: d.MedicineID, Quantity: d.Quantity, Price: d.Price})
	}

	note, err := a.repo.Create(r.Context(), in)
	if err != nil {
		a.h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, envelope{Success: true, Message: a.kind.label + " created", Data: a.kind.viewNote(note)})
}

func (a notesAPI) delete(w http.ResponseWriter, r *http.Request) {
	if err := a.repo.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		a.h.fail(w, r, err)
		return
	}
	respondMessage(w, http.StatusOK, a.kind.label+" deleted")
}

func (a notesAPI) viewDetails(details []domain.NoteDetail) []any {
	views := make([]any, len(details))
	for i, d := range details {
		views[i] = a.kind.viewDetail(d)
	}
	return views
}

func (a notesAPI) listDetails(w http.ResponseWriter, r *http.Request) {
	details, err := a.repo.ListDetails(r.Context())
	if err != nil {
		a.h.fail(w, r, err)
		return
	}
	respondData(w, http.StatusOK, a.viewDetails(details))
}

func (a notesAPI) detailsOf(w http.ResponseWriter, r *http.Request) {
	details, err := a.repo.DetailsOf(r.Context(), chi.URLParam(r, "noteID"))
	if err != nil {
		a.h.fail(w, r, err)
		return
	}
	respondData(w, http.StatusOK, a.viewDetails(details))
}

func (a notesAPI) addDetail(w http.ResponseWriter, r *http.Request) {
	var req detailRequest
	if err := decodeJSON(r, &req); err != nil {
		a.h.fail(w, r, err)
		return
	}
	noteID := req.DeliveryNoteID
	if a.received() {
		noteID = req.ReceivedNoteID
	}
	detail, err := a.repo.AddDetail(r.Context(), store.DetailInput{
		NoteID: noteID, MedicineID: req.MedicineID, Quantity: req.Quantity, Price: req.Price,
	})
	if err != nil {
		a.h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, envelope{Success: true, Message: "Detail created", Data: a.kind.viewDetail(detail)})
}

func (a notesAPI) updateDetail(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Quantity int64           `json:"quantity"`
		Price    decimal.Decimal `json:"price"`
	}
	if err := decodeJSON(r, &req); err != nil {
		a.h.fail(w, r, err)
		return
	}
	detail, err := a.repo.UpdateDetail(r.Context(), store.DetailInput{
		NoteID:     chi.URLParam(r, "noteID"),
		MedicineID: chi.URLParam(r, "medicineID"),
		Quantity:   req.Quantity,
		Price:      req.Price,
	})
	if err != nil {
		a.h.fail(w, r, err)
		return
	}
	respondData(w, http.StatusOK, a.kind.viewDetail(detail))
}

func (a notesAPI) deleteDetail(w http.ResponseWriter, r *http.Request) {
	if err := a.repo.DeleteDetail(r.Context(), chi.URLParam(r, "noteID"), chi.URLParam(r, "medicineID")); err != nil {
		a.h.fail(w, r, err)
		return
	}
	respondMessage(w, http.StatusOK, "Detail deleted")
}
