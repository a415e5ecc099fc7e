package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"pharmacy/m/domain"
	"pharmacy/m/internal/auth"
	"pharmacy/m/internal/store"
)

const refreshCookie = "refreshToken"

type registerRequest struct {
	Username    string `json:"username"`
	Password    string `json:"password"`
	Fullname    string `json:"fullname"`
	Address     string `json:"address"`
	PhoneNumber string `json:"phoneNumber"`
	Role        string `json:"role"`
}

func (req registerRequest) input() store.RegisterInput {
	return store.RegisterInput{
		Username: req.Username,
		Password: req.Password,
		Fullname: req.Fullname,
		Address:  req.Address,
		Phone:    req.PhoneNumber,
		Role:     req.Role,
	}
}

type profileRequest struct {
	Fullname    *string `json:"fullname"`
	Address     *string `json:"address"`
	PhoneNumber *string `json:"phoneNumber"`
}

func (req profileRequest) input() store.ProfileInput {
	return store.ProfileInput{Fullname: req.Fullname, Address: req.Address, Phone: req.PhoneNumber}
}

func (h *Handler) userRoutes(r chi.Router) {
	r.Post("/register", h.register)
	r.Post("/login", h.login)
	r.Post("/logout", h.logout)
	r.Post("/refresh", h.refresh)

	r.Group(func(r chi.Router) {
		r.Use(h.authenticate)

		r.With(h.allow("users:manage")).Post("/createUser", h.createUser)
		r.With(h.allow("users:manage")).Put("/updateUserFromAdmin/{id}", h.updateUserFromAdmin)
		r.With(h.allow("users:manage")).Delete("/deleteUser/{id}", h.deleteUser)
		r.With(h.allow("users:manage")).Put("/lockUser/{id}", h.lockUser)

		r.With(h.allow("users:read")).Get("/getDetailUser/{id}", h.getDetailUser)
		r.With(h.allow("users:read")).Get("/filterUser", h.filterUser)
		r.With(h.allow("users:read")).Get("/getAllUsers", h.getAllUsers)

		r.With(h.allow("profile:write")).Put("/changePassword", h.changePassword)
		r.With(h.allow("profile:write")).Put("/updateInfoMySelf", h.updateInfoMySelf)
	})
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	user, err := h.store.Users.Register(r.Context(), req.input())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]any{"success": true, "message": "Registered successfully", "user": user})
}

func (h *Handler) setRefreshCookie(w http.ResponseWriter, value string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookie,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.opts.CookieSecure,
		SameSite: http.SameSiteStrictMode,
	})
}

func (h *Handler) issueAccess(user domain.Employee) (string, error) {
	return h.tokens.IssueAccess(auth.Identity{ID: user.ID, Username: user.Username, Role: user.Role})
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	user, err := h.store.Users.Authenticate(r.Context(), req.Username, req.Password)
	if errors.Is(err, store.ErrWrongPassword) {
		respondError(w, http.StatusUnauthorized, "Wrong password")
		return
	}
	if err != nil {
		h.fail(w, r, err)
		return
	}

	access, err := h.issueAccess(user)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	refresh, err := h.tokens.IssueRefresh(user.ID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.setRefreshCookie(w, refresh, int(h.tokens.RefreshTTL().Seconds()))
	respondJSON(w, http.StatusOK, map[string]any{"success": true, "accessToken": access, "user": user})
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	h.setRefreshCookie(w, "", -1)
	respondMessage(w, http.StatusOK, "Logged out")
}

func (h *Handler) refresh(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(refreshCookie)
	if err != nil || cookie.Value == "" {
		respondError(w, http.StatusUnauthorized, "Missing refresh token")
		return
	}
	id, err := h.tokens.ParseRefresh(cookie.Value)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "Invalid refresh token")
		return
	}
	user, err := h.store.Users.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if user.IsLocked {
		h.fail(w, r, store.ErrLocked)
		return
	}
	access, err := h.issueAccess(user)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"success": true, "accessToken": access})
}

func (h *Handler) createUser(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	user, err := h.store.Users.CreateByAdmin(r.Context(), req.input(), h.opts.DefaultStaffPassword)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]any{"success": true, "message": "User created", "newUser": user})
}

func actorOf(r *http.Request) store.Actor {
	id := identityOf(r)
	return store.Actor{ID: id.ID, Role: id.Role}
}

func (h *Handler) updateUserFromAdmin(w http.ResponseWriter, r *http.Request) {
	var req profileRequest
	if err := decodeJSON(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	user, err := h.store.Users.UpdateByAdmin(r.Context(), actorOf(r), chi.URLParam(r, "id"), req.input())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"success": true, "message": "User updated", "user": user})
}

func (h *Handler) deleteUser(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Users.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.fail(w, r, err)
		return
	}
	respondMessage(w, http.StatusOK, "User deleted")
}

func (h *Handler) lockUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.store.Users.ToggleLock(r.Context(), actorOf(r), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	message := "User unlocked"
	if user.IsLocked {
		message = "User locked"
	}
	respondJSON(w, http.StatusOK, map[string]any{"success": true, "message": message, "user": user})
}

func (h *Handler) getDetailUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.store.Users.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"success": true, "userInfo": user})
}

func (h *Handler) filterUser(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	users, err := h.store.Users.Filter(r.Context(), store.FilterInput{
		Query:  q.Get("query"),
		SortBy: q.Get("sortBy"),
		Order:  q.Get("order"),
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"success": true, "users": users})
}

func (h *Handler) getAllUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.store.Users.List(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"success": true, "users": users})
}

func (h *Handler) changePassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CurrentPassword string `json:"currentPassword"`
		NewPassword     string `json:"newPassword"`
	}
	if err := decodeJSON(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	err := h.store.Users.ChangePassword(r.Context(), identityOf(r).ID, req.CurrentPassword, req.NewPassword)
	if errors.Is(err, store.ErrWrongPassword) {
		respondError(w, http.StatusBadRequest, "Current password is incorrect")
		return
	}
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondMessage(w, http.StatusOK, "Password changed")
}

func (h *Handler) updateInfoMySelf(w http.ResponseWriter, r *http.Request) {
	var req profileRequest
	if err := decodeJSON(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	user, err := h.store.Users.UpdateSelf(r.Context(), identityOf(r).ID, req.input())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Profile updated", "user": user})
}
