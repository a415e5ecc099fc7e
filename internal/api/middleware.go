package api

import (
	"net/http"
	"strings"

	"pharmacy/m/internal/auth"
)

// authenticate requires a valid bearer access token and stores its identity
// in the request context.
func (h *Handler) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" || !strings.HasPrefix(strings.ToLower(header), "bearer ") {
			respondError(w, http.StatusUnauthorized, "Unauthenticated")
			return
		}
		tokenString := strings.TrimSpace(header[len("Bearer "):])
		identity, err := h.tokens.ParseAccess(tokenString)
		if err != nil {
			respondError(w, http.StatusUnauthorized, "Invalid access token")
			return
		}
		next.ServeHTTP(w, r.WithContext(auth.WithIdentity(r.Context(), identity)))
	})
}

// allow admits the request when the policy grants action to the caller's role.
func (h *Handler) allow(action string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := auth.FromContext(r.Context())
			if !ok {
				respondError(w, http.StatusUnauthorized, "Unauthenticated")
				return
			}
			if !h.policy.Allows(action, identity.Role) {
				respondError(w, http.StatusForbidden, "You do not have permission to perform this action")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func identityOf(r *http.Request) auth.Identity {
	identity, _ := auth.FromContext(r.Context())
	return identity
}
