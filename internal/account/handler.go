package account

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/signcore/service-auth-go/internal/session"
)

// Handler exposes HTTP endpoints for registration, profile updates and the
// administrative account listing.
type Handler struct {
	svc    *Service
	logger *zap.SugaredLogger
}

func NewHandler(svc *Service, logger *zap.SugaredLogger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// Signup handles POST /signup.
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var in SignupInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		return
	}
	if _, err := h.svc.Signup(r.Context(), in); err != nil {
		switch {
		case errors.Is(err, ErrValidation):
			h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		case errors.Is(err, ErrEmailTaken):
			h.writeJSON(w, http.StatusConflict, map[string]string{"error": "email already exists"})
		default:
			h.logger.Errorw("signup failed", "err", err)
			h.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "error registering user"})
		}
		return
	}
	h.writeJSON(w, http.StatusCreated, map[string]string{"message": "user registered successfully"})
}

// UpdateProfile handles PUT /users: name and email of the authenticated
// account. RequireAuth has already attached claims.
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	claims, ok := session.ClaimsFromContext(r.Context())
	if !ok {
		h.writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "access denied: no token provided"})
		return
	}
	var in UpdateProfileInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		return
	}
	if err := h.svc.UpdateProfile(r.Context(), claims.AccountID, in); err != nil {
		switch {
		case errors.Is(err, ErrValidation):
			h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		case errors.Is(err, ErrEmailTaken):
			h.writeJSON(w, http.StatusConflict, map[string]string{"error": "email already exists"})
		case errors.Is(err, ErrNotFound):
			h.writeJSON(w, http.StatusNotFound, map[string]string{"error": "account not found"})
		default:
			h.logger.Errorw("profile update failed", "user_id", claims.AccountID, "err", err)
			h.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "error updating profile"})
		}
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"message": "profile updated"})
}

// List handles GET /viewUsers (admin only, enforced by middleware).
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.svc.ListAccounts(r.Context())
	if err != nil {
		h.logger.Errorw("list accounts failed", "err", err)
		h.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "error fetching users"})
		return
	}
	h.writeJSON(w, http.StatusOK, accounts)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
