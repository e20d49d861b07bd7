package session

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"
)

// Handler exposes HTTP endpoints for sign-in, sign-out and the
// authenticated user's own record.
type Handler struct {
	svc    *Service
	logger *zap.SugaredLogger
}

func NewHandler(svc *Service, logger *zap.SugaredLogger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// SignIn handles POST /signin.
func (h *Handler) SignIn(w http.ResponseWriter, r *http.Request) {
	var in SignInInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		return
	}
	token, err := h.svc.SignIn(r.Context(), in)
	if err != nil {
		switch {
		case errors.Is(err, ErrValidation):
			h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "email and password are required"})
		case errors.Is(err, ErrBadCredentials):
			h.writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid email or password"})
		default:
			h.logger.Errorw("sign-in failed", "err", err)
			h.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "error during sign-in"})
		}
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"message": "login successful", "token": token})
}

// SignOut handles POST /logout. RequireAuth has already attached claims.
func (h *Handler) SignOut(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		h.writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "access denied: no token provided"})
		return
	}
	if err := h.svc.SignOut(r.Context(), claims); err != nil {
		h.logger.Errorw("sign-out failed", "user_id", claims.AccountID, "err", err)
		h.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "error during sign-out"})
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

// Self handles GET /users: the authenticated account's own record.
func (h *Handler) Self(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		h.writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "access denied: no token provided"})
		return
	}
	a, err := h.svc.SelfData(r.Context(), claims.AccountID)
	if err != nil {
		if errors.Is(err, ErrAccountGone) {
			h.writeJSON(w, http.StatusNotFound, map[string]string{"error": "account not found"})
			return
		}
		h.logger.Errorw("fetch own data failed", "user_id", claims.AccountID, "err", err)
		h.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "error fetching user"})
		return
	}
	h.writeJSON(w, http.StatusOK, a)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
