package httpapi

import (
	"errors"
	"net/http"
	"time"

	"classtrack.org/internal/audit"
	"classtrack.org/internal/auth"
	"classtrack.org/internal/credential"
	"classtrack.org/internal/obs"
)

type registerRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type registerResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (a *API) handleAuthRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	if a.auth == nil {
		writeError(w, r, http.StatusServiceUnavailable, "auth service unavailable")
		return
	}

	var req registerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	user, err := a.auth.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidInput):
			writeError(w, r, http.StatusBadRequest, "username and password are required")
		case errors.Is(err, auth.ErrAlreadyExists):
			writeError(w, r, http.StatusConflict, "username already taken")
		default:
			writeError(w, r, http.StatusInternalServerError, "internal error")
		}
		return
	}

	_ = audit.LogEvent(r.Context(), "auth.register", map[string]any{
		"user_id":  user.ID,
		"username": user.Username,
	})

	writeJSON(w, http.StatusCreated, registerResponse{
		ID:        user.ID,
		Username:  user.Username,
		CreatedAt: user.CreatedAt,
	})
}

func (a *API) handleAuthLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	if a.auth == nil {
		writeError(w, r, http.StatusServiceUnavailable, "auth service unavailable")
		return
	}

	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	token, expiresAt, err := a.auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidCredentials):
			// Deliberately the same response for unknown user and wrong
			// password, so registered usernames cannot be enumerated.
			writeError(w, r, http.StatusUnauthorized, "invalid credentials")
		case errors.Is(err, credential.ErrInvalidCredentialData):
			obs.LogRequest(map[string]any{
				"ts":    time.Now().UTC().Format(time.RFC3339Nano),
				"level": "error",
				"msg":   "corrupt credential record",
				"error": err.Error(),
			})
			writeError(w, r, http.StatusInternalServerError, "internal error")
		default:
			writeError(w, r, http.StatusInternalServerError, "internal error")
		}
		return
	}

	_ = audit.LogEvent(r.Context(), "auth.login", map[string]any{
		"username":   req.Username,
		"expires_at": expiresAt.Format(time.RFC3339),
	})

	writeJSON(w, http.StatusOK, loginResponse{
		Token:     token,
		ExpiresAt: expiresAt,
	})
}
