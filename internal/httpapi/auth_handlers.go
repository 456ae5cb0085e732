package httpapi

import (
	"errors"
	"net/http"

	"github.com/maison-aurelia/storefront/internal/api"
	"github.com/maison-aurelia/storefront/internal/auth"
	"github.com/maison-aurelia/storefront/internal/platform/httpx"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

func (h *Handlers) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeBody(r, &req); err != nil {
		httpx.WriteError(r.Context(), w, httpx.NewError("invalid_body", "malformed request body", http.StatusBadRequest))
		return
	}
	if req.Email == "" || req.Password == "" {
		httpx.WriteError(r.Context(), w, httpx.NewError("missing_credentials", "email and password are required", http.StatusBadRequest))
		return
	}

	if _, err := h.auth.Login(r.Context(), req.Email, req.Password); err != nil {
		h.writeAuthError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, h.buildSessionView(r))
}

func (h *Handlers) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeBody(r, &req); err != nil {
		httpx.WriteError(r.Context(), w, httpx.NewError("invalid_body", "malformed request body", http.StatusBadRequest))
		return
	}
	if req.Email == "" || req.Password == "" {
		httpx.WriteError(r.Context(), w, httpx.NewError("missing_credentials", "email and password are required", http.StatusBadRequest))
		return
	}

	_, err := h.auth.Register(r.Context(), auth.RegisterData{
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		h.writeAuthError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, h.buildSessionView(r))
}

func (h *Handlers) logout(w http.ResponseWriter, r *http.Request) {
	h.auth.Logout()
	httpx.WriteJSON(w, http.StatusOK, h.buildSessionView(r))
}

// writeAuthError surfaces the normalized message so the rendering layer can
// display it and offer a retry.
func (h *Handlers) writeAuthError(w http.ResponseWriter, r *http.Request, err error) {
	var authErr *auth.Error
	if errors.As(err, &authErr) {
		status := api.StatusOf(authErr.Err)
		if status == 0 {
			status = http.StatusBadGateway
		}
		httpx.WriteError(r.Context(), w, httpx.NewError("auth_"+authErr.Op+"_failed", authErr.Message, status))
		return
	}
	if errors.Is(err, auth.ErrSuperseded) {
		httpx.WriteError(r.Context(), w, httpx.NewError("auth_superseded", "a newer sign-in attempt completed first", http.StatusConflict))
		return
	}
	httpx.WriteError(r.Context(), w, httpx.NewError("auth_failed", "authentication failed", http.StatusInternalServerError))
}
