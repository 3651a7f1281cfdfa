package httphandler

import (
	"net/http"
	"strings"

	"github.com/skip2/go-qrcode"
)

const qrSize = 256

// SignUp creates a local account and signs it in.
func (h *Handler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req SignUpRequest
	if !h.decodeRequest(w, r, &req) {
		return
	}

	session, err := h.svc.Identity.SignUp(r.Context(), req.Handle, req.Password, req.DisplayName)
	if err != nil {
		h.writeServiceError(w, r, "sign up", err)
		return
	}

	writeJSON(w, http.StatusCreated, toSessionResponse(session))
}

// LogIn signs in a local account.
func (h *Handler) LogIn(w http.ResponseWriter, r *http.Request) {
	var req LogInRequest
	if !h.decodeRequest(w, r, &req) {
		return
	}

	session, err := h.svc.Identity.LogIn(r.Context(), req.Handle, req.Password)
	if err != nil {
		h.writeServiceError(w, r, "log in", err)
		return
	}

	writeJSON(w, http.StatusOK, toSessionResponse(session))
}

// FederatedSignIn exchanges an identity provider token for a session.
func (h *Handler) FederatedSignIn(w http.ResponseWriter, r *http.Request) {
	var req FederatedSignInRequest
	if !h.decodeRequest(w, r, &req) {
		return
	}

	session, err := h.svc.Identity.FederatedSignIn(r.Context(), req.IDToken)
	if err != nil {
		h.writeServiceError(w, r, "federated sign-in", err)
		return
	}

	writeJSON(w, http.StatusOK, toSessionResponse(session))
}

// Me returns the account the bearer token was issued to.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok || token == "" {
		writeError(w, http.StatusUnauthorized, "missing bearer token")
		return
	}

	code, err := h.tokens.Parse(token)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid or expired token")
		return
	}

	account, err := h.svc.Identity.Account(r.Context(), code)
	if err != nil {
		h.writeServiceError(w, r, "get current account", err)
		return
	}

	writeJSON(w, http.StatusOK, toAccountResponse(account))
}

// GetAccount returns the public account view for a unique code.
func (h *Handler) GetAccount(w http.ResponseWriter, r *http.Request) {
	account, err := h.svc.Identity.Account(r.Context(), r.PathValue("code"))
	if err != nil {
		h.writeServiceError(w, r, "get account", err)
		return
	}

	writeJSON(w, http.StatusOK, toAccountResponse(account))
}

// GetAccountQR renders the account's unique code as a PNG QR code so a
// partner can scan it instead of typing it.
func (h *Handler) GetAccountQR(w http.ResponseWriter, r *http.Request) {
	account, err := h.svc.Identity.Account(r.Context(), r.PathValue("code"))
	if err != nil {
		h.writeServiceError(w, r, "get account qr", err)
		return
	}

	png, err := qrcode.Encode(account.UniqueCode, qrcode.Medium, qrSize)
	if err != nil {
		h.writeServiceError(w, r, "encode qr", err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}

// GetDashboard returns the account, partner and anniversary projection.
func (h *Handler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	view, err := h.svc.Dashboard.Dashboard(r.Context(), r.PathValue("code"))
	if err != nil {
		h.writeServiceError(w, r, "get dashboard", err)
		return
	}

	writeJSON(w, http.StatusOK, toDashboardResponse(view))
}
