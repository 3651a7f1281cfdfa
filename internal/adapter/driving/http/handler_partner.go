package httphandler

import (
	"net/http"
)

// LinkPartner links the requester and the partner symmetrically.
func (h *Handler) LinkPartner(w http.ResponseWriter, r *http.Request) {
	var req LinkPartnerRequest
	if !h.decodeRequest(w, r, &req) {
		return
	}

	account, err := h.svc.Partners.LinkPartner(r.Context(), req.RequesterCode, req.PartnerCode)
	if err != nil {
		h.writeServiceError(w, r, "link partner", err)
		return
	}

	writeJSON(w, http.StatusOK, toAccountResponse(account))
}

// UnlinkPartner clears the link on both sides.
func (h *Handler) UnlinkPartner(w http.ResponseWriter, r *http.Request) {
	var req CodeRequest
	if !h.decodeRequest(w, r, &req) {
		return
	}

	account, err := h.svc.Partners.UnlinkPartner(r.Context(), req.Code)
	if err != nil {
		h.writeServiceError(w, r, "unlink partner", err)
		return
	}

	writeJSON(w, http.StatusOK, toAccountResponse(account))
}

// SetAnniversary stores the anniversary date on the account and its partner.
func (h *Handler) SetAnniversary(w http.ResponseWriter, r *http.Request) {
	var req SetAnniversaryRequest
	if !h.decodeRequest(w, r, &req) {
		return
	}

	account, err := h.svc.Partners.SetAnniversary(r.Context(), req.Code, req.Date)
	if err != nil {
		h.writeServiceError(w, r, "set anniversary", err)
		return
	}

	writeJSON(w, http.StatusOK, toAccountResponse(account))
}

// GetPartnerProfile returns the public profile of the account's partner.
func (h *Handler) GetPartnerProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := h.svc.Dashboard.PartnerProfile(r.Context(), r.PathValue("code"))
	if err != nil {
		h.writeServiceError(w, r, "get partner profile", err)
		return
	}

	writeJSON(w, http.StatusOK, toPartnerProfileResponse(profile))
}
