package httphandler

import (
	"net/http"
	"strconv"
)

// ListJarItems returns the couple's jar, newest first.
func (h *Handler) ListJarItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.Jar.ListItems(r.Context(), r.PathValue("code"))
	if err != nil {
		h.writeServiceError(w, r, "list jar items", err)
		return
	}

	resp := make([]JarItemResponse, 0, len(items))
	for _, item := range items {
		resp = append(resp, toJarItemResponse(item))
	}

	writeJSON(w, http.StatusOK, resp)
}

// AddJarItem drops a new idea into the couple's jar.
func (h *Handler) AddJarItem(w http.ResponseWriter, r *http.Request) {
	var req AddJarItemRequest
	if !h.decodeRequest(w, r, &req) {
		return
	}

	item, err := h.svc.Jar.AddItem(r.Context(), req.Code, req.Text)
	if err != nil {
		h.writeServiceError(w, r, "add jar item", err)
		return
	}

	writeJSON(w, http.StatusCreated, toJarItemResponse(item))
}

// RemoveJarItem deletes an item belonging to the couple.
func (h *Handler) RemoveJarItem(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	if err := h.svc.Jar.RemoveItem(r.Context(), r.PathValue("code"), id); err != nil {
		h.writeServiceError(w, r, "remove jar item", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
