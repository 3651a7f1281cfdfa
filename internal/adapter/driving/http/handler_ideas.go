package httphandler

import "net/http"

// DateIdea returns a generated date suggestion.
func (h *Handler) DateIdea(w http.ResponseWriter, r *http.Request) {
	idea, err := h.svc.Ideas.DateIdea(r.Context())
	if err != nil {
		h.writeServiceError(w, r, "generate date idea", err)
		return
	}

	writeJSON(w, http.StatusOK, IdeaResponse{Idea: idea})
}

// CoupleQuestion returns a generated question for the couple.
func (h *Handler) CoupleQuestion(w http.ResponseWriter, r *http.Request) {
	question, err := h.svc.Ideas.CoupleQuestion(r.Context())
	if err != nil {
		h.writeServiceError(w, r, "generate couple question", err)
		return
	}

	writeJSON(w, http.StatusOK, QuestionResponse{Question: question})
}
