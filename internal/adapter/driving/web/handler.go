// Package web implements the HTML GUI driving adapter using templ components.
package web

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/ericfisherdev/lovejar/internal/adapter/driving/web/templates"
	"github.com/ericfisherdev/lovejar/internal/adapter/driving/web/templates/pages"
	"github.com/ericfisherdev/lovejar/internal/application"
	"github.com/ericfisherdev/lovejar/internal/domain/port/driven"
)

// Handler is the web GUI driving adapter that serves HTML via templ components.
type Handler struct {
	dashboard    *application.DashboardService
	jar          *application.JarService
	ideas        *application.IdeaService
	secureCookie bool
	logger       *slog.Logger
}

// NewHandler creates a Handler with all required dependencies.
func NewHandler(
	dashboard *application.DashboardService,
	jar *application.JarService,
	ideas *application.IdeaService,
	secureCookie bool,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		dashboard:    dashboard,
		jar:          jar,
		ideas:        ideas,
		secureCookie: secureCookie,
		logger:       logger,
	}
}

// Couple renders the shared dashboard page for an account.
func (h *Handler) Couple(w http.ResponseWriter, r *http.Request) {
	view, err := h.dashboard.Dashboard(r.Context(), r.PathValue("code"))
	if err != nil {
		h.renderError(w, "failed to load dashboard", err)
		return
	}

	items, err := h.jar.ListItems(r.Context(), view.Account.UniqueCode)
	if err != nil {
		h.renderError(w, "failed to load jar", err)
		return
	}

	token := csrfToken(w, r, h.secureCookie)
	page := toCoupleViewModel(view, items, token, h.ideas != nil && h.ideas.Available())
	layout := templates.Layout("Love Jar", pages.Couple(page))

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := layout.Render(r.Context(), w); err != nil {
		h.logger.Error("failed to render dashboard", "error", err)
	}
}

// Counter renders only the time-together widget for polling.
func (h *Handler) Counter(w http.ResponseWriter, r *http.Request) {
	view, err := h.dashboard.Dashboard(r.Context(), r.PathValue("code"))
	if err != nil {
		h.renderError(w, "failed to load counter", err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	if err := pages.Counter(toCounterViewModel(view)).Render(r.Context(), w); err != nil {
		h.logger.Error("failed to render counter", "error", err)
	}
}

// AddJarItem handles the jar form and redirects back to the dashboard.
func (h *Handler) AddJarItem(w http.ResponseWriter, r *http.Request) {
	if !validateCSRF(r) {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	code := r.PathValue("code")
	item, err := h.jar.AddItem(r.Context(), code, r.FormValue("text"))
	if err != nil {
		if errors.Is(err, application.ErrInvalidInput) {
			http.Error(w, "jar item must be 1-500 characters", http.StatusBadRequest)
			return
		}
		h.renderError(w, "failed to add jar item", err)
		return
	}

	http.Redirect(w, r, "/couple/"+item.OwnerCode, http.StatusSeeOther)
}

func (h *Handler) renderError(w http.ResponseWriter, msg string, err error) {
	if errors.Is(err, driven.ErrAccountNotFound) {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	h.logger.Error(msg, "error", err)
	http.Error(w, "internal server error", http.StatusInternalServerError)
}
