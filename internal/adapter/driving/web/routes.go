package web

import (
	"io/fs"
	"net/http"
)

// RegisterRoutes registers all web GUI routes on the provided mux.
// Pages live under /couple/{code}; static assets are served from the
// embedded filesystem at /static/*.
func RegisterRoutes(mux *http.ServeMux, h *Handler) {
	staticFS, _ := fs.Sub(StaticFS, "static")
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(staticFS)))

	mux.HandleFunc("GET /couple/{code}", h.Couple)
	mux.HandleFunc("GET /couple/{code}/counter", h.Counter)
	mux.HandleFunc("POST /couple/{code}/jar", h.AddJarItem)
}
