// Package httphandler is the JSON REST driving adapter. Every route lives
// under /api/v1 and maps domain errors onto HTTP status codes in one place.
package httphandler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/ericfisherdev/lovejar/internal/application"
)

// TokenParser resolves a bearer session token to an account's unique code.
type TokenParser interface {
	Parse(token string) (string, error)
}

// Services groups the application services the API calls into.
type Services struct {
	Partners  *application.PartnerService
	Dashboard *application.DashboardService
	Identity  *application.IdentityService
	Jar       *application.JarService
	Ideas     *application.IdeaService
}

// Handler is the HTTP driving adapter that serves the REST API.
type Handler struct {
	svc      Services
	tokens   TokenParser
	validate *validator.Validate
	logger   *slog.Logger
}

// NewHandler creates a Handler with all required dependencies.
func NewHandler(svc Services, tokens TokenParser, logger *slog.Logger) *Handler {
	return &Handler{
		svc:      svc,
		tokens:   tokens,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   logger,
	}
}

// RegisterAPIRoutes registers all JSON API routes on mux.
func RegisterAPIRoutes(mux *http.ServeMux, h *Handler) {
	mux.HandleFunc("POST /api/v1/partner/link", h.LinkPartner)
	mux.HandleFunc("POST /api/v1/partner/unlink", h.UnlinkPartner)
	mux.HandleFunc("GET /api/v1/partner/{code}", h.GetPartnerProfile)
	mux.HandleFunc("POST /api/v1/account/anniversary", h.SetAnniversary)
	mux.HandleFunc("GET /api/v1/account/{code}", h.GetAccount)
	mux.HandleFunc("GET /api/v1/account/{code}/qr", h.GetAccountQR)
	mux.HandleFunc("GET /api/v1/dashboard/{code}", h.GetDashboard)

	mux.HandleFunc("POST /api/v1/signup", h.SignUp)
	mux.HandleFunc("POST /api/v1/login", h.LogIn)
	mux.HandleFunc("POST /api/v1/federated-signin", h.FederatedSignIn)
	mux.HandleFunc("GET /api/v1/me", h.Me)

	mux.HandleFunc("GET /api/v1/jar/{code}", h.ListJarItems)
	mux.HandleFunc("POST /api/v1/jar", h.AddJarItem)
	mux.HandleFunc("DELETE /api/v1/jar/{code}/items/{id}", h.RemoveJarItem)

	mux.HandleFunc("GET /api/v1/ideas/date", h.DateIdea)
	mux.HandleFunc("GET /api/v1/ideas/question", h.CoupleQuestion)

	mux.HandleFunc("GET /api/v1/health", h.Health)
}

// Health returns a simple health check response.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status: "ok",
		Time:   time.Now().UTC().Format(time.RFC3339),
	})
}
