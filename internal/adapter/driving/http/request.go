package httphandler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
)

// maxBodyBytes bounds every JSON request body.
const maxBodyBytes = 1 << 20

// LinkPartnerRequest is the body of POST /api/v1/partner/link.
type LinkPartnerRequest struct {
	RequesterCode string `json:"requesterCode" validate:"required,max=64"`
	PartnerCode   string `json:"partnerCode" validate:"required,max=64"`
}

// CodeRequest is the body of requests naming a single account. Codes are
// normalized by the services, so a well-formed code that matches no account
// is a 404 rather than a validation error.
type CodeRequest struct {
	Code string `json:"code" validate:"required,max=64"`
}

// SetAnniversaryRequest is the body of POST /api/v1/account/anniversary.
type SetAnniversaryRequest struct {
	Code string `json:"code" validate:"required,max=64"`
	Date string `json:"date" validate:"required"`
}

// SignUpRequest is the body of POST /api/v1/signup.
type SignUpRequest struct {
	Handle      string `json:"handle" validate:"required,min=3,max=64"`
	Password    string `json:"password" validate:"required,min=6,max=72"`
	DisplayName string `json:"displayName" validate:"max=100"`
}

// LogInRequest is the body of POST /api/v1/login.
type LogInRequest struct {
	Handle   string `json:"handle" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// FederatedSignInRequest is the body of POST /api/v1/federated-signin.
type FederatedSignInRequest struct {
	IDToken string `json:"idToken" validate:"required"`
}

// AddJarItemRequest is the body of POST /api/v1/jar.
type AddJarItemRequest struct {
	Code string `json:"code" validate:"required,max=64"`
	Text string `json:"text" validate:"required,max=2000"`
}

// decodeRequest decodes the JSON body into dst and validates its tags. On
// failure it writes a 400 and returns false.
func (h *Handler) decodeRequest(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}

	if err := h.validate.Struct(dst); err != nil {
		writeError(w, http.StatusBadRequest, validationMessage(err))
		return false
	}

	return true
}

// validationMessage flattens validator errors into one client-facing line.
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return "invalid request body"
	}

	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			parts = append(parts, fmt.Sprintf("%s: %s=%s", lowerFirst(fe.Field()), fe.Tag(), fe.Param()))
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: %s", lowerFirst(fe.Field()), fe.Tag()))
	}

	return "invalid request: " + strings.Join(parts, ", ")
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
