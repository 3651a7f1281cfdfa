package httphandler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ericfisherdev/lovejar/internal/application"
	"github.com/ericfisherdev/lovejar/internal/domain/model"
)

// writeJSON marshals v to JSON and writes it to the response with the given
// status code. If marshaling fails, a 500 error is written instead.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// writeError writes a JSON error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// errorResponse is the standard error response body.
type errorResponse struct {
	Error string `json:"error"`
}

// AccountResponse is the fixed public view of an account. Credentials and
// internal IDs never appear here.
type AccountResponse struct {
	Handle            string  `json:"handle"`
	AuthMethod        string  `json:"authMethod"`
	DisplayName       string  `json:"displayName"`
	PictureURL        string  `json:"pictureUrl"`
	UniqueCode        string  `json:"uniqueCode"`
	LinkedPartnerCode *string `json:"linkedPartnerCode"`
	AnniversaryDate   *string `json:"anniversaryDate"`
}

// SessionResponse is returned by every successful sign-in.
type SessionResponse struct {
	Account AccountResponse `json:"account"`
	Token   string          `json:"token"`
}

// PartnerProfileResponse is what one partner may see of the other.
type PartnerProfileResponse struct {
	Handle      string `json:"handle"`
	DisplayName string `json:"displayName"`
	PictureURL  string `json:"pictureUrl"`
}

// TimeTogetherResponse is the elapsed time since the anniversary.
type TimeTogetherResponse struct {
	Days    int64 `json:"days"`
	Hours   int64 `json:"hours"`
	Minutes int64 `json:"minutes"`
	Seconds int64 `json:"seconds"`
	Started bool  `json:"started"`
}

// NextAnniversaryResponse is the upcoming anniversary occurrence.
type NextAnniversaryResponse struct {
	Date      string `json:"date"`
	DaysUntil int    `json:"daysUntil"`
	Years     int    `json:"years"`
}

// DashboardResponse bundles the account, its partner and the projection.
type DashboardResponse struct {
	Account         AccountResponse          `json:"account"`
	Partner         *PartnerProfileResponse  `json:"partner"`
	TimeTogether    *TimeTogetherResponse    `json:"timeTogether"`
	NextAnniversary *NextAnniversaryResponse `json:"nextAnniversary"`
}

// JarItemResponse is the JSON representation of a jar item.
type JarItemResponse struct {
	ID        int64  `json:"id"`
	OwnerCode string `json:"ownerCode"`
	Text      string `json:"text"`
	CreatedAt string `json:"createdAt"`
}

// IdeaResponse is returned by GET /api/v1/ideas/date.
type IdeaResponse struct {
	Idea string `json:"idea"`
}

// QuestionResponse is returned by GET /api/v1/ideas/question.
type QuestionResponse struct {
	Question string `json:"question"`
}

// HealthResponse is the JSON representation of the health check.
type HealthResponse struct {
	Status string `json:"status"`
	Time   string `json:"time"`
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func toAccountResponse(a model.Account) AccountResponse {
	return AccountResponse{
		Handle:            a.Handle,
		AuthMethod:        string(a.AuthMethod),
		DisplayName:       a.DisplayName,
		PictureURL:        a.PictureURL,
		UniqueCode:        a.UniqueCode,
		LinkedPartnerCode: optional(a.LinkedPartnerCode),
		AnniversaryDate:   optional(model.FormatDate(a.AnniversaryDate)),
	}
}

func toSessionResponse(s application.Session) SessionResponse {
	return SessionResponse{Account: toAccountResponse(s.Account), Token: s.Token}
}

func toPartnerProfileResponse(p model.PartnerProfile) PartnerProfileResponse {
	return PartnerProfileResponse{
		Handle:      p.Handle,
		DisplayName: p.DisplayName,
		PictureURL:  p.PictureURL,
	}
}

func toDashboardResponse(d application.Dashboard) DashboardResponse {
	resp := DashboardResponse{Account: toAccountResponse(d.Account)}

	if d.Partner != nil {
		p := toPartnerProfileResponse(*d.Partner)
		resp.Partner = &p
	}

	if d.Projection != nil {
		tt := d.Projection.TimeTogether
		resp.TimeTogether = &TimeTogetherResponse{
			Days:    tt.Days,
			Hours:   tt.Hours,
			Minutes: tt.Minutes,
			Seconds: tt.Seconds,
			Started: tt.Started,
		}
		next := d.Projection.NextAnniversary
		resp.NextAnniversary = &NextAnniversaryResponse{
			Date:      next.Date.Format(model.DateLayout),
			DaysUntil: next.DaysUntil,
			Years:     next.Years,
		}
	}

	return resp
}

func toJarItemResponse(item model.JarItem) JarItemResponse {
	return JarItemResponse{
		ID:        item.ID,
		OwnerCode: item.OwnerCode,
		Text:      item.Text,
		CreatedAt: item.CreatedAt.UTC().Format(time.RFC3339),
	}
}
