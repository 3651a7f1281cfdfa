package web

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSRFToken_SetsCookieOnce(t *testing.T) {
	rec := httptest.NewRecorder()
	token := csrfToken(rec, httptest.NewRequest(http.MethodGet, "/", nil), true)
	require.Len(t, token, csrfTokenBytes*2)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, csrfCookieName, cookies[0].Name)
	assert.Equal(t, token, cookies[0].Value)
	assert.True(t, cookies[0].Secure)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: csrfCookieName, Value: token})
	rec = httptest.NewRecorder()
	assert.Equal(t, token, csrfToken(rec, req, true))
	assert.Empty(t, rec.Result().Cookies())
}

func TestValidateCSRF(t *testing.T) {
	form := func(token string) *http.Request {
		body := url.Values{csrfFormField: {token}}.Encode()
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		return req
	}

	tests := []struct {
		name   string
		req    func() *http.Request
		cookie string
		want   bool
	}{
		{"form field matches", func() *http.Request { return form("abc") }, "abc", true},
		{"header matches", func() *http.Request {
			r := httptest.NewRequest(http.MethodPost, "/", nil)
			r.Header.Set(csrfHeader, "abc")
			return r
		}, "abc", true},
		{"mismatch", func() *http.Request { return form("abd") }, "abc", false},
		{"missing cookie", func() *http.Request { return form("abc") }, "", false},
		{"missing token", func() *http.Request { return form("") }, "abc", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := tt.req()
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: csrfCookieName, Value: tt.cookie})
			}
			assert.Equal(t, tt.want, validateCSRF(req))
		})
	}
}
