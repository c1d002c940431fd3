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

func TestCSRFToken_IssuesCookieOnce(t *testing.T) {
	rec := httptest.NewRecorder()
	token := csrfToken(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, token, cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: csrfCookieName, Value: "existing"})
	rec = httptest.NewRecorder()

	assert.Equal(t, "existing", csrfToken(rec, req))
	assert.Empty(t, rec.Result().Cookies())
}

func TestRequireCSRF(t *testing.T) {
	tests := []struct {
		name   string
		cookie string
		header string
		form   string
		want   int
	}{
		{name: "form field matches", cookie: "abc", form: "abc", want: http.StatusNoContent},
		{name: "header matches", cookie: "abc", header: "abc", want: http.StatusNoContent},
		{name: "mismatch", cookie: "abc", form: "abd", want: http.StatusForbidden},
		{name: "no cookie", form: "abc", want: http.StatusForbidden},
		{name: "no token", cookie: "abc", want: http.StatusForbidden},
	}

	ok := func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNoContent) }

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			form := url.Values{}
			if tc.form != "" {
				form.Set(csrfFormField, tc.form)
			}
			req := httptest.NewRequest(http.MethodPost, "/refresh", strings.NewReader(form.Encode()))
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
			if tc.header != "" {
				req.Header.Set(csrfHeader, tc.header)
			}
			if tc.cookie != "" {
				req.AddCookie(&http.Cookie{Name: csrfCookieName, Value: tc.cookie})
			}

			rec := httptest.NewRecorder()
			requireCSRF(ok)(rec, req)

			assert.Equal(t, tc.want, rec.Code)
		})
	}
}
