package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBrowserClassifier(t *testing.T) {
	tests := []struct {
		name      string
		accept    string
		userAgent string
		want      bool
	}{
		{"browser", "text/html,application/xhtml+xml", "Mozilla/5.0 (X11; Linux x86_64)", true},
		{"html without mozilla", "text/html", "curl/8.5.0", false},
		{"mozilla without html", "application/json", "Mozilla/5.0", false},
		{"neither", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.Header.Set("Accept", tt.accept)
			r.Header.Set("User-Agent", tt.userAgent)
			assert.Equal(t, tt.want, BrowserClassifier{}.WantsHTML(r))
		})
	}
}

func TestRequestClassifierFunc(t *testing.T) {
	var c RequestClassifier = RequestClassifierFunc(func(r *http.Request) bool {
		return r.URL.Query().Get("html") == "1"
	})
	assert.True(t, c.WantsHTML(httptest.NewRequest(http.MethodGet, "/?html=1", nil)))
	assert.False(t, c.WantsHTML(httptest.NewRequest(http.MethodGet, "/", nil)))
}
