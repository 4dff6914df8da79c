package http

import (
	"net/http"
	"strings"
)

// RequestClassifier decides whether an unpaid request receives the HTML paywall
// instead of the JSON 402 body.
type RequestClassifier interface {
	WantsHTML(r *http.Request) bool
}

// RequestClassifierFunc adapts a function to RequestClassifier.
type RequestClassifierFunc func(r *http.Request) bool

// WantsHTML calls f(r).
func (f RequestClassifierFunc) WantsHTML(r *http.Request) bool {
	return f(r)
}

// BrowserClassifier treats a request as coming from a web browser when it accepts
// text/html and its User-Agent contains "Mozilla".
type BrowserClassifier struct{}

// WantsHTML implements RequestClassifier.
func (BrowserClassifier) WantsHTML(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "text/html") &&
		strings.Contains(r.Header.Get("User-Agent"), "Mozilla")
}
