package gin

import (
	"bufio"
	"errors"
	"net"
	"net/http"

	"github.com/gin-gonic/gin"
)

const noWritten = -1

var errHijackUnsupported = errors.New("x402: hijacking a gated response is not supported")

// responseWriter lets downstream gin handlers write into the gate's response
// capture while keeping gin's deferred-status semantics.
type responseWriter struct {
	gin.ResponseWriter
	w      http.ResponseWriter
	status int
	size   int
}

func newResponseWriter(original gin.ResponseWriter, w http.ResponseWriter) *responseWriter {
	return &responseWriter{
		ResponseWriter: original,
		w:              w,
		status:         http.StatusOK,
		size:           noWritten,
	}
}

func (rw *responseWriter) Header() http.Header {
	return rw.w.Header()
}

func (rw *responseWriter) WriteHeader(code int) {
	if code > 0 && rw.status != code {
		if rw.Written() {
			return
		}
		rw.status = code
	}
}

func (rw *responseWriter) WriteHeaderNow() {
	if !rw.Written() {
		rw.size = 0
		rw.w.WriteHeader(rw.status)
	}
}

func (rw *responseWriter) Write(data []byte) (int, error) {
	rw.WriteHeaderNow()
	n, err := rw.w.Write(data)
	rw.size += n
	return n, err
}

func (rw *responseWriter) WriteString(s string) (int, error) {
	return rw.Write([]byte(s))
}

func (rw *responseWriter) Status() int {
	return rw.status
}

func (rw *responseWriter) Size() int {
	return rw.size
}

func (rw *responseWriter) Written() bool {
	return rw.size != noWritten
}

func (rw *responseWriter) Flush() {
	rw.WriteHeaderNow()
	if f, ok := rw.w.(http.Flusher); ok {
		f.Flush()
	}
}

// Hijack is refused unless the gate's writer allows it: the response must stay
// withholdable until the payment settles.
func (rw *responseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	if h, ok := rw.w.(http.Hijacker); ok {
		return h.Hijack()
	}
	return nil, nil, errHijackUnsupported
}

// Pusher disables HTTP/2 server push for gated responses.
func (rw *responseWriter) Pusher() http.Pusher {
	return nil
}
