package http

import (
	"bufio"
	"bytes"
	"errors"
	"net"
	"net/http"
)

// errHijackUnsupported is returned when a gated handler tries to take over the connection.
var errHijackUnsupported = errors.New("x402: hijacking a gated response is not supported")

// responseCapture buffers a handler's response until the gate decides its fate.
// Nothing reaches the client until replay is called.
type responseCapture struct {
	header      http.Header
	status      int
	wroteHeader bool
	body        bytes.Buffer
}

func newResponseCapture() *responseCapture {
	return &responseCapture{header: make(http.Header)}
}

func (c *responseCapture) Header() http.Header {
	return c.header
}

func (c *responseCapture) WriteHeader(statusCode int) {
	if c.wroteHeader {
		return
	}
	// Informational responses other than 101 do not settle the final status.
	if statusCode >= 100 && statusCode < 200 && statusCode != http.StatusSwitchingProtocols {
		return
	}
	c.wroteHeader = true
	c.status = statusCode
}

func (c *responseCapture) Write(b []byte) (int, error) {
	if !c.wroteHeader {
		c.WriteHeader(http.StatusOK)
	}
	return c.body.Write(b)
}

// Flush is a no-op: the body stays buffered until settlement.
func (c *responseCapture) Flush() {}

// Hijack implements http.Hijacker so callers get an error instead of a type assertion failure.
func (c *responseCapture) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	return nil, nil, errHijackUnsupported
}

// Status returns the captured status, 200 if the handler never set one.
func (c *responseCapture) Status() int {
	if !c.wroteHeader {
		return http.StatusOK
	}
	return c.status
}

// Succeeded reports whether the handler produced a 2xx response.
func (c *responseCapture) Succeeded() bool {
	status := c.Status()
	return status >= 200 && status < 300
}

// replay writes the captured response to w. Headers already set on w are kept
// unless the handler set the same key.
func (c *responseCapture) replay(w http.ResponseWriter) error {
	dst := w.Header()
	for key, values := range c.header {
		dst[key] = values
	}
	w.WriteHeader(c.Status())
	_, err := w.Write(c.body.Bytes())
	return err
}
