// Package httpserver builds the shared *http.Server with the timeouts this
// service runs with.
package httpserver

import (
	"net/http"
	"time"
)

// New returns a server ready for ListenAndServe. Write timeouts are left to
// the per-request middleware so badge downloads are not cut off.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}
