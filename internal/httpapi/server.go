package httpapi

import (
	"net/http"
	"time"
)

// NewServer builds the HTTP server for the local dashboard backend.
func NewServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}
