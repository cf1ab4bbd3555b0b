// Package httpserver builds the API server with timeouts sized for ledger
// round trips.
package httpserver

import (
	"net/http"
	"time"
)

const (
	headerTimeout = 5 * time.Second
	bodyTimeout   = 15 * time.Second
	idleTimeout   = 60 * time.Second
	// writeSlack covers the work before and after the ledger call on /issue.
	writeSlack = 15 * time.Second
)

// New returns a server whose write deadline outlasts ledgerTimeout, so an
// issuance waiting for inclusion can still report its outcome.
func New(addr string, handler http.Handler, ledgerTimeout time.Duration) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: headerTimeout,
		ReadTimeout:       bodyTimeout,
		WriteTimeout:      ledgerTimeout + writeSlack,
		IdleTimeout:       idleTimeout,
	}
}
