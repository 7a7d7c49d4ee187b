// Package site serves the embedded score calculator landing page.
package site

import (
	"bytes"
	"context"
	_ "embed"
	"net/http"
	"time"
)

//go:embed static/index.html
var indexHTML []byte

// built is the modification time reported for the embedded page.
var built = time.Now()

// Register attaches the landing page to mux. Only "/" and "/index.html" are
// served; every other path not claimed by a more specific route is a 404.
func Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" && r.URL.Path != "/index.html" {
			http.NotFound(w, r)
			return
		}
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			w.Header().Set("Allow", "GET, HEAD")
			http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		http.ServeContent(w, r, "index.html", built, bytes.NewReader(indexHTML))
	})
}
