package server

import (
	_ "embed"
	"net/http"
)

//go:embed index.html
var indexHTML []byte

// serveIndex serves the embedded picker page. The session is issued here
// so the page's API calls and WebSocket share it.
func (s *Server) serveIndex(w http.ResponseWriter, r *http.Request) {
	if id, isNew := resolveSession(r); isNew {
		issueSession(w.Header(), id)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(indexHTML)
}
