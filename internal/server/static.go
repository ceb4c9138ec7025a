package server

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
)

// staticHandler serves files from the frontend bundle and falls back to
// index.html so client-side routes resolve.
func (s *Server) staticHandler(w http.ResponseWriter, r *http.Request) {
	name := filepath.Join(s.staticDir, filepath.FromSlash(path.Clean("/"+r.URL.Path)))
	if info, err := os.Stat(name); err == nil && !info.IsDir() {
		http.ServeFile(w, r, name)
		return
	}

	index := filepath.Join(s.staticDir, "index.html")
	if _, err := os.Stat(index); err != nil {
		http.NotFound(w, r)
		return
	}
	http.ServeFile(w, r, index)
}
