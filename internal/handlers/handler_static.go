package handlers

import (
	"ggarquitectos-site/internal/middlewares"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// SPAHandler serves files from dir and falls back to index.html for client
// side routes. Unknown /api paths stay 404.
func SPAHandler(dir string) http.HandlerFunc {
	fileServer := http.FileServer(http.Dir(dir))
	index := filepath.Join(dir, "index.html")

	return func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/api/") {
			http.NotFound(w, r)
			return
		}

		clean := path.Clean("/" + r.URL.Path)
		if clean != "/" {
			if info, err := os.Stat(filepath.Join(dir, filepath.FromSlash(clean))); err == nil && !info.IsDir() {
				fileServer.ServeHTTP(w, r)
				return
			}
		}

		if _, err := os.Stat(index); err != nil {
			if logger := middlewares.GetLogger(r); logger != nil {
				logger.Error("Site index is missing", "path", index, "error", err)
			}
			http.NotFound(w, r)
			return
		}

		http.ServeFile(w, r, index)
	}
}
