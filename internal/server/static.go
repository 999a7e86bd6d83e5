package server

import (
	"io/fs"
	"net/http"
	"os"
	"path"
	"strings"

	"github.com/vyfood/storefront/internal/embedded"
	"github.com/vyfood/storefront/internal/server/response"
)

// staticHandler serves the storefront single-page app. Paths without a file
// fall back to index.html so client-side routes survive a reload.
func (s *Server) staticHandler() http.Handler {
	var root fs.FS
	if s.config.StaticDir != "" {
		root = os.DirFS(s.config.StaticDir)
		s.logger.Info().Str("dir", s.config.StaticDir).Msg("Serving storefront from disk")
	} else {
		root = embedded.Web()
	}
	files := http.FileServerFS(root)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			w.Header().Set("Allow", "GET, HEAD")
			response.JSON(w, http.StatusMethodNotAllowed, response.Fail("METHOD_NOT_ALLOWED", "Method not allowed", r.Method))
			return
		}
		name := strings.TrimPrefix(path.Clean(r.URL.Path), "/")
		if name == "" {
			name = "index.html"
		}

		if info, err := fs.Stat(root, name); err != nil || info.IsDir() {
			if path.Ext(name) != "" {
				http.NotFound(w, r)
				return
			}
			serveIndex(w, r, root)
			return
		}

		if name == "index.html" {
			serveIndex(w, r, root)
			return
		}
		if strings.HasPrefix(name, "assets/") {
			w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
		}
		files.ServeHTTP(w, r)
	})
}

func serveIndex(w http.ResponseWriter, r *http.Request, root fs.FS) {
	data, err := fs.ReadFile(root, "index.html")
	if err != nil {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	_, _ = w.Write(data)
}
