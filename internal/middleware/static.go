package middleware

import (
	"io/fs"
	"net/http"
	"path"
	"strconv"
	"strings"
	"time"
)

// Static serves the embedded assets under prefix. Directories are never
// listed and every file is sent with a public Cache-Control header.
func Static(fsys fs.FS, prefix string, maxAge time.Duration) http.Handler {
	files := http.StripPrefix(prefix, http.FileServerFS(fsys))
	cacheControl := "public, max-age=" + strconv.Itoa(int(maxAge.Seconds()))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimPrefix(path.Clean(strings.TrimPrefix(r.URL.Path, prefix)), "/")
		info, err := fs.Stat(fsys, name)
		if name == "" || err != nil || info.IsDir() {
			http.NotFound(w, r)
			return
		}

		w.Header().Set("Cache-Control", cacheControl)
		w.Header().Set("X-Content-Type-Options", "nosniff")
		files.ServeHTTP(w, r)
	})
}

// StripTrailingSlash redirects /path/ to /path, keeping the query string.
// GET and HEAD get a 301; other methods a 308 so the form body is resent.
func StripTrailingSlash(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p := r.URL.Path
		if p == "/" || !strings.HasSuffix(p, "/") {
			next.ServeHTTP(w, r)
			return
		}

		target := strings.TrimRight(p, "/")
		if target == "" {
			target = "/"
		}
		if r.URL.RawQuery != "" {
			target += "?" + r.URL.RawQuery
		}

		code := http.StatusPermanentRedirect
		if r.Method == http.MethodGet || r.Method == http.MethodHead {
			code = http.StatusMovedPermanently
		}
		http.Redirect(w, r, target, code)
	})
}
