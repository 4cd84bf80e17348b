package api

import (
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// staticContentTypes maps file extensions to the Content-Type the game
// frontend expects. Unknown extensions fall back to
// application/octet-stream.
var staticContentTypes = map[string]string{
	"htm":  "text/html",
	"html": "text/html",
	"css":  "text/css",
	"txt":  "text/plain",
	"js":   "text/javascript",
	"json": "application/json",
	"xml":  "application/xml",
	"png":  "image/png",
	"jpg":  "image/jpeg",
	"jpe":  "image/jpeg",
	"jpeg": "image/jpeg",
	"gif":  "image/gif",
	"bmp":  "image/bmp",
	"ico":  "image/vnd.microsoft.icon",
	"tiff": "image/tiff",
	"tif":  "image/tiff",
	"svg":  "image/svg+xml",
	"svgz": "image/svg+xml",
	"mp3":  "audio/mpeg",
}

// StaticHandler serves the game frontend from the www root. Unlike
// http.FileServer it answers escapes and misses with the exact plain
// text bodies the frontend's error pages key on.
type StaticHandler struct {
	root string
}

// NewStaticHandler serves files rooted at root. The path is made
// absolute once so containment checks are plain prefix compares.
func NewStaticHandler(root string) *StaticHandler {
	if abs, err := filepath.Abs(root); err == nil {
		root = abs
	}
	return &StaticHandler{root: root}
}

func (s *StaticHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		writePlain(w, http.StatusMethodNotAllowed, "Invalid method")
		return
	}

	// r.URL.Path arrives percent-decoded. Join cleans dot segments, so
	// an escape attempt resolves to a path outside the root.
	full := filepath.Join(s.root, filepath.FromSlash(r.URL.Path))
	if full != s.root && !strings.HasPrefix(full, s.root+string(filepath.Separator)) {
		writePlain(w, http.StatusBadRequest, "Bad request")
		return
	}

	info, err := os.Stat(full)
	if err != nil {
		writePlain(w, http.StatusNotFound, "File not found")
		return
	}
	if info.IsDir() {
		full = filepath.Join(full, "index.html")
		if info, err = os.Stat(full); err != nil {
			writePlain(w, http.StatusNotFound, "File not found")
			return
		}
	}

	f, err := os.Open(full)
	if err != nil {
		writePlain(w, http.StatusNotFound, "File not found")
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", contentTypeFor(full))
	w.Header().Set("Content-Length", strconv.FormatInt(info.Size(), 10))
	w.WriteHeader(http.StatusOK)
	if r.Method != http.MethodHead {
		io.Copy(w, f)
	}
}

func contentTypeFor(path string) string {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	if ct, ok := staticContentTypes[ext]; ok {
		return ct
	}
	return "application/octet-stream"
}

func writePlain(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain")
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(status)
	io.WriteString(w, body)
}
