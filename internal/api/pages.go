package api

import (
	"embed"
	"io/fs"
	"net/http"
)

//go:embed web
var webFiles embed.FS

// SessionReader reports the signed-in steam id of a request.
type SessionReader interface {
	SessionSteamID(r *http.Request) (string, bool)
}

// PageHandler serves the bundled HTML pages. The pages render through the
// JSON API; anonymous visitors are sent back to the index.
type PageHandler struct {
	sessions SessionReader
	static   http.Handler
}

func NewPageHandler(sessions SessionReader) *PageHandler {
	static, err := fs.Sub(webFiles, "web/static")
	if err != nil {
		panic(err)
	}
	return &PageHandler{
		sessions: sessions,
		static:   http.StripPrefix("/static/", http.FileServer(http.FS(static))),
	}
}

// GET /
func (p *PageHandler) Index(w http.ResponseWriter, r *http.Request) {
	if _, ok := p.sessions.SessionSteamID(r); ok {
		http.Redirect(w, r, "/dashboard", http.StatusFound)
		return
	}
	renderPage(w, "index.html")
}

// Private wraps a page that needs a signed-in user.
func (p *PageHandler) Private(page string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := p.sessions.SessionSteamID(r); !ok {
			http.Redirect(w, r, "/", http.StatusFound)
			return
		}
		renderPage(w, page)
	}
}

func (p *PageHandler) Static() http.Handler {
	return p.static
}

// GET /shared/{token} - public page of a shared wrapped
func (h *WrappedHandler) SharedPage(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.sharedBundle(w, r); !ok {
		return
	}
	renderPage(w, "shared.html")
}

func renderPage(w http.ResponseWriter, page string) {
	body, err := webFiles.ReadFile("web/" + page)
	if err != nil {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.Write(body)
}
