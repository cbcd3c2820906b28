package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/tahcohcat/steamwrapped-web/config"
	"github.com/tahcohcat/steamwrapped-web/internal/auth"
)

// RegisterRoutes mounts the sign-in flow, the pages, the signed-in API, the
// public shared views and the progress stream on r.
func RegisterRoutes(r *mux.Router, cfg config.ShareConfig, steamAuth *auth.Steam, wrapped *WrappedHandler, narration *NarrationHandler) {
	r.HandleFunc("/login", steamAuth.LoginHandler).Methods(http.MethodGet)
	r.HandleFunc("/authorize", steamAuth.AuthorizeHandler).Methods(http.MethodGet)
	r.HandleFunc("/logout", steamAuth.LogoutHandler).Methods(http.MethodGet, http.MethodPost)

	pages := NewPageHandler(steamAuth)
	r.HandleFunc("/", pages.Index).Methods(http.MethodGet)
	r.HandleFunc("/generating", pages.Private("generating.html")).Methods(http.MethodGet)
	r.HandleFunc("/dashboard", pages.Private("dashboard.html")).Methods(http.MethodGet)
	r.HandleFunc("/wrapped", pages.Private("wrapped.html")).Methods(http.MethodGet)
	r.PathPrefix("/static/").Handler(pages.Static()).Methods(http.MethodGet)

	limiter := newClientRateLimiter(cfg)

	public := r.NewRoute().Subrouter()
	public.Use(limiter.Middleware)
	public.HandleFunc("/api/v1/shared/{token:[0-9a-f]{16}}", wrapped.Shared).Methods(http.MethodGet)
	public.HandleFunc("/api/v1/shared/{token:[0-9a-f]{16}}/narration", narration.Narrate).Methods(http.MethodGet)
	public.HandleFunc("/shared/{token:[0-9a-f]{16}}", wrapped.SharedPage).Methods(http.MethodGet)

	private := r.PathPrefix("/api/v1").Subrouter()
	private.Use(steamAuth.RequireSteamID)
	private.HandleFunc("/dashboard", wrapped.Dashboard).Methods(http.MethodGet)
	private.HandleFunc("/wrapped", wrapped.Wrapped).Methods(http.MethodGet)

	share := r.PathPrefix("/api/v1/wrapped/share").Subrouter()
	share.Use(steamAuth.RequireSteamID, limiter.Middleware)
	share.HandleFunc("", wrapped.Share).Methods(http.MethodPost)
	share.HandleFunc("/regenerate", wrapped.RegenerateShare).Methods(http.MethodPost)

	ws := r.PathPrefix("/ws").Subrouter()
	ws.Use(steamAuth.RequireSteamID)
	ws.HandleFunc("/progress", wrapped.Progress).Methods(http.MethodGet)
}
