package auth

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/gorilla/sessions"

	"github.com/tahcohcat/steamwrapped-web/config"
	"github.com/tahcohcat/steamwrapped-web/internal/logger"
	"github.com/tahcohcat/steamwrapped-web/internal/models"
)

const (
	sessionName   = "steamwrapped-session"
	steamIDKey    = "steam_id"
	openIDNS      = "http://specs.openid.net/auth/2.0"
	identifierSel = "http://specs.openid.net/auth/2.0/identifier_select"
)

var claimedIDPattern = regexp.MustCompile(`^https?://steamcommunity\.com/openid/id/(\d+)/?$`)

type ctxKey struct{}

// ProfileSource resolves the public profile of a freshly signed-in user.
type ProfileSource interface {
	GetPlayerSummary(ctx context.Context, steamID string) *models.PlayerSummary
}

// UserStore records signed-in users.
type UserStore interface {
	UpsertFromProfile(ctx context.Context, steamID string, profile *models.PlayerSummary) (*models.User, error)
}

// Steam signs users in through Steam OpenID 2.0 and keeps the steam id in
// a cookie session.
type Steam struct {
	store      *sessions.CookieStore
	openIDURL  string
	baseURL    string
	landingURL string
	profiles   ProfileSource
	users      UserStore
	httpClient *http.Client
	logger     *logger.Log
}

func New(cfg *config.Config, profiles ProfileSource, users UserStore) *Steam {
	store := sessions.NewCookieStore([]byte(cfg.Auth.SessionSecret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   7 * 24 * 60 * 60,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}

	return &Steam{
		store:      store,
		openIDURL:  cfg.Auth.OpenIDURL,
		baseURL:    strings.TrimRight(cfg.Server.BaseURL, "/"),
		landingURL: strings.TrimRight(cfg.Server.FrontendURL, "/"),
		profiles:   profiles,
		users:      users,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		logger:     logger.New().With("component", "auth"),
	}
}

// LoginHandler redirects to the Steam sign-in page.
func (s *Steam) LoginHandler(w http.ResponseWriter, r *http.Request) {
	params := url.Values{
		"openid.ns":         {openIDNS},
		"openid.mode":       {"checkid_setup"},
		"openid.return_to":  {s.baseURL + "/authorize"},
		"openid.realm":      {s.baseURL + "/"},
		"openid.identity":   {identifierSel},
		"openid.claimed_id": {identifierSel},
	}
	http.Redirect(w, r, s.openIDURL+"?"+params.Encode(), http.StatusFound)
}

// AuthorizeHandler verifies the OpenID assertion with Steam and starts the
// session.
func (s *Steam) AuthorizeHandler(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()

	valid, err := s.verify(r.Context(), params)
	if err != nil {
		s.logger.WithError(err).Warn("openid verification failed")
	}
	if !valid {
		http.Error(w, "Login Failed", http.StatusUnauthorized)
		return
	}

	steamID, ok := SteamIDFromClaimedID(params.Get("openid.claimed_id"))
	if !ok {
		http.Error(w, "Login Failed", http.StatusUnauthorized)
		return
	}

	session, _ := s.store.Get(r, sessionName)
	session.Values[steamIDKey] = steamID
	if err := session.Save(r, w); err != nil {
		s.logger.WithError(err).Error("failed to save session")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if profile := s.profiles.GetPlayerSummary(r.Context(), steamID); profile != nil {
		if _, err := s.users.UpsertFromProfile(r.Context(), steamID, profile); err != nil {
			s.logger.With("steam_id", steamID).WithError(err).Warn("failed to save user")
		}
	}

	http.Redirect(w, r, s.landingURL+"/generating", http.StatusFound)
}

func (s *Steam) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	session, _ := s.store.Get(r, sessionName)
	delete(session.Values, steamIDKey)
	session.Options.MaxAge = -1
	session.Save(r, w)
	http.Redirect(w, r, s.landingURL+"/", http.StatusFound)
}

// RequireSteamID rejects requests without a signed-in user and exposes the
// steam id to the next handler through the request context.
func (s *Steam) RequireSteamID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		steamID, ok := s.SessionSteamID(r)
		if !ok {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithSteamID(r.Context(), steamID)))
	})
}

// SessionSteamID reads the steam id from the session cookie.
func (s *Steam) SessionSteamID(r *http.Request) (string, bool) {
	session, err := s.store.Get(r, sessionName)
	if err != nil {
		return "", false
	}
	steamID, ok := session.Values[steamIDKey].(string)
	return steamID, ok && steamID != ""
}

// SetSession signs steamID in on w.
func (s *Steam) SetSession(w http.ResponseWriter, r *http.Request, steamID string) error {
	session, _ := s.store.Get(r, sessionName)
	session.Values[steamIDKey] = steamID
	return session.Save(r, w)
}

func WithSteamID(ctx context.Context, steamID string) context.Context {
	return context.WithValue(ctx, ctxKey{}, steamID)
}

func SteamIDFromContext(ctx context.Context) (string, bool) {
	steamID, ok := ctx.Value(ctxKey{}).(string)
	return steamID, ok && steamID != ""
}

// SteamIDFromClaimedID extracts the 64-bit steam id from a Steam OpenID
// claimed identifier.
func SteamIDFromClaimedID(claimedID string) (string, bool) {
	m := claimedIDPattern.FindStringSubmatch(claimedID)
	if m == nil {
		return "", false
	}
	return m[1], true
}

func (s *Steam) verify(ctx context.Context, params url.Values) (bool, error) {
	if params.Get("openid.claimed_id") == "" {
		return false, nil
	}

	check := url.Values{}
	for k, v := range params {
		check[k] = v
	}
	check.Set("openid.mode", "check_authentication")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.openIDURL, strings.NewReader(check.Encode()))
	if err != nil {
		return false, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("openid request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return false, fmt.Errorf("failed to read response body: %w", err)
	}

	return strings.Contains(string(body), "is_valid:true"), nil
}
