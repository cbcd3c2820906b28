package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/tahcohcat/steamwrapped-web/internal/analytics"
	"github.com/tahcohcat/steamwrapped-web/internal/auth"
	"github.com/tahcohcat/steamwrapped-web/internal/logger"
	"github.com/tahcohcat/steamwrapped-web/internal/models"
	"github.com/tahcohcat/steamwrapped-web/internal/services"
	"github.com/tahcohcat/steamwrapped-web/internal/steam"
	"github.com/tahcohcat/steamwrapped-web/internal/websocket"
)

const recentLimit = 8

// SnapshotLoader fetches the raw Steam data of one user.
type SnapshotLoader interface {
	LoadSnapshot(ctx context.Context, steamID string, progress func(stage string)) *models.UserSnapshot
}

// SnapshotStore persists shared wrapped bundles.
type SnapshotStore interface {
	Put(ctx context.Context, steamID string, bundle *models.MetricBundle) (string, error)
	Get(ctx context.Context, token string) (*models.MetricBundle, error)
	RegenerateToken(ctx context.Context, steamID string) (string, error)
}

// ProgressHub streams generation progress to the user's pages.
type ProgressHub interface {
	Publish(steamID string, p websocket.Progress)
	ServeWS(w http.ResponseWriter, r *http.Request, steamID string)
}

var stageMessages = map[string]string{
	steam.StageProfile:      "Fetching your profile...",
	steam.StageLibrary:      "Scanning your library...",
	steam.StageDetails:      "Looking up your top games...",
	steam.StageAchievements: "Counting your achievements...",
	steam.StageDone:         "Crunching the numbers...",
}

type WrappedHandler struct {
	gateway    SnapshotLoader
	classifier *analytics.Classifier
	snapshots  SnapshotStore
	hub        ProgressHub
	baseURL    string
	logger     *logger.Log
}

func NewWrappedHandler(gateway SnapshotLoader, classifier *analytics.Classifier, snapshots SnapshotStore, hub ProgressHub, baseURL string) *WrappedHandler {
	return &WrappedHandler{
		gateway:    gateway,
		classifier: classifier,
		snapshots:  snapshots,
		hub:        hub,
		baseURL:    strings.TrimRight(baseURL, "/"),
		logger:     logger.New().With("component", "api"),
	}
}

type timelineStats struct {
	MostActiveMonth  string `json:"most_active_month"`
	LeastActiveMonth string `json:"least_active_month"`
}

type dashboardResponse struct {
	User             *models.PlayerSummary    `json:"user"`
	Friends          *models.FriendsList      `json:"friends"`
	Stats            models.DashboardStats    `json:"stats"`
	Recent           []models.Game            `json:"recent"`
	TopGames         []models.Game            `json:"top_games"`
	TopGame          *models.Game             `json:"top_game"`
	Personality      models.Personality       `json:"personality"`
	Timeline         []models.MonthHours      `json:"timeline"`
	TimelineStats    timelineStats            `json:"timeline_stats"`
	GenreBreakdown   []models.GenreShare      `json:"genre_breakdown"`
	TopDevelopers    []models.DeveloperHours  `json:"top_developers"`
	AchievementStats *models.AchievementStats `json:"achievement_stats"`
	AchievementScore models.AchievementScore  `json:"achievement_score"`
	EnergyScore      int                      `json:"energy_score"`
	EnergyPercentile int                      `json:"energy_percentile"`
	GlobalComparison models.GlobalComparison  `json:"global_comparison"`
	GamesCategorized models.GamesCategorized  `json:"games_categorized"`
	Badges           []models.Badge           `json:"badges"`
	SleepDestroyer   models.SleepDestroyer    `json:"sleep_destroyer"`
}

type wrappedResponse struct {
	User           *models.PlayerSummary   `json:"user"`
	Stats          models.DashboardStats   `json:"stats"`
	TopGame        *models.Game            `json:"top_game"`
	Top5Games      []models.Game           `json:"top_5_games"`
	TopDevelopers  []models.DeveloperHours `json:"top_developers"`
	TopGenre       string                  `json:"top_genre"`
	TopGenreHours  int                     `json:"top_genre_hours"`
	EnergyScore    int                     `json:"energy_score"`
	SleepDestroyer models.SleepDestroyer   `json:"sleep_destroyer"`
	Analogies      []string                `json:"analogies"`
	GenreBreakdown []models.GenreShare     `json:"genre_breakdown"`
	Personality    models.Personality      `json:"personality"`
}

type shareResponse struct {
	Token string `json:"token"`
	URL   string `json:"url"`
}

// build loads the user's data and derives the bundle. It reports false
// after writing the error response when the profile is unavailable.
func (h *WrappedHandler) build(w http.ResponseWriter, r *http.Request, steamID string) (*models.UserSnapshot, *models.MetricBundle, bool) {
	snap := h.gateway.LoadSnapshot(r.Context(), steamID, func(stage string) {
		if h.hub != nil {
			h.hub.Publish(steamID, websocket.Progress{Stage: stage, Message: stageMessages[stage]})
		}
	})

	if snap.Profile == nil {
		h.logger.With("steam_id", steamID).Warn("profile unavailable")
		writeError(w, http.StatusBadGateway, "Error fetching profile")
		return nil, nil, false
	}

	bundle := analytics.New(snap, h.classifier).Build(r.Context())

	if h.hub != nil {
		h.hub.Publish(steamID, websocket.Progress{Stage: "ready", Message: "Your wrapped is ready!", Done: true})
	}
	return snap, bundle, true
}

// GET /api/v1/dashboard
func (h *WrappedHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	steamID, _ := auth.SteamIDFromContext(r.Context())

	snap, bundle, ok := h.build(w, r, steamID)
	if !ok {
		return
	}

	stats := bundle.Stats
	stats.Level = snap.Level

	recent := snap.RecentGames
	if len(recent) > recentLimit {
		recent = recent[:recentLimit]
	}
	if recent == nil {
		recent = []models.Game{}
	}
	badges := snap.Badges
	if badges == nil {
		badges = []models.Badge{}
	}

	writeJSON(w, http.StatusOK, dashboardResponse{
		User:        snap.Profile,
		Friends:     snap.Friends,
		Stats:       stats,
		Recent:      recent,
		TopGames:    bundle.TopGames,
		TopGame:     bundle.TopGame,
		Personality: bundle.Personality,
		Timeline:    bundle.Timeline.Data,
		TimelineStats: timelineStats{
			MostActiveMonth:  bundle.Timeline.MostActive.Month,
			LeastActiveMonth: bundle.Timeline.LeastActive.Month,
		},
		GenreBreakdown:   bundle.GenreBreakdown,
		TopDevelopers:    bundle.TopDevelopers,
		AchievementStats: bundle.AchievementStats,
		AchievementScore: bundle.AchievementScore,
		EnergyScore:      bundle.EnergyScore.Score,
		EnergyPercentile: bundle.EnergyScore.Percentile,
		GlobalComparison: bundle.GlobalComparison,
		GamesCategorized: bundle.GamesCategorized,
		Badges:           badges,
		SleepDestroyer:   bundle.SleepDestroyer,
	})
}

// GET /api/v1/wrapped
func (h *WrappedHandler) Wrapped(w http.ResponseWriter, r *http.Request) {
	steamID, _ := auth.SteamIDFromContext(r.Context())

	snap, bundle, ok := h.build(w, r, steamID)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, wrappedResponse{
		User:           snap.Profile,
		Stats:          bundle.Stats,
		TopGame:        bundle.TopGame,
		Top5Games:      bundle.TopGames,
		TopDevelopers:  bundle.TopDevelopers,
		TopGenre:       bundle.TopGenre,
		TopGenreHours:  bundle.TopGenreHours,
		EnergyScore:    bundle.EnergyScore.Score,
		SleepDestroyer: bundle.SleepDestroyer,
		Analogies:      bundle.Analogies,
		GenreBreakdown: bundle.GenreBreakdown,
		Personality:    bundle.Personality,
	})
}

// POST /api/v1/wrapped/share
func (h *WrappedHandler) Share(w http.ResponseWriter, r *http.Request) {
	steamID, _ := auth.SteamIDFromContext(r.Context())

	_, bundle, ok := h.build(w, r, steamID)
	if !ok {
		return
	}

	token, err := h.snapshots.Put(r.Context(), steamID, bundle)
	if err != nil {
		h.logger.With("steam_id", steamID).WithError(err).Error("failed to store shared snapshot")
		writeError(w, http.StatusInternalServerError, "Failed to share wrapped")
		return
	}

	writeJSON(w, http.StatusOK, shareResponse{Token: token, URL: h.shareURL(token)})
}

// POST /api/v1/wrapped/share/regenerate
func (h *WrappedHandler) RegenerateShare(w http.ResponseWriter, r *http.Request) {
	steamID, _ := auth.SteamIDFromContext(r.Context())

	token, err := h.snapshots.RegenerateToken(r.Context(), steamID)
	if errors.Is(err, services.ErrSnapshotNotFound) {
		writeError(w, http.StatusNotFound, "Nothing shared yet")
		return
	} else if err != nil {
		h.logger.With("steam_id", steamID).WithError(err).Error("failed to regenerate share token")
		writeError(w, http.StatusInternalServerError, "Failed to regenerate link")
		return
	}

	writeJSON(w, http.StatusOK, shareResponse{Token: token, URL: h.shareURL(token)})
}

// GET /api/v1/shared/{token}
func (h *WrappedHandler) Shared(w http.ResponseWriter, r *http.Request) {
	bundle, ok := h.sharedBundle(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, bundle)
}

func (h *WrappedHandler) sharedBundle(w http.ResponseWriter, r *http.Request) (*models.MetricBundle, bool) {
	token := mux.Vars(r)["token"]

	bundle, err := h.snapshots.Get(r.Context(), token)
	if errors.Is(err, services.ErrSnapshotNotFound) {
		writeError(w, http.StatusNotFound, "Shared wrapped not found")
		return nil, false
	} else if err != nil {
		h.logger.WithError(err).Error("failed to load shared snapshot")
		writeError(w, http.StatusInternalServerError, "Failed to load shared wrapped")
		return nil, false
	}
	return bundle, true
}

// GET /ws/progress
func (h *WrappedHandler) Progress(w http.ResponseWriter, r *http.Request) {
	steamID, _ := auth.SteamIDFromContext(r.Context())
	if h.hub == nil {
		writeError(w, http.StatusServiceUnavailable, "Progress stream unavailable")
		return
	}
	h.hub.ServeWS(w, r, steamID)
}

func (h *WrappedHandler) shareURL(token string) string {
	return h.baseURL + "/shared/" + token
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
