package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/tahcohcat/steamwrapped-web/config"
	"github.com/tahcohcat/steamwrapped-web/internal/analytics"
	"github.com/tahcohcat/steamwrapped-web/internal/api"
	"github.com/tahcohcat/steamwrapped-web/internal/auth"
	"github.com/tahcohcat/steamwrapped-web/internal/cache"
	"github.com/tahcohcat/steamwrapped-web/internal/database"
	"github.com/tahcohcat/steamwrapped-web/internal/llm"
	"github.com/tahcohcat/steamwrapped-web/internal/logger"
	"github.com/tahcohcat/steamwrapped-web/internal/services"
	"github.com/tahcohcat/steamwrapped-web/internal/steam"
	"github.com/tahcohcat/steamwrapped-web/internal/tts"
	"github.com/tahcohcat/steamwrapped-web/internal/websocket"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Init(logger.LogLevel(cfg.Log.Level), cfg.Log.Mode); err != nil {
		log.Fatalf("Failed to initialise logger: %v", err)
	}
	defer logger.Sync()
	l := logger.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewDB(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	store, err := newCache(cfg.Cache)
	if err != nil {
		log.Fatalf("Failed to initialize cache: %v", err)
	}
	defer store.Close()

	if cfg.Steam.APIKey == "" {
		l.Warn("STEAM_API_KEY is not set; every Steam lookup will come back empty")
	}
	gateway := steam.NewClient(cfg.Steam, store, cfg.Cache.Prefix)

	classifier := analytics.NewClassifier(nil)
	model, err := llm.NewLLMClient(cfg)
	switch {
	case errors.Is(err, llm.ErrProviderDisabled):
		l.With("provider", cfg.LLM.Provider).Info("personality generation disabled")
	case err != nil:
		l.WithError(err).Warn("failed to create llm client, personality generation disabled")
	default:
		classifier = analytics.NewClassifier(model)
	}

	var narrator tts.Narrator = tts.NewDummyTts()
	if cfg.Tts.Enabled {
		google, err := tts.NewGoogleTTS(ctx, cfg.Tts)
		if err != nil {
			l.WithError(err).Warn("failed to create google tts client, narration disabled")
		} else {
			defer google.Close()
			narrator = google
		}
	}

	hub := websocket.NewHub(cfg.Server.AllowedOrigins)
	go hub.Run(ctx)

	userService := services.NewUserService(db)
	snapshotService := services.NewSnapshotService(db)
	steamAuth := auth.New(cfg, gateway, userService)

	wrapped := api.NewWrappedHandler(gateway, classifier, snapshotService, hub, cfg.Server.BaseURL)
	narration := api.NewNarrationHandler(wrapped, narrator)

	r := mux.NewRouter()
	api.RegisterRoutes(r, cfg.Share, steamAuth, wrapped, narration)
	r.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}).Methods(http.MethodGet)

	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.Server.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           c.Handler(r),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	l.With("port", cfg.Server.Port, "database", db.Driver(), "cache", cfg.Cache.Backend, "narrator", narrator.Name()).
		Info("Steam Wrapped server starting")

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		l.WithError(err).Error("Failed to start server")
	}
}

func newCache(cfg config.CacheConfig) (cache.Cache, error) {
	if cfg.Backend == "redis" {
		return cache.NewRedis(cfg.RedisAddr)
	}
	return cache.NewMemory(), nil
}
