package services

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"regexp"
	"testing"

	"github.com/tahcohcat/steamwrapped-web/config"
	"github.com/tahcohcat/steamwrapped-web/internal/database"
	"github.com/tahcohcat/steamwrapped-web/internal/models"
)

var tokenPattern = regexp.MustCompile(`^[0-9a-f]{16}$`)

func newTestDB(t *testing.T) *database.DB {
	t.Helper()
	db, err := database.NewDB(config.DatabaseConfig{
		Driver: database.DriverSQLite,
		DSN:    filepath.Join(t.TempDir(), "test.db"),
	})
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func sampleBundle(hours int) *models.MetricBundle {
	rarity := 3.2
	return &models.MetricBundle{
		Stats:    models.DashboardStats{TotalPlaytimeHours: hours, GameCount: 2, PileOfShame: 1, NeverPlayed: 1},
		TopGames: []models.Game{{AppID: 570, Name: "Dota 2", PlaytimeForever: hours * 60}},
		TopGame:  &models.Game{AppID: 570, Name: "Dota 2", PlaytimeForever: hours * 60},
		Timeline: models.Timeline{
			Data:        []models.MonthHours{{Month: "2024-03", Hours: hours}},
			MostActive:  models.MonthHours{Month: "2024-03", Hours: hours},
			LeastActive: models.MonthHours{Month: "2024-03", Hours: hours},
		},
		GenreBreakdown: []models.GenreShare{{Genre: "Strategy", Percent: 100, Hours: hours}},
		TopGenre:       "Strategy",
		TopGenreHours:  hours,
		TopDevelopers:  []models.DeveloperHours{{Name: "Valve", Hours: float64(hours)}},
		AchievementStats: &models.AchievementStats{
			TotalUnlocked: 1,
			Rarest:        &models.AchievementRecord{APIName: "WIN", Achieved: true, Rarity: &rarity},
			TopGameName:   "Dota 2",
		},
		AchievementScore: models.AchievementScore{BestGame: models.GameRate{Name: "N/A"}, RankPercentile: 100},
		EnergyScore:      models.EnergyScore{Score: hours * 2, Percentile: 1},
		Personality:      models.Personality{Title: "Strategic Thinker", Desc: "Plans ahead.", Emoji: "🧠", Archetype: "Strategic Thinker"},
		GlobalComparison: models.GlobalComparison{
			Hours:            models.IntComparison{You: hours, Avg: 350},
			RareAchievements: models.StringComparison{You: "0.4%", Avg: "2.1%"},
		},
		GamesCategorized: models.GamesCategorized{Completed: 1, NeverTouched: 1},
		SleepDestroyer:   models.SleepDestroyer{DaysLost: hours / 8},
		Analogies:        []string{"You could have cooked 5 homemade meals."},
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	ctx := context.Background()
	svc := NewSnapshotService(newTestDB(t))

	bundle := sampleBundle(10)
	token, err := svc.Put(ctx, "7656", bundle)
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if !tokenPattern.MatchString(token) {
		t.Fatalf("expected 16 hex characters, got %q", token)
	}

	got, err := svc.Get(ctx, token)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !reflect.DeepEqual(got, bundle) {
		t.Fatalf("bundle changed in storage:\nwant %+v\ngot  %+v", bundle, got)
	}
}

func TestSnapshotPutOverwritesPerOwner(t *testing.T) {
	ctx := context.Background()
	svc := NewSnapshotService(newTestDB(t))

	first, err := svc.Put(ctx, "7656", sampleBundle(10))
	if err != nil {
		t.Fatalf("first put: %v", err)
	}
	before, err := svc.GetByOwner(ctx, "7656")
	if err != nil {
		t.Fatalf("get by owner: %v", err)
	}

	second, err := svc.Put(ctx, "7656", sampleBundle(20))
	if err != nil {
		t.Fatalf("second put: %v", err)
	}
	if first != second {
		t.Fatalf("expected the token to be kept, got %q then %q", first, second)
	}

	got, err := svc.Get(ctx, first)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Stats.TotalPlaytimeHours != 20 {
		t.Fatalf("expected the newer payload, got %d hours", got.Stats.TotalPlaytimeHours)
	}

	after, err := svc.GetByOwner(ctx, "7656")
	if err != nil {
		t.Fatalf("get by owner: %v", err)
	}
	if after.ID != before.ID {
		t.Fatalf("expected stable id, got %q then %q", before.ID, after.ID)
	}

	other, err := svc.Put(ctx, "9999", sampleBundle(1))
	if err != nil {
		t.Fatalf("other owner put: %v", err)
	}
	if other == first {
		t.Fatal("different owners must get different tokens")
	}
}

func TestSnapshotNotFound(t *testing.T) {
	ctx := context.Background()
	svc := NewSnapshotService(newTestDB(t))

	if _, err := svc.Get(ctx, "0123456789abcdef"); !errors.Is(err, ErrSnapshotNotFound) {
		t.Fatalf("expected ErrSnapshotNotFound, got %v", err)
	}
	if _, err := svc.GetByOwner(ctx, "nobody"); !errors.Is(err, ErrSnapshotNotFound) {
		t.Fatalf("expected ErrSnapshotNotFound, got %v", err)
	}
	if _, err := svc.RegenerateToken(ctx, "nobody"); !errors.Is(err, ErrSnapshotNotFound) {
		t.Fatalf("expected ErrSnapshotNotFound, got %v", err)
	}
}

func TestRegenerateToken(t *testing.T) {
	ctx := context.Background()
	svc := NewSnapshotService(newTestDB(t))

	old, err := svc.Put(ctx, "7656", sampleBundle(10))
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	before, _ := svc.GetByOwner(ctx, "7656")

	fresh, err := svc.RegenerateToken(ctx, "7656")
	if err != nil {
		t.Fatalf("regenerate: %v", err)
	}
	if fresh == old || !tokenPattern.MatchString(fresh) {
		t.Fatalf("expected a new 16 hex token, got %q (old %q)", fresh, old)
	}

	if _, err := svc.Get(ctx, old); !errors.Is(err, ErrSnapshotNotFound) {
		t.Fatalf("old token should stop resolving, got %v", err)
	}
	if got, err := svc.Get(ctx, fresh); err != nil || got.Stats.TotalPlaytimeHours != 10 {
		t.Fatalf("new token should serve the same payload, got %+v %v", got, err)
	}

	after, _ := svc.GetByOwner(ctx, "7656")
	if after.ID != before.ID {
		t.Fatalf("regenerating must keep the id, got %q then %q", before.ID, after.ID)
	}

	again, err := svc.Put(ctx, "7656", sampleBundle(30))
	if err != nil {
		t.Fatalf("put after regenerate: %v", err)
	}
	if again != fresh {
		t.Fatalf("put should keep the regenerated token, got %q want %q", again, fresh)
	}
}

func TestNewToken(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		token, err := NewToken()
		if err != nil {
			t.Fatalf("new token: %v", err)
		}
		if !tokenPattern.MatchString(token) {
			t.Fatalf("unexpected token %q", token)
		}
		if seen[token] {
			t.Fatalf("duplicate token %q", token)
		}
		seen[token] = true
	}
}
