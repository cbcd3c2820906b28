package analytics

import (
	"context"

	"github.com/tahcohcat/steamwrapped-web/internal/models"
)

const unknownGenre = "Unknown"

// Analytics derives the wrapped metrics for one user snapshot. It does no
// I/O of its own apart from the personality classifier.
type Analytics struct {
	snapshot   *models.UserSnapshot
	classifier *Classifier

	totalMinutes int
	totalHours   float64
	ranked       []models.Game
}

// New prepares the engine for snap. A nil classifier behaves like one with
// no text generator configured.
func New(snap *models.UserSnapshot, classifier *Classifier) *Analytics {
	if snap == nil {
		snap = &models.UserSnapshot{}
	}
	if classifier == nil {
		classifier = NewClassifier(nil)
	}

	total := 0
	for _, g := range snap.Games {
		total += g.PlaytimeForever
	}

	return &Analytics{
		snapshot:     snap,
		classifier:   classifier,
		totalMinutes: total,
		totalHours:   float64(total) / 60,
		ranked:       models.RankByPlaytime(snap.Games),
	}
}

// TotalHours is the summed playtime of every owned game.
func (a *Analytics) TotalHours() float64 {
	return a.totalHours
}

// TopGames returns the n most played games.
func (a *Analytics) TopGames(n int) []models.Game {
	if n < 0 {
		n = 0
	}
	if n > len(a.ranked) {
		n = len(a.ranked)
	}
	top := make([]models.Game, n)
	copy(top, a.ranked[:n])
	return top
}

// TopGame returns the most played game or nil for an empty library.
func (a *Analytics) TopGame() *models.Game {
	if len(a.ranked) == 0 {
		return nil
	}
	top := a.ranked[0]
	return &top
}

// RecentGames returns at most n recently played games in upstream order.
func (a *Analytics) RecentGames(n int) []models.Game {
	recent := a.snapshot.RecentGames
	if n < len(recent) {
		recent = recent[:n]
	}
	out := make([]models.Game, len(recent))
	copy(out, recent)
	return out
}

// Build computes every metric group once.
func (a *Analytics) Build(ctx context.Context) *models.MetricBundle {
	genres := a.GenreBreakdown()
	topGenre, topGenreHours := unknownGenre, 0
	if len(genres) > 0 {
		topGenre, topGenreHours = genres[0].Genre, genres[0].Hours
	}

	return &models.MetricBundle{
		Stats:            a.DashboardStats(),
		TopGames:         a.TopGames(5),
		TopGame:          a.TopGame(),
		Timeline:         a.PlaytimeTimeline(),
		GenreBreakdown:   genres,
		TopGenre:         topGenre,
		TopGenreHours:    topGenreHours,
		TopDevelopers:    a.TopDevelopers(),
		AchievementStats: a.AchievementStats(),
		AchievementScore: a.AchievementScore(),
		EnergyScore:      a.GamingEnergyScore(),
		Personality:      a.PlaystylePersonality(ctx),
		GlobalComparison: a.GlobalComparison(),
		GamesCategorized: a.GamesCategorized(),
		SleepDestroyer:   a.SleepDestroyer(),
		Analogies:        a.FunnyAnalogies(),
	}
}

// PlaystylePersonality classifies the user from their top and recent games.
func (a *Analytics) PlaystylePersonality(ctx context.Context) models.Personality {
	return a.classifier.Classify(ctx, gameNames(a.TopGames(5)), gameNames(a.RecentGames(5)), int(a.totalHours))
}

func gameNames(games []models.Game) []string {
	names := make([]string, 0, len(games))
	for _, g := range games {
		names = append(names, g.Name)
	}
	return names
}
