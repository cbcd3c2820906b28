package analytics

import (
	"fmt"

	"github.com/tahcohcat/steamwrapped-web/internal/models"
)

// Fixed baselines for the "average player" comparison.
const (
	avgHours            = 350
	avgGames            = 24
	avgNeverPlayed      = 12
	youRareAchievements = "0.4%"
	avgRareAchievements = "2.1%"
)

// Playtime bounds in minutes.
const (
	shameMinutes     = 60
	completedMinutes = 600
)

const energyDenominator = 10000.0

func (a *Analytics) countGames(keep func(models.Game) bool) int {
	n := 0
	for _, g := range a.snapshot.Games {
		if keep(g) {
			n++
		}
	}
	return n
}

func (a *Analytics) neverPlayed() int {
	return a.countGames(func(g models.Game) bool { return g.PlaytimeForever == 0 })
}

// DashboardStats reports library totals. PileOfShame counts every game under
// an hour, including the never played ones. Level and XP are left at zero.
func (a *Analytics) DashboardStats() models.DashboardStats {
	return models.DashboardStats{
		TotalPlaytimeHours: int(a.totalHours),
		GameCount:          len(a.snapshot.Games),
		PileOfShame:        a.countGames(func(g models.Game) bool { return g.PlaytimeForever < shameMinutes }),
		NeverPlayed:        a.neverPlayed(),
	}
}

// GamingEnergyScore is a linear engagement heuristic clamped to 1..99.
func (a *Analytics) GamingEnergyScore() models.EnergyScore {
	score := int(a.totalHours*2 + float64(len(a.snapshot.Games))*10 + float64(len(a.snapshot.Badges))*25)
	percentile := min(99, max(1, int(float64(score)/energyDenominator*100)))
	return models.EnergyScore{Score: score, Percentile: percentile}
}

func (a *Analytics) GlobalComparison() models.GlobalComparison {
	return models.GlobalComparison{
		Hours:            models.IntComparison{You: int(a.totalHours), Avg: avgHours},
		Games:            models.IntComparison{You: len(a.snapshot.Games), Avg: avgGames},
		RareAchievements: models.StringComparison{You: youRareAchievements, Avg: avgRareAchievements},
		NeverPlayed:      models.IntComparison{You: a.neverPlayed(), Avg: avgNeverPlayed},
	}
}

// GamesCategorized splits the whole library into four disjoint buckets.
func (a *Analytics) GamesCategorized() models.GamesCategorized {
	var c models.GamesCategorized
	for _, g := range a.snapshot.Games {
		switch p := g.PlaytimeForever; {
		case p <= 0:
			c.NeverTouched++
		case p > completedMinutes:
			c.Completed++
		case p > shameMinutes:
			c.Played++
		default:
			c.Abandoned++
		}
	}
	return c
}

func (a *Analytics) SleepDestroyer() models.SleepDestroyer {
	h := a.totalHours
	return models.SleepDestroyer{
		DaysLost:         int(h / 8),
		MoviesWatched:    int(h / 2.5),
		AnimeEpisodes:    int(h * 3),
		GamesPlayed:      a.countGames(func(g models.Game) bool { return g.PlaytimeForever > 0 }),
		GamesUnplayed:    a.neverPlayed(),
		SkillLevelGained: int(h / 10),
	}
}

func (a *Analytics) FunnyAnalogies() []string {
	h := a.totalHours
	return []string{
		fmt.Sprintf("You could have binged %d episodes of your favorite show.", int(h/1.5)),
		fmt.Sprintf("You could have read %d books from cover to cover.", int(h/8)),
		fmt.Sprintf("You could have driven %d hours to visit friends.", int(h/4)),
		fmt.Sprintf("You could have cooked %d homemade meals.", int(h/2)),
	}
}
