package analytics

import (
	"github.com/tahcohcat/steamwrapped-web/internal/models"
)

const (
	ultraRareThreshold = 5.0
	rareThreshold      = 25.0
	noBestGame         = "N/A"
)

func (a *Analytics) achievements(appID int) []models.AchievementRecord {
	if a.snapshot.Achievements == nil {
		return nil
	}
	return a.snapshot.Achievements[appID]
}

func countUnlocked(records []models.AchievementRecord) int {
	n := 0
	for _, r := range records {
		if r.Achieved {
			n++
		}
	}
	return n
}

func percentOf(part, whole int) int {
	if whole <= 0 {
		return 0
	}
	return int(float64(part) / float64(whole) * 100)
}

// AchievementStats summarises unlocks across the top games: completion of
// the most played game, rare and ultra-rare unlock counts, and the rarest
// unlock with the game it belongs to. It returns nil for an empty library.
func (a *Analytics) AchievementStats() *models.AchievementStats {
	top := a.TopGames(models.AchievementScope)
	if len(top) == 0 {
		return nil
	}

	stats := &models.AchievementStats{TopGameName: top[0].Name}

	for _, g := range top {
		var gameRarest *models.AchievementRecord
		for _, r := range a.achievements(g.AppID) {
			if !r.Achieved {
				continue
			}
			rarity := r.RarityOrCommon()
			switch {
			case rarity <= ultraRareThreshold:
				stats.UltraRareCount++
			case rarity <= rareThreshold:
				stats.RareCount++
			}
			if gameRarest == nil || rarity < gameRarest.RarityOrCommon() {
				record := r
				gameRarest = &record
			}
		}

		if gameRarest == nil {
			continue
		}
		if stats.Rarest == nil || gameRarest.RarityOrCommon() < stats.Rarest.RarityOrCommon() {
			stats.Rarest = gameRarest
			stats.TopGameName = g.Name
		}
	}

	records := a.achievements(top[0].AppID)
	stats.TopGameTotal = len(records)
	stats.TotalUnlocked = countUnlocked(records)
	stats.CompletionRate = percentOf(stats.TotalUnlocked, stats.TopGameTotal)

	return stats
}

// AchievementScore aggregates completion over the top games.
// RankPercentile is derived from the completion rate, not from other players.
func (a *Analytics) AchievementScore() models.AchievementScore {
	score := models.AchievementScore{BestGame: models.GameRate{Name: noBestGame}}
	total := 0

	for _, g := range a.TopGames(models.AchievementScope) {
		records := a.achievements(g.AppID)
		if len(records) == 0 {
			continue
		}
		unlocked := countUnlocked(records)
		total += len(records)
		score.TotalUnlocked += unlocked

		rate := percentOf(unlocked, len(records))
		if rate == 100 {
			score.PerfectGames++
		}
		if rate > score.BestGame.Rate {
			score.BestGame = models.GameRate{Name: g.Name, Rate: rate}
		}
		if unlocked == 0 {
			score.ZeroGames++
		}
	}

	score.CompletionRate = percentOf(score.TotalUnlocked, total)
	score.RankPercentile = max(1, 100-score.CompletionRate)
	return score
}
