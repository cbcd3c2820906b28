package steam

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/tahcohcat/steamwrapped-web/internal/models"
)

const lookupConcurrency = 5

// Progress stages reported by LoadSnapshot.
const (
	StageProfile      = "profile"
	StageLibrary      = "library"
	StageDetails      = "details"
	StageAchievements = "achievements"
	StageDone         = "done"
)

// LoadSnapshot gathers everything the analytics engine needs for steamID.
// Missing data sets come back empty; LoadSnapshot itself never fails.
// progress may be nil.
func (c *Client) LoadSnapshot(ctx context.Context, steamID string, progress func(stage string)) *models.UserSnapshot {
	report := func(stage string) {
		if progress != nil {
			progress(stage)
		}
	}

	snap := &models.UserSnapshot{
		SteamID:      steamID,
		Details:      map[int]*models.GameDetails{},
		Achievements: map[int][]models.AchievementRecord{},
	}

	report(StageProfile)
	var owned, recent *models.OwnedGames
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { snap.Profile = c.GetPlayerSummary(gctx, steamID); return nil })
	g.Go(func() error { snap.Friends = c.GetFriendsList(gctx, steamID); return nil })
	g.Go(func() error { owned = c.GetOwnedGames(gctx, steamID); return nil })
	g.Go(func() error { recent = c.GetRecentGames(gctx, steamID); return nil })
	g.Go(func() error { snap.Badges = c.GetBadges(gctx, steamID); return nil })
	g.Go(func() error { snap.Level = c.GetSteamLevel(gctx, steamID); return nil })
	_ = g.Wait()

	report(StageLibrary)
	if owned != nil {
		snap.Games = owned.Games
	}
	if recent != nil {
		snap.RecentGames = recent.Games
	}

	ranked := models.RankByPlaytime(snap.Games)

	var mu sync.Mutex
	var details sync.WaitGroup
	g, gctx = errgroup.WithContext(ctx)
	g.SetLimit(lookupConcurrency)

	report(StageDetails)
	for _, game := range head(ranked, models.MetadataScope) {
		appID := game.AppID
		details.Add(1)
		g.Go(func() error {
			defer details.Done()
			d := c.GetGameDetails(gctx, appID)
			if d == nil {
				return nil
			}
			mu.Lock()
			snap.Details[appID] = d
			mu.Unlock()
			return nil
		})
	}

	// achievement lookups share the worker limit but are announced only
	// once every details lookup is done
	for _, game := range head(ranked, models.AchievementScope) {
		appID := game.AppID
		g.Go(func() error {
			records := c.GetGameAchievements(gctx, steamID, appID)
			if records == nil {
				return nil
			}
			mu.Lock()
			snap.Achievements[appID] = records
			mu.Unlock()
			return nil
		})
	}
	details.Wait()
	report(StageAchievements)
	_ = g.Wait()

	report(StageDone)
	return snap
}

func head(games []models.Game, n int) []models.Game {
	if n > len(games) {
		n = len(games)
	}
	return games[:n]
}
