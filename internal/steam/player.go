package steam

import (
	"context"
	"fmt"
	"net/url"

	"golang.org/x/sync/errgroup"

	"github.com/tahcohcat/steamwrapped-web/internal/cache"
	"github.com/tahcohcat/steamwrapped-web/internal/models"
)

const badgeInfoConcurrency = 4

func (c *Client) GetPlayerSummary(ctx context.Context, steamID string) *models.PlayerSummary {
	summary, _ := fetch(ctx, c, "GetPlayerSummary", cache.TTLShort, []any{steamID},
		func(ctx context.Context) (*models.PlayerSummary, error) {
			if err := c.requireKey(); err != nil {
				return nil, err
			}
			var resp struct {
				Response struct {
					Players []models.PlayerSummary `json:"players"`
				} `json:"response"`
			}
			if err := c.getJSON(ctx, c.apiURL("/ISteamUser/GetPlayerSummaries/v2/", url.Values{"steamids": {steamID}}), &resp); err != nil {
				return nil, err
			}
			if len(resp.Response.Players) == 0 {
				return nil, errNoData
			}
			return &resp.Response.Players[0], nil
		})
	return summary
}

func (c *Client) GetFriendsList(ctx context.Context, steamID string) *models.FriendsList {
	friends, _ := fetch(ctx, c, "GetFriendsList", cache.TTLShort, []any{steamID},
		func(ctx context.Context) (*models.FriendsList, error) {
			if err := c.requireKey(); err != nil {
				return nil, err
			}
			var resp struct {
				FriendsList struct {
					Friends []models.Friend `json:"friends"`
				} `json:"friendslist"`
			}
			params := url.Values{"steamid": {steamID}, "relationship": {"friend"}}
			if err := c.getJSON(ctx, c.apiURL("/ISteamUser/GetFriendList/v1/", params), &resp); err != nil {
				return nil, err
			}
			return &models.FriendsList{
				FriendCount: len(resp.FriendsList.Friends),
				Friends:     resp.FriendsList.Friends,
			}, nil
		})
	return friends
}

func (c *Client) GetOwnedGames(ctx context.Context, steamID string) *models.OwnedGames {
	games, _ := fetch(ctx, c, "GetOwnedGames", cache.TTLShort, []any{steamID},
		func(ctx context.Context) (*models.OwnedGames, error) {
			if err := c.requireKey(); err != nil {
				return nil, err
			}
			var resp struct {
				Response models.OwnedGames `json:"response"`
			}
			params := url.Values{
				"steamid":                   {steamID},
				"include_appinfo":           {"1"},
				"include_played_free_games": {"1"},
			}
			if err := c.getJSON(ctx, c.apiURL("/IPlayerService/GetOwnedGames/v1/", params), &resp); err != nil {
				return nil, err
			}
			return &resp.Response, nil
		})
	return games
}

func (c *Client) GetRecentGames(ctx context.Context, steamID string) *models.OwnedGames {
	recent, _ := fetch(ctx, c, "GetRecentGames", cache.TTLShort, []any{steamID},
		func(ctx context.Context) (*models.OwnedGames, error) {
			if err := c.requireKey(); err != nil {
				return nil, err
			}
			var resp struct {
				Response struct {
					TotalCount int           `json:"total_count"`
					Games      []models.Game `json:"games"`
				} `json:"response"`
			}
			if err := c.getJSON(ctx, c.apiURL("/IPlayerService/GetRecentlyPlayedGames/v1/", url.Values{"steamid": {steamID}}), &resp); err != nil {
				return nil, err
			}
			return &models.OwnedGames{
				GameCount: resp.Response.TotalCount,
				Games:     resp.Response.Games,
			}, nil
		})
	return recent
}

// GetSteamLevel returns 0 when the level is unavailable.
func (c *Client) GetSteamLevel(ctx context.Context, steamID string) int {
	level, _ := fetch(ctx, c, "GetSteamLevel", cache.TTLShort, []any{steamID},
		func(ctx context.Context) (int, error) {
			if err := c.requireKey(); err != nil {
				return 0, err
			}
			var resp struct {
				Response struct {
					PlayerLevel *int `json:"player_level"`
				} `json:"response"`
			}
			if err := c.getJSON(ctx, c.apiURL("/IPlayerService/GetSteamLevel/v1/", url.Values{"steamid": {steamID}}), &resp); err != nil {
				return 0, err
			}
			if resp.Response.PlayerLevel == nil {
				return 0, errNoData
			}
			return *resp.Response.PlayerLevel, nil
		})
	return level
}

// GetBadges returns the first badges of the user with their display name
// and icon resolved from the community pages.
func (c *Client) GetBadges(ctx context.Context, steamID string) []models.Badge {
	badges, _ := fetch(ctx, c, "GetBadges", cache.TTLDay, []any{steamID, c.cfg.BadgeLimit},
		func(ctx context.Context) ([]models.Badge, error) {
			if err := c.requireKey(); err != nil {
				return nil, err
			}
			var resp struct {
				Response struct {
					Badges []models.Badge `json:"badges"`
				} `json:"response"`
			}
			if err := c.getJSON(ctx, c.apiURL("/IPlayerService/GetBadges/v1/", url.Values{"steamid": {steamID}}), &resp); err != nil {
				return nil, err
			}

			badges := resp.Response.Badges
			if c.cfg.BadgeLimit > 0 && len(badges) > c.cfg.BadgeLimit {
				badges = badges[:c.cfg.BadgeLimit]
			}
			if badges == nil {
				badges = []models.Badge{}
			}

			g, gctx := errgroup.WithContext(ctx)
			g.SetLimit(badgeInfoConcurrency)
			for i := range badges {
				i := i
				g.Go(func() error {
					info := c.GetBadgeInfo(gctx, badges[i].BadgeID, steamID)
					badges[i].Name = info.Name
					badges[i].Image = info.Image
					return nil
				})
			}
			_ = g.Wait()

			return badges, nil
		})
	return badges
}

// GetBadgeInfo scrapes the badge page. It always returns a usable name.
func (c *Client) GetBadgeInfo(ctx context.Context, badgeID int, steamID string) models.BadgeInfo {
	info, ok := fetch(ctx, c, "GetBadgeInfo", cache.TTLDay, []any{badgeID, steamID},
		func(ctx context.Context) (models.BadgeInfo, error) {
			page, err := c.get(ctx, fmt.Sprintf("%s/profiles/%s/badges/%d", c.cfg.CommunityBaseURL, steamID, badgeID))
			if err != nil {
				return models.BadgeInfo{}, err
			}
			return parseBadgePage(page, badgeID)
		})
	if !ok {
		return models.BadgeInfo{Name: fallbackBadgeName(badgeID)}
	}
	return info
}
