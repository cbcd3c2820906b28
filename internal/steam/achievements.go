package steam

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/tahcohcat/steamwrapped-web/internal/cache"
	"github.com/tahcohcat/steamwrapped-web/internal/models"
)

// percent decodes a global unlock percentage sent either as a number or as
// a quoted number.
type percent float64

func (p *percent) UnmarshalJSON(raw []byte) error {
	raw = bytes.Trim(bytes.TrimSpace(raw), `"`)
	value, err := strconv.ParseFloat(string(raw), 64)
	if err != nil {
		return fmt.Errorf("invalid percent %q: %w", raw, err)
	}
	*p = percent(value)
	return nil
}

type playerAchievement struct {
	APIName    string `json:"apiname"`
	Achieved   int    `json:"achieved"`
	UnlockTime int64  `json:"unlocktime"`
}

type schemaAchievement struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
	Description string `json:"description"`
	Hidden      int    `json:"hidden"`
	Icon        string `json:"icon"`
	IconGray    string `json:"icongray"`
}

// GetGameAchievements merges the schema for appID with the user's unlocks
// and the global percentages. It returns nil when the user's stats are not
// available for the game.
func (c *Client) GetGameAchievements(ctx context.Context, steamID string, appID int) []models.AchievementRecord {
	records, _ := fetch(ctx, c, "GetGameAchievements", cache.TTLDay, []any{steamID, appID},
		func(ctx context.Context) ([]models.AchievementRecord, error) {
			if err := c.requireKey(); err != nil {
				return nil, err
			}

			unlocked, err := c.playerAchievements(ctx, steamID, appID)
			if err != nil {
				return nil, err
			}

			schema, err := c.achievementSchema(ctx, appID)
			if err != nil {
				return nil, err
			}

			rarity := c.globalPercentages(ctx, appID)

			records := make([]models.AchievementRecord, 0, len(schema))
			for _, ach := range schema {
				record := models.AchievementRecord{
					APIName:     ach.Name,
					DisplayName: ach.DisplayName,
					Description: ach.Description,
					Icon:        ach.Icon,
					IconGray:    ach.IconGray,
					Hidden:      ach.Hidden != 0,
				}
				if player, ok := unlocked[ach.Name]; ok {
					record.Achieved = player.Achieved != 0
					record.UnlockTime = player.UnlockTime
				}
				if pct, ok := rarity[ach.Name]; ok {
					record.Rarity = &pct
				}
				records = append(records, record)
			}
			return records, nil
		})
	return records
}

func (c *Client) playerAchievements(ctx context.Context, steamID string, appID int) (map[string]playerAchievement, error) {
	var resp struct {
		PlayerStats *struct {
			Success      *bool               `json:"success"`
			Error        string              `json:"error"`
			Achievements []playerAchievement `json:"achievements"`
		} `json:"playerstats"`
	}
	params := url.Values{"appid": {strconv.Itoa(appID)}, "steamid": {steamID}}
	if err := c.getJSON(ctx, c.apiURL("/ISteamUserStats/GetPlayerAchievements/v1/", params), &resp); err != nil {
		return nil, err
	}
	if resp.PlayerStats == nil {
		return nil, errNoData
	}
	if resp.PlayerStats.Success != nil && !*resp.PlayerStats.Success {
		return nil, fmt.Errorf("player stats unavailable: %s", resp.PlayerStats.Error)
	}

	unlocked := make(map[string]playerAchievement, len(resp.PlayerStats.Achievements))
	for _, a := range resp.PlayerStats.Achievements {
		unlocked[a.APIName] = a
	}
	return unlocked, nil
}

func (c *Client) achievementSchema(ctx context.Context, appID int) ([]schemaAchievement, error) {
	var resp struct {
		Game struct {
			AvailableGameStats struct {
				Achievements []schemaAchievement `json:"achievements"`
			} `json:"availableGameStats"`
		} `json:"game"`
	}
	if err := c.getJSON(ctx, c.apiURL("/ISteamUserStats/GetSchemaForGame/v2/", url.Values{"appid": {strconv.Itoa(appID)}}), &resp); err != nil {
		return nil, err
	}
	return resp.Game.AvailableGameStats.Achievements, nil
}

// globalPercentages returns an empty map when the percentages are unavailable.
func (c *Client) globalPercentages(ctx context.Context, appID int) map[string]float64 {
	var resp struct {
		AchievementPercentages struct {
			Achievements []struct {
				Name    string  `json:"name"`
				Percent percent `json:"percent"`
			} `json:"achievements"`
		} `json:"achievementpercentages"`
	}
	rarityURL := c.apiURL("/ISteamUserStats/GetGlobalAchievementPercentagesForApp/v2/", url.Values{"gameid": {strconv.Itoa(appID)}})
	if err := c.getJSON(ctx, rarityURL, &resp); err != nil {
		c.logger.With("appid", appID).WithError(err).Debug("global achievement percentages unavailable")
		return map[string]float64{}
	}

	rarity := make(map[string]float64, len(resp.AchievementPercentages.Achievements))
	for _, a := range resp.AchievementPercentages.Achievements {
		rarity[a.Name] = float64(a.Percent)
	}
	return rarity
}

var _ json.Unmarshaler = (*percent)(nil)
