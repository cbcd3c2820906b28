package steam

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/tahcohcat/steamwrapped-web/internal/cache"
	"github.com/tahcohcat/steamwrapped-web/internal/models"
)

const steamSpyTimeout = 5 * time.Second

type steamSpyDetails struct {
	Genre  string          `json:"genre"`
	Owners string          `json:"owners"`
	Tags   json.RawMessage `json:"tags"`
}

// GetGameDetails returns store metadata for appID merged with the SteamSpy
// genre, owner estimate and tags. A SteamSpy failure leaves those empty.
func (c *Client) GetGameDetails(ctx context.Context, appID int) *models.GameDetails {
	details, _ := fetch(ctx, c, "GetGameDetails", cache.TTLWeek, []any{appID},
		func(ctx context.Context) (*models.GameDetails, error) {
			var resp map[string]struct {
				Success bool                `json:"success"`
				Data    *models.GameDetails `json:"data"`
			}
			storeURL := fmt.Sprintf("%s/api/appdetails?appids=%d&l=en", c.cfg.StoreBaseURL, appID)
			if err := c.getJSON(ctx, storeURL, &resp); err != nil {
				return nil, err
			}

			entry, ok := resp[strconv.Itoa(appID)]
			if !ok || entry.Data == nil {
				return nil, errNoData
			}
			data := entry.Data

			spy, err := c.getSteamSpy(ctx, appID)
			if err != nil {
				c.logger.With("appid", appID).WithError(err).Debug("steamspy lookup failed")
			} else {
				data.Genre = spy.Genre
				data.Owners = spy.Owners
				data.Tags = decodeTags(spy.Tags)
			}

			return data, nil
		})
	return details
}

func (c *Client) getSteamSpy(ctx context.Context, appID int) (*steamSpyDetails, error) {
	ctx, cancel := context.WithTimeout(ctx, steamSpyTimeout)
	defer cancel()

	var spy steamSpyDetails
	spyURL := fmt.Sprintf("%s/api.php?request=appdetails&appid=%d", c.cfg.SteamSpyBaseURL, appID)
	if err := c.getJSON(ctx, spyURL, &spy); err != nil {
		return nil, err
	}
	return &spy, nil
}

// decodeTags accepts SteamSpy's object form; an empty tag set arrives as [].
func decodeTags(raw json.RawMessage) map[string]int {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '{' {
		return nil
	}
	tags := map[string]int{}
	if err := json.Unmarshal(raw, &tags); err != nil {
		return nil
	}
	return tags
}
