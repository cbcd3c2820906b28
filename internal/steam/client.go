package steam

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/tahcohcat/steamwrapped-web/config"
	"github.com/tahcohcat/steamwrapped-web/internal/cache"
	"github.com/tahcohcat/steamwrapped-web/internal/logger"
)

var (
	errNoData     = errors.New("no data")
	errMissingKey = errors.New("steam api key not configured")
)

// Client talks to the Steam Web API, the store, SteamSpy and the community
// site. Every lookup is cached and every failure collapses to "no data".
type Client struct {
	cfg         config.SteamConfig
	httpClient  *http.Client
	cache       cache.Cache
	cachePrefix string
	limiter     *rate.Limiter
	logger      *logger.Log
}

func NewClient(cfg config.SteamConfig, c cache.Cache, cachePrefix string) *Client {
	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
	}
	burst := cfg.RateBurst
	if burst <= 0 {
		burst = 1
	}

	return &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: cfg.RequestTimeout(),
		},
		cache:       c,
		cachePrefix: cachePrefix,
		limiter:     rate.NewLimiter(limit, burst),
		logger:      logger.New().With("component", "steam"),
	}
}

// fetch memoizes load under (op, args) and reports whether data came back.
func fetch[T any](ctx context.Context, c *Client, op string, ttl time.Duration, args []any, load func(context.Context) (T, error)) (T, bool) {
	key := cache.Key(c.cachePrefix, op, args...)
	value, err := cache.Memoize(ctx, c.cache, key, ttl, load)
	if err != nil {
		c.logger.With("op", op, "args", args).WithError(err).Warn("steam lookup returned no data")
		var zero T
		return zero, false
	}
	return value, true
}

func (c *Client) apiURL(path string, params url.Values) string {
	if params == nil {
		params = url.Values{}
	}
	params.Set("key", c.cfg.APIKey)
	return strings.TrimRight(c.cfg.APIBaseURL, "/") + path + "?" + params.Encode()
}

func (c *Client) requireKey() error {
	if strings.TrimSpace(c.cfg.APIKey) == "" {
		return errMissingKey
	}
	return nil
}

func (c *Client) get(ctx context.Context, rawURL string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	return body, nil
}

func (c *Client) getJSON(ctx context.Context, rawURL string, out any) error {
	body, err := c.get(ctx, rawURL)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
