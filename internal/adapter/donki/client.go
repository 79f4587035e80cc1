// Package donki implements the feed fetch client against the NASA DONKI API.
package donki

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/time/rate"

	"github.com/TNRProtography/solar-dashboard/internal/config"
	"github.com/TNRProtography/solar-dashboard/internal/domain"
	"github.com/TNRProtography/solar-dashboard/internal/observability"
	"github.com/TNRProtography/solar-dashboard/internal/pipeline"
)

// Feed endpoint names, also used as metric labels.
const (
	feedCME   = "CME"
	feedFlare = "FLR"
	feedShock = "IPS"
)

// windowDateLayout is the date-only format the DONKI API expects for
// startDate/endDate query parameters.
const windowDateLayout = "2006-01-02"

// Client fetches event feeds from the DONKI API. It implements
// pipeline.Fetcher. Transport failures and 5xx responses are retried with
// exponential backoff up to the configured attempt count; 4xx responses fail
// immediately. A shared rate limiter keeps all feeds under the API key's
// request quota.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *retryablehttp.Client
	limiter    *rate.Limiter
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a DONKI fetch client from the service configuration.
func NewClient(cfg *config.Config, metrics *observability.Metrics, logger *slog.Logger) *Client {
	rc := retryablehttp.NewClient()
	rc.RetryMax = cfg.DonkiMaxRetries
	rc.HTTPClient.Timeout = cfg.DonkiTimeout
	rc.Logger = nil // slog below instead of retryablehttp's own logging
	// DefaultRetryPolicy retries 5xx and transport errors, not other 4xx;
	// 429 is excluded here because the limiter owns quota pacing.
	rc.CheckRetry = func(ctx context.Context, resp *http.Response, err error) (bool, error) {
		if resp != nil && resp.StatusCode == http.StatusTooManyRequests {
			return false, nil
		}
		return retryablehttp.DefaultRetryPolicy(ctx, resp, err)
	}

	return &Client{
		baseURL:    cfg.DonkiBaseURL,
		apiKey:     cfg.DonkiAPIKey,
		httpClient: rc,
		limiter:    rate.NewLimiter(rate.Limit(cfg.DonkiRateLimit), 1),
		metrics:    metrics,
		logger:     logger,
	}
}

// FetchCMEs retrieves the CME feed for the window.
func (c *Client) FetchCMEs(ctx context.Context, window pipeline.Window) ([]domain.CME, error) {
	var raw []domain.RawCME
	if err := c.fetchFeed(ctx, feedCME, window, &raw); err != nil {
		return nil, err
	}
	c.metrics.EventsFetched.WithLabelValues(feedCME).Add(float64(len(raw)))
	cmes := make([]domain.CME, len(raw))
	for i, r := range raw {
		cmes[i] = domain.ParseCME(r)
	}
	return cmes, nil
}

// FetchFlares retrieves the FLR feed for the window.
func (c *Client) FetchFlares(ctx context.Context, window pipeline.Window) ([]domain.Flare, error) {
	var raw []domain.RawFlare
	if err := c.fetchFeed(ctx, feedFlare, window, &raw); err != nil {
		return nil, err
	}
	c.metrics.EventsFetched.WithLabelValues(feedFlare).Add(float64(len(raw)))
	flares := make([]domain.Flare, len(raw))
	for i, r := range raw {
		flares[i] = domain.ParseFlare(r)
	}
	return flares, nil
}

// FetchShocks retrieves the IPS feed for the window.
func (c *Client) FetchShocks(ctx context.Context, window pipeline.Window) ([]domain.Shock, error) {
	var raw []domain.RawShock
	if err := c.fetchFeed(ctx, feedShock, window, &raw); err != nil {
		return nil, err
	}
	c.metrics.EventsFetched.WithLabelValues(feedShock).Add(float64(len(raw)))
	shocks := make([]domain.Shock, len(raw))
	for i, r := range raw {
		shocks[i] = domain.ParseShock(r)
	}
	return shocks, nil
}

// fetchFeed performs one rate-limited, retrying GET against a feed endpoint
// and decodes the JSON array into out. An empty body (the API's "no events"
// response) decodes to an empty slice.
func (c *Client) fetchFeed(ctx context.Context, feed string, window pipeline.Window, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	params := url.Values{
		"startDate": {window.Start.UTC().Format(windowDateLayout)},
		"endDate":   {window.End.UTC().Format(windowDateLayout)},
		"api_key":   {c.apiKey},
	}
	fullURL := fmt.Sprintf("%s/%s?%s", c.baseURL, feed, params.Encode())

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return fmt.Errorf("create %s request: %w", feed, err)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	c.metrics.FetchDuration.WithLabelValues(feed).Observe(time.Since(start).Seconds())
	if err != nil {
		c.metrics.FetchRequests.WithLabelValues(feed, "error").Inc()
		return fmt.Errorf("%s feed request: %w", feed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.metrics.FetchRequests.WithLabelValues(feed, "error").Inc()
		return fmt.Errorf("%s feed: status %d: %s", feed, resp.StatusCode, body)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.metrics.FetchRequests.WithLabelValues(feed, "error").Inc()
		return fmt.Errorf("read %s response: %w", feed, err)
	}

	if len(body) > 0 {
		if err := json.Unmarshal(body, out); err != nil {
			c.metrics.FetchRequests.WithLabelValues(feed, "error").Inc()
			return fmt.Errorf("decode %s response: %w", feed, err)
		}
	}

	c.metrics.FetchRequests.WithLabelValues(feed, "success").Inc()
	c.logger.Debug("feed fetched", "feed", feed,
		"window_start", window.Start, "window_end", window.End)
	return nil
}
