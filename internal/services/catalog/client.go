package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"

	"github.com/seenlogapp/seenlog/internal/config"
)

// Client handles communication with the external media catalog
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *logrus.Logger
}

// NewClient creates a new catalog API client
func NewClient(cfg *config.Config, logger *logrus.Logger) *Client {
	return &Client{
		baseURL:    cfg.CatalogURL,
		apiKey:     cfg.CatalogKey,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		logger:     logger,
	}
}

// GetSeriesMetadata fetches series-level metadata by numeric ID
func (c *Client) GetSeriesMetadata(ctx context.Context, seriesID int64) (*SeriesMetadata, error) {
	var resp seriesResponse
	path := fmt.Sprintf("/series/%d", seriesID)
	if err := c.doRequest(ctx, path, &resp); err != nil {
		return nil, err
	}

	meta := &SeriesMetadata{
		ID:               resp.ID,
		Name:             resp.Name,
		PosterRef:        resp.PosterPath,
		Status:           resp.Status,
		NumberOfEpisodes: resp.NumberOfEpisodes,
		InProduction:     resp.InProduction,
		Seasons:          make([]SeasonRef, 0, len(resp.Seasons)),
	}
	for _, season := range resp.Seasons {
		meta.Seasons = append(meta.Seasons, SeasonRef{
			Number:       season.SeasonNumber,
			Name:         season.Name,
			EpisodeCount: season.EpisodeCount,
			AirDate:      parseAirDate(season.AirDate),
		})
	}

	return meta, nil
}

// GetSeasonDetail fetches the episode list for one season
func (c *Client) GetSeasonDetail(ctx context.Context, seriesID int64, seasonNumber int) (*SeasonDetail, error) {
	var resp seasonDetailResponse
	path := fmt.Sprintf("/series/%d/season/%d", seriesID, seasonNumber)
	if err := c.doRequest(ctx, path, &resp); err != nil {
		return nil, err
	}

	detail := &SeasonDetail{
		SeriesID:     seriesID,
		SeasonNumber: seasonNumber,
		Episodes:     make([]EpisodeRef, 0, len(resp.Episodes)),
	}
	for _, ep := range resp.Episodes {
		detail.Episodes = append(detail.Episodes, EpisodeRef{
			ID:      ep.ID,
			AirDate: parseAirDate(ep.AirDate),
		})
	}

	return detail, nil
}

// doRequest performs an authenticated GET against the catalog, retrying
// transient failures (network errors, 429, 5xx) with exponential backoff.
func (c *Client) doRequest(ctx context.Context, path string, result interface{}) error {
	fullURL := c.baseURL + path
	c.logger.WithField("url", fullURL).Debug("Making catalog API request")

	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("failed to create request: %w", err))
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("Authorization", "Bearer "+c.apiKey)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("request failed: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			io.Copy(io.Discard, resp.Body)
			return fmt.Errorf("catalog request failed with status %d", resp.StatusCode)
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			bodyBytes, _ := io.ReadAll(resp.Body)
			return backoff.Permanent(fmt.Errorf("catalog request failed with status %d: %s", resp.StatusCode, string(bodyBytes)))
		}

		if result != nil {
			if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
				return backoff.Permanent(fmt.Errorf("failed to decode response: %w", err))
			}
		}

		return nil
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 2), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		c.logger.WithError(err).WithField("url", fullURL).Warn("Catalog request failed")
		return err
	}

	return nil
}
