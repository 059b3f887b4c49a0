package catalog

import (
	"context"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// CachedCatalog wraps the catalog client with an in-memory TTL cache so
// reconciliation passes do not hammer the external API. Failures are
// never cached.
type CachedCatalog struct {
	client *Client
	cache  *gocache.Cache
}

// NewCachedCatalog creates a caching wrapper around client with the given TTL
func NewCachedCatalog(client *Client, ttl time.Duration) *CachedCatalog {
	return &CachedCatalog{
		client: client,
		cache:  gocache.New(ttl, 10*time.Minute),
	}
}

// GetSeriesMetadata returns cached series metadata, fetching on a miss
func (c *CachedCatalog) GetSeriesMetadata(ctx context.Context, seriesID int64) (*SeriesMetadata, error) {
	key := fmt.Sprintf("series:%d", seriesID)
	if cached, ok := c.cache.Get(key); ok {
		return cached.(*SeriesMetadata), nil
	}

	meta, err := c.client.GetSeriesMetadata(ctx, seriesID)
	if err != nil {
		return nil, err
	}

	c.cache.SetDefault(key, meta)
	return meta, nil
}

// GetSeasonDetail returns a cached season episode list, fetching on a miss
func (c *CachedCatalog) GetSeasonDetail(ctx context.Context, seriesID int64, seasonNumber int) (*SeasonDetail, error) {
	key := fmt.Sprintf("season:%d:%d", seriesID, seasonNumber)
	if cached, ok := c.cache.Get(key); ok {
		return cached.(*SeasonDetail), nil
	}

	detail, err := c.client.GetSeasonDetail(ctx, seriesID, seasonNumber)
	if err != nil {
		return nil, err
	}

	c.cache.SetDefault(key, detail)
	return detail, nil
}
