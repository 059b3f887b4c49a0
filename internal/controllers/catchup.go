package controllers

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/seenlogapp/seenlog/internal/metrics"
	"github.com/seenlogapp/seenlog/internal/models"
	"github.com/seenlogapp/seenlog/internal/services/catalog"
)

// Catalog is the slice of the external catalog the reconciler consumes
type Catalog interface {
	GetSeriesMetadata(ctx context.Context, seriesID int64) (*catalog.SeriesMetadata, error)
	GetSeasonDetail(ctx context.Context, seriesID int64, seasonNumber int) (*catalog.SeasonDetail, error)
}

// CatchUpController reconciles locally tracked watched-episode sets
// against catalog season metadata for every series the user has marked
// up to date, surfacing aired-but-unwatched and upcoming content.
type CatchUpController struct {
	db            *models.Database
	catalog       Catalog
	logger        *logrus.Logger
	maxConcurrent int
}

// NewCatchUpController creates a new catch-up controller
func NewCatchUpController(db *models.Database, cat Catalog, maxConcurrent int, logger *logrus.Logger) *CatchUpController {
	if maxConcurrent <= 0 {
		maxConcurrent = 5
	}
	return &CatchUpController{
		db:            db,
		catalog:       cat,
		logger:        logger,
		maxConcurrent: maxConcurrent,
	}
}

// Reconcile builds the catch-up list for an owner. Series are resolved
// concurrently; a catalog failure for one series or season excludes that
// unit without failing the pass. Fully satisfied series are dropped.
func (c *CatchUpController) Reconcile(ctx context.Context, ownerID string) ([]*models.CatchUpItem, error) {
	series, err := c.db.GetSeriesByStatus(ownerID, models.SeriesStatusUpToDate)
	if err != nil {
		return nil, fmt.Errorf("failed to load series records: %w", err)
	}

	watched, err := c.db.GetWatchedEpisodes(ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load watched episodes: %w", err)
	}

	// Group watched episode IDs by series for O(1) membership tests
	watchedBySeries := make(map[int64]map[int64]struct{})
	for _, ep := range watched {
		set, ok := watchedBySeries[ep.SeriesID]
		if !ok {
			set = make(map[int64]struct{})
			watchedBySeries[ep.SeriesID] = set
		}
		set[ep.EpisodeID] = struct{}{}
	}

	metrics.CatchUpRuns.Inc()
	now := time.Now()

	sem := make(chan struct{}, c.maxConcurrent)
	var wg sync.WaitGroup
	var mu sync.Mutex
	items := make([]*models.CatchUpItem, 0, len(series))

	for _, rec := range series {
		wg.Add(1)
		go func(seriesID int64) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			item := c.reconcileSeries(ctx, seriesID, watchedBySeries[seriesID], now)
			if item == nil {
				return
			}
			mu.Lock()
			items = append(items, item)
			mu.Unlock()
		}(rec.SeriesID)
	}
	wg.Wait()

	sort.Slice(items, func(i, j int) bool {
		if items[i].UnwatchedEpisodes != items[j].UnwatchedEpisodes {
			return items[i].UnwatchedEpisodes > items[j].UnwatchedEpisodes
		}
		return items[i].Name < items[j].Name
	})

	return items, nil
}

// Summary runs a reconciliation pass and rolls it up into the dashboard
// counters. The up-to-date count is a cheap status count independent of
// reconciliation cost.
func (c *CatchUpController) Summary(ctx context.Context, ownerID string) (*models.CatchUpSummary, error) {
	upToDate, err := c.db.CountSeriesByStatus(ownerID, models.SeriesStatusUpToDate)
	if err != nil {
		return nil, fmt.Errorf("failed to count up-to-date series: %w", err)
	}

	items, err := c.Reconcile(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	summary := &models.CatchUpSummary{
		UpToDateSeries:         upToDate,
		SeriesNeedingAttention: len(items),
	}
	for _, item := range items {
		summary.TotalUnwatchedEpisodes += item.UnwatchedEpisodes
		if len(item.UpcomingSeasons) > 0 {
			summary.SeriesWithUpcoming++
		}
	}

	return summary, nil
}

// reconcileSeries resolves one series against the catalog. It returns
// nil when the series is fully satisfied or had to be excluded.
func (c *CatchUpController) reconcileSeries(ctx context.Context, seriesID int64, watchedIDs map[int64]struct{}, now time.Time) *models.CatchUpItem {
	meta, err := c.catalog.GetSeriesMetadata(ctx, seriesID)
	if err != nil {
		metrics.CatalogFetchFailures.Inc()
		c.logger.WithError(err).WithField("series_id", seriesID).Warn("Skipping series, catalog fetch failed")
		return nil
	}

	// Coarse pre-filter: season detail is only worth fetching when the
	// series can plausibly have new content. The catalog total can lag,
	// so only skip when the series is also out of production.
	if meta.NumberOfEpisodes > 0 && len(watchedIDs) >= meta.NumberOfEpisodes && !meta.InProduction {
		return nil
	}

	item := &models.CatchUpItem{
		SeriesID:         seriesID,
		Name:             meta.Name,
		PosterRef:        meta.PosterRef,
		ExternalStatus:   meta.Status,
		UnwatchedSeasons: []models.CatchUpSeason{},
		UpcomingSeasons:  []models.CatchUpSeason{},
	}

	for _, season := range meta.Seasons {
		detail, err := c.catalog.GetSeasonDetail(ctx, seriesID, season.Number)
		if err != nil {
			metrics.CatalogFetchFailures.Inc()
			c.logger.WithError(err).WithFields(logrus.Fields{
				"series_id": seriesID,
				"season":    season.Number,
			}).Warn("Season detail fetch failed")

			// Best effort: a season we could not resolve but whose own
			// air date is in the future is still reported as upcoming
			if season.AirDate != nil && season.AirDate.After(now) {
				item.UpcomingSeasons = append(item.UpcomingSeasons, models.CatchUpSeason{
					SeasonNumber: season.Number,
					Name:         season.Name,
					EpisodeCount: season.EpisodeCount,
					AirDate:      season.AirDate,
					IsUpcoming:   true,
				})
			}
			continue
		}

		aired, future := 0, 0
		watchedInSeason := 0
		for _, ep := range detail.Episodes {
			// Episodes without an air date are neither aired nor future
			if ep.AirDate == nil {
				continue
			}
			if ep.AirDate.After(now) {
				future++
				continue
			}
			aired++
			if _, ok := watchedIDs[ep.ID]; ok {
				watchedInSeason++
			}
		}
		unwatchedInSeason := aired - watchedInSeason

		item.TotalAiredEpisodes += aired
		item.WatchedAiredEpisodes += watchedInSeason

		seasonAirsInFuture := season.AirDate != nil && season.AirDate.After(now)
		if aired == 0 && (len(detail.Episodes) > 0 || seasonAirsInFuture) {
			episodeCount := len(detail.Episodes)
			if episodeCount == 0 {
				episodeCount = season.EpisodeCount
			}
			item.UpcomingSeasons = append(item.UpcomingSeasons, models.CatchUpSeason{
				SeasonNumber: season.Number,
				Name:         season.Name,
				EpisodeCount: episodeCount,
				AirDate:      season.AirDate,
				IsUpcoming:   true,
			})
		} else if unwatchedInSeason > 0 || future > 0 {
			item.UnwatchedSeasons = append(item.UnwatchedSeasons, models.CatchUpSeason{
				SeasonNumber: season.Number,
				Name:         season.Name,
				EpisodeCount: aired,
				WatchedCount: watchedInSeason,
				AirDate:      season.AirDate,
			})
		}
	}

	item.UnwatchedEpisodes = item.TotalAiredEpisodes - item.WatchedAiredEpisodes
	if item.UnwatchedEpisodes <= 0 && len(item.UpcomingSeasons) == 0 {
		return nil
	}

	return item
}
