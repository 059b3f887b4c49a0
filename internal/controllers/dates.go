package controllers

import (
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/seenlogapp/seenlog/internal/models"
)

// EpisodeOp is one entry of a season batch: mark an episode watched or
// unwatched in a single pass over the season.
type EpisodeOp struct {
	EpisodeID      int64
	Watch          bool
	RuntimeMinutes int
}

// DatesController keeps each series' startedAt/lastWatchedAt bounds
// consistent with its episode watch events. Watches take the O(1) fast
// path; unwatches force a full rescan because a removed timestamp may
// have been either bound.
type DatesController struct {
	db     *models.Database
	logger *logrus.Logger

	// serialises read-modify-write per (owner, series)
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewDatesController creates a new dates controller
func NewDatesController(db *models.Database, logger *logrus.Logger) *DatesController {
	return &DatesController{
		db:     db,
		logger: logger,
		locks:  make(map[string]*sync.Mutex),
	}
}

func (c *DatesController) seriesLock(ownerID string, seriesID int64) *sync.Mutex {
	key := fmt.Sprintf("%s:%d", ownerID, seriesID)
	c.mu.Lock()
	defer c.mu.Unlock()
	lock, ok := c.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		c.locks[key] = lock
	}
	return lock
}

// WatchEpisode records a watch event for an episode and applies the fast
// path update to the series' date bounds.
func (c *DatesController) WatchEpisode(ownerID string, seriesID, seasonID, episodeID int64, watchedAt time.Time, runtimeMinutes int) error {
	lock := c.seriesLock(ownerID, seriesID)
	lock.Lock()
	defer lock.Unlock()

	rec := &models.EpisodeRecord{
		OwnerID:        ownerID,
		SeriesID:       seriesID,
		SeasonID:       seasonID,
		EpisodeID:      episodeID,
		IsWatched:      true,
		WatchedAt:      &watchedAt,
		RuntimeMinutes: runtimeMinutes,
	}
	if existing, err := c.db.GetEpisode(ownerID, episodeID); err == nil {
		rec.CreatedAt = existing.CreatedAt
		if runtimeMinutes == 0 {
			rec.RuntimeMinutes = existing.RuntimeMinutes
		}
	}
	if err := c.db.UpsertEpisode(rec); err != nil {
		return fmt.Errorf("failed to record episode watch: %w", err)
	}

	return c.onEpisodeWatched(ownerID, seriesID, watchedAt)
}

// UnwatchEpisode deletes the watch event for an episode and recomputes
// the series' date bounds with a full rescan.
func (c *DatesController) UnwatchEpisode(ownerID string, episodeID int64) error {
	existing, err := c.db.GetEpisode(ownerID, episodeID)
	if err == models.ErrNotFound {
		// No record means the episode was never tracked; nothing to undo
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load episode: %w", err)
	}

	seriesID := existing.SeriesID
	lock := c.seriesLock(ownerID, seriesID)
	lock.Lock()
	defer lock.Unlock()

	if err := c.db.DeleteEpisode(ownerID, episodeID); err != nil {
		return fmt.Errorf("failed to delete episode: %w", err)
	}

	return c.onEpisodeUnwatched(ownerID, seriesID)
}

// ApplySeasonBatch applies a batch of watch/unwatch operations for one
// season. A pure-watch batch shares one timestamp and one fast-path
// update; a batch containing any unwatch falls back to a single rescan.
func (c *DatesController) ApplySeasonBatch(ownerID string, seriesID, seasonID int64, ops []EpisodeOp, watchedAt time.Time) error {
	if len(ops) == 0 {
		return nil
	}

	lock := c.seriesLock(ownerID, seriesID)
	lock.Lock()
	defer lock.Unlock()

	hasUnwatch := false
	watched := 0
	for _, op := range ops {
		if !op.Watch {
			hasUnwatch = true
			if err := c.db.DeleteEpisode(ownerID, op.EpisodeID); err != nil {
				return fmt.Errorf("failed to delete episode: %w", err)
			}
			continue
		}

		rec := &models.EpisodeRecord{
			OwnerID:        ownerID,
			SeriesID:       seriesID,
			SeasonID:       seasonID,
			EpisodeID:      op.EpisodeID,
			IsWatched:      true,
			WatchedAt:      &watchedAt,
			RuntimeMinutes: op.RuntimeMinutes,
		}
		if existing, err := c.db.GetEpisode(ownerID, op.EpisodeID); err == nil {
			rec.CreatedAt = existing.CreatedAt
			if op.RuntimeMinutes == 0 {
				rec.RuntimeMinutes = existing.RuntimeMinutes
			}
		}
		if err := c.db.UpsertEpisode(rec); err != nil {
			return fmt.Errorf("failed to record episode watch: %w", err)
		}
		watched++
	}

	c.logger.WithFields(logrus.Fields{
		"series_id": seriesID,
		"season_id": seasonID,
		"watched":   watched,
		"unwatched": len(ops) - watched,
	}).Debug("Applied season batch")

	if hasUnwatch {
		return c.onEpisodeUnwatched(ownerID, seriesID)
	}
	return c.onEpisodeWatched(ownerID, seriesID, watchedAt)
}

// SetSeriesStatus writes a user-chosen status on the series record. The
// date bounds are re-derived from current episode data first so status
// changes and date bookkeeping cannot diverge.
func (c *DatesController) SetSeriesStatus(ownerID string, seriesID int64, status models.SeriesStatus) (*models.SeriesRecord, error) {
	lock := c.seriesLock(ownerID, seriesID)
	lock.Lock()
	defer lock.Unlock()

	startedAt, lastWatchedAt, err := c.deriveBounds(ownerID, seriesID)
	if err != nil {
		return nil, err
	}

	rec, err := c.db.GetSeriesRecord(ownerID, seriesID)
	if err == models.ErrNotFound {
		rec = &models.SeriesRecord{
			OwnerID:  ownerID,
			SeriesID: seriesID,
		}
	} else if err != nil {
		return nil, fmt.Errorf("failed to load series record: %w", err)
	}

	rec.Status = status
	rec.StartedAt = startedAt
	rec.LastWatchedAt = lastWatchedAt

	if err := c.db.UpsertSeriesRecord(rec); err != nil {
		return nil, fmt.Errorf("failed to update series record: %w", err)
	}

	return rec, nil
}

// RederiveSeries runs the slow path for one series unconditionally
func (c *DatesController) RederiveSeries(ownerID string, seriesID int64) error {
	lock := c.seriesLock(ownerID, seriesID)
	lock.Lock()
	defer lock.Unlock()

	return c.onEpisodeUnwatched(ownerID, seriesID)
}

// RederiveAll recomputes date bounds for every series record in the
// store. Used by the scheduled integrity sweep.
func (c *DatesController) RederiveAll() error {
	owners, err := c.db.ListOwners()
	if err != nil {
		return fmt.Errorf("failed to list owners: %w", err)
	}

	for _, owner := range owners {
		series, err := c.db.GetSeriesRecords(owner)
		if err != nil {
			c.logger.WithError(err).WithField("owner", owner).Error("Failed to load series records")
			continue
		}
		for _, rec := range series {
			if err := c.RederiveSeries(owner, rec.SeriesID); err != nil {
				c.logger.WithError(err).WithFields(logrus.Fields{
					"owner":     owner,
					"series_id": rec.SeriesID,
				}).Error("Failed to re-derive series dates")
			}
		}
	}

	return nil
}

// onEpisodeWatched is the fast path: widen the stored bounds with one
// new timestamp, never re-reading the episode set.
func (c *DatesController) onEpisodeWatched(ownerID string, seriesID int64, watchedAt time.Time) error {
	rec, err := c.db.GetSeriesRecord(ownerID, seriesID)
	if err == models.ErrNotFound {
		rec = &models.SeriesRecord{
			OwnerID:       ownerID,
			SeriesID:      seriesID,
			Status:        models.SeriesStatusCurrentlyWatching,
			StartedAt:     &watchedAt,
			LastWatchedAt: &watchedAt,
		}
		return c.db.UpsertSeriesRecord(rec)
	}
	if err != nil {
		return fmt.Errorf("failed to load series record: %w", err)
	}

	if rec.StartedAt == nil || watchedAt.Before(*rec.StartedAt) {
		rec.StartedAt = &watchedAt
	}
	if rec.LastWatchedAt == nil || watchedAt.After(*rec.LastWatchedAt) {
		rec.LastWatchedAt = &watchedAt
	}

	return c.db.UpsertSeriesRecord(rec)
}

// onEpisodeUnwatched is the slow path: recompute both bounds from every
// surviving episode event. Both come back nil when none remain.
func (c *DatesController) onEpisodeUnwatched(ownerID string, seriesID int64) error {
	startedAt, lastWatchedAt, err := c.deriveBounds(ownerID, seriesID)
	if err != nil {
		return err
	}

	rec, err := c.db.GetSeriesRecord(ownerID, seriesID)
	if err == models.ErrNotFound {
		// No series record to update
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load series record: %w", err)
	}

	rec.StartedAt = startedAt
	rec.LastWatchedAt = lastWatchedAt

	return c.db.UpsertSeriesRecord(rec)
}

// deriveBounds scans all surviving episode events for a series and
// returns the min/max watched timestamps, nil when none exist.
func (c *DatesController) deriveBounds(ownerID string, seriesID int64) (*time.Time, *time.Time, error) {
	episodes, err := c.db.GetEpisodesForSeries(ownerID, seriesID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load episodes: %w", err)
	}

	var startedAt, lastWatchedAt *time.Time
	for _, ep := range episodes {
		if !ep.IsWatched || ep.WatchedAt == nil {
			continue
		}
		ts := *ep.WatchedAt
		if startedAt == nil || ts.Before(*startedAt) {
			startedAt = &ts
		}
		if lastWatchedAt == nil || ts.After(*lastWatchedAt) {
			lastWatchedAt = &ts
		}
	}

	return startedAt, lastWatchedAt, nil
}
