package models

import (
	"fmt"
	"sort"
	"time"

	"github.com/timshannon/bolthold"
	"go.etcd.io/bbolt"
)

// ErrNotFound is returned when a requested record does not exist
var ErrNotFound = bolthold.ErrNotFound

// Database wraps the bolthold store
type Database struct {
	store *bolthold.Store
}

// NewDatabase creates a new database connection
func NewDatabase(path string) (*Database, error) {
	store, err := bolthold.Open(path, 0600, &bolthold.Options{
		Options: &bbolt.Options{
			Timeout: 1 * time.Second,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	return &Database{store: store}, nil
}

// Close closes the database connection
func (db *Database) Close() error {
	return db.store.Close()
}

// Movie record operations

// UpsertMovieRecord creates or replaces the record for (owner, movie)
func (db *Database) UpsertMovieRecord(rec *MovieRecord) error {
	rec.Key = MovieKey(rec.OwnerID, rec.MovieID)
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	rec.UpdatedAt = time.Now()
	return db.store.Upsert(rec.Key, rec)
}

// GetMovieRecord retrieves the record for (owner, movie)
func (db *Database) GetMovieRecord(ownerID string, movieID int64) (*MovieRecord, error) {
	var rec MovieRecord
	if err := db.store.Get(MovieKey(ownerID, movieID), &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// GetMovieRecords retrieves all movie records for an owner
func (db *Database) GetMovieRecords(ownerID string) ([]*MovieRecord, error) {
	var recs []*MovieRecord
	err := db.store.Find(&recs, bolthold.Where("OwnerID").Eq(ownerID).Index("OwnerID"))
	return recs, err
}

// Series record operations

// UpsertSeriesRecord creates or replaces the record for (owner, series)
func (db *Database) UpsertSeriesRecord(rec *SeriesRecord) error {
	rec.Key = SeriesKey(rec.OwnerID, rec.SeriesID)
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	rec.UpdatedAt = time.Now()
	return db.store.Upsert(rec.Key, rec)
}

// GetSeriesRecord retrieves the record for (owner, series)
func (db *Database) GetSeriesRecord(ownerID string, seriesID int64) (*SeriesRecord, error) {
	var rec SeriesRecord
	if err := db.store.Get(SeriesKey(ownerID, seriesID), &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// GetSeriesRecords retrieves all series records for an owner
func (db *Database) GetSeriesRecords(ownerID string) ([]*SeriesRecord, error) {
	var recs []*SeriesRecord
	err := db.store.Find(&recs, bolthold.Where("OwnerID").Eq(ownerID).Index("OwnerID"))
	return recs, err
}

// GetSeriesByStatus retrieves an owner's series records in a given status
func (db *Database) GetSeriesByStatus(ownerID string, status SeriesStatus) ([]*SeriesRecord, error) {
	var recs []*SeriesRecord
	err := db.store.Find(&recs,
		bolthold.Where("OwnerID").Eq(ownerID).Index("OwnerID").
			And("Status").Eq(status))
	return recs, err
}

// CountSeriesByStatus counts an owner's series records in a given status
func (db *Database) CountSeriesByStatus(ownerID string, status SeriesStatus) (int, error) {
	return db.store.Count(&SeriesRecord{},
		bolthold.Where("OwnerID").Eq(ownerID).Index("OwnerID").
			And("Status").Eq(status))
}

// Episode event operations

// UpsertEpisode creates or replaces the watch event for (owner, episode)
func (db *Database) UpsertEpisode(rec *EpisodeRecord) error {
	rec.Key = EpisodeKey(rec.OwnerID, rec.EpisodeID)
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	rec.UpdatedAt = time.Now()
	return db.store.Upsert(rec.Key, rec)
}

// GetEpisode retrieves the watch event for (owner, episode)
func (db *Database) GetEpisode(ownerID string, episodeID int64) (*EpisodeRecord, error) {
	var rec EpisodeRecord
	if err := db.store.Get(EpisodeKey(ownerID, episodeID), &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// DeleteEpisode removes the watch event for (owner, episode). Absence of a
// record is how "unwatched" is represented, so deleting a missing record
// is not an error.
func (db *Database) DeleteEpisode(ownerID string, episodeID int64) error {
	err := db.store.Delete(EpisodeKey(ownerID, episodeID), &EpisodeRecord{})
	if err == bolthold.ErrNotFound {
		return nil
	}
	return err
}

// GetWatchedEpisodes retrieves all watched episode events for an owner
func (db *Database) GetWatchedEpisodes(ownerID string) ([]*EpisodeRecord, error) {
	var recs []*EpisodeRecord
	err := db.store.Find(&recs,
		bolthold.Where("OwnerID").Eq(ownerID).Index("OwnerID").
			And("IsWatched").Eq(true))
	return recs, err
}

// GetEpisodesForSeries retrieves all surviving episode events for one series
func (db *Database) GetEpisodesForSeries(ownerID string, seriesID int64) ([]*EpisodeRecord, error) {
	var recs []*EpisodeRecord
	err := db.store.Find(&recs,
		bolthold.Where("SeriesID").Eq(seriesID).Index("SeriesID").
			And("OwnerID").Eq(ownerID))
	return recs, err
}

// Stats cache operations

// GetStatsCache retrieves the cached report for an owner, or nil if there
// is no cache row yet
func (db *Database) GetStatsCache(ownerID string) (*StatsCacheEntry, error) {
	var entry StatsCacheEntry
	err := db.store.Get(ownerID, &entry)
	if err == bolthold.ErrNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// UpsertStatsCache writes the single cache row for an owner. Concurrent
// refreshes may race here; last write wins.
func (db *Database) UpsertStatsCache(ownerID string, report StatsReport, computedAt time.Time) error {
	entry := &StatsCacheEntry{
		OwnerID:    ownerID,
		Report:     report,
		ComputedAt: computedAt,
	}
	return db.store.Upsert(ownerID, entry)
}

// ListOwners returns the distinct owner IDs present in the store
func (db *Database) ListOwners() ([]string, error) {
	seen := make(map[string]struct{})

	var movies []*MovieRecord
	if err := db.store.Find(&movies, nil); err != nil {
		return nil, err
	}
	for _, rec := range movies {
		seen[rec.OwnerID] = struct{}{}
	}

	var series []*SeriesRecord
	if err := db.store.Find(&series, nil); err != nil {
		return nil, err
	}
	for _, rec := range series {
		seen[rec.OwnerID] = struct{}{}
	}

	var episodes []*EpisodeRecord
	if err := db.store.Find(&episodes, nil); err != nil {
		return nil, err
	}
	for _, rec := range episodes {
		seen[rec.OwnerID] = struct{}{}
	}

	owners := make([]string, 0, len(seen))
	for owner := range seen {
		owners = append(owners, owner)
	}
	sort.Strings(owners)
	return owners, nil
}

// RecordCounts returns store-wide record totals for the status endpoint
func (db *Database) RecordCounts() (movies, series, episodes, statsCaches int, err error) {
	if movies, err = db.store.Count(&MovieRecord{}, nil); err != nil {
		return
	}
	if series, err = db.store.Count(&SeriesRecord{}, nil); err != nil {
		return
	}
	if episodes, err = db.store.Count(&EpisodeRecord{}, nil); err != nil {
		return
	}
	statsCaches, err = db.store.Count(&StatsCacheEntry{}, nil)
	return
}
