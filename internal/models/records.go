package models

import (
	"fmt"
	"time"
)

// MovieRecord is the per-owner tracking entry for a movie.
// At most one record exists per (owner, movie).
type MovieRecord struct {
	Key     string `boltholdKey:"Key"`
	OwnerID string `boltholdIndex:"OwnerID"`
	MovieID int64

	Status MovieStatus

	// WatchedAt is set only when the status becomes watched
	WatchedAt      *time.Time
	RuntimeMinutes int

	CreatedAt time.Time
	UpdatedAt time.Time
}

// SeriesRecord is the per-owner tracking entry for a series.
// StartedAt and LastWatchedAt are derived from episode events and are
// never set directly by the user.
type SeriesRecord struct {
	Key      string `boltholdKey:"Key"`
	OwnerID  string `boltholdIndex:"OwnerID"`
	SeriesID int64

	Status SeriesStatus

	StartedAt     *time.Time
	LastWatchedAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// EpisodeRecord is the per-owner watch event for a single episode.
// A record exists only while the episode is tracked; deleting the record
// is the representation of "unwatched".
type EpisodeRecord struct {
	Key      string `boltholdKey:"Key"`
	OwnerID  string `boltholdIndex:"OwnerID"`
	SeriesID int64  `boltholdIndex:"SeriesID"`
	SeasonID int64

	EpisodeID int64
	IsWatched bool

	// WatchedAt must be present whenever IsWatched is true
	WatchedAt      *time.Time
	RuntimeMinutes int

	CreatedAt time.Time
	UpdatedAt time.Time
}

// StatsCacheEntry is the single cached stats report for one owner.
// It is derived data only; the aggregator overwrites it freely.
type StatsCacheEntry struct {
	OwnerID    string `boltholdKey:"OwnerID"`
	Report     StatsReport
	ComputedAt time.Time
}

// MovieKey builds the store key for a (owner, movie) record
func MovieKey(ownerID string, movieID int64) string {
	return fmt.Sprintf("%s:%d", ownerID, movieID)
}

// SeriesKey builds the store key for a (owner, series) record
func SeriesKey(ownerID string, seriesID int64) string {
	return fmt.Sprintf("%s:%d", ownerID, seriesID)
}

// EpisodeKey builds the store key for a (owner, episode) record
func EpisodeKey(ownerID string, episodeID int64) string {
	return fmt.Sprintf("%s:%d", ownerID, episodeID)
}
