package catalog

import "time"

// SeriesMetadata is the catalog's view of a series, keyed by numeric ID
type SeriesMetadata struct {
	ID               int64
	Name             string
	PosterRef        string
	Status           string
	NumberOfEpisodes int
	InProduction     bool
	Seasons          []SeasonRef
}

// SeasonRef is the season summary carried inside SeriesMetadata
type SeasonRef struct {
	Number       int
	Name         string
	EpisodeCount int
	AirDate      *time.Time
}

// SeasonDetail is the per-season episode list
type SeasonDetail struct {
	SeriesID     int64
	SeasonNumber int
	Episodes     []EpisodeRef
}

// EpisodeRef is a single episode as reported by the catalog. AirDate is
// nil when the catalog has not published one yet.
type EpisodeRef struct {
	ID      int64
	AirDate *time.Time
}

// seriesResponse mirrors the catalog's series endpoint payload
type seriesResponse struct {
	ID               int64            `json:"id"`
	Name             string           `json:"name"`
	PosterPath       string           `json:"poster_path"`
	Status           string           `json:"status"`
	NumberOfEpisodes int              `json:"number_of_episodes"`
	InProduction     bool             `json:"in_production"`
	Seasons          []seasonResponse `json:"seasons"`
}

type seasonResponse struct {
	SeasonNumber int    `json:"season_number"`
	Name         string `json:"name"`
	EpisodeCount int    `json:"episode_count"`
	AirDate      string `json:"air_date"`
}

// seasonDetailResponse mirrors the catalog's season endpoint payload
type seasonDetailResponse struct {
	SeasonNumber int               `json:"season_number"`
	Episodes     []episodeResponse `json:"episodes"`
}

type episodeResponse struct {
	ID      int64  `json:"id"`
	AirDate string `json:"air_date"`
}

// parseAirDate converts the catalog's YYYY-MM-DD date strings. Empty or
// malformed dates come back as nil (treated as unknown downstream).
func parseAirDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil
	}
	return &t
}
