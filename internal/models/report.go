package models

import "time"

// StatsReport is the structured aggregate describing a user's viewing
// activity. Field names are part of the API contract.
type StatsReport struct {
	Overview            OverviewStats       `json:"overview"`
	Distributions       StatusDistributions `json:"distributions"`
	WeeklyActivity      []WeeklyBucket      `json:"weeklyActivity"`
	DailyActivity       []DailyBucket       `json:"dailyActivity"`
	WeekdayDistribution []WeekdayBucket     `json:"weekdayDistribution"`
	WatchTimeBreakdown  WatchTimeBreakdown  `json:"watchTimeBreakdown"`
	Streaks             StreakStats         `json:"streaks"`
	CompletionRates     CompletionRates     `json:"completionRates"`
	RecentActivity      RecentActivity      `json:"recentActivity"`
	GeneratedAt         time.Time           `json:"generatedAt"`
}

// OverviewStats holds the headline totals
type OverviewStats struct {
	TotalMovies     int `json:"totalMovies"`
	TotalSeries     int `json:"totalSeries"`
	WatchedEpisodes int `json:"watchedEpisodes"`
	SeasonsTouched  int `json:"seasonsTouched"`
}

// StatusDistributions carries the raw per-status counts for rendering
type StatusDistributions struct {
	Movies map[string]int `json:"movies"`
	Series map[string]int `json:"series"`
}

// WeeklyBucket is one 7-day window of the 12-bucket weekly timeline
type WeeklyBucket struct {
	WeekStart time.Time `json:"weekStart"`
	WeekEnd   time.Time `json:"weekEnd"`
	Count     int       `json:"count"`
}

// DailyBucket is one calendar day of the 30-day daily activity series
type DailyBucket struct {
	Date     string `json:"date"` // YYYY-MM-DD, local calendar day
	Movies   int    `json:"movies"`
	Episodes int    `json:"episodes"`
	Total    int    `json:"total"`
}

// WeekdayBucket is one day-of-week of the all-time weekday distribution.
// Index 0 is Monday, index 6 is Sunday.
type WeekdayBucket struct {
	Weekday string `json:"weekday"`
	Count   int    `json:"count"`
}

// WatchTimeBreakdown sums runtime minutes over watched content
type WatchTimeBreakdown struct {
	MovieMinutes   int `json:"movieMinutes"`
	EpisodeMinutes int `json:"episodeMinutes"`
	TotalMinutes   int `json:"totalMinutes"`
}

// StreakStats describes consecutive-day viewing streaks
type StreakStats struct {
	Current int `json:"current"`
	Longest int `json:"longest"`
}

// CompletionRates holds watched/(total - want_to_watch) per media type.
// A zero denominator yields the sentinel value 100.
type CompletionRates struct {
	Movies float64 `json:"movies"`
	Series float64 `json:"series"`
}

// RecentActivity counts items watched inside the rolling 30-day window
type RecentActivity struct {
	Movies   int `json:"movies"`
	Episodes int `json:"episodes"`
}

// CatchUpItem is the per-series reconciliation result for a series that
// has unwatched aired episodes or upcoming content. It is never persisted.
type CatchUpItem struct {
	SeriesID             int64           `json:"seriesId"`
	Name                 string          `json:"name"`
	PosterRef            string          `json:"posterRef"`
	ExternalStatus       string          `json:"externalStatus"`
	TotalAiredEpisodes   int             `json:"totalAiredEpisodes"`
	WatchedAiredEpisodes int             `json:"watchedAiredEpisodes"`
	UnwatchedEpisodes    int             `json:"unwatchedEpisodeCount"`
	UnwatchedSeasons     []CatchUpSeason `json:"unwatchedSeasons"`
	UpcomingSeasons      []CatchUpSeason `json:"upcomingSeasons"`
}

// CatchUpSeason is one season entry inside a CatchUpItem
type CatchUpSeason struct {
	SeasonNumber int        `json:"seasonNumber"`
	Name         string     `json:"name"`
	EpisodeCount int        `json:"episodeCount"`
	WatchedCount int        `json:"watchedCount"`
	AirDate      *time.Time `json:"airDate,omitempty"`
	IsUpcoming   bool       `json:"isUpcoming"`
}

// CatchUpSummary aggregates a reconciliation pass for dashboard counters
type CatchUpSummary struct {
	UpToDateSeries         int `json:"upToDateSeries"`
	SeriesNeedingAttention int `json:"seriesNeedingAttention"`
	TotalUnwatchedEpisodes int `json:"totalUnwatchedEpisodes"`
	SeriesWithUpcoming     int `json:"seriesWithUpcoming"`
}
