package controllers

import (
	"fmt"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/seenlogapp/seenlog/internal/metrics"
	"github.com/seenlogapp/seenlog/internal/models"
)

const (
	dailyBuckets  = 30
	weeklyBuckets = 12
	recentWindow  = 30 * 24 * time.Hour
	dayKeyLayout  = "2006-01-02"
)

// completionSentinel is returned when a completion rate has a zero
// denominator. The UI renders it as "100%"; keep it distinct from a real
// fractional rate.
const completionSentinel = 100

// weekdayNames is indexed with 0 = Monday through 6 = Sunday. The remap
// from Go's Sunday-first convention is deliberate; weekday labels in the
// UI depend on it.
var weekdayNames = [7]string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// ComputeStats builds the full stats report from a snapshot of an
// owner's watch records. It is a pure function of its inputs; empty
// inputs produce a well-formed all-zero report.
func ComputeStats(movies []*models.MovieRecord, series []*models.SeriesRecord, episodes []*models.EpisodeRecord, now time.Time) *models.StatsReport {
	loc := now.Location()

	report := &models.StatsReport{
		Distributions: models.StatusDistributions{
			Movies: make(map[string]int, len(models.MovieStatuses)),
			Series: make(map[string]int, len(models.SeriesStatuses)),
		},
		GeneratedAt: now,
	}
	for _, status := range models.MovieStatuses {
		report.Distributions.Movies[string(status)] = 0
	}
	for _, status := range models.SeriesStatuses {
		report.Distributions.Series[string(status)] = 0
	}

	// Count rollups
	report.Overview.TotalMovies = len(movies)
	report.Overview.TotalSeries = len(series)
	for _, m := range movies {
		report.Distributions.Movies[string(m.Status)]++
	}
	for _, s := range series {
		report.Distributions.Series[string(s.Status)]++
	}

	// Episode rollups
	seasons := make(map[int64]struct{})
	for _, ep := range episodes {
		if !ep.IsWatched {
			continue
		}
		report.Overview.WatchedEpisodes++
		seasons[ep.SeasonID] = struct{}{}
	}
	report.Overview.SeasonsTouched = len(seasons)

	// Watch time; missing runtimes contribute 0
	for _, m := range movies {
		if m.Status == models.MovieStatusWatched {
			report.WatchTimeBreakdown.MovieMinutes += m.RuntimeMinutes
		}
	}
	for _, ep := range episodes {
		if ep.IsWatched {
			report.WatchTimeBreakdown.EpisodeMinutes += ep.RuntimeMinutes
		}
	}
	report.WatchTimeBreakdown.TotalMinutes = report.WatchTimeBreakdown.MovieMinutes + report.WatchTimeBreakdown.EpisodeMinutes

	// Recent activity: rolling 30-day window from now, not calendar-aligned
	recentCutoff := now.Add(-recentWindow)
	for _, m := range movies {
		if m.WatchedAt != nil && m.WatchedAt.After(recentCutoff) {
			report.RecentActivity.Movies++
		}
	}
	for _, ep := range episodes {
		if ep.IsWatched && ep.WatchedAt != nil && ep.WatchedAt.After(recentCutoff) {
			report.RecentActivity.Episodes++
		}
	}

	// Daily activity: 30 fixed calendar-day buckets ending today,
	// oldest first. Items outside the window are dropped silently.
	today := startOfDay(now, loc)
	report.DailyActivity = make([]models.DailyBucket, dailyBuckets)
	dayIndex := make(map[string]int, dailyBuckets)
	for i := 0; i < dailyBuckets; i++ {
		day := today.AddDate(0, 0, i-(dailyBuckets-1))
		key := day.Format(dayKeyLayout)
		report.DailyActivity[i] = models.DailyBucket{Date: key}
		dayIndex[key] = i
	}
	for _, m := range movies {
		if m.WatchedAt == nil {
			continue
		}
		if i, ok := dayIndex[m.WatchedAt.In(loc).Format(dayKeyLayout)]; ok {
			report.DailyActivity[i].Movies++
			report.DailyActivity[i].Total++
		}
	}
	for _, ep := range episodes {
		if !ep.IsWatched || ep.WatchedAt == nil {
			continue
		}
		if i, ok := dayIndex[ep.WatchedAt.In(loc).Format(dayKeyLayout)]; ok {
			report.DailyActivity[i].Episodes++
			report.DailyActivity[i].Total++
		}
	}

	// Weekday distribution: 7 buckets over all-time activity, 0 = Monday
	report.WeekdayDistribution = make([]models.WeekdayBucket, 7)
	for i := range report.WeekdayDistribution {
		report.WeekdayDistribution[i].Weekday = weekdayNames[i]
	}
	activityDays := make(map[int]struct{})
	recordActivity := func(watchedAt time.Time) {
		local := watchedAt.In(loc)
		report.WeekdayDistribution[mondayIndex(local.Weekday())].Count++
		activityDays[dayOrdinal(local)] = struct{}{}
	}
	for _, m := range movies {
		if m.WatchedAt != nil {
			recordActivity(*m.WatchedAt)
		}
	}
	for _, ep := range episodes {
		if ep.IsWatched && ep.WatchedAt != nil {
			recordActivity(*ep.WatchedAt)
		}
	}

	// Streaks: walk the distinct activity days in ascending order
	report.Streaks = computeStreaks(activityDays, dayOrdinal(today))

	// Completion rates with the zero-denominator sentinel
	report.CompletionRates.Movies = completionRate(
		report.Distributions.Movies[string(models.MovieStatusWatched)],
		len(movies)-report.Distributions.Movies[string(models.MovieStatusWantToWatch)],
	)
	report.CompletionRates.Series = completionRate(
		report.Distributions.Series[string(models.SeriesStatusWatched)],
		len(series)-report.Distributions.Series[string(models.SeriesStatusWantToWatch)],
	)

	// Weekly activity: 12 half-open (start, end] windows ending at now,
	// oldest first. An item belongs to the first window containing it,
	// so no boundary double counting.
	report.WeeklyActivity = make([]models.WeeklyBucket, weeklyBuckets)
	for i := 0; i < weeklyBuckets; i++ {
		end := now.Add(-time.Duration(weeklyBuckets-1-i) * 7 * 24 * time.Hour)
		report.WeeklyActivity[i] = models.WeeklyBucket{
			WeekStart: end.Add(-7 * 24 * time.Hour),
			WeekEnd:   end,
		}
	}
	assignWeekly := func(watchedAt time.Time) {
		for i := range report.WeeklyActivity {
			bucket := &report.WeeklyActivity[i]
			if watchedAt.After(bucket.WeekStart) && !watchedAt.After(bucket.WeekEnd) {
				bucket.Count++
				return
			}
		}
	}
	for _, m := range movies {
		if m.WatchedAt != nil {
			assignWeekly(*m.WatchedAt)
		}
	}
	for _, ep := range episodes {
		if ep.IsWatched && ep.WatchedAt != nil {
			assignWeekly(*ep.WatchedAt)
		}
	}

	return report
}

func completionRate(watched, denominator int) float64 {
	if denominator == 0 {
		return completionSentinel
	}
	return float64(watched) / float64(denominator)
}

func computeStreaks(activityDays map[int]struct{}, todayOrdinal int) models.StreakStats {
	if len(activityDays) == 0 {
		return models.StreakStats{}
	}

	days := make([]int, 0, len(activityDays))
	for day := range activityDays {
		days = append(days, day)
	}
	sort.Ints(days)

	longest, running := 1, 1
	for i := 1; i < len(days); i++ {
		if days[i] == days[i-1]+1 {
			running++
		} else {
			running = 1
		}
		if running > longest {
			longest = running
		}
	}

	// The running streak only counts as current while unbroken through
	// yesterday or today
	current := running
	if todayOrdinal-days[len(days)-1] > 1 {
		current = 0
	}

	return models.StreakStats{Current: current, Longest: longest}
}

func mondayIndex(wd time.Weekday) int {
	return (int(wd) + 6) % 7
}

func startOfDay(t time.Time, loc *time.Location) time.Time {
	local := t.In(loc)
	y, m, d := local.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// dayOrdinal maps a local timestamp to its civil-day number so that
// consecutive calendar days differ by exactly one, across DST changes.
func dayOrdinal(t time.Time) int {
	y, m, d := t.Date()
	return int(time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix() / 86400)
}

// StatsController wraps the pure aggregator with the per-owner cached
// report stored alongside the watch records.
type StatsController struct {
	db     *models.Database
	logger *logrus.Logger
	ttl    time.Duration
}

// NewStatsController creates a new stats controller
func NewStatsController(db *models.Database, ttl time.Duration, logger *logrus.Logger) *StatsController {
	return &StatsController{
		db:     db,
		logger: logger,
		ttl:    ttl,
	}
}

// Get returns the owner's stats report, serving the cached copy while it
// is fresher than the TTL and recomputing otherwise.
func (c *StatsController) Get(ownerID string) (*models.StatsReport, error) {
	entry, err := c.db.GetStatsCache(ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to read stats cache: %w", err)
	}
	if entry != nil && time.Since(entry.ComputedAt) < c.ttl {
		metrics.StatsCacheHits.Inc()
		report := entry.Report
		return &report, nil
	}

	return c.Refresh(ownerID)
}

// Refresh always recomputes the report and overwrites the cache row.
// Concurrent refreshes may both write; last write wins.
func (c *StatsController) Refresh(ownerID string) (*models.StatsReport, error) {
	movies, err := c.db.GetMovieRecords(ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load movie records: %w", err)
	}
	series, err := c.db.GetSeriesRecords(ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load series records: %w", err)
	}
	episodes, err := c.db.GetWatchedEpisodes(ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load episode records: %w", err)
	}

	now := time.Now()
	report := ComputeStats(movies, series, episodes, now)
	metrics.StatsComputations.Inc()

	if err := c.db.UpsertStatsCache(ownerID, *report, now); err != nil {
		return nil, fmt.Errorf("failed to write stats cache: %w", err)
	}

	c.logger.WithFields(logrus.Fields{
		"owner":    ownerID,
		"movies":   len(movies),
		"series":   len(series),
		"episodes": len(episodes),
	}).Debug("Recomputed stats report")

	return report, nil
}

// RefreshAll recomputes the cached report for every known owner
func (c *StatsController) RefreshAll() error {
	owners, err := c.db.ListOwners()
	if err != nil {
		return fmt.Errorf("failed to list owners: %w", err)
	}

	for _, owner := range owners {
		if _, err := c.Refresh(owner); err != nil {
			c.logger.WithError(err).WithField("owner", owner).Error("Failed to refresh stats")
		}
	}

	return nil
}
