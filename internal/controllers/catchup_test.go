package controllers

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/seenlogapp/seenlog/internal/models"
	"github.com/seenlogapp/seenlog/internal/services/catalog"
)

// stubCatalog serves canned metadata; safe for the reconciler's
// concurrent fetches.
type stubCatalog struct {
	mu          sync.Mutex
	series      map[int64]*catalog.SeriesMetadata
	seasons     map[string]*catalog.SeasonDetail
	seriesErr   map[int64]error
	seasonErr   map[string]error
	seasonCalls int
}

func newStubCatalog() *stubCatalog {
	return &stubCatalog{
		series:    make(map[int64]*catalog.SeriesMetadata),
		seasons:   make(map[string]*catalog.SeasonDetail),
		seriesErr: make(map[int64]error),
		seasonErr: make(map[string]error),
	}
}

func seasonKey(seriesID int64, number int) string {
	return fmt.Sprintf("%d:%d", seriesID, number)
}

func (s *stubCatalog) GetSeriesMetadata(_ context.Context, seriesID int64) (*catalog.SeriesMetadata, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err, ok := s.seriesErr[seriesID]; ok {
		return nil, err
	}
	meta, ok := s.series[seriesID]
	if !ok {
		return nil, errors.New("unknown series")
	}
	return meta, nil
}

func (s *stubCatalog) GetSeasonDetail(_ context.Context, seriesID int64, number int) (*catalog.SeasonDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seasonCalls++
	key := seasonKey(seriesID, number)
	if err, ok := s.seasonErr[key]; ok {
		return nil, err
	}
	detail, ok := s.seasons[key]
	if !ok {
		return nil, errors.New("unknown season")
	}
	return detail, nil
}

func pastDate(days int) *time.Time {
	t := time.Now().AddDate(0, 0, -days)
	return &t
}

func futureDate(days int) *time.Time {
	t := time.Now().AddDate(0, 0, days)
	return &t
}

// airedEpisodes builds count episode refs with sequential IDs starting
// at first, all aired in the past.
func airedEpisodes(first int64, count int) []catalog.EpisodeRef {
	eps := make([]catalog.EpisodeRef, count)
	for i := range eps {
		eps[i] = catalog.EpisodeRef{ID: first + int64(i), AirDate: pastDate(30 - i)}
	}
	return eps
}

func markUpToDate(t *testing.T, db *models.Database, owner string, seriesID int64) {
	t.Helper()
	err := db.UpsertSeriesRecord(&models.SeriesRecord{
		OwnerID:  owner,
		SeriesID: seriesID,
		Status:   models.SeriesStatusUpToDate,
	})
	if err != nil {
		t.Fatalf("Failed to seed series record: %v", err)
	}
}

func markWatched(t *testing.T, db *models.Database, owner string, seriesID int64, episodeIDs ...int64) {
	t.Helper()
	now := time.Now()
	for _, id := range episodeIDs {
		err := db.UpsertEpisode(&models.EpisodeRecord{
			OwnerID:   owner,
			SeriesID:  seriesID,
			SeasonID:  1,
			EpisodeID: id,
			IsWatched: true,
			WatchedAt: &now,
		})
		if err != nil {
			t.Fatalf("Failed to seed episode: %v", err)
		}
	}
}

func TestReconcileBehindSeriesWithUpcomingSeason(t *testing.T) {
	db := newTestDB(t)
	cat := newStubCatalog()

	cat.series[1] = &catalog.SeriesMetadata{
		ID:               1,
		Name:             "Severed",
		NumberOfEpisodes: 10,
		InProduction:     true,
		Seasons: []catalog.SeasonRef{
			{Number: 1, Name: "Season 1", EpisodeCount: 10, AirDate: pastDate(400)},
			{Number: 2, Name: "Season 2", EpisodeCount: 8, AirDate: futureDate(60)},
		},
	}
	cat.seasons[seasonKey(1, 1)] = &catalog.SeasonDetail{
		SeriesID: 1, SeasonNumber: 1, Episodes: airedEpisodes(1001, 10),
	}
	s2 := make([]catalog.EpisodeRef, 8)
	for i := range s2 {
		s2[i] = catalog.EpisodeRef{ID: 2001 + int64(i), AirDate: futureDate(60 + i)}
	}
	cat.seasons[seasonKey(1, 2)] = &catalog.SeasonDetail{
		SeriesID: 1, SeasonNumber: 2, Episodes: s2,
	}

	markUpToDate(t, db, "alice", 1)
	markWatched(t, db, "alice", 1, 1001, 1002, 1003, 1004, 1005, 1006, 1007)

	ctrl := NewCatchUpController(db, cat, 5, testLogger())
	items, err := ctrl.Reconcile(context.Background(), "alice")
	if err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("Expected 1 item, got %d", len(items))
	}

	item := items[0]
	if item.TotalAiredEpisodes != 10 || item.WatchedAiredEpisodes != 7 {
		t.Errorf("Unexpected aired/watched: %d/%d", item.TotalAiredEpisodes, item.WatchedAiredEpisodes)
	}
	if item.UnwatchedEpisodes != 3 {
		t.Errorf("Expected 3 unwatched episodes, got %d", item.UnwatchedEpisodes)
	}
	if len(item.UnwatchedSeasons) != 1 {
		t.Fatalf("Expected 1 unwatched season, got %d", len(item.UnwatchedSeasons))
	}
	season := item.UnwatchedSeasons[0]
	if season.SeasonNumber != 1 || season.EpisodeCount != 10 || season.WatchedCount != 7 {
		t.Errorf("Unexpected unwatched season entry: %+v", season)
	}
	if len(item.UpcomingSeasons) != 1 {
		t.Fatalf("Expected 1 upcoming season, got %d", len(item.UpcomingSeasons))
	}
	upcoming := item.UpcomingSeasons[0]
	if upcoming.SeasonNumber != 2 || !upcoming.IsUpcoming || upcoming.EpisodeCount != 8 {
		t.Errorf("Unexpected upcoming season entry: %+v", upcoming)
	}
}

func TestReconcileDropsFullySatisfiedSeries(t *testing.T) {
	db := newTestDB(t)
	cat := newStubCatalog()

	cat.series[1] = &catalog.SeriesMetadata{
		ID:           1,
		Name:         "Done",
		InProduction: true,
		Seasons: []catalog.SeasonRef{
			{Number: 1, Name: "Season 1", EpisodeCount: 3, AirDate: pastDate(100)},
		},
	}
	cat.seasons[seasonKey(1, 1)] = &catalog.SeasonDetail{
		SeriesID: 1, SeasonNumber: 1, Episodes: airedEpisodes(1001, 3),
	}

	markUpToDate(t, db, "alice", 1)
	markWatched(t, db, "alice", 1, 1001, 1002, 1003)

	ctrl := NewCatchUpController(db, cat, 5, testLogger())
	items, err := ctrl.Reconcile(context.Background(), "alice")
	if err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("Expected an empty list, got %d items", len(items))
	}
}

func TestReconcilePreFilterSkipsSeasonFetch(t *testing.T) {
	db := newTestDB(t)
	cat := newStubCatalog()

	// Everything watched and production over: season detail must not be
	// fetched at all
	cat.series[1] = &catalog.SeriesMetadata{
		ID:               1,
		Name:             "Finished",
		NumberOfEpisodes: 2,
		InProduction:     false,
		Seasons: []catalog.SeasonRef{
			{Number: 1, Name: "Season 1", EpisodeCount: 2, AirDate: pastDate(100)},
		},
	}

	markUpToDate(t, db, "alice", 1)
	markWatched(t, db, "alice", 1, 1001, 1002)

	ctrl := NewCatchUpController(db, cat, 5, testLogger())
	items, err := ctrl.Reconcile(context.Background(), "alice")
	if err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("Expected an empty list, got %d items", len(items))
	}
	if cat.seasonCalls != 0 {
		t.Errorf("Expected no season fetches, got %d", cat.seasonCalls)
	}
}

func TestReconcileOrdering(t *testing.T) {
	db := newTestDB(t)
	cat := newStubCatalog()

	seed := func(seriesID int64, name string, total int, watched int) {
		cat.series[seriesID] = &catalog.SeriesMetadata{
			ID:           seriesID,
			Name:         name,
			InProduction: true,
			Seasons: []catalog.SeasonRef{
				{Number: 1, Name: "Season 1", EpisodeCount: total, AirDate: pastDate(100)},
			},
		}
		first := seriesID * 1000
		cat.seasons[seasonKey(seriesID, 1)] = &catalog.SeasonDetail{
			SeriesID: seriesID, SeasonNumber: 1, Episodes: airedEpisodes(first, total),
		}
		markUpToDate(t, db, "alice", seriesID)
		ids := make([]int64, watched)
		for i := range ids {
			ids[i] = first + int64(i)
		}
		markWatched(t, db, "alice", seriesID, ids...)
	}

	seed(1, "Beta", 5, 4)  // 1 unwatched
	seed(2, "Alpha", 5, 2) // 3 unwatched
	seed(3, "Aardvark", 5, 4) // 1 unwatched, name before Beta

	ctrl := NewCatchUpController(db, cat, 5, testLogger())
	items, err := ctrl.Reconcile(context.Background(), "alice")
	if err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("Expected 3 items, got %d", len(items))
	}
	if items[0].Name != "Alpha" {
		t.Errorf("Expected most-behind series first, got %s", items[0].Name)
	}
	if items[1].Name != "Aardvark" || items[2].Name != "Beta" {
		t.Errorf("Expected name tiebreak ascending, got %s then %s", items[1].Name, items[2].Name)
	}
}

func TestReconcileMetadataFailureExcludesSeries(t *testing.T) {
	db := newTestDB(t)
	cat := newStubCatalog()
	cat.seriesErr[1] = errors.New("catalog down")

	markUpToDate(t, db, "alice", 1)
	markWatched(t, db, "alice", 1, 1001)

	ctrl := NewCatchUpController(db, cat, 5, testLogger())
	items, err := ctrl.Reconcile(context.Background(), "alice")
	if err != nil {
		t.Fatalf("Expected a degraded pass, got error: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("Expected failed series to be excluded, got %d items", len(items))
	}
}

func TestReconcileSeasonFailureFutureAirDate(t *testing.T) {
	db := newTestDB(t)
	cat := newStubCatalog()

	cat.series[1] = &catalog.SeriesMetadata{
		ID:           1,
		Name:         "Flaky",
		InProduction: true,
		Seasons: []catalog.SeasonRef{
			{Number: 1, Name: "Season 1", EpisodeCount: 6, AirDate: futureDate(30)},
		},
	}
	cat.seasonErr[seasonKey(1, 1)] = errors.New("timeout")

	markUpToDate(t, db, "alice", 1)

	ctrl := NewCatchUpController(db, cat, 5, testLogger())
	items, err := ctrl.Reconcile(context.Background(), "alice")
	if err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("Expected the unresolvable future season to still surface, got %d items", len(items))
	}
	item := items[0]
	if item.UnwatchedEpisodes != 0 {
		t.Errorf("Expected 0 unwatched episodes, got %d", item.UnwatchedEpisodes)
	}
	if len(item.UpcomingSeasons) != 1 || item.UpcomingSeasons[0].EpisodeCount != 6 {
		t.Errorf("Expected 1 upcoming season from the season ref, got %+v", item.UpcomingSeasons)
	}
}

func TestReconcileSeasonFailurePastAirDate(t *testing.T) {
	db := newTestDB(t)
	cat := newStubCatalog()

	cat.series[1] = &catalog.SeriesMetadata{
		ID:           1,
		Name:         "Flaky",
		InProduction: true,
		Seasons: []catalog.SeasonRef{
			{Number: 1, Name: "Season 1", EpisodeCount: 6, AirDate: pastDate(100)},
		},
	}
	cat.seasonErr[seasonKey(1, 1)] = errors.New("timeout")

	markUpToDate(t, db, "alice", 1)

	ctrl := NewCatchUpController(db, cat, 5, testLogger())
	items, err := ctrl.Reconcile(context.Background(), "alice")
	if err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("Expected an unresolvable aired season to be excluded, got %d items", len(items))
	}
}

func TestReconcileIgnoresUndatedEpisodes(t *testing.T) {
	db := newTestDB(t)
	cat := newStubCatalog()

	cat.series[1] = &catalog.SeriesMetadata{
		ID:           1,
		Name:         "Partial",
		InProduction: true,
		Seasons: []catalog.SeasonRef{
			{Number: 1, Name: "Season 1", EpisodeCount: 4, AirDate: pastDate(50)},
		},
	}
	cat.seasons[seasonKey(1, 1)] = &catalog.SeasonDetail{
		SeriesID:     1,
		SeasonNumber: 1,
		Episodes: []catalog.EpisodeRef{
			{ID: 1001, AirDate: pastDate(10)},
			{ID: 1002, AirDate: pastDate(5)},
			{ID: 1003, AirDate: nil}, // unscheduled: neither aired nor future
			{ID: 1004, AirDate: futureDate(10)},
		},
	}

	markUpToDate(t, db, "alice", 1)
	markWatched(t, db, "alice", 1, 1001)

	ctrl := NewCatchUpController(db, cat, 5, testLogger())
	items, err := ctrl.Reconcile(context.Background(), "alice")
	if err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("Expected 1 item, got %d", len(items))
	}
	item := items[0]
	if item.TotalAiredEpisodes != 2 {
		t.Errorf("Expected 2 aired episodes, got %d", item.TotalAiredEpisodes)
	}
	if item.UnwatchedEpisodes != 1 {
		t.Errorf("Expected 1 unwatched episode, got %d", item.UnwatchedEpisodes)
	}
	if len(item.UnwatchedSeasons) != 1 || item.UnwatchedSeasons[0].EpisodeCount != 2 {
		t.Errorf("Expected the season entry to count aired episodes only, got %+v", item.UnwatchedSeasons)
	}
}

func TestSummaryRollup(t *testing.T) {
	db := newTestDB(t)
	cat := newStubCatalog()

	cat.series[1] = &catalog.SeriesMetadata{
		ID:           1,
		Name:         "Behind",
		InProduction: true,
		Seasons: []catalog.SeasonRef{
			{Number: 1, Name: "Season 1", EpisodeCount: 4, AirDate: pastDate(100)},
			{Number: 2, Name: "Season 2", EpisodeCount: 6, AirDate: futureDate(20)},
		},
	}
	cat.seasons[seasonKey(1, 1)] = &catalog.SeasonDetail{
		SeriesID: 1, SeasonNumber: 1, Episodes: airedEpisodes(1001, 4),
	}
	cat.seasons[seasonKey(1, 2)] = &catalog.SeasonDetail{
		SeriesID: 1, SeasonNumber: 2, Episodes: []catalog.EpisodeRef{
			{ID: 2001, AirDate: futureDate(20)},
		},
	}

	cat.series[2] = &catalog.SeriesMetadata{
		ID:               2,
		Name:             "Done",
		NumberOfEpisodes: 1,
		InProduction:     false,
		Seasons: []catalog.SeasonRef{
			{Number: 1, Name: "Season 1", EpisodeCount: 1, AirDate: pastDate(300)},
		},
	}

	markUpToDate(t, db, "alice", 1)
	markWatched(t, db, "alice", 1, 1001, 1002)
	markUpToDate(t, db, "alice", 2)
	markWatched(t, db, "alice", 2, 9001)

	ctrl := NewCatchUpController(db, cat, 5, testLogger())
	summary, err := ctrl.Summary(context.Background(), "alice")
	if err != nil {
		t.Fatalf("Summary failed: %v", err)
	}
	if summary.UpToDateSeries != 2 {
		t.Errorf("Expected 2 up-to-date series, got %d", summary.UpToDateSeries)
	}
	if summary.SeriesNeedingAttention != 1 {
		t.Errorf("Expected 1 series needing attention, got %d", summary.SeriesNeedingAttention)
	}
	if summary.TotalUnwatchedEpisodes != 2 {
		t.Errorf("Expected 2 total unwatched episodes, got %d", summary.TotalUnwatchedEpisodes)
	}
	if summary.SeriesWithUpcoming != 1 {
		t.Errorf("Expected 1 series with upcoming content, got %d", summary.SeriesWithUpcoming)
	}
}
