package models

// MovieStatus represents the tracking status of a movie
type MovieStatus string

const (
	MovieStatusWantToWatch       MovieStatus = "want_to_watch"
	MovieStatusCurrentlyWatching MovieStatus = "currently_watching"
	MovieStatusWatched           MovieStatus = "watched"
	MovieStatusOnHold            MovieStatus = "on_hold"
	MovieStatusDropped           MovieStatus = "dropped"
)

// MovieStatuses lists every movie status in rendering order
var MovieStatuses = []MovieStatus{
	MovieStatusWantToWatch,
	MovieStatusCurrentlyWatching,
	MovieStatusWatched,
	MovieStatusOnHold,
	MovieStatusDropped,
}

// SeriesStatus represents the tracking status of a series
type SeriesStatus string

const (
	SeriesStatusWantToWatch       SeriesStatus = "want_to_watch"
	SeriesStatusCurrentlyWatching SeriesStatus = "currently_watching"
	SeriesStatusWatched           SeriesStatus = "watched"
	SeriesStatusOnHold            SeriesStatus = "on_hold"
	SeriesStatusDropped           SeriesStatus = "dropped"
	// SeriesStatusUpToDate marks a series the user considers fully caught up.
	// Only series in this status are examined by the catch-up reconciler.
	SeriesStatusUpToDate SeriesStatus = "up_to_date"
)

// SeriesStatuses lists every series status in rendering order
var SeriesStatuses = []SeriesStatus{
	SeriesStatusWantToWatch,
	SeriesStatusCurrentlyWatching,
	SeriesStatusWatched,
	SeriesStatusOnHold,
	SeriesStatusDropped,
	SeriesStatusUpToDate,
}

// ValidMovieStatus reports whether s is a known movie status
func ValidMovieStatus(s MovieStatus) bool {
	for _, known := range MovieStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// ValidSeriesStatus reports whether s is a known series status
func ValidSeriesStatus(s SeriesStatus) bool {
	for _, known := range SeriesStatuses {
		if s == known {
			return true
		}
	}
	return false
}
