package models

import (
	"fmt"
	"time"
)

// Genre enumerates the kinds of titles tracked by the watchlist.
type Genre string

const (
	GenreAnimated    Genre = "animated"
	GenreDocumentary Genre = "documentary"
	GenreMovie       Genre = "movie"
	GenreReality     Genre = "reality"
	GenreSeries      Genre = "series"
)

// AllGenres lists every known genre in canonical order.
func AllGenres() []Genre {
	return []Genre{GenreAnimated, GenreDocumentary, GenreMovie, GenreReality, GenreSeries}
}

// Valid reports whether g is a known genre.
func (g Genre) Valid() bool {
	for _, known := range AllGenres() {
		if g == known {
			return true
		}
	}
	return false
}

// WatchStatus is the tri-state progress marker stored in the watched field.
type WatchStatus int

const (
	StatusNotWatched WatchStatus = -1
	StatusWatching   WatchStatus = 0
	StatusWatched    WatchStatus = 1
)

// Status labels as submitted by the rating form.
const (
	StatusLabelNotWatched = "not_watched"
	StatusLabelWatching   = "watching"
	StatusLabelWatched    = "watched"
)

// AllWatchStatuses lists every status in ascending order.
func AllWatchStatuses() []WatchStatus {
	return []WatchStatus{StatusNotWatched, StatusWatching, StatusWatched}
}

// ParseWatchStatus maps a form label onto a WatchStatus.
func ParseWatchStatus(label string) (WatchStatus, error) {
	switch label {
	case StatusLabelNotWatched:
		return StatusNotWatched, nil
	case StatusLabelWatching:
		return StatusWatching, nil
	case StatusLabelWatched:
		return StatusWatched, nil
	default:
		return 0, fmt.Errorf("unknown watch status %q", label)
	}
}

// Label returns the form label for the status.
func (s WatchStatus) Label() string {
	switch s {
	case StatusNotWatched:
		return StatusLabelNotWatched
	case StatusWatching:
		return StatusLabelWatching
	case StatusWatched:
		return StatusLabelWatched
	default:
		return ""
	}
}

// Movie is a single watchlist entry.
type Movie struct {
	ID          string      `db:"id" json:"id,omitempty"`
	Title       string      `db:"title" json:"title"`
	Type        Genre       `db:"type" json:"type"`
	Description string      `db:"description" json:"description"`
	Name        string      `db:"name" json:"name"`
	SubmittedOn time.Time   `db:"submitted_on" json:"submitted_on"`
	Watched     WatchStatus `db:"watched" json:"watched"`
	Rating      float64     `db:"rating" json:"rating"`
	WatchedOn   *time.Time  `db:"watched_on" json:"watched_on,omitempty"`
	UpdatedOn   time.Time   `db:"updated_on" json:"updated_on"`
}

// SortField names the columns the archive can be ordered by.
type SortField string

const (
	SortBySubmittedOn SortField = "submitted_on"
	SortByRating      SortField = "rating"
	SortByUpdatedOn   SortField = "updated_on"
)

// SortDirection is either ascending or descending.
type SortDirection int

const (
	SortAsc  SortDirection = 1
	SortDesc SortDirection = -1
)

// SortSpec is a single field+direction ordering.
type SortSpec struct {
	Field     SortField     `json:"field"`
	Direction SortDirection `json:"direction"`
}

// DefaultSort orders by most recently updated first.
var DefaultSort = SortSpec{Field: SortByUpdatedOn, Direction: SortDesc}

// MovieQuery captures the archive predicate and ordering. Nil sets mean the
// predicate is not applied at all.
type MovieQuery struct {
	Search  string        `json:"search,omitempty"`
	Genres  []Genre       `json:"genres,omitempty"`
	Watched []WatchStatus `json:"watched,omitempty"`
	Sort    SortSpec      `json:"sort"`
}

// UnfilteredQuery returns the query used after a rating update: every record,
// most recently updated first.
func UnfilteredQuery() MovieQuery {
	return MovieQuery{Sort: DefaultSort}
}

// StatusChange is the full set of field writes for a watch-status transition.
// A nil WatchedOn means the field is removed from the record.
type StatusChange struct {
	Watched   WatchStatus
	Rating    float64
	WatchedOn *time.Time
	UpdatedOn time.Time
}

// NewStatusChange applies the record invariants: only a watched title keeps a
// rating and a watched_on timestamp.
func NewStatusChange(status WatchStatus, rating float64, now time.Time) StatusChange {
	change := StatusChange{Watched: status, UpdatedOn: now}
	if status == StatusWatched {
		watchedOn := now
		change.Rating = rating
		change.WatchedOn = &watchedOn
	}
	return change
}

// NewMovie builds a freshly submitted, not yet watched record.
func NewMovie(title string, genre Genre, description, name string, now time.Time) *Movie {
	return &Movie{
		Title:       title,
		Type:        genre,
		Description: description,
		Name:        name,
		SubmittedOn: now,
		Watched:     StatusNotWatched,
		Rating:      0,
		UpdatedOn:   now,
	}
}
